package handlers

import (
	"errors"
	"strconv"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"

	"github.com/postcatcher/postcatcher-bot/client/bot/handlers/utils/msgelem"
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/core/catcher"
)

func handleCatchersCmd(ctx *ext.Context, update *ext.Update) error {
	catchers, err := deps.Catchers.RefreshAll(ctx)
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	ctx.Reply(update, ext.ReplyTextStyledTextArray(msgelem.BuildCatcherListStyling(catchers)), nil)
	return dispatcher.EndGroups
}

func handleConnectCmd(ctx *ext.Context, update *ext.Update) error {
	id, ok := catcherIDArg(ctx, update, "connect")
	if !ok {
		return dispatcher.EndGroups
	}
	if dropFlow(update.GetUserChat().GetID()) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherDialogDiscarded)), nil)
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherConnecting, map[string]any{"ID": id})), nil)
	res, err := deps.Catchers.Connect(ctx, id)
	if errors.Is(err, catcher.ErrNotFound) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherNotFound, map[string]any{"ID": id})), nil)
		return dispatcher.EndGroups
	}
	// a login code request continues as a dialog
	replyCatcherResult(ctx, update, catcherFlow{}, res, err)
	return dispatcher.EndGroups
}

func handleDisconnectCmd(ctx *ext.Context, update *ext.Update) error {
	id, ok := catcherIDArg(ctx, update, "disconnect")
	if !ok {
		return dispatcher.EndGroups
	}
	c, err := deps.Catchers.Disconnect(ctx, id)
	if errors.Is(err, catcher.ErrNotFound) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherNotFound, map[string]any{"ID": id})), nil)
		return dispatcher.EndGroups
	}
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherDisconnected, map[string]any{
		"ID":    c.ID,
		"Phone": c.Phone,
	})), nil)
	return dispatcher.EndGroups
}

func handleDelCatcherCmd(ctx *ext.Context, update *ext.Update) error {
	id, ok := catcherIDArg(ctx, update, "delcatcher")
	if !ok {
		return dispatcher.EndGroups
	}
	err := deps.Catchers.Delete(ctx, id)
	if errors.Is(err, catcher.ErrNotFound) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherNotFound, map[string]any{"ID": id})), nil)
		return dispatcher.EndGroups
	}
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherDeleted, map[string]any{"ID": id})), nil)
	return dispatcher.EndGroups
}

// catcherIDArg parses "/cmd <id>", replying with usage when it is missing or malformed.
func catcherIDArg(ctx *ext.Context, update *ext.Update, cmd string) (uint, bool) {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) == 0 {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherUsage, map[string]any{"Cmd": cmd})), nil)
		return 0, false
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorInvalidID, map[string]any{"Input": args[0]})), nil)
		return 0, false
	}
	return uint(id), true
}
