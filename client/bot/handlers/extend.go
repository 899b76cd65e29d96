package handlers

import (
	"errors"
	"strconv"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/database"
)

// /extend <chat id> <days>
func handleExtendCmd(ctx *ext.Context, update *ext.Update) error {
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) < 2 {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgExtendUsage)), nil)
		return dispatcher.EndGroups
	}
	chatID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorInvalidID, map[string]any{"Input": args[0]})), nil)
		return dispatcher.EndGroups
	}
	days, err := strconv.Atoi(args[1])
	if err != nil || days <= 0 {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgExtendUsage)), nil)
		return dispatcher.EndGroups
	}
	user, err := database.GetUserByChatID(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorInvalidID, map[string]any{"Input": args[0]})), nil)
		return dispatcher.EndGroups
	}
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	user, err = database.ExtendSubscription(ctx, user.ID, days)
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	forgetUser(chatID)
	log.FromContext(ctx).Info("Subscription extended", "chat_id", chatID, "days", days, "admin", update.GetUserChat().GetID())
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgExtendDone, map[string]any{
		"ChatID": chatID,
		"End":    user.SubscriptionEnd().Format("2006-01-02"),
	})), nil)
	return dispatcher.EndGroups
}
