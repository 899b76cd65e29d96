package handlers

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"

	"github.com/postcatcher/postcatcher-bot/client/bot/handlers/utils/msgelem"
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/core/catcher"
	"github.com/postcatcher/postcatcher-bot/core/tgauth"
)

type flowStep int

const (
	stepAppID flowStep = iota
	stepAppHash
	stepPhone
	stepAuth
)

// catcherFlow is an admin's /add_catcher or /connect dialog.
type catcherFlow struct {
	step      flowStep
	appID     int
	appHash   string
	handshake catcher.Handshake
}

// flows holds one dialog per chat. Entries live until finished or cancelled.
// Dialogs are stored by value, handlers change a copy and store it back.
var flows = struct {
	sync.Mutex
	m map[int64]catcherFlow
}{m: make(map[int64]catcherFlow)}

func getFlow(chatID int64) (catcherFlow, bool) {
	flows.Lock()
	defer flows.Unlock()
	f, ok := flows.m[chatID]
	return f, ok
}

// setFlow stores f and reports whether it replaced another dialog.
func setFlow(chatID int64, f catcherFlow) bool {
	flows.Lock()
	defer flows.Unlock()
	_, ok := flows.m[chatID]
	flows.m[chatID] = f
	return ok
}

func dropFlow(chatID int64) bool {
	flows.Lock()
	defer flows.Unlock()
	_, ok := flows.m[chatID]
	delete(flows.m, chatID)
	return ok
}

func handleAddCatcherCmd(ctx *ext.Context, update *ext.Update) error {
	if setFlow(update.GetUserChat().GetID(), catcherFlow{step: stepAppID}) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherDialogDiscarded)), nil)
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherPromptAppID)), nil)
	return dispatcher.EndGroups
}

func handleCancelCmd(ctx *ext.Context, update *ext.Update) error {
	if dropFlow(update.GetUserChat().GetID()) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherCancelled)), nil)
	} else {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherNothingToCancel)), nil)
	}
	return dispatcher.EndGroups
}

// handleConversationText feeds plain messages into the chat's dialog, if any.
func handleConversationText(ctx *ext.Context, update *ext.Update) error {
	text := strings.TrimSpace(update.EffectiveMessage.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return dispatcher.EndGroups
	}
	chatID := update.GetUserChat().GetID()
	flow, ok := getFlow(chatID)
	if !ok {
		return dispatcher.EndGroups
	}

	switch flow.step {
	case stepAppID:
		id, err := strconv.Atoi(text)
		if err != nil || id <= 0 {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherInvalidAppID)), nil)
			return dispatcher.EndGroups
		}
		flow.appID = id
		flow.step = stepAppHash
		setFlow(chatID, flow)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherPromptAppHash)), nil)
	case stepAppHash:
		flow.appHash = text
		flow.step = stepPhone
		setFlow(chatID, flow)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherPromptPhone)), nil)
	case stepPhone:
		res, err := deps.Catchers.Begin(ctx, text, flow.appID, flow.appHash)
		replyCatcherResult(ctx, update, flow, res, err)
	case stepAuth:
		res, err := deps.Catchers.Complete(ctx, flow.handshake, text)
		replyCatcherResult(ctx, update, flow, res, err)
	}
	return dispatcher.EndGroups
}

// replyCatcherResult reports a lifecycle step and moves the dialog along.
// flow is the zero value when the step did not come from a dialog.
func replyCatcherResult(ctx *ext.Context, update *ext.Update, flow catcherFlow, res catcher.Result, err error) {
	chatID := update.GetUserChat().GetID()
	switch {
	case errors.Is(err, catcher.ErrConflict):
		dropFlow(chatID)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherConflict)), nil)
		return
	case errors.Is(err, catcher.ErrNotStarted):
		dropFlow(chatID)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherProcessFailed)), nil)
		return
	case err != nil:
		dropFlow(chatID)
		replyInternal(ctx, update, err)
		return
	}

	if res.Connected() {
		dropFlow(chatID)
		log.FromContext(ctx).Info("Catcher connected by admin", "catcher_id", res.Catcher.ID, "admin", chatID)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherConnected, map[string]any{
			"ID":    res.Catcher.ID,
			"Phone": res.Catcher.Phone,
		})), nil)
		return
	}

	out := res.Outcome
	if res.Next == nil {
		// a mistyped phone can be sent again, everything else ends the dialog
		if flow.step != stepPhone || out.Reason != tgauth.ReasonInvalidPhone {
			dropFlow(chatID)
		}
		ctx.Reply(update, ext.ReplyTextString(msgelem.AuthFailure(out)), nil)
		return
	}
	if out.Reason == tgauth.ReasonCodeExpired {
		dropFlow(chatID)
		ctx.Reply(update, ext.ReplyTextString(msgelem.AuthFailure(out)), nil)
		return
	}

	flow.step = stepAuth
	flow.handshake = res.Next
	setFlow(chatID, flow)

	switch {
	case out.Reason == tgauth.ReasonPasswordRequired:
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherPromptPassword)), nil)
	case !out.OK:
		ctx.Reply(update, ext.ReplyTextString(msgelem.AuthFailure(out)), nil)
	default:
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCatcherPromptCode, map[string]any{
			"Phone": res.Next.Credentials().Phone,
		})), nil)
	}
}
