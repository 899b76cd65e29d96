package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/database"
)

// checkUser lets registered users with a live subscription through. /start is
// always allowed so new and lapsed users can reach it.
func checkUser(ctx *ext.Context, update *ext.Update) error {
	if commandName(update.EffectiveMessage.Text) == "start" {
		return dispatcher.ContinueGroups
	}
	user, err := currentUser(ctx, update.GetUserChat().GetID())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorNotRegistered)), nil)
		return dispatcher.EndGroups
	}
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	if !user.IsAdmin && !user.SubscriptionActive(time.Now()) {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorSubscriptionExpired)), nil)
		return dispatcher.EndGroups
	}
	return dispatcher.ContinueGroups
}

func adminOnly(next func(*ext.Context, *ext.Update) error) func(*ext.Context, *ext.Update) error {
	return func(ctx *ext.Context, update *ext.Update) error {
		user, err := currentUser(ctx, update.GetUserChat().GetID())
		if err != nil || !user.IsAdmin {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorAdminOnly)), nil)
			return dispatcher.EndGroups
		}
		return next(ctx, update)
	}
}

// currentUser loads the user of chatID with phrases, going through the cache.
func currentUser(ctx *ext.Context, chatID int64) (*database.User, error) {
	key := strconv.FormatInt(chatID, 10)
	if deps.Users != nil {
		if user, ok := deps.Users.Get(key); ok {
			return user, nil
		}
	}
	user, err := database.GetUserByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if deps.Users != nil {
		if err := deps.Users.Set(key, user); err != nil {
			log.FromContext(ctx).Debug("User not cached", "chat_id", chatID, "error", err)
		}
	}
	return user, nil
}

// forgetUser drops the cached copy after the user row or its phrases changed.
func forgetUser(chatID int64) {
	if deps.Users != nil {
		deps.Users.Del(strconv.FormatInt(chatID, 10))
	}
}

func replyInternal(ctx *ext.Context, update *ext.Update, err error) {
	log.FromContext(ctx).Error("Handler failed", "chat_id", update.GetUserChat().GetID(), "error", err)
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorInternal, map[string]any{
		"Error": err.Error(),
	})), nil)
}

// commandName returns "start" for "/start@PostCatcherBot arg", "" for plain text.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// commandArgs returns the words after the command.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}
