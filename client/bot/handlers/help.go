package handlers

import (
	"errors"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/config"
	"github.com/postcatcher/postcatcher-bot/database"
)

func handleHelpCmd(ctx *ext.Context, update *ext.Update) error {
	shortHash := config.GitCommit
	if len(shortHash) > 7 {
		shortHash = shortHash[:7]
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgHelpText, map[string]any{
		"Version": config.Version,
		"Commit":  shortHash,
	})), nil)
	return dispatcher.EndGroups
}

func handleStartCmd(ctx *ext.Context, update *ext.Update) error {
	logger := log.FromContext(ctx)
	chat := update.GetUserChat()
	chatID := chat.GetID()
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)

	user, err := database.GetUserByChatID(ctx, chatID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := database.CreateUser(ctx, chatID, name, chat.Username, deps.TrialDays); err != nil {
			replyInternal(ctx, update, err)
			return dispatcher.EndGroups
		}
		logger.Info("User registered", "chat_id", chatID, "username", chat.Username)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgStartWelcome, map[string]any{
			"Name": name,
			"Days": deps.TrialDays,
		})), nil)
		return handleHelpCmd(ctx, update)
	case err != nil:
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}

	// admins are created from config without a name
	if user.Name != name || user.Username != chat.Username {
		user.Name, user.Username = name, chat.Username
		if err := database.UpdateUser(ctx, user); err != nil {
			logger.Warn("Failed to update user name", "chat_id", chatID, "error", err)
		}
		forgetUser(chatID)
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgStartAgain)), nil)
	return dispatcher.EndGroups
}
