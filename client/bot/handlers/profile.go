package handlers

import (
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/dustin/go-humanize"

	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/database"
)

func handleProfileCmd(ctx *ext.Context, update *ext.Update) error {
	user, err := currentUser(ctx, update.GetUserChat().GetID())
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	end := user.SubscriptionEnd()
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgProfileText, map[string]any{
		"Name":     user.Name,
		"ChatID":   user.ChatID,
		"Notify":   onOff(user.ReceiveNotifications),
		"SubEnd":   end.Format("2006-01-02 15:04"),
		"SubLeft":  humanize.Time(end),
		"Triggers": len(user.Triggers),
		"Ignores":  len(user.Ignores),
	})), nil)
	return dispatcher.EndGroups
}

// /notify flips notifications, /notify on|off sets them.
func handleNotifyCmd(ctx *ext.Context, update *ext.Update) error {
	chatID := update.GetUserChat().GetID()
	user, err := currentUser(ctx, chatID)
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	on := !user.ReceiveNotifications
	if args := commandArgs(update.EffectiveMessage.Text); len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on", "1", "yes":
			on = true
		case "off", "0", "no":
			on = false
		}
	}
	if err := database.SetNotifications(ctx, user.ID, on); err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	forgetUser(chatID)
	key := i18nk.BotMsgNotifyDisabled
	if on {
		key = i18nk.BotMsgNotifyEnabled
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(key)), nil)
	return dispatcher.EndGroups
}

func onOff(b bool) string {
	if b {
		return i18n.T(i18nk.BotMsgCommonOn)
	}
	return i18n.T(i18nk.BotMsgCommonOff)
}
