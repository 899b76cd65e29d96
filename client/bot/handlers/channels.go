package handlers

import (
	"strconv"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/postcatcher/postcatcher-bot/client/bot/handlers/utils/msgelem"
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/common/utils/tgutil"
	"github.com/postcatcher/postcatcher-bot/database"
	"github.com/postcatcher/postcatcher-bot/pkg/chunk"
)

func handleChannelsCmd(ctx *ext.Context, update *ext.Update) error {
	logger := log.FromContext(ctx)
	args := commandArgs(update.EffectiveMessage.Text)
	if len(args) == 0 || validPage(args[0]) {
		// /channels [page]
		channels, err := database.GetAllChannels(ctx)
		if err != nil {
			replyInternal(ctx, update, err)
			return dispatcher.EndGroups
		}
		if len(channels) == 0 {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsEmpty)), nil)
			return dispatcher.EndGroups
		}
		index := 1
		if len(args) > 0 {
			index, _ = strconv.Atoi(args[0])
		}
		items := lo.Map(channels, func(c database.MonitoringChannel, _ int) msgelem.Item {
			return msgelem.Item{ID: c.ID, Text: c.Username}
		})
		page := chunk.Paginate(items, index, chunk.DefaultSize)
		ctx.Reply(update, ext.ReplyTextString(msgelem.BuildPage(i18n.T(i18nk.BotMsgChannelsTitle), page)), nil)
		return dispatcher.EndGroups
	}

	switch strings.ToLower(args[0]) {
	case "add":
		// /channels add @one t.me/two -1001234567890
		var channels []database.MonitoringChannel
		for _, arg := range args[1:] {
			name, ok := tgutil.NormalizeChannel(arg)
			if !ok {
				ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsInvalid, map[string]any{"Input": arg})), nil)
				continue
			}
			id, err := tgutil.ResolveChannelID(ctx, name)
			if err != nil {
				logger.Warn("Failed to resolve channel", "channel", name, "error", err)
				ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsInvalid, map[string]any{"Input": arg})), nil)
				continue
			}
			channels = append(channels, database.MonitoringChannel{Username: name, ChannelID: id})
		}
		channels = lo.UniqBy(channels, func(c database.MonitoringChannel) string { return c.Username })
		n, err := database.AddChannels(ctx, channels)
		if err != nil {
			replyInternal(ctx, update, err)
			return dispatcher.EndGroups
		}
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsAdded, map[string]any{"Count": n})), nil)
	case "del":
		// /channels del @one
		if len(args) < 2 {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsUsage)), nil)
			return dispatcher.EndGroups
		}
		name, ok := tgutil.NormalizeChannel(args[1])
		if !ok {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsInvalid, map[string]any{"Input": args[1]})), nil)
			return dispatcher.EndGroups
		}
		deleted, err := database.DeleteChannel(ctx, name)
		if err != nil {
			replyInternal(ctx, update, err)
			return dispatcher.EndGroups
		}
		key := i18nk.BotMsgChannelsDeleted
		if !deleted {
			key = i18nk.BotMsgChannelsNotFound
		}
		ctx.Reply(update, ext.ReplyTextString(i18n.T(key, map[string]any{"Name": name})), nil)
	default:
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgChannelsUsage)), nil)
	}
	return dispatcher.EndGroups
}
