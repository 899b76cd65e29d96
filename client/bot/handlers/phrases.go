package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/postcatcher/postcatcher-bot/client/bot/handlers/utils/msgelem"
	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/database"
	"github.com/postcatcher/postcatcher-bot/pkg/chunk"
)

type phraseKind struct {
	cmd   string
	title i18nk.Key
	items func(u *database.User) []msgelem.Item
	add   func(ctx context.Context, userID uint, phrases []string) (int, error)
	del   func(ctx context.Context, userID, id uint) error
}

var (
	triggerKind = phraseKind{
		cmd:   "triggers",
		title: i18nk.BotMsgTriggersTitle,
		items: func(u *database.User) []msgelem.Item {
			return lo.Map(u.Triggers, func(t database.Trigger, _ int) msgelem.Item {
				return msgelem.Item{ID: t.ID, Text: t.Content}
			})
		},
		add: database.AddTriggers,
		del: database.DeleteTrigger,
	}
	ignoreKind = phraseKind{
		cmd:   "ignores",
		title: i18nk.BotMsgIgnoresTitle,
		items: func(u *database.User) []msgelem.Item {
			return lo.Map(u.Ignores, func(i database.Ignore, _ int) msgelem.Item {
				return msgelem.Item{ID: i.ID, Text: i.Content}
			})
		},
		add: database.AddIgnores,
		del: database.DeleteIgnore,
	}
)

func handleTriggersCmd(ctx *ext.Context, update *ext.Update) error {
	return handlePhrases(ctx, update, triggerKind)
}

func handleIgnoresCmd(ctx *ext.Context, update *ext.Update) error {
	return handlePhrases(ctx, update, ignoreKind)
}

func handlePhrases(ctx *ext.Context, update *ext.Update, kind phraseKind) error {
	chatID := update.GetUserChat().GetID()
	user, err := currentUser(ctx, chatID)
	if err != nil {
		replyInternal(ctx, update, err)
		return dispatcher.EndGroups
	}
	text := update.EffectiveMessage.Text
	args := commandArgs(text)
	usage := map[string]any{"Cmd": kind.cmd}

	if len(args) == 0 || validPage(args[0]) {
		// /triggers [page]
		items := kind.items(user)
		if len(items) == 0 {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgPhrasesEmpty, usage)), nil)
			return dispatcher.EndGroups
		}
		index := 1
		if len(args) > 0 {
			index, _ = strconv.Atoi(args[0])
		}
		page := chunk.Paginate(items, index, chunk.DefaultSize)
		ctx.Reply(update, ext.ReplyTextString(msgelem.BuildPage(i18n.T(kind.title), page)), nil)
		return dispatcher.EndGroups
	}

	switch strings.ToLower(args[0]) {
	case "add":
		// /triggers add one phrase
		// another phrase
		phrases := strings.Split(commandBody(text, 2), "\n")
		n, err := kind.add(ctx, user.ID, phrases)
		if err != nil {
			replyInternal(ctx, update, err)
			return dispatcher.EndGroups
		}
		forgetUser(chatID)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgPhrasesAdded, map[string]any{"Count": n})), nil)
	case "del":
		// /triggers del 3 5 8
		if len(args) < 2 {
			ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgPhrasesUsage, usage)), nil)
			return dispatcher.EndGroups
		}
		deleted := 0
		for _, arg := range args[1:] {
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgCommonErrorInvalidID, map[string]any{"Input": arg})), nil)
				continue
			}
			err = kind.del(ctx, user.ID, uint(id))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgPhrasesNotFound, map[string]any{"ID": id})), nil)
				continue
			}
			if err != nil {
				replyInternal(ctx, update, err)
				break
			}
			deleted++
		}
		forgetUser(chatID)
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgPhrasesDeleted, map[string]any{"Count": deleted})), nil)
	default:
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgPhrasesUsage, usage)), nil)
	}
	return dispatcher.EndGroups
}

func validPage(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// commandBody drops the first n words of text and keeps the rest with its line breaks.
func commandBody(text string, n int) string {
	for range n {
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		i := strings.IndexFunc(text, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		text = text[i:]
	}
	return strings.TrimSpace(text)
}
