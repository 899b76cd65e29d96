package msgelem

import (
	"fmt"
	"strings"

	"github.com/gotd/td/telegram/message/styling"

	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/database"
)

func BuildCatcherListStyling(catchers []database.Catcher) []styling.StyledTextOption {
	if len(catchers) == 0 {
		return []styling.StyledTextOption{styling.Plain(i18n.T(i18nk.BotMsgCatcherListEmpty))}
	}
	return []styling.StyledTextOption{
		styling.Bold(i18n.T(i18nk.BotMsgCatcherListTitle)),
		styling.Plain("\n\n"),
		styling.Blockquote(func() string {
			var sb strings.Builder
			for _, c := range catchers {
				state := "🔴"
				if c.IsConnected {
					state = "🟢"
				}
				fmt.Fprintf(&sb, "%s %d: %s (app %d)\n", state, c.ID, c.Phone, c.AppID)
			}
			return Clip(sb.String(), MaxTextLen)
		}(), false),
	}
}
