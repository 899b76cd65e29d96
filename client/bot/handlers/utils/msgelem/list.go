// Package msgelem builds the texts of the bot replies.
package msgelem

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/postcatcher/postcatcher-bot/common/i18n"
	"github.com/postcatcher/postcatcher-bot/common/i18n/i18nk"
	"github.com/postcatcher/postcatcher-bot/pkg/chunk"
)

// MaxTextLen keeps replies under the Telegram message limit of 4096.
const MaxTextLen = 4000

// Item is one line of a numbered list view.
type Item struct {
	ID   uint
	Text string
}

// BuildPage renders title, one "id: text" line per item and the page footer.
func BuildPage(title string, page chunk.Page[Item]) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	for _, it := range page.Items {
		fmt.Fprintf(&sb, "%d: %s\n", it.ID, it.Text)
	}
	if page.Total > 1 {
		sb.WriteString("\n")
		sb.WriteString(i18n.T(i18nk.BotMsgCommonPageFooter, map[string]any{
			"Page":  page.Index,
			"Total": page.Total,
		}))
	}
	return Clip(sb.String(), MaxTextLen)
}

// Clip cuts s to at most n runes, marking the cut with an ellipsis.
func Clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
