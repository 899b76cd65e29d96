package tgutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/celestix/gotgproto/ext"
	"github.com/duke-git/lancet/v2/validator"
)

// ResolveChannelID returns the id of a channel given as @username or numeric id.
func ResolveChannelID(ctx *ext.Context, channel string) (int64, error) {
	channel = strings.TrimPrefix(channel, "@")
	if validator.IsIntStr(channel) {
		return strconv.ParseInt(channel, 10, 64)
	}
	chat, err := ctx.ResolveUsername(channel)
	if err != nil {
		return 0, err
	}
	if chat == nil || chat.GetID() == 0 {
		return 0, fmt.Errorf("no chat found for username: %s", channel)
	}
	return chat.GetID(), nil
}
