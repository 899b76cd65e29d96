package tgutil

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/duke-git/lancet/v2/validator"
)

// MessageLink builds a t.me link to a message of channel, given as @username,
// username or a -100 prefixed id.
func MessageLink(channel string, messageID int64) string {
	channel = strings.TrimPrefix(strings.TrimSpace(channel), "@")
	if strings.HasPrefix(channel, "-100") && validator.IsIntStr(channel) {
		return fmt.Sprintf("https://t.me/c/%s/%d", strings.TrimPrefix(channel, "-100"), messageID)
	}
	return fmt.Sprintf("https://t.me/%s/%d", channel, messageID)
}

// NormalizeChannel turns @name, name, t.me/name or https://t.me/name into @name.
// Numeric ids are kept as they are. ok is false for input that is none of these.
func NormalizeChannel(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if validator.IsIntStr(s) {
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return "", false
		}
		return s, true
	}
	if strings.Contains(s, "t.me/") {
		if !strings.Contains(s, "://") {
			s = "https://" + s
		}
		u, err := url.Parse(s)
		if err != nil {
			return "", false
		}
		s = strings.Trim(u.Path, "/")
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.TrimPrefix(s, "@")
	if s == "" || strings.HasPrefix(s, "+") || !isUsername(s) {
		return "", false
	}
	return "@" + s, true
}

func isUsername(s string) bool {
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
