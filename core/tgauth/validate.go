package tgauth

import (
	"regexp"
	"strings"
)

const appHashLen = 32

var phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

// Credentials identify one catcher account and its session file.
type Credentials struct {
	Phone       string
	AppID       int
	AppHash     string
	SessionPath string
}

// Validate checks the credentials locally. An empty Reason means valid.
func (c Credentials) Validate() Reason {
	switch {
	case !phonePattern.MatchString(c.Phone):
		return ReasonInvalidPhone
	case c.AppID <= 0:
		return ReasonInvalidAppID
	case len(c.AppHash) != appHashLen:
		return ReasonInvalidAppHash
	case c.SessionPath == "" || !strings.HasSuffix(c.SessionPath, ".session"):
		return ReasonInvalidPath
	}
	return ""
}

// NormalizePhone strips spaces, dashes and brackets people paste along with a number.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
