package catcher

import "github.com/postcatcher/postcatcher-bot/core/tgauth"

// Handshake is an unfinished login, held by the caller between steps.
// It is either AwaitingCode or AwaitingPassword.
type Handshake interface {
	Credentials() tgauth.Credentials
	isHandshake()
}

// AwaitingCode waits for the login code Telegram sent to the phone.
type AwaitingCode struct {
	Creds    tgauth.Credentials
	CodeHash string
	// CatcherID is the row being reconnected, 0 for a new registration.
	CatcherID uint
}

func (h AwaitingCode) Credentials() tgauth.Credentials { return h.Creds }
func (AwaitingCode) isHandshake()                      {}

// Register reports whether completing the handshake creates a new catcher.
func (h AwaitingCode) Register() bool { return h.CatcherID == 0 }

// AwaitingPassword waits for the two-step verification password after the code was accepted.
type AwaitingPassword struct {
	AwaitingCode
	Code string
}
