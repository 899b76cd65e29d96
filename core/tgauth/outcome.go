package tgauth

import (
	"errors"
	"fmt"
	"time"
)

// Reason is a machine readable cause of a failed auth step.
type Reason string

const (
	ReasonInvalidPhone     Reason = "invalid_phone"
	ReasonInvalidAppID     Reason = "invalid_app_id"
	ReasonInvalidAppHash   Reason = "invalid_app_hash"
	ReasonInvalidPath      Reason = "invalid_path"
	ReasonPhoneBanned      Reason = "phone_banned"
	ReasonPasswordRequired Reason = "password_required"
	ReasonFloodWait        Reason = "flood_wait"
	ReasonInvalidCode      Reason = "invalid_code"
	ReasonCodeExpired      Reason = "code_expired"
	ReasonInvalidPassword  Reason = "invalid_password"
	ReasonAuthFailed       Reason = "auth_failed"
	ReasonNetwork          Reason = "network_error"
)

// IsValidation reports whether the reason was decided before any network call.
func (r Reason) IsValidation() bool {
	switch r {
	case ReasonInvalidPhone, ReasonInvalidAppID, ReasonInvalidAppHash, ReasonInvalidPath:
		return true
	}
	return false
}

// Outcome is the result of an auth step. Failures are values, not errors.
type Outcome struct {
	OK bool
	// CodeHash is set by a successful RequestCode that actually sent a code.
	CodeHash string
	Reason   Reason
	// Wait is the flood wait imposed by Telegram.
	Wait time.Duration
	// Err is the underlying error for network and unknown failures.
	Err error
}

// AlreadyAuthorized reports a RequestCode success that needs no code.
func (o Outcome) AlreadyAuthorized() bool {
	return o.OK && o.CodeHash == ""
}

func (o Outcome) String() string {
	switch {
	case o.OK && o.CodeHash != "":
		return "code sent"
	case o.OK:
		return "authorized"
	case o.Reason == ReasonFloodWait:
		return fmt.Sprintf("%s:%d", o.Reason, int(o.Wait.Seconds()))
	case o.Err != nil:
		return fmt.Sprintf("%s: %v", o.Reason, o.Err)
	}
	return string(o.Reason)
}

func failed(r Reason) Outcome {
	return Outcome{Reason: r}
}

// Errors a Conn reports for the Telegram failures that have their own Reason.
var (
	ErrPhoneInvalid     = errors.New("phone number invalid")
	ErrPhoneBanned      = errors.New("phone number banned")
	ErrPasswordNeeded   = errors.New("two-step verification password required")
	ErrPasswordInvalid  = errors.New("password invalid")
	ErrCodeInvalid      = errors.New("phone code invalid")
	ErrCodeExpired      = errors.New("phone code expired")
	ErrSignUpRequired   = errors.New("phone number is not registered")
	ErrUnexpectedAnswer = errors.New("unexpected answer")

	errNotAuthorized = errors.New("session not authorized after sign in")
)

// FloodWaitError carries the wait Telegram demands before the next attempt.
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait %s", e.Wait)
}

func outcomeOf(err error) Outcome {
	var flood *FloodWaitError
	switch {
	case errors.As(err, &flood):
		return Outcome{Reason: ReasonFloodWait, Wait: flood.Wait, Err: err}
	case errors.Is(err, ErrPhoneInvalid):
		return failed(ReasonInvalidPhone)
	case errors.Is(err, ErrPhoneBanned):
		return failed(ReasonPhoneBanned)
	case errors.Is(err, ErrPasswordNeeded):
		return failed(ReasonPasswordRequired)
	case errors.Is(err, ErrPasswordInvalid):
		return failed(ReasonInvalidPassword)
	case errors.Is(err, ErrCodeInvalid):
		return failed(ReasonInvalidCode)
	case errors.Is(err, ErrCodeExpired):
		return failed(ReasonCodeExpired)
	case errors.Is(err, ErrSignUpRequired):
		return Outcome{Reason: ReasonAuthFailed, Err: err}
	}
	return Outcome{Reason: ReasonNetwork, Err: err}
}
