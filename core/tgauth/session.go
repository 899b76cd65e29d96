// Package tgauth drives the Telegram login of a catcher account: request a
// login code, then submit the code and, if the account has one, its password.
// Each step opens its own connection and closes it before returning.
package tgauth

import (
	"context"

	"github.com/charmbracelet/log"
)

// Conn is one connection to Telegram bound to a session file.
type Conn interface {
	Connect(ctx context.Context) error
	Authorized(ctx context.Context) (bool, error)
	// SendCode returns the code hash, or "" when the session is already authorized.
	SendCode(ctx context.Context, phone string) (string, error)
	SignIn(ctx context.Context, phone, code, codeHash string) error
	Password(ctx context.Context, password string) error
	Disconnect() error
}

// Network opens connections for a set of credentials.
type Network interface {
	Dial(c Credentials) Conn
}

type SubmitRequest struct {
	Credentials
	Code     string
	CodeHash string
	// Password is the two-step verification password. When set, the code was
	// already accepted and only the password is checked.
	Password string
}

type Session struct {
	net Network
}

func New(net Network) *Session {
	return &Session{net: net}
}

// RequestCode asks Telegram to send a login code to c.Phone.
func (s *Session) RequestCode(ctx context.Context, c Credentials) Outcome {
	logger := log.FromContext(ctx).With("phone", c.Phone)
	if r := c.Validate(); r != "" {
		logger.Warn("Invalid credentials", "reason", r)
		return failed(r)
	}

	var out Outcome
	err := s.withConn(ctx, c, func(conn Conn) error {
		authorized, err := conn.Authorized(ctx)
		if err != nil {
			return err
		}
		if authorized {
			out = Outcome{OK: true}
			return nil
		}
		hash, err := conn.SendCode(ctx, c.Phone)
		if err != nil {
			return err
		}
		out = Outcome{OK: true, CodeHash: hash}
		return nil
	})
	if err != nil {
		out = outcomeOf(err)
		logger.Warn("Failed to request login code", "reason", out.Reason, "error", err)
		return out
	}
	logger.Info("Login code requested", "authorized", out.AlreadyAuthorized())
	return out
}

// SubmitCode completes the login started by RequestCode.
func (s *Session) SubmitCode(ctx context.Context, req SubmitRequest) Outcome {
	logger := log.FromContext(ctx).With("phone", req.Phone)
	if r := req.Validate(); r != "" {
		logger.Warn("Invalid credentials", "reason", r)
		return failed(r)
	}
	if req.Password == "" && (req.Code == "" || req.CodeHash == "") {
		return failed(ReasonInvalidCode)
	}

	err := s.withConn(ctx, req.Credentials, func(conn Conn) error {
		authorized, err := conn.Authorized(ctx)
		if err != nil {
			return err
		}
		if authorized {
			return nil
		}
		if req.Password != "" {
			err = conn.Password(ctx, req.Password)
		} else {
			err = conn.SignIn(ctx, req.Phone, req.Code, req.CodeHash)
		}
		if err != nil {
			return err
		}
		authorized, err = conn.Authorized(ctx)
		if err != nil {
			return err
		}
		if !authorized {
			return errNotAuthorized
		}
		return nil
	})
	if err != nil {
		out := outcomeOf(err)
		if err == errNotAuthorized {
			out = failed(ReasonAuthFailed)
		}
		logger.Warn("Login failed", "reason", out.Reason, "error", err)
		return out
	}
	logger.Info("Catcher session authorized")
	return Outcome{OK: true}
}

func (s *Session) withConn(ctx context.Context, c Credentials, fn func(Conn) error) error {
	conn := s.net.Dial(c)
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := conn.Disconnect(); err != nil {
			log.FromContext(ctx).Debug("Disconnect failed", "phone", c.Phone, "error", err)
		}
	}()
	return fn(conn)
}
