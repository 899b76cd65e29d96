package tgauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// GotdNetwork connects through gotd with a file backed session.
type GotdNetwork struct {
	Resolver    dcs.Resolver
	Middlewares []telegram.Middleware
}

func (n GotdNetwork) Dial(c Credentials) Conn {
	client := telegram.NewClient(c.AppID, c.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.SessionPath},
		Resolver:       n.Resolver,
		Middlewares:    n.Middlewares,
		NoUpdates:      true,
	})
	return &gotdConn{client: client}
}

type gotdConn struct {
	client *telegram.Client
	stop   bg.StopFunc
}

func (c *gotdConn) Connect(ctx context.Context) error {
	stop, err := bg.Connect(c.client, bg.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", mapError(err))
	}
	c.stop = stop
	return nil
}

func (c *gotdConn) Authorized(ctx context.Context) (bool, error) {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return false, mapError(err)
	}
	return status.Authorized, nil
}

func (c *gotdConn) SendCode(ctx context.Context, phone string) (string, error) {
	sent, err := c.client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", mapError(err)
	}
	switch s := sent.(type) {
	case *tg.AuthSentCode:
		return s.PhoneCodeHash, nil
	case *tg.AuthSentCodeSuccess:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnexpectedAnswer, sent)
	}
}

func (c *gotdConn) SignIn(ctx context.Context, phone, code, codeHash string) error {
	_, err := c.client.Auth().SignIn(ctx, phone, code, codeHash)
	return mapError(err)
}

func (c *gotdConn) Password(ctx context.Context, password string) error {
	_, err := c.client.Auth().Password(ctx, password)
	return mapError(err)
}

func (c *gotdConn) Disconnect() error {
	if c.stop == nil {
		return nil
	}
	err := c.stop()
	c.stop = nil
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return &FloodWaitError{Wait: d}
	}
	var signUp *auth.SignUpRequired
	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded), tgerr.Is(err, "SESSION_PASSWORD_NEEDED"):
		return ErrPasswordNeeded
	case errors.Is(err, auth.ErrPasswordInvalid), tgerr.Is(err, "PASSWORD_HASH_INVALID"):
		return ErrPasswordInvalid
	case errors.As(err, &signUp):
		return ErrSignUpRequired
	case tgerr.Is(err, "PHONE_NUMBER_INVALID"):
		return ErrPhoneInvalid
	case tgerr.Is(err, "PHONE_NUMBER_BANNED"):
		return ErrPhoneBanned
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EMPTY"):
		return ErrCodeInvalid
	case tgerr.Is(err, "PHONE_CODE_EXPIRED"):
		return ErrCodeExpired
	}
	return err
}
