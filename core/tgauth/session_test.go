package tgauth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

const testHash = "0123456789abcdef0123456789abcdef"

func newTestContext() context.Context {
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

func validCreds() Credentials {
	return Credentials{Phone: "+79990001122", AppID: 12345, AppHash: testHash, SessionPath: "/tmp/79990001122.session"}
}

type fakeConn struct {
	net *fakeNetwork
}

func (c *fakeConn) Connect(context.Context) error {
	c.net.connects++
	return c.net.connectErr
}

func (c *fakeConn) Authorized(context.Context) (bool, error) {
	return c.net.authorized, nil
}

func (c *fakeConn) SendCode(_ context.Context, phone string) (string, error) {
	c.net.calls = append(c.net.calls, "send_code")
	if c.net.sendErr != nil {
		return "", c.net.sendErr
	}
	return c.net.hash, nil
}

func (c *fakeConn) SignIn(_ context.Context, phone, code, hash string) error {
	c.net.calls = append(c.net.calls, "sign_in:"+code+":"+hash)
	if c.net.signInErr != nil {
		return c.net.signInErr
	}
	c.net.authorized = true
	return nil
}

func (c *fakeConn) Password(_ context.Context, password string) error {
	c.net.calls = append(c.net.calls, "password:"+password)
	if c.net.passwordErr != nil {
		return c.net.passwordErr
	}
	c.net.authorized = true
	return nil
}

func (c *fakeConn) Disconnect() error {
	c.net.disconnects++
	return nil
}

type fakeNetwork struct {
	authorized  bool
	hash        string
	connectErr  error
	sendErr     error
	signInErr   error
	passwordErr error

	dials       int
	connects    int
	disconnects int
	calls       []string
}

func (n *fakeNetwork) Dial(Credentials) Conn {
	n.dials++
	return &fakeConn{net: n}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Credentials)
		want   Reason
	}{
		{"valid", func(*Credentials) {}, ""},
		{"valid without plus", func(c *Credentials) { c.Phone = "79990001122" }, ""},
		{"letters in phone", func(c *Credentials) { c.Phone = "+7999abc" }, ReasonInvalidPhone},
		{"empty phone", func(c *Credentials) { c.Phone = "" }, ReasonInvalidPhone},
		{"zero app id", func(c *Credentials) { c.AppID = 0 }, ReasonInvalidAppID},
		{"negative app id", func(c *Credentials) { c.AppID = -5 }, ReasonInvalidAppID},
		{"short hash", func(c *Credentials) { c.AppHash = "abc" }, ReasonInvalidAppHash},
		{"long hash", func(c *Credentials) { c.AppHash = testHash + "0" }, ReasonInvalidAppHash},
		{"empty path", func(c *Credentials) { c.SessionPath = "" }, ReasonInvalidPath},
		{"wrong extension", func(c *Credentials) { c.SessionPath = "/tmp/a.json" }, ReasonInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCreds()
			tt.modify(&c)
			if got := c.Validate(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if tt.want != "" && !tt.want.IsValidation() {
				t.Fatalf("expected %q to be a validation reason", tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone(" +7 (999) 000-11-22 "); got != "+79990001122" {
		t.Fatalf("unexpected phone %q", got)
	}
}

func TestRequestCodeValidationSkipsNetwork(t *testing.T) {
	net := &fakeNetwork{}
	c := validCreds()
	c.AppHash = "short"
	out := New(net).RequestCode(newTestContext(), c)
	if out.OK || out.Reason != ReasonInvalidAppHash {
		t.Fatalf("expected invalid_app_hash, got %+v", out)
	}
	if net.dials != 0 {
		t.Fatalf("expected no network calls, got %d dials", net.dials)
	}
}

func TestRequestCodeSendsCode(t *testing.T) {
	net := &fakeNetwork{hash: "h1"}
	out := New(net).RequestCode(newTestContext(), validCreds())
	if !out.OK || out.CodeHash != "h1" || out.AlreadyAuthorized() {
		t.Fatalf("expected code hash h1, got %+v", out)
	}
	if net.connects != 1 || net.disconnects != 1 {
		t.Fatalf("expected connect/disconnect pair, got %d/%d", net.connects, net.disconnects)
	}
}

func TestRequestCodeAlreadyAuthorized(t *testing.T) {
	net := &fakeNetwork{authorized: true}
	out := New(net).RequestCode(newTestContext(), validCreds())
	if !out.AlreadyAuthorized() {
		t.Fatalf("expected already authorized, got %+v", out)
	}
	if len(net.calls) != 0 {
		t.Fatalf("expected no code request, got %v", net.calls)
	}
}

func TestRequestCodeFailures(t *testing.T) {
	tests := []struct {
		err  error
		want Reason
	}{
		{ErrPhoneInvalid, ReasonInvalidPhone},
		{ErrPhoneBanned, ReasonPhoneBanned},
		{ErrPasswordNeeded, ReasonPasswordRequired},
		{&FloodWaitError{Wait: 42 * time.Second}, ReasonFloodWait},
		{errors.New("boom"), ReasonNetwork},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			net := &fakeNetwork{sendErr: tt.err}
			out := New(net).RequestCode(newTestContext(), validCreds())
			if out.OK || out.Reason != tt.want {
				t.Fatalf("expected %q, got %+v", tt.want, out)
			}
			if net.disconnects != 1 {
				t.Fatalf("expected disconnect after failure, got %d", net.disconnects)
			}
		})
	}
}

func TestRequestCodeFloodWaitSeconds(t *testing.T) {
	net := &fakeNetwork{sendErr: &FloodWaitError{Wait: 42 * time.Second}}
	out := New(net).RequestCode(newTestContext(), validCreds())
	if out.Wait != 42*time.Second {
		t.Fatalf("expected 42s wait, got %s", out.Wait)
	}
	if out.String() != "flood_wait:42" {
		t.Fatalf("unexpected string %q", out.String())
	}
}

func TestRequestCodeConnectError(t *testing.T) {
	net := &fakeNetwork{connectErr: errors.New("dial tcp: refused")}
	out := New(net).RequestCode(newTestContext(), validCreds())
	if out.Reason != ReasonNetwork || out.Err == nil {
		t.Fatalf("expected network_error, got %+v", out)
	}
	if net.disconnects != 0 {
		t.Fatalf("expected no disconnect without a connection, got %d", net.disconnects)
	}
}

func TestSubmitCode(t *testing.T) {
	net := &fakeNetwork{}
	out := New(net).SubmitCode(newTestContext(), SubmitRequest{Credentials: validCreds(), Code: "12345", CodeHash: "h1"})
	if !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(net.calls) != 1 || net.calls[0] != "sign_in:12345:h1" {
		t.Fatalf("unexpected calls %v", net.calls)
	}
	if net.disconnects != 1 {
		t.Fatalf("expected disconnect, got %d", net.disconnects)
	}
}

func TestSubmitCodeFailures(t *testing.T) {
	tests := []struct {
		err  error
		want Reason
	}{
		{ErrCodeInvalid, ReasonInvalidCode},
		{ErrCodeExpired, ReasonCodeExpired},
		{ErrPasswordNeeded, ReasonPasswordRequired},
		{ErrSignUpRequired, ReasonAuthFailed},
		{&FloodWaitError{Wait: time.Minute}, ReasonFloodWait},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			net := &fakeNetwork{signInErr: tt.err}
			out := New(net).SubmitCode(newTestContext(), SubmitRequest{Credentials: validCreds(), Code: "1", CodeHash: "h"})
			if out.OK || out.Reason != tt.want {
				t.Fatalf("expected %q, got %+v", tt.want, out)
			}
			if net.disconnects != 1 {
				t.Fatalf("expected disconnect after failure, got %d", net.disconnects)
			}
		})
	}
}

func TestSubmitPassword(t *testing.T) {
	net := &fakeNetwork{}
	out := New(net).SubmitCode(newTestContext(), SubmitRequest{Credentials: validCreds(), Code: "1", CodeHash: "h", Password: "secret"})
	if !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(net.calls) != 1 || net.calls[0] != "password:secret" {
		t.Fatalf("unexpected calls %v", net.calls)
	}

	net = &fakeNetwork{passwordErr: ErrPasswordInvalid}
	out = New(net).SubmitCode(newTestContext(), SubmitRequest{Credentials: validCreds(), Password: "wrong"})
	if out.Reason != ReasonInvalidPassword {
		t.Fatalf("expected invalid_password, got %+v", out)
	}
}

func TestSubmitCodeWithoutHash(t *testing.T) {
	net := &fakeNetwork{}
	out := New(net).SubmitCode(newTestContext(), SubmitRequest{Credentials: validCreds(), Code: "1"})
	if out.Reason != ReasonInvalidCode || net.dials != 0 {
		t.Fatalf("expected local invalid_code, got %+v after %d dials", out, net.dials)
	}
}

func TestSubmitCodeAlreadyAuthorized(t *testing.T) {
	net := &fakeNetwork{authorized: true}
	out := New(net).SubmitCode(newTestContext(), SubmitRequest{Credentials: validCreds(), Code: "1", CodeHash: "h"})
	if !out.OK || len(net.calls) != 0 {
		t.Fatalf("expected success without sign in, got %+v calls %v", out, net.calls)
	}
}
