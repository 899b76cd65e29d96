// Package catcher ties catcher rows, their Telegram sessions and their
// processes together: registration, connect, disconnect and delete.
package catcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"
	"gorm.io/gorm"

	"github.com/postcatcher/postcatcher-bot/core/tgauth"
	"github.com/postcatcher/postcatcher-bot/database"
)

var (
	ErrNotFound = errors.New("catcher not found")
	ErrConflict = errors.New("catcher already registered")
	// ErrNotStarted is returned when the session is authorized but the process does not come up.
	ErrNotStarted = errors.New("catcher process did not start with an authorized session")
)

// Store persists catcher rows. NotFound is reported as gorm.ErrRecordNotFound.
type Store interface {
	GetCatcher(ctx context.Context, id uint) (*database.Catcher, error)
	GetAllCatchers(ctx context.Context) ([]database.Catcher, error)
	CatcherExists(ctx context.Context, appHash, phone string) (bool, error)
	CreateCatcher(ctx context.Context, c *database.Catcher) error
	SaveCatcher(ctx context.Context, c *database.Catcher) error
	SaveCatchers(ctx context.Context, cs []database.Catcher) error
	DeleteCatcher(ctx context.Context, c *database.Catcher) error
}

type Supervisor interface {
	Start(ctx context.Context, phone, sessionPath string, appID int, appHash string) int
	IsRunning(ctx context.Context, phone string) bool
	Stop(ctx context.Context, phone string, deleteSession bool)
	SessionPath(phone string) string
}

type Authenticator interface {
	RequestCode(ctx context.Context, c tgauth.Credentials) tgauth.Outcome
	SubmitCode(ctx context.Context, req tgauth.SubmitRequest) tgauth.Outcome
}

// Result is what a lifecycle step produced. Exactly one of Catcher or Next is
// set on progress; both are nil when Outcome holds a failure.
type Result struct {
	// Catcher is the connected catcher.
	Catcher *database.Catcher
	// Next is the handshake to continue with.
	Next    Handshake
	Outcome tgauth.Outcome
}

func (r Result) Connected() bool { return r.Catcher != nil }

type Manager struct {
	store  Store
	sup    Supervisor
	auth   Authenticator
	settle time.Duration

	wg sync.WaitGroup
}

func NewManager(store Store, sup Supervisor, auth Authenticator, settle time.Duration) *Manager {
	return &Manager{store: store, sup: sup, auth: auth, settle: settle}
}

func (m *Manager) get(ctx context.Context, id uint) (*database.Catcher, error) {
	c, err := m.store.GetCatcher(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, oops.Code("not_found").With("catcher_id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("storage").With("catcher_id", id).Wrapf(err, "loading catcher")
	}
	return c, nil
}

func credentialsOf(c *database.Catcher) tgauth.Credentials {
	return tgauth.Credentials{Phone: c.Phone, AppID: c.AppID, AppHash: c.AppHash, SessionPath: c.SessionPath}
}

// Connect starts the catcher from its stored session. When the process does
// not come up, a login code is requested and the handshake returned.
func (m *Manager) Connect(ctx context.Context, id uint) (Result, error) {
	c, err := m.get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	logger := log.FromContext(ctx).With("catcher_id", id, "phone", c.Phone)

	running := m.sup.Start(ctx, c.Phone, c.SessionPath, c.AppID, c.AppHash) > 0 && m.sup.IsRunning(ctx, c.Phone)
	if !running {
		if err := sleep(ctx, m.settle); err != nil {
			return Result{}, err
		}
		running = m.sup.IsRunning(ctx, c.Phone)
	}
	if running {
		c.IsConnected = true
		if err := m.store.SaveCatcher(ctx, c); err != nil {
			return Result{}, oops.Code("storage").With("catcher_id", id).Wrapf(err, "saving catcher")
		}
		logger.Info("Catcher connected")
		return Result{Catcher: c, Outcome: tgauth.Outcome{OK: true}}, nil
	}

	logger.Info("Catcher did not start, requesting login code")
	out := m.auth.RequestCode(ctx, credentialsOf(c))
	switch {
	case !out.OK:
		return Result{Outcome: out}, nil
	case out.AlreadyAuthorized():
		// the session is fine, the process is what fails
		return Result{Outcome: out}, oops.Code("process").With("catcher_id", id).Wrap(ErrNotStarted)
	}
	return Result{
		Next:    AwaitingCode{Creds: credentialsOf(c), CodeHash: out.CodeHash, CatcherID: c.ID},
		Outcome: out,
	}, nil
}

// Begin starts registering a new catcher for phone.
func (m *Manager) Begin(ctx context.Context, phone string, appID int, appHash string) (Result, error) {
	creds := tgauth.Credentials{
		Phone:       tgauth.NormalizePhone(phone),
		AppID:       appID,
		AppHash:     appHash,
		SessionPath: m.sup.SessionPath(tgauth.NormalizePhone(phone)),
	}
	if r := creds.Validate(); r != "" {
		return Result{Outcome: tgauth.Outcome{Reason: r}}, nil
	}
	if exists, err := m.store.CatcherExists(ctx, creds.AppHash, creds.Phone); err != nil {
		return Result{}, oops.Code("storage").Wrapf(err, "checking catcher")
	} else if exists {
		return Result{}, oops.Code("conflict").With("phone", creds.Phone).Wrap(ErrConflict)
	}
	if abs, err := filepath.Abs(creds.SessionPath); err == nil {
		creds.SessionPath = abs
	}
	if err := os.MkdirAll(filepath.Dir(creds.SessionPath), 0755); err != nil {
		return Result{}, oops.Code("process").Wrapf(err, "creating session directory")
	}

	out := m.auth.RequestCode(ctx, creds)
	if !out.OK {
		return Result{Outcome: out}, nil
	}
	if out.AlreadyAuthorized() {
		c, err := m.finish(ctx, AwaitingCode{Creds: creds})
		return Result{Catcher: c, Outcome: out}, err
	}
	return Result{Next: AwaitingCode{Creds: creds, CodeHash: out.CodeHash}, Outcome: out}, nil
}

// Complete feeds input, a code or a password depending on h, into the handshake.
// A failed attempt returns h again so the caller can retry.
func (m *Manager) Complete(ctx context.Context, h Handshake, input string) (Result, error) {
	var (
		code AwaitingCode
		req  tgauth.SubmitRequest
	)
	switch st := h.(type) {
	case AwaitingCode:
		code = st
		req = tgauth.SubmitRequest{Credentials: st.Creds, Code: input, CodeHash: st.CodeHash}
	case AwaitingPassword:
		code = st.AwaitingCode
		req = tgauth.SubmitRequest{Credentials: st.Creds, Code: st.Code, CodeHash: st.CodeHash, Password: input}
	default:
		return Result{}, oops.Code("validation").Errorf("unknown handshake %T", h)
	}

	out := m.auth.SubmitCode(ctx, req)
	if out.Reason == tgauth.ReasonPasswordRequired {
		if pw, ok := h.(AwaitingPassword); ok {
			// the accepted code stays, only the password is asked again
			return Result{Next: pw, Outcome: out}, nil
		}
		return Result{Next: AwaitingPassword{AwaitingCode: code, Code: input}, Outcome: out}, nil
	}
	if !out.OK {
		return Result{Next: h, Outcome: out}, nil
	}
	c, err := m.finish(ctx, code)
	if err != nil {
		return Result{Outcome: out}, err
	}
	return Result{Catcher: c, Outcome: out}, nil
}

// finish records the authorized catcher and launches its process in the background.
func (m *Manager) finish(ctx context.Context, h AwaitingCode) (*database.Catcher, error) {
	var c *database.Catcher
	if h.Register() {
		exists, err := m.store.CatcherExists(ctx, h.Creds.AppHash, h.Creds.Phone)
		if err != nil {
			return nil, oops.Code("storage").Wrapf(err, "checking catcher")
		}
		if exists {
			return nil, oops.Code("conflict").With("phone", h.Creds.Phone).Wrap(ErrConflict)
		}
		c = &database.Catcher{
			Name:        h.Creds.Phone,
			Phone:       h.Creds.Phone,
			AppID:       h.Creds.AppID,
			AppHash:     h.Creds.AppHash,
			SessionPath: h.Creds.SessionPath,
			IsConnected: true,
		}
		if err := m.store.CreateCatcher(ctx, c); err != nil {
			return nil, oops.Code("storage").With("phone", c.Phone).Wrapf(err, "creating catcher")
		}
	} else {
		var err error
		if c, err = m.get(ctx, h.CatcherID); err != nil {
			return nil, err
		}
		c.IsConnected = true
		if err := m.store.SaveCatcher(ctx, c); err != nil {
			return nil, oops.Code("storage").With("catcher_id", c.ID).Wrapf(err, "saving catcher")
		}
	}

	log.FromContext(ctx).Info("Catcher authorized", "catcher_id", c.ID, "phone", c.Phone)
	m.launch(ctx, *c)
	return c, nil
}

func (m *Manager) launch(ctx context.Context, c database.Catcher) {
	ctx = context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.sup.Start(ctx, c.Phone, c.SessionPath, c.AppID, c.AppHash)
	}()
}

// Wait blocks until background launches have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Disconnect marks the catcher disconnected and stops its process.
func (m *Manager) Disconnect(ctx context.Context, id uint) (*database.Catcher, error) {
	c, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsConnected = false
	if err := m.store.SaveCatcher(ctx, c); err != nil {
		return nil, oops.Code("storage").With("catcher_id", id).Wrapf(err, "saving catcher")
	}
	m.sup.Stop(ctx, c.Phone, false)
	return c, nil
}

// Delete stops the catcher, removes its session file and then its row.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	c, err := m.get(ctx, id)
	if err != nil {
		return err
	}
	m.sup.Stop(ctx, c.Phone, true)
	if c.SessionPath != "" && c.SessionPath != m.sup.SessionPath(c.Phone) {
		if err := os.Remove(c.SessionPath); err != nil && !os.IsNotExist(err) {
			log.FromContext(ctx).Warn("Failed to remove session file", "path", c.SessionPath, "error", err)
		}
	}
	if err := m.store.DeleteCatcher(ctx, c); err != nil {
		return oops.Code("storage").With("catcher_id", id).Wrapf(err, "deleting catcher")
	}
	return nil
}

// RefreshAll syncs every row's connection flag with its process state.
func (m *Manager) RefreshAll(ctx context.Context) ([]database.Catcher, error) {
	catchers, err := m.store.GetAllCatchers(ctx)
	if err != nil {
		return nil, oops.Code("storage").Wrapf(err, "listing catchers")
	}
	for i := range catchers {
		catchers[i].IsConnected = m.sup.IsRunning(ctx, catchers[i].Phone)
	}
	if err := m.store.SaveCatchers(ctx, catchers); err != nil {
		return nil, oops.Code("storage").Wrapf(err, "saving catchers")
	}
	return catchers, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for catcher: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
