package catcher

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/postcatcher/postcatcher-bot/core/tgauth"
	"github.com/postcatcher/postcatcher-bot/database"
)

const testHash = "0123456789abcdef0123456789abcdef"

func newTestContext() context.Context {
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

type memStore struct {
	rows   map[uint]database.Catcher
	nextID uint
}

func newMemStore(rows ...database.Catcher) *memStore {
	s := &memStore{rows: map[uint]database.Catcher{}}
	for _, r := range rows {
		s.nextID++
		r.ID = s.nextID
		s.rows[r.ID] = r
	}
	return s
}

func (s *memStore) GetCatcher(_ context.Context, id uint) (*database.Catcher, error) {
	c, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s *memStore) GetAllCatchers(context.Context) ([]database.Catcher, error) {
	out := make([]database.Catcher, 0, len(s.rows))
	for id := uint(1); id <= s.nextID; id++ {
		if c, ok := s.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) CatcherExists(_ context.Context, appHash, phone string) (bool, error) {
	for _, c := range s.rows {
		if c.AppHash == appHash || c.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateCatcher(_ context.Context, c *database.Catcher) error {
	s.nextID++
	c.ID = s.nextID
	s.rows[c.ID] = *c
	return nil
}

func (s *memStore) SaveCatcher(_ context.Context, c *database.Catcher) error {
	s.rows[c.ID] = *c
	return nil
}

func (s *memStore) SaveCatchers(_ context.Context, cs []database.Catcher) error {
	for _, c := range cs {
		s.rows[c.ID] = c
	}
	return nil
}

func (s *memStore) DeleteCatcher(_ context.Context, c *database.Catcher) error {
	delete(s.rows, c.ID)
	return nil
}

type fakeSup struct {
	mu      sync.Mutex
	dir     string
	running map[string]bool
	startOK bool // Start brings the process up
	starts  []string
	stops   []string
	deleted []string
}

func newFakeSup(t *testing.T) *fakeSup {
	return &fakeSup{dir: t.TempDir(), running: map[string]bool{}}
}

func (f *fakeSup) Start(_ context.Context, phone, _ string, _ int, _ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, phone)
	if f.running[phone] {
		return 100
	}
	if f.startOK {
		f.running[phone] = true
		return 100
	}
	return -1
}

func (f *fakeSup) IsRunning(_ context.Context, phone string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[phone]
}

func (f *fakeSup) Stop(_ context.Context, phone string, deleteSession bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, phone)
	if deleteSession {
		f.deleted = append(f.deleted, phone)
	}
	delete(f.running, phone)
}

func (f *fakeSup) SessionPath(phone string) string {
	return filepath.Join(f.dir, phone+".session")
}

type fakeAuth struct {
	request  tgauth.Outcome
	submit   []tgauth.Outcome
	requests int
	submits  []tgauth.SubmitRequest
}

func (f *fakeAuth) RequestCode(context.Context, tgauth.Credentials) tgauth.Outcome {
	f.requests++
	return f.request
}

func (f *fakeAuth) SubmitCode(_ context.Context, req tgauth.SubmitRequest) tgauth.Outcome {
	f.submits = append(f.submits, req)
	out := f.submit[0]
	if len(f.submit) > 1 {
		f.submit = f.submit[1:]
	}
	return out
}

func storedCatcher(phone string, connected bool) database.Catcher {
	return database.Catcher{Phone: phone, AppID: 1, AppHash: testHash, SessionPath: "/sessions/" + phone + ".session", IsConnected: connected}
}

func TestConnectAlreadyRunning(t *testing.T) {
	store := newMemStore(storedCatcher("111", false))
	sup := newFakeSup(t)
	sup.running["111"] = true
	auth := &fakeAuth{}
	m := NewManager(store, sup, auth, 0)

	res, err := m.Connect(newTestContext(), 1)
	require.NoError(t, err)
	require.True(t, res.Connected())
	require.Zero(t, auth.requests, "no login when the process runs")
	require.True(t, store.rows[1].IsConnected)
}

func TestConnectStartsProcess(t *testing.T) {
	store := newMemStore(storedCatcher("111", false))
	sup := newFakeSup(t)
	sup.startOK = true
	m := NewManager(store, sup, &fakeAuth{}, 0)

	res, err := m.Connect(newTestContext(), 1)
	require.NoError(t, err)
	require.True(t, res.Connected())
	require.Equal(t, []string{"111"}, sup.starts)
}

func TestConnectRequestsCode(t *testing.T) {
	store := newMemStore(storedCatcher("111", true))
	auth := &fakeAuth{request: tgauth.Outcome{OK: true, CodeHash: "hash"}}
	m := NewManager(store, newFakeSup(t), auth, 0)

	res, err := m.Connect(newTestContext(), 1)
	require.NoError(t, err)
	require.False(t, res.Connected())
	h, ok := res.Next.(AwaitingCode)
	require.True(t, ok, "expected AwaitingCode, got %T", res.Next)
	require.Equal(t, "hash", h.CodeHash)
	require.Equal(t, uint(1), h.CatcherID)
	require.False(t, h.Register())
}

func TestConnectAuthFailure(t *testing.T) {
	store := newMemStore(storedCatcher("111", false))
	auth := &fakeAuth{request: tgauth.Outcome{Reason: tgauth.ReasonPhoneBanned}}
	m := NewManager(store, newFakeSup(t), auth, 0)

	res, err := m.Connect(newTestContext(), 1)
	require.NoError(t, err)
	require.Nil(t, res.Next)
	require.Equal(t, tgauth.ReasonPhoneBanned, res.Outcome.Reason)
}

func TestConnectAuthorizedButNotStarting(t *testing.T) {
	store := newMemStore(storedCatcher("111", false))
	auth := &fakeAuth{request: tgauth.Outcome{OK: true}}
	m := NewManager(store, newFakeSup(t), auth, 0)

	res, err := m.Connect(newTestContext(), 1)
	require.ErrorIs(t, err, ErrNotStarted)
	require.Nil(t, res.Next)
	require.False(t, store.rows[1].IsConnected)
}

func TestConnectNotFound(t *testing.T) {
	m := NewManager(newMemStore(), newFakeSup(t), &fakeAuth{}, 0)
	_, err := m.Connect(newTestContext(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrationWithCode(t *testing.T) {
	store := newMemStore()
	sup := newFakeSup(t)
	auth := &fakeAuth{
		request: tgauth.Outcome{OK: true, CodeHash: "hash"},
		submit:  []tgauth.Outcome{{OK: true}},
	}
	m := NewManager(store, sup, auth, 0)
	ctx := newTestContext()

	res, err := m.Begin(ctx, "+7 999 000-11-22", 12345, testHash)
	require.NoError(t, err)
	h, ok := res.Next.(AwaitingCode)
	require.True(t, ok)
	require.True(t, h.Register())
	require.Equal(t, "+79990001122", h.Creds.Phone)

	res, err = m.Complete(ctx, h, "55555")
	require.NoError(t, err)
	require.True(t, res.Connected())
	m.Wait()

	require.Len(t, store.rows, 1)
	row := store.rows[res.Catcher.ID]
	require.True(t, row.IsConnected)
	require.Equal(t, "+79990001122", row.Phone)
	require.Equal(t, []string{"+79990001122"}, sup.starts)
	require.Equal(t, "55555", auth.submits[0].Code)
	require.Equal(t, "hash", auth.submits[0].CodeHash)
}

func TestRegistrationWithPassword(t *testing.T) {
	store := newMemStore()
	auth := &fakeAuth{
		request: tgauth.Outcome{OK: true, CodeHash: "hash"},
		submit:  []tgauth.Outcome{{Reason: tgauth.ReasonPasswordRequired}, {OK: true}},
	}
	m := NewManager(store, newFakeSup(t), auth, 0)
	ctx := newTestContext()

	res, err := m.Begin(ctx, "79990001122", 12345, testHash)
	require.NoError(t, err)

	res, err = m.Complete(ctx, res.Next, "55555")
	require.NoError(t, err)
	pw, ok := res.Next.(AwaitingPassword)
	require.True(t, ok, "expected AwaitingPassword, got %T", res.Next)
	require.Equal(t, "55555", pw.Code)

	res, err = m.Complete(ctx, pw, "secret")
	require.NoError(t, err)
	require.True(t, res.Connected())
	m.Wait()

	last := auth.submits[len(auth.submits)-1]
	require.Equal(t, "secret", last.Password)
	require.Equal(t, "55555", last.Code)
	require.Equal(t, "hash", last.CodeHash)
}

func TestPasswordPromptRepeatedKeepsCode(t *testing.T) {
	auth := &fakeAuth{
		request: tgauth.Outcome{OK: true, CodeHash: "hash"},
		submit: []tgauth.Outcome{
			{Reason: tgauth.ReasonPasswordRequired},
			{Reason: tgauth.ReasonPasswordRequired},
			{OK: true},
		},
	}
	m := NewManager(newMemStore(), newFakeSup(t), auth, 0)
	ctx := newTestContext()

	res, err := m.Begin(ctx, "79990001122", 12345, testHash)
	require.NoError(t, err)
	res, err = m.Complete(ctx, res.Next, "55555")
	require.NoError(t, err)

	res, err = m.Complete(ctx, res.Next, "")
	require.NoError(t, err)
	pw, ok := res.Next.(AwaitingPassword)
	require.True(t, ok, "expected AwaitingPassword, got %T", res.Next)
	require.Equal(t, "55555", pw.Code)

	res, err = m.Complete(ctx, pw, "secret")
	require.NoError(t, err)
	require.True(t, res.Connected())
	m.Wait()

	last := auth.submits[len(auth.submits)-1]
	require.Equal(t, "55555", last.Code)
	require.Equal(t, "secret", last.Password)
}

func TestCompleteInvalidCodeKeepsHandshake(t *testing.T) {
	auth := &fakeAuth{submit: []tgauth.Outcome{{Reason: tgauth.ReasonInvalidCode}}}
	store := newMemStore()
	m := NewManager(store, newFakeSup(t), auth, 0)
	h := AwaitingCode{Creds: tgauth.Credentials{Phone: "1", AppID: 1, AppHash: testHash, SessionPath: "/s/1.session"}, CodeHash: "hash"}

	res, err := m.Complete(newTestContext(), h, "000")
	require.NoError(t, err)
	require.Equal(t, h, res.Next)
	require.Equal(t, tgauth.ReasonInvalidCode, res.Outcome.Reason)
	require.Empty(t, store.rows)
}

func TestRegistrationDuplicate(t *testing.T) {
	store := newMemStore(storedCatcher("111", true))
	auth := &fakeAuth{}
	m := NewManager(store, newFakeSup(t), auth, 0)

	_, err := m.Begin(newTestContext(), "222", 1, testHash)
	require.ErrorIs(t, err, ErrConflict)
	require.Zero(t, auth.requests)
}

func TestRegistrationDuplicateOnComplete(t *testing.T) {
	store := newMemStore()
	auth := &fakeAuth{submit: []tgauth.Outcome{{OK: true}}}
	m := NewManager(store, newFakeSup(t), auth, 0)
	h := AwaitingCode{Creds: tgauth.Credentials{Phone: "222", AppID: 1, AppHash: testHash, SessionPath: "/s/222.session"}, CodeHash: "h"}
	// registered by someone else while the code was on its way
	store.CreateCatcher(newTestContext(), &database.Catcher{Phone: "111", AppHash: testHash})

	_, err := m.Complete(newTestContext(), h, "1")
	require.ErrorIs(t, err, ErrConflict)
	require.Len(t, store.rows, 1)
}

func TestReconnectDoesNotInsert(t *testing.T) {
	store := newMemStore(storedCatcher("111", false))
	sup := newFakeSup(t)
	auth := &fakeAuth{submit: []tgauth.Outcome{{OK: true}}}
	m := NewManager(store, sup, auth, 0)
	c := store.rows[1]
	h := AwaitingCode{Creds: credentialsOf(&c), CodeHash: "h", CatcherID: 1}

	res, err := m.Complete(newTestContext(), h, "1")
	require.NoError(t, err)
	require.True(t, res.Connected())
	m.Wait()
	require.Len(t, store.rows, 1)
	require.True(t, store.rows[1].IsConnected)
	require.Equal(t, []string{"111"}, sup.starts)
}

func TestBeginValidation(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(newMemStore(), newFakeSup(t), auth, 0)
	res, err := m.Begin(newTestContext(), "phone", 1, testHash)
	require.NoError(t, err)
	require.Equal(t, tgauth.ReasonInvalidPhone, res.Outcome.Reason)
	require.Zero(t, auth.requests)
}

func TestDisconnectAndDelete(t *testing.T) {
	store := newMemStore(storedCatcher("111", true))
	sup := newFakeSup(t)
	sup.running["111"] = true
	m := NewManager(store, sup, &fakeAuth{}, 0)
	ctx := newTestContext()

	c, err := m.Disconnect(ctx, 1)
	require.NoError(t, err)
	require.False(t, c.IsConnected)
	require.False(t, store.rows[1].IsConnected)
	require.Equal(t, []string{"111"}, sup.stops)
	require.Empty(t, sup.deleted)

	require.NoError(t, m.Delete(ctx, 1))
	require.Empty(t, store.rows)
	require.Equal(t, []string{"111"}, sup.deleted)

	err = m.Delete(ctx, 1)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestRefreshAll(t *testing.T) {
	store := newMemStore(storedCatcher("111", false), storedCatcher("222", true))
	sup := newFakeSup(t)
	sup.running["111"] = true
	m := NewManager(store, sup, &fakeAuth{}, 0)

	cs, err := m.RefreshAll(newTestContext())
	require.NoError(t, err)
	require.Len(t, cs, 2)
	require.True(t, store.rows[1].IsConnected)
	require.False(t, store.rows[2].IsConnected)
}
