//go:build !windows

package procsup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestContext() context.Context {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
	return log.WithContext(context.Background(), logger)
}

type memPids struct {
	mu   sync.Mutex
	pids map[string]int
}

func newMemPids() *memPids { return &memPids{pids: map[string]int{}} }

func (m *memPids) Read(phone string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid, ok := m.pids[phone]
	return pid, ok, nil
}

func (m *memPids) Remove(phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pids, phone)
	return nil
}

func (m *memPids) set(phone string, pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pids[phone] = pid
}

type fakeSignaler struct {
	alive      map[int]bool
	terminated []int
	termErr    error
}

func (f *fakeSignaler) Alive(pid int) bool { return f.alive[pid] }

func (f *fakeSignaler) TerminateGroup(pid int) error {
	f.terminated = append(f.terminated, pid)
	return f.termErr
}

type fakeLauncher struct {
	calls [][]string
	err   error
	// onLaunch simulates the catcher writing its pid file
	onLaunch func(args []string)
}

func (f *fakeLauncher) Launch(_ context.Context, args ...string) error {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return f.err
	}
	if f.onLaunch != nil {
		f.onLaunch(args)
	}
	return nil
}

func newTestSupervisor(t *testing.T, l Launcher, p PidStore, sg Signaler) *Supervisor {
	t.Helper()
	dir := t.TempDir()
	return New(Options{
		PidDir:     dir,
		SessionDir: dir,
		Grace:      50 * time.Millisecond,
		Poll:       5 * time.Millisecond,
	}, WithLauncher(l), WithPidStore(p), WithSignaler(sg))
}

func TestStartReturnsRecordedPID(t *testing.T) {
	pids := newMemPids()
	l := &fakeLauncher{onLaunch: func(args []string) { pids.set(args[3], 4242) }}
	s := newTestSupervisor(t, l, pids, &fakeSignaler{})

	pid := s.Start(newTestContext(), "79990001122", "/s/79990001122.session", 12345, "0123456789abcdef0123456789abcdef")
	if pid != 4242 {
		t.Fatalf("expected pid 4242, got %d", pid)
	}
	if len(l.calls) != 1 {
		t.Fatalf("expected one launch, got %d", len(l.calls))
	}
	want := []string{"/s/79990001122.session", "12345", "0123456789abcdef0123456789abcdef", "79990001122"}
	for i, arg := range want {
		if l.calls[0][i] != arg {
			t.Fatalf("arg %d: expected %q, got %q", i, arg, l.calls[0][i])
		}
	}
}

func TestStartPIDWrittenLate(t *testing.T) {
	pids := newMemPids()
	l := &fakeLauncher{onLaunch: func(args []string) {
		go func() {
			time.Sleep(15 * time.Millisecond)
			pids.set(args[3], 77)
		}()
	}}
	s := newTestSupervisor(t, l, pids, &fakeSignaler{})
	if pid := s.Start(newTestContext(), "1", "p.session", 1, "h"); pid != 77 {
		t.Fatalf("expected pid 77, got %d", pid)
	}
}

func TestStartNoPIDFile(t *testing.T) {
	s := newTestSupervisor(t, &fakeLauncher{}, newMemPids(), &fakeSignaler{})
	if pid := s.Start(newTestContext(), "1", "p.session", 1, "h"); pid != NoPID {
		t.Fatalf("expected NoPID, got %d", pid)
	}
}

func TestStartLauncherMissing(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{LauncherPath: filepath.Join(dir, "missing.sh"), PidDir: dir, Grace: 10 * time.Millisecond})
	if pid := s.Start(newTestContext(), "1", "p.session", 1, "h"); pid != NoPID {
		t.Fatalf("expected NoPID, got %d", pid)
	}
}

func TestStartSkipsLiveCatcher(t *testing.T) {
	pids := newMemPids()
	pids.set("1", 500)
	l := &fakeLauncher{}
	s := newTestSupervisor(t, l, pids, &fakeSignaler{alive: map[int]bool{500: true}})

	if pid := s.Start(newTestContext(), "1", "p.session", 1, "h"); pid != 500 {
		t.Fatalf("expected existing pid 500, got %d", pid)
	}
	if len(l.calls) != 0 {
		t.Fatalf("expected no launch for a live catcher, got %d", len(l.calls))
	}
}

func TestStartReplacesStalePID(t *testing.T) {
	pids := newMemPids()
	pids.set("1", 500)
	l := &fakeLauncher{onLaunch: func(args []string) { pids.set(args[3], 501) }}
	s := newTestSupervisor(t, l, pids, &fakeSignaler{})

	if pid := s.Start(newTestContext(), "1", "p.session", 1, "h"); pid != 501 {
		t.Fatalf("expected new pid 501, got %d", pid)
	}
}

func TestIsRunning(t *testing.T) {
	pids := newMemPids()
	sg := &fakeSignaler{alive: map[int]bool{10: true}}
	s := newTestSupervisor(t, &fakeLauncher{}, pids, sg)
	ctx := newTestContext()

	if s.IsRunning(ctx, "a") {
		t.Fatal("expected false without pid file")
	}
	pids.set("a", 10)
	if !s.IsRunning(ctx, "a") {
		t.Fatal("expected true for live pid")
	}
	if !s.IsRunning(ctx, "a") {
		t.Fatal("expected the same answer on a repeated call")
	}
	pids.set("a", 11)
	if s.IsRunning(ctx, "a") || s.IsRunning(ctx, "a") {
		t.Fatal("expected false for dead pid")
	}
	if _, ok, _ := pids.Read("a"); !ok {
		t.Fatal("expected IsRunning to leave the pid file alone")
	}
}

func TestStopRemovesFiles(t *testing.T) {
	pids := newMemPids()
	pids.set("a", 10)
	sg := &fakeSignaler{alive: map[int]bool{10: true}}
	s := newTestSupervisor(t, &fakeLauncher{}, pids, sg)
	ctx := newTestContext()
	session := s.SessionPath("a")
	if err := os.WriteFile(session, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if !s.IsRunning(ctx, "a") {
		t.Fatal("expected running before stop")
	}

	s.Stop(ctx, "a", true)

	if s.IsRunning(ctx, "a") {
		t.Fatal("expected not running after stop")
	}

	if len(sg.terminated) != 1 || sg.terminated[0] != 10 {
		t.Fatalf("expected pid 10 terminated, got %v", sg.terminated)
	}
	if _, ok, _ := pids.Read("a"); ok {
		t.Fatal("expected pid file removed")
	}
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, got %v", err)
	}
}

func TestStopKeepsSession(t *testing.T) {
	pids := newMemPids()
	pids.set("a", 10)
	s := newTestSupervisor(t, &fakeLauncher{}, pids, &fakeSignaler{termErr: syscall.ESRCH})
	ctx := newTestContext()
	session := s.SessionPath("a")
	if err := os.WriteFile(session, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	s.Stop(ctx, "a", false)

	if s.IsRunning(ctx, "a") {
		t.Fatal("expected not running after stop")
	}

	if _, ok, _ := pids.Read("a"); ok {
		t.Fatal("expected pid file removed even when the process is gone")
	}
	if _, err := os.Stat(session); err != nil {
		t.Fatalf("expected session file kept, got %v", err)
	}
}

func TestStopWithoutPIDFile(t *testing.T) {
	sg := &fakeSignaler{}
	s := newTestSupervisor(t, &fakeLauncher{}, newMemPids(), sg)
	ctx := newTestContext()
	s.Stop(ctx, "nobody", true)
	if len(sg.terminated) != 0 {
		t.Fatalf("expected no signal, got %v", sg.terminated)
	}
	if s.IsRunning(ctx, "nobody") {
		t.Fatal("expected not running after stop")
	}
}

func TestFilePidStore(t *testing.T) {
	store := FilePidStore{Dir: t.TempDir()}

	if _, ok, err := store.Read("a"); ok || err != nil {
		t.Fatalf("expected missing pid file, got ok=%v err=%v", ok, err)
	}
	if err := store.Write("a", 123); err != nil {
		t.Fatalf("Write: %v", err)
	}
	pid, ok, err := store.Read("a")
	if err != nil || !ok || pid != 123 {
		t.Fatalf("expected 123, got %d ok=%v err=%v", pid, ok, err)
	}
	if err := os.WriteFile(store.Path("bad"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Read("bad"); err == nil {
		t.Fatal("expected parse error for corrupt pid file")
	}

	phones, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(phones) != 2 {
		t.Fatalf("expected 2 phones, got %v", phones)
	}

	if err := store.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove("a"); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
}

func TestLockIsExclusive(t *testing.T) {
	dir := t.TempDir()
	first := New(Options{PidDir: dir})
	if err := first.Lock(); err != nil {
		t.Fatalf("first Lock: %v", err)
	}
	defer first.Unlock()

	second := New(Options{PidDir: dir})
	if err := second.Lock(); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestUnixSignalerSelf(t *testing.T) {
	var sg unixSignaler
	if !sg.Alive(os.Getpid()) {
		t.Fatal("expected current process to be alive")
	}
	if sg.Alive(0) || sg.Alive(-1) {
		t.Fatal("expected non-positive pids to be reported dead")
	}
}
