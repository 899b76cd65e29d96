// Package procsup starts, probes and stops the external catcher processes.
// Each catcher is keyed by its phone number and announces itself through a
// <phone>.pid file; the supervisor never keeps process handles in memory.
package procsup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
)

// NoPID is returned by Start when no process could be confirmed.
const NoPID = -1

var (
	ErrLocked    = errors.New("pid directory is supervised by another instance")
	errNoPidFile = errors.New("pid file not created")
)

// Signaler probes and signals OS processes.
type Signaler interface {
	Alive(pid int) bool
	TerminateGroup(pid int) error
}

type Options struct {
	LauncherPath string
	PidDir       string
	SessionDir   string
	// Grace is how long Start waits for the PID file.
	Grace time.Duration
	Poll  time.Duration
}

type Option func(*Supervisor)

func WithLauncher(l Launcher) Option { return func(s *Supervisor) { s.launcher = l } }
func WithPidStore(p PidStore) Option { return func(s *Supervisor) { s.pids = p } }
func WithSignaler(sg Signaler) Option {
	return func(s *Supervisor) { s.signals = sg }
}

type Supervisor struct {
	launcher   Launcher
	pids       PidStore
	signals    Signaler
	pidDir     string
	sessionDir string
	grace      time.Duration
	poll       time.Duration
	lock       *flock.Flock
}

func New(opts Options, extra ...Option) *Supervisor {
	s := &Supervisor{
		launcher:   ExecLauncher{Path: opts.LauncherPath},
		pids:       FilePidStore{Dir: opts.PidDir},
		signals:    unixSignaler{},
		pidDir:     opts.PidDir,
		sessionDir: opts.SessionDir,
		grace:      opts.Grace,
		poll:       opts.Poll,
	}
	if s.sessionDir == "" {
		s.sessionDir = opts.PidDir
	}
	if s.grace <= 0 {
		s.grace = time.Second
	}
	if s.poll <= 0 || s.poll > s.grace {
		s.poll = min(100*time.Millisecond, s.grace)
	}
	for _, o := range extra {
		o(s)
	}
	return s
}

// Lock takes an exclusive lock on the PID directory.
func (s *Supervisor) Lock() error {
	if err := os.MkdirAll(s.pidDir, 0755); err != nil {
		return err
	}
	s.lock = flock.New(filepath.Join(s.pidDir, lockName))
	ok, err := s.lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (s *Supervisor) Unlock() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// SessionPath is where the credential file of phone lives.
func (s *Supervisor) SessionPath(phone string) string {
	return filepath.Join(s.sessionDir, phone+sessionSuffix)
}

// Start launches the catcher for phone and waits for it to record its pid.
// A catcher that is already alive is left alone and its pid returned.
func (s *Supervisor) Start(ctx context.Context, phone, sessionPath string, appID int, appHash string) int {
	logger := log.FromContext(ctx).With("phone", phone)

	if pid, ok, _ := s.pids.Read(phone); ok && s.signals.Alive(pid) {
		logger.Debug("Catcher already running", "pid", pid)
		return pid
	}
	if err := s.pids.Remove(phone); err != nil {
		logger.Warn("Failed to remove stale pid file", "error", err)
	}

	if err := s.launcher.Launch(ctx, sessionPath, strconv.Itoa(appID), appHash, phone); err != nil {
		logger.Error("Failed to launch catcher", "error", err)
		return NoPID
	}

	pid, err := s.waitPID(ctx, phone)
	if err != nil {
		logger.Error("Catcher did not report a pid", "grace", s.grace, "error", err)
		return NoPID
	}
	logger.Info("Catcher started", "pid", pid)
	return pid
}

func (s *Supervisor) waitPID(ctx context.Context, phone string) (int, error) {
	var pid int
	op := func() error {
		p, ok, err := s.pids.Read(phone)
		if err != nil {
			return err
		}
		if !ok {
			return errNoPidFile
		}
		pid = p
		return nil
	}
	tries := uint64(s.grace / s.poll)
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.poll), tries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return NoPID, err
	}
	return pid, nil
}

// IsRunning reports whether the process recorded for phone is alive.
// The pid may have been reused by an unrelated process after the catcher died.
func (s *Supervisor) IsRunning(ctx context.Context, phone string) bool {
	pid, ok, err := s.pids.Read(phone)
	if err != nil {
		log.FromContext(ctx).Warn("Failed to read pid file", "phone", phone, "error", err)
		return false
	}
	return ok && s.signals.Alive(pid)
}

// Stop terminates the process group of phone's catcher and cleans up its files.
// Nothing here is fatal, every failure is logged.
func (s *Supervisor) Stop(ctx context.Context, phone string, deleteSession bool) {
	logger := log.FromContext(ctx).With("phone", phone)

	pid, ok, err := s.pids.Read(phone)
	switch {
	case err != nil:
		logger.Warn("Failed to read pid file", "error", err)
	case !ok:
		logger.Info("No pid file, catcher is not running")
	default:
		if err := s.signals.TerminateGroup(pid); err != nil {
			switch {
			case isNoProcess(err):
				logger.Warn("Catcher process not found", "pid", pid)
			case isPermission(err):
				logger.Warn("No permission to stop catcher", "pid", pid)
			default:
				logger.Error("Failed to stop catcher", "pid", pid, "error", err)
			}
		} else {
			logger.Info("Sent SIGTERM to catcher", "pid", pid)
		}
	}

	if err := s.pids.Remove(phone); err != nil {
		logger.Warn("Failed to remove pid file", "error", err)
	}
	if !deleteSession {
		return
	}
	if err := os.Remove(s.SessionPath(phone)); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove session file", "error", err)
	}
}

// List returns the phones with a PID file, whether or not they are alive.
func (s *Supervisor) List() ([]string, error) {
	return FilePidStore{Dir: s.pidDir}.List()
}
