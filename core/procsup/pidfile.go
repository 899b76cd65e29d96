package procsup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	pidSuffix     = ".pid"
	sessionSuffix = ".session"
	lockName      = ".supervisor.lock"
)

// PidStore gives access to the PID files catcher processes write on startup.
type PidStore interface {
	// Read returns the recorded pid. ok is false when no PID file exists.
	Read(phone string) (pid int, ok bool, err error)
	// Remove deletes the PID file. A missing file is not an error.
	Remove(phone string) error
}

// FilePidStore keeps one <phone>.pid file per catcher in Dir.
type FilePidStore struct {
	Dir string
}

func (s FilePidStore) Path(phone string) string {
	return filepath.Join(s.Dir, phone+pidSuffix)
}

func (s FilePidStore) Read(phone string) (int, bool, error) {
	data, err := os.ReadFile(s.Path(phone))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, fmt.Errorf("parsing pid %q: %w", strings.TrimSpace(string(data)), err)
	}
	return pid, true, nil
}

// Write records pid for phone. Catcher processes normally do this themselves.
func (s FilePidStore) Write(phone string, pid int) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating pid directory: %w", err)
	}
	return os.WriteFile(s.Path(phone), []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func (s FilePidStore) Remove(phone string) error {
	if err := os.Remove(s.Path(phone)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns the phones that currently have a PID file.
func (s FilePidStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pid directory: %w", err)
	}
	phones := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), pidSuffix) {
			continue
		}
		phones = append(phones, strings.TrimSuffix(entry.Name(), pidSuffix))
	}
	return phones, nil
}
