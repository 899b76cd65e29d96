//go:build !windows

package procsup

import (
	"errors"
	"syscall"
)

type unixSignaler struct{}

func (unixSignaler) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func (unixSignaler) TerminateGroup(pid int) error {
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		return err
	}
	return syscall.Kill(-pgid, syscall.SIGTERM)
}

func isNoProcess(err error) bool  { return errors.Is(err, syscall.ESRCH) }
func isPermission(err error) bool { return errors.Is(err, syscall.EPERM) }

func detach() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
