//go:build windows

package procsup

import (
	"errors"
	"os"
	"syscall"
)

var errUnsupported = errors.New("process groups are not supported on windows")

type unixSignaler struct{}

func (unixSignaler) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.FindProcess(pid)
	return err == nil
}

func (unixSignaler) TerminateGroup(pid int) error {
	return errUnsupported
}

func isNoProcess(err error) bool  { return errors.Is(err, os.ErrProcessDone) }
func isPermission(err error) bool { return errors.Is(err, os.ErrPermission) }

func detach() *syscall.SysProcAttr {
	return nil
}
