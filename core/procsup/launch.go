package procsup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

var ErrLauncherMissing = errors.New("launcher not found")

// Launcher starts a catcher process that keeps running on its own.
type Launcher interface {
	Launch(ctx context.Context, args ...string) error
}

// ExecLauncher runs an executable in a new session with stdio discarded.
type ExecLauncher struct {
	Path string
}

func (l ExecLauncher) Launch(ctx context.Context, args ...string) error {
	if l.Path == "" {
		return ErrLauncherMissing
	}
	if _, err := os.Stat(l.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrLauncherMissing, l.Path)
		}
		return fmt.Errorf("checking launcher: %w", err)
	}
	// not CommandContext: the child must outlive ctx
	cmd := exec.Command(l.Path, args...)
	cmd.SysProcAttr = detach()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting launcher: %w", err)
	}
	logger := log.FromContext(ctx)
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Launcher exited", "path", l.Path, "error", err)
		}
	}()
	return nil
}
