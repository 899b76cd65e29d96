package retry

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Server-side hiccups that succeed on a plain retry.
var transientErrors = []string{
	"Timedout",
	"No workers running",
	"RPC_CALL_FAIL",
	"RPC_MCGET_FAIL",
	"WORKER_BUSY_TOO_LONG_RETRY",
}

type retry struct {
	max    int
	errors []string
}

func (r retry) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		var lastErr error
		for attempt := 0; attempt < r.max; attempt++ {
			err := next.Invoke(ctx, input, output)
			if err == nil {
				return nil
			}
			if !tgerr.Is(err, r.errors...) {
				return err
			}
			log.FromContext(ctx).Debug("retry middleware", "attempt", attempt, "error", err)
			lastErr = err
		}
		if lastErr == nil {
			return next.Invoke(ctx, input, output)
		}
		return fmt.Errorf("retry limit reached after %d attempts: %w", r.max, lastErr)
	}
}

// New returns middleware that retries a call up to max times when it fails
// with one of the given errors or a known transient server error.
func New(max int, errors ...string) telegram.Middleware {
	return retry{
		max:    max,
		errors: append(errors, transientErrors...),
	}
}
