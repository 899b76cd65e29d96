package recovery

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

type recovery struct {
	newBackoff func() backoff.BackOff
}

// Handle retries calls that failed below the RPC layer, e.g. after a dropped
// connection. RPC errors are returned unchanged.
func (r recovery) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		op := func() error {
			err := next.Invoke(ctx, input, output)
			if err == nil {
				return nil
			}
			if _, ok := tgerr.As(err); ok {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return backoff.Permanent(err)
			}
			log.FromContext(ctx).Warn("recovery middleware", "error", err)
			return err
		}
		return backoff.Retry(op, backoff.WithContext(r.newBackoff(), ctx))
	}
}

// New returns middleware that retries transport failures with a fresh backoff per call.
func New(newBackoff func() backoff.BackOff) telegram.Middleware {
	return recovery{newBackoff: newBackoff}
}
