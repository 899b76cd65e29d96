package middleware

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/td/telegram"

	"github.com/postcatcher/postcatcher-bot/client/middleware/recovery"
	"github.com/postcatcher/postcatcher-bot/client/middleware/retry"
)

// NewDefaultMiddlewares is the stack for the long-running bot client.
func NewDefaultMiddlewares(rpcRetry int, timeout time.Duration) []telegram.Middleware {
	return []telegram.Middleware{
		recovery.New(func() backoff.BackOff { return newBackoff(timeout) }),
		retry.New(rpcRetry),
		floodwait.NewSimpleWaiter(),
	}
}

// NewAuthMiddlewares is the stack for short-lived login connections.
// Flood waits are not absorbed here, the caller reports them to the admin.
func NewAuthMiddlewares(rpcRetry int) []telegram.Middleware {
	return []telegram.Middleware{
		retry.New(rpcRetry),
	}
}

func newBackoff(timeout time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.Multiplier = 1.1
	b.MaxElapsedTime = timeout
	b.MaxInterval = 10 * time.Second
	return b
}
