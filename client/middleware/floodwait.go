package middleware

import (
	"time"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"golang.org/x/time/rate"
)

// NewFloodWaitMiddlewares waits out flood errors and paces outgoing calls,
// used by the bot client while it fans out notifications.
func NewFloodWaitMiddlewares(maxRetries uint, every time.Duration, burst int) []telegram.Middleware {
	waiter := floodwait.NewSimpleWaiter().WithMaxRetries(maxRetries)
	ratelimiter := ratelimit.New(rate.Every(every), burst)
	return []telegram.Middleware{
		waiter,
		ratelimiter,
	}
}
