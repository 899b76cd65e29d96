package dispatch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Loop runs the dispatcher every interval until ctx is done. Runs never
// overlap: a slow run delays the next tick instead of racing it.
func (d *Dispatcher) Loop(ctx context.Context, interval time.Duration) error {
	logger := log.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.Run(ctx); err != nil {
				logger.Error("Dispatch run failed", "error", err)
			}
		}
	}
}
