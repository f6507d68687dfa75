// File: internal/scheduler/wait.go
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/searchpilot/internal/interval"
)

const countdownLogInterval = 30 * time.Second

// wait blocks for delay while redrawing the countdown. The fire timer and the
// countdown share one group context, so whichever way the wait ends both
// goroutines are gone before wait returns. A non-nil error means ctx ended
// first.
func (s *Scheduler) wait(ctx context.Context, delay time.Duration, log *zap.Logger) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(waitCtx)

	deadline := time.Now().Add(delay)

	g.Go(func() error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			// Fired; stop the countdown.
			cancel()
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	g.Go(func() error {
		s.countdown(gctx, deadline, log)
		return nil
	})

	// Both goroutines only fail through cancellation, so ctx decides.
	_ = g.Wait()
	return ctx.Err()
}

// countdown redraws a single status line until ctx ends, then erases it.
func (s *Scheduler) countdown(ctx context.Context, deadline time.Time, log *zap.Logger) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	sometimes := rate.Sometimes{Interval: countdownLogInterval}
	width := 0
	draw := func() {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		line := "Next search in: " + interval.FormatDuration(remaining)
		pad := ""
		if len(line) < width {
			pad = strings.Repeat(" ", width-len(line))
		}
		fmt.Fprintf(s.cfg.Output, "\r%s%s", line, pad)
		width = len(line)
		sometimes.Do(func() {
			log.Debug("Waiting for next search", zap.Duration("remaining", remaining.Truncate(time.Second)))
		})
	}

	draw()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(s.cfg.Output, "\r%s\r", strings.Repeat(" ", width))
			return
		case <-ticker.C:
			draw()
		}
	}
}
