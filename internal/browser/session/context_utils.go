// internal/browser/session/context_utils.go
package session

import (
	"context"
	"time"
)

// CombineContext returns a context derived from primary that is also canceled
// when secondary is canceled. Values come from primary only, which is what
// chromedp needs: the tab context carries the CDP target, the caller's context
// carries the deadline.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}

// valueOnlyContext keeps the parent's values but drops its deadline and
// cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }

func (valueOnlyContext) Done() <-chan struct{} { return nil }

func (valueOnlyContext) Err() error { return nil }

// Detach returns a context that inherits values from ctx but is never canceled
// by it. The browser allocator is rooted here so a connection outlives the
// call that opened it.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
