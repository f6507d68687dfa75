// internal/browser/session/idle.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
)

const (
	networkIdleCheckFrequency = 100 * time.Millisecond
	// networkIdleQuietPeriod and networkIdleMaxInflight mirror the usual
	// "networkidle2" heuristic: no more than two open requests for 500ms.
	networkIdleQuietPeriod = 500 * time.Millisecond
	networkIdleMaxInflight = 2
)

// idleTracker follows request and navigation events for one tab.
type idleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	// navigated is closed and replaced on every main-frame navigation.
	navigated chan struct{}
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		inflight:  make(map[network.RequestID]struct{}),
		navigated: make(chan struct{}),
	}
}

// handle consumes a CDP event. Unrelated events are ignored.
func (t *idleTracker) handle(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	case *page.EventFrameNavigated:
		if e.Frame != nil && e.Frame.ParentID == "" {
			// Requests of the previous document never report completion.
			clear(t.inflight)
			t.signalNavigation()
		}
	case *page.EventNavigatedWithinDocument:
		t.signalNavigation()
	}
}

// signalNavigation must be called with mu held.
func (t *idleTracker) signalNavigation() {
	close(t.navigated)
	t.navigated = make(chan struct{})
}

// nextNavigation returns a channel closed by the next main-frame navigation.
// Arm it before triggering the navigation.
func (t *idleTracker) nextNavigation() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.navigated
}

func (t *idleTracker) inflightCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// waitIdle blocks until at most maxInflight requests have been open for a
// continuous quietPeriod.
func (t *idleTracker) waitIdle(ctx context.Context, quietPeriod time.Duration, maxInflight int) error {
	timer := time.NewTimer(quietPeriod)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	ticker := time.NewTicker(networkIdleCheckFrequency)
	defer ticker.Stop()

	quiet := false
	check := func() {
		busy := t.inflightCount() > maxInflight
		switch {
		case busy && quiet:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			quiet = false
		case !busy && !quiet:
			timer.Reset(quietPeriod)
			quiet = true
		}
	}
	check()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			check()
		case <-timer.C:
			return nil
		}
	}
}
