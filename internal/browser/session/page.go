// internal/browser/session/page.go
package session

import (
	"context"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// Navigate loads url in the attached tab and waits for the network to go
// idle. The deadline is the caller's.
func (s *RemoteSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating", zap.String("url", url))
	if err := s.Run(ctx, chromedp.Navigate(url)); err != nil {
		return err
	}
	return s.waitNetworkIdle(ctx)
}

// WaitVisible blocks until selector matches a visible element.
func (s *RemoteSession) WaitVisible(ctx context.Context, selector string) error {
	return s.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Click focuses the element matched by selector with a real mouse click.
func (s *RemoteSession) Click(ctx context.Context, selector string) error {
	return s.Run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// PressAndWaitNavigation sends key to the focused element and waits until the
// resulting main-frame navigation has happened and the network is idle.
func (s *RemoteSession) PressAndWaitNavigation(ctx context.Context, key string) error {
	conn := s.current()
	if conn == nil {
		return &errs.ConnectionLostError{Op: "submit", Err: ErrNoPage}
	}
	navigated := conn.idle.nextNavigation()

	if err := s.Run(ctx, chromedp.KeyEvent(key)); err != nil {
		return err
	}

	select {
	case <-navigated:
	case <-ctx.Done():
		if !conn.alive() {
			return &errs.ConnectionLostError{Op: "submit", Err: ctx.Err()}
		}
		return ctx.Err()
	}
	return s.waitNetworkIdle(ctx)
}

func (s *RemoteSession) waitNetworkIdle(ctx context.Context) error {
	conn := s.current()
	if conn == nil {
		return &errs.ConnectionLostError{Op: "wait for network idle", Err: ErrNoPage}
	}
	waitCtx, cancel := CombineContext(conn.tabCtx, ctx)
	defer cancel()

	if err := conn.idle.waitIdle(waitCtx, networkIdleQuietPeriod, networkIdleMaxInflight); err != nil {
		if !conn.alive() {
			return &errs.ConnectionLostError{Op: "wait for network idle", Err: err}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
