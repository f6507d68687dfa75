// File: internal/search/action.go
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// Page is the browser tab surface a search needs.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	PressAndWaitNavigation(ctx context.Context, key string) error
}

// Keyboard types into the focused element.
type Keyboard interface {
	ClearField(ctx context.Context) error
	Type(ctx context.Context, text string) error
}

// Scroller moves the page smoothly.
type Scroller interface {
	ScrollToBottom(ctx context.Context, duration time.Duration) error
	ScrollToTop(ctx context.Context, duration time.Duration) error
}

// SleepFunc pauses for d unless ctx ends first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ActionConfig configures an Action.
type ActionConfig struct {
	BaseURL       string
	InputSelector string
	Pacing        Pacing
}

// Action runs the fixed search protocol against a borrowed page: load the
// home page, find and clear the query box, type the query, submit, read,
// scroll down, pause, scroll back up. It either completes every step or
// fails as a whole.
type Action struct {
	cfg      ActionConfig
	page     Page
	keyboard Keyboard
	scroller Scroller
	sleep    SleepFunc
	logger   *zap.Logger
}

// NewAction builds an Action. A nil sleep uses a timer-based sleep.
func NewAction(cfg ActionConfig, page Page, keyboard Keyboard, scroller Scroller, sleep SleepFunc, logger *zap.Logger) *Action {
	if cfg.InputSelector == "" {
		cfg.InputSelector = DefaultInputSelector
	}
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Action{
		cfg:      cfg,
		page:     page,
		keyboard: keyboard,
		scroller: scroller,
		sleep:    sleep,
		logger:   logger.Named("action"),
	}
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Perform executes one search for query.
func (a *Action) Perform(ctx context.Context, query string) error {
	p := a.cfg.Pacing
	sel := a.cfg.InputSelector

	steps := []step{
		{"navigate", func(ctx context.Context) error {
			return bounded(ctx, p.NavigationTimeout, func(c context.Context) error {
				return a.page.Navigate(c, a.cfg.BaseURL)
			}, &errs.NavigationTimeoutError{URL: a.cfg.BaseURL, Timeout: p.NavigationTimeout})
		}},
		{"locate input", func(ctx context.Context) error {
			return bounded(ctx, p.ElementTimeout, func(c context.Context) error {
				return a.page.WaitVisible(c, sel)
			}, &errs.ElementNotFoundError{Selector: sel, Timeout: p.ElementTimeout})
		}},
		{"clear input", func(ctx context.Context) error {
			if err := a.page.Click(ctx, sel); err != nil {
				return err
			}
			return a.keyboard.ClearField(ctx)
		}},
		{"type query", func(ctx context.Context) error {
			return a.keyboard.Type(ctx, query)
		}},
		{"pause before submit", func(ctx context.Context) error {
			return a.sleep(ctx, p.PreSubmitPause)
		}},
		{"submit", func(ctx context.Context) error {
			return bounded(ctx, p.SubmitTimeout, func(c context.Context) error {
				return a.page.PressAndWaitNavigation(c, kb.Enter)
			}, &errs.NavigationTimeoutError{Timeout: p.SubmitTimeout})
		}},
		{"read results", func(ctx context.Context) error {
			return a.sleep(ctx, p.ReadingPause)
		}},
		{"scroll to bottom", func(ctx context.Context) error {
			return a.scroller.ScrollToBottom(ctx, p.ScrollDownDuration)
		}},
		{"pause at bottom", func(ctx context.Context) error {
			return a.sleep(ctx, p.BottomPause)
		}},
		{"scroll to top", func(ctx context.Context) error {
			return a.scroller.ScrollToTop(ctx, p.ScrollUpDuration)
		}},
	}

	log := a.logger.With(zap.String("query", query))
	for i, s := range steps {
		log.Debug("Search step", zap.Int("step", i+1), zap.String("name", s.name))
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("search failed: step %d (%s): %w", i+1, s.name, err)
		}
	}
	log.Info("Search completed")
	return nil
}

// bounded runs fn under timeout and swaps an expired deadline for onTimeout.
// Cancellation of the parent and connection loss pass through untouched.
func bounded(ctx context.Context, timeout time.Duration, fn func(context.Context) error, onTimeout error) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(opCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) && !errs.IsConnectionLost(err) {
		return onTimeout
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
