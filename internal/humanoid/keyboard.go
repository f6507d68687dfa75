// -- internal/humanoid/keyboard.go --
package humanoid

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp/kb"
	"golang.org/x/time/rate"
)

const selectFieldJS = `() => {
	const el = document.activeElement;
	if (!el) return false;
	if (typeof el.select === 'function') { el.select(); return true; }
	if (el.isContentEditable) {
		const range = document.createRange();
		range.selectNodeContents(el);
		const sel = window.getSelection();
		sel.removeAllRanges();
		sel.addRange(range);
		return true;
	}
	return false;
}`

// Typist types text one character at a time with a fixed gap between
// characters.
type Typist struct {
	exec  Executor
	delay time.Duration
}

// NewTypist returns a Typist that waits delay between characters. A zero
// delay types as fast as the browser accepts input.
func NewTypist(exec Executor, delay time.Duration) *Typist {
	return &Typist{exec: exec, delay: delay}
}

// Delay returns the configured per-character gap.
func (t *Typist) Delay() time.Duration { return t.delay }

// Type sends text to the focused element. The first character goes out
// immediately and every following one waits for the limiter.
func (t *Typist) Type(ctx context.Context, text string) error {
	limit := rate.Inf
	if t.delay > 0 {
		limit = rate.Every(t.delay)
	}
	// A fresh limiter per call so a previous search's pacing never carries
	// over.
	limiter := rate.NewLimiter(limit, 1)

	for _, r := range text {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("humanoid: typing interrupted: %w", err)
		}
		if err := t.exec.SendKeys(ctx, string(r)); err != nil {
			return fmt.Errorf("humanoid: failed to send key %q: %w", r, err)
		}
	}
	return nil
}

// ClearField selects everything in the focused field and deletes it.
func (t *Typist) ClearField(ctx context.Context) error {
	if _, err := t.exec.ExecuteScript(ctx, selectFieldJS); err != nil {
		return fmt.Errorf("humanoid: failed to select field contents: %w", err)
	}
	if err := t.exec.SendKeys(ctx, kb.Backspace); err != nil {
		return fmt.Errorf("humanoid: failed to delete field contents: %w", err)
	}
	return nil
}
