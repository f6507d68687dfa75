package humanoid

import (
	"context"
	"fmt"
	"math"
	"time"
)

// DefaultFrameInterval is the gap between scroll steps.
const DefaultFrameInterval = 50 * time.Millisecond

const scrollMetricsJS = `() => {
	const el = document.scrollingElement || document.documentElement;
	return {
		y: window.scrollY,
		max: Math.max(0, el.scrollHeight - window.innerHeight)
	};
}`

const scrollToJS = `(y) => { window.scrollTo(0, y); return window.scrollY; }`

// ScrollMetrics is the vertical scroll state of the page.
type ScrollMetrics struct {
	Y   float64 `json:"y"`
	Max float64 `json:"max"`
}

// EaseInOutQuad maps linear progress p in [0,1] onto a curve that speeds up
// through the first half and slows down through the second.
func EaseInOutQuad(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	case p < 0.5:
		return 2 * p * p
	default:
		return 1 - math.Pow(-2*p+2, 2)/2
	}
}

// Scroller moves the page vertically in small eased steps.
type Scroller struct {
	exec  Executor
	frame time.Duration
}

// NewScroller returns a Scroller stepping every frame. A non-positive frame
// uses DefaultFrameInterval.
func NewScroller(exec Executor, frame time.Duration) *Scroller {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &Scroller{exec: exec, frame: frame}
}

// Metrics reads the current position and the furthest reachable offset.
func (s *Scroller) Metrics(ctx context.Context) (ScrollMetrics, error) {
	var m ScrollMetrics
	raw, err := s.exec.ExecuteScript(ctx, scrollMetricsJS)
	if err != nil {
		return m, fmt.Errorf("humanoid: failed to read scroll metrics: %w", err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("humanoid: unexpected scroll metrics %q: %w", raw, err)
	}
	return m, nil
}

// ScrollToBottom eases from the current position to the end of the document
// over duration.
func (s *Scroller) ScrollToBottom(ctx context.Context, duration time.Duration) error {
	m, err := s.Metrics(ctx)
	if err != nil {
		return err
	}
	return s.SmoothScroll(ctx, m.Y, m.Max, duration)
}

// ScrollToTop eases from the current position back to the top over duration.
func (s *Scroller) ScrollToTop(ctx context.Context, duration time.Duration) error {
	m, err := s.Metrics(ctx)
	if err != nil {
		return err
	}
	return s.SmoothScroll(ctx, m.Y, 0, duration)
}

// SmoothScroll walks from one offset to another in ceil(duration/frame)
// steps, each positioned on the EaseInOutQuad curve. The last step lands
// exactly on to. Every pause is cancelable through ctx.
func (s *Scroller) SmoothScroll(ctx context.Context, from, to float64, duration time.Duration) error {
	steps := int(math.Ceil(float64(duration) / float64(s.frame)))
	if steps < 1 {
		steps = 1
	}
	distance := to - from

	for i := 1; i <= steps; i++ {
		y := from + distance*EaseInOutQuad(float64(i)/float64(steps))
		if _, err := s.exec.ExecuteScript(ctx, scrollToJS, math.Round(y)); err != nil {
			return fmt.Errorf("humanoid: scroll step %d/%d failed: %w", i, steps, err)
		}
		if i < steps {
			if err := s.exec.Sleep(ctx, s.frame); err != nil {
				return err
			}
		}
	}
	return nil
}
