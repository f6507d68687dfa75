// File: internal/interval/policy.go
package interval

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// Policy draws inter-search delays uniformly from a closed [Min, Max] range.
type Policy struct {
	lower time.Duration
	upper time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPolicy validates the bounds and returns a policy seeded from the runtime
// source. Pass a non-nil src to make the draws reproducible.
func NewPolicy(lower, upper time.Duration, src rand.Source) (*Policy, error) {
	if err := validateBounds(lower, upper); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Policy{lower: lower, upper: upper, rng: rand.New(src)}, nil
}

// Min returns the lower bound.
func (p *Policy) Min() time.Duration { return p.lower }

// Max returns the upper bound.
func (p *Policy) Max() time.Duration { return p.upper }

// Next returns the next delay in [Min, Max].
func (p *Policy) Next() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return draw(p.rng.Int64N, p.lower, p.upper)
}

// NextDelay returns a delay uniformly distributed in [lower, upper] inclusive.
func NextDelay(lower, upper time.Duration) (time.Duration, error) {
	if err := validateBounds(lower, upper); err != nil {
		return 0, err
	}
	return draw(rand.Int64N, lower, upper), nil
}

func draw(int64n func(int64) int64, lower, upper time.Duration) time.Duration {
	span := int64(upper - lower)
	if span == 0 {
		return lower
	}
	return lower + time.Duration(int64n(span+1))
}

func validateBounds(lower, upper time.Duration) error {
	if lower < 0 {
		return &errs.ConfigurationError{Key: "min delay", Reason: "must not be negative"}
	}
	if upper < 0 {
		return &errs.ConfigurationError{Key: "max delay", Reason: "must not be negative"}
	}
	if lower > upper {
		return &errs.ConfigurationError{Key: "min delay", Reason: "must not exceed max delay"}
	}
	return nil
}
