// File: internal/interval/interval_test.go
package interval

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

func TestNextDelay_StaysWithinBounds(t *testing.T) {
	bounds := []struct {
		min, max time.Duration
	}{
		{0, 0},
		{0, time.Millisecond},
		{3 * time.Minute, 5 * time.Minute},
		{time.Second, time.Second + 1},
		{7 * time.Hour, 7 * time.Hour},
	}

	for _, b := range bounds {
		for i := 0; i < 10000; i++ {
			d, err := NextDelay(b.min, b.max)
			require.NoError(t, err)
			if d < b.min || d > b.max {
				t.Fatalf("NextDelay(%s, %s) = %s, outside bounds", b.min, b.max, d)
			}
		}
	}
}

func TestNextDelay_EqualBoundsReturnMin(t *testing.T) {
	for i := 0; i < 100; i++ {
		d, err := NextDelay(90*time.Second, 90*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, d)
	}
}

func TestNextDelay_InvalidBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max time.Duration
	}{
		{"min above max", 5 * time.Minute, 3 * time.Minute},
		{"negative min", -time.Second, time.Second},
		{"negative max", -2 * time.Second, -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextDelay(tt.min, tt.max)
			var cfgErr *errs.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)

			_, err = NewPolicy(tt.min, tt.max, nil)
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestPolicy_InclusiveUpperBound(t *testing.T) {
	// With a span of a single nanosecond both ends must be reachable.
	p, err := NewPolicy(time.Second, time.Second+time.Nanosecond, rand.NewPCG(1, 2))
	require.NoError(t, err)

	seen := map[time.Duration]bool{}
	for i := 0; i < 1000; i++ {
		seen[p.Next()] = true
	}
	assert.True(t, seen[time.Second])
	assert.True(t, seen[time.Second+time.Nanosecond])
	assert.Len(t, seen, 2)
}

func TestPolicy_SeededIsReproducible(t *testing.T) {
	a, err := NewPolicy(time.Minute, 2*time.Minute, rand.NewPCG(42, 7))
	require.NoError(t, err)
	b, err := NewPolicy(time.Minute, 2*time.Minute, rand.NewPCG(42, 7))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
	assert.Equal(t, time.Minute, a.Min())
	assert.Equal(t, 2*time.Minute, a.Max())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 second(s)"},
		{999 * time.Millisecond, "0 second(s)"},
		{time.Second, "1 second(s)"},
		{59 * time.Second, "59 second(s)"},
		{60 * time.Second, "1 minute(s) 0 second(s)"},
		{65000 * time.Millisecond, "1 minute(s) 5 second(s)"},
		{3 * time.Minute, "3 minute(s) 0 second(s)"},
		{time.Hour, "1 hour(s) 0 minute(s)"},
		{3665000 * time.Millisecond, "1 hour(s) 1 minute(s)"},
		{26*time.Hour + 30*time.Minute, "26 hour(s) 30 minute(s)"},
		{-5 * time.Second, "0 second(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}
