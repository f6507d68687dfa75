// File: internal/errs/errors_test.go
package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsConnectionLost(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := &ConnectionLostError{Op: "navigate"}
		assert.True(t, IsConnectionLost(err))
	})

	t.Run("wrapped twice", func(t *testing.T) {
		inner := &ConnectionLostError{Op: "type", Err: context.Canceled}
		err := fmt.Errorf("search failed: %w", fmt.Errorf("step 4: %w", inner))
		assert.True(t, IsConnectionLost(err))
		assert.ErrorIs(t, err, context.Canceled, "cause should stay reachable")
	})

	t.Run("message alone is not enough", func(t *testing.T) {
		err := errors.New("Protocol error: Target closed")
		assert.False(t, IsConnectionLost(err))
	})

	t.Run("other typed errors", func(t *testing.T) {
		assert.False(t, IsConnectionLost(&ElementNotFoundError{Selector: "#q", Timeout: time.Second}))
		assert.False(t, IsConnectionLost(nil))
	})
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config with key", &ConfigurationError{Key: "search.min_interval", Reason: "must not exceed search.max_interval"}, "invalid configuration: search.min_interval must not exceed search.max_interval"},
		{"config without key", &ConfigurationError{Reason: "min > max"}, "invalid configuration: min > max"},
		{"connect", &ConnectError{Endpoint: "127.0.0.1:9222", Err: errors.New("refused")}, "cannot connect to browser at 127.0.0.1:9222: refused"},
		{"element", &ElementNotFoundError{Selector: "#sb_form_q", Timeout: 10 * time.Second}, `element "#sb_form_q" not found within 10s`},
		{"navigation", &NavigationTimeoutError{Timeout: 15 * time.Second}, "navigation did not settle within 15s"},
		{"navigation url", &NavigationTimeoutError{URL: "https://www.bing.com", Timeout: time.Second}, "navigation to https://www.bing.com did not settle within 1s"},
		{"lost", &ConnectionLostError{Op: "scroll"}, "connection lost during scroll"},
		{"empty", &EmptyTermListError{}, "term list is empty"},
		{"empty with source", &EmptyTermListError{Source: "terms.json"}, "term list from terms.json is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConnectErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("startup: %w", &ConnectError{Endpoint: "x", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsConfiguration(err))
	assert.True(t, IsConfiguration(fmt.Errorf("load: %w", &ConfigurationError{Reason: "bad"})))
}
