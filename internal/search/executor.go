// File: internal/search/executor.go
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// Connection is the part of the browser session the executor manages.
type Connection interface {
	IsConnected() bool
	Reconnect(ctx context.Context, backoff time.Duration) bool
}

// Performer runs a single search attempt.
type Performer interface {
	Perform(ctx context.Context, query string) error
}

// RetryPolicy bounds how hard one logical search is tried.
type RetryPolicy struct {
	MaxAttempts int
	// RetryDelay follows an ordinary failure. It is skipped after a lost
	// connection and after the final attempt.
	RetryDelay time.Duration
	// ReconnectBackoff is waited inside each reconnect.
	ReconnectBackoff time.Duration
}

// DefaultRetryPolicy is three attempts with five second waits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		RetryDelay:       5 * time.Second,
		ReconnectBackoff: 5 * time.Second,
	}
}

// RetryingExecutor turns a Performer into a single success-or-failure
// outcome, reconnecting the session when the connection drops.
type RetryingExecutor struct {
	conn   Connection
	action Performer
	policy RetryPolicy
	sleep  SleepFunc
	logger *zap.Logger
}

// ExecutorOption customises a RetryingExecutor.
type ExecutorOption func(*RetryingExecutor)

// WithSleep replaces the wait used for RetryDelay.
func WithSleep(fn SleepFunc) ExecutorOption {
	return func(e *RetryingExecutor) { e.sleep = fn }
}

// NewRetryingExecutor wires an executor. MaxAttempts below one is treated as
// one.
func NewRetryingExecutor(conn Connection, action Performer, policy RetryPolicy, logger *zap.Logger, opts ...ExecutorOption) *RetryingExecutor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	e := &RetryingExecutor{
		conn:   conn,
		action: action,
		policy: policy,
		sleep:  sleepCtx,
		logger: logger.Named("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute tries query up to MaxAttempts times and reports whether one attempt
// completed. It never returns an error; the boolean is authoritative.
//
// Each attempt starts with a reconnect when the session is down or the
// previous attempt lost the connection. That reconnect belongs to the
// attempt, so a failed reconnect uses the attempt up without running the
// search.
func (e *RetryingExecutor) Execute(ctx context.Context, query string) bool {
	maxAttempts := e.policy.MaxAttempts
	log := e.logger.With(zap.String("query", query), zap.Int("max_attempts", maxAttempts))
	needReconnect := false

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			log.Info("Search abandoned", zap.Int("attempt", attempt), zap.Error(ctx.Err()))
			return false
		}
		alog := log.With(zap.Int("attempt", attempt))

		if needReconnect || !e.conn.IsConnected() {
			alog.Warn("Browser not connected, reconnecting", zap.Duration("backoff", e.policy.ReconnectBackoff))
			if !e.conn.Reconnect(ctx, e.policy.ReconnectBackoff) {
				alog.Error("Reconnect failed")
				needReconnect = true
				continue
			}
			alog.Info("Reconnected")
			needReconnect = false
		}

		alog.Info("Performing search")
		err := e.action.Perform(ctx, query)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			alog.Info("Search interrupted", zap.Error(err))
			return false
		}

		if errs.IsConnectionLost(err) || !e.conn.IsConnected() {
			alog.Warn("Connection lost during search, reconnecting immediately", zap.Error(err))
			needReconnect = true
			continue
		}

		alog.Warn("Search attempt failed", zap.Error(err))
		if attempt < maxAttempts {
			if err := e.sleep(ctx, e.policy.RetryDelay); err != nil {
				log.Info("Search abandoned during retry delay", zap.Error(err))
				return false
			}
		}
	}

	log.Error("Search failed after all attempts")
	return false
}
