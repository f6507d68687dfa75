// File: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAborted is returned by Run when a search failed after every retry.
var ErrAborted = errors.New("scheduler: search failed after all retry attempts")

// ErrAlreadyStarted is returned when Run is called more than once.
var ErrAlreadyStarted = errors.New("scheduler: already started")

// State is a point in the scheduler lifecycle.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Aborted
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Aborted:
		return "aborted"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Reason says why a run ended.
type Reason string

const (
	ReasonLimitReached Reason = "limit_reached"
	ReasonInterrupted  Reason = "interrupted"
	ReasonAborted      Reason = "aborted"
)

// Result summarises a finished run.
type Result struct {
	RunID    string
	Reason   Reason
	Searches int
}

// -- Collaborators --

// Executor runs one logical search and reports the outcome.
type Executor interface {
	Execute(ctx context.Context, query string) bool
}

// Session is released once the run ends.
type Session interface {
	Disconnect()
}

// DelayPolicy picks the wait before each scheduled search.
type DelayPolicy interface {
	Next() time.Duration
}

// TermSource hands out queries in order.
type TermSource interface {
	Next() (string, error)
}

// Config holds the run limits.
type Config struct {
	// MaxSearches stops the run after that many successful searches. Zero
	// means no limit.
	MaxSearches int
	// TickInterval is how often the countdown line is redrawn.
	TickInterval time.Duration
	// Output receives the countdown line and the final summary. Nil discards.
	Output io.Writer
}

// DefaultTickInterval redraws the countdown once per second.
const DefaultTickInterval = time.Second

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithStateHook registers fn to observe every state transition. It runs on
// the scheduler goroutine and must not block.
func WithStateHook(fn func(from, to State)) Option {
	return func(s *Scheduler) { s.onState = fn }
}

// Scheduler runs searches one at a time with a randomized pause between
// them until the limit is reached, a search fails for good, or ctx ends.
type Scheduler struct {
	cfg     Config
	exec    Executor
	session Session
	delays  DelayPolicy
	terms   TermSource
	logger  *zap.Logger
	onState func(from, to State)

	state       atomic.Int32
	running     atomic.Bool
	searchCount atomic.Int64
}

// New wires a Scheduler.
func New(cfg Config, exec Executor, session Session, delays DelayPolicy, terms TermSource, logger *zap.Logger, opts ...Option) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	s := &Scheduler{
		cfg:     cfg,
		exec:    exec,
		session: session,
		delays:  delays,
		terms:   terms,
		logger:  logger.Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// IsRunning reports whether the loop is still accepting work.
func (s *Scheduler) IsRunning() bool { return s.running.Load() }

// Searches reports the number of successful searches so far.
func (s *Scheduler) Searches() int { return int(s.searchCount.Load()) }

// Run performs the first search immediately, then keeps scheduling searches
// until a terminal condition. Cancelling ctx is the shutdown signal: pending
// waits end, no further search starts, and Run returns a nil error with
// ReasonInterrupted. A run that exhausts its retries returns ErrAborted. The
// session is released on every path.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return Result{}, ErrAlreadyStarted
	}
	s.notify(Idle, Running)
	s.running.Store(true)

	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	log.Info("Scheduler started", zap.Int("max_searches", s.cfg.MaxSearches))

	reason := s.loop(ctx, log)

	s.running.Store(false)
	if reason == ReasonAborted {
		s.transition(Aborted)
	} else {
		s.transition(Stopping)
	}
	s.session.Disconnect()
	s.transition(Terminated)

	res := Result{RunID: runID, Reason: reason, Searches: s.Searches()}
	s.report(log, res)
	if reason == ReasonAborted {
		return res, ErrAborted
	}
	return res, nil
}

func (s *Scheduler) loop(ctx context.Context, log *zap.Logger) Reason {
	if r, done := s.searchOnce(ctx, log); done {
		return r
	}
	for {
		if s.cfg.MaxSearches > 0 && s.Searches() >= s.cfg.MaxSearches {
			log.Info("Search limit reached", zap.Int("searches", s.Searches()))
			return ReasonLimitReached
		}

		delay := s.delays.Next()
		log.Info("Next search scheduled", zap.Duration("delay", delay))
		if err := s.wait(ctx, delay, log); err != nil {
			log.Info("Wait interrupted", zap.Error(err))
			return ReasonInterrupted
		}

		if r, done := s.searchOnce(ctx, log); done {
			return r
		}
	}
}

// searchOnce runs the next query. done is true when the run must end.
func (s *Scheduler) searchOnce(ctx context.Context, log *zap.Logger) (Reason, bool) {
	if ctx.Err() != nil {
		return ReasonInterrupted, true
	}

	term, err := s.terms.Next()
	if err != nil {
		log.Error("No search term available", zap.Error(err))
		return ReasonAborted, true
	}

	n := s.Searches() + 1
	log.Info("Starting search", zap.Int("search", n), zap.String("term", term))
	if !s.exec.Execute(ctx, term) {
		if ctx.Err() != nil {
			return ReasonInterrupted, true
		}
		log.Error("Search failed, aborting run", zap.Int("search", n), zap.String("term", term))
		return ReasonAborted, true
	}

	count := s.searchCount.Add(1)
	log.Info("Search succeeded", zap.Int64("searches", count), zap.String("term", term))
	return "", false
}

func (s *Scheduler) transition(to State) {
	from := State(s.state.Swap(int32(to)))
	if from != to {
		s.notify(from, to)
	}
}

func (s *Scheduler) notify(from, to State) {
	s.logger.Debug("State change", zap.Stringer("from", from), zap.Stringer("to", to))
	if s.onState != nil {
		s.onState(from, to)
	}
}

func (s *Scheduler) report(log *zap.Logger, res Result) {
	log.Info("Scheduler finished",
		zap.String("reason", string(res.Reason)),
		zap.Int("searches", res.Searches),
	)
	fmt.Fprintf(s.cfg.Output, "Total successful searches: %d (%s)\n", res.Searches, res.Reason)
}
