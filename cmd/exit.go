// File: cmd/exit.go
package cmd

import (
	"context"
	"errors"

	"github.com/xkilldash9x/searchpilot/internal/scheduler"
)

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitAborted = 3
)

// ExitCode maps the error returned by Execute to a process status. A run
// stopped by a signal is a clean stop; a run aborted after retries is kept
// apart from startup failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, scheduler.ErrAborted):
		return ExitAborted
	case errors.Is(err, context.Canceled):
		return ExitOK
	default:
		return ExitFailure
	}
}
