// File: cmd/searchpilot/main_test.go
package main

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/searchpilot/cmd"
	"github.com/xkilldash9x/searchpilot/internal/scheduler"
)

// --- Setup Helpers ---

func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
	execute = cmd.Execute
}

func TestRun_ExitCodes(t *testing.T) {
	defer resetMocks()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clean stop", nil, 0},
		{"interrupted", context.Canceled, 0},
		{"aborted", scheduler.ErrAborted, 3},
		{"startup failure", errors.New("cannot connect"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			execute = func(ctx context.Context) error {
				require.NotNil(t, ctx)
				return tt.err
			}
			assert.Equal(t, tt.want, run())
		})
	}
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	t.Run("writes the panic log and exits 1", func(t *testing.T) {
		var written string
		var code int
		osWriteFile = func(name string, data []byte, perm os.FileMode) error {
			assert.Equal(t, panicLogFile, name)
			written = string(data)
			return nil
		}
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("boom")
		}()

		assert.Equal(t, 1, code)
		assert.Contains(t, written, "panic: boom")
		assert.Contains(t, written, "goroutine")
	})

	t.Run("still exits when the log cannot be written", func(t *testing.T) {
		var code int
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only") }
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("boom")
		}()
		assert.Equal(t, 1, code)
	})

	t.Run("no panic is a no-op", func(t *testing.T) {
		called := false
		osExit = func(int) { called = true }
		func() {
			defer handlePanic()
		}()
		assert.False(t, called)
	})
}
