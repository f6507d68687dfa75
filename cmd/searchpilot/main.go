// File: cmd/searchpilot/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/searchpilot/cmd"
	"github.com/xkilldash9x/searchpilot/internal/observability"
)

const panicLogFile = "panic.log"

// Replaced in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	execute     = cmd.Execute
)

func main() {
	defer handlePanic()
	osExit(run())
}

// run executes the command tree under a context that ends on SIGINT or
// SIGTERM and returns the process status.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	return cmd.ExitCode(execute(ctx))
}

// handlePanic writes the panic and stack to panicLogFile and exits 1.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	msg := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(msg), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "Crashed; details written to %s\n", panicLogFile)
	}
	osExit(cmd.ExitFailure)
}
