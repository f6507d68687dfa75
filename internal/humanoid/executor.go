// Filename: internal/humanoid/executor.go
package humanoid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Executor is the narrow browser surface the humanoid layer drives. Tests
// substitute a recording fake.
type Executor interface {
	// Sleep pauses for d unless ctx ends first.
	Sleep(ctx context.Context, d time.Duration) error
	// SendKeys types keys into the focused element.
	SendKeys(ctx context.Context, keys string) error
	// ExecuteScript calls the JavaScript function source fn with args and
	// returns its JSON-encoded result. Promises are awaited.
	ExecuteScript(ctx context.Context, fn string, args ...interface{}) ([]byte, error)
}

// Runner runs chromedp actions against a page. The browser session satisfies
// it.
type Runner interface {
	Run(ctx context.Context, actions ...chromedp.Action) error
}

// CDPExecutor implements Executor on top of a Runner.
type CDPExecutor struct {
	runner Runner
}

// NewCDPExecutor wraps runner.
func NewCDPExecutor(runner Runner) *CDPExecutor {
	return &CDPExecutor{runner: runner}
}

// Sleep does not touch the browser, so it keeps working while the
// connection is down and the caller decides what to do next.
func (e *CDPExecutor) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (e *CDPExecutor) SendKeys(ctx context.Context, keys string) error {
	return e.runner.Run(ctx, chromedp.SendKeys("document.activeElement", keys, chromedp.ByJSPath))
}

func (e *CDPExecutor) ExecuteScript(ctx context.Context, fn string, args ...interface{}) ([]byte, error) {
	expr, err := buildCall(fn, args)
	if err != nil {
		return nil, err
	}

	var res []byte
	err = e.runner.Run(ctx, chromedp.Evaluate(expr, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return nil, err
	}
	return res, nil
}

// buildCall renders an immediately invoked call of fn with JSON literals.
func buildCall(fn string, args []interface{}) (string, error) {
	encoded := make([]string, 0, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("humanoid: failed to encode script argument %d: %w", i, err)
		}
		encoded = append(encoded, string(b))
	}
	return fmt.Sprintf("(%s)(%s)", fn, strings.Join(encoded, ", ")), nil
}

// sleep is a cancelable time.Sleep.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
