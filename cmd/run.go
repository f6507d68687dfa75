// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/browser/session"
	"github.com/xkilldash9x/searchpilot/internal/config"
	"github.com/xkilldash9x/searchpilot/internal/humanoid"
	"github.com/xkilldash9x/searchpilot/internal/interval"
	"github.com/xkilldash9x/searchpilot/internal/observability"
	"github.com/xkilldash9x/searchpilot/internal/scheduler"
	"github.com/xkilldash9x/searchpilot/internal/search"
	"github.com/xkilldash9x/searchpilot/internal/terms"
)

// flagBindings maps run flags to configuration keys.
var flagBindings = map[string]string{
	"min-interval":     "search.min_interval",
	"max-interval":     "search.max_interval",
	"max-searches":     "search.max_searches",
	"typing-delay":     "search.typing_delay",
	"base-url":         "search.base_url",
	"retry-attempts":   "search.retry_attempts",
	"debug-host":       "browser.debug_host",
	"debug-port":       "browser.debug_port",
	"terms-file":       "terms.file",
	"builtin-fallback": "terms.builtin_fallback",
}

func newRunCmd(a *app) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Starts the search loop against the browser on the debug port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearches(cmd.Context(), a.cfg, observability.GetLogger(), cmd.OutOrStdout())
		},
	}

	f := runCmd.Flags()
	f.Duration("min-interval", 0, "shortest pause between searches (default 3m)")
	f.Duration("max-interval", 0, "longest pause between searches (default 5m)")
	f.Int("max-searches", 0, "stop after this many successful searches, 0 for no limit (default 30)")
	f.Duration("typing-delay", 0, "pause between typed characters (default 200ms)")
	f.String("base-url", "", "search engine home page (default https://www.bing.com)")
	f.Int("retry-attempts", 0, "attempts per search before the run aborts (default 3)")
	f.String("debug-host", "", "host of the browser's remote debugging port (default 127.0.0.1)")
	f.Int("debug-port", 0, "browser remote debugging port (default 9222)")
	f.String("terms-file", "", "JSON array of search terms (default generated/search-terms.json)")
	f.Bool("builtin-fallback", true, "use the built-in terms when the terms file does not exist")

	if err := bindFlags(a.v, f); err != nil {
		panic(err)
	}
	return runCmd
}

// bindFlags ties each run flag to its configuration key. Only flags the user
// actually set override the config.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(fl *pflag.Flag) {
		key, ok := flagBindings[fl.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, fl); err != nil {
			bindErr = fmt.Errorf("binding flag %s: %w", fl.Name, err)
		}
	})
	return bindErr
}

// runSearches wires the browser session, the search protocol and the
// scheduler, then blocks until the run ends.
func runSearches(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	sc := cfg.Search()
	bc := cfg.Browser()

	list, err := terms.Resolve(cfg.Terms().File, cfg.Terms().BuiltinFallback, logger)
	if err != nil {
		return err
	}
	cursor, err := terms.NewCursor(list)
	if err != nil {
		return err
	}
	delays, err := interval.NewPolicy(sc.MinInterval, sc.MaxInterval, nil)
	if err != nil {
		return err
	}

	logBanner(logger, cfg, len(list))

	sess := session.NewRemoteSession(session.Options{
		Endpoint:       bc.Endpoint(),
		ConnectTimeout: bc.ConnectTimeout,
	}, logger)
	if err := sess.Connect(ctx); err != nil {
		logger.Error("Initial browser connection failed; is Chrome running with remote debugging enabled?",
			zap.String("endpoint", bc.Endpoint()), zap.Error(err))
		return err
	}

	exec := humanoid.NewCDPExecutor(sess)
	action := search.NewAction(search.ActionConfig{
		BaseURL: sc.BaseURL,
		Pacing:  search.DefaultPacing(),
	}, sess, humanoid.NewTypist(exec, sc.TypingDelay), humanoid.NewScroller(exec, humanoid.DefaultFrameInterval), nil, logger)

	retrying := search.NewRetryingExecutor(sess, action, search.RetryPolicy{
		MaxAttempts:      sc.RetryAttempts,
		RetryDelay:       sc.RetryDelay,
		ReconnectBackoff: sc.ReconnectBackoff,
	}, logger)

	sched := scheduler.New(scheduler.Config{
		MaxSearches: sc.MaxSearches,
		Output:      out,
	}, retrying, sess, delays, cursor, logger)

	res, err := sched.Run(ctx)
	logger.Info("Run summary",
		zap.String("run_id", res.RunID),
		zap.String("reason", string(res.Reason)),
		zap.Int("successful_searches", res.Searches),
	)
	return err
}

func logBanner(logger *zap.Logger, cfg *config.Config, termCount int) {
	sc := cfg.Search()
	limit := "unlimited"
	if sc.MaxSearches > 0 {
		limit = strconv.Itoa(sc.MaxSearches)
	}
	logger.Info("Configuration",
		zap.String("interval", fmt.Sprintf("%s - %s",
			interval.FormatDuration(sc.MinInterval), interval.FormatDuration(sc.MaxInterval))),
		zap.Duration("typing_delay", sc.TypingDelay),
		zap.String("max_searches", limit),
		zap.String("base_url", sc.BaseURL),
		zap.String("debug_endpoint", cfg.Browser().Endpoint()),
		zap.String("browser_profile", cfg.Browser().UserDataDir),
		zap.Int("terms", termCount),
	)
}
