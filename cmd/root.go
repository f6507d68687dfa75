// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/config"
	"github.com/xkilldash9x/searchpilot/internal/observability"
)

// app carries state shared between the root command and its children for one
// invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	lookup  config.LookupFunc
}

// NewRootCommand builds a fresh command tree with its own viper instance, so
// flags and config from one invocation never leak into the next.
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

func newRootCommand(lookup config.LookupFunc) *cobra.Command {
	a := &app{v: viper.New(), lookup: lookup}

	rootCmd := &cobra.Command{
		Use:           "searchpilot",
		Short:         "Runs paced searches in an already running Chrome over the DevTools protocol.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./searchpilot.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command under ctx. The returned error is already
// logged; map it to a process status with ExitCode.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	return err
}

// initialize reads the config file and environment, then starts the logger.
func (a *app) initialize() error {
	config.SetDefaults(a.v)
	warnings := config.ApplyLegacyEnv(a.v, a.lookup)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("searchpilot")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("SEARCHPILOT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		// Errors still need somewhere to go.
		observability.InitializeLogger(config.NewDefaultConfig().Logger())
		return err
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger())
	logger := observability.GetLogger()
	for _, w := range warnings {
		logger.Warn("Invalid legacy environment value", zap.String("detail", w))
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("Loaded config file", zap.String("path", used))
	}
	return nil
}
