// File: internal/config/config.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// Interface defines the contract for accessing application configuration.
type Interface interface {
	Logger() LoggerConfig
	Search() SearchConfig
	Browser() BrowserConfig
	Terms() TermsConfig
}

// Config holds the whole application configuration. It is read once at
// startup and not mutated afterwards.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	SearchCfg  SearchConfig  `mapstructure:"search" yaml:"search"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	TermsCfg   TermsConfig   `mapstructure:"terms" yaml:"terms"`
}

// --- Interface Method Implementations ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Search() SearchConfig   { return c.SearchCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Terms() TermsConfig     { return c.TermsCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// SearchConfig controls pacing and retry of the search loop.
type SearchConfig struct {
	MinInterval      time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	MaxInterval      time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
	MaxSearches      int           `mapstructure:"max_searches" yaml:"max_searches"`
	TypingDelay      time.Duration `mapstructure:"typing_delay" yaml:"typing_delay"`
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url"`
	RetryAttempts    int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff" yaml:"reconnect_backoff"`
}

// BrowserConfig points at the externally managed browser.
type BrowserConfig struct {
	DebugHost      string        `mapstructure:"debug_host" yaml:"debug_host"`
	DebugPort      int           `mapstructure:"debug_port" yaml:"debug_port"`
	UserDataDir    string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// Endpoint is the HTTP address of the remote debugging surface.
func (b BrowserConfig) Endpoint() string {
	return "http://" + net.JoinHostPort(b.DebugHost, strconv.Itoa(b.DebugPort))
}

// TermsConfig locates the query list.
type TermsConfig struct {
	File            string `mapstructure:"file" yaml:"file"`
	BuiltinFallback bool   `mapstructure:"builtin_fallback" yaml:"builtin_fallback"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "searchpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Search --
	v.SetDefault("search.min_interval", 3*time.Minute)
	v.SetDefault("search.max_interval", 5*time.Minute)
	v.SetDefault("search.max_searches", 30)
	v.SetDefault("search.typing_delay", 200*time.Millisecond)
	v.SetDefault("search.base_url", "https://www.bing.com")
	v.SetDefault("search.retry_attempts", 3)
	v.SetDefault("search.retry_delay", 5*time.Second)
	v.SetDefault("search.reconnect_backoff", 5*time.Second)

	// -- Browser --
	v.SetDefault("browser.debug_host", "127.0.0.1")
	v.SetDefault("browser.debug_port", 9222)
	v.SetDefault("browser.user_data_dir", "~/.searchpilot/chrome-profile")
	v.SetDefault("browser.connect_timeout", 15*time.Second)

	// -- Terms --
	v.SetDefault("terms.file", "generated/search-terms.json")
	v.SetDefault("terms.builtin_fallback", true)
}

// NewConfigFromViper creates a validated configuration from a viper object.
// Paths are expanded relative to the user's home directory.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	for _, p := range []*string{&cfg.TermsCfg.File, &cfg.BrowserCfg.UserDataDir, &cfg.LoggerCfg.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return nil, fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values. It
// returns a *errs.ConfigurationError naming the offending key.
func (c *Config) Validate() error {
	s := c.SearchCfg
	switch {
	case s.MinInterval < 0:
		return &errs.ConfigurationError{Key: "search.min_interval", Reason: "must not be negative"}
	case s.MaxInterval < 0:
		return &errs.ConfigurationError{Key: "search.max_interval", Reason: "must not be negative"}
	case s.MinInterval > s.MaxInterval:
		return &errs.ConfigurationError{Key: "search.min_interval", Reason: "must not exceed search.max_interval"}
	case s.MaxSearches < 0:
		return &errs.ConfigurationError{Key: "search.max_searches", Reason: "must be 0 (unlimited) or positive"}
	case s.TypingDelay < 0:
		return &errs.ConfigurationError{Key: "search.typing_delay", Reason: "must not be negative"}
	case s.RetryAttempts < 1:
		return &errs.ConfigurationError{Key: "search.retry_attempts", Reason: "must be at least 1"}
	case s.RetryDelay < 0:
		return &errs.ConfigurationError{Key: "search.retry_delay", Reason: "must not be negative"}
	case s.ReconnectBackoff < 0:
		return &errs.ConfigurationError{Key: "search.reconnect_backoff", Reason: "must not be negative"}
	}
	if err := validateURL(s.BaseURL); err != nil {
		return err
	}

	b := c.BrowserCfg
	if b.DebugHost == "" {
		return &errs.ConfigurationError{Key: "browser.debug_host", Reason: "is required"}
	}
	if b.DebugPort < 1 || b.DebugPort > 65535 {
		return &errs.ConfigurationError{Key: "browser.debug_port", Reason: fmt.Sprintf("%d is out of range", b.DebugPort)}
	}
	if b.ConnectTimeout <= 0 {
		return &errs.ConfigurationError{Key: "browser.connect_timeout", Reason: "must be positive"}
	}

	if c.TermsCfg.File == "" {
		return &errs.ConfigurationError{Key: "terms.file", Reason: "is required"}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return &errs.ConfigurationError{Key: "search.base_url", Reason: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &errs.ConfigurationError{Key: "search.base_url", Reason: fmt.Sprintf("%q is not an absolute http(s) URL", raw)}
	}
	return nil
}
