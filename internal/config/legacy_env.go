// File: internal/config/legacy_env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

type legacyVar struct {
	env   string
	key   string
	parse func(string) (interface{}, error)
}

var legacyVars = []legacyVar{
	{"MIN_INTERVAL_MINUTES", "search.min_interval", minutes},
	{"MAX_INTERVAL_MINUTES", "search.max_interval", minutes},
	{"MAX_SEARCHES", "search.max_searches", nonNegativeInt},
	{"TYPING_DELAY_MS", "search.typing_delay", millis},
	{"CHROME_DEBUG_PORT", "browser.debug_port", port},
	{"BING_BASE_URL", "search.base_url", nonEmpty},
	{"CHROME_USER_DATA_DIR", "browser.user_data_dir", nonEmpty},
}

// ApplyLegacyEnv maps the unprefixed environment variables older deployments
// use onto their configuration keys. They replace the built-in defaults only,
// so a config file, a prefixed variable or a flag still wins. A value that
// does not parse leaves the default in place and is reported in the returned
// warnings, which the caller logs once the logger exists.
func ApplyLegacyEnv(v *viper.Viper, lookup LookupFunc) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var warnings []string
	for _, lv := range legacyVars {
		raw, ok := lookup(lv.env)
		if !ok {
			continue
		}
		val, err := lv.parse(strings.TrimSpace(raw))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: %v; using default %v", lv.env, raw, err, v.Get(lv.key)))
			continue
		}
		v.SetDefault(lv.key, val)
	}
	return warnings
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

func minutes(s string) (interface{}, error) {
	n, err := parseNonNegative(s)
	if err != nil {
		return nil, err
	}
	return time.Duration(n) * time.Minute, nil
}

func millis(s string) (interface{}, error) {
	n, err := parseNonNegative(s)
	if err != nil {
		return nil, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func nonNegativeInt(s string) (interface{}, error) {
	return parseNonNegative(s)
}

func port(s string) (interface{}, error) {
	n, err := parseNonNegative(s)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > 65535 {
		return nil, fmt.Errorf("port out of range")
	}
	return n, nil
}

func nonEmpty(s string) (interface{}, error) {
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}
	return s, nil
}
