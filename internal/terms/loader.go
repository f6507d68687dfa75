// File: internal/terms/loader.go
package terms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads a JSON array of non-blank strings from path. A leading "~" is
// expanded to the user's home directory.
func Load(path string) ([]string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand term file path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read term file: %w", err)
	}
	return Parse(data, expanded)
}

// Parse decodes a term list document. source only labels errors.
func Parse(data []byte, source string) ([]string, error) {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("term file %s is not a JSON array: %w", source, err)
	}
	if len(raw) == 0 {
		return nil, &errs.EmptyTermListError{Source: source}
	}

	list := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("term file %s: element %d is %T, want string", source, i, item)
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("term file %s: element %d is blank", source, i)
		}
		list = append(list, s)
	}
	return list, nil
}

// Resolve loads the term file at path. When the file does not exist and
// fallback is set, the built-in list is returned instead. Any other failure,
// including an existing but malformed file, is returned as is.
func Resolve(path string, fallback bool, logger *zap.Logger) ([]string, error) {
	list, err := Load(path)
	if err == nil {
		logger.Info("Loaded search terms", zap.String("path", path), zap.Int("count", len(list)))
		return list, nil
	}
	if fallback && errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Term file not found, using built-in terms",
			zap.String("path", path),
			zap.Int("count", len(Builtin())),
		)
		return Builtin(), nil
	}
	return nil, err
}
