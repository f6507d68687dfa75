// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/searchpilot/internal/config"
)

// lockedBuffer is a WriteSyncer over a bytes.Buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Sync() error { return nil }

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBuild(t *testing.T) {
	t.Run("console output is colorized and named", func(t *testing.T) {
		out := &lockedBuffer{}
		logger := Build(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "searchpilot",
			Colors:      config.ColorConfig{Info: "green"},
		}, out)

		logger.Named("scheduler").Info("Search succeeded", zap.Int("searches", 2))
		got := out.String()
		assert.Contains(t, got, colorGreen+"INFO"+colorReset)
		assert.Contains(t, got, "searchpilot.scheduler.")
		assert.Contains(t, got, "Search succeeded")
		assert.Contains(t, got, `"searches": 2`)
	})

	t.Run("unknown color names fall back to plain labels", func(t *testing.T) {
		out := &lockedBuffer{}
		logger := Build(config.LoggerConfig{Level: "info", Format: "console", Colors: config.ColorConfig{Warn: "plaid"}}, out)
		logger.Warn("careful")
		assert.Contains(t, out.String(), "WARN")
		assert.NotContains(t, out.String(), "\x1b[")
	})

	t.Run("json output", func(t *testing.T) {
		out := &lockedBuffer{}
		logger := Build(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "searchpilot"}, out)
		logger.Warn("Reconnect failed", zap.Int("attempt", 2))

		var entry map[string]interface{}
		require.NoError(t, jsoniter.Unmarshal([]byte(out.String()), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "searchpilot", entry["logger"])
		assert.Equal(t, "Reconnect failed", entry["msg"])
		assert.EqualValues(t, 2, entry["attempt"])
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		out := &lockedBuffer{}
		logger := Build(config.LoggerConfig{Level: "warn", Format: "json"}, out)
		logger.Info("hidden")
		assert.Empty(t, out.String())
	})

	t.Run("bad level defaults to info", func(t *testing.T) {
		out := &lockedBuffer{}
		logger := Build(config.LoggerConfig{Level: "loud", Format: "json"}, out)
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
	})

	t.Run("log file receives json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "searchpilot.log")
		logger := Build(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&lockedBuffer{}))
		logger.Error("Search failed after all attempts")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"Search failed after all attempts"`)
	})
}

func TestInitialize(t *testing.T) {
	t.Run("only the first call takes effect", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &lockedBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"}, out)
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "Second"}, out)

		assert.Same(t, first, GetLogger())
		GetLogger().Info("test")
		Sync()
		assert.True(t, strings.Contains(out.String(), "First"))
		assert.False(t, strings.Contains(out.String(), "Second"))
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		assert.NotNil(t, GetLogger())
		assert.Nil(t, globalLogger.Load())
	})

	t.Run("global after initialization", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		Initialize(config.LoggerConfig{Level: "info"}, &lockedBuffer{})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
