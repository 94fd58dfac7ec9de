package logger_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/loyalty-api/internal/config"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetupWithWriter(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logDebug   bool
		logInfo    bool
		logWarning bool
	}{
		{name: "debug", level: "debug", logDebug: true, logInfo: true, logWarning: true},
		{name: "info", level: "info", logDebug: false, logInfo: true, logWarning: true},
		{name: "warn upper case", level: "WARN", logDebug: false, logInfo: false, logWarning: true},
		{name: "error", level: "error", logDebug: false, logInfo: false, logWarning: false},
		{name: "invalid falls back to info", level: "verbose", logDebug: false, logInfo: true, logWarning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreDefault(t)
			buf := &logger.TestLogBuffer{}

			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tt.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			logs := buf.String()
			assert.Equal(t, tt.logDebug, strings.Contains(logs, "debug message"))
			assert.Equal(t, tt.logInfo, strings.Contains(logs, "info message"))
			assert.Equal(t, tt.logWarning, strings.Contains(logs, "warn message"))
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	_, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, buf)
	require.NoError(t, err)

	slog.Info("through default", "owner", "ann@example.com")

	logger.AssertLogField(t, buf, "msg", "through default")
	logger.AssertLogField(t, buf, "level", "INFO")
	logger.AssertLogField(t, buf, "owner", "ann@example.com")
}

func TestParseLevel(t *testing.T) {
	level, ok := logger.ParseLevel(" Debug ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)

	level, ok = logger.ParseLevel("fatal")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.GetTestLogger(t)
	fallback, fallbackBuf := logger.GetTestLogger(t)

	t.Run("stored logger wins", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), l)
		logger.FromContextOrDefault(ctx, fallback).Info("from context")

		logger.AssertLogContains(t, buf, "from context")
		assert.NotContains(t, fallbackBuf.String(), "from context")
	})

	t.Run("fallback without stored logger", func(t *testing.T) {
		logger.FromContextOrDefault(context.Background(), fallback).Info("from fallback")

		logger.AssertLogContains(t, fallbackBuf, "from fallback")
	})

	t.Run("default without fallback", func(t *testing.T) {
		assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
	})
}
