package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/career-coach/internal/config"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, logger.ParseLevel(tc.in))
		})
	}
}

func TestSetupSetsDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	l := logger.New(buf, "warn")

	l.Info("dropped")
	l.Warn("kept", "session_id", "abc")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["session_id"])
}

func TestContextLogger(t *testing.T) {
	buf, l := logger.NewTestLogger()
	fallback := logger.Discard()

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))

	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "t-1"))
	logger.FromContextOrDefault(ctx, fallback).Info("hello")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t-1", entries[0]["trace_id"])
}
