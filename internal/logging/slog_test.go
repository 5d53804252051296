package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlog(slog.New(handler))

	logger.Debug("debug message", "instance_id", "api-1")
	logger.Info("info message", "leader", "api-2")
	logger.Warn("warn message")
	logger.Error("error message", "error", "boom")

	out := buf.String()
	require.Contains(t, out, "debug message")
	require.Contains(t, out, "instance_id=api-1")
	require.Contains(t, out, "info message")
	require.Contains(t, out, "leader=api-2")
	require.Contains(t, out, "warn message")
	require.Contains(t, out, "error=boom")
}

func TestFormatKeyValues(t *testing.T) {
	require.Empty(t, formatKeyValues(nil))
	require.Equal(t, "a=1 ", formatKeyValues([]any{"a", 1}))
	require.Equal(t, "a=1 b=<missing> ", formatKeyValues([]any{"a", 1, "b"}))
}
