package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler_RespectsLevelAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With("module", "realtime", "component", "registry")

	logger.Debug("hidden")
	logger.Info("connection registered", "connection_id", "c1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[realtime/registry] connection registered")
	assert.Contains(t, out, "connection_id=c1")
}

func TestJSONHandler_KeepsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, nil)).With("service", "timepulse-notifier")

	logger.Warn("push failed", "error", errors.New("closed"))

	var obj map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &obj))
	assert.Equal(t, "timepulse-notifier", obj["service"])
	assert.Equal(t, "closed", obj["error"])
	assert.Equal(t, "WARN", obj["level"])
}
