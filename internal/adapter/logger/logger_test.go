package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "order-service", "debug")

	l.Error("checkout_failed", "Checkout failed", "req-1", map[string]any{"outlet_id": "o-1"}, errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "order-service", entry["service"])
	assert.Equal(t, "checkout_failed", entry["action"])
	assert.Equal(t, "Checkout failed", entry["message"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.NotEmpty(t, entry["timestamp"])
	assert.Equal(t, map[string]any{"outlet_id": "o-1"}, entry["details"])

	errInfo, ok := entry["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", errInfo["msg"])
	assert.NotEmpty(t, errInfo["stack"])
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "svc", "warn")

	l.Debug("a", "debug", "", nil)
	l.Info("b", "info", "", nil)
	l.Warn("c", "warn", "", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"action":"c"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
