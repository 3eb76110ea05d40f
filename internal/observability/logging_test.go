package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Debug("route matched", String("route", "pathsupport.node"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "route matched", entry["message"])
	assert.Equal(t, "pathsupport.node", entry["route"])
}

func TestNewLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestLogger_WithContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "info", Writer: &buf})
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTraceID(ctx, "trace-1")
	ctx = ContextWithSpanID(ctx, "span-1")

	logger.WithContext(ctx).Info("forwarded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "span-1", entry["span_id"])
	assert.Equal(t, "trace-1", TraceIDFromContext(ctx))
}

func TestLogger_WithContextEmpty(t *testing.T) {
	t.Parallel()

	logger := NopLogger()
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestGlobalLogger(t *testing.T) {
	assert.NotNil(t, L())

	logger := NopLogger()
	SetGlobalLogger(logger)
	defer SetGlobalLogger(nil)

	assert.Same(t, logger, L())
}
