package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "failed to parse JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("userhub", "1.0.0", "json", "info", &buf)

	logger.Info("test message")

	entry := decode(t, &buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "userhub", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Contains(t, entry, "time")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("userhub", "dev", "text", "", &buf)

	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "service=userhub")
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("userhub", "dev", "json", "warn", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Equal(t, "kept", decode(t, &buf)["msg"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("userhub", "dev", "json", "info", &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "handled")

	assert.Equal(t, "req-42", decode(t, &buf)["request_id"])
}

func TestLogError_OopsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("userhub", "dev", "json", "info", &buf)

	err := oops.Code("EMAIL_DELIVERY_FAILED").
		With("provider", "smtp").
		Wrap(errors.New("dial tcp: refused"))
	LogError(context.Background(), logger, "send failed", err, "user_id", "u1")

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "EMAIL_DELIVERY_FAILED", entry["code"])
	assert.Equal(t, "smtp", entry["provider"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Contains(t, entry["error"], "refused")
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("userhub", "dev", "json", "info", &buf)

	LogError(context.Background(), logger, "boom", errors.New("plain"))

	entry := decode(t, &buf)
	assert.Equal(t, "plain", entry["error"])
	assert.NotContains(t, entry, "code")
}
