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

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogError(t *testing.T) {
	t.Run("oops error carries code and context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, "auth-service", slog.LevelInfo)

		err := oops.Code("ACCOUNT_INSERT_FAILED").With("operation", "insert account").Wrap(errors.New("boom"))
		LogError(context.Background(), logger, "request failed", err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "request failed", entry["msg"])
		assert.Equal(t, "auth-service", entry["service"])
		assert.Equal(t, "ACCOUNT_INSERT_FAILED", entry["code"])
		assert.Contains(t, entry["error"], "boom")
		assert.Contains(t, entry, "context")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, "auth-service", slog.LevelInfo)

		LogError(context.Background(), logger, "request failed", errors.New("boom"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "boom", entry["error"])
		assert.NotContains(t, entry, "code")
	})
}
