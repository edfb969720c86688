package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr-roshyara/public-digit-sub005/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json at the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"})
		log.Info("dropped")
		log.Warn("kept", "tenant_id", "T1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "kept", line["msg"])
		assert.Equal(t, "T1", line["tenant_id"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "text"}).Debug("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "chatty"})
		log.Debug("dropped")
		assert.Empty(t, buf.String())
	})
}
