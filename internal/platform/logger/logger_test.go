package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json output filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)

		log.Info("hidden")
		log.Warn("visible", "request_id", "req-1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "visible", line["msg"])
		assert.Equal(t, "req-1", line["request_id"])
		assert.Equal(t, "carecompliance", line["service"])
	})

	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(config.LogConfig{Level: "debug", Format: "text"}, &buf)

		log.Debug("details")
		assert.Contains(t, buf.String(), "msg=details")
	})
}
