package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults from tags", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", writeConfig(t, "auth:\n  jwt_signing_key: test-key\n"))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, int64(10<<20), cfg.Documents.MaxUploadBytes)
		assert.Equal(t, 14*24*time.Hour, cfg.Checklist.LinkTTL)
		assert.Equal(t, "0 6 * * *", cfg.Alerts.DefaultSchedule)
		assert.Empty(t, cfg.Database.DSN)
		assert.Equal(t, 30, cfg.RateLimit.PublicRequests)
		assert.Equal(t, time.Minute, cfg.RateLimit.PublicWindow)
		assert.Equal(t, int32(3), cfg.Kafka.AuditPartitions)
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", writeConfig(t, "auth:\n  jwt_signing_key: test-key\nserver:\n  addr: \":9000\"\n"))
		t.Setenv("SERVER_ADDR", ":9100")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9100", cfg.Server.Addr)
	})

	t.Run("rejects invalid schedule", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", writeConfig(t, "auth:\n  jwt_signing_key: k\nalerts:\n  default_schedule: \"not a cron\"\n"))

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "alerts.default_schedule")
	})

	t.Run("rejects a negative rate limit unless disabled", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", writeConfig(t, "auth:\n  jwt_signing_key: k\nrate_limit:\n  public_requests: -1\n"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit")

		t.Setenv("RATE_LIMIT_DISABLED", "true")
		_, err = Load()
		require.NoError(t, err)
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := Load()
		require.Error(t, err)
	})
}

func TestKafkaConfig_BrokerList(t *testing.T) {
	k := KafkaConfig{Brokers: " a:9092, ,b:9092 "}
	assert.Equal(t, []string{"a:9092", "b:9092"}, k.BrokerList())
	assert.Empty(t, KafkaConfig{}.BrokerList())
}
