package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.InDelta(t, 12.0, cfg.SessionHoursCap, 1e-9)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "volunteerhub.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, time.Second, cfg.OutboxInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, "test-signing-key", cfg.JWTSigningKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")
	t.Setenv("VOLUNTEERHUB_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("SESSION_HOURS_CAP", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	assert.InDelta(t, 8.0, cfg.SessionHoursCap, 1e-9)
}

func TestLoadRequiresSigningKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SIGNING_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SIGNING_KEY is required")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	t.Run("non numeric cap", func(t *testing.T) {
		t.Setenv("SESSION_HOURS_CAP", "lots")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env")
	})

	t.Run("zero cap", func(t *testing.T) {
		t.Setenv("SESSION_HOURS_CAP", "0")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_HOURS_CAP")
	})

	t.Run("zero relay interval", func(t *testing.T) {
		t.Setenv("OUTBOX_RELAY_INTERVAL", "0s")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OUTBOX_RELAY_INTERVAL")
	})
}
