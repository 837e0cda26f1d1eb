package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/pos_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "receipt-events", cfg.ReceiptTopic)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/pos_test")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "kafka:9092", cfg.KafkaBrokers)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "placeholder") // register cleanup to restore
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := Load()
	assert.Error(t, err)
}
