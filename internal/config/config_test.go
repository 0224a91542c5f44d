package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFileOverlays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cosmetica.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
session_ttl: 48h
kafka:
  brokers: [k1:9092, k2:9092]
outbox:
  max_retries: 9
  lease: 90s
analytics:
  categories:
    Glow Drops: Serum
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "cosmetica.orders", cfg.Kafka.Topic)
	assert.Equal(t, 9, cfg.Outbox.MaxRetries)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
	assert.Equal(t, 90*time.Second, cfg.Outbox.Lease)
	assert.Equal(t, "Serum", cfg.Analytics.Categories["Glow Drops"])
}

func TestLoadFileMalformedNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing "+path)
}

func TestEnvWins(t *testing.T) {
	env := map[string]string{
		"PORT":            "7000",
		"KAFKA_BROKERS":   " a:1 , b:2 ,",
		"OUTBOX_INTERVAL": "250ms",
		"RATE_LIMIT":      "30",
	}
	cfg := Defaults()
	require.NoError(t, applyEnv(&cfg, func(k string) string { return env[k] }))
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.Interval)
	assert.Equal(t, 30, cfg.RateLimit)

	cfg = Defaults()
	err := applyEnv(&cfg, func(k string) string {
		if k == "OUTBOX_BATCH" {
			return "lots"
		}
		return ""
	})
	assert.ErrorContains(t, err, "OUTBOX_BATCH")
}

func TestLoadUsesConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`db_dsn: "x.db"`), 0o600))
	t.Setenv("COSMETICA_CONFIG", path)
	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.DBDSN)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://app:***@db:5432/shop", redact("postgres://app:s3cret@db:5432/shop"))
	assert.Equal(t, "cosmetica.db", redact("cosmetica.db"))
}
