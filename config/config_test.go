package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		path := writeConfig(t, `
backend:
  base_url: http://localhost:5000
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, "0.15", cfg.TaxRate)
		assert.Equal(t, StorageMemory, cfg.Storage.Driver)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "purchases", cfg.Broker.Topics.Purchases)
		assert.False(t, cfg.Broker.Enabled)
	})

	t.Run("Full", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
http_server_addr: ":9090"
tax_rate: "0.12"
backend:
  base_url: http://backend:5000
  timeout: 3s
  paths:
    products: /api/v2/Producto
storage:
  driver: redis
  redis_url: redis://localhost:6379/0
broker:
  enabled: true
  seed_brokers: [kafka-1:9092, kafka-2:9092]
  schema_registry_urls: [http://sr:8081]
  sasl:
    user: storefront
    password: secret
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "/api/v2/Producto", cfg.Backend.Paths.Products)
		assert.Equal(t, StorageRedis, cfg.Storage.Driver)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.SeedBrokers)
		assert.False(t, cfg.TLSEnabled())
	})

	t.Run("UnknownKey", func(t *testing.T) {
		path := writeConfig(t, `
backend:
  base_url: http://localhost:5000
unknown_key: 1
`)
		_, err := LoadFile(path)
		require.Error(t, err)
	})

	t.Run("MissingBaseURL", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "log_level: info\n"))
		require.Error(t, err)
	})

	t.Run("SQLWithoutDSN", func(t *testing.T) {
		path := writeConfig(t, `
backend:
  base_url: http://localhost:5000
storage:
  driver: sql
`)
		_, err := LoadFile(path)
		require.Error(t, err)
	})
}
