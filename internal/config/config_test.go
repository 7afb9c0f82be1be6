package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.exa.ai", cfg.Exa.BaseURL)
	assert.Zero(t, cfg.Exa.Timeout)
	assert.Equal(t, "default", cfg.Run.StoreID)
	assert.Empty(t, cfg.Run.InputPath)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "storage", cfg.Dataset.Driver)
	assert.Equal(t, "storage", cfg.KeyValue.Driver)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, "people-search:runs", cfg.Events.Channel)
	assert.Equal(t, 8095, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("EXA_API_KEY", "exa-key")
	t.Setenv("EXA_TIMEOUT", "5s")
	t.Setenv("STORE_ID", "run-42")
	t.Setenv("KEY_VALUE_DRIVER", "redis")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("ES_ADDRESSES", "http://es1:9200,http://es2:9200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "exa-key", cfg.Exa.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Exa.Timeout)
	assert.Equal(t, "run-42", cfg.Run.StoreID)
	assert.Equal(t, "redis", cfg.KeyValue.Driver)
	assert.Equal(t, "redis:6379", cfg.KeyValue.Redis.Address)
	assert.Equal(t, "redis:6379", cfg.Events.Redis.Address)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Dataset.Elasticsearch.Addresses)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("APP_ENV", "production")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0755))
	yaml := []byte("run:\n  input_path: ./input.json\nevents:\n  driver: kafka\n  kafka:\n    brokers: kafka:9092\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), yaml, 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./input.json", cfg.Run.InputPath)
	assert.Equal(t, "kafka", cfg.Events.Driver)
	assert.Equal(t, "kafka:9092", cfg.Events.Kafka.Brokers)

	sinks := cfg.Sinks()
	assert.Equal(t, cfg.Storage, sinks.Storage)
	assert.Equal(t, cfg.KeyValue, sinks.KeyValue)
}
