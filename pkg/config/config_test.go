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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesMediaDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
minio:
  endpoint: localhost:9000
  access_key: ak
  secret_key: sk
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "ak", cfg.Minio.AccessKeyID)
	assert.Equal(t, "sk", cfg.Minio.SecretAccessKey)

	m := cfg.Media
	assert.EqualValues(t, 10, m.MaxSizeMB)
	assert.EqualValues(t, 50, m.StoreMaxSizeMB)
	assert.Equal(t, 1200, m.MaxWidth)
	assert.Equal(t, 1200, m.MaxHeight)
	assert.InDelta(t, 0.9, m.Quality, 1e-9)
	assert.Equal(t, 3, m.MaxRetries)
	assert.Equal(t, 3, m.ConcurrencyLimit)
	assert.Equal(t, time.Second, m.BackoffBase)
	assert.Equal(t, "passthrough", m.OnTranscodeError)
	assert.Equal(t, "skip", m.OnFileError)
	assert.EqualValues(t, 10*1024*1024, m.MaxSizeBytes())
	assert.EqualValues(t, 50*1024*1024, m.StoreMaxSizeBytes())
	assert.ElementsMatch(t, []string{"product-images", "category-images"}, cfg.Minio.Buckets)
	assert.Equal(t, "media.assets.cleanup", cfg.Kafka.Topics.AssetCleanup)
}

func TestLoadKeepsExplicitMediaValues(t *testing.T) {
	path := writeConfig(t, `
media:
  max_size_mb: 2
  quality: 0.8
  format: WEBP
  on_transcode_error: fail
  on_file_error: abortBatch
  concurrency_limit: 5
cleanup:
  mode: kafka
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.EqualValues(t, 2, cfg.Media.MaxSizeMB)
	assert.InDelta(t, 0.8, cfg.Media.Quality, 1e-9)
	assert.Equal(t, "webp", cfg.Media.Format)
	assert.Equal(t, "fail", cfg.Media.OnTranscodeError)
	assert.Equal(t, "abortBatch", cfg.Media.OnFileError)
	assert.Equal(t, 5, cfg.Media.ConcurrencyLimit)
	assert.Equal(t, "kafka", cfg.Cleanup.Mode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestGlobalConfig(t *testing.T) {
	cfg := Default()
	SetGlobalConfig(cfg)
	t.Cleanup(func() { SetGlobalConfig(nil) })
	assert.Same(t, cfg, GetGlobalConfig())
}
