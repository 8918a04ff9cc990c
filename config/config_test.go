package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpus/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "./index", cfg.IndexDir)
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
	assert.Equal(t, 700, cfg.Chunking.Size)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /srv/corpus/data
embedding:
  model: text-embedding-3-small
chunking:
  size: 1000
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/corpus/data", cfg.DataDir)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Unset fields fall back to defaults.
	assert.Equal(t, "./index", cfg.IndexDir)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.Host)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, 3, cfg.Index.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestAPITokenFromEnvironment(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.APITokenEnv = "CORPUS_TEST_TOKEN"
	t.Setenv("CORPUS_TEST_TOKEN", "sk-test")

	assert.Equal(t, "sk-test", cfg.APIToken())

	cfg.Embedding.APITokenEnv = ""
	assert.Empty(t, cfg.APIToken())
}
