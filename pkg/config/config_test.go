package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	assert := require.New(t)
	cfg, err := Load("")
	assert.NoError(err)
	assert.Equal(2, cfg.Indexer.NGramSize)
	assert.False(cfg.Indexer.IncludeFinalWindow)
	assert.Equal("file", cfg.Storage.Backend)
	assert.Equal("corpus.ngc", cfg.Indexer.Artifact)
	assert.Equal(60*time.Second, cfg.Redis.CacheTTL)
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
indexer:
  ngramSize: 3
  includeFinalWindow: true
  source: json
  sourcePath: docs.json
storage:
  backend: bolt
  boltPath: /tmp/a.db
search:
  maxResults: 50
  defaultLimit: 10
`), 0644)
	assert.NoError(err)

	t.Setenv("NG_STORAGE_BACKEND", "redis")
	t.Setenv("NG_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal(3, cfg.Indexer.NGramSize)
	assert.True(cfg.Indexer.IncludeFinalWindow)
	assert.Equal("json", cfg.Indexer.Source)
	assert.Equal("redis", cfg.Storage.Backend)
	assert.Equal([]string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(50, cfg.Search.MaxResults)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	assert := require.New(t)

	cfg := defaultConfig()
	cfg.Indexer.NGramSize = 0
	assert.Error(cfg.Validate())

	cfg = defaultConfig()
	cfg.Storage.Backend = "ftp"
	assert.Error(cfg.Validate())

	cfg = defaultConfig()
	cfg.Storage.Backend = "s3"
	assert.Error(cfg.Validate())

	cfg = defaultConfig()
	cfg.Indexer.Source = "xml"
	assert.Error(cfg.Validate())

	cfg = defaultConfig()
	cfg.Search.DefaultLimit = cfg.Search.MaxResults + 1
	assert.Error(cfg.Validate())
}

func TestDevelopmentConfigLoads(t *testing.T) {
	cfg, err := Load("../../configs/development.yaml")
	require.NoError(t, err)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "file/sample_text.csv", cfg.Indexer.SourcePath)
}
