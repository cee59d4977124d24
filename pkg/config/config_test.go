package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 50, cfg.Limits.NodeSample)
	assert.Equal(t, 50, cfg.Limits.EdgeSample)
	assert.Equal(t, 200, cfg.Limits.GraphDataCap)
	assert.InDelta(t, 0.3, cfg.OpenAI.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("AGEGRAPH_ADDR", ":9999")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "secret")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt4o")
	t.Setenv("AGEGRAPH_LLM_TEMPERATURE", "0.1")
	t.Setenv("AGEGRAPH_GRAPH_DATA_CAP", "500")
	t.Setenv("AGEGRAPH_LOG_DEV", "true")

	cfg := LoadFromEnv()

	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "https://example.openai.azure.com", cfg.OpenAI.Endpoint)
	assert.Equal(t, "gpt4o", cfg.OpenAI.Deployment)
	assert.InDelta(t, 0.1, cfg.OpenAI.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.Limits.GraphDataCap)
	assert.True(t, cfg.Logging.Development)
	assert.True(t, cfg.TranslationEnabled())
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: postgres://file:file@db/filedb
server:
  addr: ":7070"
limits:
  node_sample: 25
`), 0o644))

	t.Setenv("AGEGRAPH_ADDR", ":6060")

	cfg, err := Load(path)
	require.NoError(t, err)

	// File overrides defaults; env overrides the file.
	assert.Equal(t, "postgres://file:file@db/filedb", cfg.Database.URL)
	assert.Equal(t, ":6060", cfg.Server.Addr)
	assert.Equal(t, 25, cfg.Limits.NodeSample)
	assert.Equal(t, 50, cfg.Limits.EdgeSample, "untouched values keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dsn", func(c *Config) { c.Database.URL = "" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero sample", func(c *Config) { c.Limits.NodeSample = 0 }},
		{"negative cap", func(c *Config) { c.Limits.GraphDataCap = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTranslationDisabledWithoutCredentials(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.TranslationEnabled())
}
