package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.InDelta(t, 0.7, cfg.QA.SimilarityThreshold, 1e-9)
	require.Equal(t, 5, cfg.QA.MaxSources)
	require.Equal(t, "IT", cfg.Routing.DefaultDepartment)
	require.Equal(t, 1536, cfg.Knowledge.VectorDim)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.HTTP.Address = "" }},
		{"empty embedding model", func(c *Config) { c.LLM.EmbeddingModel = "  " }},
		{"threshold above one", func(c *Config) { c.QA.SimilarityThreshold = 1.2 }},
		{"negative threshold", func(c *Config) { c.QA.SimilarityThreshold = -0.1 }},
		{"zero max sources", func(c *Config) { c.QA.MaxSources = 0 }},
		{"keyword floor out of range", func(c *Config) { c.QA.KeywordFloor = 2 }},
		{"empty default department", func(c *Config) { c.Routing.DefaultDepartment = "" }},
		{"zero chunk chars", func(c *Config) { c.Knowledge.MaxChunkChars = 0 }},
		{"negative overlap", func(c *Config) { c.Knowledge.OverlapSentences = -1 }},
		{"valkey enabled without addr", func(c *Config) { c.Valkey.Enabled = true; c.Valkey.Addr = " " }},
		{"rate limit without rpm", func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }},
		{"rate limit without burst", func(c *Config) { c.HTTP.RateLimit.Burst = 0 }},
		{"retry without attempts", func(c *Config) { c.HTTP.Retry.MaxAttempts = 0 }},
		{"retry without backoff", func(c *Config) { c.HTTP.Retry.BaseBackoff = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSkipsDisabledSections(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.RateLimit.Enabled = false
	cfg.HTTP.RateLimit.RequestsPerMinute = 0
	cfg.HTTP.Retry.Enabled = false
	cfg.HTTP.Retry.MaxAttempts = 0
	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9191")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("QA_SIMILARITY_THRESHOLD", "0.82")
	t.Setenv("ROUTING_DEFAULT_DEPARTMENT", "General")
	t.Setenv("LLM_REQUEST_TIMEOUT", "45s")
	t.Setenv("HTTP_RETRY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9191", cfg.HTTP.Address)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.InDelta(t, 0.82, cfg.QA.SimilarityThreshold, 1e-9)
	require.Equal(t, "General", cfg.Routing.DefaultDepartment)
	require.Equal(t, 45*time.Second, cfg.LLM.RequestTimeout)
	require.False(t, cfg.HTTP.Retry.Enabled)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  address: ":7070"
qa:
  maxSources: 3
valkey:
  enabled: true
  addr: "localhost:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Address)
	require.Equal(t, 3, cfg.QA.MaxSources)
	require.True(t, cfg.Valkey.Enabled)
	require.Equal(t, "localhost:6379", cfg.Valkey.Addr)
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qa:\n  maxSources: -2\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
}
