package duckblog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "en-US", cfg.Language)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, 5*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, time.Minute, cfg.PostCacheIdle)
	assert.Equal(t, 30, cfg.CoverRateLimit)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Duck Pond
url: https://ducks.example
content_dir: site/content
post_cache_ttl: 10m
post_cache_idle: 30s
watch_content: true
`), 0o644))
	t.Setenv("DUCKBLOG_NAME", "From Env")
	t.Setenv("DUCKBLOG_DEVELOPMENT", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, "https://ducks.example", cfg.URL)
	assert.Equal(t, "site/content", cfg.ContentDir)
	assert.Equal(t, 10*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.PostCacheIdle)
	assert.True(t, cfg.WatchContent)
	assert.True(t, cfg.Development)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSiteConfigValidate(t *testing.T) {
	valid := SiteConfig{}
	valid.setDefaults()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SiteConfig)
	}{
		{"relative url", func(c *SiteConfig) { c.URL = "ducks.example" }},
		{"negative ttl", func(c *SiteConfig) { c.PostCacheTTL = -time.Second }},
		{"negative idle", func(c *SiteConfig) { c.PostCacheIdle = -time.Second }},
		{"negative sweep", func(c *SiteConfig) { c.SweepInterval = -time.Second }},
		{"negative rate limit", func(c *SiteConfig) { c.CoverRateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
