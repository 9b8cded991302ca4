package duckblog

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a duckblog site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`      // Author name for JSON-LD
	Language    string `mapstructure:"language"`    // RSS channel language (default "en-US")

	Addr       string `mapstructure:"addr"`        // Listen address (default ":3000")
	ContentDir string `mapstructure:"content_dir"` // Content root (default "content")
	StaticDir  string `mapstructure:"static_dir"`  // Static assets served under /static (default "static")

	// Development keeps drafts visible and switches logging to the console encoder.
	Development bool `mapstructure:"development"`

	PostCacheTTL  time.Duration `mapstructure:"post_cache_ttl"`  // Absolute entry age (default 5min)
	PostCacheIdle time.Duration `mapstructure:"post_cache_idle"` // Time since last read (default 1min)
	SweepInterval time.Duration `mapstructure:"sweep_interval"`  // Background eviction period (default 1min)
	WatchContent  bool          `mapstructure:"watch_content"`   // Invalidate cache entries on file changes

	CoverRateLimit int `mapstructure:"cover_rate_limit"` // Cover renders per IP per minute (default 30)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.PostCacheIdle == 0 {
		c.PostCacheIdle = time.Minute
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = time.Minute
	}
	if c.CoverRateLimit == 0 {
		c.CoverRateLimit = 30
	}
}

// Validate rejects configurations the App cannot start with.
func (c SiteConfig) Validate() error {
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("duckblog: url must be absolute, got %q", c.URL)
	}
	if c.PostCacheTTL < 0 || c.PostCacheIdle < 0 {
		return fmt.Errorf("duckblog: cache durations must not be negative")
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("duckblog: sweep_interval must not be negative")
	}
	if c.CoverRateLimit < 0 {
		return fmt.Errorf("duckblog: cover_rate_limit must not be negative")
	}
	return nil
}

// LoadConfig builds a SiteConfig from an optional file and DUCKBLOG_*
// environment variables. An empty path reads the environment only.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("DUCKBLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setConfigDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("language", "en-US")
	v.SetDefault("addr", ":3000")
	v.SetDefault("content_dir", "content")
	v.SetDefault("static_dir", "static")
	v.SetDefault("development", false)
	v.SetDefault("post_cache_ttl", "5m")
	v.SetDefault("post_cache_idle", "1m")
	v.SetDefault("sweep_interval", "1m")
	v.SetDefault("watch_content", false)
	v.SetDefault("cover_rate_limit", 30)
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the application logger (default no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRegistry sets the Prometheus registry behind /metrics. Each App gets a
// fresh registry by default.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}
