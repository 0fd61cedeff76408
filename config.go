package pubscrape

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/eringen/pubscrape/scrape"
)

// DefaultCategories is the category list used when none is configured.
var DefaultCategories = []string{"snowboarding", "cycling", "photography", "other"}

// SiteConfig holds all configuration for a pubscrape site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:5001")
	Description string // Site description for RSS

	Addr      string // Listen address (default ":5001")
	StaticDir string // Root served for non-API paths (default ".")

	PostsDir        string   // Directory scanned for posts (default "posts")
	PostPatterns    []string // Filename globs of post files (default ["*.html"])
	Workers         int      // Files parsed concurrently per scan (default 8)
	CacheEnabled    bool     // Reuse parsed posts while the directory is unchanged
	SanitizeContent bool     // Strip unsafe markup from content fragments

	ImagesRoot string // Site path for relative thumbnails (default "images")
	ImagesDir  string // Filesystem dir behind ImagesRoot (default StaticDir/ImagesRoot)

	Categories      []string // Valid categories in match order
	DefaultCategory string   // Fallback category (default "other")

	RateLimit  int           // API requests per client per RateWindow; 0 disables
	RateWindow time.Duration // default 1m

	LogLevel  string // zerolog level (default "info")
	LogFormat string // "json" or "console" (default "json")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5001"
	}
	if c.Addr == "" {
		c.Addr = ":5001"
	}
	if c.StaticDir == "" {
		c.StaticDir = "."
	}
	if c.PostsDir == "" {
		c.PostsDir = "posts"
	}
	if len(c.PostPatterns) == 0 {
		c.PostPatterns = []string{"*.html"}
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.ImagesRoot == "" {
		c.ImagesRoot = "images"
	}
	c.ImagesRoot = strings.Trim(c.ImagesRoot, "/")
	if c.ImagesDir == "" {
		c.ImagesDir = filepath.Join(c.StaticDir, filepath.FromSlash(c.ImagesRoot))
	}
	if len(c.Categories) == 0 {
		c.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.DefaultCategory == "" {
		c.DefaultCategory = scrape.FallbackCategory
	}
	if c.RateWindow <= 0 {
		c.RateWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// LoadConfig reads configuration from an optional config file and
// PUBSCRAPE_* environment variables. An explicit file must exist; otherwise
// config.yml is looked up in the usual places and may be absent.
func LoadConfig(file string) (SiteConfig, error) {
	v := viper.New()

	v.SetDefault("site.name", "Blog")
	v.SetDefault("site.url", "http://localhost:5001")
	v.SetDefault("site.description", "")
	v.SetDefault("server.addr", ":5001")
	v.SetDefault("server.static_dir", ".")
	v.SetDefault("posts.dir", "posts")
	v.SetDefault("posts.patterns", []string{"*.html"})
	v.SetDefault("posts.workers", 8)
	v.SetDefault("posts.cache", false)
	v.SetDefault("posts.sanitize", false)
	v.SetDefault("images.root", "images")
	v.SetDefault("images.dir", "")
	v.SetDefault("categories.valid", DefaultCategories)
	v.SetDefault("categories.default", scrape.FallbackCategory)
	v.SetDefault("ratelimit.requests", 120)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/pubscrape/")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, err
		}
	}

	v.SetEnvPrefix("PUBSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := SiteConfig{
		Name:            v.GetString("site.name"),
		URL:             v.GetString("site.url"),
		Description:     v.GetString("site.description"),
		Addr:            v.GetString("server.addr"),
		StaticDir:       v.GetString("server.static_dir"),
		PostsDir:        v.GetString("posts.dir"),
		PostPatterns:    splitList(v.GetStringSlice("posts.patterns")),
		Workers:         v.GetInt("posts.workers"),
		CacheEnabled:    v.GetBool("posts.cache"),
		SanitizeContent: v.GetBool("posts.sanitize"),
		ImagesRoot:      v.GetString("images.root"),
		ImagesDir:       v.GetString("images.dir"),
		Categories:      splitList(v.GetStringSlice("categories.valid")),
		DefaultCategory: v.GetString("categories.default"),
		RateLimit:       v.GetInt("ratelimit.requests"),
		RateWindow:      v.GetDuration("ratelimit.window"),
		LogLevel:        v.GetString("log.level"),
		LogFormat:       v.GetString("log.format"),
	}
	cfg.setDefaults()
	return cfg, nil
}

// splitList accepts both real lists and comma separated env values.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		out = append(out, FilterEmpty(strings.Split(v, ","))...)
	}
	return out
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the logger built from the config.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}
