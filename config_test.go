package pubscrape

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if cfg.Addr != ":5001" {
		t.Errorf("Addr = %q, want :5001", cfg.Addr)
	}
	if cfg.PostsDir != "posts" {
		t.Errorf("PostsDir = %q, want posts", cfg.PostsDir)
	}
	if strings.Join(cfg.PostPatterns, ",") != "*.html" {
		t.Errorf("PostPatterns = %v, want [*.html]", cfg.PostPatterns)
	}
	if strings.Join(cfg.Categories, ",") != "snowboarding,cycling,photography,other" {
		t.Errorf("Categories = %v", cfg.Categories)
	}
	if cfg.DefaultCategory != "other" {
		t.Errorf("DefaultCategory = %q, want other", cfg.DefaultCategory)
	}
	if cfg.ImagesDir != "images" {
		t.Errorf("ImagesDir = %q, want images", cfg.ImagesDir)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %d, want 0 for library callers", cfg.RateLimit)
	}
}

func TestSetDefaultsTrimsImagesRoot(t *testing.T) {
	cfg := SiteConfig{StaticDir: "site", ImagesRoot: "/media/pics/"}
	cfg.setDefaults()
	if cfg.ImagesRoot != "media/pics" {
		t.Errorf("ImagesRoot = %q, want media/pics", cfg.ImagesRoot)
	}
	if cfg.ImagesDir != filepath.Join("site", "media", "pics") {
		t.Errorf("ImagesDir = %q", cfg.ImagesDir)
	}
}

func TestSetDefaultsClampsRateWindow(t *testing.T) {
	for _, w := range []time.Duration{0, -time.Second, -time.Hour} {
		cfg := SiteConfig{RateWindow: w}
		cfg.setDefaults()
		if cfg.RateWindow != time.Minute {
			t.Errorf("RateWindow(%v) = %v, want 1m", w, cfg.RateWindow)
		}
	}
}

func TestNewWithNegativeRateWindow(t *testing.T) {
	a := New(SiteConfig{
		PostsDir:   t.TempDir(),
		RateLimit:  5,
		RateWindow: -time.Minute,
	}, WithLogger(zerolog.Nop()))
	defer a.Close()

	if a.limiter == nil {
		t.Fatal("expected limiter to be configured")
	}
	if a.limiter.window != time.Minute {
		t.Errorf("limiter window = %v, want 1m", a.limiter.window)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr != ":5001" || cfg.PostsDir != "posts" || cfg.ImagesRoot != "images" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RateLimit != 120 || cfg.RateWindow != time.Minute {
		t.Errorf("rate limit = %d per %s, want 120 per 1m", cfg.RateLimit, cfg.RateWindow)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pubscrape.yml")
	yml := `
site:
  name: Trail Notes
server:
  addr: ":8080"
posts:
  dir: /srv/posts
  patterns: ["*.html", "*.md"]
  cache: true
categories:
  valid: [hiking, climbing]
  default: misc
`
	if err := os.WriteFile(file, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PUBSCRAPE_SERVER_ADDR", ":9090")
	t.Setenv("PUBSCRAPE_IMAGES_ROOT", "media")

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Trail Notes" {
		t.Errorf("Name = %q, want Trail Notes", cfg.Name)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want env override :9090", cfg.Addr)
	}
	if cfg.PostsDir != "/srv/posts" || !cfg.CacheEnabled {
		t.Errorf("posts config = %q cache=%v", cfg.PostsDir, cfg.CacheEnabled)
	}
	if strings.Join(cfg.PostPatterns, ",") != "*.html,*.md" {
		t.Errorf("PostPatterns = %v", cfg.PostPatterns)
	}
	if strings.Join(cfg.Categories, ",") != "hiking,climbing" || cfg.DefaultCategory != "misc" {
		t.Errorf("categories = %v default=%q", cfg.Categories, cfg.DefaultCategory)
	}
	if cfg.ImagesRoot != "media" {
		t.Errorf("ImagesRoot = %q, want media", cfg.ImagesRoot)
	}
}

func TestLoadConfigEnvList(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PUBSCRAPE_CATEGORIES_VALID", "surf, skate,")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if strings.Join(cfg.Categories, ",") != "surf,skate" {
		t.Errorf("Categories = %v, want [surf skate]", cfg.Categories)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
