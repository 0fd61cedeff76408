// Package pubscrape serves a blog's posts as JSON from a directory of static
// HTML files. Title, date, categories and thumbnail are scraped from each
// file's markup on every request; there is no database and no write path.
package pubscrape

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App is the central pubscrape application. It wires together the store,
// optional cache, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Posts  Repository
	Log    zerolog.Logger

	limiter      *RequestLimiter
	httpMetrics  *prometheus.Registry
	customRoutes []func(*App)
}

// New creates a pubscrape App with middleware and routes registered.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:      cfg,
		Echo:        echo.New(),
		Log:         NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr),
		httpMetrics: prometheus.NewRegistry(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	a.Store = NewStore(a.Config, a.Log)
	a.Posts = a.Store
	if a.Config.CacheEnabled {
		a.Posts = NewPostCache(a.Store)
	}
	if a.Config.RateLimit > 0 {
		a.limiter = NewRequestLimiter(a.Config.RateLimit, a.Config.RateWindow)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/api/posts", a.handleListPosts)
	e.GET("/api/posts/:slug", a.handleGetPost)
	e.GET("/api/posts/:slug/thumbnail", a.handleThumbnail)
	e.GET("/api/categories", a.handleCategories)

	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)
	// Request metrics live in the app's own registry; scan and cache
	// counters are on the default one.
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{a.httpMetrics, prometheus.DefaultGatherer},
	}))

	// Everything else is a plain file under the static root; "/" serves
	// index.html.
	e.Static("/", a.Config.StaticDir)
}

// Start logs the startup banner and serves until the server is shut down.
func (a *App) Start() error {
	a.Log.Info().
		Str("posts_dir", a.Config.PostsDir).
		Strs("categories", a.Config.Categories).
		Str("addr", a.Config.Addr).
		Bool("cache", a.Config.CacheEnabled).
		Msg("starting pubscrape")

	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases background resources.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.Close()
	return a.Echo.Shutdown(ctx)
}

// Close releases background resources without touching the listener.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	return nil
}
