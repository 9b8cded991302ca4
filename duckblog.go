// Package duckblog is a markdown blog engine built with Go, Echo, and templ.
// It reads posts from a content directory, serves them with an in-memory
// cache, and can export the rendered site as static files.
//
// Sites provide templ templates via the ViewFuncs struct (the views package
// has defaults), and duckblog handles content loading, routing, middleware,
// feeds and the sitemap.
package duckblog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/duckblog/internal/logging"
	"github.com/eringen/duckblog/snapshot"
)

// App is the central duckblog application. It wires together the store,
// cache, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ContentCache
	Views  ViewFuncs
	Logger *zap.Logger

	registry     *prometheus.Registry
	watcher      *ContentWatcher
	coverLimiter *IPLimiter
	customRoutes []func(*App)

	initOnce sync.Once
	initErr  error
	stops    []func()
}

// New creates an App with the given configuration and views. Nothing touches
// the filesystem until Init.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Logger: zap.NewNop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	return a
}

// Init opens the content directory and builds the cache, middleware and
// routes. It runs once; later calls return the first result. A missing
// content directory is fatal.
func (a *App) Init() error {
	a.initOnce.Do(func() {
		a.initErr = a.init()
	})
	return a.initErr
}

func (a *App) init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.ContentDir,
		WithDevelopment(a.Config.Development),
		WithStoreLogger(logging.Named(a.Logger, "store")),
	)
	if err != nil {
		return fmt.Errorf("duckblog: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewContentCache(a.Store, a.Config.PostCacheTTL, a.Config.PostCacheIdle,
		WithCacheMetrics(a.registry),
		WithCacheLogger(logging.Named(a.Logger, "cache")),
	)
	if a.Config.SweepInterval > 0 {
		a.stops = append(a.stops, a.Cache.StartSweeper(a.Config.SweepInterval))
	}

	a.coverLimiter = NewIPLimiter(a.Config.CoverRateLimit, time.Minute)
	a.stops = append(a.stops, a.coverLimiter.StartCleanup())

	if a.Config.WatchContent {
		w, err := NewContentWatcher(a.Config.ContentDir, a.Cache, logging.Named(a.Logger, "watch"))
		if err != nil {
			return err
		}
		a.watcher = w
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		a.stops = append(a.stops, cancel)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the App and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("content", a.Config.ContentDir))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.StaticFS("/assets", assets)
	e.Static("/static", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", a.metricsHandler())

	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handleHome)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/about/", a.handleAbout)
	e.GET("/404", a.handleNotFound)
	e.GET("/*", a.handleContent)
}

// Close stops background work. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.watcher != nil {
		return a.watcher.Close()
	}
	return nil
}

// Registry returns the Prometheus registry behind /metrics.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Routes lists every page of the site for a static export, each with the
// status it must be served with.
func (a *App) Routes(ctx context.Context) ([]snapshot.Route, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	corpus, err := a.corpus(ctx)
	if err != nil {
		return nil, err
	}

	routes := []snapshot.Route{
		{Path: "/", Status: http.StatusOK},
		{Path: "/posts/", Status: http.StatusOK},
	}
	for _, p := range corpus {
		routes = append(routes, snapshot.Route{Path: p.Path + "/", Status: http.StatusOK})
		if _, ok := a.heroFile(p); ok {
			routes = append(routes, snapshot.Route{Path: p.Path + "/" + coverName, Status: http.StatusOK})
		}
	}
	for _, t := range NewTagIndex(corpus).Tags() {
		routes = append(routes, snapshot.Route{Path: t.URL(), Status: http.StatusOK})
	}
	if a.Store.Exists(aboutKey) {
		routes = append(routes, snapshot.Route{Path: "/about/", Status: http.StatusOK})
	}
	routes = append(routes,
		snapshot.Route{Path: "/feed.xml", Status: http.StatusOK},
		snapshot.Route{Path: "/sitemap.xml", Status: http.StatusOK},
		snapshot.Route{Path: "/robots.txt", Status: http.StatusOK},
		snapshot.Route{Path: "/404", Status: http.StatusNotFound},
	)
	return routes, nil
}

// Assets lists the directories a static export copies next to the pages:
// the embedded assets, the static directory and each post's images.
func (a *App) Assets(ctx context.Context) ([]snapshot.Asset, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	corpus, err := a.corpus(ctx)
	if err != nil {
		return nil, err
	}

	embedded, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return nil, err
	}
	assets := []snapshot.Asset{
		{Name: "embedded", FS: embedded, Dst: "assets"},
		{Name: a.Config.StaticDir, FS: os.DirFS(a.Config.StaticDir), Dst: "static"},
	}
	for _, p := range corpus {
		if p.ImageDir == "" {
			continue
		}
		assets = append(assets, snapshot.Asset{
			Name:     p.ImageDir,
			FS:       os.DirFS(p.ImageDir),
			Dst:      contentKey(p.Path) + "/" + imagesDir,
			Optional: true,
		})
	}
	return assets, nil
}
