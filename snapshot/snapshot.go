// Package snapshot exports a running site to static files. It waits for the
// server to answer, asks a Source for every route and asset, fetches each
// route over HTTP and stores the bodies under paths mirroring the URLs.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotReady is returned when the server did not answer within MaxAttempts
// readiness probes.
var ErrNotReady = errors.New("snapshot: server not ready")

// Route is a page to export and the status it must be served with.
type Route struct {
	Path   string
	Status int
}

// Source enumerates what a snapshot contains.
type Source interface {
	Routes(ctx context.Context) ([]Route, error)
	Assets(ctx context.Context) ([]Asset, error)
}

// State is a step of a snapshot run.
type State int

const (
	StateAwaitingReady State = iota
	StateEnumerating
	StateFetching
	StatePersisting
	StateAssetCopy
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingReady:
		return "awaiting-ready"
	case StateEnumerating:
		return "enumerating"
	case StateFetching:
		return "fetching"
	case StatePersisting:
		return "persisting"
	case StateAssetCopy:
		return "asset-copy"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config controls a snapshot run.
type Config struct {
	BaseURL       string        // server to crawl, e.g. http://127.0.0.1:3000
	OutDir        string        // export root when no writer is given
	ReadyInterval time.Duration // delay between readiness probes (default 10s)
	MaxAttempts   int           // readiness probes before giving up; 0 waits forever
	Concurrency   int           // parallel route fetches (default 1)
	Timeout       time.Duration // per-request timeout (default 30s)
	UserAgent     string
}

func (c *Config) setDefaults() {
	if c.ReadyInterval <= 0 {
		c.ReadyInterval = 10 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "duckblog-snapshot/1.0"
	}
}

// Result summarizes a finished run.
type Result struct {
	Pages    []string // output paths of fetched routes, sorted
	Assets   int      // files copied from assets
	Attempts int      // readiness probes issued
	Duration time.Duration
}

// Snapshotter runs static exports.
type Snapshotter struct {
	cfg       Config
	source    Source
	writer    ArtifactWriter
	transport http.RoundTripper
	logger    *zap.Logger
	fetch     *fetcher

	mu    sync.Mutex
	state State
}

// Option configures a Snapshotter.
type Option func(*Snapshotter)

// WithWriter replaces the disk writer rooted at Config.OutDir.
func WithWriter(w ArtifactWriter) Option {
	return func(s *Snapshotter) {
		s.writer = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Snapshotter) {
		s.logger = l
	}
}

// WithTransport sets the HTTP transport used for fetches.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Snapshotter) {
		s.transport = rt
	}
}

// New creates a Snapshotter reading routes from source.
func New(cfg Config, source Source, opts ...Option) *Snapshotter {
	cfg.setDefaults()
	s := &Snapshotter{
		cfg:    cfg,
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.writer == nil {
		s.writer = NewDiskWriter(cfg.OutDir)
	}
	s.fetch = newFetcher(cfg.BaseURL, cfg.UserAgent, cfg.Timeout, s.transport)
	return s
}

// State returns the step the run is in.
func (s *Snapshotter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Snapshotter) enter(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.logger.Debug("snapshot state", zap.Stringer("state", st))
}

// Run waits for the server, exports every route and copies assets. Any
// fetch or write failure aborts the run.
func (s *Snapshotter) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	s.enter(StateAwaitingReady)
	attempts, err := s.AwaitReady(ctx)
	res.Attempts = attempts
	if err != nil {
		return res, err
	}

	s.enter(StateEnumerating)
	routes, err := s.source.Routes(ctx)
	if err != nil {
		return res, fmt.Errorf("snapshot: enumerate routes: %w", err)
	}
	assets, err := s.source.Assets(ctx)
	if err != nil {
		return res, fmt.Errorf("snapshot: enumerate assets: %w", err)
	}
	s.logger.Info("exporting", zap.Int("routes", len(routes)), zap.Int("assets", len(assets)))

	s.enter(StateFetching)
	pages, err := s.fetchRoutes(ctx, routes)
	if err != nil {
		return res, err
	}

	s.enter(StatePersisting)
	for _, p := range pages {
		if err := s.writer.WriteFile(ctx, p.name, p.body); err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, p.name)
	}

	s.enter(StateAssetCopy)
	for _, a := range assets {
		n, err := copyAsset(ctx, s.writer, a)
		if err != nil {
			return res, err
		}
		res.Assets += n
	}

	s.enter(StateDone)
	res.Duration = time.Since(start)
	s.logger.Info("snapshot complete",
		zap.Int("pages", len(res.Pages)),
		zap.Int("assets", res.Assets),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// AwaitReady probes the root route until it answers with a 2xx status and
// returns the number of probes issued.
func (s *Snapshotter) AwaitReady(ctx context.Context) (int, error) {
	attempts := 0
	for {
		attempts++
		resp, err := s.fetch.get(ctx, "/")
		if err == nil && resp.status >= 200 && resp.status < 300 {
			return attempts, nil
		}
		if ctx.Err() != nil {
			return attempts, ctx.Err()
		}
		s.logger.Info("waiting for server",
			zap.String("url", s.cfg.BaseURL),
			zap.Int("attempt", attempts),
			zap.Int("status", resp.status),
			zap.Error(err),
		)
		if s.cfg.MaxAttempts > 0 && attempts >= s.cfg.MaxAttempts {
			return attempts, fmt.Errorf("%w after %d attempts", ErrNotReady, attempts)
		}

		timer := time.NewTimer(s.cfg.ReadyInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, ctx.Err()
		case <-timer.C:
		}
	}
}

type page struct {
	name string
	body []byte
}

// fetchRoutes fetches every route, Concurrency at a time, and returns the
// pages sorted by output name. The first failure cancels the rest.
func (s *Snapshotter) fetchRoutes(ctx context.Context, routes []Route) ([]page, error) {
	var (
		mu    sync.Mutex
		pages = make([]page, 0, len(routes))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, r := range routes {
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.fetchRoute(gctx, r)
			if err != nil {
				return err
			}
			mu.Lock()
			pages = append(pages, p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].name < pages[j].name })
	return pages, nil
}

func (s *Snapshotter) fetchRoute(ctx context.Context, r Route) (page, error) {
	want := r.Status
	if want == 0 {
		want = http.StatusOK
	}
	resp, err := s.fetch.get(ctx, r.Path)
	if err != nil {
		return page{}, &FetchError{Route: r.Path, Err: err}
	}
	if resp.status != want {
		return page{}, &FetchError{Route: r.Path, Status: resp.status, Want: want}
	}
	name := OutputPath(r.Path)
	s.logger.Debug("fetched", zap.String("route", r.Path), zap.String("file", name), zap.Int("bytes", len(resp.body)))
	return page{name: name, body: resp.body}, nil
}
