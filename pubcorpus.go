// Package pubcorpus loads a folder-per-post blog corpus, keeps a SQLite index
// of it, and serves it read-only over a JSON API for the site generator that
// renders it.
//
// The post model and validation live in package post; this package adds the
// long-running pieces: the index store, snapshot reloads, the file watcher,
// and the Echo server.
package pubcorpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/pubcorpus/post"
)

// App is the central corpus service. It wires together the loader, store,
// cache, handlers, and middleware.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Logger *zap.Logger

	fsys     fs.FS
	registry *prometheus.Registry
	metrics  *metrics
	now      func() time.Time

	snapshot atomic.Pointer[Snapshot]
	rejected atomic.Pointer[[]string]
	reloadMu sync.Mutex

	reloadLimiter *RequestLimiter
	routesOnce    sync.Once
}

// Snapshot is one accepted load of the corpus.
type Snapshot struct {
	Corpus   *post.Corpus
	LoadedAt time.Time
	Sync     SyncResult
}

// New creates an App with the given configuration. Call Open before serving.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.fsys == nil {
		a.fsys = os.DirFS(cfg.ContentDir)
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	a.metrics = newMetrics(a.registry)
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	return a
}

// Open initializes the index store, the cache, and the rate limiter, then
// performs the first load.
func (a *App) Open(ctx context.Context) error {
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pubcorpus: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewPostCache(a.Store, a.Config.CacheTTL)
	a.Cache.now = a.now

	a.reloadLimiter = newRequestLimiter(a.Config.ReloadLimit, a.Config.ReloadWindow, a.now)

	if _, err := a.Reload(ctx); err != nil {
		return fmt.Errorf("pubcorpus: initial load: %w", err)
	}
	return nil
}

// Loader returns a post loader configured from the App settings.
func (a *App) Loader() *post.Loader {
	return post.NewLoader(a.fsys,
		post.WithPostsDir(a.Config.PostsDir),
		post.WithConcurrency(a.Config.Concurrency),
		post.WithLogger(a.Logger.Named("loader")),
	)
}

// Snapshot returns the current corpus snapshot, or nil before Open.
func (a *App) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

// Corpus returns the corpus currently served.
func (a *App) Corpus() *post.Corpus {
	if s := a.Snapshot(); s != nil {
		return s.Corpus
	}
	return nil
}

// Handler sets up middleware and routes once and returns the Echo instance.
func (a *App) Handler() http.Handler {
	a.routesOnce.Do(func() {
		a.setupMiddleware()
		a.setupRoutes()
	})
	return a.Echo
}

// Start serves the API until ctx is done, then shuts the server down.
// When Config.Watch is set the posts directory is watched for changes.
func (a *App) Start(ctx context.Context) error {
	if a.Snapshot() == nil {
		if err := a.Open(ctx); err != nil {
			return err
		}
	}
	a.Handler()

	if a.Config.Watch {
		root := filepath.Join(a.Config.ContentDir, filepath.FromSlash(a.Config.PostsDir))
		stop, err := a.Watch(ctx, root)
		if err != nil {
			return fmt.Errorf("pubcorpus: watch: %w", err)
		}
		defer stop()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("serving corpus", zap.String("addr", a.Config.Addr), zap.Int("posts", a.Corpus().Len()))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("pubcorpus: shutdown: %w", err)
	}
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.reloadLimiter != nil {
		a.reloadLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
