package pubcorpus

import (
	"io/fs"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/pubcorpus/logging"
)

// Config holds all configuration for a corpus service. Field tags match the
// keys read from pubcorpus.yaml and PUBCORPUS_* variables.
type Config struct {
	ContentDir   string `mapstructure:"contentDir"`   // Root holding the posts dir (default ".")
	PostsDir     string `mapstructure:"postsDir"`     // Posts dir below ContentDir (default "posts")
	DatabasePath string `mapstructure:"databasePath"` // SQLite index path (default "data/corpus.db")

	Addr    string `mapstructure:"addr"`    // Listen address (default ":3000")
	BaseURL string `mapstructure:"baseURL"` // Public URL used in API links (default "http://localhost:3000")

	SiteURL  string `mapstructure:"siteURL"`  // Public site the posts are rendered on (default BaseURL)
	SiteName string `mapstructure:"siteName"` // Feed title (default "Blog")

	Strict      bool `mapstructure:"strict"`      // Reject reloads that report problems
	Watch       bool `mapstructure:"watch"`       // Reload on file changes
	Concurrency int  `mapstructure:"concurrency"` // Folder parse limit, 0 = auto

	CacheTTL     time.Duration `mapstructure:"cacheTTL"`     // Index cache TTL (default 5m)
	ReloadLimit  int           `mapstructure:"reloadLimit"`  // Reloads per window per IP (default 5)
	ReloadWindow time.Duration `mapstructure:"reloadWindow"` // Reload limiter window (default 1m)

	Log logging.Config `mapstructure:"log"`
}

// DefaultConfig returns the configuration used when nothing is set.
// SiteURL stays empty so New resolves it from the final BaseURL.
func DefaultConfig() Config {
	c := Config{Strict: true}
	c.setDefaults()
	c.SiteURL = ""
	return c
}

func (c *Config) setDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = "."
	}
	if c.PostsDir == "" {
		c.PostsDir = "posts"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/corpus.db"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3000"
	}
	if c.SiteURL == "" {
		c.SiteURL = c.BaseURL
	}
	if c.SiteName == "" {
		c.SiteName = "Blog"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.ReloadLimit <= 0 {
		c.ReloadLimit = 5
	}
	if c.ReloadWindow <= 0 {
		c.ReloadWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithFS reads content from fsys instead of os.DirFS(ContentDir).
func WithFS(fsys fs.FS) Option {
	return func(a *App) {
		a.fsys = fsys
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		if reg != nil {
			a.registry = reg
		}
	}
}

// WithClock overrides time.Now, used for index timestamps and rate limiting.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}
