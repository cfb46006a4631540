package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/pubcorpus"
	"github.com/eringen/pubcorpus/logging"
)

// cli holds the state shared by every subcommand once flags are parsed.
type cli struct {
	cfgFile string
	noColor bool
	verbose bool

	cfg    pubcorpus.Config
	logger *zap.Logger
	out    *printer
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"content-dir": "contentDir",
	"posts-dir":   "postsDir",
	"db":          "databasePath",
	"strict":      "strict",
	"concurrency": "concurrency",
	"log-level":   "log.level",
	"log-file":    "log.file",
	"addr":        "addr",
	"base-url":    "baseURL",
	"site-url":    "siteURL",
	"watch":       "watch",
}

func execute(args []string) error {
	root, c := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		p := c.out
		if p == nil {
			p = newPrinter(root.OutOrStdout(), root.ErrOrStderr(), c.noColor)
		}
		p.Error("%v", err)
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:   "pubcorpus",
		Short: "Validate, index, and serve a folder-per-post blog corpus",
		Long: `pubcorpus reads posts/<slug>/metaData.json and posts/<slug>/content.md,
checks every post, keeps a SQLite index of the corpus, and serves it read-only
over a JSON API for the site generator that renders it.

Example usage:
  pubcorpus check                   # validate every post folder
  pubcorpus index                   # sync the SQLite index
  pubcorpus export -o manifest.json # write the renderer manifest
  pubcorpus serve --watch           # serve the API, reloading on change
  pubcorpus new "My Next Post"      # scaffold a new post folder`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is ./pubcorpus.yaml)")
	pf.String("content-dir", "", "directory holding the posts directory")
	pf.String("posts-dir", "", "posts directory below the content dir")
	pf.String("db", "", "SQLite index path")
	pf.Bool("strict", true, "treat any problem as fatal")
	pf.Int("concurrency", 0, "post folders parsed at once (0 = auto)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "also write JSON logs to this rotating file")
	pf.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newCheckCmd(c),
		newIndexCmd(c),
		newExportCmd(c),
		newServeCmd(c),
		newNewCmd(c),
		newVersionCmd(),
	)
	return root, c
}

func (c *cli) init(cmd *cobra.Command) error {
	c.out = newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.noColor)

	cfg, err := loadConfig(c.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// loadConfig merges defaults, pubcorpus.yaml, .env, PUBCORPUS_* variables and
// explicitly set flags, in increasing precedence.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (pubcorpus.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pubcorpus.Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	def := pubcorpus.DefaultConfig()
	v.SetDefault("contentDir", def.ContentDir)
	v.SetDefault("postsDir", def.PostsDir)
	v.SetDefault("databasePath", def.DatabasePath)
	v.SetDefault("addr", def.Addr)
	v.SetDefault("baseURL", def.BaseURL)
	v.SetDefault("siteURL", "")
	v.SetDefault("siteName", def.SiteName)
	v.SetDefault("strict", def.Strict)
	v.SetDefault("watch", false)
	v.SetDefault("concurrency", 0)
	v.SetDefault("cacheTTL", def.CacheTTL)
	v.SetDefault("reloadLimit", def.ReloadLimit)
	v.SetDefault("reloadWindow", def.ReloadWindow)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSizeMB", 10)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAgeDays", 28)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pubcorpus")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PUBCORPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return pubcorpus.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return pubcorpus.Config{}, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	var cfg pubcorpus.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return pubcorpus.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newApp builds an App from the loaded configuration.
func (c *cli) newApp(opts ...pubcorpus.Option) *pubcorpus.App {
	opts = append([]pubcorpus.Option{pubcorpus.WithLogger(c.logger)}, opts...)
	return pubcorpus.New(c.cfg, opts...)
}
