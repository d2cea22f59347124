// Package cli implements the boxlayout command-line interface.
//
// # Commands
//
//   - layout: lay out a graph file and write the layout record
//   - render: draw a graph or layout file as SVG, PNG, JPG or DOT
//   - serve: run the HTTP API
//   - cache: clear or locate the layout cache
//   - algorithms: list registered layout algorithms
//   - config: print the effective configuration or its path
//
// Settings come from boxlayout.toml (see pkg/config); flags override them.
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/config"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "boxlayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Boxlayout lays out graphs whose nodes are grouped into nested boxes",
		Long: `Boxlayout lays out compound graphs. Each box (app, namespace, cluster) is
laid out internally with its own algorithm, then placed as a single node by
the outer layout, and its contents follow it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/boxlayout/boxlayout.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.algorithmsCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the file named by --config, or the default file when
// present.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	for _, key := range cfg.Unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	if cfg.Cache.TTL > 0 {
		r.TTL = cfg.Cache.TTL
	}
	return r, nil
}

// newCache opens the configured cache backend. An unreachable Redis is
// logged and replaced by a NullCache.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.Prefix,
		})
		if stderrors.Is(err, cache.ErrUnavailable) {
			c.Logger.Warn("continuing without cache", "err", err)
			return cache.NewNullCache(), nil
		}
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc, config.BackendRedis), nil
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			c.Logger.Warn("continuing without cache", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc, config.BackendFile), nil
	}
}

// newStore opens the configured layout record store.
func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		dir, err := cfg.StoreDir()
		if err != nil {
			return nil, err
		}
		return store.NewFileStore(dir)
	case config.BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}
