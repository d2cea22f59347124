// Package config loads the boxlayout.toml configuration file.
//
// A file sets the layout per box type, the cache and store backends and the
// HTTP server. Every key is optional; missing keys keep the values from
// [Default].
//
//	[layout]
//	order = ["app", "namespace", "cluster"]
//
//	[layout.default]
//	name = "layered"
//	params = { rank_dir = "LR" }
//
//	[layout.namespace]
//	name = "grid"
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// Every table under [layout] other than "default" configures the box type
// of the same name.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// FileName is the configuration file's base name.
const FileName = "boxlayout.toml"

const appName = "boxlayout"

// Config is the full configuration.
type Config struct {
	Layout Layout `toml:"-"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`

	// Unknown lists keys present in the file that no setting reads.
	Unknown []string `toml:"-"`
}

// Layout selects algorithms.
type Layout struct {
	Order   []string
	Default layout.Config
	Boxes   map[string]layout.Config
}

// Cache configures the layout cache.
type Cache struct {
	Backend       string        `toml:"backend"` // file | redis | none
	TTL           time.Duration `toml:"ttl"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"`
}

// Store configures where the API keeps layout records.
type Store struct {
	Backend       string `toml:"backend"` // memory | file | mongo
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr          string        `toml:"addr"`
	ReadTimeout   time.Duration `toml:"read_timeout"`
	WriteTimeout  time.Duration `toml:"write_timeout"`
	LayoutTimeout time.Duration `toml:"layout_timeout"`
	MaxBodyBytes  int64         `toml:"max_body_bytes"`
}

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: Layout{Default: layout.Config{Name: pipeline.DefaultAlgorithm}},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     pipeline.DefaultCacheTTL,
		},
		Store: Store{
			Backend:       BackendMemory,
			MongoDatabase: appName,
		},
		Server: Server{
			Addr:          ":8080",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  60 * time.Second,
			LayoutTimeout: 30 * time.Second,
			MaxBodyBytes:  10 << 20,
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the configuration. An explicit path must exist. With an empty
// path the file at [DefaultPath] is used when present, otherwise the
// defaults are returned.
func Load(path string) (Config, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		if _, err := os.Stat(def); err != nil {
			return Default(), nil
		}
		path = def
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// file mirrors Config for decoding; [layout] mixes the order list with
// per-box tables and is decoded key by key.
type file struct {
	Layout map[string]toml.Primitive `toml:"layout"`
	Cache  *Cache                    `toml:"cache"`
	Store  *Store                    `toml:"store"`
	Server *Server                   `toml:"server"`
}

// Parse decodes TOML on top of [Default] and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	f := file{Cache: &cfg.Cache, Store: &cfg.Store, Server: &cfg.Server}

	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}

	for key, prim := range f.Layout {
		switch key {
		case "order":
			err = md.PrimitiveDecode(prim, &cfg.Layout.Order)
		case "default":
			err = md.PrimitiveDecode(prim, &cfg.Layout.Default)
		default:
			var lc layout.Config
			if err = md.PrimitiveDecode(prim, &lc); err == nil {
				if cfg.Layout.Boxes == nil {
					cfg.Layout.Boxes = make(map[string]layout.Config)
				}
				cfg.Layout.Boxes[key] = lc
			}
		}
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.%s", key)
		}
	}

	for _, k := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, k.String())
	}
	slices.Sort(cfg.Unknown)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and the settings each backend needs.
func (c Config) Validate() error {
	if c.Layout.Default.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.default has no name")
	}
	for t, lc := range c.Layout.Boxes {
		if lc.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "layout.%s has no name", t)
		}
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// PipelineOptions returns the layout settings as pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Default: c.Layout.Default,
		Boxes:   c.Layout.Boxes,
		Order:   c.Layout.Order,
	}
}

// =============================================================================
// Encoding
// =============================================================================

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	lay := map[string]any{"default": c.Layout.Default}
	if len(c.Layout.Order) > 0 {
		lay["order"] = c.Layout.Order
	}
	for t, lc := range c.Layout.Boxes {
		lay[t] = lc
	}
	out := struct {
		Layout map[string]any `toml:"layout"`
		Cache  Cache          `toml:"cache"`
		Store  Store          `toml:"store"`
		Server Server         `toml:"server"`
	}{lay, c.Cache, c.Store, c.Server}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/boxlayout/boxlayout.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, FileName), nil
}

// CacheDir returns the file cache directory: c.Cache.Dir when set, else
// $XDG_CACHE_HOME/boxlayout or ~/.cache/boxlayout.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// StoreDir returns the file store directory: c.Store.Dir when set, else
// $XDG_DATA_HOME/boxlayout/layouts or ~/.local/share/boxlayout/layouts.
func (c Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "layouts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "layouts"), nil
}
