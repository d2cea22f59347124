package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/boxlayout"
	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/layout/builtin"
	"github.com/matzehuels/boxlayout/pkg/render/dot"
)

// Runner encapsulates layout and rendering with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner on different graphs.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Registry *layout.Registry
	TTL      time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: builtin.Registry(),
		TTL:      DefaultCacheTTL,
	}
}

// Execute lays out g in place and renders every requested format.
func (r *Runner) Execute(ctx context.Context, g *compound.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	res := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
		Stats:     Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
	}
	if h, err := graphHash(g); err == nil {
		res.GraphHash = h
	}

	start := time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	res.Layout = l
	res.CacheInfo.LayoutHit = hit
	res.Stats.LayoutTime = time.Since(start)

	r.Logger.Info("computed layout",
		"algorithm", l.Algorithm,
		"nodes", res.Stats.NodeCount,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return res, nil
	}

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, l, opts)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	res.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// LayoutWithCacheInfo lays out g in place and reports whether the positions
// came from the cache. The cache key is taken from g as passed in.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *compound.Graph, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}

	var key string
	hash, err := graphHash(g)
	if err != nil {
		opts.Logger.Warn("graph cannot be hashed, skipping layout cache", "err", err)
	} else {
		key = r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	}

	if key != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			opts.Logger.Warn("layout cache read failed", "err", err)
		} else if hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				moved := cached.Apply(g)
				opts.Logger.Debug("applied cached layout", "nodes", moved)
				cached.Cached = true
				return cached, true, nil
			}
		}
	}

	res, err := boxlayout.Run(ctx, g, nil, opts.boxOptions(r.Registry))
	if err != nil {
		return graph.Layout{}, false, err
	}

	l := graph.NewLayout(g, res.RunID, res.Algorithm)
	for _, a := range res.Anomalies {
		l.Anomalies = append(l.Anomalies, graph.Anomaly{Node: a.Node, Box: a.Box, Reason: a.Reason})
	}

	if key == "" {
		return l, false, nil
	}
	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			opts.Logger.Warn("layout cache write failed", "err", err)
		}
	}
	return l, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, g *compound.Graph, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// RenderWithCacheInfo renders the laid-out g in each of opts.Formats. The
// hit flag is set only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *compound.Graph, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	wire, err := json.Marshal(l.Graph)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(wire)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
			continue
		}
		allHit = false

		data, err := renderFormat(ctx, g, l, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, r.TTL)
	}
	return artifacts, allHit, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, g *compound.Graph, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, l, opts)
	return artifacts, err
}

func renderFormat(ctx context.Context, g *compound.Graph, l graph.Layout, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return graph.MarshalLayout(l)
	}
	f, err := dot.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	src := dot.ToDOT(g, dot.Options{Detailed: opts.Detailed})
	if f == dot.FormatDOT {
		return []byte(src), nil
	}
	return dot.Render(ctx, src, f)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// graphHash hashes the wire form of g. Graphs whose metadata cannot be
// serialized have no hash.
func graphHash(g *compound.Graph) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
