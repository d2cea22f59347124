// Package pipeline runs box layouts with caching and renders the results.
//
// This package is shared by the CLI and the HTTP API so both go through the
// same cache keys, defaults and logging.
//
// # Stages
//
//  1. Layout: look up the (graph hash, options) key in the cache; on a hit
//     apply the cached positions, otherwise run pkg/boxlayout and cache the
//     resulting graph.Layout.
//  2. Render: draw the laid-out graph in each requested format, cached by
//     layout hash and format.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, g, pipeline.Options{
//	    Default: layout.Config{Name: "layered"},
//	    Boxes:   map[string]layout.Config{"app": {Name: "grid"}},
//	    Formats: []string{"svg"},
//	})
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/boxlayout"
	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/render/dot"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultAlgorithm is the outer layout used when none is configured.
const DefaultAlgorithm = "layered"

// DefaultCacheTTL is how long layouts and renders stay cached.
const DefaultCacheTTL = 24 * time.Hour

// FormatJSON renders the layout record itself.
const FormatJSON = "json"

// ValidateFormat checks that format is json or a format [dot.Render] draws.
func ValidateFormat(format string) error {
	if format == FormatJSON {
		return nil
	}
	if f, err := dot.ParseFormat(format); err != nil || string(f) != format {
		return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q", format)
	}
	return nil
}

// ValidateFormats validates every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one layout and render. Box layouts are keyed by box
// type name so the struct can be decoded from JSON and TOML.
type Options struct {
	Default layout.Config            `json:"default"`
	Boxes   map[string]layout.Config `json:"boxes,omitempty"`
	Params  layout.Params            `json:"params,omitempty"`
	Order   []string                 `json:"order,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	Logger *log.Logger `json:"-"`
}

// OptionsFromParams builds Options from a flat option object where box
// configurations live under keys such as "appBoxLayout" and the outer
// layout under "defaultLayout".
func OptionsFromParams(p layout.Params) (Options, error) {
	bo, err := boxlayout.OptionsFromParams(p, nil)
	if err != nil {
		return Options{}, err
	}
	opts := Options{Default: bo.Default, Params: bo.Params}
	if len(bo.Boxes) > 0 {
		opts.Boxes = make(map[string]layout.Config, len(bo.Boxes))
		for t, cfg := range bo.Boxes {
			opts.Boxes[string(t)] = cfg
		}
	}
	return opts, nil
}

// ValidateAndSetDefaults fills in the default algorithm and a discarding
// logger and checks the requested formats.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Default.IsZero() {
		o.Default = layout.Config{Name: DefaultAlgorithm}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	for name := range o.Boxes {
		if name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "box layout with empty box type")
		}
	}
	return ValidateFormats(o.Formats)
}

// boxOptions converts o for pkg/boxlayout.
func (o *Options) boxOptions(reg *layout.Registry) boxlayout.Options {
	bo := boxlayout.Options{
		Default:  o.Default,
		Params:   o.Params,
		Registry: reg,
		Logger:   o.Logger,
	}
	if len(o.Boxes) > 0 {
		bo.Boxes = make(map[compound.BoxType]layout.Config, len(o.Boxes))
		for name, cfg := range o.Boxes {
			bo.Boxes[compound.BoxType(name)] = cfg
		}
	}
	if len(o.Order) > 0 {
		bo.Order = make([]compound.BoxType, len(o.Order))
		for i, name := range o.Order {
			bo.Order[i] = compound.BoxType(name)
		}
	}
	return bo
}

// LayoutKeyOpts returns the cache key components of o.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Default: o.Default,
		Boxes:   maps.Clone(o.Boxes),
		Params:  o.Params,
		Order:   o.Order,
	}
}

// RenderKeyOpts returns the cache key components of one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{Format: format, Detailed: o.Detailed}
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of [Runner.Execute].
type Result struct {
	Graph     *compound.Graph
	Layout    graph.Layout
	GraphHash string // empty when the graph cannot be serialized
	Artifacts map[string][]byte
	CacheInfo CacheInfo
	Stats     Stats
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

// Stats holds sizes and timings of a pipeline run.
type Stats struct {
	NodeCount  int           `json:"node_count"`
	EdgeCount  int           `json:"edge_count"`
	LayoutTime time.Duration `json:"layout_time"`
	RenderTime time.Duration `json:"render_time"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, layout %s, render %s",
		s.NodeCount, s.EdgeCount, s.LayoutTime.Round(time.Millisecond), s.RenderTime.Round(time.Millisecond))
}
