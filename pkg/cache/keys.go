package cache

import (
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of the graph with hash graphHash
	// under opts.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// RenderKey identifies a rendered image of a stored layout.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts are the options that change a layout's outcome.
type LayoutKeyOpts struct {
	Default layout.Config            `json:"default"`
	Boxes   map[string]layout.Config `json:"boxes,omitempty"`
	Params  map[string]any           `json:"params,omitempty"`
	Order   []string                 `json:"order,omitempty"`
}

// RenderKeyOpts are the options that change a rendered image.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
