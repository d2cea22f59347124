// Package builtin registers every layout algorithm shipped with boxlayout.
package builtin

import (
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/layout/graphviz"
	"github.com/matzehuels/boxlayout/pkg/layout/grid"
	"github.com/matzehuels/boxlayout/pkg/layout/layered"
)

// Registry returns a new registry holding preset, grid, layered and graphviz.
func Registry() *layout.Registry {
	return layout.NewRegistry(
		layout.Preset,
		grid.New(),
		layered.New(),
		graphviz.New(),
	)
}
