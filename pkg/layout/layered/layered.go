// Package layered implements a synchronous Sugiyama-style layered layout.
//
// The pipeline has four steps:
//
//  1. Cycle breaking: back edges found by depth-first search are reversed.
//  2. Layering: longest-path layering puts each node one layer below its
//     deepest predecessor.
//  3. Ordering: alternating barycenter sweeps reduce crossings between
//     adjacent layers; the best ordering seen is kept.
//  4. Coordinates: layers are stacked along the rank direction, nodes are
//     packed inside their layer, and each layer is centered on the widest.
//
// Parameters:
//
//	rank_dir  "TB" (default) or "LR"
//	rank_sep  gap between layers (default 50)
//	node_sep  gap between nodes of a layer (default 30)
//	sweeps    number of ordering sweeps (default 8)
package layered

import (
	"context"
	"strings"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// Name is the registry name of the layered layout.
const Name = "layered"

const (
	DefaultRankSep = 50.0
	DefaultNodeSep = 30.0
	DefaultSweeps  = 8
)

// New returns the layered algorithm.
func New() layout.Algorithm { return layout.Sync(Name, Layout) }

// Layout computes layered positions for in.
func Layout(ctx context.Context, in *layout.Input, p layout.Params) (layout.Result, error) {
	res := make(layout.Result, len(in.Nodes))
	if len(in.Nodes) == 0 {
		return res, nil
	}

	g := newDigraph(in)
	g.breakCycles()
	layers := g.assignLayers()
	rows := orderRows(ctx, g, layers, buildRows(layers), p.Int("sweeps", DefaultSweeps))

	horizontal := strings.EqualFold(p.String("rank_dir", "TB"), "LR")
	rankSep := p.Float("rank_sep", DefaultRankSep)
	nodeSep := p.Float("node_sep", DefaultNodeSep)

	// along measures a node in the packing direction, across in the rank
	// direction.
	along := func(s compound.Size) float64 {
		if horizontal {
			return s.H
		}
		return s.W
	}
	across := func(s compound.Size) float64 {
		if horizontal {
			return s.W
		}
		return s.H
	}

	rowLen := make([]float64, len(rows))
	rowDepth := make([]float64, len(rows))
	widest := 0.0
	for r, row := range rows {
		for i, v := range row {
			s := in.Nodes[v].Size
			if i > 0 {
				rowLen[r] += nodeSep
			}
			rowLen[r] += along(s)
			rowDepth[r] = max(rowDepth[r], across(s))
		}
		widest = max(widest, rowLen[r])
	}

	rank := 0.0
	for r, row := range rows {
		offset := (widest - rowLen[r]) / 2
		for _, v := range row {
			node := in.Nodes[v]
			a := offset
			c := rank + (rowDepth[r]-across(node.Size))/2
			if horizontal {
				res[node.ID] = compound.Point{X: c, Y: a}
			} else {
				res[node.ID] = compound.Point{X: a, Y: c}
			}
			offset += along(node.Size) + nodeSep
		}
		rank += rowDepth[r] + rankSep
	}
	return res, nil
}
