// Package grid implements a synchronous grid layout.
//
// Nodes are ordered by a breadth-first traversal that starts at the most
// connected node, so neighbors land in nearby cells, and are then placed
// row-major on a grid of roughly sqrt(N) columns. Column widths and row
// heights adapt to the largest node in each column or row, and every node is
// centered in its cell.
//
// Parameters:
//
//	spacing  gap between cells (default 20)
//	cols     fixed column count (default ceil(sqrt(N)))
//	order    "bfs" (default) or "input"
package grid

import (
	"context"
	"math"
	"sort"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// Name is the registry name of the grid layout.
const Name = "grid"

// DefaultSpacing is the gap between cells.
const DefaultSpacing = 20.0

// New returns the grid algorithm.
func New() layout.Algorithm { return layout.Sync(Name, Layout) }

// Layout computes grid positions for in.
func Layout(_ context.Context, in *layout.Input, p layout.Params) (layout.Result, error) {
	n := len(in.Nodes)
	res := make(layout.Result, n)
	if n == 0 {
		return res, nil
	}

	spacing := p.Float("spacing", DefaultSpacing)
	cols := p.Int("cols", 0)
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}

	order := bfsOrder(in)
	if p.String("order", "bfs") == "input" {
		order = order[:0]
		for i := range in.Nodes {
			order = append(order, i)
		}
	}

	rows := (n + cols - 1) / cols
	colW := make([]float64, cols)
	rowH := make([]float64, rows)
	for slot, idx := range order {
		r, c := slot/cols, slot%cols
		s := in.Nodes[idx].Size
		colW[c] = math.Max(colW[c], s.W)
		rowH[r] = math.Max(rowH[r], s.H)
	}

	colX := make([]float64, cols)
	for c := 1; c < cols; c++ {
		colX[c] = colX[c-1] + colW[c-1] + spacing
	}
	rowY := make([]float64, rows)
	for r := 1; r < rows; r++ {
		rowY[r] = rowY[r-1] + rowH[r-1] + spacing
	}

	for slot, idx := range order {
		r, c := slot/cols, slot%cols
		node := in.Nodes[idx]
		res[node.ID] = compound.Point{
			X: colX[c] + (colW[c]-node.Size.W)/2,
			Y: rowY[r] + (rowH[r]-node.Size.H)/2,
		}
	}
	return res, nil
}

// bfsOrder returns node indices in breadth-first order, starting each
// component at its highest-degree node and visiting higher-degree neighbors
// first.
func bfsOrder(in *layout.Input) []int {
	n := len(in.Nodes)
	idx := in.Index()
	adj := make([][]int, n)
	seen := make(map[[2]int]bool)
	for _, e := range in.Edges {
		s, t := idx[e.Source], idx[e.Target]
		if s == t {
			continue
		}
		if s > t {
			s, t = t, s
		}
		if seen[[2]int{s, t}] {
			continue
		}
		seen[[2]int{s, t}] = true
		adj[s] = append(adj[s], t)
		adj[t] = append(adj[t], s)
	}

	byDegree := func(list []int) {
		sort.SliceStable(list, func(i, j int) bool {
			di, dj := len(adj[list[i]]), len(adj[list[j]])
			if di != dj {
				return di > dj
			}
			return list[i] < list[j]
		})
	}

	starts := make([]int, n)
	for i := range starts {
		starts[i] = i
	}
	byDegree(starts)

	visited := make([]bool, n)
	order := make([]int, 0, n)
	for _, start := range starts {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			order = append(order, cur)

			var next []int
			for _, nb := range adj[cur] {
				if !visited[nb] {
					next = append(next, nb)
				}
			}
			byDegree(next)
			for _, nb := range next {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return order
}
