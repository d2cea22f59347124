package layered

import (
	"context"
	"slices"
)

// buildRows groups node indices by layer, preserving input order inside each
// layer.
func buildRows(layers []int) [][]int {
	depth := 0
	for _, l := range layers {
		depth = max(depth, l+1)
	}
	rows := make([][]int, depth)
	for v, l := range layers {
		rows[l] = append(rows[l], v)
	}
	return rows
}

// orderRows reduces edge crossings with alternating barycenter sweeps and
// returns the best ordering seen. Sweeping stops early when ctx is done.
func orderRows(ctx context.Context, g *digraph, layers []int, rows [][]int, sweeps int) [][]int {
	best := cloneRows(rows)
	bestCrossings := countCrossings(g, layers, rows)

	for i := 0; i < sweeps && bestCrossings > 0; i++ {
		if ctx.Err() != nil {
			break
		}
		if i%2 == 0 {
			for r := 1; r < len(rows); r++ {
				sortByBarycenter(rows[r], rows[r-1], g.in, layers, r-1)
			}
		} else {
			for r := len(rows) - 2; r >= 0; r-- {
				sortByBarycenter(rows[r], rows[r+1], g.out, layers, r+1)
			}
		}
		if c := countCrossings(g, layers, rows); c < bestCrossings {
			best, bestCrossings = cloneRows(rows), c
		}
	}
	return best
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbors in the fixed adjacent row. Nodes without such neighbors keep
// their current slot as barycenter.
func sortByBarycenter(row, fixed []int, adj [][]int, layers []int, fixedLayer int) {
	pos := posMap(fixed)
	bary := make(map[int]float64, len(row))
	for i, v := range row {
		sum, n := 0.0, 0
		for _, nb := range adj[v] {
			if layers[nb] == fixedLayer {
				sum += float64(pos[nb])
				n++
			}
		}
		if n == 0 {
			bary[v] = float64(i)
			continue
		}
		bary[v] = sum / float64(n)
	}
	slices.SortStableFunc(row, func(a, b int) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		}
		return 0
	})
}

// countCrossings sums crossings between every pair of consecutive rows.
// Edges spanning more than one layer are ignored.
func countCrossings(g *digraph, layers []int, rows [][]int) int {
	total := 0
	for r := 0; r+1 < len(rows); r++ {
		total += countLayerCrossings(g, layers, rows[r], rows[r+1])
	}
	return total
}

// countLayerCrossings counts inversions among the edges between two adjacent
// rows with a Fenwick tree. Two edges (u1,v1) and (u2,v2) cross if and only
// if pos(u1) < pos(u2) and pos(v1) > pos(v2).
func countLayerCrossings(g *digraph, layers []int, upper, lower []int) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := posMap(lower)
	lowerLayer := layers[lower[0]]

	type edge struct{ upper, lower int }
	var edges []edge
	for i, v := range upper {
		for _, child := range g.out[v] {
			if layers[child] == lowerLayer {
				edges = append(edges, edge{i, lowerPos[child]})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

func posMap(row []int) map[int]int {
	m := make(map[int]int, len(row))
	for i, v := range row {
		m[v] = i
	}
	return m
}

func cloneRows(rows [][]int) [][]int {
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
