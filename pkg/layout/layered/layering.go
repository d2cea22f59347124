package layered

import "github.com/matzehuels/boxlayout/pkg/layout"

// digraph is the index-based working graph of a layered layout.
type digraph struct {
	n   int
	out [][]int
	in  [][]int
}

func newDigraph(in *layout.Input) *digraph {
	g := &digraph{
		n:   len(in.Nodes),
		out: make([][]int, len(in.Nodes)),
		in:  make([][]int, len(in.Nodes)),
	}
	idx := in.Index()
	seen := make(map[[2]int]bool)
	for _, e := range in.Edges {
		s, t := idx[e.Source], idx[e.Target]
		if s == t || seen[[2]int{s, t}] {
			continue
		}
		seen[[2]int{s, t}] = true
		g.out[s] = append(g.out[s], t)
		g.in[t] = append(g.in[t], s)
	}
	return g
}

func (g *digraph) hasEdge(s, t int) bool {
	for _, c := range g.out[s] {
		if c == t {
			return true
		}
	}
	return false
}

func (g *digraph) removeEdge(s, t int) {
	g.out[s] = without(g.out[s], t)
	g.in[t] = without(g.in[t], s)
}

func without(list []int, v int) []int {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// breakCycles reverses every back edge found by a depth-first search, so the
// graph becomes acyclic while keeping its connectivity. It returns the number
// of reversed edges.
func (g *digraph) breakCycles() int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, g.n)
	var backEdges [][2]int

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, child := range g.out[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]int{node, child})
			}
		}
		color[node] = black
	}

	for v := 0; v < g.n; v++ {
		if len(g.in[v]) == 0 && color[v] == white {
			dfs(v)
		}
	}
	for v := 0; v < g.n; v++ {
		if color[v] == white {
			dfs(v)
		}
	}

	for _, e := range backEdges {
		g.removeEdge(e[0], e[1])
		if !g.hasEdge(e[1], e[0]) {
			g.out[e[1]] = append(g.out[e[1]], e[0])
			g.in[e[0]] = append(g.in[e[0]], e[1])
		}
	}
	return len(backEdges)
}

// assignLayers places every node one layer below its deepest parent using a
// longest-path traversal (Kahn's algorithm). Sources sit in layer 0. The
// graph must be acyclic.
func (g *digraph) assignLayers() []int {
	inDegree := make([]int, g.n)
	layers := make([]int, g.n)
	queue := make([]int, 0, g.n)

	for v := 0; v < g.n; v++ {
		inDegree[v] = len(g.in[v])
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.out[curr] {
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return layers
}
