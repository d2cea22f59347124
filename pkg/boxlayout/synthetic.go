package boxlayout

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/compound"
)

// SyntheticEdgePrefix prefixes the IDs of proxy edges added during a run.
const SyntheticEdgePrefix = "synthetic-edge-"

// edgeGenerator mints proxy edges between normalized endpoints. Its counter
// and pair set live for one run.
type edgeGenerator struct {
	g         *compound.Graph
	next      int
	generated map[string]bool
	taken     map[string]bool // edge IDs present when the run started
}

func newEdgeGenerator(g *compound.Graph) *edgeGenerator {
	taken := make(map[string]bool, g.EdgeCount())
	for _, e := range g.Edges() {
		taken[e.ID] = true
	}
	return &edgeGenerator{g: g, generated: make(map[string]bool), taken: taken}
}

// normalize substitutes a child with its immediate owning box.
func (gen *edgeGenerator) normalize(id string) string {
	if parent, ok := gen.g.Parent(id); ok {
		return parent
	}
	return id
}

// edge returns a proxy edge for source->target, or false when the normalized
// endpoints coincide or the directional pair was already generated.
func (gen *edgeGenerator) edge(source, target string) (compound.Edge, bool) {
	s, t := gen.normalize(source), gen.normalize(target)
	if s == t {
		return compound.Edge{}, false
	}
	key := s + "->" + t
	if gen.generated[key] {
		return compound.Edge{}, false
	}
	gen.generated[key] = true
	return compound.Edge{ID: gen.nextID(), Source: s, Target: t}, true
}

func (gen *edgeGenerator) nextID() string {
	for {
		id := fmt.Sprintf("%s%d", SyntheticEdgePrefix, gen.next)
		gen.next++
		if !gen.taken[id] && !gen.g.HasEdge(id) {
			return id
		}
	}
}
