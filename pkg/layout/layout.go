package layout

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/boxlayout/pkg/compound"
)

// Algorithm is a pluggable layout. Run computes positions for in and must
// eventually call r.Stop exactly once, either before returning (synchronous
// algorithms) or later from another goroutine (asynchronous algorithms).
// Algorithms work on the Input snapshot only and never touch the graph.
type Algorithm interface {
	Name() string
	Run(ctx context.Context, in *Input, p Params, r *Run)
}

// Func computes a layout in one call. Wrap it with [Sync] or [Async].
type Func func(ctx context.Context, in *Input, p Params) (Result, error)

// Sync returns an Algorithm that runs fn on the caller's goroutine and stops
// before Run returns.
func Sync(name string, fn Func) Algorithm { return syncAlgorithm{name: name, fn: fn} }

// Async returns an Algorithm that runs fn on its own goroutine. Run returns
// immediately; the run stops when fn returns.
func Async(name string, fn Func) Algorithm { return asyncAlgorithm{name: name, fn: fn} }

type syncAlgorithm struct {
	name string
	fn   Func
}

func (a syncAlgorithm) Name() string { return a.name }

func (a syncAlgorithm) Run(ctx context.Context, in *Input, p Params, r *Run) {
	res, err := call(ctx, a.name, a.fn, in, p)
	r.Ready()
	r.Stop(res, err)
}

type asyncAlgorithm struct {
	name string
	fn   Func
}

func (a asyncAlgorithm) Name() string { return a.name }

func (a asyncAlgorithm) Run(ctx context.Context, in *Input, p Params, r *Run) {
	go func() {
		res, err := call(ctx, a.name, a.fn, in, p)
		r.Ready()
		r.Stop(res, err)
	}()
}

// call runs fn and turns a panic into an error.
func call(ctx context.Context, name string, fn Func, in *Input, p Params) (res Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			res, err = nil, fmt.Errorf("%s layout panicked: %v", name, v)
		}
	}()
	return fn(ctx, in, p)
}

// NodeInput is a node as seen by a layout algorithm.
type NodeInput struct {
	ID       string
	Size     compound.Size
	Position compound.Point
}

// EdgeInput is an edge as seen by a layout algorithm.
type EdgeInput struct {
	ID     string
	Source string
	Target string
}

// Input is an immutable snapshot of the elements a layout should arrange.
type Input struct {
	Nodes []NodeInput
	Edges []EdgeInput
}

// InputFrom snapshots the live nodes of eles and the live edges of eles whose
// endpoints are both among those nodes.
func InputFrom(g *compound.Graph, eles *compound.Collection) *Input {
	in := &Input{}
	nodes := compound.NewCollection(nil, nil)
	for _, id := range eles.Nodes() {
		if !g.HasNode(id) {
			continue
		}
		nodes.AddNode(id)
		in.Nodes = append(in.Nodes, NodeInput{ID: id, Size: g.Size(id), Position: g.Position(id)})
	}
	for _, id := range eles.Edges() {
		e, ok := g.Edge(id)
		if !ok || !nodes.HasNode(e.Source) || !nodes.HasNode(e.Target) {
			continue
		}
		in.Edges = append(in.Edges, EdgeInput{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return in
}

// Index maps node IDs to their position in in.Nodes.
func (in *Input) Index() map[string]int {
	idx := make(map[string]int, len(in.Nodes))
	for i, n := range in.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Result maps node IDs to computed top-left positions.
type Result map[string]compound.Point

// Apply moves every live node named in r to its computed position, in ID
// order.
func (r Result) Apply(g *compound.Graph) error {
	for _, id := range slices.Sorted(maps.Keys(r)) {
		if !g.HasNode(id) {
			continue
		}
		if err := g.SetPosition(id, r[id]); err != nil {
			return fmt.Errorf("apply position %s: %w", id, err)
		}
	}
	return nil
}

// Config names an algorithm and its parameters.
type Config struct {
	Name   string `json:"name" toml:"name"`
	Params Params `json:"params,omitempty" toml:"params"`
}

// IsZero reports whether no algorithm is configured.
func (c Config) IsZero() bool { return c.Name == "" }
