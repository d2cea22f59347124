package graph

import (
	"fmt"
	"maps"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
)

// =============================================================================
// Graph Types
// =============================================================================

// Graph is the node-link representation of a compound graph.
type Graph struct {
	Nodes []Node         `json:"nodes" bson:"nodes"`
	Edges []Edge         `json:"edges" bson:"edges"`
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Node is a serialized graph node.
type Node struct {
	ID      string         `json:"id" bson:"id"`
	Parent  string         `json:"parent,omitempty" bson:"parent,omitempty"`
	Box     string         `json:"box,omitempty" bson:"box,omitempty"`
	X       float64        `json:"x" bson:"x"`
	Y       float64        `json:"y" bson:"y"`
	Style   *Style         `json:"style,omitempty" bson:"style,omitempty"`
	Classes []string       `json:"classes,omitempty" bson:"classes,omitempty"`
	Meta    map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Style is the serialized form of [compound.Style].
type Style struct {
	Shape  string  `json:"shape,omitempty" bson:"shape,omitempty"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// Edge is a serialized directed edge.
type Edge struct {
	ID     string         `json:"id" bson:"id"`
	Source string         `json:"source" bson:"source"`
	Target string         `json:"target" bson:"target"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromCompound converts g to its wire form. Nodes and edges keep insertion
// order. Boxes with children are written at their derived position.
func FromCompound(g *compound.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
		Meta:  copyMeta(g.Meta()),
	}
	for _, n := range g.Nodes() {
		pos := g.Position(n.ID)
		wn := Node{
			ID:      n.ID,
			Parent:  n.Parent,
			Box:     string(n.Box),
			X:       pos.X,
			Y:       pos.Y,
			Classes: n.Classes(),
			Meta:    copyMeta(n.Meta),
		}
		if n.Style != (compound.Style{}) {
			wn.Style = &Style{Shape: string(n.Style.Shape), Width: n.Style.Width, Height: n.Style.Height}
		}
		if len(wn.Classes) == 0 {
			wn.Classes = nil
		}
		out.Nodes = append(out.Nodes, wn)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Meta:   copyMeta(e.Meta),
		})
	}
	return out
}

// ToCompound builds a compound graph from its wire form. Element IDs are
// checked, and the result is validated; every failure is an INVALID_GRAPH
// error. Edges without an ID are named "e<index>".
func ToCompound(wg Graph) (*compound.Graph, error) {
	g := compound.New(copyMeta(wg.Meta))
	for _, n := range wg.Nodes {
		if err := errors.ValidateElementID(n.ID); err != nil {
			return nil, err
		}
		cn := compound.Node{
			ID:       n.ID,
			Parent:   n.Parent,
			Box:      compound.BoxType(n.Box),
			Position: compound.Point{X: n.X, Y: n.Y},
			Meta:     copyMeta(n.Meta),
		}
		if n.Style != nil {
			cn.Style = compound.Style{Shape: compound.Shape(n.Style.Shape), Width: n.Style.Width, Height: n.Style.Height}
		}
		for _, c := range n.Classes {
			cn.AddClass(c)
		}
		if err := g.AddNode(cn); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %q", n.ID)
		}
	}
	for i, e := range wg.Edges {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("e%d", i)
		}
		if err := errors.ValidateElementID(id); err != nil {
			return nil, err
		}
		ce := compound.Edge{ID: id, Source: e.Source, Target: e.Target, Meta: copyMeta(e.Meta)}
		if err := g.AddEdge(ce); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %q", id)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return g, nil
}

// Bounds returns the rectangle enclosing every top-level node of g.
func Bounds(g *compound.Graph) compound.Rect {
	var (
		bb    compound.Rect
		found bool
	)
	for _, n := range g.Nodes() {
		if g.IsChild(n.ID) {
			continue
		}
		r := g.BoundingBox(n.ID)
		if !found {
			bb, found = r, true
			continue
		}
		bb = bb.Union(r)
	}
	return bb
}

func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
