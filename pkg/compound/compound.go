package compound

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] and [Graph.Restore] when
	// a node with the same ID is already live in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Graph.AddEdge] when the edge ID is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] and [Graph.Restore] when
	// an edge with the same ID is already live in the graph.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownNode is returned by node operations that reference an ID
	// which is not live in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownParent is returned by [Graph.Validate] when a node names a
	// parent that is not in the graph.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrParentNotBox is returned by [Graph.Validate] when a node's parent is
	// not flagged as a box.
	ErrParentNotBox = errors.New("parent node is not a box")

	// ErrParentCycle is returned by [Graph.Validate] when following parent
	// references leads back to the starting node.
	ErrParentCycle = errors.New("parent chain contains a cycle")

	// ErrAlreadyRestored is returned by [Graph.Restore] for a batch that was
	// restored before.
	ErrAlreadyRestored = errors.New("batch already restored")
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the graph.
// Metadata maps are never nil after the owning element is added to a Graph.
type Metadata map[string]any

// BoxType is the category of a box node. Box types are processed as batches
// in a fixed inner-to-outer order.
type BoxType string

const (
	// BoxNone marks an ordinary, non-box node.
	BoxNone BoxType = ""
	// BoxApp groups the workloads and services of one application.
	BoxApp BoxType = "app"
	// BoxNamespace groups everything in one namespace.
	BoxNamespace BoxType = "namespace"
	// BoxCluster groups everything in one cluster.
	BoxCluster BoxType = "cluster"
)

// BoxOrder returns the default innermost-first processing order of box types.
func BoxOrder() []BoxType {
	return []BoxType{BoxApp, BoxNamespace, BoxCluster}
}

// Node is a vertex of a compound graph. A node belongs to at most one box
// (Parent). Nodes flagged with a non-empty Box are containers for other nodes.
//
// Position is the top-left corner of the node. For a box with live children
// the stored Position is ignored and the position is derived from the
// children; see [Graph.Position].
type Node struct {
	ID       string
	Parent   string  // Owning box ID, empty for top-level nodes
	Box      BoxType // Non-empty if the node is a box
	Position Point
	Style    Style
	Meta     Metadata

	classes map[string]struct{}
	scratch Scratch
}

// IsBox reports whether the node is a container.
func (n *Node) IsBox() bool { return n.Box != BoxNone }

// HasClass reports whether the node carries the marker class c.
func (n *Node) HasClass(c string) bool {
	_, ok := n.classes[c]
	return ok
}

// AddClass attaches the marker class c.
func (n *Node) AddClass(c string) {
	if n.classes == nil {
		n.classes = make(map[string]struct{})
	}
	n.classes[c] = struct{}{}
}

// RemoveClass detaches the marker class c. Removing an absent class is a no-op.
func (n *Node) RemoveClass(c string) { delete(n.classes, c) }

// Classes returns the node's marker classes in sorted order.
func (n *Node) Classes() []string {
	return slices.Sorted(maps.Keys(n.classes))
}

// Scratch returns the node's bookkeeping record. The record is never
// serialized or rendered.
func (n *Node) Scratch() *Scratch { return &n.scratch }

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string
	Source string
	Target string
	Meta   Metadata
}

// Graph is a compound graph: nodes may be grouped into nested boxes.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
	children  map[string][]string // parentID -> live child IDs
	meta      Metadata
}

// New creates an empty Graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		children: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. The parent does not need to exist yet;
// use [Graph.Validate] once the graph is complete.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.insertNode(&n)
	return nil
}

func (g *Graph) insertNode(n *Node) {
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	if n.Parent != "" {
		g.children[n.Parent] = append(g.children[n.Parent], n.ID)
	}
}

// AddEdge adds a directed edge between two live nodes.
// Multiple edges between the same nodes are allowed.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, exists := g.edges[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.insertEdge(&e)
	return nil
}

func (g *Graph) insertEdge(e *Edge) {
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
}

// Node returns the live node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the live edge with the given ID.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// HasNode reports whether a node with the given ID is live.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether an edge with the given ID is live.
func (g *Graph) HasEdge(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// Nodes returns all live nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns all live edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = g.edges[id]
	}
	return out
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Elements returns a collection holding every live node and edge.
func (g *Graph) Elements() *Collection {
	return NewCollection(g.nodeOrder, g.edgeOrder)
}

// Parent returns the ID of the live box that owns the node, if any.
func (g *Graph) Parent(id string) (string, bool) {
	n, ok := g.nodes[id]
	if !ok || n.Parent == "" {
		return "", false
	}
	if _, live := g.nodes[n.Parent]; !live {
		return "", false
	}
	return n.Parent, true
}

// IsChild reports whether the node is owned by a live box.
func (g *Graph) IsChild(id string) bool {
	_, ok := g.Parent(id)
	return ok
}

// Children returns the IDs of the node's live children.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.children[id])
}

// HasChildren reports whether the node currently owns live children.
func (g *Graph) HasChildren(id string) bool {
	return len(g.children[id]) > 0
}

// Descendants returns all live descendants of the node, depth first.
func (g *Graph) Descendants(id string) []string {
	var out []string
	var walk func(string)
	walk = func(p string) {
		for _, c := range g.children[p] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// ConnectedEdges returns the IDs of live edges with the node as source or target.
func (g *Graph) ConnectedEdges(id string) []string {
	var out []string
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if e.Source == id || e.Target == id {
			out = append(out, eid)
		}
	}
	return out
}

// EdgesWithin returns the live edges whose endpoints are both nodes of c.
func (g *Graph) EdgesWithin(c *Collection) *Collection {
	out := NewCollection(nil, nil)
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if c.HasNode(e.Source) && c.HasNode(e.Target) {
			out.AddEdge(eid)
		}
	}
	return out
}

// FilterNodes returns the live nodes of c for which keep returns true.
func (g *Graph) FilterNodes(c *Collection, keep func(*Node) bool) *Collection {
	out := NewCollection(nil, nil)
	for _, id := range c.Nodes() {
		if n, ok := g.nodes[id]; ok && keep(n) {
			out.AddNode(id)
		}
	}
	return out
}

// Validate checks parent references: every parent must exist, be a box, and
// parent chains must not loop.
func (g *Graph) Validate() error {
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if n.Parent == "" {
			continue
		}
		p, ok := g.nodes[n.Parent]
		if !ok {
			return ErrUnknownParent
		}
		if !p.IsBox() {
			return ErrParentNotBox
		}
	}
	for _, id := range g.nodeOrder {
		seen := map[string]bool{id: true}
		for cur := g.nodes[id].Parent; cur != ""; cur = g.nodes[cur].Parent {
			if seen[cur] {
				return ErrParentCycle
			}
			seen[cur] = true
		}
	}
	return nil
}

// Clone returns a deep copy of the graph, scratch records included.
func (g *Graph) Clone() *Graph {
	out := New(maps.Clone(g.meta))
	for _, n := range g.Nodes() {
		cp := *n
		cp.Meta = maps.Clone(n.Meta)
		cp.classes = maps.Clone(n.classes)
		cp.scratch = n.scratch.clone()
		out.insertNode(&cp)
	}
	for _, e := range g.Edges() {
		cp := *e
		cp.Meta = maps.Clone(e.Meta)
		out.insertEdge(&cp)
	}
	return out
}
