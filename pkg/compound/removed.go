package compound

import "slices"

// Removed is a batch of elements detached from a graph. The batch owns the
// detached nodes and edges until it is handed back with [Graph.Restore].
// Batches from several removals can be combined with [Removed.Merge] so they
// come back in a single restore.
type Removed struct {
	nodes    []*Node
	edges    []*Edge
	restored bool
}

// NewRemoved returns an empty batch, ready to merge other batches into.
func NewRemoved() *Removed { return &Removed{} }

// Merge moves all elements of o into r. o is left empty.
func (r *Removed) Merge(o *Removed) {
	if o == nil || o == r {
		return
	}
	r.nodes = append(r.nodes, o.nodes...)
	r.edges = append(r.edges, o.edges...)
	o.nodes, o.edges = nil, nil
}

// Node returns a detached node held by the batch.
func (r *Removed) Node(id string) (*Node, bool) {
	for _, n := range r.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Collection returns the IDs of the batch's elements.
func (r *Removed) Collection() *Collection {
	c := NewCollection(nil, nil)
	for _, n := range r.nodes {
		c.AddNode(n.ID)
	}
	for _, e := range r.edges {
		c.AddEdge(e.ID)
	}
	return c
}

// NodeCount returns the number of detached nodes.
func (r *Removed) NodeCount() int { return len(r.nodes) }

// EdgeCount returns the number of detached edges.
func (r *Removed) EdgeCount() int { return len(r.edges) }

// Remove detaches the elements of c together with every live edge connected
// to a removed node and every live descendant of a removed box. Elements of c
// that are not live are ignored.
func (g *Graph) Remove(c *Collection) *Removed {
	nodeIDs := NewCollection(nil, nil)
	for _, id := range c.Nodes() {
		if !g.HasNode(id) {
			continue
		}
		nodeIDs.AddNode(id)
		for _, d := range g.Descendants(id) {
			nodeIDs.AddNode(d)
		}
	}

	out := &Removed{}
	for _, eid := range slices.Clone(g.edgeOrder) {
		e := g.edges[eid]
		if c.HasEdge(eid) || nodeIDs.HasNode(e.Source) || nodeIDs.HasNode(e.Target) {
			out.edges = append(out.edges, e)
			g.deleteEdge(eid)
		}
	}
	for _, id := range nodeIDs.Nodes() {
		out.nodes = append(out.nodes, g.nodes[id])
		g.deleteNode(id)
	}
	return out
}

// RemoveEdges detaches the live edges of ids and discards them.
func (g *Graph) RemoveEdges(ids []string) int {
	n := 0
	for _, id := range ids {
		if g.HasEdge(id) {
			g.deleteEdge(id)
			n++
		}
	}
	return n
}

// Restore re-attaches a removed batch. Nodes come back first, then edges.
// Restore fails without changing the graph if any element would collide
// with a live one or an edge endpoint would be missing.
func (g *Graph) Restore(r *Removed) error {
	if r.restored {
		return ErrAlreadyRestored
	}
	incoming := make(map[string]bool, len(r.nodes))
	for _, n := range r.nodes {
		if g.HasNode(n.ID) {
			return ErrDuplicateNodeID
		}
		incoming[n.ID] = true
	}
	for _, e := range r.edges {
		if g.HasEdge(e.ID) {
			return ErrDuplicateEdgeID
		}
		if !g.HasNode(e.Source) && !incoming[e.Source] {
			return ErrUnknownSourceNode
		}
		if !g.HasNode(e.Target) && !incoming[e.Target] {
			return ErrUnknownTargetNode
		}
	}

	for _, n := range r.nodes {
		g.insertNode(n)
	}
	for _, e := range r.edges {
		g.insertEdge(e)
	}
	r.restored = true
	return nil
}

func (g *Graph) deleteNode(id string) {
	n := g.nodes[id]
	delete(g.nodes, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(s string) bool { return s == id })
	if n.Parent != "" {
		g.children[n.Parent] = slices.DeleteFunc(g.children[n.Parent], func(s string) bool { return s == id })
		if len(g.children[n.Parent]) == 0 {
			delete(g.children, n.Parent)
		}
	}
}

func (g *Graph) deleteEdge(id string) {
	delete(g.edges, id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(s string) bool { return s == id })
}
