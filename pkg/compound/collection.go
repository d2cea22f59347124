package compound

import "slices"

// Collection is an ordered set of node IDs and edge IDs. Node and edge IDs
// live in separate namespaces. A Collection holds IDs only; it never aliases
// the graph's elements.
type Collection struct {
	nodes   []string
	edges   []string
	nodeSet map[string]struct{}
	edgeSet map[string]struct{}
}

// NewCollection creates a collection from node and edge IDs. Duplicates are
// dropped, keeping the first occurrence.
func NewCollection(nodes, edges []string) *Collection {
	c := &Collection{
		nodeSet: make(map[string]struct{}, len(nodes)),
		edgeSet: make(map[string]struct{}, len(edges)),
	}
	for _, id := range nodes {
		c.AddNode(id)
	}
	for _, id := range edges {
		c.AddEdge(id)
	}
	return c
}

// AddNode adds a node ID if it is not already present.
func (c *Collection) AddNode(id string) {
	if _, ok := c.nodeSet[id]; ok {
		return
	}
	c.nodeSet[id] = struct{}{}
	c.nodes = append(c.nodes, id)
}

// AddEdge adds an edge ID if it is not already present.
func (c *Collection) AddEdge(id string) {
	if _, ok := c.edgeSet[id]; ok {
		return
	}
	c.edgeSet[id] = struct{}{}
	c.edges = append(c.edges, id)
}

// HasNode reports membership of a node ID.
func (c *Collection) HasNode(id string) bool {
	_, ok := c.nodeSet[id]
	return ok
}

// HasEdge reports membership of an edge ID.
func (c *Collection) HasEdge(id string) bool {
	_, ok := c.edgeSet[id]
	return ok
}

// Nodes returns the node IDs in insertion order.
func (c *Collection) Nodes() []string { return slices.Clone(c.nodes) }

// Edges returns the edge IDs in insertion order.
func (c *Collection) Edges() []string { return slices.Clone(c.edges) }

// Len returns the total number of elements.
func (c *Collection) Len() int { return len(c.nodes) + len(c.edges) }

// Empty reports whether the collection holds no elements.
func (c *Collection) Empty() bool { return c.Len() == 0 }

// Union returns a new collection with the elements of c followed by the
// elements of o that c lacks.
func (c *Collection) Union(o *Collection) *Collection {
	out := NewCollection(c.nodes, c.edges)
	for _, id := range o.nodes {
		out.AddNode(id)
	}
	for _, id := range o.edges {
		out.AddEdge(id)
	}
	return out
}

// Subtract returns a new collection with the elements of c that o lacks.
func (c *Collection) Subtract(o *Collection) *Collection {
	out := NewCollection(nil, nil)
	for _, id := range c.nodes {
		if !o.HasNode(id) {
			out.AddNode(id)
		}
	}
	for _, id := range c.edges {
		if !o.HasEdge(id) {
			out.AddEdge(id)
		}
	}
	return out
}
