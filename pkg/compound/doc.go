// Package compound provides the in-memory compound graph that box layouts
// operate on.
//
// # Overview
//
// A compound graph is a directed graph whose nodes may be grouped into nested
// boxes: application boxes inside namespace boxes inside cluster boxes. A box
// is an ordinary [Node] flagged with a [BoxType]; a node belongs to at most one
// box through its Parent field.
//
// Create a graph with [New], add nodes with [Graph.AddNode] and edges with
// [Graph.AddEdge], then call [Graph.Validate] to check parent references:
//
//	g := compound.New(nil)
//	g.AddNode(compound.Node{ID: "bookinfo", Box: compound.BoxApp})
//	g.AddNode(compound.Node{ID: "reviews-v1", Parent: "bookinfo"})
//	g.AddNode(compound.Node{ID: "reviews-v2", Parent: "bookinfo"})
//	g.AddEdge(compound.Edge{ID: "e1", Source: "reviews-v1", Target: "reviews-v2"})
//
// # Geometry
//
// Positions are top-left corners. A box with live children has no
// independent geometry: its position and size are derived from the bounding
// box of its children, and moving it moves its descendants. A box without
// live children behaves like any other node and uses its [Style] size.
//
// # Collections
//
// [Collection] is an ordered set of node and edge IDs with union, subtraction
// and membership. Graph queries such as [Graph.EdgesWithin] and
// [Graph.FilterNodes] take and return collections.
//
// # Remove and Restore
//
// [Graph.Remove] detaches a collection, together with connected edges and
// descendants, into a [Removed] batch that owns the detached elements.
// Batches merge with [Removed.Merge] and come back in one [Graph.Restore].
//
// # Scratch
//
// Every node carries a [Scratch] record for layout bookkeeping (relative
// position, position snapshot, style backup). Scratch entries are never
// serialized or rendered and survive remove/restore.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. A layout run owns the
// graph exclusively until it finishes.
package compound
