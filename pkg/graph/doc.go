// Package graph provides the wire format for compound graphs and their
// layouts.
//
// This package defines the JSON (and BSON) representation used for input
// files, API requests and responses, cached results and stored layout
// records.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Graph], [Layout]: serialization types (this package)
//   - pkg/compound.Graph: in-memory graph the layout engine works on
//
// Use [FromCompound] and [ToCompound] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link format. Boxes are nodes with a "box" type; other
// nodes name their box in "parent":
//
//	{
//	  "nodes": [
//	    {"id": "shop", "box": "app"},
//	    {"id": "web", "parent": "shop"},
//	    {"id": "db", "parent": "shop", "style": {"shape": "barrel"}}
//	  ],
//	  "edges": [{"id": "e1", "source": "web", "target": "db"}]
//	}
//
// Node positions ("x", "y") are top-left corners. A box's position is
// derived from its children and is written for reference only.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("topology.json")  // File → compound.Graph
//	graph.WriteGraphFile(g, "laid-out.json")      // compound.Graph → File
//	data, _ := graph.MarshalGraph(g)              // compound.Graph → []byte
//	wire, _ := graph.UnmarshalGraph(data)         // []byte → Graph
//
// # Layout Records
//
// A [Layout] wraps a positioned [Graph] with the run that produced it: the
// algorithm, the overall bounds and any restore anomalies. Layouts are what
// the cache and the layout store hold.
package graph
