// Package boxlayout lays out compound graphs whose nodes are grouped into
// nested boxes.
//
// # Overview
//
// A box is laid out in two roles. Internally, its children are arranged by
// the algorithm configured for its box type. Externally, the box takes part
// in the layout of the whole graph as a single opaque node, sized to fit its
// contents. [Run] performs both and puts every child back at
//
//	box final position + child offset inside the box
//
// # Phases
//
// For each box type in innermost-first order (app, namespace, cluster by
// default):
//
//  1. Sub-layout: every box of the type is laid out internally. Sibling
//     boxes run concurrently; all must stop before the next step.
//  2. Capture: each child's offset from its box's top-left is stored in the
//     child's scratch record.
//  3. Freeze: the box's style is backed up, its size fixed to its bounding
//     box, its shape set to a rectangle and the [BoxNodeClass] marker added.
//  4. Proxy edges: every edge touching a child is replaced by a synthetic
//     edge between normalized endpoints (children map to their box).
//     Self-loops are dropped and each directional pair is generated once.
//  5. Detach: the children of all boxes of the type are removed as a batch.
//
// The flattened graph (run elements minus detached ones, plus synthetic
// edges) is reset to the origin and laid out with the default algorithm.
// When it stops, box positions are snapshotted, the detached batch comes
// back, synthetic edges are dropped, children are repositioned innermost box
// first, and box styles are restored. No scratch entry survives a run.
//
// # Configuration
//
//	res, err := boxlayout.Run(ctx, g, nil, boxlayout.Options{
//	    Default: layout.Config{Name: "layered"},
//	    Boxes: map[compound.BoxType]layout.Config{
//	        compound.BoxApp: {Name: "grid"},
//	    },
//	})
//
// Box types without a configuration use the default. A missing default or an
// unknown algorithm name fails with INVALID_CONFIG before the graph is
// touched. [OptionsFromParams] accepts the flat option objects used by the
// HTTP API, where configurations live under keys such as "appBoxLayout".
//
// # Errors
//
// A sub-layout failure rolls the graph back and returns LAYOUT_FAILED. After
// the outer layout has started, restoration always runs to completion;
// children that cannot be repositioned are skipped, logged and reported as
// [Anomaly] values in the [Result].
package boxlayout
