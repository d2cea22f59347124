// Package pkg holds the libraries behind boxlayout.
//
// # Overview
//
// Boxlayout lays out compound graphs: graphs whose nodes are grouped into
// nested boxes (apps inside namespaces inside clusters). Every box is laid
// out internally with its own algorithm and then takes part in the layout of
// the whole graph as a single node; its contents follow it.
//
// # Architecture
//
//	graph.json
//	     ↓
//	[graph] wire format → [compound] in-memory graph
//	     ↓
//	[pipeline] cache lookup ([cache]) → [boxlayout] run
//	     ↓                                  ↓
//	     ↓                     [layout] algorithms: grid, layered, graphviz
//	     ↓
//	[graph.Layout] record → [store] (API) / [render/dot] SVG, PNG, JPG, DOT
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("shop.json")
//	res, err := boxlayout.Run(ctx, g, nil, boxlayout.Options{
//	    Default: layout.Config{Name: "layered"},
//	    Boxes: map[compound.BoxType]layout.Config{
//	        compound.BoxApp: {Name: "grid"},
//	    },
//	})
//	svg, _ := dot.RenderSVG(ctx, g, dot.Options{})
//
// With caching and rendering in one step:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	out, err := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"svg"}})
//
// # Packages
//
//   - [compound]: nodes, edges, boxes, collections, remove/restore batches
//   - [layout]: algorithm contract, runs and events, registry
//   - [boxlayout]: the box-by-box layout and restore
//   - [graph]: JSON wire format and layout records
//   - [render/dot]: DOT export and Graphviz rendering
//   - [pipeline]: cached layout and rendering shared by CLI and API
//   - [cache], [store]: layout cache and persisted layout records
//   - [config]: boxlayout.toml
//   - [errors], [observability], [buildinfo]: ambient support
//
// [compound]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/compound
// [layout]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/layout
// [boxlayout]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/boxlayout
// [graph]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/graph
// [graph.Layout]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/graph#Layout
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/buildinfo
package pkg
