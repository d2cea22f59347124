// Package dot renders laid-out compound graphs with Graphviz.
//
// [ToDOT] writes a graph as DOT with every node pinned at its computed
// position, so Graphviz only draws: nothing is moved. Boxes become outlined
// nodes covering their children's bounding box, drawn before the children.
// [Render] turns the DOT into SVG, PNG or JPEG using the embedded Graphviz
// build from github.com/goccy/go-graphviz.
//
//	src := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.Render(ctx, src, dot.FormatSVG)
//
// Coordinates are converted from the top-left, y-down convention of
// pkg/compound to the bottom-left, center-based points Graphviz expects.
package dot
