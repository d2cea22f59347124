package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/boxlayout/pkg/compound"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds node metadata to labels. When false only the ID is shown.
	Detailed bool
	// HideBoxLabels leaves box outlines unlabeled.
	HideBoxLabels bool
}

// Format is an output format supported by [Render].
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
	FormatDOT Format = "dot"
)

var formats = map[Format]graphviz.Format{
	FormatSVG: graphviz.SVG,
	FormatPNG: graphviz.PNG,
	FormatJPG: graphviz.JPG,
	FormatDOT: graphviz.XDOT,
}

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(s), "."))
	if f == "jpeg" {
		f = FormatJPG
	}
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("unsupported format %q (want svg, png, jpg or dot)", s)
	}
	return f, nil
}

var shapes = map[compound.Shape]string{
	compound.ShapeRectangle:      "box",
	compound.ShapeRoundRectangle: "box",
	compound.ShapeEllipse:        "ellipse",
	compound.ShapeTriangle:       "triangle",
	compound.ShapeDiamond:        "diamond",
	compound.ShapeHexagon:        "hexagon",
	compound.ShapeBarrel:         "cylinder",
}

const pointsPerInch = 72.0

// ToDOT converts a positioned compound graph to DOT. Boxes are written
// outermost first so inner boxes and leaves are drawn on top of them.
func ToDOT(g *compound.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [fixedsize=true, style=filled, fillcolor=white, fontsize=10];\n")
	buf.WriteString("\n")

	top := bottomEdge(g)
	for _, id := range drawOrder(g) {
		n, _ := g.Node(id)
		attrs := nodeAttrs(g, n, top, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// drawOrder lists nodes parents before children, keeping insertion order
// among siblings.
func drawOrder(g *compound.Graph) []string {
	var out []string
	var visit func(id string)
	visit = func(id string) {
		out = append(out, id)
		for _, c := range g.Children(id) {
			visit(c)
		}
	}
	for _, n := range g.Nodes() {
		if !g.IsChild(n.ID) {
			visit(n.ID)
		}
	}
	return out
}

// bottomEdge returns the largest y of any node; Graphviz y is measured up
// from there.
func bottomEdge(g *compound.Graph) float64 {
	y := 0.0
	for _, n := range g.Nodes() {
		y = max(y, g.BoundingBox(n.ID).Y2)
	}
	return y
}

func nodeAttrs(g *compound.Graph, n *compound.Node, top float64, opts Options) []string {
	bb := g.BoundingBox(n.ID)
	cx := (bb.X1 + bb.X2) / 2
	cy := top - (bb.Y1+bb.Y2)/2

	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
		"width=" + num(bb.W()/pointsPerInch),
		"height=" + num(bb.H()/pointsPerInch),
	}
	if g.HasChildren(n.ID) {
		label := n.ID
		if opts.HideBoxLabels {
			label = ""
		}
		return append(attrs, "shape=box", "style=\"rounded,dashed\"", "labelloc=t", fmt.Sprintf("label=%q", label))
	}

	shape := shapes[n.Style.Shape]
	if shape == "" {
		shape = "ellipse"
	}
	attrs = append(attrs, "shape="+shape, fmt.Sprintf("label=%q", label(n, opts.Detailed)))
	if n.Style.Shape == compound.ShapeRoundRectangle {
		attrs = append(attrs, "style=\"rounded,filled\"")
	}
	return attrs
}

func label(n *compound.Node, detailed bool) string {
	if !detailed || len(n.Meta) == 0 {
		return n.ID
	}
	parts := []string{n.ID}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return strings.Join(parts, "\n")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Render draws a DOT graph produced by [ToDOT]. Positions are taken as given.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	gvFormat, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(graphviz.NOP2).Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// RenderSVG renders g straight to SVG.
func RenderSVG(ctx context.Context, g *compound.Graph, opts Options) ([]byte, error) {
	return Render(ctx, ToDOT(g, opts), FormatSVG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed pt-sized root element with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
