// Package graphviz runs Graphviz engines as an asynchronous layout algorithm.
//
// The input is written as DOT with fixed-size boxes, laid out by the embedded
// Graphviz build from github.com/goccy/go-graphviz, and read back from the
// positioned DOT output. Graphviz uses a bottom-left origin and node centers;
// results are converted to top-left corners in a top-down coordinate system.
//
// Parameters:
//
//	engine    dot (default), neato, fdp, sfdp, circo, twopi or osage
//	rank_dir  TB (default), LR, BT or RL (dot only)
//	node_sep  gap between nodes in points (default 30)
//	rank_sep  gap between ranks in points (default 50)
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// Name is the registry name of the Graphviz layout.
const Name = "graphviz"

const pointsPerInch = 72.0

var engines = map[string]graphviz.Layout{
	"dot":   graphviz.DOT,
	"neato": graphviz.NEATO,
	"fdp":   graphviz.FDP,
	"sfdp":  graphviz.SFDP,
	"circo": graphviz.CIRCO,
	"twopi": graphviz.TWOPI,
	"osage": graphviz.OSAGE,
}

// New returns the Graphviz algorithm. It stops asynchronously.
func New() layout.Algorithm { return layout.Async(Name, Layout) }

// Layout computes positions for in with the configured Graphviz engine.
func Layout(ctx context.Context, in *layout.Input, p layout.Params) (layout.Result, error) {
	if len(in.Nodes) == 0 {
		return layout.Result{}, nil
	}
	engine, ok := engines[p.String("engine", "dot")]
	if !ok {
		return nil, fmt.Errorf("graphviz: unknown engine %q", p.String("engine", ""))
	}

	out, err := render(ctx, engine, ToDOT(in, p))
	if err != nil {
		return nil, err
	}
	return ParsePositions(in, out)
}

func render(ctx context.Context, engine graphviz.Layout, dot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
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
	if err := gv.SetLayout(engine).Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToDOT writes in as a directed DOT graph. Nodes are named n0, n1, ... by
// input index so the output can be parsed without quoting rules.
func ToDOT(in *layout.Input, p layout.Params) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", strings.ToUpper(p.String("rank_dir", "TB")))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(p.Float("node_sep", 30)))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(p.Float("rank_sep", 50)))
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, n := range in.Nodes {
		fmt.Fprintf(&buf, "  n%d [width=%s, height=%s];\n", i, inches(n.Size.W), inches(n.Size.H))
	}

	buf.WriteString("\n")
	idx := in.Index()
	for _, e := range in.Edges {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", idx[e.Source], idx[e.Target])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

var (
	bbRe   = regexp.MustCompile(`bb="([-0-9.e+]+),([-0-9.e+]+),([-0-9.e+]+),([-0-9.e+]+)"`)
	nodeRe = regexp.MustCompile(`(?m)^\s*n(\d+)\s*\[([^\]]*)\]`)
	posRe  = regexp.MustCompile(`\bpos="([-0-9.e+]+),([-0-9.e+]+)!?"`)
)

// ParsePositions reads node centers from positioned DOT output and converts
// them to top-left corners with y growing downward.
func ParsePositions(in *layout.Input, out []byte) (layout.Result, error) {
	top := 0.0
	if m := bbRe.FindSubmatch(out); m != nil {
		top = parseFloat(m[4])
	}

	res := make(layout.Result, len(in.Nodes))
	for _, m := range nodeRe.FindAllSubmatch(out, -1) {
		i, err := strconv.Atoi(string(m[1]))
		if err != nil || i >= len(in.Nodes) {
			continue
		}
		pos := posRe.FindSubmatch(m[2])
		if pos == nil {
			continue
		}
		node := in.Nodes[i]
		cx, cy := parseFloat(pos[1]), top-parseFloat(pos[2])
		res[node.ID] = compound.Point{X: cx - node.Size.W/2, Y: cy - node.Size.H/2}
	}
	if len(res) != len(in.Nodes) {
		return nil, fmt.Errorf("graphviz: positioned %d of %d nodes", len(res), len(in.Nodes))
	}
	return res, nil
}

func parseFloat(b []byte) float64 {
	f, _ := strconv.ParseFloat(string(b), 64)
	return f
}
