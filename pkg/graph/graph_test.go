package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
)

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *compound.Graph
		wantNodes int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name:  "Empty",
			build: func() *compound.Graph { return compound.New(nil) },
		},
		{
			name: "BoxDerivedPosition",
			build: func() *compound.Graph {
				g := compound.New(nil)
				_ = g.AddNode(compound.Node{ID: "P", Box: compound.BoxApp, Position: compound.Point{X: 999, Y: 999}})
				_ = g.AddNode(compound.Node{ID: "A", Parent: "P", Position: compound.Point{X: 5, Y: 7}})
				_ = g.AddNode(compound.Node{ID: "B", Parent: "P", Position: compound.Point{X: 50, Y: 3}})
				_ = g.AddEdge(compound.Edge{ID: "ab", Source: "A", Target: "B"})
				return g
			},
			wantNodes: 3,
			wantEdges: 1,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].X != 5 || g.Nodes[0].Y != 3 {
					t.Errorf("box position = (%v,%v), want (5,3)", g.Nodes[0].X, g.Nodes[0].Y)
				}
				if g.Nodes[0].Box != "app" {
					t.Errorf("box = %q, want app", g.Nodes[0].Box)
				}
			},
		},
		{
			name: "StyleClassesMeta",
			build: func() *compound.Graph {
				g := compound.New(compound.Metadata{"source": "k8s"})
				n := compound.Node{
					ID:    "db",
					Style: compound.Style{Shape: compound.ShapeBarrel, Width: 30},
					Meta:  compound.Metadata{"tier": "data"},
				}
				n.AddClass("stateful")
				_ = g.AddNode(n)
				return g
			},
			wantNodes: 1,
			check: func(t *testing.T, g Graph) {
				n := g.Nodes[0]
				if n.Style == nil || n.Style.Shape != "barrel" || n.Style.Width != 30 {
					t.Errorf("style = %+v", n.Style)
				}
				if len(n.Classes) != 1 || n.Classes[0] != "stateful" {
					t.Errorf("classes = %v", n.Classes)
				}
				if n.Meta["tier"] != "data" {
					t.Errorf("meta = %v", n.Meta)
				}
				if g.Meta["source"] != "k8s" {
					t.Errorf("graph meta = %v", g.Meta)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.build())
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantCode  errors.Code
		wantErr   bool
		check     func(t *testing.T, g *compound.Graph)
	}{
		{
			name: "Valid",
			input: `{
				"nodes": [
					{"id": "C", "box": "cluster"},
					{"id": "A", "parent": "C", "x": 4, "y": 8, "meta": {"kind": "pod"}},
					{"id": "B", "style": {"width": 80, "height": 20}}
				],
				"edges": [{"id": "ab", "source": "A", "target": "B"}]
			}`,
			wantNodes: 3,
			wantEdges: 1,
			check: func(t *testing.T, g *compound.Graph) {
				a, ok := g.Node("A")
				if !ok {
					t.Fatal("node A not found")
				}
				if a.Meta["kind"] != "pod" {
					t.Errorf("kind = %v, want pod", a.Meta["kind"])
				}
				if p, _ := g.Parent("A"); p != "C" {
					t.Errorf("parent = %q, want C", p)
				}
				if got := g.Position("C"); got != (compound.Point{X: 4, Y: 8}) {
					t.Errorf("C position = %v, want (4,8)", got)
				}
				if got := g.Size("B"); got != (compound.Size{W: 80, H: 20}) {
					t.Errorf("B size = %v", got)
				}
			},
		},
		{
			name:  "Empty",
			input: `{"nodes": [], "edges": []}`,
		},
		{
			name:    "InvalidJSON",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:     "UnknownParent",
			input:    `{"nodes": [{"id": "A", "parent": "nope"}], "edges": []}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "ParentNotBox",
			input:    `{"nodes": [{"id": "P"}, {"id": "A", "parent": "P"}], "edges": []}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "DanglingEdge",
			input:    `{"nodes": [{"id": "A"}], "edges": [{"source": "A", "target": "Z"}]}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "DuplicateNode",
			input:    `{"nodes": [{"id": "A"}, {"id": "A"}], "edges": []}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "EmptyID",
			input:    `{"nodes": [{"id": ""}], "edges": []}`,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantCode != "" && !errors.Is(err, tt.wantCode) {
					t.Errorf("error code = %s, want %s", errors.GetCode(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if got := g.NodeCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := g.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestRoundTripKeepsPositions(t *testing.T) {
	g := compound.New(nil)
	_ = g.AddNode(compound.Node{ID: "N", Box: compound.BoxNamespace, Style: compound.Style{Shape: compound.ShapeBarrel}})
	_ = g.AddNode(compound.Node{ID: "p", Parent: "N", Position: compound.Point{X: 10, Y: 10}})
	_ = g.AddNode(compound.Node{ID: "q", Parent: "N", Position: compound.Point{X: 70, Y: 10}})
	_ = g.AddNode(compound.Node{ID: "x", Position: compound.Point{X: 200, Y: 0}})

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	for _, id := range []string{"N", "p", "q", "x"} {
		if got, want := back.Position(id), g.Position(id); got != want {
			t.Errorf("%s position = %v, want %v", id, got, want)
		}
	}
	n, _ := back.Node("N")
	if n.Style.Shape != compound.ShapeBarrel {
		t.Errorf("N shape = %q, want barrel", n.Style.Shape)
	}
}

func TestReadGraphFile(t *testing.T) {
	content := `{"nodes": [{"id": "A"}], "edges": []}`
	path := filepath.Join(t.TempDir(), "test.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("nodes = %d, want 1", g.NodeCount())
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestBounds(t *testing.T) {
	g := compound.New(nil)
	if got := Bounds(g); got != (compound.Rect{}) {
		t.Errorf("empty bounds = %v", got)
	}
	_ = g.AddNode(compound.Node{ID: "P", Box: compound.BoxApp})
	_ = g.AddNode(compound.Node{ID: "a", Parent: "P", Position: compound.Point{X: -10, Y: 0}})
	_ = g.AddNode(compound.Node{ID: "b", Position: compound.Point{X: 100, Y: 50}, Style: compound.Style{Width: 20, Height: 10}})

	want := compound.Rect{X1: -10, Y1: 0, X2: 120, Y2: 60}
	if got := Bounds(g); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
}

func TestLayoutApply(t *testing.T) {
	g := compound.New(nil)
	_ = g.AddNode(compound.Node{ID: "P", Box: compound.BoxApp})
	_ = g.AddNode(compound.Node{ID: "a", Parent: "P"})
	_ = g.AddNode(compound.Node{ID: "b"})

	l := Layout{Algorithm: "grid", Graph: Graph{Nodes: []Node{
		{ID: "P", Box: "app", X: 300, Y: 300},
		{ID: "a", Parent: "P", X: 30, Y: 40},
		{ID: "b", X: 100, Y: 0},
		{ID: "gone", X: 1, Y: 1},
	}}}

	if got := l.Apply(g); got != 2 {
		t.Errorf("moved = %d, want 2", got)
	}
	if got := g.Position("a"); got != (compound.Point{X: 30, Y: 40}) {
		t.Errorf("a = %v", got)
	}
	if got := g.Position("P"); got != (compound.Point{X: 30, Y: 40}) {
		t.Errorf("P = %v, want derived (30,40)", got)
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := Layout{RunID: "r", Algorithm: "layered", Width: 10, Height: 20,
		Anomalies: []Anomaly{{Node: "a", Box: "P", Reason: "child has no relative position"}}}
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.Algorithm != "layered" || got.Width != 10 || len(got.Anomalies) != 1 {
		t.Errorf("layout = %+v", got)
	}

	if _, err := UnmarshalLayout([]byte(`{"run_id": "x"}`)); err == nil {
		t.Error("expected error for layout without algorithm")
	}
}
