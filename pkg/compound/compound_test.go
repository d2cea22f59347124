package compound

import (
	"errors"
	"slices"
	"testing"
)

func buildBoxed(t *testing.T) *Graph {
	t.Helper()
	g := New(nil)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.AddNode(Node{ID: "ns", Box: BoxNamespace}))
	must(g.AddNode(Node{ID: "app", Box: BoxApp, Parent: "ns"}))
	must(g.AddNode(Node{ID: "a", Parent: "app", Position: Point{X: 0, Y: 0}}))
	must(g.AddNode(Node{ID: "b", Parent: "app", Position: Point{X: 60, Y: 0}}))
	must(g.AddNode(Node{ID: "x", Position: Point{X: 200, Y: 200}}))
	must(g.AddEdge(Edge{ID: "ab", Source: "a", Target: "b"}))
	must(g.AddEdge(Edge{ID: "bx", Source: "b", Target: "x"}))
	return g
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{name: "Valid", node: Node{ID: "n"}},
		{name: "EmptyID", node: Node{}, wantErr: ErrInvalidNodeID},
		{name: "Duplicate", node: Node{ID: "a"}, wantErr: ErrDuplicateNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			_ = g.AddNode(Node{ID: "a"})
			err := g.AddNode(tt.node)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil {
				n, _ := g.Node(tt.node.ID)
				if n.Meta == nil {
					t.Error("Meta should be initialized")
				}
			}
		})
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{name: "Valid", edge: Edge{ID: "e2", Source: "a", Target: "b"}},
		{name: "EmptyID", edge: Edge{Source: "a", Target: "b"}, wantErr: ErrInvalidEdgeID},
		{name: "Duplicate", edge: Edge{ID: "e1", Source: "a", Target: "b"}, wantErr: ErrDuplicateEdgeID},
		{name: "UnknownSource", edge: Edge{ID: "e3", Source: "z", Target: "b"}, wantErr: ErrUnknownSourceNode},
		{name: "UnknownTarget", edge: Edge{ID: "e4", Source: "a", Target: "z"}, wantErr: ErrUnknownTargetNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			_ = g.AddNode(Node{ID: "a"})
			_ = g.AddNode(Node{ID: "b"})
			_ = g.AddEdge(Edge{ID: "e1", Source: "a", Target: "b"})
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantErr error
	}{
		{
			name:  "Valid",
			nodes: []Node{{ID: "box", Box: BoxApp}, {ID: "n", Parent: "box"}},
		},
		{
			name:    "UnknownParent",
			nodes:   []Node{{ID: "n", Parent: "missing"}},
			wantErr: ErrUnknownParent,
		},
		{
			name:    "ParentNotBox",
			nodes:   []Node{{ID: "p"}, {ID: "n", Parent: "p"}},
			wantErr: ErrParentNotBox,
		},
		{
			name:    "Cycle",
			nodes:   []Node{{ID: "a", Box: BoxApp, Parent: "b"}, {ID: "b", Box: BoxNamespace, Parent: "a"}},
			wantErr: ErrParentCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			for _, n := range tt.nodes {
				if err := g.AddNode(n); err != nil {
					t.Fatal(err)
				}
			}
			if err := g.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTopology(t *testing.T) {
	g := buildBoxed(t)

	if p, ok := g.Parent("a"); !ok || p != "app" {
		t.Errorf("Parent(a) = %q, %v; want app", p, ok)
	}
	if _, ok := g.Parent("x"); ok {
		t.Error("x should have no parent")
	}
	if got := g.Children("app"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Children(app) = %v", got)
	}
	if got := g.Descendants("ns"); !slices.Equal(got, []string{"app", "a", "b"}) {
		t.Errorf("Descendants(ns) = %v", got)
	}
	if got := g.ConnectedEdges("b"); !slices.Equal(got, []string{"ab", "bx"}) {
		t.Errorf("ConnectedEdges(b) = %v", got)
	}
	within := g.EdgesWithin(NewCollection([]string{"a", "b"}, nil))
	if got := within.Edges(); !slices.Equal(got, []string{"ab"}) {
		t.Errorf("EdgesWithin = %v", got)
	}
	boxes := g.FilterNodes(g.Elements(), (*Node).IsBox)
	if got := boxes.Nodes(); !slices.Equal(got, []string{"ns", "app"}) {
		t.Errorf("FilterNodes(IsBox) = %v", got)
	}
}

func TestRemoveRestore(t *testing.T) {
	g := buildBoxed(t)

	removed := g.Remove(NewCollection([]string{"a", "b"}, nil))
	if removed.NodeCount() != 2 || removed.EdgeCount() != 2 {
		t.Fatalf("removed %d nodes, %d edges; want 2, 2", removed.NodeCount(), removed.EdgeCount())
	}
	if g.HasChildren("app") {
		t.Error("app should have no live children")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}

	if err := g.Restore(removed); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if g.NodeCount() != 5 || g.EdgeCount() != 2 {
		t.Errorf("after restore: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if !slices.Equal(g.Children("app"), []string{"a", "b"}) {
		t.Errorf("Children(app) = %v", g.Children("app"))
	}
	if err := g.Restore(removed); !errors.Is(err, ErrAlreadyRestored) {
		t.Errorf("second Restore error = %v, want ErrAlreadyRestored", err)
	}
}

func TestRemoveDescendants(t *testing.T) {
	g := buildBoxed(t)

	removed := g.Remove(NewCollection([]string{"ns"}, nil))
	if removed.NodeCount() != 4 {
		t.Errorf("removed %d nodes, want 4", removed.NodeCount())
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}
	if _, ok := removed.Node("a"); !ok {
		t.Error("batch should hold a")
	}
}

func TestRestoreConflict(t *testing.T) {
	g := buildBoxed(t)
	removed := g.Remove(NewCollection([]string{"x"}, nil))
	_ = g.AddNode(Node{ID: "x"})

	if err := g.Restore(removed); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("Restore error = %v, want ErrDuplicateNodeID", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("failed restore must not change the graph, EdgeCount = %d", g.EdgeCount())
	}
}

func TestMergeBatches(t *testing.T) {
	g := buildBoxed(t)
	all := NewRemoved()
	all.Merge(g.Remove(NewCollection([]string{"a"}, nil)))
	all.Merge(g.Remove(NewCollection([]string{"b"}, nil)))

	if all.NodeCount() != 2 || all.EdgeCount() != 2 {
		t.Fatalf("merged %d nodes, %d edges", all.NodeCount(), all.EdgeCount())
	}
	c := all.Collection()
	if !c.HasNode("a") || !c.HasEdge("bx") {
		t.Error("collection should list merged elements")
	}
	if err := g.Restore(all); err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}
}

func TestScratchSurvivesRemoval(t *testing.T) {
	g := buildBoxed(t)
	n, _ := g.Node("a")
	n.Scratch().RelativePosition = &Point{X: 1, Y: 2}
	n.AddClass("marked")

	removed := g.Remove(NewCollection([]string{"a"}, nil))
	_ = g.Restore(removed)

	n, _ = g.Node("a")
	if rp := n.Scratch().RelativePosition; rp == nil || *rp != (Point{X: 1, Y: 2}) {
		t.Errorf("RelativePosition = %v", rp)
	}
	if !n.HasClass("marked") {
		t.Error("class should survive removal")
	}
	n.Scratch().Clear()
	if !n.Scratch().Empty() {
		t.Error("Clear should empty the scratch record")
	}
}

func TestClone(t *testing.T) {
	g := buildBoxed(t)
	n, _ := g.Node("a")
	n.Scratch().StyleBackup = &Style{Shape: ShapeEllipse}

	c := g.Clone()
	cn, _ := c.Node("a")
	cn.Position = Point{X: 99}
	cn.Scratch().StyleBackup.Shape = ShapeRectangle

	if n.Position.X == 99 {
		t.Error("clone shares node state")
	}
	if n.Scratch().StyleBackup.Shape != ShapeEllipse {
		t.Error("clone shares scratch state")
	}
	if c.EdgeCount() != g.EdgeCount() {
		t.Errorf("clone EdgeCount = %d", c.EdgeCount())
	}
}
