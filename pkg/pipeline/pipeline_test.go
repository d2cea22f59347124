package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"jpg", false},
		{"dot", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true},
		{"jpeg", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Invalid format: %v, want INVALID_INPUT", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.Default.Name != DefaultAlgorithm {
		t.Errorf("default = %q, want %q", o.Default.Name, DefaultAlgorithm)
	}
	if o.Logger == nil {
		t.Error("logger not set")
	}

	bad := Options{Boxes: map[string]layout.Config{"": {Name: "grid"}}}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("empty box type: %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsFromParams(t *testing.T) {
	opts, err := OptionsFromParams(layout.Params{
		"defaultLayout":      map[string]any{"name": "layered", "rank_dir": "LR"},
		"namespaceBoxLayout": map[string]any{"name": "grid"},
		"animate":            false,
	})
	if err != nil {
		t.Fatalf("OptionsFromParams: %v", err)
	}
	if opts.Default.Name != "layered" || opts.Default.Params["rank_dir"] != "LR" {
		t.Errorf("default = %+v", opts.Default)
	}
	if opts.Boxes["namespace"].Name != "grid" {
		t.Errorf("boxes = %+v", opts.Boxes)
	}
	if _, ok := opts.Params["namespaceBoxLayout"]; ok {
		t.Error("box configuration leaked into params")
	}
	if opts.Params["animate"] != false {
		t.Errorf("params = %v", opts.Params)
	}
}

func testGraph(t *testing.T) *compound.Graph {
	t.Helper()
	g := compound.New(nil)
	for _, n := range []compound.Node{
		{ID: "P", Box: compound.BoxApp},
		{ID: "a", Parent: "P"},
		{ID: "b", Parent: "P"},
		{ID: "x"},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(compound.Edge{ID: "ax", Source: "a", Target: "x"}); err != nil {
		t.Fatal(err)
	}
	return g
}

func testOptions() Options {
	return Options{
		Default: layout.Config{Name: "grid", Params: layout.Params{"order": "input"}},
		Boxes:   map[string]layout.Config{"app": {Name: "grid", Params: layout.Params{"order": "input", "cols": 2}}},
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(fc, nil, log.New(io.Discard))
}

func positions(g *compound.Graph) map[string]compound.Point {
	out := make(map[string]compound.Point)
	for _, n := range g.Nodes() {
		out[n.ID] = g.Position(n.ID)
	}
	return out
}

func TestLayoutUsesCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	g1 := testGraph(t)
	l1, hit, err := r.LayoutWithCacheInfo(ctx, g1, testOptions())
	if err != nil {
		t.Fatalf("first layout: %v", err)
	}
	if hit {
		t.Error("first layout should miss the cache")
	}
	if l1.Algorithm != "grid" || l1.RunID == "" {
		t.Errorf("layout = %+v", l1)
	}

	g2 := testGraph(t)
	l2, hit, err := r.LayoutWithCacheInfo(ctx, g2, testOptions())
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if !hit || !l2.Cached {
		t.Error("second layout should hit the cache")
	}
	if l2.RunID != l1.RunID {
		t.Errorf("cached run id = %s, want %s", l2.RunID, l1.RunID)
	}

	want := positions(g1)
	for id, p := range positions(g2) {
		if p != want[id] {
			t.Errorf("%s at %v from cache, want %v", id, p, want[id])
		}
	}

	refresh := testOptions()
	refresh.Refresh = true
	if _, hit, err := r.LayoutWithCacheInfo(ctx, testGraph(t), refresh); err != nil || hit {
		t.Errorf("refresh: hit %v, err %v", hit, err)
	}
}

func TestLayoutKeyDependsOnOptions(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	if _, err := r.Layout(ctx, testGraph(t), testOptions()); err != nil {
		t.Fatal(err)
	}
	other := testOptions()
	other.Boxes["app"] = layout.Config{Name: "grid", Params: layout.Params{"cols": 1}}
	if _, hit, err := r.LayoutWithCacheInfo(ctx, testGraph(t), other); err != nil || hit {
		t.Errorf("changed options: hit %v, err %v", hit, err)
	}
}

func TestUnhashableGraphSkipsCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	l, err := r.Layout(ctx, testGraph(t), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	opts := testOptions()
	emptyKey := r.Keyer.LayoutKey(cache.Hash(nil), opts.LayoutKeyOpts())
	if err := r.Cache.Set(ctx, emptyKey, data, r.TTL); err != nil {
		t.Fatal(err)
	}

	g := testGraph(t)
	x, _ := g.Node("x")
	x.Meta["handle"] = make(chan int)

	for i := range 2 {
		got, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
		if err != nil {
			t.Fatalf("layout %d: %v", i, err)
		}
		if hit || got.Cached {
			t.Fatalf("layout %d of an unhashable graph should not use the cache", i)
		}
		if got.RunID == l.RunID {
			t.Errorf("layout %d reused run %s", i, l.RunID)
		}
	}
}

func TestLayoutInvalidConfig(t *testing.T) {
	r := newTestRunner(t)
	opts := Options{Default: layout.Config{Name: "no-such-layout"}}

	g := testGraph(t)
	before := positions(g)
	if _, err := r.Layout(context.Background(), g, opts); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want INVALID_CONFIG", err)
	}
	for id, p := range positions(g) {
		if p != before[id] {
			t.Errorf("%s moved to %v on a config error", id, p)
		}
	}
}

func TestExecuteRendersFormats(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	opts := testOptions()
	opts.Formats = []string{"json", "dot"}
	res, err := r.Execute(ctx, testGraph(t), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.GraphHash == "" {
		t.Error("graph hash not set")
	}

	l, err := graph.UnmarshalLayout(res.Artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(l.Graph.Nodes) != 4 {
		t.Errorf("json artifact nodes = %d", len(l.Graph.Nodes))
	}
	if !bytes.HasPrefix(res.Artifacts["dot"], []byte("digraph G {")) {
		t.Errorf("dot artifact = %.40s", res.Artifacts["dot"])
	}
	if !strings.Contains(string(res.Artifacts["dot"]), `"a" -> "x";`) {
		t.Error("dot artifact is missing the edge")
	}

	again, err := r.Execute(ctx, testGraph(t), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("cache info = %+v, want both hits", again.CacheInfo)
	}
}

func TestExecuteRejectsUnknownFormat(t *testing.T) {
	opts := testOptions()
	opts.Formats = []string{"pdf"}
	if _, err := newTestRunner(t).Execute(context.Background(), testGraph(t), opts); err == nil {
		t.Fatal("expected error")
	}
}
