package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/config"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/store"
)

const testGraph = `{
  "nodes": [
    {"id": "P", "box": "app", "x": 0, "y": 0},
    {"id": "a", "parent": "P", "x": 0, "y": 0},
    {"id": "b", "parent": "P", "x": 0, "y": 0},
    {"id": "x", "x": 0, "y": 0}
  ],
  "edges": [{"id": "ax", "source": "a", "target": "x"}]
}`

const gridOptions = `{
  "defaultLayout": {"name": "grid", "order": "input"},
  "appBoxLayout": {"name": "grid", "order": "input", "cols": 2}
}`

func newTestServer(t *testing.T, cfg config.Server) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	defaults := pipeline.Options{Default: layout.Config{Name: "layered"}}
	srv := httptest.NewServer(New(runner, store.NewMemoryStore(), defaults, cfg, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func createBody(graphJSON, options string, formats ...string) string {
	req := map[string]any{"graph": json.RawMessage(graphJSON)}
	if options != "" {
		req["options"] = json.RawMessage(options)
	}
	if len(formats) > 0 {
		req["formats"] = formats
	}
	data, _ := json.Marshal(req)
	return string(data)
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, config.Default().Server)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[map[string]string](t, resp); got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestAlgorithms(t *testing.T) {
	srv := newTestServer(t, config.Default().Server)
	got := decode[map[string][]string](t, do(t, http.MethodGet, srv.URL+"/v1/algorithms", ""))
	want := []string{"graphviz", "grid", "layered", "preset"}
	if strings.Join(got["algorithms"], ",") != strings.Join(want, ",") {
		t.Errorf("algorithms = %v, want %v", got["algorithms"], want)
	}
}

func TestCreateAndFetchLayout(t *testing.T) {
	srv := newTestServer(t, config.Default().Server)

	resp := do(t, http.MethodPost, srv.URL+"/v1/layouts", createBody(testGraph, gridOptions, "json"))
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	created := decode[CreateResponse](t, resp)
	if created.ID == "" {
		t.Fatal("no record id")
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/layouts/"+created.ID {
		t.Errorf("Location = %q", loc)
	}
	if created.Layout.Algorithm != "grid" {
		t.Errorf("algorithm = %q, want grid", created.Layout.Algorithm)
	}
	if _, ok := created.Artifacts["json"]; !ok {
		t.Error("json artifact missing")
	}
	if created.Stats.NodeCount != 4 {
		t.Errorf("node count = %d, want 4", created.Stats.NodeCount)
	}

	got := do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID, "")
	if got.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", got.StatusCode)
	}
	l := decode[graph.Layout](t, got)
	if l.ID != created.ID || len(l.Graph.Nodes) != 4 {
		t.Errorf("stored layout = %s with %d nodes", l.ID, len(l.Graph.Nodes))
	}
	if l.Positions()["a"] == l.Positions()["b"] {
		t.Errorf("a and b share position %v", l.Positions()["a"])
	}

	list := decode[map[string][]Summary](t, do(t, http.MethodGet, srv.URL+"/v1/layouts?limit=10", ""))
	if len(list["layouts"]) != 1 || list["layouts"][0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	dotResp := do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID+"/render/dot", "")
	if dotResp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d", dotResp.StatusCode)
	}
	if ct := dotResp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	src, _ := io.ReadAll(dotResp.Body)
	if !bytes.HasPrefix(src, []byte("digraph G {")) {
		t.Errorf("render body = %q", src)
	}
}

func TestCreateLayoutUsesServerDefaults(t *testing.T) {
	srv := newTestServer(t, config.Default().Server)
	resp := do(t, http.MethodPost, srv.URL+"/v1/layouts", createBody(testGraph, ""))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[CreateResponse](t, resp); got.Layout.Algorithm != "layered" {
		t.Errorf("algorithm = %q, want layered", got.Layout.Algorithm)
	}
}

func TestCreateLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed body", `{"graph": `, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown algorithm", createBody(testGraph, `{"defaultLayout": {"name": "nope"}}`), http.StatusBadRequest, "INVALID_CONFIG"},
		{"config without name", createBody(testGraph, `{"appBoxLayout": {"cols": 2}}`), http.StatusBadRequest, "INVALID_CONFIG"},
		{"dangling edge", createBody(`{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "z"}]}`, ""), http.StatusBadRequest, "INVALID_GRAPH"},
		{"unknown format", createBody(testGraph, "", "gif"), http.StatusBadRequest, "INVALID_INPUT"},
	}

	srv := newTestServer(t, config.Default().Server)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/layouts", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decode[errorBody](t, resp); got.Error.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Error.Code, tt.code, got.Error.Message)
			}
		})
	}
}

func TestCreateLayoutBodyLimit(t *testing.T) {
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 16
	srv := newTestServer(t, cfg)

	resp := do(t, http.MethodPost, srv.URL+"/v1/layouts", createBody(testGraph, ""))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusRequestEntityTooLarge)
	}
}

func TestLayoutNotFound(t *testing.T) {
	srv := newTestServer(t, config.Default().Server)
	const missing = "00000000-0000-4000-8000-000000000000"

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"get missing", http.MethodGet, "/v1/layouts/" + missing, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/v1/layouts/" + missing, http.StatusNotFound},
		{"render missing", http.MethodGet, "/v1/layouts/" + missing + "/render/svg", http.StatusNotFound},
		{"malformed id", http.MethodGet, "/v1/layouts/not-an-id", http.StatusBadRequest},
		{"bad render format", http.MethodGet, "/v1/layouts/" + missing + "/render/gif", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/v1/layouts?limit=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := do(t, tt.method, srv.URL+tt.path, ""); resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestDeleteLayout(t *testing.T) {
	srv := newTestServer(t, config.Default().Server)
	created := decode[CreateResponse](t, do(t, http.MethodPost, srv.URL+"/v1/layouts", createBody(testGraph, gridOptions)))

	if resp := do(t, http.MethodDelete, srv.URL+"/v1/layouts/"+created.ID, ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}
