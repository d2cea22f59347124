package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/boxlayout/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Layout.Default.Name != "layered" {
		t.Errorf("default layout = %q", cfg.Layout.Default.Name)
	}
	if cfg.Cache.Backend != BackendFile || cfg.Store.Backend != BackendMemory {
		t.Errorf("backends = %s/%s", cfg.Cache.Backend, cfg.Store.Backend)
	}
}

func TestParse(t *testing.T) {
	data := `
[layout]
order = ["app", "namespace", "cluster", "region"]

[layout.default]
name = "layered"
params = { rank_dir = "LR", rank_sep = 80 }

[layout.namespace]
name = "grid"

[layout.region]
name = "graphviz"
params = { engine = "fdp" }

[cache]
backend = "redis"
ttl = "12h"
redis_addr = "localhost:6379"

[server]
addr = ":9090"
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if want := []string{"app", "namespace", "cluster", "region"}; !slices.Equal(cfg.Layout.Order, want) {
		t.Errorf("order = %v", cfg.Layout.Order)
	}
	if cfg.Layout.Default.Params.String("rank_dir", "") != "LR" || cfg.Layout.Default.Params.Float("rank_sep", 0) != 80 {
		t.Errorf("default params = %v", cfg.Layout.Default.Params)
	}
	if cfg.Layout.Boxes["namespace"].Name != "grid" {
		t.Errorf("namespace = %+v", cfg.Layout.Boxes["namespace"])
	}
	if cfg.Layout.Boxes["region"].Params.String("engine", "") != "fdp" {
		t.Errorf("region = %+v", cfg.Layout.Boxes["region"])
	}
	if cfg.Cache.TTL != 12*time.Hour || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.LayoutTimeout != 30*time.Second || cfg.Store.Backend != BackendMemory {
		t.Errorf("defaults lost: server %+v store %+v", cfg.Server, cfg.Store)
	}

	opts := cfg.PipelineOptions()
	if opts.Default.Name != "layered" || opts.Boxes["namespace"].Name != "grid" || len(opts.Order) != 4 {
		t.Errorf("pipeline options = %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Syntax", `[cache`},
		{"UnknownCacheBackend", "[cache]\nbackend = \"memcached\""},
		{"RedisWithoutAddr", "[cache]\nbackend = \"redis\""},
		{"UnknownStoreBackend", "[store]\nbackend = \"postgres\""},
		{"MongoWithoutURI", "[store]\nbackend = \"mongo\""},
		{"BoxWithoutName", "[layout.app]\nparams = { cols = 2 }"},
		{"EmptyDefault", "[layout.default]\nname = \"\""},
		{"BadDuration", "[cache]\nttl = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestParseReportsUnknownKeys(t *testing.T) {
	cfg, err := Parse([]byte("[cahce]\nbackend = \"none\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !slices.Contains(cfg.Unknown, "cahce.backend") {
		t.Errorf("unknown = %v", cfg.Unknown)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("expected defaults, got %+v", cfg.Cache)
	}

	path := filepath.Join(dir, "boxlayout", FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"none\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load from XDG: %v", err)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("backend = %q, want none", cfg.Cache.Backend)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte("[layout.app]\nname = \"grid\"\nparams = { cols = 3 }\n[cache]\nttl = \"90m\"\n"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse encoded config: %v\n%s", err, buf.String())
	}
	if back.Layout.Boxes["app"].Params.Int("cols", 0) != 3 {
		t.Errorf("app params = %v", back.Layout.Boxes["app"].Params)
	}
	if back.Cache.TTL != 90*time.Minute {
		t.Errorf("ttl = %v", back.Cache.TTL)
	}
	if back.Server != cfg.Server {
		t.Errorf("server = %+v, want %+v", back.Server, cfg.Server)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	cfg := Default()
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg-cache", "boxlayout") {
		t.Errorf("CacheDir = %q", dir)
	}
	if dir, _ := cfg.StoreDir(); dir != filepath.Join("/tmp/xdg-data", "boxlayout", "layouts") {
		t.Errorf("StoreDir = %q", dir)
	}

	cfg.Cache.Dir = "/custom"
	if dir, _ := cfg.CacheDir(); dir != "/custom" {
		t.Errorf("CacheDir override = %q", dir)
	}
}
