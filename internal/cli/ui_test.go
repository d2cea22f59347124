package cli

import (
	"strings"
	"testing"
)

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name                string
		nodes, edges, boxes int
		cached              bool
		want                []string
		absent              []string
	}{
		{"fresh", 5, 3, 2, false, []string{"5 nodes", "3 edges", "2 boxes", iconFresh}, []string{iconCached}},
		{"cached", 4, 0, 0, true, []string{"4 nodes", iconCached}, []string{"edges", "boxes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statsLine(tt.nodes, tt.edges, tt.boxes, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("statsLine() = %q, lacks %q", got, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("statsLine() = %q, should not contain %q", got, a)
				}
			}
		})
	}
}

func TestKeyValue(t *testing.T) {
	got := keyValue("backend", "file")
	if !strings.HasPrefix(got, "backend") || !strings.HasSuffix(got, "file") {
		t.Errorf("keyValue() = %q", got)
	}
}
