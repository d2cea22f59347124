package builtin

import (
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	got := Registry().Names()
	want := []string{"graphviz", "grid", "layered", "preset"}
	if !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
