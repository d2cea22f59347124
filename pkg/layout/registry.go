package layout

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownAlgorithm is returned by [Registry.Lookup] for unregistered names.
var ErrUnknownAlgorithm = errors.New("unknown layout algorithm")

// Registry maps algorithm names to implementations.
type Registry struct {
	mu    sync.RWMutex
	algos map[string]Algorithm
}

// NewRegistry creates a registry holding algos.
func NewRegistry(algos ...Algorithm) *Registry {
	r := &Registry{algos: make(map[string]Algorithm)}
	for _, a := range algos {
		r.Register(a)
	}
	return r
}

// Register adds a, replacing any algorithm with the same name.
func (r *Registry) Register(a Algorithm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.algos[a.Name()] = a
}

// Lookup returns the algorithm registered under name.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.algos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.algos))
}

// Preset keeps every node where it is.
var Preset = Sync("preset", func(_ context.Context, in *Input, _ Params) (Result, error) {
	res := make(Result, len(in.Nodes))
	for _, n := range in.Nodes {
		res[n.ID] = n.Position
	}
	return res, nil
})
