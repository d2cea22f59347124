package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/boxlayout/pkg/compound"
)

// =============================================================================
// Layout - Positioned Graph Record
// =============================================================================

// Layout is a laid-out graph together with the run that produced it.
type Layout struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	RunID     string    `json:"run_id" bson:"run_id"`
	Algorithm string    `json:"algorithm" bson:"algorithm"`
	Width     float64   `json:"width" bson:"width"`
	Height    float64   `json:"height" bson:"height"`
	Graph     Graph     `json:"graph" bson:"graph"`
	Anomalies []Anomaly `json:"anomalies,omitempty" bson:"anomalies,omitempty"`
	Cached    bool      `json:"cached,omitempty" bson:"-"`
	CreatedAt time.Time `json:"created_at,omitzero" bson:"created_at"`
}

// Anomaly is a child that kept its pre-run position because restoring it
// failed.
type Anomaly struct {
	Node   string `json:"node,omitempty" bson:"node,omitempty"`
	Box    string `json:"box" bson:"box"`
	Reason string `json:"reason" bson:"reason"`
}

// NewLayout captures the positions of g. The layout's size is the extent of
// g's top-level nodes measured from their top-left corner.
func NewLayout(g *compound.Graph, runID, algorithm string) Layout {
	bb := Bounds(g)
	return Layout{
		RunID:     runID,
		Algorithm: algorithm,
		Width:     bb.W(),
		Height:    bb.H(),
		Graph:     FromCompound(g),
	}
}

// Positions returns the top-left corner of every leaf node. Box positions
// follow from their children and are left out.
func (l Layout) Positions() map[string]compound.Point {
	boxes := make(map[string]bool)
	for _, n := range l.Graph.Nodes {
		if n.Parent != "" {
			boxes[n.Parent] = true
		}
	}
	out := make(map[string]compound.Point, len(l.Graph.Nodes))
	for _, n := range l.Graph.Nodes {
		if boxes[n.ID] {
			continue
		}
		out[n.ID] = compound.Point{X: n.X, Y: n.Y}
	}
	return out
}

// Apply moves the leaf nodes of g to the positions recorded in l. Nodes the
// layout does not know are left where they are.
func (l Layout) Apply(g *compound.Graph) int {
	moved := 0
	for id, p := range l.Positions() {
		if g.HasChildren(id) {
			continue
		}
		if err := g.SetPosition(id, p); err == nil {
			moved++
		}
	}
	return moved
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Algorithm == "" {
		return Layout{}, fmt.Errorf("layout must name its algorithm")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
