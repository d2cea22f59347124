package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/boxlayout/pkg/compound"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a compound graph to JSON bytes.
func MarshalGraph(g *compound.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(FromCompound(g), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a compound graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *compound.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(FromCompound(g), f)
}

// WriteGraph writes a compound graph as JSON to an io.Writer.
func WriteGraph(g *compound.Graph, w io.Writer) error {
	return writeJSON(FromCompound(g), w)
}

// ReadGraphFile reads a JSON file and returns the decoded compound graph.
func ReadGraphFile(path string) (*compound.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a JSON graph from an io.Reader into a compound graph.
// Structural problems (unknown parents, edges to missing nodes, duplicate
// IDs) are INVALID_GRAPH errors.
func ReadGraph(r io.Reader) (*compound.Graph, error) {
	var wg Graph
	if err := json.NewDecoder(r).Decode(&wg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToCompound(wg)
}

// UnmarshalGraph decodes JSON bytes into the wire form without building a
// compound graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	return g, nil
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
