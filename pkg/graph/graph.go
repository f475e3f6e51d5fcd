package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/metagraph/pkg/dag"
)

// MarshalGraph converts a built graph to JSON bytes.
func MarshalGraph(g *dag.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalSnapshot converts an existing snapshot to JSON bytes.
func MarshalSnapshot(s Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *dag.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a graph snapshot as JSON to an io.Writer.
func WriteGraph(g *dag.Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// UnmarshalGraph decodes a JSON snapshot.
func UnmarshalGraph(data []byte) (Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// ReadGraphFile reads a JSON snapshot from a file.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

func writeGraphTo(g *dag.Graph, w io.Writer) error {
	return encode(FromDAG(g), w)
}

func encode(s Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return data, nil
}
