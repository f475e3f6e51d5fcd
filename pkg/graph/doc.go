// Package graph provides serialization types for built processing graphs.
//
// This package defines the canonical wire format for a graph snapshot, used
// for JSON files, API responses and cached artifacts.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Graph]: Serialization type (this package)
//   - pkg/dag.Graph: Live engine instance
//
// Use [FromDAG] to take a snapshot; it copies every node, link and value,
// so the snapshot stays valid after the engine graph is mutated or closed.
//
// # Graph Serialization
//
// Snapshots use a node-link JSON format:
//
//	{
//	  "name": "cartoon",
//	  "chain": ["input", "passthrough", ..., "output"],
//	  "nodes": [{"id": "dog", "kind": "difference-of-gaussians", "params": {"radius1": 1.2}}],
//	  "links": [{"from": "levels", "to": "subchain3", "slot": "input"}]
//	}
//
// Common operations:
//
//	data, _ := graph.MarshalGraph(g)         // dag.Graph → []byte
//	graph.WriteGraphFile(g, "snapshot.json") // dag.Graph → File
//	snap, _ := graph.UnmarshalGraph(data)    // []byte → Graph
//
// # Concurrency
//
// Snapshots are plain values. Taking one reads the engine graph, so the
// caller must hold whatever lock serializes mutations of that graph.
package graph
