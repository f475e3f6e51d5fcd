// Package pkg provides the core libraries for Metagraph, a compiler for
// image-processing operation graphs.
//
// # Overview
//
// A Metagraph effect is a small directed graph of image operations (blurs,
// levels, blends) described declaratively: a set of interior nodes, a primary
// chain from the input proxy to the output proxy, a list of exposed
// parameters that redirect onto node parameters, and an optional mode switch
// that relinks one position of the chain between alternative blend nodes.
// The pkg directory is organized into four main areas:
//
//  1. [dag] - The graph engine (build, redirect, mode switch, validate)
//  2. [catalog] and [effects] - Operation kinds and the bundled effects
//  3. [io] and [graph] - Definition formats and the graph snapshot
//  4. [pipeline] - Orchestration (load → configure → render) with caching
//
// # Architecture
//
// The typical data flow through Metagraph:
//
//	Definition (bundled effect, TOML, HCL or JSON file)
//	         ↓
//	    [dag] package (build against a [catalog])
//	         ↓
//	    Apply values, SetMode, Validate
//	         ↓
//	    [graph] snapshot
//	         ↓
//	    [render/nodelink] (DOT, SVG, PNG, PDF) or JSON
//
// # Quick Start
//
// Build the cartoon effect, turn up the chroma and switch the blend mode:
//
//	import (
//	    "github.com/matzehuels/metagraph/pkg/catalog"
//	    "github.com/matzehuels/metagraph/pkg/dag"
//	    "github.com/matzehuels/metagraph/pkg/effects"
//	    "github.com/matzehuels/metagraph/pkg/graph"
//	    "github.com/matzehuels/metagraph/pkg/render/nodelink"
//	)
//
//	// 1. Build the graph
//	g, _ := dag.Build(effects.Cartoon(), catalog.Default(), dag.Options{})
//	defer g.Close()
//
//	// 2. Set exposed parameters
//	_ = g.Apply("sat", 2.5)
//
//	// 3. Relink the blend position
//	active, _ := g.SetMode(effects.BlendMultiply)
//
//	// 4. Check the result and draw it
//	if err := g.Validate().Err(); err != nil {
//	    return err
//	}
//	dot := nodelink.ToDOT(graph.FromDAG(g), nodelink.Options{Detailed: true})
//
// # Main Packages
//
// [dag] - The graph engine. [dag.Build] instantiates a definition, links the
// primary chain and declared inputs, binds redirects and the mode switch.
// [dag.Graph.Apply] writes an exposed value to every redirect target,
// [dag.Graph.SetMode] splices the chosen alternative into the chain and
// [dag.Graph.Validate] reports missing links, cycles and dangling auxiliary
// inputs.
//
// [catalog] - Operation kinds and their parameter specs. [catalog.Default]
// holds the built-in operations the bundled effects use.
//
// [effects] - The bundled cartoon and plastic wrap effects.
//
// [io] - Reading and writing definitions and presets as TOML, HCL or JSON.
//
// [graph] - The JSON snapshot of a configured graph.
//
// [render/nodelink] - DOT generation and Graphviz rendering.
//
// [render] - SVG to PDF/PNG conversion.
//
// [pipeline] - Load, configure and render used by both the CLI and the HTTP
// server, with graph and artifact caching through [cache].
//
// [session] - Live graphs held by the HTTP server between requests.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for graph, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/dag/...      # Specific package
//	go test -run Example ./... # Examples only
//	go test -short ./...       # Skip Graphviz rendering
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/dag
// [catalog]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/catalog
// [effects]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/effects
// [io]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/io
// [graph]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/observability
// [dag.Build]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/dag#Build
// [dag.Graph.Apply]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/dag#Graph.Apply
// [dag.Graph.SetMode]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/dag#Graph.SetMode
// [dag.Graph.Validate]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/dag#Graph.Validate
// [catalog.Default]: https://pkg.go.dev/github.com/matzehuels/metagraph/pkg/catalog#Default
package pkg
