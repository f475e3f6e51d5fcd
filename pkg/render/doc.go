// Package render provides visual output for processing graphs.
//
// # Overview
//
// This package holds generic format conversion; the graph drawing itself
// lives in the [nodelink] subpackage, which turns a graph snapshot into
// Graphviz DOT and renders it to SVG.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(graph.FromDAG(g), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/metagraph/pkg/render/nodelink
package render
