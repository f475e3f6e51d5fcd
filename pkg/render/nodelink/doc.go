// Package nodelink renders processing graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as boxes connected by arrows, laid out top to bottom by
// Graphviz. The drawing reflects the state of the graph at snapshot time:
//
//   - Primary links are solid, aux links dashed and labelled with their slot
//   - The input and output proxies are ellipses
//   - The active mode alternative is drawn with a heavy outline
//   - Parked alternatives are greyed out (or hidden with [Options.HideParked])
//
// # Usage
//
//	dot := nodelink.ToDOT(graph.FromDAG(g), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use [RenderPDF] and [RenderPNG].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
