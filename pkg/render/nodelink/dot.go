package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/metagraph/pkg/graph"
	"github.com/matzehuels/metagraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the operation kind and local parameters to node labels.
	// When false, only the node ID is shown.
	Detailed bool

	// HideParked leaves inactive mode alternatives and their links out.
	HideParked bool
}

// ToDOT converts a graph snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var active string
	if g.Mode != nil {
		active = g.Mode.Active
	}

	hidden := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.Parked && opts.HideParked {
			hidden[n.ID] = true
			continue
		}
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == active)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	parked := make(map[string]bool)
	for _, n := range g.Nodes {
		parked[n.ID] = n.Parked
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		if hidden[l.From] || hidden[l.To] {
			continue
		}
		var attrs []string
		if !l.IsPrimary() {
			attrs = append(attrs, "style=dashed", fmt.Sprintf("label=%q", l.Slot))
		}
		if parked[l.From] || parked[l.To] {
			attrs = append(attrs, "color=grey")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", l.From, l.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.From, l.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed || n.Proxy {
		return n.ID
	}

	parts := []string{n.Kind}
	for _, k := range slices.Sorted(maps.Keys(n.Params)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Params[k]))
	}

	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string, active bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Proxy:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightblue")
	case n.Parked:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
	case active:
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
