package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/metagraph/pkg/graph"
	"github.com/matzehuels/metagraph/pkg/render/nodelink"
)

// Render generates output artifacts for a snapshot in the requested formats.
// The DOT source is generated once and shared by every Graphviz format.
func Render(ctx context.Context, s graph.Graph, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(s, nodelink.Options{
		Detailed:   opts.Detailed,
		HideParked: opts.HideParked,
	})

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = graph.MarshalSnapshot(s)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderFromData renders a serialized snapshot, for example one read from a
// file written by the json format.
func RenderFromData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	s, err := graph.UnmarshalGraph(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return Render(ctx, s, opts)
}
