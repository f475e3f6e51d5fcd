package pipeline

import (
	"context"
	"maps"
	"slices"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/observability"
)

// ApplyValues applies values to g as one batch and reports each parameter
// to the graph hooks. On success every name is reported as applied. On
// failure nothing was written, and only the names that caused it are
// reported: each value g rejects on its own, or the mode selector when the
// relink itself failed. A batch that sets the mode selector also reports
// the switch.
func ApplyValues(ctx context.Context, g *dag.Graph, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	hooks := observability.Graph()
	names := slices.Sorted(maps.Keys(values))

	err := g.ApplyAll(values)
	if err == nil {
		for _, name := range names {
			hooks.OnApply(ctx, g.ID(), name, nil)
		}
		if spec := g.ModeSpec(); spec != nil {
			if _, ok := values[spec.Param]; ok {
				value, active := g.Mode()
				hooks.OnModeSwitch(ctx, g.ID(), value, active, nil)
			}
		}
		return nil
	}

	reported := false
	for _, name := range names {
		if cerr := g.CheckValue(name, values[name]); cerr != nil {
			hooks.OnApply(ctx, g.ID(), name, cerr)
			reported = true
		}
	}
	if !reported {
		if spec := g.ModeSpec(); spec != nil {
			if _, ok := values[spec.Param]; ok {
				hooks.OnApply(ctx, g.ID(), spec.Param, err)
			}
		}
	}
	return err
}

// SwitchMode calls g.SetMode and reports the outcome to the graph hooks.
func SwitchMode(ctx context.Context, g *dag.Graph, value string) (string, error) {
	active, err := g.SetMode(value)
	observability.Graph().OnModeSwitch(ctx, g.ID(), value, active, err)
	return active, err
}
