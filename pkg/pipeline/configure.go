package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/observability"
)

// Configure builds def against cat, applies values, switches the mode when
// opts.Mode is set and validates the result. The caller owns the returned
// graph and should Close it.
func Configure(ctx context.Context, cat dag.Catalog, def dag.Definition, values map[string]any, opts Options) (*dag.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.setLogger()
	hooks := observability.Graph()

	start := time.Now()
	g, err := dag.Build(def, cat, dag.Options{Logger: opts.Logger, Debug: opts.Debug})
	if err != nil {
		hooks.OnBuild(ctx, def.Name, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuild(ctx, def.Name, g.NodeCount(), time.Since(start), nil)

	if err := ApplyValues(ctx, g, values); err != nil {
		g.Close()
		return nil, err
	}

	if opts.Mode != "" {
		if _, err := SwitchMode(ctx, g, opts.Mode); err != nil {
			g.Close()
			return nil, err
		}
	}

	res := g.Validate()
	hooks.OnValidate(ctx, g.ID(), len(res.Issues))
	if err := res.Err(); err != nil {
		g.Close()
		return nil, err
	}

	if order, err := g.Order(); err == nil {
		for _, id := range order {
			n, _ := g.Node(id)
			opts.Logger.Debug("node", "graph", g.Name(), "op", n.Describe())
		}
	}
	return g, nil
}
