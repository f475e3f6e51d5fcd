package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/pkg/catalog"
	"github.com/matzehuels/metagraph/pkg/graph"
	"github.com/matzehuels/metagraph/pkg/pipeline"
)

// graphFlags are the flags shared by commands that build a graph.
type graphFlags struct {
	sets   []string
	preset string
	mode   string
	debug  bool
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "set an exposed parameter (name=value, repeatable)")
	cmd.Flags().StringVar(&f.preset, "values", "", "preset file with parameter values (.toml, .hcl, .json)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "blend mode selector value")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "fail on unknown mode values instead of falling back")
}

// options builds pipeline options for source with the flag values applied.
func (f *graphFlags) options(source string) (pipeline.Options, error) {
	values, err := parseSets(f.sets)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Values: values,
		Preset: f.preset,
		Mode:   f.mode,
		Debug:  f.debug,
	}
	sourceOptions(source, &opts)
	return opts, nil
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags graphFlags
	var detailed bool

	cmd := &cobra.Command{
		Use:               "inspect <effect|file>",
		Short:             "Build a graph and print its chain, mode and parameters",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSource,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(args[0])
			if err != nil {
				return err
			}
			s, err := c.snapshot(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printGraph(s, detailed)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&detailed, "nodes", false, "also list every node with its local parameters")
	return cmd
}

// snapshot loads, configures and snapshots the graph described by opts
// without touching the cache.
func (c *CLI) snapshot(ctx context.Context, opts pipeline.Options) (graph.Graph, error) {
	opts.Logger = graphLogger(loggerFromContext(ctx), opts.String())
	if err := opts.ValidateForLoad(); err != nil {
		return graph.Graph{}, err
	}
	def, err := pipeline.LoadDefinition(opts)
	if err != nil {
		return graph.Graph{}, err
	}
	values, err := pipeline.LoadValues(opts, def)
	if err != nil {
		return graph.Graph{}, err
	}
	g, err := pipeline.Configure(ctx, catalog.Default(), def, values, opts)
	if err != nil {
		return graph.Graph{}, err
	}
	defer g.Close()
	return graph.FromDAG(g), nil
}

func printGraph(s graph.Graph, detailed bool) {
	fmt.Fprintln(out, StyleTitle.Render(s.Name))
	printKeyValue("id", s.ID)
	printChain(s)
	printMode(s)
	printKeyValue("size", fmt.Sprintf("%d nodes, %d links", len(s.Nodes), len(s.Links)))
	if len(s.Params) > 0 {
		fmt.Fprintln(out, paramTable(s.Params))
	}
	if !detailed {
		return
	}
	if len(s.Order) > 0 {
		printKeyValue("order", strings.Join(s.Order, " "))
	}
	for _, n := range s.Nodes {
		if n.Proxy {
			continue
		}
		label := n.ID
		if n.Parked {
			label = styleParked.Render(n.ID)
		}
		printInfo("%s %s", label, StyleDim.Render(n.Kind))
		for _, k := range slices.Sorted(maps.Keys(n.Params)) {
			printDetail("%s: %v", k, n.Params[k])
		}
	}
}
