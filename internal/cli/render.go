package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/pkg/errors"
	"github.com/matzehuels/metagraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	graph      graphFlags
	cache      cacheFlags
	output     string  // output file (single format), base path, or "-" for stdout
	formats    string  // comma-separated output formats
	detailed   bool    // list local params inside each node
	hideParked bool    // omit parked mode alternatives
	scale      float64 // PNG scale factor
	refresh    bool    // bypass cached results
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <effect|file>",
		Short: "Render a graph to DOT, SVG, PNG, PDF or JSON",
		Long: `Render builds the graph, applies parameter values and the blend mode,
validates it and writes one file per requested format.

Examples:
  metagraph render cartoon --mode multiply -f svg,dot
  metagraph render plastic-wrap --set tightness=9 -f json -o -
  metagraph render effect.toml --values preset.toml --detailed`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSource,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.graph.register(cmd)
	opts.cache.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node kinds and local parameters")
	cmd.Flags().BoolVar(&opts.hideParked, "hide-parked", false, "omit inactive mode alternatives")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached graphs and artifacts")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, source string, ro *renderOpts) error {
	opts, err := ro.graph.options(source)
	if err != nil {
		return err
	}
	logger := graphLogger(loggerFromContext(ctx), opts.String())
	opts.Formats = parseFormats(ro.formats)
	opts.Detailed = ro.detailed
	opts.HideParked = ro.hideParked
	opts.Scale = ro.scale
	opts.Refresh = ro.refresh
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if ro.output == "-" && len(opts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "stdout output needs exactly one format, got %v", opts.Formats)
	}

	runner, err := c.newRunner(ctx, ro.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", opts.String()))
	if ro.output != "-" {
		spin.Start()
	}
	result, err := runner.Execute(ctx, opts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", result.Graph.Name))

	if ro.output == "-" {
		return writeOutput("-", result.Artifacts[opts.Formats[0]])
	}

	paths := outputPaths(ro.output, source, opts.Formats)
	printSuccess("Rendered %s", result.Graph.Name)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.GraphHit && result.CacheInfo.RenderHit)
	for _, format := range opts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
		printFile(paths[format])
	}
	return nil
}

// outputPaths maps each format to its file. A single format with an explicit
// output writes exactly there; otherwise files are named base.format.
func outputPaths(output, source string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, source)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
