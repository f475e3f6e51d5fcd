package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	defio "github.com/matzehuels/metagraph/pkg/io"
	"github.com/matzehuels/metagraph/pkg/pipeline"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		flags  graphFlags
		format string
		output string
		preset bool
	)

	cmd := &cobra.Command{
		Use:   "export <effect|file>",
		Short: "Write a definition or a value preset as TOML or JSON",
		Long: `Export writes the definition of a bundled effect (or of a definition
file, converting between formats). With --preset it writes the current
parameter values instead, after applying --set, --values and --mode.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSource,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := defio.ParseFormat(format)
			if err != nil {
				return err
			}
			opts, err := flags.options(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if preset {
				s, err := c.snapshot(cmd.Context(), opts)
				if err != nil {
					return err
				}
				err = defio.WritePreset(defio.Preset{Effect: s.Name, Params: s.Values()}, &buf, f)
				if err != nil {
					return err
				}
			} else {
				if err := opts.ValidateForLoad(); err != nil {
					return err
				}
				def, err := pipeline.LoadDefinition(opts)
				if err != nil {
					return err
				}
				if err := defio.WriteDefinition(def, &buf, f); err != nil {
					return err
				}
			}

			if output == "" || output == "-" {
				return writeOutput("-", buf.Bytes())
			}
			if err := writeOutput(output, buf.Bytes()); err != nil {
				return err
			}
			printSuccess("Exported %s", args[0])
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(defio.FormatTOML), "output format: toml, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&preset, "preset", false, "export parameter values instead of the definition")
	return cmd
}
