package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "validate <effect|file>",
		Short: "Build a definition and report structural problems",
		Long: `Validate builds the graph, applies any --set, --values and --mode
options and runs the graph validator. It exits non-zero when the
definition is rejected or the configured graph is malformed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSource,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(args[0])
			if err != nil {
				return err
			}
			s, err := c.snapshot(cmd.Context(), opts)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				if code := errors.GetCode(err); code != "" {
					printDetail("code: %s", code)
				}
				return err
			}
			printSuccess("%s is valid", s.Name)
			printStats(len(s.Nodes), len(s.Links), false)
			if s.Mode != nil {
				printDetail("active %s: %s", s.Mode.Param, s.Mode.Active)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
