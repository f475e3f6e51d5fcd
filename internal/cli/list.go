package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/pkg/effects"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the bundled effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, e := range effects.All() {
				def := e.Definition()
				mode := "-"
				if def.Mode != nil {
					mode = def.Mode.Param
				}
				rows = append(rows, []string{e.Name, e.Title, e.Category, strconv.Itoa(len(def.Params)), mode})
			}
			fmt.Fprintln(out, effectTable(rows))
			return nil
		},
	}
}
