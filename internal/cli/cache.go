package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph and artifact cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheClearCommand empties the file cache, or the shared Redis cache when
// --redis (or METAGRAPH_REDIS) names one.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var flags cacheFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached graph and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := newCache(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			cl, ok := backend.(cache.Clearer)
			if !ok {
				printInfo("Nothing to clear")
				return nil
			}
			count, err := cl.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", count)
			if flags.redis != "" {
				printDetail("Redis: %s (prefix %s:)", flags.redis, appName)
			} else if dir, err := cacheDir(); err == nil {
				printDetail("Directory: %s", dir)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(out, dir)
			return nil
		},
	}
}
