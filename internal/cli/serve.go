package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/internal/server"
	"github.com/matzehuels/metagraph/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfg   server.Config
		cache cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live graph sessions over HTTP",
		Long: `Serve runs the HTTP session API. Each POST /graphs builds a graph that
later requests edit in place: set parameters, switch the blend mode,
validate, render and finally delete it. Idle sessions expire after --ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cache)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg.Logger = loggerFromContext(ctx)
			srv := server.New(runner, session.NewMemoryStore(), cfg)
			return srv.ListenAndServe(ctx)
		},
	}

	cache.register(cmd)
	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&cfg.SessionTTL, "ttl", session.DefaultTTL, "idle lifetime of a graph session")
	cmd.Flags().DurationVar(&cfg.SweepInterval, "sweep", time.Minute, "how often expired sessions are closed")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "reject unknown mode values instead of falling back")
	return cmd
}
