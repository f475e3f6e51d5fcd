package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metagraph/pkg/buildinfo"
	"github.com/matzehuels/metagraph/pkg/cache"
	"github.com/matzehuels/metagraph/pkg/effects"
	"github.com/matzehuels/metagraph/pkg/errors"
	defio "github.com/matzehuels/metagraph/pkg/io"
	"github.com/matzehuels/metagraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "metagraph"

	// redisEnv names the environment variable holding a shared cache address.
	redisEnv = "METAGRAPH_REDIS"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Metagraph builds and inspects image-processing graphs",
		Long:         `Metagraph compiles declarative effect definitions into operation graphs, redirects exposed parameters onto interior nodes and switches blend modes by relinking the graph in place.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.listCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the artifact cache backend.
type cacheFlags struct {
	noCache bool
	redis   string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&f.redis, "redis", os.Getenv(redisEnv), "redis address for a shared cache (default: file cache)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	cache, err := newCache(ctx, flags)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(ctx context.Context, flags cacheFlags) (cache.Cache, error) {
	switch {
	case flags.noCache:
		return cache.NewNullCache(), nil
	case flags.redis != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: flags.redis, Prefix: appName + ":"})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the artifact cache directory (~/.cache/metagraph/ on
// Linux, honoring XDG_CACHE_HOME).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Argument Helpers
// =============================================================================

// sourceOptions fills the definition source from a positional argument:
// a path with a definition extension (.toml, .hcl, .json) is a file,
// anything else names a bundled effect.
func sourceOptions(arg string, opts *pipeline.Options) {
	if _, err := defio.FormatFromPath(arg); err == nil {
		opts.File = arg
		return
	}
	opts.Effect = arg
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseSets turns repeated --set name=value flags into parameter values.
// Values that parse as integers become int, other numbers float64;
// everything else stays a string.
func parseSets(sets []string) (map[string]any, error) {
	values := make(map[string]any, len(sets))
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid --set %q (want name=value)", s)
		}
		values[name] = parseScalar(raw)
	}
	return values, nil
}

func parseScalar(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// basePath derives the base output path from the output flag and the source.
// If output has a format extension (.svg, .dot, ...), it is stripped.
func basePath(output, source string) string {
	if output == "" {
		return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// completeSource completes bundled effect names and falls back to files.
func completeSource(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return effects.Names(), cobra.ShellCompDirectiveDefault
}
