package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metagraph/pkg/cache"
	"github.com/matzehuels/metagraph/pkg/catalog"
	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/graph"
	"github.com/matzehuels/metagraph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog dag.Catalog
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The built-in operation catalogue is used; set Catalog to replace it.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: catalog.Default(),
		Logger:  logger,
	}
}

// Execute runs the complete load → configure → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	def, err := LoadDefinition(opts)
	if err != nil {
		return nil, err
	}
	values, err := LoadValues(opts, def)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Configure
	configureStart := time.Now()
	s, graphHit, err := r.SnapshotWithCacheInfo(ctx, def, values, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = s
	result.GraphHash = snapshotHash(s)
	result.Stats.ConfigureTime = time.Since(configureStart)
	result.Stats.NodeCount = len(s.Nodes)
	result.Stats.LinkCount = len(s.Links)
	result.CacheInfo.GraphHit = graphHit

	r.Logger.Info("configured graph",
		"graph", def.Name,
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"cached", graphHit,
		"duration", result.Stats.ConfigureTime)

	// Stage 2: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Configure builds and configures a live graph without caching.
func (r *Runner) Configure(ctx context.Context, def dag.Definition, values map[string]any, opts Options) (*dag.Graph, error) {
	r.applyLogger(&opts)
	return Configure(ctx, r.Catalog, def, values, opts)
}

// SnapshotWithCacheInfo configures def and returns its snapshot, reading and
// filling the graph cache. The live graph is closed before returning.
func (r *Runner) SnapshotWithCacheInfo(ctx context.Context, def dag.Definition, values map[string]any, opts Options) (graph.Graph, bool, error) {
	r.applyLogger(&opts)

	defHash, err := cache.HashJSON(def)
	if err != nil {
		return graph.Graph{}, false, err
	}
	cacheKey := r.Keyer.GraphKey(defHash, opts.GraphKeyOpts(values))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if s, err := graph.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return s, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	g, err := r.Configure(ctx, def, values, opts)
	if err != nil {
		return graph.Graph{}, false, err
	}
	s := graph.FromDAG(g)
	g.Close()

	if data, err := graph.MarshalSnapshot(s); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.GraphTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return s, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s graph.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	graphHash := snapshotHash(s)

	artifacts := make(map[string][]byte)
	var missing []string
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit && !opts.Refresh {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, s, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, opts.CacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// snapshotHash hashes s without its instance id, so two builds of the same
// configuration share artifacts.
func snapshotHash(s graph.Graph) string {
	s.ID = ""
	data, err := graph.MarshalSnapshot(s)
	if err != nil {
		return cache.Hash([]byte(fmt.Sprint(s)))
	}
	return cache.Hash(data)
}
