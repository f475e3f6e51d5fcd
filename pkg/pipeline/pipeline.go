// Package pipeline provides the load → configure → render pipeline for
// metagraph.
//
// The CLI and the HTTP server share this package so that a graph is built,
// configured and drawn the same way from every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: resolve a definition (bundled effect, definition file or inline
//     definition) and the parameter values (preset file plus overrides)
//  2. Configure: build the graph, apply values, switch the mode and
//     validate, producing a [graph.Graph] snapshot
//  3. Render: draw the snapshot as DOT, SVG, PDF or PNG, or emit its JSON
//
// Snapshots and artifacts are cached by content hash, see [cache.Keyer].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Effect:  "cartoon",
//	    Values:  map[string]any{"sat": 2.0},
//	    Mode:    "multiply",
//	    Formats: []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Use [Runner.Configure] directly when the live graph is needed, e.g. to keep
// changing parameters after the build.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metagraph/pkg/cache"
	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/errors"
	"github.com/matzehuels/metagraph/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultCacheTTL is how long rendered artifacts are cached.
	DefaultCacheTTL = cache.ArtifactTTL
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source options; exactly one of Effect, File and Definition is set.
	Effect     string          `json:"effect,omitempty"`
	File       string          `json:"-"`
	Definition *dag.Definition `json:"definition,omitempty"`

	// Configure options
	Values map[string]any `json:"values,omitempty"`
	Preset string         `json:"-"` // preset file; Values override it
	Mode   string         `json:"mode,omitempty"`
	Debug  bool           `json:"debug,omitempty"` // reject invalid relinks instead of falling back

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	HideParked bool     `json:"hide_parked,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Cache options
	Refresh  bool          `json:"refresh,omitempty"`
	CacheTTL time.Duration `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the configured graph snapshot.
	Graph graph.Graph

	// GraphHash is the content hash of the snapshot, ignoring its instance id.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	LinkCount     int
	ConfigureTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // Whether the snapshot came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that exactly one definition source is set.
func (o *Options) ValidateForLoad() error {
	sources := 0
	for _, set := range []bool{o.Effect != "", o.File != "", o.Definition != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of effect, file or definition is required, got %d", sources)
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// GraphKeyOpts returns cache key options for the configure stage.
func (o *Options) GraphKeyOpts(values map[string]any) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Values: values,
		Mode:   o.Mode,
		Debug:  o.Debug,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:     format,
		Detailed:   o.Detailed,
		HideParked: o.HideParked,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// String summarises the source for log lines.
func (o *Options) String() string {
	switch {
	case o.Effect != "":
		return o.Effect
	case o.File != "":
		return o.File
	case o.Definition != nil:
		return fmt.Sprintf("inline:%s", o.Definition.Name)
	}
	return "<none>"
}
