package pipeline

import (
	"maps"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/effects"
	"github.com/matzehuels/metagraph/pkg/errors"
	defio "github.com/matzehuels/metagraph/pkg/io"
)

// LoadDefinition resolves the definition named by opts.
func LoadDefinition(opts Options) (dag.Definition, error) {
	switch {
	case opts.Effect != "":
		e, ok := effects.Lookup(opts.Effect)
		if !ok {
			return dag.Definition{}, errors.New(errors.ErrCodeNotFound, "unknown effect %q (have %v)", opts.Effect, effects.Names())
		}
		return e.Definition(), nil
	case opts.File != "":
		return defio.ImportDefinition(opts.File)
	case opts.Definition != nil:
		return *opts.Definition, nil
	}
	return dag.Definition{}, errors.New(errors.ErrCodeInvalidInput, "no definition source")
}

// LoadValues merges the preset file, if any, with opts.Values. Explicit
// values win over preset values.
func LoadValues(opts Options, def dag.Definition) (map[string]any, error) {
	opts.setLogger()
	values := make(map[string]any)
	if opts.Preset != "" {
		p, err := defio.ImportPreset(opts.Preset)
		if err != nil {
			return nil, err
		}
		if p.Effect != "" && p.Effect != def.Name {
			opts.Logger.Warn("preset made for another graph", "preset", opts.Preset, "for", p.Effect, "graph", def.Name)
		}
		maps.Copy(values, p.Params)
	}
	maps.Copy(values, opts.Values)
	return values, nil
}
