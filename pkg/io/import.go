package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/errors"
)

// ReadDefinition decodes a definition in format f from r.
//
// Unknown keys are rejected, numbers are normalized (see package docs) and
// the result is not built: topology errors surface from [dag.Build].
// ReadDefinition does not close r.
func ReadDefinition(r io.Reader, f Format) (dag.Definition, error) {
	var def dag.Definition
	switch f {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&def)
		if err != nil {
			return dag.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if err := checkUndecoded(md); err != nil {
			return dag.Definition{}, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return dag.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatHCL:
		src, err := io.ReadAll(r)
		if err != nil {
			return dag.Definition{}, fmt.Errorf("read: %w", err)
		}
		if def, err = decodeHCL("definition.hcl", src); err != nil {
			return dag.Definition{}, err
		}
	default:
		return dag.Definition{}, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	normalizeDefinition(&def)
	return def, nil
}

// ImportDefinition reads the definition file at path, picking the format
// from its extension.
func ImportDefinition(path string) (dag.Definition, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return dag.Definition{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dag.Definition{}, errors.Wrap(errors.ErrCodeNotFound, err, "%s", path)
		}
		return dag.Definition{}, fmt.Errorf("read %s: %w", path, err)
	}
	if f == FormatHCL {
		def, err := decodeHCL(path, data)
		if err != nil {
			return dag.Definition{}, err
		}
		normalizeDefinition(&def)
		return def, nil
	}
	def, err := ReadDefinition(bytes.NewReader(data), f)
	if err != nil {
		return dag.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	return def, nil
}

func normalizeDefinition(def *dag.Definition) {
	for i := range def.Nodes {
		normalizeParams(def.Nodes[i].Params)
	}
	for i := range def.Params {
		def.Params[i].Default = normalize(def.Params[i].Default)
	}
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	slices.Sort(keys)
	return errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(keys, ", "))
}
