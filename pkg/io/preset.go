package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// Preset is a named set of exposed parameter values.
type Preset struct {
	Effect string         `json:"effect,omitempty" toml:"effect,omitempty"`
	Params map[string]any `json:"params" toml:"params"`
}

// ReadPreset decodes a preset in format f from r.
func ReadPreset(r io.Reader, f Format) (Preset, error) {
	var p Preset
	switch f {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&p)
		if err != nil {
			return Preset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if err := checkUndecoded(md); err != nil {
			return Preset{}, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Preset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatHCL:
		src, err := io.ReadAll(r)
		if err != nil {
			return Preset{}, fmt.Errorf("read: %w", err)
		}
		var raw hclPreset
		if err := hclsimple.Decode("preset.hcl", src, nil, &raw); err != nil {
			return Preset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode hcl")
		}
		params, err := ctyObject(raw.Params)
		if err != nil {
			return Preset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "params")
		}
		p = Preset{Effect: raw.Effect, Params: params}
	default:
		return Preset{}, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if p.Params == nil {
		p.Params = make(map[string]any)
	}
	normalizeParams(p.Params)
	return p, nil
}

// ImportPreset reads the preset file at path.
func ImportPreset(path string) (Preset, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Preset{}, err
	}
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Preset{}, errors.Wrap(errors.ErrCodeNotFound, err, "%s", path)
		}
		return Preset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	return ReadPreset(in, f)
}

// WritePreset encodes p in format f and writes it to w.
func WritePreset(p Preset, w io.Writer, f Format) error {
	switch f {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(p); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatHCL:
		return errors.New(errors.ErrCodeInvalidFormat, "hcl is read-only, export toml or json")
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	return nil
}

// ExportPreset writes p to the file at path.
func ExportPreset(p Preset, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == FormatHCL {
		return WritePreset(p, nil, f)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return WritePreset(p, out, f)
}
