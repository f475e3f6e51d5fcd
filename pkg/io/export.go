package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/errors"
)

// WriteDefinition encodes def in format f and writes it to w.
// HCL output is not supported; export to TOML instead.
func WriteDefinition(def dag.Definition, w io.Writer, f Format) error {
	switch f {
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.Indent = ""
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatHCL:
		return errors.New(errors.ErrCodeInvalidFormat, "hcl is read-only, export toml or json")
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	return nil
}

// ExportDefinition writes def to the file at path, picking the format from
// its extension.
func ExportDefinition(def dag.Definition, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == FormatHCL {
		return WriteDefinition(def, nil, f)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return WriteDefinition(def, out, f)
}
