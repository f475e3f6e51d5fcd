package io

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// Format is a definition file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in preference order.
var Formats = []Format{FormatTOML, FormatHCL, FormatJSON}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTOML, FormatHCL, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want toml, hcl or json)", s)
}

// FormatFromPath picks the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "%s: no file extension", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	return f, nil
}

// normalize turns decoder-specific numbers into int or float64, recursing
// into maps and slices.
func normalize(v any) any {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float32:
		return float64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		f, _ := n.Float64()
		return f
	case map[string]any:
		for k, x := range n {
			n[k] = normalize(x)
		}
		return n
	case []any:
		for i, x := range n {
			n[i] = normalize(x)
		}
		return n
	}
	return v
}

func normalizeParams(params map[string]any) map[string]any {
	for k, v := range params {
		params[k] = normalize(v)
	}
	return params
}
