package dag

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// ParamType is the declared type of an exposed parameter.
type ParamType string

const (
	ParamReal   ParamType = "real"
	ParamInt    ParamType = "int"
	ParamEnum   ParamType = "enum"
	ParamString ParamType = "string"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Param declares an exposed parameter. Declarations are immutable once the
// graph is built; only the current value changes.
type Param struct {
	Name        string    `json:"name" toml:"name"`
	Type        ParamType `json:"type" toml:"type"`
	Default     any       `json:"default" toml:"default"`
	Range       *Range    `json:"range,omitempty" toml:"range,omitempty"`
	UIRange     *Range    `json:"ui_range,omitempty" toml:"ui_range,omitempty"`
	Values      []string  `json:"values,omitempty" toml:"values,omitempty"`
	Label       string    `json:"label,omitempty" toml:"label,omitempty"`
	Description string    `json:"description,omitempty" toml:"description,omitempty"`
}

// Check verifies the declaration itself: a known type, a non-empty enum and
// a default that passes [Param.Coerce].
func (p Param) Check() error {
	if err := errors.ValidateParamName(p.Name); err != nil {
		return err
	}
	switch p.Type {
	case ParamReal, ParamInt, ParamString:
	case ParamEnum:
		if len(p.Values) == 0 {
			return errors.New(errors.ErrCodeConfiguration, "enum parameter %q has no values", p.Name)
		}
	default:
		return errors.New(errors.ErrCodeConfiguration, "parameter %q has unknown type %q", p.Name, p.Type)
	}
	if p.Range != nil && p.Range.Min > p.Range.Max {
		return errors.New(errors.ErrCodeConfiguration, "parameter %q has empty range %s", p.Name, p.Range)
	}
	if _, err := p.Coerce(p.Default); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "default of %q", p.Name)
	}
	return nil
}

// Coerce converts v to the declared type and checks it against the range or
// enum values. Real parameters yield float64, int parameters yield int.
func (p Param) Coerce(v any) (any, error) {
	switch p.Type {
	case ParamReal:
		f, ok := toFloat(v)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s expects a real, got %T", p.Name, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New(errors.ErrCodeRange, "%s=%v is not finite", p.Name, f)
		}
		if p.Range != nil && !p.Range.Contains(f) {
			return nil, errors.New(errors.ErrCodeRange, "%s=%g outside %s", p.Name, f, p.Range)
		}
		return f, nil

	case ParamInt:
		i, ok := toInt(v)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s expects an integer, got %v (%T)", p.Name, v, v)
		}
		if p.Range != nil && !p.Range.Contains(float64(i)) {
			return nil, errors.New(errors.ErrCodeRange, "%s=%d outside %s", p.Name, i, p.Range)
		}
		return i, nil

	case ParamEnum:
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s expects one of %v, got %T", p.Name, p.Values, v)
		}
		if !slices.Contains(p.Values, s) {
			return nil, errors.New(errors.ErrCodeRange, "%s=%q not one of %v", p.Name, s, p.Values)
		}
		return s, nil

	case ParamString:
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s expects a string, got %T", p.Name, v)
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeConfiguration, "parameter %q has unknown type %q", p.Name, p.Type)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	case float32:
		if f := float64(n); f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	}
	return 0, false
}
