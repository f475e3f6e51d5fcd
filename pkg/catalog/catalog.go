// Package catalog provides operation catalogues for the graph engine.
//
// An operation kind is an opaque filter identifier. The catalogue records,
// per kind, which local parameters exist with their types and valid ranges
// and which auxiliary slots must be linked. Pixel math lives elsewhere; the
// engine only consults a catalogue to surface its verdict on a value.
//
// [Default] returns the built-in catalogue of GEGL-style kinds used by the
// bundled effects. Custom catalogues are assembled with [New] and [NewOp].
package catalog

import (
	"maps"
	"slices"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/errors"
)

// TypeBool marks a boolean local parameter. Exposed parameters never use
// it, so it lives here rather than among the engine's parameter types.
const TypeBool dag.ParamType = "bool"

// Spec describes one local parameter of an operation kind.
type Spec struct {
	Type   dag.ParamType
	Range  *dag.Range
	Values []string
}

// Op is a catalogued operation kind.
type Op struct {
	kind   string
	title  string
	aux    []dag.Slot
	params map[string]Spec
}

// NewOp describes an operation kind. aux lists the slots that must be
// linked for the operation to produce output.
func NewOp(kind, title string, aux []dag.Slot, params map[string]Spec) *Op {
	if params == nil {
		params = map[string]Spec{}
	}
	return &Op{kind: kind, title: title, aux: aux, params: params}
}

func (o *Op) Kind() string { return o.kind }

// Title returns the human-readable name of the kind.
func (o *Op) Title() string { return o.title }

func (o *Op) AuxSlots() []dag.Slot { return slices.Clone(o.aux) }

// ParamNames returns the local parameter names in sorted order.
func (o *Op) ParamNames() []string {
	return slices.Sorted(maps.Keys(o.params))
}

// Spec returns the description of a local parameter.
func (o *Op) Spec(name string) (Spec, bool) {
	s, ok := o.params[name]
	return s, ok
}

// CheckParam accepts value for name when the kind declares the parameter
// and the value has the right type and lies within the declared range.
func (o *Op) CheckParam(name string, value any) error {
	s, ok := o.params[name]
	if !ok {
		return errors.New(errors.ErrCodeUnknownParam, "%s has no parameter %q", o.kind, name)
	}
	if s.Type == TypeBool {
		if _, ok := value.(bool); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "%s expects a boolean, got %T", name, value)
		}
		return nil
	}
	p := dag.Param{Name: name, Type: s.Type, Range: s.Range, Values: s.Values}
	_, err := p.Coerce(value)
	return err
}

// Catalog is a set of operation kinds keyed by kind. It satisfies
// [dag.Catalog].
type Catalog struct {
	ops map[string]*Op
}

// New returns a catalogue holding ops. Later duplicates replace earlier ones.
func New(ops ...*Op) *Catalog {
	c := &Catalog{ops: make(map[string]*Op, len(ops))}
	for _, op := range ops {
		c.ops[op.kind] = op
	}
	return c
}

// Register adds op, failing if its kind is already present.
func (c *Catalog) Register(op *Op) error {
	if err := errors.ValidateID(op.kind); err != nil {
		return err
	}
	if _, dup := c.ops[op.kind]; dup {
		return errors.New(errors.ErrCodeConfiguration, "operation kind %q already registered", op.kind)
	}
	c.ops[op.kind] = op
	return nil
}

// Lookup implements [dag.Catalog].
func (c *Catalog) Lookup(kind string) (dag.Operation, bool) {
	op, ok := c.ops[kind]
	if !ok {
		return nil, false
	}
	return op, true
}

// Op returns the concrete description of kind.
func (c *Catalog) Op(kind string) (*Op, bool) {
	op, ok := c.ops[kind]
	return op, ok
}

// Kinds returns all kinds in sorted order.
func (c *Catalog) Kinds() []string {
	return slices.Sorted(maps.Keys(c.ops))
}

// Len returns the number of kinds.
func (c *Catalog) Len() int { return len(c.ops) }
