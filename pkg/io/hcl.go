package io

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/errors"
)

type hclFile struct {
	Name        string        `hcl:"name"`
	Title       string        `hcl:"title,optional"`
	Description string        `hcl:"description,optional"`
	Chain       []string      `hcl:"chain"`
	Nodes       []hclNode     `hcl:"node,block"`
	Params      []hclParam    `hcl:"param,block"`
	Redirects   []hclRedirect `hcl:"redirect,block"`
	Mode        *hclMode      `hcl:"mode,block"`
}

type hclNode struct {
	ID     string            `hcl:"id,label"`
	Kind   string            `hcl:"kind"`
	Input  string            `hcl:"input,optional"`
	Params cty.Value         `hcl:"params,optional"`
	Aux    map[string]string `hcl:"aux,optional"`
}

type hclParam struct {
	Name        string    `hcl:"name,label"`
	Type        string    `hcl:"type"`
	Default     cty.Value `hcl:"default"`
	Range       []float64 `hcl:"range,optional"`
	UIRange     []float64 `hcl:"ui_range,optional"`
	Values      []string  `hcl:"values,optional"`
	Label       string    `hcl:"label,optional"`
	Description string    `hcl:"description,optional"`
}

type hclRedirect struct {
	Param string `hcl:"param"`
	Node  string `hcl:"node"`
	Key   string `hcl:"key"`
}

type hclMode struct {
	Param        string           `hcl:"param"`
	Slot         string           `hcl:"slot"`
	AuxSource    string           `hcl:"aux_source,optional"`
	AuxSlot      string           `hcl:"aux_slot,optional"`
	Alternatives []hclAlternative `hcl:"alternative,block"`
}

type hclAlternative struct {
	Value string `hcl:"value,label"`
	Node  string `hcl:"node"`
}

type hclPreset struct {
	Effect string    `hcl:"effect,optional"`
	Params cty.Value `hcl:"params"`
}

// decodeHCL decodes src as HCL native syntax, or as HCL's JSON variant when
// filename ends in .json.
func decodeHCL(filename string, src []byte) (dag.Definition, error) {
	var file hclFile
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return dag.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode hcl")
	}

	def := dag.Definition{
		Name:        file.Name,
		Title:       file.Title,
		Description: file.Description,
		Chain:       file.Chain,
	}
	for _, n := range file.Nodes {
		params, err := ctyObject(n.Params)
		if err != nil {
			return dag.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q params", n.ID)
		}
		def.Nodes = append(def.Nodes, dag.NodeSpec{
			ID:     n.ID,
			Kind:   n.Kind,
			Input:  n.Input,
			Params: params,
			Aux:    n.Aux,
		})
	}
	for _, p := range file.Params {
		param, err := p.toParam()
		if err != nil {
			return dag.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "param %q", p.Name)
		}
		def.Params = append(def.Params, param)
	}
	for _, r := range file.Redirects {
		def.Redirects = append(def.Redirects, dag.Redirect{Param: r.Param, Node: r.Node, Key: r.Key})
	}
	if m := file.Mode; m != nil {
		spec := &dag.ModeSpec{
			Param:     m.Param,
			Slot:      m.Slot,
			AuxSource: m.AuxSource,
			AuxSlot:   dag.Slot(m.AuxSlot),
		}
		for _, a := range m.Alternatives {
			spec.Alternatives = append(spec.Alternatives, dag.Alternative{Value: a.Value, Node: a.Node})
		}
		def.Mode = spec
	}
	return def, nil
}

func (p hclParam) toParam() (dag.Param, error) {
	def, err := ctyToGo(p.Default)
	if err != nil {
		return dag.Param{}, err
	}
	param := dag.Param{
		Name:        p.Name,
		Type:        dag.ParamType(p.Type),
		Default:     def,
		Values:      p.Values,
		Label:       p.Label,
		Description: p.Description,
	}
	if param.Range, err = toRange("range", p.Range); err != nil {
		return dag.Param{}, err
	}
	if param.UIRange, err = toRange("ui_range", p.UIRange); err != nil {
		return dag.Param{}, err
	}
	return param, nil
}

func toRange(attr string, bounds []float64) (*dag.Range, error) {
	switch len(bounds) {
	case 0:
		return nil, nil
	case 2:
		return &dag.Range{Min: bounds[0], Max: bounds[1]}, nil
	}
	return nil, fmt.Errorf("%s needs [min, max], got %d values", attr, len(bounds))
}

// ctyObject converts an object or map value into a Go map. A null or absent
// value yields nil.
func ctyObject(v cty.Value) (map[string]any, error) {
	native, err := ctyToGo(v)
	if err != nil || native == nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}
	return m, nil
}

// ctyToGo converts a cty value into plain Go values. Whole numbers become
// int, other numbers float64.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, err
		}
		return b, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			x, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			x, err := ctyToGo(elem)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = x
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
