package dag

import (
	"maps"
	"slices"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// Target is one (node, local parameter) pair an exposed parameter feeds.
type Target struct {
	Node string `json:"node"`
	Key  string `json:"key"`
}

// Params returns the exposed parameter declarations in declaration order.
func (g *Graph) Params() []Param {
	out := make([]Param, 0, len(g.porder))
	for _, name := range g.porder {
		out = append(out, g.params[name].decl)
	}
	return out
}

// Value returns the current value of an exposed parameter.
func (g *Graph) Value(exposed string) (any, bool) {
	ps, ok := g.params[exposed]
	if !ok {
		return nil, false
	}
	return ps.value, true
}

// Values returns the current value of every exposed parameter.
func (g *Graph) Values() map[string]any {
	out := make(map[string]any, len(g.params))
	for name, ps := range g.params {
		out[name] = ps.value
	}
	return out
}

// Targets returns the bindings registered for an exposed parameter.
func (g *Graph) Targets(exposed string) []Target {
	return slices.Clone(g.targets[exposed])
}

// Redirect binds the exposed parameter to node's local parameter and pushes
// the exposed parameter's current value into it. One exposed parameter may
// feed many targets and one node may take several exposed parameters.
// Registering the same binding twice is a no-op.
func (g *Graph) Redirect(exposed, nodeID, local string) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	ps, ok := g.params[exposed]
	if !ok {
		return errors.New(errors.ErrCodeUnknownParam, "unknown parameter %q", exposed)
	}
	if g.isSelector(exposed) {
		return errors.New(errors.ErrCodeConfiguration, "mode selector %q cannot be redirected", exposed)
	}
	n, ok := g.nodes[nodeID]
	if !ok || n.IsProxy() {
		return errors.New(errors.ErrCodeUnknownNode, "unknown node %q", nodeID)
	}
	if err := errors.ValidateParamName(local); err != nil {
		return err
	}

	t := Target{Node: nodeID, Key: local}
	if slices.Contains(g.targets[exposed], t) {
		return nil
	}
	if err := g.checkTarget(n, local, ps.value); err != nil {
		return err
	}

	n.Params[local] = ps.value
	g.targets[exposed] = append(g.targets[exposed], t)
	g.logger.Debug("redirect", "graph", g.name, "param", exposed, "node", nodeID, "key", local)
	return nil
}

// Apply sets an exposed parameter and writes it into every bound target.
//
// The value is coerced to the declared type and checked against the
// declared range (bounds inclusive). Every target kind is asked about the
// value before any write happens, so a rejected value leaves the previous
// one in effect everywhere. Applying the mode selector also relinks the
// graph via [Graph.SetMode].
func (g *Graph) Apply(exposed string, value any) error {
	return g.ApplyAll(map[string]any{exposed: value})
}

// CheckValue reports the error Apply would return for value, without
// writing anything. The mode selector only has its enum checked.
func (g *Graph) CheckValue(exposed string, value any) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	_, _, err := g.prepare(exposed, value)
	return err
}

// ApplyAll applies values as one batch: either every value is written or
// none is. Each value is coerced and every target checked before the first
// write, and the mode selector, if present, is switched before any other
// value lands, so a rejected batch leaves values, node parameters and
// links as they were.
func (g *Graph) ApplyAll(values map[string]any) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, ok := g.params[name]; !ok {
			return errors.New(errors.ErrCodeUnknownParam, "unknown parameter %q", name)
		}
	}

	type write struct {
		ps *paramState
		v  any
	}
	var (
		writes []write
		mode   *string
	)
	for _, name := range g.porder {
		raw, ok := values[name]
		if !ok {
			continue
		}
		ps, v, err := g.prepare(name, raw)
		if err != nil {
			return err
		}
		if g.isSelector(name) {
			s := v.(string)
			mode = &s
			continue
		}
		writes = append(writes, write{ps: ps, v: v})
	}

	if mode != nil {
		if _, err := g.SetMode(*mode); err != nil {
			return err
		}
	}
	for _, w := range writes {
		for _, t := range g.targets[w.ps.decl.Name] {
			g.nodes[t.Node].Params[t.Key] = w.v
		}
		w.ps.value = w.v
	}
	return nil
}

// prepare coerces value for exposed and checks it against every target.
func (g *Graph) prepare(exposed string, value any) (*paramState, any, error) {
	ps, ok := g.params[exposed]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeUnknownParam, "unknown parameter %q", exposed)
	}
	v, err := ps.decl.Coerce(value)
	if err != nil {
		g.logger.Debug("value rejected", "graph", g.name, "param", exposed, "value", value, "err", err)
		return nil, nil, err
	}
	if g.isSelector(exposed) {
		return ps, v, nil
	}
	for _, t := range g.targets[exposed] {
		if err := g.checkTarget(g.nodes[t.Node], t.Key, v); err != nil {
			return nil, nil, err
		}
	}
	return ps, v, nil
}

func (g *Graph) isSelector(exposed string) bool {
	return g.mode != nil && exposed == g.mode.spec.Param
}

// checkTarget surfaces the catalogue's verdict on writing v into n.local.
func (g *Graph) checkTarget(n *Node, local string, v any) error {
	op, ok := g.catalog.Lookup(n.Kind)
	if !ok {
		return errors.New(errors.ErrCodeConfiguration, "node %q: unknown operation kind %q", n.ID, n.Kind)
	}
	if err := op.CheckParam(local, v); err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidInput
		}
		return errors.Wrap(code, err, "%s.%s", n.ID, local)
	}
	return nil
}
