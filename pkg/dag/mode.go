package dag

import (
	"slices"

	"github.com/matzehuels/metagraph/pkg/errors"
)

type modeState struct {
	spec       ModeSpec
	upstream   string
	downstream string
	active     string
	fallback   Alternative
}

// HasMode reports whether the graph declares a mode switch.
func (g *Graph) HasMode() bool { return g.mode != nil }

// Mode returns the current selector value and the node spliced for it.
func (g *Graph) Mode() (value, node string) {
	if g.mode == nil {
		return "", ""
	}
	v, _ := g.params[g.mode.spec.Param].value.(string)
	return v, g.mode.active
}

// ModeSpec returns a copy of the mode switch declaration, or nil.
func (g *Graph) ModeSpec() *ModeSpec {
	if g.mode == nil {
		return nil
	}
	spec := g.mode.spec
	spec.Alternatives = slices.Clone(spec.Alternatives)
	return &spec
}

// Parked returns the alternative nodes that are instantiated but currently
// not spliced into the primary chain.
func (g *Graph) Parked() []string {
	if g.mode == nil {
		return nil
	}
	var out []string
	for _, a := range g.mode.spec.Alternatives {
		if a.Node != g.mode.active && !slices.Contains(out, a.Node) {
			out = append(out, a.Node)
		}
	}
	return out
}

// SetMode splices the alternative selected by value into the mode slot and
// returns the id of the node now active.
//
// An unrecognised value selects the first declared alternative and logs a
// warning instead of failing. The new link set is computed and validated
// before it replaces the old one, so the graph is never observed half
// spliced. In debug mode a validator finding is returned and the previous
// topology kept; otherwise the finding is logged and the default
// alternative is spliced.
func (g *Graph) SetMode(value string) (string, error) {
	if err := g.checkOpen(); err != nil {
		return "", err
	}
	m := g.mode
	if m == nil {
		return "", errors.New(errors.ErrCodeConfiguration, "graph %q has no mode switch", g.name)
	}

	target := m.spec.Node(value)
	if target == "" {
		first := m.spec.Alternatives[0]
		g.logger.Warn("unknown mode value",
			"graph", g.name,
			"code", errors.ErrCodeUnknownMode,
			"value", value,
			"using", first.Value)
		value, target = first.Value, first.Node
	}
	if target == m.active {
		g.setModeValue(value)
		return target, nil
	}

	next := m.splice(g.links, target)
	if res := g.validateLinks(next); !res.OK() {
		if g.debug {
			return m.active, res.Err()
		}
		g.logger.Warn("relink failed validation, using default alternative",
			"graph", g.name,
			"value", value,
			"default", m.fallback.Value,
			"err", res.Err())
		value, target = m.fallback.Value, m.fallback.Node
		next = m.splice(g.links, target)
		if res := g.validateLinks(next); !res.OK() {
			return m.active, res.Err()
		}
	}

	prev := m.active
	g.links = next
	m.active = target
	g.setModeValue(value)
	g.logger.Debug("relinked", "graph", g.name, "slot", m.spec.Slot, "from", prev, "to", target)
	return target, nil
}

func (g *Graph) setModeValue(value string) {
	g.params[g.mode.spec.Param].value = value
}

// splice returns a copy of links with the active alternative's primary
// splice replaced by one through target. Aux wiring is left alone.
func (m *modeState) splice(links []Link, target string) []Link {
	next := make([]Link, 0, len(links))
	for _, l := range links {
		if l.Slot.IsPrimary() &&
			((l.From == m.upstream && l.To == m.active) || (l.From == m.active && l.To == m.downstream)) {
			continue
		}
		next = append(next, l)
	}
	return append(next,
		Link{From: m.upstream, To: target, Slot: SlotInput},
		Link{From: target, To: m.downstream, Slot: SlotInput},
	)
}

func (g *Graph) bindMode(spec ModeSpec, chain []string) error {
	p, ok := g.params[spec.Param]
	if !ok {
		return errors.New(errors.ErrCodeConfiguration, "mode selector %q is not a declared parameter", spec.Param)
	}
	if p.decl.Type != ParamEnum {
		return errors.New(errors.ErrCodeConfiguration, "mode selector %q must be an enum", spec.Param)
	}
	if err := errors.ValidateID(spec.Slot); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "mode slot")
	}

	pos := -1
	for i, id := range chain {
		if id != spec.Slot {
			continue
		}
		if pos >= 0 {
			return errors.New(errors.ErrCodeConfiguration, "mode slot %q appears twice in the primary chain", spec.Slot)
		}
		pos = i
	}
	if pos <= 0 || pos == len(chain)-1 {
		return errors.New(errors.ErrCodeConfiguration, "mode slot %q must sit inside the primary chain", spec.Slot)
	}

	if len(spec.Alternatives) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "mode %q has no alternatives", spec.Param)
	}
	if spec.AuxSlot == "" {
		spec.AuxSlot = SlotAux
	}
	if !spec.AuxSlot.Valid() || spec.AuxSlot.IsPrimary() {
		return errors.New(errors.ErrCodeConfiguration, "mode %q: %q is not an auxiliary slot", spec.Param, spec.AuxSlot)
	}
	if spec.AuxSource != "" {
		if _, ok := g.nodes[spec.AuxSource]; !ok {
			return errors.New(errors.ErrCodeConfiguration, "mode %q: unknown aux source %q", spec.Param, spec.AuxSource)
		}
	}

	values := make(map[string]bool, len(spec.Alternatives))
	wired := make(map[string]bool, len(spec.Alternatives))
	for _, a := range spec.Alternatives {
		if !slices.Contains(p.decl.Values, a.Value) {
			return errors.New(errors.ErrCodeConfiguration, "mode %q: %q is not one of %v", spec.Param, a.Value, p.decl.Values)
		}
		if values[a.Value] {
			return errors.New(errors.ErrCodeConfiguration, "mode %q: duplicate alternative %q", spec.Param, a.Value)
		}
		values[a.Value] = true

		n, ok := g.nodes[a.Node]
		if !ok || n.IsProxy() {
			return errors.New(errors.ErrCodeConfiguration, "mode %q: unknown alternative node %q", spec.Param, a.Node)
		}
		if slices.Contains(chain, a.Node) {
			return errors.New(errors.ErrCodeConfiguration, "alternative %q must not be named in the primary chain", a.Node)
		}
		if wired[a.Node] {
			continue
		}
		wired[a.Node] = true
		if spec.AuxSource == "" {
			continue
		}
		links, err := addLink(g.links, Link{From: spec.AuxSource, To: a.Node, Slot: spec.AuxSlot})
		if err != nil {
			return err
		}
		g.links = links
	}
	for _, l := range g.links {
		if l.Slot.IsPrimary() && (wired[l.From] || wired[l.To]) {
			return errors.New(errors.ErrCodeConfiguration, "alternative linked outside the mode slot: %s", l)
		}
	}

	def, _ := p.value.(string)
	fallback := spec.Alternatives[0]
	if n := spec.Node(def); n != "" {
		fallback = Alternative{Value: def, Node: n}
	}
	p.value = fallback.Value

	g.mode = &modeState{
		spec:       spec,
		upstream:   chain[pos-1],
		downstream: chain[pos+1],
		active:     fallback.Node,
		fallback:   fallback,
	}
	return nil
}
