package dag

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// Build instantiates every node of def, wires the declared branches and the
// primary chain, binds exposed parameters and validates the result.
//
// Any problem in def fails with a CONFIGURATION error, and a validator
// finding fails with its own code. No partially built graph is returned.
func Build(def Definition, cat Catalog, opts Options) (*Graph, error) {
	if cat == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "no operation catalogue")
	}
	if err := errors.ValidateID(def.Name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "definition name")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	g := &Graph{
		id:      uuid.NewString(),
		name:    def.Name,
		nodes:   make(map[string]*Node, len(def.Nodes)+2),
		params:  make(map[string]*paramState, len(def.Params)),
		targets: make(map[string][]Target),
		catalog: cat,
		logger:  logger,
		debug:   opts.Debug,
	}

	if err := g.build(def); err != nil {
		if !errors.Is(err, errors.ErrCodeConfiguration) {
			err = errors.Wrap(errors.ErrCodeConfiguration, err, "definition %q", def.Name)
		}
		return nil, err
	}
	if err := g.Validate().Err(); err != nil {
		return nil, err
	}

	g.logger.Debug("graph built",
		"graph", g.name,
		"id", g.id,
		"nodes", len(g.order),
		"links", len(g.links),
		"params", len(g.porder))
	return g, nil
}

func (g *Graph) build(def Definition) error {
	slot := ""
	if def.Mode != nil {
		slot = def.Mode.Slot
	}

	g.addNode(InputID, KindInputProxy, nil)
	for _, spec := range def.Nodes {
		if err := g.declare(spec, slot); err != nil {
			return err
		}
	}
	g.addNode(OutputID, KindOutputProxy, nil)

	for _, p := range def.Params {
		if err := g.declareParam(p); err != nil {
			return err
		}
	}
	if def.Mode != nil {
		if err := g.bindMode(*def.Mode, def.Chain); err != nil {
			return err
		}
	}
	if err := g.linkChain(def.Chain); err != nil {
		return err
	}
	for _, r := range def.Redirects {
		if err := g.Redirect(r.Param, r.Node, r.Key); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) addNode(id, kind string, params map[string]any) {
	if params == nil {
		params = make(map[string]any)
	}
	g.nodes[id] = &Node{ID: id, Kind: kind, Params: params}
	g.order = append(g.order, id)
}

func (g *Graph) declare(spec NodeSpec, slot string) error {
	if err := errors.ValidateID(spec.ID); err != nil {
		return err
	}
	switch spec.ID {
	case InputID, OutputID, slot:
		return errors.New(errors.ErrCodeConfiguration, "node id %q is reserved", spec.ID)
	}
	if _, dup := g.nodes[spec.ID]; dup {
		return errors.New(errors.ErrCodeConfiguration, "duplicate node id %q", spec.ID)
	}

	op, ok := g.catalog.Lookup(spec.Kind)
	if !ok {
		return errors.New(errors.ErrCodeConfiguration, "node %q: unknown operation kind %q", spec.ID, spec.Kind)
	}
	for _, k := range slices.Sorted(maps.Keys(spec.Params)) {
		if err := op.CheckParam(k, spec.Params[k]); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "node %q: parameter %q", spec.ID, k)
		}
	}

	if spec.Input != "" {
		if err := g.linkDeclared(spec.Input, spec.ID, SlotInput); err != nil {
			return err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(spec.Aux)) {
		s := Slot(k)
		if !s.Valid() || s.IsPrimary() {
			return errors.New(errors.ErrCodeConfiguration, "node %q: %q is not an auxiliary slot", spec.ID, k)
		}
		if err := g.linkDeclared(spec.Aux[k], spec.ID, s); err != nil {
			return err
		}
	}

	g.addNode(spec.ID, spec.Kind, maps.Clone(spec.Params))
	return nil
}

// linkDeclared wires from into to.slot while to is being declared. The
// source must already exist.
func (g *Graph) linkDeclared(from, to string, slot Slot) error {
	if _, ok := g.nodes[from]; !ok {
		return errors.New(errors.ErrCodeConfiguration, "node %q references %q before it is declared", to, from)
	}
	links, err := addLink(g.links, Link{From: from, To: to, Slot: slot})
	if err != nil {
		return err
	}
	g.links = links
	return nil
}

func (g *Graph) declareParam(p Param) error {
	if err := p.Check(); err != nil {
		return err
	}
	if _, dup := g.params[p.Name]; dup {
		return errors.New(errors.ErrCodeConfiguration, "duplicate parameter %q", p.Name)
	}
	v, _ := p.Coerce(p.Default)
	g.params[p.Name] = &paramState{decl: p, value: v}
	g.porder = append(g.porder, p.Name)
	return nil
}

func (g *Graph) linkChain(chain []string) error {
	if len(chain) < 2 {
		return errors.New(errors.ErrCodeConfiguration, "primary chain needs at least input and output")
	}
	ids := make([]string, len(chain))
	seen := make(map[string]bool, len(chain))
	for i, id := range chain {
		if g.mode != nil && id == g.mode.spec.Slot {
			id = g.mode.active
		} else if _, ok := g.nodes[id]; !ok {
			return errors.New(errors.ErrCodeConfiguration, "primary chain references unknown node %q", id)
		}
		if seen[id] {
			return errors.New(errors.ErrCodeConfiguration, "node %q appears twice in the primary chain", id)
		}
		seen[id] = true
		ids[i] = id
	}
	for i := 1; i < len(ids); i++ {
		links, err := addLink(g.links, Link{From: ids[i-1], To: ids[i], Slot: SlotInput})
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "primary chain")
		}
		g.links = links
	}
	return nil
}
