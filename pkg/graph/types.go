package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/metagraph/pkg/dag"
)

// =============================================================================
// Graph - Processing Graph Snapshot
// =============================================================================

// Graph is the canonical serialization format for a built processing graph.
// Used for API responses, export files and cached artifacts.
type Graph struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Chain  []string `json:"chain"`
	Mode   *Mode    `json:"mode,omitempty"`
	Nodes  []Node   `json:"nodes"`
	Links  []Link   `json:"links"`
	Params []Param  `json:"params,omitempty"`
	Order  []string `json:"order,omitempty"` // evaluation order of the nodes the output needs
}

// Mode records the state of the mode switch.
type Mode struct {
	Param  string   `json:"param"`
	Slot   string   `json:"slot"`
	Value  string   `json:"value"`
	Active string   `json:"active"`
	Parked []string `json:"parked,omitempty"`
}

// =============================================================================
// Node, Link, Param
// =============================================================================

// Node is a serialized node with its current local parameters.
type Node struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
	Proxy  bool           `json:"proxy,omitempty"`  // input or output pseudo-node
	Parked bool           `json:"parked,omitempty"` // inactive mode alternative
}

// Link is a serialized link.
type Link struct {
	From string `json:"from"`
	To   string `json:"to"`
	Slot string `json:"slot"`
}

// IsPrimary reports whether the link is on a primary input.
func (l Link) IsPrimary() bool { return l.Slot == string(dag.SlotInput) }

// Param is an exposed parameter with its current value and bindings.
type Param struct {
	dag.Param
	Value   any          `json:"value"`
	Targets []dag.Target `json:"targets,omitempty"`
}

// =============================================================================
// DAG → Graph Conversion
// =============================================================================

// FromDAG takes a snapshot of g. Nodes keep declaration order; links are
// sorted by (to, slot, from) for deterministic output.
func FromDAG(g *dag.Graph) Graph {
	out := Graph{
		ID:    g.ID(),
		Name:  g.Name(),
		Chain: g.PrimaryChain(),
	}

	parked := make(map[string]bool)
	if spec := g.ModeSpec(); spec != nil {
		value, active := g.Mode()
		out.Mode = &Mode{
			Param:  spec.Param,
			Slot:   spec.Slot,
			Value:  value,
			Active: active,
			Parked: g.Parked(),
		}
		for _, id := range out.Mode.Parked {
			parked[id] = true
		}
	}

	for _, n := range g.Nodes() {
		node := Node{
			ID:     n.ID,
			Kind:   n.Kind,
			Proxy:  n.IsProxy(),
			Parked: parked[n.ID],
		}
		if len(n.Params) > 0 {
			node.Params = maps.Clone(n.Params)
		}
		out.Nodes = append(out.Nodes, node)
	}

	links := g.Links()
	slices.SortFunc(links, compareLinks)
	for _, l := range links {
		out.Links = append(out.Links, Link{From: l.From, To: l.To, Slot: string(l.Slot)})
	}

	for _, p := range g.Params() {
		v, _ := g.Value(p.Name)
		out.Params = append(out.Params, Param{Param: p, Value: v, Targets: g.Targets(p.Name)})
	}

	if order, err := g.Order(); err == nil {
		out.Order = order
	}
	return out
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Values returns the current value of every exposed parameter.
func (g Graph) Values() map[string]any {
	out := make(map[string]any, len(g.Params))
	for _, p := range g.Params {
		out[p.Name] = p.Value
	}
	return out
}

func compareLinks(a, b dag.Link) int {
	for _, c := range [][2]string{{a.To, b.To}, {string(a.Slot), string(b.Slot)}, {a.From, b.From}} {
		switch {
		case c[0] < c[1]:
			return -1
		case c[0] > c[1]:
			return 1
		}
	}
	return 0
}
