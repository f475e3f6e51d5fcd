package dag

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// Pseudo-node ids and kinds created by [Build] for every graph.
const (
	// InputID is the id of the node through which the source image enters.
	InputID = "input"
	// OutputID is the id of the node whose value is the graph result.
	OutputID = "output"

	// KindInputProxy is the operation kind of the input pseudo-node.
	KindInputProxy = "input-proxy"
	// KindOutputProxy is the operation kind of the output pseudo-node.
	KindOutputProxy = "output-proxy"
)

// Slot names a node input. Every node has at most one [SlotInput] link;
// blend and mask kinds additionally accept auxiliary slots.
type Slot string

const (
	SlotInput Slot = "input"
	SlotAux   Slot = "aux"
	SlotAux2  Slot = "aux2"
)

// Valid reports whether s is one of the known slot names.
func (s Slot) Valid() bool {
	return s == SlotInput || s == SlotAux || s == SlotAux2
}

// IsPrimary reports whether s is the primary input slot.
func (s Slot) IsPrimary() bool { return s == SlotInput }

// Node is an instance of an opaque operation with its bound parameters.
// Values returned by [Graph.Node] and [Graph.Nodes] are copies; parameters
// change only through [Graph.Apply].
type Node struct {
	ID     string
	Kind   string
	Params map[string]any
}

// IsProxy reports whether n is the input or output pseudo-node.
func (n Node) IsProxy() bool {
	return n.Kind == KindInputProxy || n.Kind == KindOutputProxy
}

// Link is a directed edge feeding From's output into To's Slot.
type Link struct {
	From string
	To   string
	Slot Slot
}

// String renders the link as "from -> to.slot".
func (l Link) String() string {
	return l.From + " -> " + l.To + "." + string(l.Slot)
}

// Options configures graph construction and mutation.
type Options struct {
	// Logger receives build and relink diagnostics. Nil means log.Default().
	Logger *log.Logger

	// Debug makes validator findings after a mode switch fatal. When false,
	// a failing splice is logged and the default alternative is used instead.
	Debug bool
}

// Graph is a built processing graph: an arena of nodes keyed by id, the
// link set, the exposed parameters and their redirections, and an optional
// mode switch.
//
// The zero value is not usable - use [Build]. Graph is not safe for
// concurrent use; callers serialize Apply, SetMode and Close against one
// instance. Independent graphs share nothing.
type Graph struct {
	id      string
	name    string
	nodes   map[string]*Node
	order   []string
	links   []Link
	params  map[string]*paramState
	porder  []string
	targets map[string][]Target
	mode    *modeState
	catalog Catalog
	logger  *log.Logger
	debug   bool
	closed  bool
}

type paramState struct {
	decl  Param
	value any
}

// ID returns the unique instance id assigned at build time.
func (g *Graph) ID() string { return g.id }

// Name returns the definition name the graph was built from.
func (g *Graph) Name() string { return g.name }

// Closed reports whether [Graph.Close] has been called.
func (g *Graph) Closed() bool { return g.closed }

// Close tears the graph down, releasing every node and link together.
// Later mutations fail with GRAPH_CLOSED; reads return empty results.
func (g *Graph) Close() {
	if g.closed {
		return
	}
	g.logger.Debug("graph closed", "graph", g.name, "id", g.id)
	g.closed = true
	g.nodes = nil
	g.order = nil
	g.links = nil
	g.targets = nil
	g.mode = nil
}

func (g *Graph) checkOpen() error {
	if g.closed {
		return errors.New(errors.ErrCodeClosed, "graph %q has been closed", g.name)
	}
	return nil
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return copyNode(n), true
}

// Nodes returns copies of all nodes in declaration order, starting with the
// input pseudo-node and ending with the output pseudo-node.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, copyNode(g.nodes[id]))
	}
	return out
}

// NodeCount returns the number of nodes, pseudo-nodes included.
func (g *Graph) NodeCount() int { return len(g.order) }

// Links returns a copy of the current link set.
func (g *Graph) Links() []Link { return slices.Clone(g.links) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Inputs returns the sources feeding each linked slot of node id.
func (g *Graph) Inputs(id string) map[Slot]string {
	in := make(map[Slot]string)
	for _, l := range g.links {
		if l.To == id {
			in[l.Slot] = l.From
		}
	}
	return in
}

// Consumers returns the links leaving node id, in link order.
func (g *Graph) Consumers(id string) []Link {
	var out []Link
	for _, l := range g.links {
		if l.From == id {
			out = append(out, l)
		}
	}
	return out
}

// Param returns the current value of a node's local parameter.
func (g *Graph) Param(nodeID, local string) (any, bool) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return nil, false
	}
	v, ok := n.Params[local]
	return v, ok
}

// Shape returns the link set as sorted strings. Two graphs with equal
// shapes route data identically.
func (g *Graph) Shape() []string {
	out := make([]string, len(g.links))
	for i, l := range g.links {
		out[i] = l.String()
	}
	slices.Sort(out)
	return out
}

// PrimaryChain returns the node ids on the primary path from input to
// output. Side branches that end in an auxiliary slot are not part of it.
// Returns nil if output is not reachable over primary links.
func (g *Graph) PrimaryChain() []string {
	succ := primarySuccessors(g.links)
	seen := make(map[string]bool)
	var path []string

	var walk func(id string) bool
	walk = func(id string) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		path = append(path, id)
		if id == OutputID {
			return true
		}
		for _, next := range succ[id] {
			if walk(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if _, ok := g.nodes[InputID]; !ok || !walk(InputID) {
		return nil
	}
	return path
}

func copyNode(n *Node) Node {
	return Node{ID: n.ID, Kind: n.Kind, Params: maps.Clone(n.Params)}
}

func primarySuccessors(links []Link) map[string][]string {
	succ := make(map[string][]string)
	for _, l := range links {
		if l.Slot.IsPrimary() {
			succ[l.From] = append(succ[l.From], l.To)
		}
	}
	return succ
}

// addLink appends l to links after checking that the destination slot is
// still free.
func addLink(links []Link, l Link) ([]Link, error) {
	if !l.Slot.Valid() {
		return links, errors.New(errors.ErrCodeConfiguration, "unknown slot %q on %q", l.Slot, l.To)
	}
	if l.From == l.To {
		return links, errors.New(errors.ErrCodeConfiguration, "node %q cannot feed itself", l.From)
	}
	for _, e := range links {
		if e.To == l.To && e.Slot == l.Slot {
			code := errors.ErrCodeConfiguration
			if l.Slot.IsPrimary() {
				code = errors.ErrCodeDuplicateInput
			}
			return links, errors.New(code, "slot %s.%s already fed by %q", l.To, l.Slot, e.From)
		}
	}
	return append(links, l), nil
}
