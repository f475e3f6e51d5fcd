package dag

import (
	"fmt"
	"strings"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// Issue is a single validator finding.
type Issue struct {
	Code    errors.Code `json:"code"`
	Node    string      `json:"node,omitempty"`
	Message string      `json:"message"`
}

func (i Issue) String() string {
	if i.Node == "" {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Code, i.Node, i.Message)
}

// ValidationResult collects the findings of [Graph.Validate].
type ValidationResult struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether no issue was found.
func (r ValidationResult) OK() bool { return len(r.Issues) == 0 }

// Has reports whether any issue carries code.
func (r ValidationResult) Has(code errors.Code) bool {
	for _, i := range r.Issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

// Err folds the findings into one error carrying the first issue's code,
// or returns nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		msgs[i] = is.String()
	}
	return errors.New(r.Issues[0].Code, "graph invalid: %s", strings.Join(msgs, "; "))
}

func (r *ValidationResult) add(code errors.Code, node, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Code: code, Node: node, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the current topology. Only primary links count for
// reachability and cycles; an aux link may reuse any upstream node, and one
// node may be the aux source of many consumers. Nodes with no primary
// links, such as parked mode alternatives, are not inspected.
func (g *Graph) Validate() ValidationResult {
	return g.validateLinks(g.links)
}

func (g *Graph) validateLinks(links []Link) ValidationResult {
	var res ValidationResult
	if g.closed {
		res.add(errors.ErrCodeClosed, "", "graph has been closed")
		return res
	}

	succ := make(map[string][]string)
	preds := make(map[string][]string)
	auxOut := make(map[string][]Link)
	auxIn := make(map[string][]Link)

	for _, l := range links {
		_, okFrom := g.nodes[l.From]
		_, okTo := g.nodes[l.To]
		if !okFrom || !okTo {
			res.add(errors.ErrCodeMissingLink, l.To, "link %s has an unknown endpoint", l)
			continue
		}
		if l.Slot.IsPrimary() {
			succ[l.From] = append(succ[l.From], l.To)
			preds[l.To] = append(preds[l.To], l.From)
		} else {
			auxOut[l.From] = append(auxOut[l.From], l)
			auxIn[l.To] = append(auxIn[l.To], l)
		}
	}

	for _, id := range g.order {
		if len(preds[id]) > 1 {
			res.add(errors.ErrCodeDuplicateInput, id, "%d primary inputs: %v", len(preds[id]), preds[id])
		}
	}
	if len(preds[InputID]) > 0 {
		res.add(errors.ErrCodeCycle, InputID, "input has a primary input")
	}

	g.findCycles(succ, &res)

	reach := reachable(succ, InputID)
	if len(preds[OutputID]) == 0 {
		res.add(errors.ErrCodeMissingLink, OutputID, "output has no primary input")
	} else if !reach[OutputID] {
		res.add(errors.ErrCodeMissingLink, OutputID, "output is not reachable from input")
	}

	live := liveNodes(succ, auxOut, reach)
	for _, id := range g.order {
		if id == InputID || !reach[id] || live[id] {
			continue
		}
		res.add(errors.ErrCodeMissingLink, id, "never reaches output")
	}

	for _, id := range g.order {
		if !live[id] {
			continue
		}
		filled := make(map[Slot]bool)
		for _, l := range auxIn[id] {
			filled[l.Slot] = true
			if !reach[l.From] {
				res.add(errors.ErrCodeDanglingAux, id, "%s source %q is not fed from input", l.Slot, l.From)
			}
		}
		n := g.nodes[id]
		if n.IsProxy() {
			continue
		}
		op, ok := g.catalog.Lookup(n.Kind)
		if !ok {
			continue
		}
		for _, s := range op.AuxSlots() {
			if !filled[s] {
				res.add(errors.ErrCodeDanglingAux, id, "%s kind requires a %s link", n.Kind, s)
			}
		}
	}
	return res
}

// findCycles runs a three-colour DFS over primary links in declaration
// order and records one issue per back edge.
func (g *Graph) findCycles(succ map[string][]string, res *ValidationResult) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.order))

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, next := range succ[id] {
			switch color[next] {
			case gray:
				res.add(errors.ErrCodeCycle, next, "primary cycle through %q", id)
			case white:
				visit(next)
			}
		}
		color[id] = black
	}
	for _, id := range g.order {
		if color[id] == white {
			visit(id)
		}
	}
}

func reachable(succ map[string][]string, from string) map[string]bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range succ[id] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// liveNodes returns the reachable nodes whose result is used: they reach
// output over primary links, or feed an aux slot of a live node.
func liveNodes(succ map[string][]string, auxOut map[string][]Link, reach map[string]bool) map[string]bool {
	live := make(map[string]bool)
	if !reach[OutputID] {
		return live
	}
	live[OutputID] = true
	for changed := true; changed; {
		changed = false
		for id := range reach {
			if live[id] {
				continue
			}
			for _, next := range succ[id] {
				if live[next] {
					live[id] = true
				}
			}
			for _, l := range auxOut[id] {
				if live[l.To] {
					live[id] = true
				}
			}
			if live[id] {
				changed = true
			}
		}
	}
	return live
}
