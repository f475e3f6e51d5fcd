package dag

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/metagraph/pkg/errors"
)

// EvalFunc computes the value of one node from the values of its linked
// inputs. The input pseudo-node is called with no inputs.
type EvalFunc[T any] func(ctx context.Context, n Node, inputs map[Slot]T) (T, error)

// Pull evaluates the output node by first computing every primary and
// auxiliary dependency it needs. Each node is evaluated at most once;
// nodes the output does not depend on are never visited.
func Pull[T any](ctx context.Context, g *Graph, fn EvalFunc[T]) (T, error) {
	var zero T
	if err := g.checkOpen(); err != nil {
		return zero, err
	}

	deps := make(map[string][]Link)
	for _, l := range g.links {
		deps[l.To] = append(deps[l.To], l)
	}

	memo := make(map[string]T)
	active := make(map[string]bool)

	var eval func(id string) (T, error)
	eval = func(id string) (T, error) {
		if v, ok := memo[id]; ok {
			return v, nil
		}
		if active[id] {
			return zero, errors.New(errors.ErrCodeCycle, "node %q depends on itself", id)
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		n, ok := g.nodes[id]
		if !ok {
			return zero, errors.New(errors.ErrCodeMissingLink, "unknown node %q", id)
		}

		active[id] = true
		inputs := make(map[Slot]T, len(deps[id]))
		for _, l := range deps[id] {
			v, err := eval(l.From)
			if err != nil {
				return zero, err
			}
			inputs[l.Slot] = v
		}
		delete(active, id)

		v, err := fn(ctx, copyNode(n), inputs)
		if err != nil {
			if errors.GetCode(err) == "" {
				err = errors.Wrap(errors.ErrCodeInternal, err, "evaluate %q", id)
			}
			return zero, err
		}
		memo[id] = v
		return v, nil
	}
	return eval(OutputID)
}

// Order returns the ids of the nodes the output depends on, in an order
// where every node comes after its inputs.
func (g *Graph) Order() ([]string, error) {
	var order []string
	_, err := Pull(context.Background(), g, func(_ context.Context, n Node, _ map[Slot]struct{}) (struct{}, error) {
		order = append(order, n.ID)
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Describe returns a compact textual form of the node and its parameters,
// ordered by key, for logs and cache keys.
func (n Node) Describe() string {
	s := n.ID + ":" + n.Kind
	for _, k := range slices.Sorted(maps.Keys(n.Params)) {
		s += " " + k + "=" + fmt.Sprint(n.Params[k])
	}
	return s
}
