// Package dag provides the processing-graph engine: a fixed-topology DAG of
// opaque operation nodes with primary and auxiliary inputs, exposed
// parameters redirected onto interior nodes, and a mode switch that
// re-splices one slot of the primary chain.
//
// # Overview
//
// A [Graph] is built once from a static [Definition]. Every node is an
// instance of an operation kind resolved through a [Catalog]; the engine
// never looks inside a kind beyond asking the catalogue whether a parameter
// value is acceptable and which auxiliary slots must be linked.
//
// Nodes live in an arena keyed by id. Links carry a [Slot]: at most one
// [SlotInput] link per node forms the primary chain from the input
// pseudo-node to the output pseudo-node, while [SlotAux] and [SlotAux2]
// links feed blend and mask sources. One node may be the aux source of many
// consumers; only primary links take part in cycle and reachability checks.
//
// # Basic Usage
//
//	def := dag.Definition{
//	    Name: "soften",
//	    Nodes: []dag.NodeSpec{
//	        {ID: "blur", Kind: "gaussian-blur"},
//	    },
//	    Chain:  []string{dag.InputID, "blur", dag.OutputID},
//	    Params: []dag.Param{{Name: "amount", Type: dag.ParamReal, Default: 1.5, Range: &dag.Range{Max: 10}}},
//	    Redirects: []dag.Redirect{
//	        {Param: "amount", Node: "blur", Key: "std-dev-x"},
//	        {Param: "amount", Node: "blur", Key: "std-dev-y"},
//	    },
//	}
//	g, err := dag.Build(def, catalog.Default(), dag.Options{})
//	err = g.Apply("amount", 3.0) // both std-dev parameters now read 3.0
//
// # Declaration Order
//
// A node's Input and Aux sources must be declared before the node itself,
// mirroring textual graph descriptions where an id is introduced once and
// referenced further down. The primary chain, redirections and mode
// alternatives are resolved after every node exists.
//
// # Mode Switch
//
// A [ModeSpec] names an enum parameter, a token in the chain and one
// alternative node per enum value. All alternatives are instantiated at
// build time and all take the same aux source; [Graph.SetMode] only moves
// the primary splice. Unknown values fall back to the first alternative.
// The new link set is validated before it is swapped in.
//
// # Errors
//
// Errors are *errors.Error values from the metagraph errors package.
// Definition problems carry CONFIGURATION, rejected values carry RANGE or
// INVALID_INPUT, and validator findings carry MISSING_LINK, CYCLE,
// DANGLING_AUX or DUPLICATE_INPUT.
//
// # Evaluation
//
// [Pull] walks the graph from the output node the way a dataflow renderer
// does: every primary and auxiliary dependency is computed first, and
// each node once.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must serialize
// Apply, SetMode and Close against one graph; independent graphs may be
// used from different goroutines.
package dag
