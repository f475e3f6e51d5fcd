package dag

// Definition is the static topology of a graph. Nodes are declared in order;
// a node may only take its Input and Aux sources from nodes declared before
// it (or from [InputID]). Chain lists the primary chain from input to
// output and may name the mode slot in place of a node id.
type Definition struct {
	Name        string     `json:"name" toml:"name"`
	Title       string     `json:"title,omitempty" toml:"title,omitempty"`
	Description string     `json:"description,omitempty" toml:"description,omitempty"`
	Nodes       []NodeSpec `json:"nodes" toml:"nodes"`
	Chain       []string   `json:"chain" toml:"chain"`
	Params      []Param    `json:"params,omitempty" toml:"params,omitempty"`
	Redirects   []Redirect `json:"redirects,omitempty" toml:"redirects,omitempty"`
	Mode        *ModeSpec  `json:"mode,omitempty" toml:"mode,omitempty"`
}

// NodeSpec declares one node. Input and Aux wire branches that are not
// part of the primary chain, such as an alpha-lock sub-chain feeding a
// compositor's aux slot.
type NodeSpec struct {
	ID     string            `json:"id" toml:"id"`
	Kind   string            `json:"kind" toml:"kind"`
	Params map[string]any    `json:"params,omitempty" toml:"params,omitempty"`
	Input  string            `json:"input,omitempty" toml:"input,omitempty"`
	Aux    map[string]string `json:"aux,omitempty" toml:"aux,omitempty"`
}

// Redirect binds an exposed parameter to a local parameter of a node.
type Redirect struct {
	Param string `json:"param" toml:"param"`
	Node  string `json:"node" toml:"node"`
	Key   string `json:"key" toml:"key"`
}

// ModeSpec declares a mode switch. The enum parameter named by Param picks
// which alternative is spliced into the chain where Slot appears. Every
// alternative takes AuxSource on its AuxSlot.
type ModeSpec struct {
	Param        string        `json:"param" toml:"param"`
	Slot         string        `json:"slot" toml:"slot"`
	AuxSource    string        `json:"aux_source,omitempty" toml:"aux_source,omitempty"`
	AuxSlot      Slot          `json:"aux_slot,omitempty" toml:"aux_slot,omitempty"`
	Alternatives []Alternative `json:"alternatives" toml:"alternatives"`
}

// Alternative maps one selector value to the node spliced for it.
type Alternative struct {
	Value string `json:"value" toml:"value"`
	Node  string `json:"node" toml:"node"`
}

// Node returns the node id for value, or "" if value has no alternative.
func (m *ModeSpec) Node(value string) string {
	for _, a := range m.Alternatives {
		if a.Value == value {
			return a.Node
		}
	}
	return ""
}

// ParamByName returns the declaration of the named exposed parameter.
func (d *Definition) ParamByName(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
