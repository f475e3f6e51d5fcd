package dag

// Catalog resolves operation kinds to their descriptions. The engine treats
// it as a black box: kinds are opaque strings and parameter checks are
// delegated to the catalogue's own verdict.
type Catalog interface {
	Lookup(kind string) (Operation, bool)
}

// Operation describes one operation kind offered by a [Catalog].
type Operation interface {
	// Kind returns the operation identifier, e.g. "gaussian-blur".
	Kind() string

	// AuxSlots returns the auxiliary slots the kind requires to be linked.
	AuxSlots() []Slot

	// CheckParam reports whether value is acceptable for the local
	// parameter name. A nil error means the write may proceed.
	CheckParam(name string, value any) error
}
