package cache

// Keyer derives cache keys for pipeline entries.
type Keyer interface {
	// GraphKey is the key of a configured graph snapshot built from the
	// definition with the given hash.
	GraphKey(definitionHash string, opts GraphKeyOpts) string

	// ArtifactKey is the key of a rendering of the snapshot with the given hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the inputs that shape a graph snapshot besides its
// definition.
type GraphKeyOpts struct {
	Values map[string]any `json:"values,omitempty"`
	Mode   string         `json:"mode,omitempty"`
	Debug  bool           `json:"debug,omitempty"`
}

// ArtifactKeyOpts are the rendering options of an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Detailed   bool    `json:"detailed,omitempty"`
	HideParked bool    `json:"hide_parked,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key inputs under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(definitionHash string, opts GraphKeyOpts) string {
	return hashKey("graph", definitionHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
