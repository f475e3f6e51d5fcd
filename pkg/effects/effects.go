// Package effects bundles the built-in graph definitions.
//
// Each effect is a fixed topology of catalogue operations with a set of
// exposed parameters redirected onto interior nodes:
//
//   - cartoon: turns a photo into a cartoon through difference-of-gaussians
//     edges, levels and a blend with a hue-chroma copy of the source. The
//     blend node is picked by the blendmode selector.
//   - plastic-wrap: wraps the content in a glossy plastic layer built from
//     two alpha-locked blur branches and a pair of embosses.
//
// Definitions are returned fresh on every call, so callers may modify them
// before building.
package effects

import (
	"slices"

	"github.com/matzehuels/metagraph/pkg/catalog"
	"github.com/matzehuels/metagraph/pkg/dag"
)

// Effect is a named, bundled graph definition.
type Effect struct {
	Name        string
	Title       string
	Category    string
	Description string

	define func() dag.Definition
}

// Definition returns a fresh copy of the effect's topology.
func (e Effect) Definition() dag.Definition { return e.define() }

// Build instantiates the effect against the built-in catalogue.
func (e Effect) Build(opts dag.Options) (*dag.Graph, error) {
	return dag.Build(e.define(), catalog.Default(), opts)
}

var registry = []Effect{
	{
		Name:        CartoonName,
		Title:       "Photo to Cartoon",
		Category:    "Artistic",
		Description: "Makes an image into a cartoon.",
		define:      Cartoon,
	},
	{
		Name:        PlasticWrapName,
		Title:       "Plastic Wrap",
		Category:    "Light and Shadow",
		Description: "Makes the content of an image look covered in plastic wrap. Works best on images with an alpha channel.",
		define:      PlasticWrap,
	},
}

// All returns every bundled effect ordered by name.
func All() []Effect {
	out := slices.Clone(registry)
	slices.SortFunc(out, func(a, b Effect) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Names returns the names of every bundled effect in sorted order.
func Names() []string {
	var names []string
	for _, e := range All() {
		names = append(names, e.Name)
	}
	return names
}

// Lookup finds a bundled effect by name.
func Lookup(name string) (Effect, bool) {
	for _, e := range registry {
		if e.Name == name {
			return e, true
		}
	}
	return Effect{}, false
}
