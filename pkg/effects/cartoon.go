package effects

import (
	"github.com/matzehuels/metagraph/pkg/catalog"
	"github.com/matzehuels/metagraph/pkg/dag"
)

// CartoonName is the registry name of the photo-to-cartoon effect.
const CartoonName = "cartoon"

// Node ids of the cartoon graph.
const (
	CartoonPassthrough     = "passthrough"
	CartoonHueChroma       = "hue-chroma"
	CartoonNoiseReduction  = "noise-reduction"
	CartoonSubchain1       = "subchain1"
	CartoonDoG             = "dog"
	CartoonSubchain2       = "subchain2"
	CartoonLevels          = "levels"
	CartoonSubchain3       = "subchain3"
	CartoonHardLight       = "hard-light"
	CartoonMultiply        = "multiply"
	CartoonOverlay         = "overlay"
	CartoonSubchain4       = "subchain4"
	CartoonDomainTransform = "domain-transform"
	CartoonMCB             = "mcb"

	// CartoonBlendSlot is the chain position the blend mode selector fills.
	CartoonBlendSlot = "blend"
)

// Blend mode selector values.
const (
	BlendHardLight = "hardlight"
	BlendMultiply  = "multiply"
	BlendOverlay   = "overlay"
)

// Default textual sub-chains run by the four gegl nodes.
const (
	CartoonSubchain1Default = "noise-reduction domain-transform n-iterations=5"
	CartoonSubchain2Default = "gimp:desaturate mode=value"
	CartoonSubchain3Default = "invert-gamma rgb-clip"
	CartoonSubchain4Default = "domain-transform domain-transform domain-transform"
)

// Cartoon returns the photo-to-cartoon definition.
//
// The primary chain runs through noise reduction, a difference of
// gaussians, levels and a blend whose aux input is a hue-chroma copy of the
// source taken right after the passthrough node. The blend node is chosen
// by blendmode; all three are instantiated and take the hue-chroma link.
func Cartoon() dag.Definition {
	return dag.Definition{
		Name:        CartoonName,
		Title:       "Photo to Cartoon",
		Description: "Makes an image into a cartoon.",
		Nodes: []dag.NodeSpec{
			{ID: CartoonPassthrough, Kind: catalog.KindNop},
			{ID: CartoonHueChroma, Kind: catalog.KindHueChroma, Input: CartoonPassthrough},
			{ID: CartoonNoiseReduction, Kind: catalog.KindNoiseReduction},
			{ID: CartoonSubchain1, Kind: catalog.KindGegl},
			{ID: CartoonDoG, Kind: catalog.KindDifferenceOfGaussians},
			{ID: CartoonSubchain2, Kind: catalog.KindGegl},
			{ID: CartoonLevels, Kind: catalog.KindLevels},
			{ID: CartoonSubchain3, Kind: catalog.KindGegl},
			{ID: CartoonHardLight, Kind: catalog.KindHardLight},
			{ID: CartoonMultiply, Kind: catalog.KindMultiply},
			{ID: CartoonOverlay, Kind: catalog.KindOverlay, Params: map[string]any{"srgb": true}},
			{ID: CartoonSubchain4, Kind: catalog.KindGegl},
			{ID: CartoonDomainTransform, Kind: catalog.KindDomainTransform},
			{ID: CartoonMCB, Kind: catalog.KindMeanCurvatureBlur},
		},
		Chain: []string{
			dag.InputID,
			CartoonPassthrough,
			CartoonNoiseReduction,
			CartoonSubchain1,
			CartoonDoG,
			CartoonSubchain2,
			CartoonLevels,
			CartoonSubchain3,
			CartoonBlendSlot,
			CartoonSubchain4,
			CartoonDomainTransform,
			CartoonMCB,
			dag.OutputID,
		},
		Params: []dag.Param{
			{
				Name:    "blendmode",
				Type:    dag.ParamEnum,
				Default: BlendHardLight,
				Values:  []string{BlendHardLight, BlendMultiply, BlendOverlay},
				Label:   "Blend Mode of Lighting and Chroma",
			},
			{
				Name: "sat", Type: dag.ParamReal, Default: 1.3,
				Range: &dag.Range{Min: 0, Max: 15}, UIRange: &dag.Range{Min: 0, Max: 15},
				Label: "Chroma", Description: "Scale, strength of effect",
			},
			{
				Name: "lightness", Type: dag.ParamReal, Default: 0.0,
				Range: &dag.Range{Min: 0, Max: 18},
				Label: "Lightness", Description: "Lightness adjustment",
			},
			{
				Name: "radius1", Type: dag.ParamReal, Default: 1.2,
				Range: &dag.Range{Min: 0.5, Max: 2}, UIRange: &dag.Range{Min: 0, Max: 2},
				Label: "Difference of Gaussian 1",
			},
			{
				Name: "radius2", Type: dag.ParamReal, Default: 0.53,
				Range: &dag.Range{Min: 0, Max: 0.6}, UIRange: &dag.Range{Min: 0, Max: 2},
				Label: "Difference of Gaussian 2",
			},
			{
				Name: "smooth", Type: dag.ParamInt, Default: 3,
				Range: &dag.Range{Min: 1, Max: 5},
				Label: "Domain Smooth Settings", Description: "Number of filtering iterations. A value between 2 and 4 is usually enough.",
			},
			{
				Name: "in_low", Type: dag.ParamReal, Default: 0.007,
				Range: &dag.Range{Min: 0.002, Max: 0.010}, UIRange: &dag.Range{Min: 0.002, Max: 0.010},
				Label: "Low Levels input", Description: "Input luminance level to become lowest output",
			},
			{
				Name: "in_high", Type: dag.ParamReal, Default: 0.009,
				Range: &dag.Range{Min: 0.006, Max: 0.030}, UIRange: &dag.Range{Min: 0.006, Max: 0.030},
				Label: "High Levels input", Description: "Input luminance level to become white",
			},
			{
				Name: "mcb", Type: dag.ParamInt, Default: 2,
				Range: &dag.Range{Min: 0, Max: 4}, UIRange: &dag.Range{Min: 0, Max: 4},
				Label: "Smooth Final Image", Description: "Controls the number of iterations",
			},
			{Name: "string1", Type: dag.ParamString, Default: CartoonSubchain1Default, Label: "GEGL 1"},
			{Name: "string2", Type: dag.ParamString, Default: CartoonSubchain2Default, Label: "GEGL 2"},
			{Name: "string3", Type: dag.ParamString, Default: CartoonSubchain3Default, Label: "GEGL 3"},
			{Name: "string4", Type: dag.ParamString, Default: CartoonSubchain4Default, Label: "GEGL 4"},
		},
		Redirects: []dag.Redirect{
			{Param: "in_high", Node: CartoonLevels, Key: "in-high"},
			{Param: "in_low", Node: CartoonLevels, Key: "in-low"},
			{Param: "smooth", Node: CartoonDomainTransform, Key: "n-iterations"},
			{Param: "sat", Node: CartoonHueChroma, Key: "chroma"},
			{Param: "radius1", Node: CartoonDoG, Key: "radius1"},
			{Param: "radius2", Node: CartoonDoG, Key: "radius2"},
			{Param: "lightness", Node: CartoonHueChroma, Key: "lightness"},
			{Param: "mcb", Node: CartoonMCB, Key: "iterations"},
			{Param: "string1", Node: CartoonSubchain1, Key: "string"},
			{Param: "string2", Node: CartoonSubchain2, Key: "string"},
			{Param: "string3", Node: CartoonSubchain3, Key: "string"},
			{Param: "string4", Node: CartoonSubchain4, Key: "string"},
		},
		Mode: &dag.ModeSpec{
			Param:     "blendmode",
			Slot:      CartoonBlendSlot,
			AuxSource: CartoonHueChroma,
			AuxSlot:   dag.SlotAux,
			Alternatives: []dag.Alternative{
				{Value: BlendHardLight, Node: CartoonHardLight},
				{Value: BlendMultiply, Node: CartoonMultiply},
				{Value: BlendOverlay, Node: CartoonOverlay},
			},
		},
	}
}
