package catalog

import "github.com/matzehuels/metagraph/pkg/dag"

// Built-in operation kinds.
const (
	KindNop                   = "nop"
	KindGaussianBlur          = "gaussian-blur"
	KindEmboss                = "emboss"
	KindNoiseReduction        = "noise-reduction"
	KindLevels                = "levels"
	KindDifferenceOfGaussians = "difference-of-gaussians"
	KindDomainTransform       = "domain-transform"
	KindMeanCurvatureBlur     = "mean-curvature-blur"
	KindHueChroma             = "hue-chroma"
	KindGegl                  = "gegl"
	KindDesaturate            = "desaturate"
	KindOver                  = "over"
	KindSrcIn                 = "src-in"
	KindMultiply              = "multiply"
	KindHardLight             = "hard-light"
	KindOverlay               = "overlay"
	KindLayerMode             = "gimp:layer-mode"
)

var defaultCatalog = New(builtin()...)

// Default returns the shared built-in catalogue. It must not be modified;
// use [New] with [Builtin] for a private copy.
func Default() *Catalog { return defaultCatalog }

// Builtin returns fresh descriptions of the built-in kinds.
func Builtin() []*Op { return builtin() }

func realSpec(lo, hi float64) Spec { return Spec{Type: dag.ParamReal, Range: &dag.Range{Min: lo, Max: hi}} }
func intSpec(lo, hi float64) Spec { return Spec{Type: dag.ParamInt, Range: &dag.Range{Min: lo, Max: hi}} }

var aux = []dag.Slot{dag.SlotAux}

func builtin() []*Op {
	blend := map[string]Spec{"srgb": {Type: TypeBool}}
	return []*Op{
		NewOp(KindNop, "Pass-through", nil, nil),
		NewOp(KindGaussianBlur, "Gaussian Blur", nil, map[string]Spec{
			"std-dev-x": realSpec(0, 1500),
			"std-dev-y": realSpec(0, 1500),
		}),
		NewOp(KindEmboss, "Emboss", nil, map[string]Spec{
			"azimuth":   realSpec(0, 360),
			"elevation": realSpec(0, 180),
			"depth":     intSpec(1, 100),
		}),
		NewOp(KindNoiseReduction, "Noise Reduction", nil, map[string]Spec{
			"iterations": intSpec(0, 32),
		}),
		NewOp(KindLevels, "Levels", nil, map[string]Spec{
			"in-low":   realSpec(-1, 4),
			"in-high":  realSpec(-1, 4),
			"out-low":  realSpec(-1, 4),
			"out-high": realSpec(-1, 4),
		}),
		NewOp(KindDifferenceOfGaussians, "Difference of Gaussians", nil, map[string]Spec{
			"radius1": realSpec(0, 10),
			"radius2": realSpec(0, 10),
		}),
		NewOp(KindDomainTransform, "Smooth by Domain Transform", nil, map[string]Spec{
			"n-iterations":      intSpec(1, 5),
			"spatial-factor":    realSpec(0, 1000),
			"edge-preservation": realSpec(0, 1),
		}),
		NewOp(KindMeanCurvatureBlur, "Mean Curvature Blur", nil, map[string]Spec{
			"iterations": intSpec(0, 500),
		}),
		NewOp(KindHueChroma, "Hue-Chroma", nil, map[string]Spec{
			"hue":       realSpec(-180, 180),
			"chroma":    realSpec(-100, 100),
			"lightness": realSpec(-100, 100),
		}),
		NewOp(KindGegl, "GEGL Graph", nil, map[string]Spec{
			"string": {Type: dag.ParamString},
		}),
		NewOp(KindDesaturate, "Desaturate", nil, map[string]Spec{
			"mode": {Type: dag.ParamEnum, Values: []string{"luminance", "luma", "lightness", "average", "value"}},
		}),
		NewOp(KindOver, "Normal compositing", aux, nil),
		NewOp(KindSrcIn, "Source In", aux, nil),
		NewOp(KindMultiply, "Multiply", aux, blend),
		NewOp(KindHardLight, "Hard Light", aux, blend),
		NewOp(KindOverlay, "Overlay", aux, blend),
		NewOp(KindLayerMode, "Layer Mode", aux, map[string]Spec{
			"layer-mode": intSpec(0, 63),
			"opacity":    realSpec(0, 1),
		}),
	}
}
