package effects

import (
	"github.com/matzehuels/metagraph/pkg/catalog"
	"github.com/matzehuels/metagraph/pkg/dag"
)

// PlasticWrapName is the registry name of the plastic wrap effect.
const PlasticWrapName = "plastic-wrap"

// Node ids of the plastic wrap graph.
const (
	PlasticRef         = "ref"
	PlasticContentNR   = "content-nr"
	PlasticContentRef  = "content-ref"
	PlasticContentBlur = "content-blur"
	PlasticContentLock = "content-lock"
	PlasticOver        = "over"
	PlasticWrapRef     = "wrap-ref"
	PlasticWrapBlur    = "wrap-blur"
	PlasticWrapLock    = "wrap-lock"
	PlasticEmboss      = "emboss"
	PlasticEmbossFaint = "emboss-faint"
	PlasticLayer       = "plastic"
	PlasticSmooth      = "smooth"
	PlasticSoftLight   = "soft-light"
)

// layerModeNormal is the layer-mode value for normal compositing.
const layerModeNormal = 28

// PlasticSoftLightGraph is the textual sub-chain that lays a soft-light copy
// of the result over itself.
const PlasticSoftLightGraph = "id=y gimp:layer-mode layer-mode=softlight opacity=0.50 aux=[ ref=y ]"

// PlasticWrap returns the plastic wrap definition.
//
// The ref node is read three times: by the primary chain, by the content
// branch (noise reduction, then a blur alpha-locked onto the smoothed
// content, composited over the source) and by the wrap branch (a wide
// blur alpha-locked onto the source, embossed twice and laid over the
// result at low opacity).
func PlasticWrap() dag.Definition {
	return dag.Definition{
		Name:        PlasticWrapName,
		Title:       "Plastic Wrap",
		Description: "Makes the content of an image look covered in plastic wrap.",
		Nodes: []dag.NodeSpec{
			{ID: PlasticRef, Kind: catalog.KindNop},

			{ID: PlasticContentNR, Kind: catalog.KindNoiseReduction, Input: PlasticRef,
				Params: map[string]any{"iterations": 2}},
			{ID: PlasticContentRef, Kind: catalog.KindNop, Input: PlasticContentNR},
			{ID: PlasticContentBlur, Kind: catalog.KindGaussianBlur, Input: PlasticContentRef,
				Params: map[string]any{"std-dev-x": 1.0, "std-dev-y": 1.0}},
			{ID: PlasticContentLock, Kind: catalog.KindSrcIn, Input: PlasticContentRef,
				Aux: map[string]string{"aux": PlasticContentBlur}},
			{ID: PlasticOver, Kind: catalog.KindOver,
				Aux: map[string]string{"aux": PlasticContentLock}},

			{ID: PlasticWrapRef, Kind: catalog.KindNop, Input: PlasticRef},
			{ID: PlasticWrapBlur, Kind: catalog.KindGaussianBlur, Input: PlasticWrapRef,
				Params: map[string]any{"std-dev-x": 7.0, "std-dev-y": 7.0}},
			{ID: PlasticWrapLock, Kind: catalog.KindSrcIn, Input: PlasticWrapRef,
				Aux: map[string]string{"aux": PlasticWrapBlur}},
			{ID: PlasticEmboss, Kind: catalog.KindEmboss, Input: PlasticWrapLock,
				Params: map[string]any{"depth": 98, "elevation": 30.0, "azimuth": 4.0}},
			{ID: PlasticEmbossFaint, Kind: catalog.KindEmboss, Input: PlasticEmboss,
				Params: map[string]any{"depth": 20, "elevation": 40.0}},
			{ID: PlasticLayer, Kind: catalog.KindLayerMode,
				Params: map[string]any{"layer-mode": layerModeNormal},
				Aux:    map[string]string{"aux": PlasticEmbossFaint}},

			{ID: PlasticSmooth, Kind: catalog.KindMeanCurvatureBlur,
				Params: map[string]any{"iterations": 2}},
			{ID: PlasticSoftLight, Kind: catalog.KindGegl,
				Params: map[string]any{"string": PlasticSoftLightGraph}},
		},
		Chain: []string{
			dag.InputID,
			PlasticRef,
			PlasticOver,
			PlasticLayer,
			PlasticSmooth,
			PlasticSoftLight,
			dag.OutputID,
		},
		Params: []dag.Param{
			{
				Name: "opacity", Type: dag.ParamReal, Default: 0.14,
				Range: &dag.Range{Min: 0.10, Max: 1.00}, UIRange: &dag.Range{Min: 0.10, Max: 0.30},
				Label: "Opacity of plastic", Description: "Opacity of the plastic wrap",
			},
			{
				Name: "smoothcontent", Type: dag.ParamInt, Default: 3,
				Range: &dag.Range{Min: 1, Max: 10}, UIRange: &dag.Range{Min: 1, Max: 10},
				Label:       "Smooth content below the plastic",
				Description: "Noise reduction applied to the subject inside the plastic",
			},
			{
				Name: "blurcontent", Type: dag.ParamReal, Default: 0.0,
				Range: &dag.Range{Min: 0, Max: 2}, UIRange: &dag.Range{Min: 0, Max: 2},
				Label:       "Blur content below the plastic",
				Description: "Gaussian blur applied to the subject inside the plastic. At 0 this is disabled.",
			},
			{
				Name: "tightness", Type: dag.ParamReal, Default: 4.8,
				Range: &dag.Range{Min: 2, Max: 15}, UIRange: &dag.Range{Min: 2, Max: 15},
				Label:       "Plastic wrap control",
				Description: "Lower values wrap the plastic tightly, higher values leave some air in the bag. Small images want low values.",
			},
			{
				Name: "azimuth", Type: dag.ParamReal, Default: 3.0,
				Range: &dag.Range{Min: 3, Max: 90}, UIRange: &dag.Range{Min: 3, Max: 90},
				Label: "Plastic azimuth", Description: "Emboss azimuth for the plastic",
			},
			{
				Name: "elevation", Type: dag.ParamReal, Default: 80.0,
				Range: &dag.Range{Min: 30, Max: 90}, UIRange: &dag.Range{Min: 30, Max: 90},
				Label: "Plastic elevation", Description: "Emboss elevation for the plastic",
			},
			{
				Name: "elevation2", Type: dag.ParamReal, Default: 20.0,
				Range: &dag.Range{Min: 10, Max: 90}, UIRange: &dag.Range{Min: 10, Max: 90},
				Label: "Faint plastic elevation", Description: "Emboss elevation of the second, faint emboss",
			},
			{
				Name: "depth", Type: dag.ParamInt, Default: 66,
				Range: &dag.Range{Min: 60, Max: 100}, UIRange: &dag.Range{Min: 60, Max: 100},
				Label: "Plastic depth", Description: "Emboss depth of the plastic",
			},
			{
				Name: "depth2", Type: dag.ParamInt, Default: 20,
				Range: &dag.Range{Min: 5, Max: 40}, UIRange: &dag.Range{Min: 5, Max: 40},
				Label: "Faint plastic depth", Description: "Emboss depth of the faint plastic",
			},
			{
				Name: "smoothall", Type: dag.ParamInt, Default: 2,
				Range: &dag.Range{Min: 0, Max: 6}, UIRange: &dag.Range{Min: 0, Max: 6},
				Label: "Mean Curvature smooth everything",
			},
		},
		Redirects: []dag.Redirect{
			{Param: "smoothcontent", Node: PlasticContentNR, Key: "iterations"},
			{Param: "blurcontent", Node: PlasticContentBlur, Key: "std-dev-x"},
			{Param: "blurcontent", Node: PlasticContentBlur, Key: "std-dev-y"},
			{Param: "tightness", Node: PlasticWrapBlur, Key: "std-dev-x"},
			{Param: "tightness", Node: PlasticWrapBlur, Key: "std-dev-y"},
			{Param: "elevation", Node: PlasticEmboss, Key: "elevation"},
			{Param: "depth", Node: PlasticEmboss, Key: "depth"},
			{Param: "depth2", Node: PlasticEmbossFaint, Key: "depth"},
			{Param: "azimuth", Node: PlasticEmboss, Key: "azimuth"},
			{Param: "smoothall", Node: PlasticSmooth, Key: "iterations"},
			{Param: "elevation2", Node: PlasticEmbossFaint, Key: "elevation"},
			{Param: "opacity", Node: PlasticLayer, Key: "opacity"},
		},
	}
}
