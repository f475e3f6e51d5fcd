package dag_test

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/metagraph/pkg/catalog"
	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/errors"
)

func quiet() dag.Options {
	return dag.Options{Logger: log.New(io.Discard)}
}

func mustBuild(t *testing.T, def dag.Definition, opts dag.Options) *dag.Graph {
	t.Helper()
	g, err := dag.Build(def, catalog.Default(), opts)
	if err != nil {
		t.Fatalf("Build(%s): %v", def.Name, err)
	}
	return g
}

func blurDef() dag.Definition {
	return dag.Definition{
		Name: "soften",
		Nodes: []dag.NodeSpec{
			{ID: "blur", Kind: catalog.KindGaussianBlur},
			{ID: "emboss", Kind: catalog.KindEmboss, Params: map[string]any{"depth": 20}},
		},
		Chain: []string{dag.InputID, "blur", "emboss", dag.OutputID},
		Params: []dag.Param{
			{Name: "amount", Type: dag.ParamReal, Default: 1.5, Range: &dag.Range{Min: 0, Max: 10}},
			{Name: "depth", Type: dag.ParamInt, Default: 10, Range: &dag.Range{Min: 1, Max: 50}},
			{Name: "elevation", Type: dag.ParamReal, Default: 45.0, Range: &dag.Range{Min: 0, Max: 90}},
		},
		Redirects: []dag.Redirect{
			{Param: "amount", Node: "blur", Key: "std-dev-x"},
			{Param: "amount", Node: "blur", Key: "std-dev-y"},
			{Param: "depth", Node: "emboss", Key: "depth"},
			{Param: "elevation", Node: "emboss", Key: "elevation"},
		},
	}
}

// modeDef splices one of three blends after "pre"; every blend takes its
// aux input from "tint".
func modeDef() dag.Definition {
	return dag.Definition{
		Name: "blender",
		Nodes: []dag.NodeSpec{
			{ID: "pre", Kind: catalog.KindNop},
			{ID: "tint", Kind: catalog.KindHueChroma, Input: "pre"},
			{ID: "a", Kind: catalog.KindMultiply},
			{ID: "b", Kind: catalog.KindHardLight},
			{ID: "c", Kind: catalog.KindOverlay},
		},
		Chain: []string{dag.InputID, "pre", "slot", dag.OutputID},
		Params: []dag.Param{
			{Name: "mode", Type: dag.ParamEnum, Default: "b", Values: []string{"a", "b", "c"}},
		},
		Mode: &dag.ModeSpec{
			Param:     "mode",
			Slot:      "slot",
			AuxSource: "tint",
			Alternatives: []dag.Alternative{
				{Value: "a", Node: "a"},
				{Value: "b", Node: "b"},
				{Value: "c", Node: "c"},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())

	if g.NodeCount() != 4 {
		t.Errorf("NodeCount() = %d, want 4", g.NodeCount())
	}
	if g.LinkCount() != 3 {
		t.Errorf("LinkCount() = %d, want 3", g.LinkCount())
	}
	if g.ID() == "" {
		t.Error("ID() is empty")
	}
	want := []string{dag.InputID, "blur", "emboss", dag.OutputID}
	if got := g.PrimaryChain(); !slices.Equal(got, want) {
		t.Errorf("PrimaryChain() = %v, want %v", got, want)
	}
	if in, _ := g.Node(dag.InputID); in.Kind != dag.KindInputProxy {
		t.Errorf("input kind = %q, want %q", in.Kind, dag.KindInputProxy)
	}
	if res := g.Validate(); !res.OK() {
		t.Errorf("Validate() = %v", res.Issues)
	}
}

func TestBuildPushesDefaults(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())

	tests := []struct {
		node, key string
		want      any
	}{
		{"blur", "std-dev-x", 1.5},
		{"blur", "std-dev-y", 1.5},
		{"emboss", "depth", 10},
		{"emboss", "elevation", 45.0},
	}
	for _, tt := range tests {
		got, ok := g.Param(tt.node, tt.key)
		if !ok || got != tt.want {
			t.Errorf("Param(%s, %s) = %v, %v; want %v", tt.node, tt.key, got, ok, tt.want)
		}
	}
}

func TestBuildConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dag.Definition)
	}{
		{"unknown kind", func(d *dag.Definition) { d.Nodes[0].Kind = "unsharp-mask" }},
		{"forward reference", func(d *dag.Definition) {
			d.Nodes = append([]dag.NodeSpec{{ID: "early", Kind: catalog.KindNop, Input: "blur"}}, d.Nodes...)
		}},
		{"forward aux reference", func(d *dag.Definition) {
			d.Nodes = append([]dag.NodeSpec{{ID: "early", Kind: catalog.KindOver, Aux: map[string]string{"aux": "emboss"}}}, d.Nodes...)
		}},
		{"duplicate id", func(d *dag.Definition) { d.Nodes[1].ID = "blur" }},
		{"reserved id", func(d *dag.Definition) { d.Nodes[0].ID = dag.OutputID }},
		{"invalid id", func(d *dag.Definition) { d.Nodes[0].ID = "Blur Node" }},
		{"bad literal", func(d *dag.Definition) { d.Nodes[1].Params["depth"] = 500 }},
		{"unknown literal", func(d *dag.Definition) { d.Nodes[1].Params["radius"] = 1.0 }},
		{"bad aux slot", func(d *dag.Definition) { d.Nodes[1].Aux = map[string]string{"mask": "blur"} }},
		{"default out of range", func(d *dag.Definition) { d.Params[0].Default = 11.0 }},
		{"empty enum", func(d *dag.Definition) {
			d.Params = append(d.Params, dag.Param{Name: "e", Type: dag.ParamEnum, Default: "x"})
		}},
		{"unknown type", func(d *dag.Definition) { d.Params[0].Type = "complex" }},
		{"duplicate param", func(d *dag.Definition) { d.Params[1].Name = "amount" }},
		{"chain unknown node", func(d *dag.Definition) { d.Chain[1] = "sharpen" }},
		{"chain repeats node", func(d *dag.Definition) { d.Chain = []string{dag.InputID, "blur", "emboss", "blur", dag.OutputID} }},
		{"chain too short", func(d *dag.Definition) { d.Chain = []string{dag.InputID} }},
		{"redirect unknown param", func(d *dag.Definition) {
			d.Redirects = append(d.Redirects, dag.Redirect{Param: "nope", Node: "blur", Key: "std-dev-x"})
		}},
		{"redirect unknown node", func(d *dag.Definition) {
			d.Redirects = append(d.Redirects, dag.Redirect{Param: "amount", Node: "nope", Key: "std-dev-x"})
		}},
		{"redirect rejected by kind", func(d *dag.Definition) {
			d.Redirects = append(d.Redirects, dag.Redirect{Param: "amount", Node: "emboss", Key: "depth"})
		}},
		{"empty name", func(d *dag.Definition) { d.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := blurDef()
			tt.mutate(&def)
			g, err := dag.Build(def, catalog.Default(), quiet())
			if g != nil {
				t.Error("Build returned a graph alongside an error")
			}
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Build() err = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestBuildNoCatalog(t *testing.T) {
	if _, err := dag.Build(blurDef(), nil, quiet()); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Build(nil catalogue) err = %v, want CONFIGURATION", err)
	}
}

func TestBuildStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dag.Definition)
		code   errors.Code
	}{
		{"output unlinked", func(d *dag.Definition) {
			d.Chain = []string{dag.InputID, "blur", "emboss"}
		}, errors.ErrCodeMissingLink},
		{"dead end branch", func(d *dag.Definition) {
			d.Nodes = append(d.Nodes, dag.NodeSpec{ID: "side", Kind: catalog.KindNop, Input: "blur"})
		}, errors.ErrCodeMissingLink},
		{"blend without aux", func(d *dag.Definition) {
			d.Nodes = append(d.Nodes, dag.NodeSpec{ID: "mix", Kind: catalog.KindOver})
			d.Chain = []string{dag.InputID, "blur", "emboss", "mix", dag.OutputID}
		}, errors.ErrCodeDanglingAux},
		{"aux from unfed node", func(d *dag.Definition) {
			d.Nodes = append(d.Nodes,
				dag.NodeSpec{ID: "orphan", Kind: catalog.KindNop},
				dag.NodeSpec{ID: "mix", Kind: catalog.KindOver, Aux: map[string]string{"aux": "orphan"}},
			)
			d.Chain = []string{dag.InputID, "blur", "emboss", "mix", dag.OutputID}
		}, errors.ErrCodeDanglingAux},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := blurDef()
			tt.mutate(&def)
			_, err := dag.Build(def, catalog.Default(), quiet())
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() err = %v, want %s", err, tt.code)
			}
			if !errors.IsStructural(err) {
				t.Errorf("IsStructural(%v) = false", err)
			}
		})
	}
}

func TestAuxSourceSharedByManyConsumers(t *testing.T) {
	def := dag.Definition{
		Name: "fanout",
		Nodes: []dag.NodeSpec{
			{ID: "ref", Kind: catalog.KindNop},
			{ID: "blur", Kind: catalog.KindGaussianBlur, Input: "ref"},
			{ID: "one", Kind: catalog.KindOver, Aux: map[string]string{"aux": "blur"}},
			{ID: "two", Kind: catalog.KindMultiply, Aux: map[string]string{"aux": "blur"}},
		},
		Chain: []string{dag.InputID, "ref", "one", "two", dag.OutputID},
	}
	g := mustBuild(t, def, quiet())
	res := g.Validate()
	if res.Has(errors.ErrCodeCycle) || !res.OK() {
		t.Errorf("Validate() = %v, want no issues", res.Issues)
	}
	if n := len(g.Consumers("blur")); n != 2 {
		t.Errorf("Consumers(blur) = %d links, want 2", n)
	}
}

func TestApplyRoundTrip(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())

	tests := []struct {
		param string
		value any
		want  any
	}{
		{"amount", 0.0, 0.0},
		{"amount", 10.0, 10.0},
		{"amount", float32(2.5), 2.5},
		{"amount", 3, 3.0},
		{"amount", int64(4), 4.0},
		{"depth", 1, 1},
		{"depth", int64(50), 50},
		{"depth", 7.0, 7},
	}
	for _, tt := range tests {
		if err := g.Apply(tt.param, tt.value); err != nil {
			t.Fatalf("Apply(%s, %v): %v", tt.param, tt.value, err)
		}
		if got, _ := g.Value(tt.param); got != tt.want {
			t.Errorf("Value(%s) = %v (%T), want %v", tt.param, got, got, tt.want)
		}
		for _, target := range g.Targets(tt.param) {
			if got, _ := g.Param(target.Node, target.Key); got != tt.want {
				t.Errorf("Param(%s, %s) = %v, want %v", target.Node, target.Key, got, tt.want)
			}
		}
	}
}

func TestApplyRejects(t *testing.T) {
	tests := []struct {
		name  string
		param string
		value any
		code  errors.Code
	}{
		{"above max", "amount", 10.01, errors.ErrCodeRange},
		{"below min", "amount", -0.5, errors.ErrCodeRange},
		{"int above max", "depth", 51, errors.ErrCodeRange},
		{"fractional int", "depth", 2.5, errors.ErrCodeInvalidInput},
		{"wrong type", "amount", "lots", errors.ErrCodeInvalidInput},
		{"unknown param", "radius", 1.0, errors.ErrCodeUnknownParam},
		{"upper bound inclusive", "elevation", 90.0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, blurDef(), quiet())
			before := g.Values()
			err := g.Apply(tt.param, tt.value)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Apply: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Apply(%s, %v) err = %v, want %s", tt.param, tt.value, err, tt.code)
			}
			if diff := cmp.Diff(before, g.Values()); diff != "" {
				t.Errorf("values changed after rejected Apply (-before +after):\n%s", diff)
			}
		})
	}
}

func TestApplyChecksEveryTargetFirst(t *testing.T) {
	def := blurDef()
	def.Params = append(def.Params, dag.Param{
		Name: "level", Type: dag.ParamReal, Default: 10.0, Range: &dag.Range{Min: 0, Max: 200},
	})
	def.Redirects = append(def.Redirects,
		dag.Redirect{Param: "level", Node: "blur", Key: "std-dev-x"},
		dag.Redirect{Param: "level", Node: "emboss", Key: "azimuth"},
		dag.Redirect{Param: "level", Node: "emboss", Key: "elevation"},
	)
	g := mustBuild(t, def, quiet())

	if err := g.Apply("level", 150.0); err != nil {
		t.Fatalf("Apply(level, 150): %v", err)
	}
	// Inside the exposed range, but emboss elevation stops at 180.
	if err := g.Apply("level", 190.0); !errors.Is(err, errors.ErrCodeRange) {
		t.Fatalf("Apply(level, 190) err = %v, want RANGE", err)
	}
	for _, target := range g.Targets("level") {
		if got, _ := g.Param(target.Node, target.Key); got != 150.0 {
			t.Errorf("%s.%s = %v, want previous 150", target.Node, target.Key, got)
		}
	}
	if got, _ := g.Value("level"); got != 150.0 {
		t.Errorf("Value(level) = %v, want 150", got)
	}
}

func TestRedirect(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())

	// One node, two exposed parameters feeding distinct keys.
	if err := g.Redirect("amount", "emboss", "azimuth"); err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	if got, _ := g.Param("emboss", "azimuth"); got != 1.5 {
		t.Errorf("azimuth after Redirect = %v, want current value 1.5", got)
	}
	if err := g.Redirect("amount", "emboss", "azimuth"); err != nil {
		t.Fatalf("second Redirect: %v", err)
	}
	if n := len(g.Targets("amount")); n != 3 {
		t.Errorf("Targets(amount) = %d, want 3 (no duplicate)", n)
	}

	if err := g.Apply("amount", 6.0); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"std-dev-x", "std-dev-y"} {
		if got, _ := g.Param("blur", key); got != 6.0 {
			t.Errorf("blur.%s = %v, want 6", key, got)
		}
	}
	if got, _ := g.Param("emboss", "azimuth"); got != 6.0 {
		t.Errorf("emboss.azimuth = %v, want 6", got)
	}
	if got, _ := g.Param("emboss", "elevation"); got != 45.0 {
		t.Errorf("emboss.elevation = %v, want untouched 45", got)
	}

	if err := g.Redirect("amount", dag.InputID, "x"); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("Redirect to pseudo-node err = %v, want UNKNOWN_NODE", err)
	}
}

func TestApplyAll(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())
	err := g.ApplyAll(map[string]any{"amount": 2.0, "depth": 30})
	if err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}
	if got, _ := g.Param("emboss", "depth"); got != 30 {
		t.Errorf("emboss.depth = %v, want 30", got)
	}
	if err := g.ApplyAll(map[string]any{"bogus": 1}); !errors.Is(err, errors.ErrCodeUnknownParam) {
		t.Errorf("ApplyAll(bogus) err = %v, want UNKNOWN_PARAM", err)
	}
}

func TestApplyAllAllOrNothing(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())

	err := g.ApplyAll(map[string]any{"amount": 4.0, "depth": 40, "elevation": 120.0})
	if !errors.Is(err, errors.ErrCodeRange) {
		t.Fatalf("ApplyAll err = %v, want RANGE", err)
	}
	for _, tt := range []struct {
		node, key string
		want      any
	}{
		{"blur", "std-dev-x", 1.5},
		{"blur", "std-dev-y", 1.5},
		{"emboss", "depth", 10},
		{"emboss", "elevation", 45.0},
	} {
		if got, _ := g.Param(tt.node, tt.key); got != tt.want {
			t.Errorf("%s.%s = %v, want %v", tt.node, tt.key, got, tt.want)
		}
	}
	if v, _ := g.Value("amount"); v != 1.5 {
		t.Errorf("Value(amount) = %v, want 1.5", v)
	}
}

func TestApplyAllModeAndValues(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())
	if err := g.ApplyAll(map[string]any{"mode": "bogus"}); !errors.Is(err, errors.ErrCodeRange) {
		t.Fatalf("ApplyAll(mode=bogus) err = %v, want RANGE", err)
	}
	if _, active := g.Mode(); active != "b" {
		t.Errorf("active after rejected batch = %q, want b", active)
	}
	if err := g.ApplyAll(map[string]any{"mode": "c"}); err != nil {
		t.Fatalf("ApplyAll(mode=c): %v", err)
	}
	if _, active := g.Mode(); active != "c" {
		t.Errorf("active = %q, want c", active)
	}
}

func TestCheckValue(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())
	tests := []struct {
		name  string
		value any
		want  errors.Code
	}{
		{"amount", 3.0, ""},
		{"amount", 11.0, errors.ErrCodeRange},
		{"depth", 0, errors.ErrCodeRange},
		{"bogus", 1.0, errors.ErrCodeUnknownParam},
	}
	for _, tt := range tests {
		if got := errors.GetCode(g.CheckValue(tt.name, tt.value)); got != tt.want {
			t.Errorf("CheckValue(%s, %v) code = %q, want %q", tt.name, tt.value, got, tt.want)
		}
	}
	if got, _ := g.Param("blur", "std-dev-x"); got != 1.5 {
		t.Errorf("CheckValue wrote blur.std-dev-x = %v", got)
	}
}

func TestModeDefault(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())

	value, node := g.Mode()
	if value != "b" || node != "b" {
		t.Errorf("Mode() = %q, %q; want b, b", value, node)
	}
	want := []string{dag.InputID, "pre", "b", dag.OutputID}
	if got := g.PrimaryChain(); !slices.Equal(got, want) {
		t.Errorf("PrimaryChain() = %v, want %v", got, want)
	}
	if got := g.Parked(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Parked() = %v, want [a c]", got)
	}
}

func TestSetModeKeepsAuxWiring(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())

	active, err := g.SetMode("a")
	if err != nil || active != "a" {
		t.Fatalf("SetMode(a) = %q, %v", active, err)
	}
	want := []string{dag.InputID, "pre", "a", dag.OutputID}
	if got := g.PrimaryChain(); !slices.Equal(got, want) {
		t.Errorf("PrimaryChain() = %v, want %v", got, want)
	}
	for _, alt := range []string{"a", "b", "c"} {
		if src := g.Inputs(alt)[dag.SlotAux]; src != "tint" {
			t.Errorf("Inputs(%s)[aux] = %q, want tint", alt, src)
		}
	}
	if _, ok := g.Inputs("b")[dag.SlotInput]; ok {
		t.Error("parked alternative b still has a primary input")
	}
	if res := g.Validate(); !res.OK() {
		t.Errorf("Validate() = %v", res.Issues)
	}
}

func TestSetModeUnknownValue(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())

	active, err := g.SetMode("screen")
	if err != nil {
		t.Fatalf("SetMode(screen) err = %v, want nil", err)
	}
	if active != "a" {
		t.Errorf("SetMode(screen) = %q, want first alternative a", active)
	}
	if value, _ := g.Mode(); value != "a" {
		t.Errorf("mode value = %q, want a", value)
	}
	if res := g.Validate(); !res.OK() {
		t.Errorf("Validate() = %v", res.Issues)
	}
}

func TestSetModeIdempotent(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())
	if _, err := g.SetMode("c"); err != nil {
		t.Fatal(err)
	}
	before := g.Links()
	if _, err := g.SetMode("c"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, g.Links()); diff != "" {
		t.Errorf("second SetMode(c) changed links (-before +after):\n%s", diff)
	}
}

func TestSetModePathIndependence(t *testing.T) {
	sequences := [][]string{
		{"a"},
		{"a", "b", "c"},
		{"c", "c", "a", "b"},
		{"b", "zzz", "c"},
		{"c", "a", "a", "zzz"},
	}
	for _, seq := range sequences {
		t.Run(strings.Join(seq, ","), func(t *testing.T) {
			g := mustBuild(t, modeDef(), quiet())
			for _, v := range seq {
				if _, err := g.SetMode(v); err != nil {
					t.Fatalf("SetMode(%s): %v", v, err)
				}
			}

			fresh := mustBuild(t, modeDef(), quiet())
			if _, err := fresh.SetMode(seq[len(seq)-1]); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(fresh.Shape(), g.Shape()); diff != "" {
				t.Errorf("shape differs from a single SetMode (-fresh +seq):\n%s", diff)
			}
			if res := g.Validate(); res.Has(errors.ErrCodeCycle) || !res.OK() {
				t.Errorf("Validate() = %v", res.Issues)
			}
		})
	}
}

func TestApplyModeSelector(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())

	if err := g.Apply("mode", "c"); err != nil {
		t.Fatalf("Apply(mode, c): %v", err)
	}
	if _, node := g.Mode(); node != "c" {
		t.Errorf("active node = %q, want c", node)
	}
	if err := g.Apply("mode", "screen"); !errors.Is(err, errors.ErrCodeRange) {
		t.Errorf("Apply(mode, screen) err = %v, want RANGE", err)
	}
	if _, node := g.Mode(); node != "c" {
		t.Errorf("active node after rejected Apply = %q, want c", node)
	}
	if err := g.Redirect("mode", "pre", "x"); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Redirect(mode) err = %v, want CONFIGURATION", err)
	}
}

// brokenModeDef has an alternative that needs an aux input nobody feeds.
func brokenModeDef() dag.Definition {
	return dag.Definition{
		Name: "broken",
		Nodes: []dag.NodeSpec{
			{ID: "pre", Kind: catalog.KindNop},
			{ID: "d", Kind: catalog.KindNop},
			{ID: "a", Kind: catalog.KindMultiply},
		},
		Chain: []string{dag.InputID, "pre", "slot", dag.OutputID},
		Params: []dag.Param{
			{Name: "mode", Type: dag.ParamEnum, Default: "d", Values: []string{"d", "a"}},
		},
		Mode: &dag.ModeSpec{
			Param: "mode",
			Slot:  "slot",
			Alternatives: []dag.Alternative{
				{Value: "d", Node: "d"},
				{Value: "a", Node: "a"},
			},
		},
	}
}

func TestSetModeDebugRollsBack(t *testing.T) {
	opts := quiet()
	opts.Debug = true
	g := mustBuild(t, brokenModeDef(), opts)
	before := g.Shape()

	active, err := g.SetMode("a")
	if !errors.Is(err, errors.ErrCodeDanglingAux) {
		t.Fatalf("SetMode(a) err = %v, want DANGLING_AUX", err)
	}
	if active != "d" {
		t.Errorf("active after rollback = %q, want d", active)
	}
	if diff := cmp.Diff(before, g.Shape()); diff != "" {
		t.Errorf("shape changed after rollback:\n%s", diff)
	}
}

func TestSetModeProductionFallsBack(t *testing.T) {
	g := mustBuild(t, brokenModeDef(), quiet())

	active, err := g.SetMode("a")
	if err != nil {
		t.Fatalf("SetMode(a) err = %v, want nil", err)
	}
	if active != "d" {
		t.Errorf("SetMode(a) = %q, want default d", active)
	}
	if value, _ := g.Mode(); value != "d" {
		t.Errorf("mode value = %q, want d", value)
	}
}

func TestModeConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dag.Definition)
	}{
		{"selector not declared", func(d *dag.Definition) { d.Mode.Param = "blend" }},
		{"selector not enum", func(d *dag.Definition) {
			d.Params[0] = dag.Param{Name: "mode", Type: dag.ParamString, Default: "b"}
		}},
		{"slot missing from chain", func(d *dag.Definition) { d.Chain = []string{dag.InputID, "pre", dag.OutputID} }},
		{"slot at chain end", func(d *dag.Definition) { d.Chain = []string{dag.InputID, "pre", "slot"} }},
		{"no alternatives", func(d *dag.Definition) { d.Mode.Alternatives = nil }},
		{"value outside enum", func(d *dag.Definition) { d.Mode.Alternatives[0].Value = "z" }},
		{"duplicate value", func(d *dag.Definition) { d.Mode.Alternatives[1].Value = "a" }},
		{"unknown alternative", func(d *dag.Definition) { d.Mode.Alternatives[0].Node = "zz" }},
		{"alternative in chain", func(d *dag.Definition) {
			d.Chain = []string{dag.InputID, "pre", "slot", "a", dag.OutputID}
		}},
		{"unknown aux source", func(d *dag.Definition) { d.Mode.AuxSource = "nowhere" }},
		{"primary aux slot", func(d *dag.Definition) { d.Mode.AuxSlot = dag.SlotInput }},
		{"node named like slot", func(d *dag.Definition) { d.Nodes[0].ID = "slot" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := modeDef()
			tt.mutate(&def)
			if _, err := dag.Build(def, catalog.Default(), quiet()); !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Build() err = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestClose(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())
	g.Close()
	g.Close()

	if !g.Closed() {
		t.Error("Closed() = false")
	}
	if err := g.Apply("mode", "a"); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("Apply after Close err = %v", err)
	}
	if _, err := g.SetMode("a"); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("SetMode after Close err = %v", err)
	}
	if err := g.Redirect("mode", "pre", "x"); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("Redirect after Close err = %v", err)
	}
	if n := len(g.Nodes()); n != 0 {
		t.Errorf("Nodes() after Close = %d, want 0", n)
	}
	if res := g.Validate(); !res.Has(errors.ErrCodeClosed) {
		t.Errorf("Validate() after Close = %v", res.Issues)
	}
}

func TestPull(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())

	visits := make(map[string]int)
	out, err := dag.Pull(context.Background(), g, func(_ context.Context, n dag.Node, in map[dag.Slot]string) (string, error) {
		visits[n.ID]++
		switch {
		case n.Kind == dag.KindInputProxy:
			return "src", nil
		case in[dag.SlotAux] != "":
			return n.ID + "(" + in[dag.SlotInput] + "," + in[dag.SlotAux] + ")", nil
		}
		return n.ID + "(" + in[dag.SlotInput] + ")", nil
	})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if want := "output(b(pre(src),tint(pre(src))))"; out != want {
		t.Errorf("Pull() = %q, want %q", out, want)
	}
	for id, n := range visits {
		if n != 1 {
			t.Errorf("node %s evaluated %d times", id, n)
		}
	}
	for _, parked := range []string{"a", "c"} {
		if visits[parked] != 0 {
			t.Errorf("parked node %s was evaluated", parked)
		}
	}
}

func TestPullCancelled(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dag.Pull(ctx, g, func(context.Context, dag.Node, map[dag.Slot]int) (int, error) { return 0, nil })
	if err != context.Canceled {
		t.Errorf("Pull() err = %v, want context.Canceled", err)
	}
}

func TestOrder(t *testing.T) {
	g := mustBuild(t, modeDef(), quiet())
	order, err := g.Order()
	if err != nil {
		t.Fatal(err)
	}
	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	for _, l := range g.Links() {
		if _, live := pos[l.To]; !live {
			continue
		}
		if pos[l.From] > pos[l.To] {
			t.Errorf("%s evaluated after its consumer", l)
		}
	}
	if order[len(order)-1] != dag.OutputID {
		t.Errorf("last = %q, want output", order[len(order)-1])
	}
}

func TestNodesAreCopies(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())
	n, _ := g.Node("blur")
	n.Params["std-dev-x"] = 99.0
	if got, _ := g.Param("blur", "std-dev-x"); got != 1.5 {
		t.Errorf("graph param changed through a copy: %v", got)
	}
}

func TestDescribe(t *testing.T) {
	g := mustBuild(t, blurDef(), quiet())
	n, _ := g.Node("blur")
	if got, want := n.Describe(), "blur:gaussian-blur std-dev-x=1.5 std-dev-y=1.5"; got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
