package hclstage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// ---------------------------------------------------------------------------
// Fixture layers
//
// root.hcl sublayers strong.hcl; /World/Light references light_asset.hcl
// through its default prim. The asset holds the strongest intensity
// opinion (samples), the sublayer a weaker default.
// ---------------------------------------------------------------------------

const rootLayerSrc = `
default_prim    = "World"
start_time_code = 1
end_time_code   = 24
sublayers       = ["strong.hcl"]

prim "World" {
  type_name = "Xform"

  prim "Light" {
    references = ["light_asset.hcl"]
  }
}
`

const strongLayerSrc = `
prim "World" {
  prim "Light" {
    attr "intensity" {
      type    = "float"
      default = 7
    }
  }
}
`

const assetLayerSrc = `
default_prim = "Light"

prim "Light" {
  type_name   = "SphereLight"
  custom_data = { rig = "keylight" }

  attr "intensity" {
    type    = "float"
    default = 50
    samples = {
      "1"  = 5
      "24" = 10
    }
  }

  rel "shaper" {
    targets = ["/World/Profile"]
  }
}
`

func writeLayer(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func openTestStage(t *testing.T) *Stage {
	t.Helper()
	dir := t.TempDir()
	root := writeLayer(t, dir, "root.hcl", rootLayerSrc)
	writeLayer(t, dir, "strong.hcl", strongLayerSrc)
	writeLayer(t, dir, "light_asset.hcl", assetLayerSrc)

	st, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestOpenComposesStage(t *testing.T) {
	st := openTestStage(t)

	if st.StartTimeCode() != 1 || st.EndTimeCode() != 24 {
		t.Errorf("time codes = %v..%v, want 1..24", st.StartTimeCode(), st.EndTimeCode())
	}

	var paths []sdf.Path
	for _, p := range st.Traverse() {
		paths = append(paths, p.Path())
	}
	want := []sdf.Path{"/World", "/World/Light"}
	if len(paths) != len(want) {
		t.Fatalf("traverse = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("traverse[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	light, ok := st.PrimAtPath("/World/Light")
	if !ok {
		t.Fatal("light prim missing")
	}
	parent, ok := light.Parent()
	if !ok || parent.Path() != "/World" {
		t.Errorf("light parent = %v", parent)
	}
}

func TestPrimStackAndArcsAreCoOrdered(t *testing.T) {
	st := openTestStage(t)
	light, _ := st.PrimAtPath("/World/Light")

	stack := light.PrimStack()
	wantLayers := []string{"root.hcl", "light_asset.hcl", "strong.hcl"}
	if len(stack) != len(wantLayers) {
		t.Fatalf("stack length = %d, want %d", len(stack), len(wantLayers))
	}
	for i, name := range wantLayers {
		if got := stack[i].Layer().DisplayName(); got != name {
			t.Errorf("stack[%d] layer = %q, want %q", i, got, name)
		}
	}

	arcs := light.CompositionArcs()
	if len(arcs) != 2 {
		t.Fatalf("arc count = %d, want 2", len(arcs))
	}
	if arcs[0].ArcType() != sdf.ArcRoot || arcs[0].TargetLayer().DisplayName() != "root.hcl" {
		t.Errorf("arc 0 = %v -> %s", arcs[0].ArcType(), arcs[0].TargetLayer().DisplayName())
	}
	if arcs[1].ArcType() != sdf.ArcReference || arcs[1].TargetLayer().DisplayName() != "light_asset.hcl" {
		t.Errorf("arc 1 = %v -> %s", arcs[1].ArcType(), arcs[1].TargetLayer().DisplayName())
	}
}

func TestComposedAttributeResolution(t *testing.T) {
	st := openTestStage(t)
	light, _ := st.PrimAtPath("/World/Light")

	prop, ok := light.Property("intensity")
	if !ok {
		t.Fatal("intensity missing")
	}
	attr, ok := prop.(sdf.Attribute)
	if !ok {
		t.Fatalf("intensity is %T, want attribute", prop)
	}
	if attr.TypeName() != "float" {
		t.Errorf("type name = %q", attr.TypeName())
	}

	cases := []struct {
		frame float64
		want  string
	}{
		{1, "5"},
		{10, "5"},
		{24, "10"},
	}
	for _, c := range cases {
		v, ok := attr.Get(c.frame)
		if !ok {
			t.Fatalf("frame %v: no value", c.frame)
		}
		if got := sdf.FormatValue(v); got != c.want {
			t.Errorf("frame %v: value = %q, want %q", c.frame, got, c.want)
		}
	}
}

func TestComposedRelationshipTargets(t *testing.T) {
	st := openTestStage(t)
	light, _ := st.PrimAtPath("/World/Light")

	prop, ok := light.Property("shaper")
	if !ok {
		t.Fatal("shaper missing")
	}
	rel, ok := prop.(sdf.Relationship)
	if !ok {
		t.Fatalf("shaper is %T, want relationship", prop)
	}
	targets := rel.Targets()
	if len(targets) != 1 || targets[0] != "/World/Profile" {
		t.Errorf("targets = %v", targets)
	}
}

func TestComposedMetadataMerge(t *testing.T) {
	st := openTestStage(t)
	light, _ := st.PrimAtPath("/World/Light")

	meta := light.AllMetadata()
	if len(meta) == 0 || meta[0].Key != "typeName" {
		t.Fatalf("metadata = %+v, want typeName first", meta)
	}
	if got := sdf.FormatValue(meta[0].Value); got != "SphereLight" {
		t.Errorf("typeName = %q", got)
	}

	custom := light.CustomData()
	if len(custom) != 1 || custom[0].Key != "rig" {
		t.Fatalf("custom data = %+v", custom)
	}
}

func TestLayerSpecLookup(t *testing.T) {
	st := openTestStage(t)
	light, _ := st.PrimAtPath("/World/Light")

	strongID := light.PrimStack()[2].Layer().Identifier()
	layer, err := st.FindOrOpenLayer(strongID)
	if err != nil {
		t.Fatalf("FindOrOpenLayer: %v", err)
	}
	spec, ok := layer.PrimSpec("/World/Light")
	if !ok {
		t.Fatal("spec missing from strong layer")
	}

	ps, ok := spec.PropertyAtPath(sdf.MakeRelativeProperty("intensity"))
	if !ok {
		t.Fatal("relative property lookup failed")
	}
	attr, ok := ps.(sdf.AttributeSpec)
	if !ok {
		t.Fatalf("property spec is %T", ps)
	}
	v, ok := attr.Default()
	if !ok || sdf.FormatValue(v) != "7" {
		t.Errorf("default = %v", v)
	}

	// Bare names are not valid spec paths.
	if _, ok := spec.PropertyAtPath("intensity"); ok {
		t.Error("bare property name resolved")
	}
}

func TestLayerTimeSamples(t *testing.T) {
	st := openTestStage(t)
	light, _ := st.PrimAtPath("/World/Light")

	asset := light.PrimStack()[1]
	samples := asset.Layer().TimeSamples(sdf.Path("/Light.intensity"))
	if len(samples) != 2 {
		t.Fatalf("sample count = %d, want 2", len(samples))
	}
	if samples[0].TimeCode != 1 || samples[1].TimeCode != 24 {
		t.Errorf("sample times = %v, %v", samples[0].TimeCode, samples[1].TimeCode)
	}
}

func TestOpenMissingLayer(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.hcl"))
	if !sdf.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestReferenceWithoutDefaultPrimFails(t *testing.T) {
	dir := t.TempDir()
	root := writeLayer(t, dir, "root.hcl", `
prim "World" {
  references = ["bare.hcl"]
}
`)
	writeLayer(t, dir, "bare.hcl", `
prim "Thing" {
}
`)
	if _, err := Open(root); err == nil {
		t.Error("expected error for reference to layer without default prim")
	}
}

func TestExplicitArcTarget(t *testing.T) {
	dir := t.TempDir()
	root := writeLayer(t, dir, "root.hcl", `
prim "World" {
  references = ["assets.hcl</Props/Chair>"]
}
`)
	writeLayer(t, dir, "assets.hcl", `
prim "Props" {
  prim "Chair" {
    type_name = "Mesh"
  }
}
`)
	st, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	world, _ := st.PrimAtPath("/World")
	stack := world.PrimStack()
	if len(stack) != 2 {
		t.Fatalf("stack length = %d, want 2", len(stack))
	}
	if stack[1].Path() != "/Props/Chair" {
		t.Errorf("referenced spec path = %q", stack[1].Path())
	}
	arcs := world.CompositionArcs()
	if len(arcs) != 2 || arcs[1].ArcType() != sdf.ArcReference {
		t.Errorf("arcs = %v", arcs)
	}
}
