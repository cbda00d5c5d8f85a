package inspect

import (
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
	"github.com/JaimeFlorian27/usdinspect/internal/sdf/sdftest"
)

// ---------------------------------------------------------------------------
// Test scene
//
// root.hcl sublayers strong.hcl, and /World/Light references ref.hcl.
// The prim stack is therefore strong.hcl (sublayer), root.hcl (root),
// ref.hcl (reference), strongest first.
// ---------------------------------------------------------------------------

const lightPath = sdf.Path("/World/Light")

type lightScene struct {
	stage  *sdftest.Stage
	light  *sdftest.Prim
	root   *sdftest.Layer
	strong *sdftest.Layer
	ref    *sdftest.Layer
}

func newLightScene(t *testing.T) *lightScene {
	t.Helper()

	root := sdftest.NewLayer("root.hcl")
	strong := sdftest.NewLayer("strong.hcl")
	ref := sdftest.NewLayer("ref.hcl")

	stage := sdftest.NewStage(root)
	stage.AddLayer(strong)
	stage.AddLayer(ref)
	stage.Start, stage.End = 1, 24

	intensityPath := lightPath.AppendProperty("intensity")
	strongSpec := strong.AddSpec(&sdftest.PrimSpec{
		SpecPath: lightPath,
		Infos:    []sdf.Field{{Key: "active", Value: cty.True}},
		Props: []sdf.PropertySpec{
			&sdftest.AttributeSpec{
				SpecLayer:  strong,
				AttrName:   "intensity",
				SpecPath:   intensityPath,
				Type:       "float",
				DefaultVal: cty.NumberIntVal(50),
				HasDefault: true,
			},
		},
	})
	strong.AddSamples(intensityPath,
		sdf.TimeSample{TimeCode: 1, Value: cty.NumberIntVal(5)},
		sdf.TimeSample{TimeCode: 24, Value: cty.NumberIntVal(10)},
	)

	rootSpec := root.AddSpec(&sdftest.PrimSpec{
		SpecPath: lightPath,
		Props: []sdf.PropertySpec{
			&sdftest.AttributeSpec{
				SpecLayer:  root,
				AttrName:   "intensity",
				SpecPath:   intensityPath,
				Type:       "float",
				DefaultVal: cty.NumberIntVal(100),
				HasDefault: true,
			},
		},
	})

	refSpec := ref.AddSpec(&sdftest.PrimSpec{
		SpecPath: sdf.Path("/RefLight"),
		Props: []sdf.PropertySpec{
			&sdftest.RelationshipSpec{
				SpecLayer: ref,
				RelName:   "shaper",
				SpecPath:  sdf.Path("/RefLight.shaper"),
				Paths:     []sdf.Path{"/World/Profile"},
			},
		},
	})

	stage.AddPrim(&sdftest.Prim{PrimPath: "/World"})
	light := stage.AddPrim(&sdftest.Prim{
		PrimPath: lightPath,
		Stack:    []sdf.PrimSpec{strongSpec, rootSpec, refSpec},
		Arcs: []sdf.CompositionArc{
			sdftest.Arc{Type: sdf.ArcRoot, Layer: root},
			sdftest.Arc{Type: sdf.ArcReference, Layer: ref},
		},
		Props: []sdf.Property{
			&sdftest.Attribute{
				AttrName: "intensity",
				AttrPath: intensityPath,
				Type:     "float",
				Samples: []sdf.TimeSample{
					{TimeCode: 1, Value: cty.NumberIntVal(5)},
					{TimeCode: 24, Value: cty.NumberIntVal(10)},
				},
			},
			&sdftest.Attribute{
				AttrName: "points",
				AttrPath: lightPath.AppendProperty("points"),
				Type:     "float[]",
				Default: cty.ListVal([]cty.Value{
					cty.NumberIntVal(1), cty.NumberIntVal(2), cty.NumberIntVal(3),
				}),
			},
			&sdftest.Relationship{
				RelName: "shaper",
				RelPath: lightPath.AppendProperty("shaper"),
				Paths:   []sdf.Path{"/World/Profile"},
			},
		},
		Meta:   []sdf.Field{{Key: "typeName", Value: cty.StringVal("SphereLight")}},
		Asset:  []sdf.Field{{Key: "identifier", Value: cty.StringVal("lights/key.hcl")}},
		Custom: []sdf.Field{{Key: "rig", Value: cty.StringVal("keylight")}},
	})

	return &lightScene{stage: stage, light: light, root: root, strong: strong, ref: ref}
}

func (s *lightScene) composedProperty(t *testing.T, name string) sdf.Property {
	t.Helper()
	prop, ok := s.light.Property(name)
	if !ok {
		t.Fatalf("composed property %q missing from fixture", name)
	}
	return prop
}

func (s *lightScene) authoredSpec(t *testing.T, layer *sdftest.Layer, primPath sdf.Path, name string) sdf.PropertySpec {
	t.Helper()
	prim, ok := layer.PrimSpec(primPath)
	if !ok {
		t.Fatalf("prim spec %q missing from layer %s", primPath, layer.ID)
	}
	ps, ok := prim.PropertyAtPath(sdf.MakeRelativeProperty(name))
	if !ok {
		t.Fatalf("property spec %q missing from %s%s", name, layer.ID, primPath)
	}
	return ps
}
