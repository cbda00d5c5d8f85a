package inspect

import (
	"testing"
)

func TestCascadeComposedSelectionFlow(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)
	c.SetFrame(1)

	c.SelectPrim(lightPath)
	rows := c.LayerStackRows()
	if len(rows) != 4 {
		t.Fatalf("expected Composed row plus 3 contributions, got %d", len(rows))
	}
	if rows[0].Key != ComposedRowKey || rows[0].Display != "Composed" {
		t.Errorf("first row = %+v, want the Composed row", rows[0])
	}
	wantArcs := []string{SublayerArc, "root", "reference"}
	for i, arc := range wantArcs {
		if rows[i+1].Arc != arc {
			t.Errorf("row %d: arc = %q, want %q", i+1, rows[i+1].Arc, arc)
		}
	}

	c.SelectLayerRow(ComposedRowKey)
	props := c.PropertyRows()
	if len(props) != 3 {
		t.Fatalf("expected 3 composed properties, got %d", len(props))
	}
	if props[0].Kind != "Attr" || props[0].Name != "intensity" || props[0].TypeName != "float" {
		t.Errorf("property row 0 = %+v", props[0])
	}
	if props[2].Kind != "Rel" || props[2].Name != "shaper" {
		t.Errorf("property row 2 = %+v", props[2])
	}

	c.SelectProperty("intensity")
	if c.State().Kind() != KindPropertyValue {
		t.Fatalf("state kind = %v, want KindPropertyValue", c.State().Kind())
	}
	if got := c.ValueTable().Rows[0][0]; got != "5" {
		t.Errorf("value at frame 1 = %q, want 5", got)
	}
	c.SetFrame(24)
	if got := c.ValueTable().Rows[0][0]; got != "10" {
		t.Errorf("value at frame 24 = %q, want 10", got)
	}
}

func TestCascadeLayerRowSelectsAuthoredSpec(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)
	c.SelectPrim(lightPath)

	rows := c.LayerStackRows()
	c.SelectLayerRow(rows[1].Key) // strong.hcl

	props := c.PropertyRows()
	if len(props) != 1 || props[0].Name != "intensity" {
		t.Fatalf("spec property rows = %+v", props)
	}

	c.SelectProperty("intensity")
	if c.State().Kind() != KindPropertySpecValue {
		t.Fatalf("state kind = %v, want KindPropertySpecValue", c.State().Kind())
	}
	td := c.ValueTable()
	if len(td.Rows) != 2 {
		t.Fatalf("expected both authored samples, got %d rows", len(td.Rows))
	}
	if c.State().FrameDependent() {
		t.Error("spec opinion view must not depend on the frame")
	}
}

func TestCascadeMalformedLayerKey(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)
	c.SelectPrim(lightPath)

	for _, key := range []string{"bogus", "missing.hcl|/Nope", "strong.hcl|/Nope", "|"} {
		c.SelectLayerRow(key)
		if c.State().Kind() != KindNoValue {
			t.Errorf("key %q: state kind = %v, want KindNoValue", key, c.State().Kind())
		}
		if props := c.PropertyRows(); props != nil {
			t.Errorf("key %q: expected no property rows, got %d", key, len(props))
		}
	}
}

func TestCascadeUnknownPrim(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)

	c.SelectPrim("/Nope")
	if c.State().Kind() != KindNoValue {
		t.Errorf("state kind = %v, want KindNoValue", c.State().Kind())
	}
	if rows := c.LayerStackRows(); rows != nil {
		t.Errorf("expected no layer rows, got %d", len(rows))
	}
	if rows := c.MetadataRows(); rows != nil {
		t.Errorf("expected no metadata rows, got %d", len(rows))
	}
}

func TestCascadeUnresolvedPropertyIsNoValue(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)
	c.SelectPrim(lightPath)

	c.SelectProperty("nope")
	if c.State().Kind() != KindNoValue {
		t.Errorf("state kind = %v, want KindNoValue", c.State().Kind())
	}
}

func TestCascadeMetadataSelection(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)
	c.SelectPrim(lightPath)

	rows := c.MetadataRows()
	wantKeys := []string{"typeName", "identifier", "rig"}
	if len(rows) != len(wantKeys) {
		t.Fatalf("expected %d metadata rows, got %d", len(wantKeys), len(rows))
	}
	for i, key := range wantKeys {
		if rows[i].Key != key {
			t.Errorf("row %d: key = %q, want %q", i, rows[i].Key, key)
		}
	}

	c.SelectMetadataRow(0)
	if c.State().Kind() != KindMetadatumValue {
		t.Fatalf("state kind = %v, want KindMetadatumValue", c.State().Kind())
	}
	if got := c.ValueTable().Rows[0][0]; got != "SphereLight" {
		t.Errorf("metadatum value = %q", got)
	}

	c.SelectMetadataRow(99)
	if c.State().Kind() != KindNoValue {
		t.Errorf("out-of-range row: state kind = %v, want KindNoValue", c.State().Kind())
	}
}

func TestCascadeSpecMetadata(t *testing.T) {
	s := newLightScene(t)
	c := NewCascade(s.stage)
	c.SelectPrim(lightPath)

	rows := c.LayerStackRows()
	c.SelectLayerRow(rows[1].Key) // strong.hcl

	meta := c.MetadataRows()
	if len(meta) != 1 || meta[0].Key != "active" {
		t.Fatalf("spec metadata rows = %+v", meta)
	}
	if meta[0].Display != "true" {
		t.Errorf("display = %q, want true", meta[0].Display)
	}
}
