package inspect

import (
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// TableData is the render-ready output of a display state: a column
// schema and rows of cells. Every render produces a fresh TableData,
// so entering a state always replaces the previous schema wholesale.
type TableData struct {
	Columns []string
	Rows    [][]string
}

// DisplayKind tags the variant held by a DisplayState.
type DisplayKind int

const (
	KindNoValue DisplayKind = iota
	KindPropertyValue
	KindPropertySpecValue
	KindMetadatumValue
)

// DisplayState is the value-table state: what is selected and how it
// must be rendered. States are immutable; transitions replace the
// whole state rather than mutating it.
type DisplayState struct {
	kind  DisplayKind
	prop  sdf.Property
	spec  sdf.PropertySpec
	value cty.Value
}

// NoValue is the placeholder state entered whenever resolution fails
// or nothing is selected.
func NoValue() DisplayState {
	return DisplayState{kind: KindNoValue}
}

// PropertyValue displays a composed property resolved at the current
// frame.
func PropertyValue(prop sdf.Property) DisplayState {
	return DisplayState{kind: KindPropertyValue, prop: prop}
}

// PropertySpecValue displays a layer's authored opinion directly,
// without composition.
func PropertySpecValue(spec sdf.PropertySpec) DisplayState {
	return DisplayState{kind: KindPropertySpecValue, spec: spec}
}

// MetadatumValue displays an already-resolved metadata value.
func MetadatumValue(value cty.Value) DisplayState {
	return DisplayState{kind: KindMetadatumValue, value: value}
}

// Kind returns the variant tag.
func (s DisplayState) Kind() DisplayKind { return s.kind }

// FrameDependent reports whether a frame change alone must re-render
// this state. Only composed property values resolve at a frame;
// authored spec opinions and metadata do not.
func (s DisplayState) FrameDependent() bool {
	return s.kind == KindPropertyValue
}

// HasValue reports whether rendering at the given frame would produce
// actual rows rather than the placeholder.
func (s DisplayState) HasValue(frame float64) bool {
	switch s.kind {
	case KindMetadatumValue:
		return true
	case KindPropertyValue, KindPropertySpecValue:
		_, ok := s.resolve(frame)
		return ok
	}
	return false
}

// Render computes the column schema and rows for this state at the
// given frame. Frame is ignored by frame-independent states.
func (s DisplayState) Render(frame float64) TableData {
	td, ok := s.resolve(frame)
	if !ok {
		return noValueTable()
	}
	return td
}

func (s DisplayState) resolve(frame float64) (TableData, bool) {
	switch s.kind {
	case KindPropertyValue:
		return renderProperty(s.prop, frame)
	case KindPropertySpecValue:
		return renderPropertySpec(s.spec)
	case KindMetadatumValue:
		return TableData{
			Columns: []string{"Value"},
			Rows:    [][]string{{sdf.FormatValue(s.value)}},
		}, true
	}
	return TableData{}, false
}

func noValueTable() TableData {
	return TableData{Columns: []string{"No Value"}, Rows: [][]string{{""}}}
}

func renderProperty(prop sdf.Property, frame float64) (TableData, bool) {
	switch p := prop.(type) {
	case sdf.Relationship:
		targets := p.Targets()
		if len(targets) == 0 {
			return TableData{}, false
		}
		// Relationships always resolve to an ordered path list, even
		// when there is a single target.
		rows := make([][]string, 0, len(targets))
		for i, t := range targets {
			rows = append(rows, []string{strconv.Itoa(i), t.String()})
		}
		return indexedTable(rows), true
	case sdf.Attribute:
		v, ok := p.Get(frame)
		if !ok || v == cty.NilVal || v.IsNull() {
			return TableData{}, false
		}
		if p.TypeIsArray() {
			return indexedValueTable(v), true
		}
		return scalarTable(v), true
	}
	return TableData{}, false
}

func renderPropertySpec(spec sdf.PropertySpec) (TableData, bool) {
	switch ps := spec.(type) {
	case sdf.RelationshipSpec:
		targets := ps.ExplicitTargets()
		if len(targets) == 0 {
			return TableData{}, false
		}
		rows := make([][]string, 0, len(targets))
		for i, t := range targets {
			rows = append(rows, []string{strconv.Itoa(i), t.String()})
		}
		return indexedTable(rows), true
	case sdf.AttributeSpec:
		// Authored time samples win over the default, and all of them
		// are shown: a spec view is not frame-dependent.
		samples := ps.Layer().TimeSamples(ps.Path())
		if len(samples) > 0 {
			rows := make([][]string, 0, len(samples))
			for i, sample := range samples {
				rows = append(rows, []string{strconv.Itoa(i), sdf.FormatValue(sample.Value)})
			}
			return indexedTable(rows), true
		}
		v, ok := ps.Default()
		if !ok || v == cty.NilVal || v.IsNull() {
			return TableData{}, false
		}
		if ps.TypeIsArray() {
			return indexedValueTable(v), true
		}
		return scalarTable(v), true
	}
	return TableData{}, false
}

func indexedValueTable(v cty.Value) TableData {
	elems := sdf.ValueElements(v)
	rows := make([][]string, 0, len(elems))
	for i, e := range elems {
		rows = append(rows, []string{strconv.Itoa(i), sdf.FormatValue(e)})
	}
	return indexedTable(rows)
}

func indexedTable(rows [][]string) TableData {
	return TableData{Columns: []string{"Index", "Value"}, Rows: rows}
}

func scalarTable(v cty.Value) TableData {
	return TableData{Columns: []string{"Value"}, Rows: [][]string{{sdf.FormatValue(v)}}}
}
