package inspect

import (
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// ComposedRowKey identifies the synthetic layer-stack row representing
// the fully composed prim.
const ComposedRowKey = "composed"

const rowKeySep = "|"

// LayerRow is one row of the prim layer stack view.
type LayerRow struct {
	Key        string
	Display    string
	Arc        string
	Identifier string // empty for the Composed row
}

// PropertyRow is one row of the properties view.
type PropertyRow struct {
	Kind     string // "Attr" or "Rel"
	Name     string
	TypeName string
}

// MetadataRow is one row of the metadata view.
type MetadataRow struct {
	Key      string
	TypeName string
	Display  string
	Raw      cty.Value
}

// Cascade resolves user selections against a stage and owns the
// current display state. Handlers run synchronously in delivery order;
// every transition builds its replacement state fully before assigning
// it. Resolution failures fall back to the NoValue state, never an
// error.
type Cascade struct {
	stage sdf.Stage

	prim       sdf.Prim // current tree selection
	dataObject any      // sdf.Prim or sdf.PrimSpec bound to the property view
	metaObject any      // object bound to the metadata view
	state      DisplayState
	frame      float64
}

// NewCascade builds a cascade over an explicitly supplied stage. The
// stage is never held globally, so multiple stages can be inspected
// side by side.
func NewCascade(stage sdf.Stage) *Cascade {
	return &Cascade{stage: stage, state: NoValue()}
}

// Stage returns the stage this cascade resolves against.
func (c *Cascade) Stage() sdf.Stage { return c.stage }

// State returns the current display state.
func (c *Cascade) State() DisplayState { return c.state }

// Frame returns the active time code.
func (c *Cascade) Frame() float64 { return c.frame }

// ValueTable renders the current display state at the active frame.
func (c *Cascade) ValueTable() TableData { return c.state.Render(c.frame) }

// DataObject returns the prim or prim spec currently feeding the
// property view, or nil.
func (c *Cascade) DataObject() any { return c.dataObject }

// SelectPrim handles a tree highlight: resolve the prim and rebind the
// property, layer and metadata views to it.
func (c *Cascade) SelectPrim(path sdf.Path) {
	prim, ok := c.stage.PrimAtPath(path)
	if !ok {
		c.prim = nil
		c.dataObject = nil
		c.metaObject = nil
		c.state = NoValue()
		return
	}
	c.prim = prim
	c.dataObject = prim
	c.metaObject = prim
}

// LayerStackRows returns the layer-stack view rows for the current
// prim: the synthetic Composed row first, then one row per
// contribution record in strength order.
func (c *Cascade) LayerStackRows() []LayerRow {
	if c.prim == nil {
		return nil
	}
	rows := []LayerRow{{Key: ComposedRowKey, Display: "Composed"}}
	for _, rec := range Attribution(c.prim) {
		rows = append(rows, LayerRow{
			Key:        rec.Layer.Identifier() + rowKeySep + rec.SpecPath.String(),
			Display:    rec.Layer.DisplayName(),
			Arc:        rec.Arc,
			Identifier: rec.Layer.Identifier(),
		})
	}
	return rows
}

// SelectLayerRow handles a layer-stack highlight. The Composed row
// rebinds the composed prim; any other row key splits into layer
// identifier and spec path, and the spec becomes the data object.
// Malformed or stale keys are treated as not-found.
func (c *Cascade) SelectLayerRow(key string) {
	if key == ComposedRowKey {
		c.dataObject = c.prim
		c.metaObject = c.prim
		return
	}
	ident, specPath, ok := strings.Cut(key, rowKeySep)
	if !ok || ident == "" || specPath == "" {
		c.dataObject = nil
		c.state = NoValue()
		return
	}
	layer, err := c.stage.FindOrOpenLayer(ident)
	if err != nil {
		c.dataObject = nil
		c.state = NoValue()
		return
	}
	spec, ok := layer.PrimSpec(sdf.Path(specPath))
	if !ok {
		c.dataObject = nil
		c.state = NoValue()
		return
	}
	c.dataObject = spec
	c.metaObject = spec
}

// PropertyRows returns the property view rows for the current data
// object, which is either a composed prim or a single layer's prim
// spec.
func (c *Cascade) PropertyRows() []PropertyRow {
	switch obj := c.dataObject.(type) {
	case sdf.Prim:
		props := obj.Properties()
		rows := make([]PropertyRow, 0, len(props))
		for _, p := range props {
			rows = append(rows, propertyRow(p.Name(), p))
		}
		return rows
	case sdf.PrimSpec:
		specs := obj.Properties()
		rows := make([]PropertyRow, 0, len(specs))
		for _, ps := range specs {
			rows = append(rows, propertyRow(ps.Name(), ps))
		}
		return rows
	}
	return nil
}

func propertyRow(name string, obj any) PropertyRow {
	switch p := obj.(type) {
	case sdf.Relationship:
		return PropertyRow{Kind: "Rel", Name: name}
	case sdf.RelationshipSpec:
		return PropertyRow{Kind: "Rel", Name: name}
	case sdf.Attribute:
		return PropertyRow{Kind: "Attr", Name: name, TypeName: p.TypeName()}
	case sdf.AttributeSpec:
		return PropertyRow{Kind: "Attr", Name: name, TypeName: p.TypeName()}
	}
	return PropertyRow{Kind: "Attr", Name: name}
}

// SelectProperty handles a property-row highlight. On a composed prim
// the property resolves through composition and the state becomes
// PropertyValue; on a prim spec the lookup uses the relative property
// path form and the state becomes PropertySpecValue. A property with
// no resolvable value transitions to NoValue.
func (c *Cascade) SelectProperty(name string) {
	switch obj := c.dataObject.(type) {
	case sdf.Prim:
		prop, ok := obj.Property(name)
		if !ok {
			c.state = NoValue()
			return
		}
		c.metaObject = prop
		c.setState(PropertyValue(prop))
	case sdf.PrimSpec:
		// Spec property lookup requires the relative-path form; a bare
		// name silently fails to resolve.
		spec, ok := obj.PropertyAtPath(sdf.MakeRelativeProperty(name))
		if !ok {
			c.state = NoValue()
			return
		}
		c.metaObject = spec
		c.setState(PropertySpecValue(spec))
	default:
		c.state = NoValue()
	}
}

// MetadataRows returns the metadata view rows for the currently bound
// object: spec metadata for layer-level objects, composed metadata
// otherwise.
func (c *Cascade) MetadataRows() []MetadataRow {
	var fields []sdf.Field
	switch obj := c.metaObject.(type) {
	case sdf.Spec:
		fields = SpecMetadata(obj)
	case sdf.Object:
		fields = ObjectMetadata(obj)
	default:
		return nil
	}
	rows := make([]MetadataRow, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, MetadataRow{
			Key:      f.Key,
			TypeName: sdf.ValueTypeName(f.Value),
			Display:  sdf.FormatValue(f.Value),
			Raw:      f.Value,
		})
	}
	return rows
}

// SelectMetadataRow handles a metadata-row highlight: the raw stored
// value at that row becomes a MetadatumValue state. Out-of-range rows
// transition to NoValue.
func (c *Cascade) SelectMetadataRow(index int) {
	rows := c.MetadataRows()
	if index < 0 || index >= len(rows) {
		c.state = NoValue()
		return
	}
	c.state = MetadatumValue(rows[index].Raw)
}

// SetFrame moves the active time code. The current state is kept; the
// presentation layer re-renders it when it is frame-dependent.
func (c *Cascade) SetFrame(frame float64) {
	c.frame = frame
}

func (c *Cascade) setState(st DisplayState) {
	if !st.HasValue(c.frame) {
		c.state = NoValue()
		return
	}
	c.state = st
}
