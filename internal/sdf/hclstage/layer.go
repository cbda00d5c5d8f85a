package hclstage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// Decoding targets for gohcl. A layer file carries stage-level fields,
// sublayer references and a tree of prim blocks.
type layerDoc struct {
	DefaultPrim   *string    `hcl:"default_prim"`
	StartTimeCode *float64   `hcl:"start_time_code"`
	EndTimeCode   *float64   `hcl:"end_time_code"`
	Sublayers     []string   `hcl:"sublayers,optional"`
	Prims         []*primDoc `hcl:"prim,block"`
}

type primDoc struct {
	Name        string     `hcl:"name,label"`
	TypeName    *string    `hcl:"type_name"`
	Metadata    cty.Value  `hcl:"metadata,optional"`
	AssetInfo   cty.Value  `hcl:"asset_info,optional"`
	CustomData  cty.Value  `hcl:"custom_data,optional"`
	References  []string   `hcl:"references,optional"`
	Payloads    []string   `hcl:"payloads,optional"`
	Inherits    []string   `hcl:"inherits,optional"`
	Specializes []string   `hcl:"specializes,optional"`
	Attrs       []*attrDoc `hcl:"attr,block"`
	Rels        []*relDoc  `hcl:"rel,block"`
	Children    []*primDoc `hcl:"prim,block"`
}

type attrDoc struct {
	Name       string    `hcl:"name,label"`
	Type       *string   `hcl:"type"`
	Default    cty.Value `hcl:"default,optional"`
	Samples    cty.Value `hcl:"samples,optional"`
	Metadata   cty.Value `hcl:"metadata,optional"`
	AssetInfo  cty.Value `hcl:"asset_info,optional"`
	CustomData cty.Value `hcl:"custom_data,optional"`
}

type relDoc struct {
	Name       string    `hcl:"name,label"`
	Targets    []string  `hcl:"targets,optional"`
	Metadata   cty.Value `hcl:"metadata,optional"`
	AssetInfo  cty.Value `hcl:"asset_info,optional"`
	CustomData cty.Value `hcl:"custom_data,optional"`
}

// Layer is one parsed layer file.
type Layer struct {
	identifier  string
	dir         string
	defaultPrim string
	start       *float64
	end         *float64
	sublayers   []string // resolved identifiers, strongest first
	specs       map[sdf.Path]*PrimSpec
	pseudo      *PrimSpec // implicit root spec holding top-level prims
	samples     map[sdf.Path][]sdf.TimeSample
}

func (l *Layer) Identifier() string  { return l.identifier }
func (l *Layer) DisplayName() string { return filepath.Base(l.identifier) }

func (l *Layer) PrimSpec(path sdf.Path) (sdf.PrimSpec, bool) {
	spec, ok := l.specs[path]
	if !ok {
		return nil, false
	}
	return spec, true
}

func (l *Layer) TimeSamples(path sdf.Path) []sdf.TimeSample {
	return l.samples[path]
}

func (l *Layer) specAt(path sdf.Path) *PrimSpec { return l.specs[path] }

// arcTarget is a parsed reference/payload entry: a layer identifier
// with an optional explicit prim path ("asset.hcl</Asset>").
type arcTarget struct {
	identifier string
	primPath   sdf.Path
}

// PrimSpec is one layer's authored opinion about one prim.
type PrimSpec struct {
	layer      *Layer
	path       sdf.Path
	typeName   string
	metadata   []sdf.Field
	assetInfo  []sdf.Field
	customData []sdf.Field
	props      []sdf.PropertySpec

	references  []arcTarget
	payloads    []arcTarget
	inherits    []sdf.Path
	specializes []sdf.Path

	children []*PrimSpec
}

func (s *PrimSpec) Name() string     { return s.path.Name() }
func (s *PrimSpec) Path() sdf.Path   { return s.path }
func (s *PrimSpec) Layer() sdf.Layer { return s.layer }

func (s *PrimSpec) InfoKeys() []string {
	var keys []string
	if s.typeName != "" {
		keys = append(keys, "typeName")
	}
	for _, f := range s.metadata {
		keys = append(keys, f.Key)
	}
	return keys
}

func (s *PrimSpec) Info(key string) (cty.Value, bool) {
	if key == "typeName" && s.typeName != "" {
		return cty.StringVal(s.typeName), true
	}
	return fieldLookup(s.metadata, key)
}

func (s *PrimSpec) AllMetadata() []sdf.Field { return s.metadata }
func (s *PrimSpec) AssetInfo() []sdf.Field   { return s.assetInfo }
func (s *PrimSpec) CustomData() []sdf.Field  { return s.customData }

func (s *PrimSpec) Properties() []sdf.PropertySpec { return s.props }

// PropertyAtPath resolves a property spec by relative path. Only the
// ".name" form resolves; this mirrors layer-level path semantics where
// a bare property name is not a valid path.
func (s *PrimSpec) PropertyAtPath(path sdf.Path) (sdf.PropertySpec, bool) {
	rel := path.String()
	if len(rel) < 2 || rel[0] != '.' {
		return nil, false
	}
	name := rel[1:]
	for _, ps := range s.props {
		if ps.Name() == name {
			return ps, true
		}
	}
	return nil, false
}

func (s *PrimSpec) childByName(name string) *PrimSpec {
	for _, c := range s.children {
		if c.path.Name() == name {
			return c
		}
	}
	return nil
}

// AttributeSpec is an authored attribute opinion.
type AttributeSpec struct {
	owner      *PrimSpec
	name       string
	typeName   string
	def        cty.Value
	hasDef     bool
	metadata   []sdf.Field
	assetInfo  []sdf.Field
	customData []sdf.Field
}

func (a *AttributeSpec) Name() string     { return a.name }
func (a *AttributeSpec) Path() sdf.Path   { return a.owner.path.AppendProperty(a.name) }
func (a *AttributeSpec) Layer() sdf.Layer { return a.owner.layer }
func (a *AttributeSpec) TypeName() string { return a.typeName }
func (a *AttributeSpec) TypeIsArray() bool {
	return sdf.TypeNameIsArray(a.typeName)
}

func (a *AttributeSpec) Default() (cty.Value, bool) {
	if !a.hasDef {
		return cty.NilVal, false
	}
	return a.def, true
}

func (a *AttributeSpec) InfoKeys() []string {
	keys := []string{"typeName"}
	if a.hasDef {
		keys = append(keys, "default")
	}
	for _, f := range a.metadata {
		keys = append(keys, f.Key)
	}
	return keys
}

func (a *AttributeSpec) Info(key string) (cty.Value, bool) {
	switch key {
	case "typeName":
		return cty.StringVal(a.typeName), true
	case "default":
		if a.hasDef {
			return a.def, true
		}
		return cty.NilVal, false
	}
	return fieldLookup(a.metadata, key)
}

func (a *AttributeSpec) AllMetadata() []sdf.Field { return a.metadata }
func (a *AttributeSpec) AssetInfo() []sdf.Field   { return a.assetInfo }
func (a *AttributeSpec) CustomData() []sdf.Field  { return a.customData }

// RelationshipSpec is an authored relationship opinion.
type RelationshipSpec struct {
	owner      *PrimSpec
	name       string
	targets    []sdf.Path
	metadata   []sdf.Field
	assetInfo  []sdf.Field
	customData []sdf.Field
}

func (r *RelationshipSpec) Name() string     { return r.name }
func (r *RelationshipSpec) Path() sdf.Path   { return r.owner.path.AppendProperty(r.name) }
func (r *RelationshipSpec) Layer() sdf.Layer { return r.owner.layer }
func (r *RelationshipSpec) TypeName() string { return "" }

func (r *RelationshipSpec) ExplicitTargets() []sdf.Path { return r.targets }

func (r *RelationshipSpec) InfoKeys() []string {
	keys := []string{"targetPaths"}
	for _, f := range r.metadata {
		keys = append(keys, f.Key)
	}
	return keys
}

func (r *RelationshipSpec) Info(key string) (cty.Value, bool) {
	if key == "targetPaths" {
		vals := make([]cty.Value, 0, len(r.targets))
		for _, t := range r.targets {
			vals = append(vals, cty.StringVal(t.String()))
		}
		if len(vals) == 0 {
			return cty.ListValEmpty(cty.String), true
		}
		return cty.ListVal(vals), true
	}
	return fieldLookup(r.metadata, key)
}

func (r *RelationshipSpec) AllMetadata() []sdf.Field { return r.metadata }
func (r *RelationshipSpec) AssetInfo() []sdf.Field   { return r.assetInfo }
func (r *RelationshipSpec) CustomData() []sdf.Field  { return r.customData }

// loader parses layer files on demand and caches them by identifier so
// a layer shared by several arcs is opened once.
type loader struct {
	parser *hclparse.Parser
	layers map[string]*Layer
}

func newLoader() *loader {
	return &loader{
		parser: hclparse.NewParser(),
		layers: map[string]*Layer{},
	}
}

func (ld *loader) open(identifier string) (*Layer, error) {
	if l, ok := ld.layers[identifier]; ok {
		return l, nil
	}
	if _, err := os.Stat(identifier); err != nil {
		return nil, &sdf.NotFoundError{Kind: "layer", Name: identifier}
	}
	file, diags := ld.parser.ParseHCLFile(identifier)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse layer %s: %w", identifier, diags)
	}
	var doc layerDoc
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("decode layer %s: %w", identifier, diags)
	}

	l := &Layer{
		identifier: identifier,
		dir:        filepath.Dir(identifier),
		start:      doc.StartTimeCode,
		end:        doc.EndTimeCode,
		specs:      map[sdf.Path]*PrimSpec{},
		samples:    map[sdf.Path][]sdf.TimeSample{},
	}
	if doc.DefaultPrim != nil {
		l.defaultPrim = *doc.DefaultPrim
	}
	for _, ref := range doc.Sublayers {
		l.sublayers = append(l.sublayers, resolveIdentifier(l.dir, ref))
	}

	l.pseudo = &PrimSpec{layer: l, path: sdf.RootPath}
	for _, pd := range doc.Prims {
		child, err := l.buildSpec(pd, sdf.RootPath)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", identifier, err)
		}
		l.pseudo.children = append(l.pseudo.children, child)
	}

	ld.layers[identifier] = l
	return l, nil
}

// stack returns a layer's full layer stack, strongest first: the layer
// itself, then each sublayer's stack in authored order.
func (ld *loader) stack(l *Layer) ([]*Layer, error) {
	var out []*Layer
	seen := map[string]bool{}
	var walk func(*Layer) error
	walk = func(cur *Layer) error {
		if seen[cur.identifier] {
			return nil
		}
		seen[cur.identifier] = true
		out = append(out, cur)
		for _, ident := range cur.sublayers {
			sub, err := ld.open(ident)
			if err != nil {
				return fmt.Errorf("sublayer of %s: %w", cur.identifier, err)
			}
			if err := walk(sub); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(l); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Layer) buildSpec(doc *primDoc, parentPath sdf.Path) (*PrimSpec, error) {
	spec := &PrimSpec{
		layer:      l,
		path:       parentPath.AppendChild(doc.Name),
		metadata:   fieldsFromValue(doc.Metadata),
		assetInfo:  fieldsFromValue(doc.AssetInfo),
		customData: fieldsFromValue(doc.CustomData),
	}
	if doc.TypeName != nil {
		spec.typeName = *doc.TypeName
	}
	for _, ref := range doc.References {
		spec.references = append(spec.references, parseArcTarget(l.dir, ref))
	}
	for _, ref := range doc.Payloads {
		spec.payloads = append(spec.payloads, parseArcTarget(l.dir, ref))
	}
	for _, p := range doc.Inherits {
		spec.inherits = append(spec.inherits, sdf.Path(p))
	}
	for _, p := range doc.Specializes {
		spec.specializes = append(spec.specializes, sdf.Path(p))
	}

	for _, ad := range doc.Attrs {
		attr := &AttributeSpec{
			owner:      spec,
			name:       ad.Name,
			typeName:   "token",
			metadata:   fieldsFromValue(ad.Metadata),
			assetInfo:  fieldsFromValue(ad.AssetInfo),
			customData: fieldsFromValue(ad.CustomData),
		}
		if ad.Type != nil {
			attr.typeName = *ad.Type
		}
		if ad.Default != cty.NilVal && !ad.Default.IsNull() {
			attr.def = ad.Default
			attr.hasDef = true
		}
		if err := l.recordSamples(attr.Path(), ad.Samples); err != nil {
			return nil, fmt.Errorf("attr %s on %s: %w", ad.Name, spec.path, err)
		}
		spec.props = append(spec.props, attr)
	}
	for _, rd := range doc.Rels {
		rel := &RelationshipSpec{
			owner:      spec,
			name:       rd.Name,
			metadata:   fieldsFromValue(rd.Metadata),
			assetInfo:  fieldsFromValue(rd.AssetInfo),
			customData: fieldsFromValue(rd.CustomData),
		}
		for _, t := range rd.Targets {
			rel.targets = append(rel.targets, sdf.Path(t))
		}
		spec.props = append(spec.props, rel)
	}

	for _, cd := range doc.Children {
		child, err := l.buildSpec(cd, spec.path)
		if err != nil {
			return nil, err
		}
		spec.children = append(spec.children, child)
	}

	l.specs[spec.path] = spec
	return spec, nil
}

// recordSamples stores an attr block's samples object, keyed by frame
// strings, as ordered time samples.
func (l *Layer) recordSamples(path sdf.Path, samples cty.Value) error {
	if samples == cty.NilVal || samples.IsNull() {
		return nil
	}
	if !samples.CanIterateElements() {
		return fmt.Errorf("samples must be an object keyed by time code")
	}
	var out []sdf.TimeSample
	for it := samples.ElementIterator(); it.Next(); {
		k, v := it.Element()
		tc, err := strconv.ParseFloat(k.AsString(), 64)
		if err != nil {
			return fmt.Errorf("bad sample time %q: %w", k.AsString(), err)
		}
		out = append(out, sdf.TimeSample{TimeCode: tc, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeCode < out[j].TimeCode })
	l.samples[path] = out
	return nil
}

// fieldsFromValue flattens an HCL object value into key-ordered fields.
func fieldsFromValue(v cty.Value) []sdf.Field {
	if v == cty.NilVal || v.IsNull() || !v.CanIterateElements() {
		return nil
	}
	var out []sdf.Field
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		out = append(out, sdf.Field{Key: k.AsString(), Value: ev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func fieldLookup(fields []sdf.Field, key string) (cty.Value, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return cty.NilVal, false
}

// parseArcTarget splits "layer.hcl</Prim>" into a resolved layer
// identifier and an optional explicit prim path.
func parseArcTarget(baseDir, ref string) arcTarget {
	ident := ref
	var prim sdf.Path
	if i := strings.IndexByte(ref, '<'); i >= 0 {
		ident = ref[:i]
		rest := ref[i+1:]
		if len(rest) > 0 && rest[len(rest)-1] == '>' {
			rest = rest[:len(rest)-1]
		}
		prim = sdf.Path(rest)
	}
	return arcTarget{identifier: resolveIdentifier(baseDir, ident), primPath: prim}
}

func resolveIdentifier(baseDir, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Clean(filepath.Join(baseDir, ref))
}
