// Package sdftest provides a hand-buildable in-memory stage for tests.
// Every type exposes its fields directly so fixtures can be assembled
// inline without touching the filesystem.
package sdftest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// Stage is an in-memory sdf.Stage.
type Stage struct {
	Root    *Layer
	Layers  map[string]*Layer
	Prims   map[sdf.Path]*Prim
	Order   []sdf.Path
	Start   float64
	End     float64
	pseudo  *Prim
}

// NewStage builds a stage rooted at the given layer.
func NewStage(root *Layer) *Stage {
	s := &Stage{
		Root:   root,
		Layers: map[string]*Layer{},
		Prims:  map[sdf.Path]*Prim{},
	}
	if root != nil {
		s.Layers[root.ID] = root
	}
	s.pseudo = &Prim{PrimPath: sdf.RootPath, stage: s}
	s.Prims[sdf.RootPath] = s.pseudo
	return s
}

// AddLayer registers a layer so FindOrOpenLayer can resolve it.
func (s *Stage) AddLayer(l *Layer) { s.Layers[l.ID] = l }

// AddPrim registers a prim and wires it into the hierarchy by path.
// Parents must be added before children.
func (s *Stage) AddPrim(p *Prim) *Prim {
	p.stage = s
	s.Prims[p.PrimPath] = p
	s.Order = append(s.Order, p.PrimPath)
	parent, ok := s.Prims[p.PrimPath.Parent()]
	if ok && parent != p {
		p.parent = parent
		parent.children = append(parent.children, p)
	}
	return p
}

func (s *Stage) RootLayer() sdf.Layer { return s.Root }
func (s *Stage) PseudoRoot() sdf.Prim { return s.pseudo }

func (s *Stage) Traverse() []sdf.Prim {
	out := make([]sdf.Prim, 0, len(s.Order))
	for _, p := range s.Order {
		out = append(out, s.Prims[p])
	}
	return out
}

func (s *Stage) PrimAtPath(path sdf.Path) (sdf.Prim, bool) {
	p, ok := s.Prims[path]
	if !ok {
		return nil, false
	}
	return p, true
}

func (s *Stage) FindOrOpenLayer(identifier string) (sdf.Layer, error) {
	if l, ok := s.Layers[identifier]; ok {
		return l, nil
	}
	return nil, &sdf.NotFoundError{Kind: "layer", Name: identifier}
}

func (s *Stage) StartTimeCode() float64 { return s.Start }
func (s *Stage) EndTimeCode() float64   { return s.End }

// Layer is an in-memory sdf.Layer.
type Layer struct {
	ID      string
	Specs   map[sdf.Path]*PrimSpec
	Samples map[sdf.Path][]sdf.TimeSample
}

// NewLayer builds an empty layer with the given identifier.
func NewLayer(id string) *Layer {
	return &Layer{
		ID:      id,
		Specs:   map[sdf.Path]*PrimSpec{},
		Samples: map[sdf.Path][]sdf.TimeSample{},
	}
}

// AddSpec registers a prim spec at the given path.
func (l *Layer) AddSpec(spec *PrimSpec) *PrimSpec {
	spec.SpecLayer = l
	l.Specs[spec.SpecPath] = spec
	return spec
}

// AddSamples records time samples for a property path, kept ordered by
// time code.
func (l *Layer) AddSamples(path sdf.Path, samples ...sdf.TimeSample) {
	l.Samples[path] = append(l.Samples[path], samples...)
	sort.Slice(l.Samples[path], func(i, j int) bool {
		return l.Samples[path][i].TimeCode < l.Samples[path][j].TimeCode
	})
}

func (l *Layer) Identifier() string  { return l.ID }
func (l *Layer) DisplayName() string { return filepath.Base(l.ID) }

func (l *Layer) PrimSpec(path sdf.Path) (sdf.PrimSpec, bool) {
	spec, ok := l.Specs[path]
	if !ok {
		return nil, false
	}
	return spec, true
}

func (l *Layer) TimeSamples(path sdf.Path) []sdf.TimeSample {
	return l.Samples[path]
}

// Prim is an in-memory composed prim.
type Prim struct {
	PrimPath sdf.Path
	Stack    []sdf.PrimSpec
	Arcs     []sdf.CompositionArc
	Props    []sdf.Property
	Meta     []sdf.Field
	Asset    []sdf.Field
	Custom   []sdf.Field

	stage    *Stage
	parent   *Prim
	children []*Prim
}

func (p *Prim) Name() string   { return p.PrimPath.Name() }
func (p *Prim) Path() sdf.Path { return p.PrimPath }

func (p *Prim) Parent() (sdf.Prim, bool) {
	if p.parent == nil {
		return nil, false
	}
	return p.parent, true
}

func (p *Prim) Children() []sdf.Prim {
	out := make([]sdf.Prim, len(p.children))
	for i, c := range p.children {
		out[i] = c
	}
	return out
}

func (p *Prim) Properties() []sdf.Property { return p.Props }

func (p *Prim) Property(name string) (sdf.Property, bool) {
	for _, prop := range p.Props {
		if prop.Name() == name {
			return prop, true
		}
	}
	return nil, false
}

func (p *Prim) PrimStack() []sdf.PrimSpec            { return p.Stack }
func (p *Prim) CompositionArcs() []sdf.CompositionArc { return p.Arcs }
func (p *Prim) AllMetadata() []sdf.Field             { return p.Meta }
func (p *Prim) AssetInfo() []sdf.Field               { return p.Asset }
func (p *Prim) CustomData() []sdf.Field              { return p.Custom }

// Arc is an in-memory composition arc.
type Arc struct {
	Type  sdf.ArcType
	Layer *Layer
}

func (a Arc) ArcType() sdf.ArcType      { return a.Type }
func (a Arc) TargetLayer() sdf.Layer    { return a.Layer }

// PrimSpec is an in-memory prim spec.
type PrimSpec struct {
	SpecLayer *Layer
	SpecPath  sdf.Path
	Infos     []sdf.Field
	Asset     []sdf.Field
	Custom    []sdf.Field
	Props     []sdf.PropertySpec
}

func (s *PrimSpec) Name() string     { return s.SpecPath.Name() }
func (s *PrimSpec) Path() sdf.Path   { return s.SpecPath }
func (s *PrimSpec) Layer() sdf.Layer { return s.SpecLayer }

func (s *PrimSpec) InfoKeys() []string {
	keys := make([]string, len(s.Infos))
	for i, f := range s.Infos {
		keys[i] = f.Key
	}
	return keys
}

func (s *PrimSpec) Info(key string) (cty.Value, bool) {
	for _, f := range s.Infos {
		if f.Key == key {
			return f.Value, true
		}
	}
	return cty.NilVal, false
}

func (s *PrimSpec) AllMetadata() []sdf.Field { return s.Infos }
func (s *PrimSpec) AssetInfo() []sdf.Field   { return s.Asset }
func (s *PrimSpec) CustomData() []sdf.Field  { return s.Custom }

func (s *PrimSpec) Properties() []sdf.PropertySpec { return s.Props }

// PropertyAtPath resolves a property spec by relative path (".name").
// Absolute-style names do not resolve, mirroring layer-level lookup.
func (s *PrimSpec) PropertyAtPath(path sdf.Path) (sdf.PropertySpec, bool) {
	rel := string(path)
	if !strings.HasPrefix(rel, ".") {
		return nil, false
	}
	name := rel[1:]
	for _, ps := range s.Props {
		if ps.Name() == name {
			return ps, true
		}
	}
	return nil, false
}

// Attribute is an in-memory composed attribute.
type Attribute struct {
	AttrName string
	AttrPath sdf.Path
	Type     string
	Samples  []sdf.TimeSample
	Default  cty.Value
	Meta     []sdf.Field
	Asset    []sdf.Field
	Custom   []sdf.Field
}

func (a *Attribute) Name() string     { return a.AttrName }
func (a *Attribute) Path() sdf.Path   { return a.AttrPath }
func (a *Attribute) TypeName() string { return a.Type }
func (a *Attribute) TypeIsArray() bool {
	return sdf.TypeNameIsArray(a.Type)
}

// Get resolves the value at a time code with held interpolation: the
// nearest sample at or before the time code, the first sample before
// the range, or the default when no samples exist.
func (a *Attribute) Get(timeCode float64) (cty.Value, bool) {
	if len(a.Samples) > 0 {
		v := a.Samples[0].Value
		for _, s := range a.Samples {
			if s.TimeCode > timeCode {
				break
			}
			v = s.Value
		}
		return v, true
	}
	if a.Default == cty.NilVal {
		return cty.NilVal, false
	}
	return a.Default, true
}

func (a *Attribute) AllMetadata() []sdf.Field { return a.Meta }
func (a *Attribute) AssetInfo() []sdf.Field   { return a.Asset }
func (a *Attribute) CustomData() []sdf.Field  { return a.Custom }

// Relationship is an in-memory composed relationship.
type Relationship struct {
	RelName string
	RelPath sdf.Path
	Paths   []sdf.Path
	Meta    []sdf.Field
	Asset   []sdf.Field
	Custom  []sdf.Field
}

func (r *Relationship) Name() string           { return r.RelName }
func (r *Relationship) Path() sdf.Path         { return r.RelPath }
func (r *Relationship) TypeName() string       { return "" }
func (r *Relationship) Targets() []sdf.Path    { return r.Paths }
func (r *Relationship) AllMetadata() []sdf.Field { return r.Meta }
func (r *Relationship) AssetInfo() []sdf.Field   { return r.Asset }
func (r *Relationship) CustomData() []sdf.Field  { return r.Custom }

// AttributeSpec is an in-memory authored attribute opinion.
type AttributeSpec struct {
	SpecLayer  *Layer
	AttrName   string
	SpecPath   sdf.Path
	Type       string
	DefaultVal cty.Value
	HasDefault bool
	Infos      []sdf.Field
	Asset      []sdf.Field
	Custom     []sdf.Field
}

func (a *AttributeSpec) Name() string     { return a.AttrName }
func (a *AttributeSpec) Path() sdf.Path   { return a.SpecPath }
func (a *AttributeSpec) Layer() sdf.Layer { return a.SpecLayer }
func (a *AttributeSpec) TypeName() string { return a.Type }
func (a *AttributeSpec) TypeIsArray() bool {
	return sdf.TypeNameIsArray(a.Type)
}

func (a *AttributeSpec) Default() (cty.Value, bool) {
	if !a.HasDefault {
		return cty.NilVal, false
	}
	return a.DefaultVal, true
}

func (a *AttributeSpec) InfoKeys() []string {
	keys := make([]string, len(a.Infos))
	for i, f := range a.Infos {
		keys[i] = f.Key
	}
	return keys
}

func (a *AttributeSpec) Info(key string) (cty.Value, bool) {
	for _, f := range a.Infos {
		if f.Key == key {
			return f.Value, true
		}
	}
	return cty.NilVal, false
}

func (a *AttributeSpec) AllMetadata() []sdf.Field { return a.Infos }
func (a *AttributeSpec) AssetInfo() []sdf.Field   { return a.Asset }
func (a *AttributeSpec) CustomData() []sdf.Field  { return a.Custom }

// RelationshipSpec is an in-memory authored relationship opinion.
type RelationshipSpec struct {
	SpecLayer *Layer
	RelName   string
	SpecPath  sdf.Path
	Paths     []sdf.Path
	Infos     []sdf.Field
	Asset     []sdf.Field
	Custom    []sdf.Field
}

func (r *RelationshipSpec) Name() string     { return r.RelName }
func (r *RelationshipSpec) Path() sdf.Path   { return r.SpecPath }
func (r *RelationshipSpec) Layer() sdf.Layer { return r.SpecLayer }
func (r *RelationshipSpec) TypeName() string { return "" }

func (r *RelationshipSpec) ExplicitTargets() []sdf.Path { return r.Paths }

func (r *RelationshipSpec) InfoKeys() []string {
	keys := make([]string, len(r.Infos))
	for i, f := range r.Infos {
		keys[i] = f.Key
	}
	return keys
}

func (r *RelationshipSpec) Info(key string) (cty.Value, bool) {
	for _, f := range r.Infos {
		if f.Key == key {
			return f.Value, true
		}
	}
	return cty.NilVal, false
}

func (r *RelationshipSpec) AllMetadata() []sdf.Field { return r.Infos }
func (r *RelationshipSpec) AssetInfo() []sdf.Field   { return r.Asset }
func (r *RelationshipSpec) CustomData() []sdf.Field  { return r.Custom }
