// Package hclstage is the HCL-backed scene engine. A stage is rooted
// at a layer file; layers pull in sublayers (stage-targeting, no arc)
// and prims pull in other layers through reference, payload, inherit
// and specialize arcs. Composition walks the layer stack strongest
// first, so prim stacks and arc lists come out co-ordered: each arc is
// recorded on its strongest contributing spec, with that spec's layer
// as the arc's target.
package hclstage

import (
	"fmt"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// Stage is a composed scene rooted at a layer file.
type Stage struct {
	root   *Layer
	ld     *loader
	pseudo *Prim
	prims  map[sdf.Path]*Prim
	order  []sdf.Path
	start  float64
	end    float64
}

// Open loads the root layer at path and composes the stage.
func Open(path string) (*Stage, error) {
	ld := newLoader()
	root, err := ld.open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	st := &Stage{
		root:  root,
		ld:    ld,
		prims: map[sdf.Path]*Prim{},
	}
	if err := st.compose(); err != nil {
		return nil, fmt.Errorf("compose stage %s: %w", path, err)
	}
	return st, nil
}

func (st *Stage) RootLayer() sdf.Layer { return st.root }
func (st *Stage) PseudoRoot() sdf.Prim { return st.pseudo }

func (st *Stage) Traverse() []sdf.Prim {
	out := make([]sdf.Prim, 0, len(st.order))
	for _, p := range st.order {
		out = append(out, st.prims[p])
	}
	return out
}

func (st *Stage) PrimAtPath(path sdf.Path) (sdf.Prim, bool) {
	p, ok := st.prims[path]
	if !ok {
		return nil, false
	}
	return p, true
}

func (st *Stage) FindOrOpenLayer(identifier string) (sdf.Layer, error) {
	return st.ld.open(identifier)
}

func (st *Stage) StartTimeCode() float64 { return st.start }
func (st *Stage) EndTimeCode() float64   { return st.end }

// contrib pairs a contributing spec with the arc that introduced it.
// A nil arc means the layer reached the prim by sublayering.
type contrib struct {
	spec *PrimSpec
	arc  *Arc
}

// Arc is a composition arc recorded during composition.
type Arc struct {
	typ    sdf.ArcType
	target *Layer
}

func (a *Arc) ArcType() sdf.ArcType   { return a.typ }
func (a *Arc) TargetLayer() sdf.Layer { return a.target }

func (st *Stage) compose() error {
	stack, err := st.ld.stack(st.root)
	if err != nil {
		return err
	}

	// Strongest layer with a time-code opinion wins.
	for _, l := range stack {
		if l.start != nil {
			st.start = *l.start
			break
		}
	}
	for _, l := range stack {
		if l.end != nil {
			st.end = *l.end
			break
		}
	}

	st.pseudo = &Prim{stage: st, path: sdf.RootPath, pseudoRoot: true}
	st.prims[sdf.RootPath] = st.pseudo

	// The pseudo-root composes from each layer's implicit root spec;
	// only the root layer's contribution counts as direct.
	var contribs []contrib
	for i, l := range stack {
		var arc *Arc
		if i == 0 {
			arc = &Arc{typ: sdf.ArcRoot, target: l}
		}
		contribs = append(contribs, contrib{spec: l.pseudo, arc: arc})
	}
	return st.composeChildren(st.pseudo, contribs)
}

// composeChildren builds the composed prims under parent from its
// contribution list, depth-first.
func (st *Stage) composeChildren(parent *Prim, parentContribs []contrib) error {
	var names []string
	seen := map[string]bool{}
	for _, pc := range parentContribs {
		for _, child := range pc.spec.children {
			name := child.path.Name()
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	for _, name := range names {
		path := parent.path.AppendChild(name)

		// A child spec reaches the prim through the same arc as its
		// parent spec: opinions inside a referenced layer stay
		// attributed to the reference.
		var direct []contrib
		for _, pc := range parentContribs {
			if child := pc.spec.childByName(name); child != nil {
				direct = append(direct, contrib{spec: child, arc: pc.arc})
			}
		}

		contribs, err := st.expand(direct)
		if err != nil {
			return fmt.Errorf("prim %s: %w", path, err)
		}

		prim := &Prim{stage: st, path: path, parent: parent, contribs: contribs}
		st.prims[path] = prim
		st.order = append(st.order, path)
		parent.children = append(parent.children, prim)

		if err := st.composeChildren(prim, contribs); err != nil {
			return err
		}
	}
	return nil
}

// expand appends the contributions pulled in by arcs authored on the
// direct specs, recursively, preserving strength order. Each arc is
// recorded once, on its strongest contributing spec.
func (st *Stage) expand(direct []contrib) ([]contrib, error) {
	var out []contrib
	visited := map[string]bool{}
	var add func(c contrib) error
	add = func(c contrib) error {
		key := c.spec.layer.identifier + "|" + c.spec.path.String()
		if visited[key] {
			return nil
		}
		visited[key] = true
		out = append(out, c)

		for _, target := range c.spec.inherits {
			if err := addStackContribs(st, add, st.root, target, sdf.ArcInherit); err != nil {
				return err
			}
		}
		for _, ref := range c.spec.references {
			if err := addArcContribs(st, add, c.spec, ref, sdf.ArcReference); err != nil {
				return err
			}
		}
		for _, ref := range c.spec.payloads {
			if err := addArcContribs(st, add, c.spec, ref, sdf.ArcPayload); err != nil {
				return err
			}
		}
		for _, target := range c.spec.specializes {
			if err := addStackContribs(st, add, st.root, target, sdf.ArcSpecialize); err != nil {
				return err
			}
		}
		return nil
	}
	for _, c := range direct {
		if err := add(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// addArcContribs expands a reference or payload: the target layer's
// stack contributes its specs at the target prim path, strongest
// first, with the arc recorded on the first contribution.
func addArcContribs(st *Stage, add func(contrib) error, from *PrimSpec, ref arcTarget, typ sdf.ArcType) error {
	layer, err := st.ld.open(ref.identifier)
	if err != nil {
		return err
	}
	target := ref.primPath
	if target == "" {
		if layer.defaultPrim == "" {
			return fmt.Errorf("%s arc from %s: layer %s has no default prim", typ.DisplayName(), from.path, layer.identifier)
		}
		target = sdf.RootPath.AppendChild(layer.defaultPrim)
	}
	stack, err := st.ld.stack(layer)
	if err != nil {
		return err
	}
	first := true
	for _, l := range stack {
		spec := l.specAt(target)
		if spec == nil {
			continue
		}
		var arc *Arc
		if first {
			arc = &Arc{typ: typ, target: spec.layer}
			first = false
		}
		if err := add(contrib{spec: spec, arc: arc}); err != nil {
			return err
		}
	}
	return nil
}

// addStackContribs expands an inherit or specialize: the stage's own
// layer stack contributes its specs at the class path.
func addStackContribs(st *Stage, add func(contrib) error, root *Layer, target sdf.Path, typ sdf.ArcType) error {
	stack, err := st.ld.stack(root)
	if err != nil {
		return err
	}
	first := true
	for _, l := range stack {
		spec := l.specAt(target)
		if spec == nil {
			continue
		}
		var arc *Arc
		if first {
			arc = &Arc{typ: typ, target: spec.layer}
			first = false
		}
		if err := add(contrib{spec: spec, arc: arc}); err != nil {
			return err
		}
	}
	return nil
}

// Prim is a composed prim.
type Prim struct {
	stage      *Stage
	path       sdf.Path
	parent     *Prim
	children   []*Prim
	contribs   []contrib
	pseudoRoot bool

	props []sdf.Property // built lazily
}

func (p *Prim) Name() string   { return p.path.Name() }
func (p *Prim) Path() sdf.Path { return p.path }

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

// PrimStack returns the contributing specs strongest first. The
// pseudo-root reports an empty stack even though its layer-level root
// specs drive child composition.
func (p *Prim) PrimStack() []sdf.PrimSpec {
	if p.pseudoRoot {
		return nil
	}
	out := make([]sdf.PrimSpec, len(p.contribs))
	for i, c := range p.contribs {
		out[i] = c.spec
	}
	return out
}

func (p *Prim) CompositionArcs() []sdf.CompositionArc {
	if p.pseudoRoot {
		return nil
	}
	var out []sdf.CompositionArc
	for _, c := range p.contribs {
		if c.arc != nil {
			out = append(out, c.arc)
		}
	}
	return out
}

func (p *Prim) AllMetadata() []sdf.Field {
	lists := make([][]sdf.Field, 0, len(p.contribs)+1)
	if tn := p.typeName(); tn != "" {
		lists = append(lists, []sdf.Field{{Key: "typeName", Value: cty.StringVal(tn)}})
	}
	for _, c := range p.contribs {
		lists = append(lists, c.spec.metadata)
	}
	return mergeFields(lists...)
}

func (p *Prim) AssetInfo() []sdf.Field {
	lists := make([][]sdf.Field, 0, len(p.contribs))
	for _, c := range p.contribs {
		lists = append(lists, c.spec.assetInfo)
	}
	return mergeFields(lists...)
}

func (p *Prim) CustomData() []sdf.Field {
	lists := make([][]sdf.Field, 0, len(p.contribs))
	for _, c := range p.contribs {
		lists = append(lists, c.spec.customData)
	}
	return mergeFields(lists...)
}

func (p *Prim) typeName() string {
	for _, c := range p.contribs {
		if c.spec.typeName != "" {
			return c.spec.typeName
		}
	}
	return ""
}

// Properties returns the composed properties: the union of authored
// property names across the stack, strongest opinion first deciding
// the kind and type.
func (p *Prim) Properties() []sdf.Property {
	if p.props != nil {
		return p.props
	}
	var names []string
	seen := map[string]bool{}
	for _, c := range p.contribs {
		for _, ps := range c.spec.props {
			if !seen[ps.Name()] {
				seen[ps.Name()] = true
				names = append(names, ps.Name())
			}
		}
	}
	props := make([]sdf.Property, 0, len(names))
	for _, name := range names {
		props = append(props, p.composeProperty(name))
	}
	p.props = props
	return props
}

func (p *Prim) Property(name string) (sdf.Property, bool) {
	for _, prop := range p.Properties() {
		if prop.Name() == name {
			return prop, true
		}
	}
	return nil, false
}

func (p *Prim) composeProperty(name string) sdf.Property {
	var opinions []sdf.PropertySpec
	for _, c := range p.contribs {
		for _, ps := range c.spec.props {
			if ps.Name() == name {
				opinions = append(opinions, ps)
			}
		}
	}
	if _, ok := opinions[0].(*RelationshipSpec); ok {
		return &Relationship{prim: p, name: name, opinions: opinions}
	}
	return &Attribute{prim: p, name: name, opinions: opinions}
}

// Attribute is a composed attribute over the authored opinions for one
// name, strongest first.
type Attribute struct {
	prim     *Prim
	name     string
	opinions []sdf.PropertySpec
}

func (a *Attribute) Name() string   { return a.name }
func (a *Attribute) Path() sdf.Path { return a.prim.path.AppendProperty(a.name) }

func (a *Attribute) TypeName() string {
	for _, op := range a.opinions {
		if as, ok := op.(*AttributeSpec); ok {
			return as.typeName
		}
	}
	return "token"
}

func (a *Attribute) TypeIsArray() bool {
	return sdf.TypeNameIsArray(a.TypeName())
}

// Get resolves the attribute at a time code: the strongest opinion
// with samples wins with held interpolation, else the strongest
// default.
func (a *Attribute) Get(timeCode float64) (cty.Value, bool) {
	for _, op := range a.opinions {
		as, ok := op.(*AttributeSpec)
		if !ok {
			continue
		}
		samples := as.owner.layer.samples[as.Path()]
		if len(samples) > 0 {
			v := samples[0].Value
			for _, s := range samples {
				if s.TimeCode > timeCode {
					break
				}
				v = s.Value
			}
			return v, true
		}
		if as.hasDef {
			return as.def, true
		}
	}
	return cty.NilVal, false
}

func (a *Attribute) AllMetadata() []sdf.Field { return mergeSpecFields(a.opinions, metaOf) }
func (a *Attribute) AssetInfo() []sdf.Field   { return mergeSpecFields(a.opinions, assetOf) }
func (a *Attribute) CustomData() []sdf.Field  { return mergeSpecFields(a.opinions, customOf) }

// Relationship is a composed relationship.
type Relationship struct {
	prim     *Prim
	name     string
	opinions []sdf.PropertySpec
}

func (r *Relationship) Name() string     { return r.name }
func (r *Relationship) Path() sdf.Path   { return r.prim.path.AppendProperty(r.name) }
func (r *Relationship) TypeName() string { return "" }

// Targets returns the strongest non-empty explicit target list.
func (r *Relationship) Targets() []sdf.Path {
	for _, op := range r.opinions {
		if rs, ok := op.(*RelationshipSpec); ok && len(rs.targets) > 0 {
			return rs.targets
		}
	}
	return nil
}

func (r *Relationship) AllMetadata() []sdf.Field { return mergeSpecFields(r.opinions, metaOf) }
func (r *Relationship) AssetInfo() []sdf.Field   { return mergeSpecFields(r.opinions, assetOf) }
func (r *Relationship) CustomData() []sdf.Field  { return mergeSpecFields(r.opinions, customOf) }

func metaOf(ps sdf.PropertySpec) []sdf.Field   { return ps.AllMetadata() }
func assetOf(ps sdf.PropertySpec) []sdf.Field  { return ps.AssetInfo() }
func customOf(ps sdf.PropertySpec) []sdf.Field { return ps.CustomData() }

func mergeSpecFields(opinions []sdf.PropertySpec, pick func(sdf.PropertySpec) []sdf.Field) []sdf.Field {
	lists := make([][]sdf.Field, 0, len(opinions))
	for _, op := range opinions {
		lists = append(lists, pick(op))
	}
	return mergeFields(lists...)
}

// mergeFields combines opinion lists strongest first: the first
// opinion per key wins, new keys append in appearance order.
func mergeFields(lists ...[]sdf.Field) []sdf.Field {
	var out []sdf.Field
	seen := map[string]bool{}
	for _, list := range lists {
		for _, f := range list {
			if seen[f.Key] {
				continue
			}
			seen[f.Key] = true
			out = append(out, f)
		}
	}
	return out
}
