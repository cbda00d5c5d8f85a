// Package sdf defines the scene-description surface the inspector
// consumes: stages, prims, layers, specs and composition arcs. The
// inspector core never mutates scene data; everything here is a
// read-only handle into a stage owned by the host application.
package sdf

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Field is one metadata entry. Enumeration order is significant, which
// is why metadata is surfaced as ordered slices rather than maps.
type Field struct {
	Key   string
	Value cty.Value
}

// TimeSample is a value authored for a property at a specific time code.
type TimeSample struct {
	TimeCode float64
	Value    cty.Value
}

// Object is anything carrying composed metadata: prims, properties and
// their specs.
type Object interface {
	// AllMetadata returns the general metadata fields, key-ordered.
	AllMetadata() []Field
	// AssetInfo returns the asset-info fields, key-ordered.
	AssetInfo() []Field
	// CustomData returns the custom-data fields, key-ordered.
	CustomData() []Field
}

// Spec is a layer-level opinion object with authored info fields.
type Spec interface {
	InfoKeys() []string
	Info(key string) (cty.Value, bool)
}

// Stage is the root handle to a composed scene.
type Stage interface {
	RootLayer() Layer
	PseudoRoot() Prim
	// Traverse returns every composed prim depth-first, parents before
	// children, excluding the pseudo-root.
	Traverse() []Prim
	PrimAtPath(path Path) (Prim, bool)
	// FindOrOpenLayer resolves a layer identifier, loading the layer if
	// it is not already part of the stage. Returns *NotFoundError when
	// the identifier does not resolve.
	FindOrOpenLayer(identifier string) (Layer, error)
	StartTimeCode() float64
	EndTimeCode() float64
}

// Prim is a node in the composed hierarchy.
type Prim interface {
	Object
	Name() string
	Path() Path
	Parent() (Prim, bool)
	Children() []Prim
	Properties() []Property
	Property(name string) (Property, bool)
	// PrimStack returns the contributing specs, strongest first. The
	// pseudo-root has an empty stack.
	PrimStack() []PrimSpec
	// CompositionArcs returns the arcs that introduced layers into this
	// prim's stack, strongest first. Sublayers contribute opinions
	// without an arc, so this list is a subset of the stack in count.
	CompositionArcs() []CompositionArc
}

// Property is an attribute or relationship on a composed prim.
type Property interface {
	Object
	Name() string
	Path() Path
	TypeName() string
}

// Attribute is a typed, possibly time-sampled property.
type Attribute interface {
	Property
	// Get resolves the attribute value at the given time code. The
	// second return is false when no opinion exists.
	Get(timeCode float64) (cty.Value, bool)
	TypeIsArray() bool
}

// Relationship is a property whose value is an ordered target list.
type Relationship interface {
	Property
	Targets() []Path
}

// Layer is an individually addressable sheet of authored opinions.
type Layer interface {
	Identifier() string
	DisplayName() string
	PrimSpec(path Path) (PrimSpec, bool)
	// TimeSamples returns all samples authored in this layer for the
	// given property path, ordered by time code.
	TimeSamples(path Path) []TimeSample
}

// PrimSpec is one layer's opinion about one prim.
type PrimSpec interface {
	Spec
	Object
	Name() string
	Path() Path
	Layer() Layer
	Properties() []PropertySpec
	// PropertyAtPath looks up a property spec by relative path. The
	// path must be in relative form (".name"); an absolute-style name
	// will not resolve.
	PropertyAtPath(path Path) (PropertySpec, bool)
}

// PropertySpec is one layer's opinion about one property.
type PropertySpec interface {
	Spec
	Object
	Name() string
	Path() Path
	Layer() Layer
	TypeName() string
}

// AttributeSpec is an authored attribute opinion.
type AttributeSpec interface {
	PropertySpec
	Default() (cty.Value, bool)
	TypeIsArray() bool
}

// RelationshipSpec is an authored relationship opinion.
type RelationshipSpec interface {
	PropertySpec
	ExplicitTargets() []Path
}

// ArcType classifies a composition arc.
type ArcType int

const (
	ArcRoot ArcType = iota
	ArcReference
	ArcPayload
	ArcInherit
	ArcSpecialize
	ArcVariant
)

// DisplayName returns the human-readable arc classification.
func (t ArcType) DisplayName() string {
	switch t {
	case ArcRoot:
		return "root"
	case ArcReference:
		return "reference"
	case ArcPayload:
		return "payload"
	case ArcInherit:
		return "inherit"
	case ArcSpecialize:
		return "specialize"
	case ArcVariant:
		return "variant"
	}
	return "unknown"
}

// CompositionArc is a typed edge that introduces one or more layers
// into a prim's stack.
type CompositionArc interface {
	ArcType() ArcType
	TargetLayer() Layer
}

// NotFoundError reports a stage, layer, prim or property that failed
// to resolve.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// IsNotFound reports whether err is a resolution failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
