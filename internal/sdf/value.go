package sdf

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// TypeNameIsArray reports whether a declared value type name denotes an
// array type ("float[]", "string[]", ...).
func TypeNameIsArray(typeName string) bool {
	return strings.HasSuffix(typeName, "[]")
}

// FormatValue renders a value for display. Collections are bracketed,
// numbers printed without exponent notation, null as an empty string.
// The exact text is a presentation detail, not a wire format.
func FormatValue(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return ""
	}
	if !v.IsKnown() {
		return "<unknown>"
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, FormatValue(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ty.IsMapType() || ty.IsObjectType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			parts = append(parts, fmt.Sprintf("%s: %s", FormatValue(kv), FormatValue(ev)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.GoString()
}

// ValueTypeName returns a short display name for a value's type, used
// by the metadata table's Type column.
func ValueTypeName(v cty.Value) string {
	if v == cty.NilVal {
		return ""
	}
	return v.Type().FriendlyName()
}

// ValueElements splits an array value into its ordered elements. Scalar
// values come back as a single-element slice so callers can treat both
// shapes uniformly.
func ValueElements(v cty.Value) []cty.Value {
	if v == cty.NilVal || v.IsNull() {
		return nil
	}
	if v.CanIterateElements() && !v.Type().IsMapType() && !v.Type().IsObjectType() {
		return v.AsValueSlice()
	}
	return []cty.Value{v}
}
