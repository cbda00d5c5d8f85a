package sdf

import (
	"testing"

	"github.com/zclconf/go-cty/cty"
)

func TestTypeNameIsArray(t *testing.T) {
	if !TypeNameIsArray("float[]") {
		t.Error("float[] not detected as array")
	}
	if TypeNameIsArray("float") {
		t.Error("float detected as array")
	}
	if TypeNameIsArray("") {
		t.Error("empty type name detected as array")
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name string
		v    cty.Value
		want string
	}{
		{"nil", cty.NilVal, ""},
		{"null", cty.NullVal(cty.String), ""},
		{"string", cty.StringVal("lux"), "lux"},
		{"bool", cty.True, "true"},
		{"int", cty.NumberIntVal(42), "42"},
		{"float", cty.NumberFloatVal(0.5), "0.5"},
		{"list", cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}), "[1, 2]"},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(3)}), "[a, 3]"},
	}
	for _, c := range cases {
		if got := FormatValue(c.v); got != c.want {
			t.Errorf("%s: FormatValue = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFormatValueObjectIsKeySorted(t *testing.T) {
	v := cty.ObjectVal(map[string]cty.Value{
		"b": cty.NumberIntVal(2),
		"a": cty.NumberIntVal(1),
	})
	if got := FormatValue(v); got != "{a: 1, b: 2}" {
		t.Errorf("FormatValue = %q", got)
	}
}

func TestValueElements(t *testing.T) {
	arr := cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2), cty.NumberIntVal(3)})
	if got := ValueElements(arr); len(got) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(got))
	}

	scalar := ValueElements(cty.NumberIntVal(5))
	if len(scalar) != 1 {
		t.Fatalf("expected scalar wrapped as single element, got %d", len(scalar))
	}
	if FormatValue(scalar[0]) != "5" {
		t.Errorf("scalar element = %q", FormatValue(scalar[0]))
	}

	if got := ValueElements(cty.NilVal); got != nil {
		t.Errorf("nil value should yield no elements, got %v", got)
	}
}

func TestValueTypeName(t *testing.T) {
	if got := ValueTypeName(cty.StringVal("x")); got != "string" {
		t.Errorf("ValueTypeName = %q", got)
	}
	if got := ValueTypeName(cty.NilVal); got != "" {
		t.Errorf("ValueTypeName(nil) = %q", got)
	}
}
