package inspect

import "github.com/JaimeFlorian27/usdinspect/internal/sdf"

// ObjectMetadata enumerates the metadata of a composed object: general
// metadata, then asset info, then custom data. Source order is part of
// the contract; the metadata table renders rows in exactly this order.
func ObjectMetadata(obj sdf.Object) []sdf.Field {
	if obj == nil {
		return nil
	}
	var out []sdf.Field
	out = append(out, obj.AllMetadata()...)
	out = append(out, obj.AssetInfo()...)
	out = append(out, obj.CustomData()...)
	return out
}

// SpecMetadata enumerates the metadata of a layer-level spec: its
// authored info keys, then asset info and custom data when the spec
// carries them (prim and property specs do, other specs do not).
func SpecMetadata(spec sdf.Spec) []sdf.Field {
	if spec == nil {
		return nil
	}
	var out []sdf.Field
	for _, key := range spec.InfoKeys() {
		if v, ok := spec.Info(key); ok {
			out = append(out, sdf.Field{Key: key, Value: v})
		}
	}
	if obj, ok := spec.(sdf.Object); ok {
		out = append(out, obj.AssetInfo()...)
		out = append(out, obj.CustomData()...)
	}
	return out
}
