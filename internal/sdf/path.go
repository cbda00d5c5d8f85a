package sdf

import "strings"

// Path identifies a prim or property within a stage or layer. Prim
// paths are absolute ("/World/Light"), property paths append the
// property name after a dot ("/World/Light.intensity"). A leading dot
// with no prim part (".intensity") is the relative property form used
// for lookups on prim specs.
type Path string

// RootPath is the pseudo-root prim path.
const RootPath Path = "/"

func (p Path) String() string { return string(p) }

// IsRoot reports whether p is the pseudo-root path.
func (p Path) IsRoot() bool { return p == RootPath }

// IsPropertyPath reports whether p addresses a property rather than a
// prim.
func (p Path) IsPropertyPath() bool {
	return strings.Contains(lastComponent(string(p)), ".") || strings.HasPrefix(string(p), ".")
}

// Name returns the final component of the path: the prim name, or the
// property name for property paths.
func (p Path) Name() string {
	last := lastComponent(string(p))
	if i := strings.LastIndex(last, "."); i >= 0 {
		return last[i+1:]
	}
	return last
}

// Parent returns the enclosing path: the owning prim for a property
// path, the parent prim otherwise. The pseudo-root is its own parent.
func (p Path) Parent() Path {
	s := string(p)
	last := lastComponent(s)
	if i := strings.LastIndex(last, "."); i > 0 {
		return Path(s[:len(s)-len(last)+i])
	}
	if p.IsRoot() || s == "" {
		return RootPath
	}
	if i := strings.LastIndex(s, "/"); i > 0 {
		return Path(s[:i])
	}
	return RootPath
}

// AppendChild returns the path of a child prim.
func (p Path) AppendChild(name string) Path {
	if p.IsRoot() {
		return Path("/" + name)
	}
	return Path(string(p) + "/" + name)
}

// AppendProperty returns the path of a property on this prim.
func (p Path) AppendProperty(name string) Path {
	return Path(string(p) + "." + name)
}

// MakeRelativeProperty returns the relative property form required by
// PrimSpec.PropertyAtPath. Property lookups on specs need the leading
// path-separator marker; a bare name will not resolve.
func MakeRelativeProperty(name string) Path {
	return Path("." + name)
}

func lastComponent(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
