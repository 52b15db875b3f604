// Package pytype models the Python-visible type inferred for a C++ expression.
//
// Type is a closed sum: Any, Literal, *Union and Parametrized. Unions are
// flattened and deduplicated at construction, so a Union never contains
// another Union.
package pytype

import (
	"strings"
)

// Type is a resolved Python type.
type Type interface {
	// String renders the type as it appears in a stub file.
	String() string
	isType()
}

type anyType struct{}

func (anyType) String() string { return "typing.Any" }
func (anyType) isType()        {}

// Any is the unknown/erased type.
var Any Type = anyType{}

// Literal is a single named type such as "int" or "FreeCAD.Vector".
type Literal string

func (l Literal) String() string { return string(l) }
func (Literal) isType()          {}

// Common literals.
const (
	None   Literal = "None"
	Bool   Literal = "bool"
	Int    Literal = "int"
	Float  Literal = "float"
	Str    Literal = "str"
	Bytes  Literal = "bytes"
	Object Literal = "object"
	List   Literal = "list"
	Dict   Literal = "dict"
	Tuple  Literal = "tuple"
)

// Parametrized is a generic container with element types, e.g. tuple[int, str].
type Parametrized struct {
	Container string
	Elems     []Type
}

func (p Parametrized) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return p.Container + "[" + strings.Join(parts, ", ") + "]"
}
func (Parametrized) isType() {}

// Param builds a Parametrized type.
func Param(container string, elems ...Type) Parametrized {
	return Parametrized{Container: container, Elems: elems}
}

// Union is an ordered-unique set of at least two member types.
type Union struct {
	members []Type
}

func (u *Union) String() string {
	parts := make([]string, len(u.members))
	for i, m := range u.members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (*Union) isType() {}

// Members returns the union members in insertion order.
func (u *Union) Members() []Type {
	out := make([]Type, len(u.members))
	copy(out, u.members)
	return out
}

// NewUnion builds the union of types.
//
// Nested unions are flattened and duplicates (by rendering) collapse to the
// first occurrence. Any is dropped when a concrete member exists. The result is
// Any for no members and the member itself for exactly one.
func NewUnion(types ...Type) Type {
	seen := make(map[string]struct{})
	var members []Type

	var add func(t Type)
	add = func(t Type) {
		switch v := t.(type) {
		case nil:
			return
		case *Union:
			for _, m := range v.members {
				add(m)
			}
			return
		case anyType:
			return
		}
		key := t.String()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		members = append(members, t)
	}
	for _, t := range types {
		add(t)
	}

	switch len(members) {
	case 0:
		return Any
	case 1:
		return members[0]
	default:
		return &Union{members: members}
	}
}

// IsAny reports whether t is the unknown type (or nil).
func IsAny(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(anyType)
	return ok
}

// Is reports whether t renders exactly as name.
func Is(t Type, name string) bool {
	return t != nil && t.String() == name
}

// Members returns the members of a union, or t itself otherwise.
func Members(t Type) []Type {
	if u, ok := t.(*Union); ok {
		return u.Members()
	}
	if t == nil {
		return nil
	}
	return []Type{t}
}

// Imports returns the modules that must be imported for t to be valid in a
// stub: the dotted prefix of every qualified name it mentions, in order.
//
//	Imports(tuple[FreeCAD.Vector, qtpy.QtWidgets.QWidget]) == ["FreeCAD", "qtpy.QtWidgets"]
func Imports(t Type) []string {
	var out []string
	seen := make(map[string]struct{})
	var walk func(Type)
	walk = func(t Type) {
		switch v := t.(type) {
		case anyType:
			addModule(&out, seen, "typing.Any")
		case Literal:
			addModule(&out, seen, string(v))
		case *Union:
			for _, m := range v.members {
				walk(m)
			}
		case Parametrized:
			addModule(&out, seen, v.Container)
			for _, e := range v.Elems {
				walk(e)
			}
		}
	}
	walk(t)
	return out
}

func addModule(out *[]string, seen map[string]struct{}, name string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || strings.HasPrefix(name, ".") {
		return
	}
	mod := name[:idx]
	if _, ok := seen[mod]; ok {
		return
	}
	seen[mod] = struct{}{}
	*out = append(*out, mod)
}
