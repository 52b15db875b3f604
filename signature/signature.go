// Package signature discovers Python call signatures for native methods and
// reconciles them.
//
// Two independent producers feed the merger: FromCode reads PyArg_Parse*
// call sites in the C++ body, FromDoc reads `name(params) -> Ret` lines in
// the human documentation. Merge combines both into an ordered set of
// overloads deduplicated by their canonical rendering.
package signature

import (
	"strings"

	"github.com/teranos/stubgen/pytype"
)

// Kind is the Python parameter kind.
type Kind int

const (
	PositionalOnly Kind = iota
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

// Parameter is one parameter of a candidate signature.
type Parameter struct {
	Name string
	// Default is the Python source of the default value; "" means required.
	Default string
	// Type is the annotation; nil leaves the parameter unannotated.
	Type pytype.Type
	Kind Kind
	// First marks the implicit self/cls parameter.
	First bool
	// WeakName marks a name guessed from a C variable, which documentation
	// may replace.
	WeakName bool
}

// String renders the parameter the way Python's inspect module does.
func (p Parameter) String() string {
	var sb strings.Builder
	switch p.Kind {
	case VarPositional:
		sb.WriteString("*")
	case VarKeyword:
		sb.WriteString("**")
	}
	sb.WriteString(p.Name)

	if p.Type != nil {
		sb.WriteString(": ")
		sb.WriteString(p.Type.String())
	}
	if p.Default != "" {
		if p.Type != nil {
			sb.WriteString(" = ")
		} else {
			sb.WriteString("=")
		}
		sb.WriteString(p.Default)
	}
	return sb.String()
}

// Signature is one candidate call form of a method.
type Signature struct {
	Params []Parameter
	// Return is nil when nothing is known about the result.
	Return     pytype.Type
	Exceptions []string
}

// String is the canonical rendering; two candidates are equal when their
// renderings are.
//
//	(self, x: int = 0, /, *, flag=False) -> bool
func (s Signature) String() string {
	lastPositionalOnly := -1
	for i, p := range s.Params {
		if p.Kind == PositionalOnly && !p.First {
			lastPositionalOnly = i
		}
	}

	parts := make([]string, 0, len(s.Params)+2)
	starred := false
	for i, p := range s.Params {
		if p.Kind == VarPositional {
			starred = true
		}
		if p.Kind == KeywordOnly && !starred {
			parts = append(parts, "*")
			starred = true
		}
		parts = append(parts, p.String())
		if i == lastPositionalOnly {
			parts = append(parts, "/")
		}
	}

	out := "(" + strings.Join(parts, ", ") + ")"
	if s.Return != nil {
		out += " -> " + s.Return.String()
	}
	return out
}

// Names returns the parameter names without the first (self/cls) parameter.
func (s Signature) Names() []string {
	var out []string
	for _, p := range s.Params {
		if !p.First {
			out = append(out, p.Name)
		}
	}
	return out
}

// Imports returns the modules referenced by parameter and return annotations.
func (s Signature) Imports() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(t pytype.Type) {
		if t == nil {
			return
		}
		for _, m := range pytype.Imports(t) {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	for _, p := range s.Params {
		add(p.Type)
	}
	add(s.Return)
	return out
}

// FirstParam returns the implicit first parameter for a method: nil for static
// methods, cls for class methods and self otherwise.
func FirstParam(static, classMethod bool) *Parameter {
	switch {
	case static:
		return nil
	case classMethod:
		return &Parameter{Name: "cls", Kind: PositionalOrKeyword, First: true}
	default:
		return &Parameter{Name: "self", Kind: PositionalOrKeyword, First: true}
	}
}

// withFirst returns s with first prepended (when non-nil and not already there).
func (s Signature) withFirst(first *Parameter) Signature {
	if first == nil || (len(s.Params) > 0 && s.Params[0].First) {
		return s
	}
	params := make([]Parameter, 0, len(s.Params)+1)
	params = append(params, *first)
	params = append(params, s.Params...)
	s.Params = params
	return s
}

// Unique drops candidates whose rendering was already seen, keeping order.
func Unique(sigs []Signature) []Signature {
	seen := make(map[string]struct{}, len(sigs))
	out := make([]Signature, 0, len(sigs))
	for _, s := range sigs {
		key := s.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
