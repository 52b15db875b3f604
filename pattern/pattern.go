// Package pattern classifies C++ expression fragments into syntactic shapes and
// dispatches them through ordered rule tables.
//
// A Predicate is a pure function over the fragment text. It reports a tagged
// Match describing which shape matched and which literal triggered it. A Table
// pairs predicates with handlers; Dispatch runs the first rule whose predicate
// matches. Rule order inside a table is significant and is the only tie-breaker.
package pattern

import (
	"strings"

	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/scan"
)

// Shape identifies the kind of structural match.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeExact
	ShapePrefix
	ShapeSuffix
	ShapeContains
	ShapeWrapped
	ShapeIdentifier
	ShapeCustom
)

func (s Shape) String() string {
	switch s {
	case ShapeExact:
		return "exact"
	case ShapePrefix:
		return "prefix"
	case ShapeSuffix:
		return "suffix"
	case ShapeContains:
		return "contains"
	case ShapeWrapped:
		return "wrapped"
	case ShapeIdentifier:
		return "identifier"
	case ShapeCustom:
		return "custom"
	default:
		return "none"
	}
}

// Match is the tagged result of a successful predicate.
type Match struct {
	Shape Shape
	// Text is the whole fragment the predicate was applied to.
	Text string
	// Value is the literal that matched (the prefix, suffix, needle, ...).
	Value string
	// Rest is the fragment with the matched prefix/suffix/wrapper removed.
	// For Exact and Contains it equals Text.
	Rest string
}

// Predicate classifies a fragment.
type Predicate func(fragment string) (Match, bool)

// Exact matches a fragment equal to one of values.
func Exact(values ...string) Predicate {
	return func(s string) (Match, bool) {
		for _, v := range values {
			if s == v {
				return Match{Shape: ShapeExact, Text: s, Value: v, Rest: s}, true
			}
		}
		return Match{}, false
	}
}

// Prefix matches a fragment starting with one of values.
func Prefix(values ...string) Predicate {
	return func(s string) (Match, bool) {
		for _, v := range values {
			if strings.HasPrefix(s, v) {
				return Match{Shape: ShapePrefix, Text: s, Value: v, Rest: s[len(v):]}, true
			}
		}
		return Match{}, false
	}
}

// Suffix matches a fragment ending with one of values.
func Suffix(values ...string) Predicate {
	return func(s string) (Match, bool) {
		for _, v := range values {
			if strings.HasSuffix(s, v) {
				return Match{Shape: ShapeSuffix, Text: s, Value: v, Rest: s[:len(s)-len(v)]}, true
			}
		}
		return Match{}, false
	}
}

// Contains matches a fragment containing one of values.
func Contains(values ...string) Predicate {
	return func(s string) (Match, bool) {
		for _, v := range values {
			if strings.Contains(s, v) {
				return Match{Shape: ShapeContains, Text: s, Value: v, Rest: s}, true
			}
		}
		return Match{}, false
	}
}

// Wrapped matches a fragment fully enclosed by open and close, where the
// opening bracket is balanced by the final character.
func Wrapped(open, close string) Predicate {
	return func(s string) (Match, bool) {
		if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, close) || len(s) < len(open)+len(close) {
			return Match{}, false
		}
		if len(open) == 1 && !scan.IsWrapped(s) {
			return Match{}, false
		}
		return Match{Shape: ShapeWrapped, Text: s, Value: open + close, Rest: s[len(open) : len(s)-len(close)]}, true
	}
}

// Identifier matches a plain C identifier.
func Identifier() Predicate {
	return func(s string) (Match, bool) {
		if util.IsIdentifier(s) {
			return Match{Shape: ShapeIdentifier, Text: s, Value: s, Rest: s}, true
		}
		return Match{}, false
	}
}

// When adapts a boolean test into a predicate.
func When(test func(string) bool) Predicate {
	return func(s string) (Match, bool) {
		if test(s) {
			return Match{Shape: ShapeCustom, Text: s, Value: s, Rest: s}, true
		}
		return Match{}, false
	}
}

// All matches when every predicate matches; the first predicate's Match is kept.
func All(preds ...Predicate) Predicate {
	return func(s string) (Match, bool) {
		var first Match
		for i, p := range preds {
			m, ok := p(s)
			if !ok {
				return Match{}, false
			}
			if i == 0 {
				first = m
			}
		}
		return first, len(preds) > 0
	}
}

// Rule pairs a predicate with the handler run when it matches.
type Rule[T any] struct {
	Name string
	When Predicate
	Then func(Match) (T, error)
}

// Table is an ordered list of rules evaluated first-match-wins.
type Table[T any] []Rule[T]

// Dispatch runs the first rule whose predicate matches fragment.
// matched is false when no rule applies.
func (t Table[T]) Dispatch(fragment string) (result T, matched bool, err error) {
	for _, rule := range t {
		m, ok := rule.When(fragment)
		if !ok {
			continue
		}
		result, err = rule.Then(m)
		return result, true, err
	}
	return result, false, nil
}

// Fixed returns a handler that ignores the match and yields v.
func Fixed[T any](v T) func(Match) (T, error) {
	return func(Match) (T, error) {
		return v, nil
	}
}
