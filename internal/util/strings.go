package util

import (
	"strings"
	"sync"
	"unicode"
)

// pythonKeywords are reserved words in Python that need special handling
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsIdentifier reports whether s is a valid Python/C identifier (ASCII letters,
// digits and underscore, not starting with a digit).
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// IsKeyword reports whether s is a reserved Python keyword.
func IsKeyword(s string) bool {
	return pythonKeywords[s]
}

// ToPythonIdent converts an identifier to a valid Python identifier.
// Adds underscore suffix for Python keywords.
func ToPythonIdent(s string) string {
	if pythonKeywords[s] {
		return s + "_"
	}
	return s
}

// IsIdentifierChain reports whether every "::"-separated part of s is an identifier.
func IsIdentifierChain(s string) bool {
	for _, part := range strings.Split(s, "::") {
		if !IsIdentifier(part) {
			return false
		}
	}
	return true
}

// OnceSet remembers keys across calls; First reports true only the first time
// a key is seen. Safe for concurrent use.
type OnceSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// First records key and reports whether it was new.
func (o *OnceSet) First(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = make(map[string]struct{})
	}
	if _, ok := o.seen[key]; ok {
		return false
	}
	o.seen[key] = struct{}{}
	return true
}
