package pytype

import (
	"strings"

	"github.com/teranos/stubgen/scan"
)

// ParseAnnotation reads Python annotation text such as
// "list[Part.Face] | None" back into a Type.
func ParseAnnotation(s string) Type {
	s = strings.TrimSpace(s)
	if parts := scan.SplitTopLevel(s, '|'); len(parts) > 1 {
		members := make([]Type, 0, len(parts))
		for _, p := range parts {
			members = append(members, ParseAnnotation(p))
		}
		return NewUnion(members...)
	}
	if s == "" || s == "typing.Any" || s == "Any" {
		return Any
	}
	if open := strings.IndexByte(s, '['); open > 0 && scan.IsWrapped(s[open:]) {
		var elems []Type
		for _, e := range scan.SplitTopLevel(s[open+1:len(s)-1], ',') {
			elems = append(elems, ParseAnnotation(e))
		}
		return Param(s[:open], elems...)
	}
	return Literal(s)
}
