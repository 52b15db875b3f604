package rettype

import (
	"regexp"
	"strings"

	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/scan"
)

// placeholderTypes are declared types that say nothing about the Python value.
var placeholderTypes = map[string]bool{
	"auto":         true,
	"PyObject":     true,
	"Py::Object":   true,
	"PyTypeObject": true,
	"PyObjectBase": true,
}

// declarationPattern matches `Type [a, b,] name [, c] [= value | (args)]` ending
// with ';' (or ':' for range-for). A leading '#' marks preprocessor lines.
func declarationPattern(name string) *regexp.Regexp {
	n := regexp.QuoteMeta(name)
	return regexp.MustCompile(
		`(?P<directive>#)?[ \t]*` +
			`(?P<type>[A-Za-z_](?:[\w:<>*\s]*[\w<>*])?)\s*` +
			`(?:\b\w+\s*,\s*)*` +
			`\b` + n + `\b\s*` +
			`(?:(?:,\s*\w+\s*)*|=\s*(?P<val>[^;]*)|\((?P<args>[^;]+)\))?` +
			`[;:]`,
	)
}

func assignmentPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b\s*=\s*([^=;][^;]*);`)
}

// declaration is one match of declarationPattern.
type declaration struct {
	start, end int
	typ        string
	val        string
	args       string
	directive  bool
}

func findDeclarations(body, name string, end int) []declaration {
	re := declarationPattern(name)
	var out []declaration
	for _, loc := range re.FindAllStringSubmatchIndex(body[:end], -1) {
		d := declaration{start: loc[0], end: loc[1]}
		group := func(name string) string {
			i := re.SubexpIndex(name)
			if loc[2*i] < 0 {
				return ""
			}
			return body[loc[2*i]:loc[2*i+1]]
		}
		d.directive = group("directive") != ""
		d.typ = group("type")
		d.val = group("val")
		d.args = group("args")
		out = append(out, d)
	}
	return out
}

// declaredType cleans the declared type of d, or returns "" when the match is
// not a declaration.
func (d declaration) declaredType() string {
	v := strings.TrimSpace(d.typ)
	if v == "" || v == "return" || v == "else" {
		return ""
	}
	if open := strings.IndexByte(v, '<'); open >= 0 {
		if close := strings.IndexByte(v[open:], '>'); close >= 0 {
			v = v[open+1 : open+close]
		}
	}
	for _, qualifier := range []string{"static", "const"} {
		v = trimKeyword(v, qualifier)
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "*"))
}

// variableType resolves the type of a local variable from its most recent
// declaration before end.
func (c *Converter) variableType(name string, end int) (pytype.Type, error) {
	if name == "this" {
		return c.currentClass()
	}

	decls := findDeclarations(c.body, name, end)
	for i := len(decls) - 1; i >= 0; i-- {
		d := decls[i]
		if d.directive {
			continue
		}
		declared := d.declaredType()
		if declared == "" {
			continue
		}

		t, err := c.declarationValue(d, declared, end)
		if err != nil {
			return nil, err
		}

		isNone := pytype.Is(t, string(pytype.None))
		if isNone || pytype.IsAny(t) {
			assigned, err := c.assignedType(name, d.end, end)
			if err != nil {
				return nil, err
			}
			t = assigned
			if isNone {
				t = pytype.NewUnion(assigned, pytype.None)
			}
		}

		if lit, ok := t.(pytype.Literal); ok {
			t, err = c.innerType(lit, Variable{Name: name, DeclStart: d.start, DeclEnd: d.end, End: end})
			if err != nil {
				return nil, err
			}
		}

		c.log.Debugw("Resolved variable",
			logger.FieldVariable, name,
			logger.FieldType, t.String(),
		)
		return t, nil
	}

	return c.Resolve(name, end, true)
}

// declarationValue resolves what a declaration says about the variable.
func (c *Converter) declarationValue(d declaration, declared string, end int) (pytype.Type, error) {
	if !placeholderTypes[declared] {
		return c.Resolve(declared, end, true)
	}

	switch {
	case d.val != "":
		return c.Resolve(d.val, end, true)
	case declared != "auto" && d.args != "":
		args := scan.SplitTopLevel(d.args, ',')
		if len(args) == 0 {
			return pytype.Any, nil
		}
		return c.resolveOrAny(args[0], end, false)
	default:
		return pytype.Any, nil
	}
}

// assignedType unions every `name = expr;` between start and end.
func (c *Converter) assignedType(name string, start, end int) (pytype.Type, error) {
	if start >= end {
		return pytype.Any, nil
	}
	re := assignmentPattern(name)
	var types []pytype.Type
	for _, m := range re.FindAllStringSubmatchIndex(c.body[start:end], -1) {
		expr := c.body[start+m[2] : start+m[3]]
		t, err := c.Resolve(expr, end, true)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return pytype.NewUnion(types...), nil
}
