package rettype

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/scan"
)

// Variable locates a container-typed value whose element types may be refined.
type Variable struct {
	// Name is the variable name, or the full construction expression when the
	// container was built inline (e.g. "Py::TupleN(a, b)").
	Name string
	// DeclStart and DeclEnd delimit the declaration statement in the body.
	DeclStart, DeclEnd int
	// End is the use site; nothing at or after it is inspected.
	End int
}

// InnerTypeResolver refines a bare container type using code around v.
// Returning the bare container means no evidence was found.
type InnerTypeResolver func(c *Converter, container pytype.Literal, v Variable) (pytype.Type, error)

func (c *Converter) innerType(container pytype.Literal, v Variable) (pytype.Type, error) {
	resolver, ok := c.inner[string(container)]
	if !ok {
		return container, nil
	}
	if v.End > len(c.body) {
		v.End = len(c.body)
	}
	if v.DeclEnd > v.End {
		v.DeclEnd = v.End
	}
	return resolver(c, container, v)
}

// callSite is a call whose arguments mention the variable.
type callSite struct {
	pos  int
	args []string
}

// findCalls returns calls matching re within body[from:to]; re must match up to
// and including the opening parenthesis of the call.
func (c *Converter) findCalls(re *regexp.Regexp, from, to int) []callSite {
	if from < 0 {
		from = 0
	}
	if from >= to {
		return nil
	}
	var out []callSite
	for _, loc := range re.FindAllStringIndex(c.body[from:to], -1) {
		pos := from + loc[0]
		call := scan.FindCall(c.body, pos)
		out = append(out, callSite{pos: pos, args: scan.Args(call)})
	}
	return out
}

func receiverCall(name string, methods ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*(?:\.|->)\s*(?:` + strings.Join(methods, "|") + `)\s*\(`)
}

func apiCall(function, name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + function + `\s*\(\s*` + regexp.QuoteMeta(name) + `\s*,`)
}

// elementType resolves an element expression at a call site.
func (c *Converter) elementType(expr string, pos int) (pytype.Type, error) {
	return c.resolveOrAny(expr, pos, false)
}

// listInnerType unions the values appended or assigned into a list.
func listInnerType(c *Converter, container pytype.Literal, v Variable) (pytype.Type, error) {
	type source struct {
		re  *regexp.Regexp
		arg int
	}
	sources := []source{
		{apiCall("PyList_Append", v.Name), 1},
		{apiCall("PyList_SetItem", v.Name), 2},
		{receiverCall(v.Name, "append"), 0},
		{receiverCall(v.Name, "setItem"), 1},
	}

	var sites []struct {
		pos  int
		expr string
	}
	for _, s := range sources {
		for _, call := range c.findCalls(s.re, v.DeclEnd, v.End) {
			if s.arg < len(call.args) {
				sites = append(sites, struct {
					pos  int
					expr string
				}{call.pos, call.args[s.arg]})
			}
		}
	}
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].pos < sites[j].pos })

	var elems []pytype.Type
	for _, site := range sites {
		t, err := c.elementType(site.expr, site.pos)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	elem := pytype.NewUnion(elems...)
	if pytype.IsAny(elem) {
		return container, nil
	}
	return pytype.Param(string(container), elem), nil
}

// tupleInnerType resolves Py::TupleN arguments or indexed item assignments.
func tupleInnerType(c *Converter, container pytype.Literal, v Variable) (pytype.Type, error) {
	if strings.HasPrefix(v.Name, "Py::TupleN") {
		return c.packedTuple(container, scan.Args(v.Name), v.End)
	}

	if v.DeclEnd > v.DeclStart {
		decl := c.body[v.DeclStart:v.DeclEnd]
		if strings.Contains(decl, "TupleN") {
			name := regexp.MustCompile(`\b` + regexp.QuoteMeta(v.Name) + `\b`)
			if loc := name.FindStringIndex(decl); loc != nil {
				return c.packedTuple(container, scan.Args(decl[loc[1]:]), v.End)
			}
		}
	}

	indexed := map[int][]pytype.Type{}
	var all []pytype.Type
	positional := true

	collect := func(re *regexp.Regexp, indexArg, valueArg int) error {
		for _, call := range c.findCalls(re, v.DeclEnd, v.End) {
			if valueArg >= len(call.args) {
				continue
			}
			t, err := c.elementType(call.args[valueArg], call.pos)
			if err != nil {
				return err
			}
			all = append(all, t)
			idx, convErr := strconv.Atoi(strings.TrimSpace(call.args[indexArg]))
			if convErr != nil || idx < 0 {
				positional = false
				continue
			}
			indexed[idx] = append(indexed[idx], t)
		}
		return nil
	}
	if err := collect(apiCall("PyTuple_SetItem", v.Name), 1, 2); err != nil {
		return nil, err
	}
	if err := collect(receiverCall(v.Name, "setItem"), 0, 1); err != nil {
		return nil, err
	}

	if len(all) == 0 {
		return container, nil
	}
	if positional {
		elems := make([]pytype.Type, len(indexed))
		for i := range elems {
			members, ok := indexed[i]
			if !ok {
				positional = false
				break
			}
			elems[i] = pytype.NewUnion(members...)
		}
		if positional {
			return pytype.Param(string(container), elems...), nil
		}
	}
	return pytype.Param(string(container), pytype.NewUnion(all...), pytype.Literal("...")), nil
}

func (c *Converter) packedTuple(container pytype.Literal, args []string, end int) (pytype.Type, error) {
	if len(args) == 0 {
		return container, nil
	}
	elems := make([]pytype.Type, 0, len(args))
	for _, arg := range args {
		t, err := c.elementType(arg, end)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	return pytype.Param(string(container), elems...), nil
}

// dictInnerType unions keys and values stored into a dict.
func dictInnerType(c *Converter, container pytype.Literal, v Variable) (pytype.Type, error) {
	var keys, values []pytype.Type

	add := func(key, value string, pos int) error {
		k, err := c.keyType(key, pos)
		if err != nil {
			return err
		}
		val, err := c.elementType(value, pos)
		if err != nil {
			return err
		}
		keys = append(keys, k)
		values = append(values, val)
		return nil
	}

	for _, call := range c.findCalls(apiCall("PyDict_SetItemString", v.Name), v.DeclEnd, v.End) {
		if len(call.args) >= 3 {
			keys = append(keys, pytype.Str)
			val, err := c.elementType(call.args[2], call.pos)
			if err != nil {
				return nil, err
			}
			values = append(values, val)
		}
	}
	for _, call := range c.findCalls(apiCall("PyDict_SetItem", v.Name), v.DeclEnd, v.End) {
		if len(call.args) >= 3 {
			if err := add(call.args[1], call.args[2], call.pos); err != nil {
				return nil, err
			}
		}
	}
	for _, call := range c.findCalls(receiverCall(v.Name, "setItem"), v.DeclEnd, v.End) {
		if len(call.args) >= 2 {
			if err := add(call.args[0], call.args[1], call.pos); err != nil {
				return nil, err
			}
		}
	}
	if v.DeclEnd < v.End {
		subscript := regexp.MustCompile(`\b` + regexp.QuoteMeta(v.Name) + `\s*\[([^\]]+)\]\s*=\s*([^=;][^;]*);`)
		for _, m := range subscript.FindAllStringSubmatchIndex(c.body[v.DeclEnd:v.End], -1) {
			pos := v.DeclEnd + m[0]
			key := c.body[v.DeclEnd+m[2] : v.DeclEnd+m[3]]
			value := c.body[v.DeclEnd+m[4] : v.DeclEnd+m[5]]
			if err := add(key, value, pos); err != nil {
				return nil, err
			}
		}
	}

	if len(values) == 0 {
		return container, nil
	}
	return pytype.Param(string(container), pytype.NewUnion(keys...), pytype.NewUnion(values...)), nil
}

// keyType treats string literals as str and resolves anything else.
func (c *Converter) keyType(key string, pos int) (pytype.Type, error) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, `"`) {
		return pytype.Str, nil
	}
	if _, err := strconv.Atoi(key); err == nil {
		return pytype.Int, nil
	}
	return c.elementType(key, pos)
}
