package pytype

// buildCodes maps Py_BuildValue format units to the Python type they create.
var buildCodes = map[byte]Type{
	's': Str, 'z': Str, 'U': Str, 'C': Str,
	'y': Bytes, 'c': Bytes,
	'i': Int, 'b': Int, 'h': Int, 'l': Int, 'B': Int, 'H': Int,
	'I': Int, 'k': Int, 'L': Int, 'K': Int, 'n': Int,
	'd': Float, 'f': Float,
	'D': Literal("complex"),
	'p': Bool,
}

// ArgResolver resolves the i-th variadic argument (0-based, after the format
// string) of a Py_BuildValue call. It is consulted for object codes only.
type ArgResolver func(i int) Type

// ParseBuildValue returns the type produced by Py_BuildValue(format, ...).
//
// An empty format yields None, a single top-level unit yields its own type and
// several units yield a tuple. Object units (O, S, N) are resolved through
// resolve; a nil resolve or O& yields Any for that unit.
//
//	ParseBuildValue("(dd)", nil) == tuple[float, float]
//	ParseBuildValue("{s:i}", nil) == dict[str, int]
func ParseBuildValue(format string, resolve ArgResolver) Type {
	p := &buildParser{format: format, resolve: resolve}
	items := p.sequence(0)
	switch len(items) {
	case 0:
		return None
	case 1:
		return items[0]
	default:
		return Param("tuple", items...)
	}
}

type buildParser struct {
	format  string
	pos     int
	arg     int
	resolve ArgResolver
}

// sequence parses units until closer (0 for end of input) and consumes it.
func (p *buildParser) sequence(closer byte) []Type {
	var items []Type
	for p.pos < len(p.format) {
		c := p.format[p.pos]
		if c == closer && closer != 0 {
			p.pos++
			return items
		}
		if t := p.unit(); t != nil {
			items = append(items, t)
		}
	}
	return items
}

// unit parses one format unit; separators yield nil.
func (p *buildParser) unit() Type {
	c := p.format[p.pos]
	p.pos++

	switch c {
	case ' ', '\t', ',', ':', '#', '&', '!':
		return nil
	case '(':
		items := p.sequence(')')
		if len(items) == 0 {
			return Tuple
		}
		return Param("tuple", items...)
	case '[':
		items := p.sequence(']')
		return container("list", NewUnion(items...))
	case '{':
		items := p.sequence('}')
		var keys, values []Type
		for i, it := range items {
			if i%2 == 0 {
				keys = append(keys, it)
			} else {
				values = append(values, it)
			}
		}
		if len(items) == 0 {
			return Dict
		}
		return Param("dict", NewUnion(keys...), NewUnion(values...))
	case 'O', 'S', 'N':
		idx := p.arg
		p.arg++
		if p.consume('&') {
			// converter function plus its argument
			p.arg++
			return Any
		}
		if p.resolve == nil {
			return Any
		}
		if t := p.resolve(idx); t != nil {
			return t
		}
		return Any
	}

	t, ok := buildCodes[c]
	if !ok {
		return Any
	}
	p.arg++
	if p.consume('#') {
		p.arg++
	}
	return t
}

func (p *buildParser) consume(c byte) bool {
	if p.pos < len(p.format) && p.format[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func container(name string, elem Type) Type {
	if IsAny(elem) {
		return Literal(name)
	}
	return Param(name, elem)
}
