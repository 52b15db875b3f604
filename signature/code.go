package signature

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/rettype"
	"github.com/teranos/stubgen/scan"
)

var (
	parseCallRe  = regexp.MustCompile(`\b(?:PyArg|Wrapped)_ParseTuple(AndKeywords)?\s*\(`)
	trailingWord = regexp.MustCompile(`(\w+)\W*$`)
	numberRe     = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)[fFlLuU]*$`)
)

// builtinTypeObjects maps CPython type objects accepted by "O!" to Python types.
var builtinTypeObjects = map[string]pytype.Type{
	"PyList_Type":       pytype.List,
	"PyTuple_Type":      pytype.Tuple,
	"PyDict_Type":       pytype.Dict,
	"PyUnicode_Type":    pytype.Str,
	"PyBytes_Type":      pytype.Bytes,
	"PyFloat_Type":      pytype.Float,
	"PyLong_Type":       pytype.Int,
	"PyBool_Type":       pytype.Bool,
	"PyBaseObject_Type": pytype.Object,
	"PyType_Type":       pytype.Literal("type"),
	"PyFunction_Type":   pytype.Literal("typing.Callable"),
}

// FromCode returns one candidate per PyArg_ParseTuple or
// PyArg_ParseTupleAndKeywords call in the converter's body. Every candidate
// carries the body's return type and exceptions. argNumStart offsets generated
// argument names (it is 1 when a self parameter precedes them).
func FromCode(conv *rettype.Converter, argNumStart int) ([]Signature, error) {
	body := conv.Body()
	locs := parseCallRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	ret, err := conv.ReturnType()
	if err != nil {
		return nil, errors.Wrap(err, "failed to infer return type")
	}
	exceptions := conv.Exceptions()

	var out []Signature
	for _, loc := range locs {
		site := callSite{
			conv:        conv,
			pos:         loc[0],
			keywords:    loc[2] >= 0,
			args:        scan.Args(scan.FindCall(body, loc[0])),
			argNumStart: argNumStart,
		}
		params, ok := site.params()
		if !ok {
			continue
		}
		out = append(out, Signature{Params: params, Return: ret, Exceptions: exceptions})
	}
	return out, nil
}

// callSite is one PyArg_Parse* call.
type callSite struct {
	conv        *rettype.Converter
	pos         int
	keywords    bool
	args        []string
	argNumStart int
}

// params builds the parameters described by the call's format string. The
// second result is false when the format is not a string literal.
func (s callSite) params() ([]Parameter, bool) {
	formatIdx, firstTarget := 1, 2
	if s.keywords {
		formatIdx, firstTarget = 2, 4
	}
	if len(s.args) <= formatIdx || !strings.HasPrefix(s.args[formatIdx], `"`) {
		return nil, false
	}

	var kwlist []string
	if s.keywords && len(s.args) > 3 {
		kwlist = keywordList(s.conv.Body()[:s.pos], s.args[3])
	}
	var targets []string
	if len(s.args) > firstTarget {
		targets = s.args[firstTarget:]
	}

	p := &formatParser{conv: s.conv, format: scan.Unquote(s.args[formatIdx]), targets: targets}
	units := p.parse()

	used := make(map[string]struct{})
	params := make([]Parameter, 0, len(units))
	for i, u := range units {
		param := Parameter{Type: u.typ, Kind: PositionalOnly}
		if s.keywords {
			param.Kind = PositionalOrKeyword
			if u.keywordOnly {
				param.Kind = KeywordOnly
			}
		}

		if i < len(kwlist) && kwlist[i] != "" {
			param.Name = util.ToPythonIdent(kwlist[i])
		} else {
			if s.keywords && i < len(kwlist) {
				param.Kind = PositionalOnly
			}
			param.Name = targetName(u.target)
			param.WeakName = true
		}
		if param.Name == "" || !util.IsIdentifier(param.Name) {
			param.Name = "arg" + strconv.Itoa(s.argNumStart+i)
		}
		if _, dup := used[param.Name]; dup {
			param.Name += strconv.Itoa(s.argNumStart + i)
		}
		used[param.Name] = struct{}{}

		if u.optional {
			param.Default = s.defaultOf(u.target)
		}
		params = append(params, param)
	}
	return params, true
}

// defaultOf reads the initializer of the target variable declared before the
// call and converts it to Python source.
func (s callSite) defaultOf(target string) string {
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(target), "&"))
	if !util.IsIdentifier(name) {
		return "..."
	}
	re := regexp.MustCompile(`\b` + name + `\s*(?:=\s*([^;,{]+)|\{([^};]*)\})\s*[;,]`)
	matches := re.FindAllStringSubmatch(s.conv.Body()[:s.pos], -1)
	if len(matches) == 0 {
		return "..."
	}
	m := matches[len(matches)-1]
	value := m[1]
	if value == "" {
		value = m[2]
	}
	return PythonValue(value)
}

// PythonValue converts a C++ initializer to Python source, or "..." when it has
// no Python spelling.
//
//	PythonValue("1.0f") == "1.0"
//	PythonValue("nullptr") == "None"
func PythonValue(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "nullptr", "NULL", "Py_None":
		return "None"
	case "true", "Standard_True", "Py_True":
		return "True"
	case "false", "Standard_False", "Py_False":
		return "False"
	}
	if m := numberRe.FindStringSubmatch(v); m != nil {
		n := strings.TrimPrefix(m[1], "+")
		if strings.HasSuffix(n, ".") {
			n += "0"
		}
		return n
	}
	if strings.HasPrefix(v, `"`) {
		return "'" + strings.ReplaceAll(scan.Unquote(v), "'", `\'`) + "'"
	}
	return "..."
}

// keywordList finds the keyword name array referenced by expr, e.g.
// `static char* kwlist[] = {"a", "b", nullptr};`.
func keywordList(before, expr string) []string {
	expr = strings.TrimSuffix(strings.TrimSpace(expr), ".data()")
	m := trailingWord.FindStringSubmatch(expr)
	if m == nil {
		return nil
	}
	re := regexp.MustCompile(`\b` + m[1] + `\s*(?:\[\s*\w*\s*\])?\s*=?\s*\{([^}]*)\}`)
	decls := re.FindAllStringSubmatch(before, -1)
	if len(decls) == 0 {
		return nil
	}

	var names []string
	for _, item := range scan.SplitTopLevel(decls[len(decls)-1][1], ',') {
		if !strings.HasPrefix(item, `"`) {
			continue
		}
		names = append(names, scan.Unquote(item))
	}
	return names
}

// targetName derives a parameter name from a C target such as "&pcObj".
func targetName(target string) string {
	m := trailingWord.FindStringSubmatch(target)
	if m == nil {
		return ""
	}
	return util.ToPythonIdent(m[1])
}

// unit is one Python argument described by a format string.
type unit struct {
	typ         pytype.Type
	target      string
	optional    bool
	keywordOnly bool
}

// formatParser walks a PyArg_Parse* format string and the C targets it
// consumes.
type formatParser struct {
	conv     *rettype.Converter
	format   string
	pos      int
	targets  []string
	arg      int
	optional bool
	kwOnly   bool
}

func (p *formatParser) parse() []unit {
	var units []unit
	for p.pos < len(p.format) {
		switch p.format[p.pos] {
		case '|':
			p.optional = true
			p.pos++
		case '$':
			p.kwOnly = true
			p.pos++
		case ':', ';':
			return units
		case ' ':
			p.pos++
		default:
			target := p.arg
			t, storage := p.unit()
			u := unit{typ: t, optional: p.optional, keywordOnly: p.kwOnly}
			if idx := target + storage; storage >= 0 && idx < len(p.targets) {
				u.target = p.targets[idx]
			}
			units = append(units, u)
		}
	}
	return units
}

// unit consumes one format unit and returns its type and the offset of its
// storage target among the consumed C arguments (-1 for none).
func (p *formatParser) unit() (pytype.Type, int) {
	code := p.format[p.pos]
	p.pos++

	switch code {
	case '(':
		var elems []pytype.Type
		for p.pos < len(p.format) && p.format[p.pos] != ')' {
			t, _ := p.unit()
			elems = append(elems, t)
		}
		p.pos++
		if len(elems) == 0 {
			return pytype.Tuple, -1
		}
		return pytype.Param(string(pytype.Tuple), elems...), -1
	case 's', 'z', 'y':
		t := pytype.Str
		if code == 'y' {
			t = pytype.Bytes
		}
		p.consume(1)
		if p.peek('#') {
			p.consume(1)
		} else {
			p.peek('*')
		}
		return t, 0
	case 'e':
		if p.pos < len(p.format) {
			p.pos++ // s or t
		}
		p.consume(2)
		if p.peek('#') {
			p.consume(1)
		}
		return pytype.Str, 1
	case 'w':
		p.peek('*')
		p.consume(1)
		return pytype.Literal("bytearray"), 0
	case 'O':
		switch {
		case p.peek('!'):
			t := p.typeObject()
			p.consume(2)
			return t, 1
		case p.peek('&'):
			p.consume(2)
			return pytype.Any, 1
		}
		p.consume(1)
		return pytype.Object, 0
	}

	p.consume(1)
	switch code {
	case 'b', 'B', 'h', 'H', 'i', 'I', 'l', 'k', 'L', 'K', 'n':
		return pytype.Int, 0
	case 'f', 'd':
		return pytype.Float, 0
	case 'D':
		return pytype.Literal("complex"), 0
	case 'p':
		return pytype.Bool, 0
	case 'c', 'S':
		return pytype.Bytes, 0
	case 'C', 'U':
		return pytype.Str, 0
	case 'Y':
		return pytype.Literal("bytearray"), 0
	}
	return pytype.Any, 0
}

func (p *formatParser) peek(c byte) bool {
	if p.pos < len(p.format) && p.format[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *formatParser) consume(n int) {
	p.arg += n
}

// typeObject resolves the type object argument of an "O!" unit.
func (p *formatParser) typeObject() pytype.Type {
	if p.arg >= len(p.targets) {
		return pytype.Object
	}
	text := strings.Trim(p.targets[p.arg], "&() \t")
	if t, ok := builtinTypeObjects[text]; ok {
		return t
	}
	for _, suffix := range []string{"::Type", "::type_object()"} {
		text = strings.TrimSuffix(text, suffix)
	}
	t := p.conv.RequireClass(text)
	if pytype.IsAny(t) {
		return pytype.Object
	}
	return t
}
