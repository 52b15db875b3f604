package signature

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/scan"
)

var (
	returnAnnotation = regexp.MustCompile(`^\s*->\s*([\w.]+(?:\[[\w.\[\], |]*\])?(?:\s*\|\s*[\w.]+(?:\[[\w.\[\], |]*\])?)*)`)
	docTypeRe        = regexp.MustCompile(`^[\w.]+(?:\[[\w.\[\], |]*\])?(?:\s*\|\s*[\w.]+(?:\[[\w.\[\], |]*\])?)*$`)
)

// typeWords are type names that may precede a parameter name in C-style
// documentation, e.g. "makeBox(float length, float width)".
var typeWords = map[string]struct{}{
	"int": {}, "float": {}, "str": {}, "bool": {}, "list": {}, "tuple": {},
	"dict": {}, "object": {}, "bytes": {}, "complex": {}, "string": {},
	"double": {}, "long": {},
}

// typeWordAliases maps C-flavoured type words to Python.
var typeWordAliases = map[string]string{
	"string": "str",
	"double": "float",
	"long":   "int",
}

// FromDoc returns one candidate per line of doc shaped like
// `name(params) [-> Ret]`. Lines whose parameters do not form a valid Python
// signature are dropped. argNumStart offsets generated argument names.
func FromDoc(name, doc string, argNumStart int) []Signature {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	var out []Signature
	for _, line := range strings.Split(doc, "\n") {
		if sig, ok := docLine(name, strings.TrimSpace(line), argNumStart); ok {
			out = append(out, sig)
		}
	}
	return out
}

// docLine parses a single documentation line.
func docLine(name, line string, argNumStart int) (Signature, bool) {
	rest, ok := strings.CutPrefix(line, name)
	if !ok {
		return Signature{}, false
	}
	open := len(line) - len(strings.TrimLeft(rest, " \t"))
	if open >= len(line) || line[open] != '(' {
		return Signature{}, false
	}
	end := scan.MatchingClose(line, open)
	if end < 0 {
		return Signature{}, false
	}

	params, ok := docParams(line[open+1:end], argNumStart)
	if !ok {
		return Signature{}, false
	}
	sig := Signature{Params: params}
	if m := returnAnnotation.FindStringSubmatch(line[end+1:]); m != nil {
		sig.Return = pytype.ParseAnnotation(m[1])
	}
	return sig, true
}

// docItem is one comma-separated parameter with its optional-bracket state.
type docItem struct {
	text     string
	optional bool
}

// splitDocParams splits text at top-level commas. Square brackets that are
// not subscripts (such as "list[int]") mark optional segments and may nest.
func splitDocParams(text string) ([]docItem, bool) {
	var (
		items    []docItem
		cur      strings.Builder
		optDepth int
		optional bool
		depth    int
		subs     []bool // per open '[': true when it is a subscript
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			items = append(items, docItem{text: s, optional: optional})
		}
		cur.Reset()
		optional = optDepth > 0
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' || c == '\'':
			end := scan.LiteralEnd(text, i)
			cur.WriteString(text[i:end])
			i = end - 1
		case c == '(' || c == '{':
			depth++
			cur.WriteByte(c)
		case c == ')' || c == '}':
			depth--
			cur.WriteByte(c)
		case c == '[':
			sub := isSubscript(text, i, cur.String())
			subs = append(subs, sub)
			if sub {
				cur.WriteByte(c)
				continue
			}
			optDepth++
			if strings.TrimSpace(cur.String()) == "" {
				optional = true
			}
		case c == ']':
			if len(subs) == 0 {
				return nil, false
			}
			sub := subs[len(subs)-1]
			subs = subs[:len(subs)-1]
			if sub {
				cur.WriteByte(c)
				continue
			}
			optDepth--
		case c == ',' && depth == 0 && !insideSubscript(subs):
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	if depth != 0 || len(subs) != 0 {
		return nil, false
	}
	flush()
	return items, true
}

func insideSubscript(subs []bool) bool {
	for _, s := range subs {
		if s {
			return true
		}
	}
	return false
}

// isSubscript reports whether the '[' at text[i] indexes a type such as
// "list[int]" rather than opening an optional segment.
func isSubscript(text string, i int, current string) bool {
	next := strings.TrimLeft(text[i+1:], " \t")
	if next == "" || next[0] == ',' || next[0] == '[' {
		return false
	}
	trimmed := strings.TrimRight(current, " \t")
	if strings.HasSuffix(trimmed, "=") {
		return true // list literal default
	}
	if trimmed == "" || len(trimmed) != len(current) {
		return false
	}
	last := trimmed[len(trimmed)-1]
	isWord := last == '_' || last == '.' || last >= '0' && last <= '9' ||
		last >= 'a' && last <= 'z' || last >= 'A' && last <= 'Z'
	if !isWord {
		return false
	}
	// Only annotations are subscripted; a bare parameter name is not.
	return strings.Contains(current, ":") || isTypeWord(strings.TrimSpace(current))
}

func isTypeWord(s string) bool {
	_, ok := typeWords[s]
	return ok || strings.Contains(s, ".")
}

// docParams converts the parameter list of one documentation line.
func docParams(text string, argNumStart int) ([]Parameter, bool) {
	items, ok := splitDocParams(text)
	if !ok {
		return nil, false
	}

	var (
		params         []Parameter
		used           = make(map[string]struct{})
		kwOnly         bool
		hasDefault     bool
		seenVarKeyword bool
	)
	for i, item := range items {
		switch item.text {
		case "/":
			for j := range params {
				params[j].Kind = PositionalOnly
			}
			continue
		case "*":
			kwOnly = true
			continue
		case "...":
			item.text = "*args"
		}

		p, ok := docParam(item.text, argNumStart+i)
		if !ok {
			return nil, false
		}
		switch p.Kind {
		case VarPositional:
			kwOnly = true
		case PositionalOrKeyword:
			if kwOnly {
				p.Kind = KeywordOnly
			}
			if item.optional && p.Default == "" {
				p.Default = "..."
			}
			if p.Kind != KeywordOnly {
				if p.Default == "" && hasDefault {
					return nil, false
				}
				hasDefault = hasDefault || p.Default != ""
			}
		}

		if _, dup := used[p.Name]; dup || seenVarKeyword {
			return nil, false
		}
		seenVarKeyword = p.Kind == VarKeyword
		used[p.Name] = struct{}{}
		params = append(params, p)
	}
	return params, true
}

// docParam parses one parameter: "name", "name=default", "name: type",
// "name: type = default", "type name", "*args" or "**kwargs".
func docParam(text string, argNum int) (Parameter, bool) {
	p := Parameter{Kind: PositionalOrKeyword}

	switch {
	case strings.HasPrefix(text, "**"):
		p.Kind = VarKeyword
		text = text[2:]
	case strings.HasPrefix(text, "*"):
		p.Kind = VarPositional
		text = text[1:]
	}

	if head, def, ok := cutTopLevel(text, '='); ok {
		if p.Kind != PositionalOrKeyword {
			return Parameter{}, false
		}
		text = strings.TrimSpace(head)
		p.Default = strings.TrimSpace(def)
		if p.Default == "" {
			return Parameter{}, false
		}
	}

	if head, typ, ok := strings.Cut(text, ":"); ok {
		typ = strings.TrimSpace(typ)
		if !docTypeRe.MatchString(typ) {
			return Parameter{}, false
		}
		p.Type = pytype.ParseAnnotation(typ)
		text = strings.TrimSpace(head)
	} else if fields := strings.Fields(text); len(fields) == 2 && isTypeWord(fields[0]) {
		p.Type = pytype.Literal(docTypeWord(fields[0]))
		text = fields[1]
	} else if len(fields) == 1 && p.Kind == PositionalOrKeyword && isTypeWord(fields[0]) {
		// A bare type stands for an unnamed argument.
		p.Type = pytype.Literal(docTypeWord(fields[0]))
		text = "arg" + strconv.Itoa(argNum)
		p.WeakName = true
	}

	text = strings.TrimSpace(text)
	if !util.IsIdentifier(text) {
		return Parameter{}, false
	}
	p.Name = util.ToPythonIdent(text)
	return p, true
}

func docTypeWord(s string) string {
	if alias, ok := typeWordAliases[s]; ok {
		return alias
	}
	return s
}

// cutTopLevel splits s around the first sep outside brackets and literals.
func cutTopLevel(s string, sep byte) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			i = scan.LiteralEnd(s, i) - 1
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
