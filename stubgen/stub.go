package stubgen

import (
	"strings"

	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/klass"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/signature"
)

// classStub is a generated class before it is placed into its module.
type classStub struct {
	desc    *klass.Descriptor
	doc     string
	members []string
	imports *util.OrderedSet[string]
	// source is the file the class was generated from, relative to the
	// source root.
	source string
}

func newClassStub(desc *klass.Descriptor, imports *util.OrderedSet[string], source string) *classStub {
	if imports == nil {
		imports = util.NewOrderedSet[string]()
	}
	return &classStub{desc: desc, imports: imports, source: source}
}

func (c *classStub) add(member string) {
	if member != "" {
		c.members = append(c.members, strings.TrimRight(member, "\n"))
	}
}

func (c *classStub) addMethod(m methodStub) {
	if len(m.sigs) > 1 {
		c.imports.Add("typing")
	}
	for _, sig := range m.sigs {
		c.imports.Add(sig.Imports()...)
	}
	c.add(m.render())
}

func (c *classStub) addProperty(p propertyStub) {
	if p.typ != nil {
		c.imports.Add(pytype.Imports(p.typ)...)
	}
	c.add(p.render())
}

func (c *classStub) render() string {
	var sb strings.Builder
	sb.WriteString("class " + c.desc.Name)
	if len(c.desc.Bases) > 0 {
		sb.WriteString("(" + strings.Join(c.desc.Bases, ", ") + ")")
	}
	sb.WriteString(":\n")

	var body []string
	if doc := docstring(c.doc); doc != "" {
		body = append(body, doc)
	}
	if len(c.desc.Signals) > 0 {
		lines := make([]string, len(c.desc.Signals))
		for i, s := range c.desc.Signals {
			lines[i] = s.String()
		}
		body = append(body, strings.Join(lines, "\n"))
	}
	body = append(body, c.members...)
	if len(body) == 0 {
		body = append(body, "pass")
	}
	sb.WriteString(indent(strings.Join(body, "\n\n")))
	sb.WriteString("\n")
	return sb.String()
}

// methodStub is one Python method with all of its overloads.
type methodStub struct {
	name        string
	sigs        []signature.Signature
	doc         string
	static      bool
	classMethod bool
}

func (m methodStub) render() string {
	var sb strings.Builder
	doc := docstring(m.doc)
	for i, sig := range m.sigs {
		if len(m.sigs) > 1 {
			sb.WriteString("@typing.overload\n")
		}
		switch {
		case m.static:
			sb.WriteString("@staticmethod\n")
		case m.classMethod:
			sb.WriteString("@classmethod\n")
		}
		sb.WriteString("def " + m.name + sig.String() + ":")
		if i == 0 && doc != "" {
			sb.WriteString("\n" + indent(doc) + "\n")
		} else {
			sb.WriteString(" ...\n")
		}
	}
	return sb.String()
}

// propertyStub renders a declared attribute as a Python property.
type propertyStub struct {
	name     string
	typ      pytype.Type
	doc      string
	readOnly bool
}

func (p propertyStub) render() string {
	typ := pytype.Type(pytype.Any)
	if p.typ != nil {
		typ = p.typ
	}
	name := util.ToPythonIdent(p.name)

	var sb strings.Builder
	sb.WriteString("@property\n")
	sb.WriteString("def " + name + "(self) -> " + typ.String() + ":")
	if doc := docstring(p.doc); doc != "" {
		sb.WriteString("\n" + indent(doc) + "\n")
	} else {
		sb.WriteString(" ...\n")
	}
	if !p.readOnly {
		sb.WriteString("@" + name + ".setter\n")
		sb.WriteString("def " + name + "(self, value: " + typ.String() + ") -> None: ...\n")
	}
	return sb.String()
}

// emptyMethod renders a bodiless method taking self and args. reflected adds
// the __r*__ twin of a binary operator.
func emptyMethod(name, retType string, reflected bool, args ...string) string {
	params := strings.Join(append([]string{"self"}, args...), ", ")
	ret := ""
	if retType != "" {
		ret = " -> " + retType
	}
	out := "def " + name + "(" + params + ")" + ret + ": ..."
	if reflected {
		out += "\n" + emptyMethod("__r"+strings.TrimPrefix(name, "__"), retType, false, args...)
	}
	return out
}

// richCompareMethods stubs the comparison operators of a class with rich
// comparison support.
func richCompareMethods() []string {
	var out []string
	for _, op := range []string{"__eq__", "__ne__", "__lt__", "__le__", "__ge__", "__gt__"} {
		out = append(out, emptyMethod(op, "bool", false, "other"))
	}
	return out
}

// numberProtocolMethods stubs the number protocol slots of className.
func numberProtocolMethods(className string) []string {
	return []string{
		emptyMethod("__add__", className, true, "other"),
		emptyMethod("__sub__", className, true, "other"),
		emptyMethod("__mul__", "", true, "other"),
		emptyMethod("__mod__", "", true, "other"),
		emptyMethod("__divmod__", "", true, "other"),
		emptyMethod("__pow__", "", true, "power", "modulo=None"),
		emptyMethod("__neg__", className, false),
		emptyMethod("__pos__", className, false),
		emptyMethod("__abs__", className, false),
		emptyMethod("__bool__", "bool", false),
		emptyMethod("__invert__", "", false),
		emptyMethod("__lshift__", "", true, "other"),
		emptyMethod("__rshift__", "", true, "other"),
		emptyMethod("__and__", "", true, "other"),
		emptyMethod("__xor__", "", true, "other"),
		emptyMethod("__or__", "", true, "other"),
		emptyMethod("__int__", "int", false),
		emptyMethod("__float__", "float", false),
		emptyMethod("__truediv__", className, true, "other"),
	}
}

// exceptionsDoc lists the exceptions any candidate may raise.
func exceptionsDoc(sigs []signature.Signature) string {
	found := util.NewOrderedSet[string]()
	for _, sig := range sigs {
		found.Add(sig.Exceptions...)
	}
	if found.Len() == 0 {
		return ""
	}
	return "Possible exceptions: (" + strings.Join(found.Items(), ", ") + ")."
}

// joinDoc joins non-empty docstring paragraphs.
func joinDoc(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// debugNote is appended to docstrings when docstring_debug_notes is enabled.
func debugNote(generator, source string) string {
	return "DOCSTRING_DEBUG_NOTES:\n- generated-in: " + generator + "\n- source: " + source
}
