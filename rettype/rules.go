package rettype

import (
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/pattern"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/scan"
)

// chain is the ordered list of rule tables tried by Resolve. Order matters:
// sentinels must be rejected before anything treats them as identifiers.
var chain []pattern.Table[resolveFn]

func init() {
	chain = []pattern.Table[resolveFn]{
		literalRules,
		builderRules,
		domainRules,
		guiRules,
		methodRules,
	}
}

func rule(name string, when pattern.Predicate, fn func(c *Converter, m pattern.Match, q query) (pytype.Type, error)) pattern.Rule[resolveFn] {
	return pattern.Rule[resolveFn]{
		Name: name,
		When: when,
		Then: func(m pattern.Match) (resolveFn, error) {
			return func(c *Converter, q query) (pytype.Type, error) {
				return fn(c, m, q)
			}, nil
		},
	}
}

func fixed(name string, when pattern.Predicate, t pytype.Type) pattern.Rule[resolveFn] {
	return rule(name, when, func(*Converter, pattern.Match, query) (pytype.Type, error) {
		return t, nil
	})
}

var literalRules = pattern.Table[resolveFn]{
	fixed("empty", pattern.Exact(""), pytype.Any),
	rule("sentinel", pattern.Exact("0", "-1", "NULL", "nullptr", "0L"),
		func(_ *Converter, m pattern.Match, q query) (pytype.Type, error) {
			if q.onlyLiteral {
				return pytype.Any, nil
			}
			return nil, errors.Wrapf(errors.ErrInvalidReturnType, "sentinel %q", m.Text)
		}),
}

var builderRules = pattern.Table[resolveFn]{
	fixed("object", pattern.Exact("Py::Object()"), pytype.Object),
	fixed("none", pattern.Exact("Py_None", "Py::None()", "Py_Return"), pytype.None),
	fixed("bool", pattern.Prefix("Py::Boolean", "PyBool_From", "Py::True", "Py::False"), pytype.Bool),
	fixed("int", pattern.Prefix("Py::Long", "PyLong_From", "Py::Int", "PyInt_From", "PYINT_FROMLONG"), pytype.Int),
	fixed("float", pattern.Prefix("Py::Float", "PyFloat_From"), pytype.Float),
	fixed("list", pattern.Prefix("Py::List", "PyList_New"), pytype.List),
	fixed("dict", pattern.Prefix("Py::Dict", "PyDict_New"), pytype.Dict),
	fixed("callable", pattern.Prefix("Py::Callable"), pytype.Literal("typing.Callable")),
	fixed("bytes", pattern.Prefix("PyByteArray_From", "PyBytes_From"), pytype.Bytes),
	fixed("str", pattern.Prefix(
		"Py::String", "PyString_From", "PyUnicode_From", "Py::Char",
		"PyUnicode_DecodeUTF8", "PYSTRING_FROMSTRING", "QString",
	), pytype.Str),
	rule("build value", pattern.Prefix(`Py_BuildValue("`), buildValue),
	fixed("bool constant", pattern.Contains("Py_True", "Py_False"), pytype.Bool),
	rule("tuple n", pattern.Prefix("Py::TupleN"), func(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
		if q.onlyLiteral {
			return pytype.Tuple, nil
		}
		return c.innerType(pytype.Tuple, Variable{Name: m.Text, DeclEnd: q.end, End: q.end})
	}),
	rule("tuple pack", pattern.Prefix("PyTuple_Pack"), tuplePack),
	fixed("tuple", pattern.Prefix("Py::Tuple", "PyTuple_New"), pytype.Tuple),

	// Plain C++ scalars, reached when a declared variable type is resolved.
	fixed("c++ int", pattern.Exact(
		"int", "long", "short", "unsigned", "unsigned int", "unsigned long", "long long",
		"size_t", "std::size_t", "Py_ssize_t", "int64_t", "uint64_t", "int32_t", "uint32_t",
	), pytype.Int),
	fixed("c++ float", pattern.Exact("double", "float"), pytype.Float),
	fixed("c++ bool", pattern.Exact("bool"), pytype.Bool),
	fixed("c++ string", pattern.Exact("std::string", "char", "QByteArray"), pytype.Str),
}

var domainRules = pattern.Table[resolveFn]{
	fixed("document object", pattern.Exact("getDocumentObjectPtr()"), pytype.Literal("FreeCAD.DocumentObject")),
	fixed("open document", pattern.Prefix("(GetApplication().openDocument("), pytype.Literal("FreeCAD.Document")),
	fixed("bound box", pattern.Prefix("Py::BoundingBox"), pytype.Literal("FreeCAD.BoundBox")),
	fixed("matrix", pattern.Prefix("Py::Matrix"), pytype.Literal("FreeCAD.Matrix")),
	fixed("rotation", pattern.Prefix("Py::Rotation"), pytype.Literal("FreeCAD.Rotation")),
	fixed("placement", pattern.Prefix("Py::Placement"), pytype.Literal("FreeCAD.Placement")),
	fixed("vector 2d", pattern.Prefix("Py::Vector2d", "Base::Vector2dPy::create("), pytype.Literal("FreeCAD.Vector2d")),
	fixed("vector", pattern.Prefix("Py::Vector"), pytype.Literal("FreeCAD.Vector")),
	fixed("main window", pattern.Prefix("MainWindowPy::createWrapper"), pytype.Literal("FreeCADGui.MainWindowPy")),
	fixed("shape", pattern.Prefix("shape2pyshape", "Part::shape2pyshape"), pytype.Literal("Part.Shape")),
	rule("shape list", pattern.Prefix("getShapes<"), func(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
		class, _, _ := strings.Cut(m.Rest, ">")
		inner, err := c.Resolve(class, q.end, false)
		if err != nil {
			return nil, err
		}
		return pytype.Param("list", inner), nil
	}),
}

var guiRules = pattern.Table[resolveFn]{
	fixed("qobject", pattern.Prefix("wrap.fromQObject("), pytype.Literal("qtpy.QtCore.QObject")),
	fixed("qwidget", pattern.Prefix("QWidget"), pytype.Literal("qtpy.QtWidgets.QWidget")),
	rule("qwidget cast", pattern.Prefix("wrap.fromQWidget("), func(_ *Converter, m pattern.Match, _ query) (pytype.Type, error) {
		return widgetType(m.Text)
	}),
	fixed("qicon", pattern.Prefix("wrap.fromQIcon("), pytype.Literal("qtpy.QtGui.QIcon")),
}

var methodRules = pattern.Table[resolveFn]{
	rule("tp_new", pattern.Exact("type->tp_new(type, this, nullptr)"), func(c *Converter, _ pattern.Match, q query) (pytype.Type, error) {
		return c.Resolve("type", q.end, false)
	}),
	rule("self", pattern.Exact("this->GetType()", "IncRef()"), func(c *Converter, _ pattern.Match, _ query) (pytype.Type, error) {
		return c.currentClass()
	}),
	rule("copy", pattern.Suffix("->copyPyObject()"), func(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
		return c.Resolve(m.Rest, q.end, false)
	}),
	fixed("c string", pattern.Suffix("->c_str()"), pytype.Str),
	fixed("run string", pattern.Prefix("PyRun_String"), pytype.Any),
	rule("swig", pattern.Prefix("Base::Interpreter().createSWIGPointerObj("), func(_ *Converter, m pattern.Match, _ query) (pytype.Type, error) {
		return pivyType(m.Text), nil
	}),
	rule("allocation", pattern.Prefix("new ", "Py::asObject(new "), func(c *Converter, m pattern.Match, _ query) (pytype.Type, error) {
		return c.classWithModule(m.Text), nil
	}),
	rule("object wrapper", pattern.Prefix("Py::asObject(", "Py::Object(", "createPyObject("), func(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
		args := scan.Args(m.Text)
		if len(args) == 0 {
			return pytype.Any, nil
		}
		return c.Resolve(args[0], q.end, false)
	}),
	rule("python class", pattern.All(pattern.Suffix("Py"), pattern.Identifier(), pattern.When(startsUpper)),
		func(c *Converter, m pattern.Match, _ query) (pytype.Type, error) {
			return c.classWithModule(m.Text), nil
		}),
	rule("python object", pattern.Suffix("->getPyObject()", ".getPyObject()"), func(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
		receiver := strings.TrimSuffix(m.Rest, ")")
		if i := strings.LastIndexByte(receiver, '('); i >= 0 {
			receiver = receiver[i+1:]
		}
		return c.Resolve(receiver, q.end, false)
	}),
}

func startsUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// currentClass returns the class being generated; it is an error to ask
// outside of a class.
func (c *Converter) currentClass() (pytype.Type, error) {
	if c.class == "" {
		return nil, errors.Structuralf("self reference outside of a class")
	}
	return pytype.Literal(c.class), nil
}

// buildValue parses a Py_BuildValue call; object units resolve their argument
// in literal-only mode.
func buildValue(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
	args := scan.Args(m.Text)
	if len(args) == 0 {
		return pytype.Any, nil
	}
	format := scan.Unquote(args[0])

	var resolveErr error
	t := pytype.ParseBuildValue(format, func(i int) pytype.Type {
		if i+1 >= len(args) {
			return nil
		}
		arg, err := c.resolveOrAny(args[i+1], q.end, true)
		if err != nil && resolveErr == nil {
			resolveErr = err
		}
		return arg
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return t, nil
}

// tuplePack resolves every packed element of PyTuple_Pack(n, a, b, ...).
func tuplePack(c *Converter, m pattern.Match, q query) (pytype.Type, error) {
	args := scan.Args(m.Text)
	if len(args) < 2 {
		return pytype.Tuple, nil
	}
	elems := make([]pytype.Type, 0, len(args)-1)
	for _, arg := range args[1:] {
		t, err := c.Resolve(arg, q.end, false)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	return pytype.Param("tuple", elems...), nil
}

// widgetType handles wrap.fromQWidget(widget[, "QClassName"]).
func widgetType(call string) (pytype.Type, error) {
	args := scan.Args(call)
	name := "QWidget"
	switch len(args) {
	case 1:
	case 2:
		if cast := scan.Unquote(args[1]); strings.HasPrefix(cast, "Q") && util.IsIdentifier(cast) {
			name = cast
		}
	default:
		return nil, errors.Structuralf("unexpected widget cast %q", call)
	}
	return pytype.Literal("qtpy.QtWidgets." + name), nil
}

// pivyType handles SWIG pointer creation for the pivy bindings.
//
//	Base::Interpreter().createSWIGPointerObj("pivy.coin", "_p_SoNode", node, 1) -> pivy.coin.SoNode
func pivyType(call string) pytype.Type {
	args := scan.Args(strings.TrimPrefix(call, "Base::Interpreter().createSWIGPointerObj"))
	if len(args) < 2 {
		return pytype.Any
	}
	module := scan.Unquote(args[0])
	class := scan.Unquote(args[1])
	if !strings.HasPrefix(module, "pivy") || strings.Contains(class, "(") {
		return pytype.Any
	}
	class = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(class, "_p_"), "*"))
	return pytype.Literal(module + "." + class)
}
