package rettype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/pytype"
)

// returnOf resolves the last return statement of body.
func returnOf(t *testing.T, body string, opts ...Option) string {
	t.Helper()
	got, err := newTestConverter(t, body, opts...).ReturnTypeString()
	require.NoError(t, err)
	return got
}

func TestVariableType(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "last declaration wins",
			body: `{
    Py::Float value(1.0);
    Py::Long value(2);
    return Py::new_reference_to(value);
}`,
			want: "int",
		},
		{
			name: "declaration after use is ignored",
			body: `{
    Py::Float value(1.0);
    return Py::new_reference_to(value);
    Py::Long value(2);
}`,
			want: "float",
		},
		{
			name: "placeholder refined by assignment",
			body: `{
    PyObject* ret = PyLong_FromLong(n);
    return ret;
}`,
			want: "int",
		},
		{
			name: "placeholder refined by constructor argument",
			body: `{
    Py::Object obj(new Base::VectorPy(v));
    return Py::new_reference_to(obj);
}`,
			want: "FreeCAD.Vector",
		},
		{
			name: "unknown placeholder falls back to assignments",
			body: `{
    PyObject* ret = nullptr;
    if (a)
        ret = PyLong_FromLong(1);
    else
        ret = PyFloat_FromDouble(2.0);
    return ret;
}`,
			want: "int | float",
		},
		{
			name: "None folds into the assignment union",
			body: `{
    PyObject* res = Py_None;
    if (x) res = PyLong_FromLong(1);
    return res;
}`,
			want: "int | None",
		},
		{
			name: "scalar declared type",
			body: `{
    double length = shape.length();
    return Py::new_reference_to(Py::Object(length));
}`,
			want: "float",
		},
		{
			name: "declared python class",
			body: `{
    App::DocumentObject* obj = getObject();
    return obj->getPyObject();
}`,
			want: "FreeCAD.DocumentObject",
		},
		{
			name: "copy of wrapped receiver",
			body: `{
    Part::TopoShapePy* shape = getShape();
    return shape->copyPyObject();
}`,
			want: "Part.Shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, returnOf(t, tt.body, WithClass("FreeCADGui.ViewProvider")))
		})
	}
}

func TestInnerTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "list from appends",
			body: `{
    Py::List list;
    list.append(Py::Float(1.0));
    list.append(Py::Long(2));
    return Py::new_reference_to(list);
}`,
			want: "list[float | int]",
		},
		{
			name: "list from c api",
			body: `{
    PyObject* items = PyList_New(0);
    for (auto& s : names) {
        PyList_Append(items, PyUnicode_FromString(s.c_str()));
    }
    return items;
}`,
			want: "list[str]",
		},
		{
			name: "list without evidence stays bare",
			body: `{
    Py::List list(n);
    return Py::new_reference_to(list);
}`,
			want: "list",
		},
		{
			name: "positional tuple",
			body: `{
    Py::Tuple tuple(2);
    tuple.setItem(0, Py::Float(x));
    tuple.setItem(1, Py::String(s));
    return Py::new_reference_to(tuple);
}`,
			want: "tuple[float, str]",
		},
		{
			name: "tuple with computed indices",
			body: `{
    Py::Tuple tuple(n);
    for (int i = 0; i < n; i++)
        tuple.setItem(i, Py::Long(v[i]));
    return Py::new_reference_to(tuple);
}`,
			want: "tuple[int, ...]",
		},
		{
			name: "tuple from c api",
			body: `{
    PyObject* t = PyTuple_New(2);
    PyTuple_SetItem(t, 0, PyLong_FromLong(a));
    PyTuple_SetItem(t, 1, PyLong_FromLong(b));
    return t;
}`,
			want: "tuple[int, int]",
		},
		{
			name: "dict with string keys",
			body: `{
    PyObject* dict = PyDict_New();
    PyDict_SetItemString(dict, "a", PyLong_FromLong(1));
    PyDict_SetItemString(dict, "b", PyFloat_FromDouble(2));
    return dict;
}`,
			want: "dict[str, int | float]",
		},
		{
			name: "dict via subscript",
			body: `{
    Py::Dict dict;
    dict["name"] = Py::String(name);
    return Py::new_reference_to(dict);
}`,
			want: "dict[str, str]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, returnOf(t, tt.body))
		})
	}
}

func TestWithInnerType_Overrides(t *testing.T) {
	body := `{
    Py::List list;
    return Py::new_reference_to(list);
}`
	custom := func(c *Converter, container pytype.Literal, v Variable) (pytype.Type, error) {
		assert.Equal(t, "list", v.Name)
		assert.True(t, strings.Contains(c.Body()[v.DeclStart:v.DeclEnd], "Py::List list;"))
		return pytype.Param(string(container), pytype.Literal("FreeCAD.Vector")), nil
	}

	assert.Equal(t, "list[FreeCAD.Vector]", returnOf(t, body, WithInnerType("list", custom)))
}

func TestDeclaredType(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{typ: "PyObject *", want: "PyObject"},
		{typ: "const char*", want: "char"},
		{typ: "static PyObject*", want: "PyObject"},
		{typ: "std::unique_ptr<Part::TopoShapePy>", want: "Part::TopoShapePy"},
		{typ: "return", want: ""},
		{typ: "else", want: ""},
		{typ: "constant_t", want: "constant_t"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, declaration{typ: tt.typ}.declaredType())
		})
	}
}

func TestFindDeclarations_BoundedByEnd(t *testing.T) {
	body := "int a = 1;\nfloat a = 2;\n"
	end := strings.Index(body, "float")
	decls := findDeclarations(body, "a", end)
	require.Len(t, decls, 1)
	assert.Equal(t, "int", decls[0].declaredType())
	assert.Equal(t, "1", strings.TrimSpace(decls[0].val))
}
