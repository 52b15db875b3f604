package rettype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/pytype"
)

func newTestConverter(t *testing.T, body string, opts ...Option) *Converter {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)
	return New(body, opts...)
}

func resolve(t *testing.T, c *Converter, fragment string) string {
	t.Helper()
	typ, err := c.Resolve(fragment, -1, false)
	require.NoError(t, err)
	return typ.String()
}

func TestResolve_Sentinels(t *testing.T) {
	c := newTestConverter(t, "")
	for _, s := range []string{"0", "-1", "NULL", "nullptr", "0L", " nullptr "} {
		t.Run(s, func(t *testing.T) {
			_, err := c.Resolve(s, -1, false)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidReturnType(err))

			typ, err := c.Resolve(s, -1, true)
			require.NoError(t, err)
			assert.True(t, pytype.IsAny(typ))
		})
	}
}

func TestResolve_Builders(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "typing.Any"},
		{in: "Py::Object()", want: "object"},
		{in: "Py_None", want: "None"},
		{in: "Py::None()", want: "None"},
		{in: "Py::Boolean(x > 0)", want: "bool"},
		{in: "PyBool_FromLong(ok)", want: "bool"},
		{in: "Py::False()", want: "bool"},
		{in: "PyLong_FromLong(v)", want: "int"},
		{in: "Py::Long(static_cast<long>(n))", want: "int"},
		{in: "Py::Float(1.0)", want: "float"},
		{in: "PyFloat_FromDouble(a * b)", want: "float"},
		{in: "Py::List()", want: "list"},
		{in: "PyDict_New()", want: "dict"},
		{in: "Py::Callable(func)", want: "typing.Callable"},
		{in: "PyByteArray_FromStringAndSize(data, n)", want: "bytes"},
		{in: `Py::String("a")`, want: "str"},
		{in: "PyUnicode_FromString(name.c_str())", want: "str"},
		{in: "QString::fromStdString(s)", want: "str"},
		{in: "ok ? Py_True : Py_False", want: "bool"},
		{in: "PyTuple_New(3)", want: "tuple"},
		{in: "Py::new_reference_to(Py::Long(3))", want: "int"},
		{in: "new_reference_to( Py::Float(x) )", want: "float"},
		{in: "PyTuple_Pack(2, PyFloat_FromDouble(a), PyFloat_FromDouble(b))", want: "tuple[float, float]"},
		{in: "Py::TupleN(Py::Long(1), Py::String(s))", want: "tuple[int, str]"},
		{in: `Py_BuildValue("(dd)", a, b)`, want: "tuple[float, float]"},
		{in: `Py_BuildValue("(iO)", n, new Base::VectorPy(v))`, want: "tuple[int, FreeCAD.Vector]"},
		{in: `Py_BuildValue("")`, want: "None"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(t, newTestConverter(t, ""), tt.in))
		})
	}
}

func TestResolve_DomainAndGUI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "getDocumentObjectPtr()", want: "FreeCAD.DocumentObject"},
		{in: "Py::BoundingBox(box)", want: "FreeCAD.BoundBox"},
		{in: "Py::Matrix(mat)", want: "FreeCAD.Matrix"},
		{in: "Py::Rotation(rot)", want: "FreeCAD.Rotation"},
		{in: "Py::Placement(plm)", want: "FreeCAD.Placement"},
		{in: "Py::Vector2d(v)", want: "FreeCAD.Vector2d"},
		{in: "Base::Vector2dPy::create(x, y)", want: "FreeCAD.Vector2d"},
		{in: "Py::Vector(Base::Vector3d(1, 2, 3))", want: "FreeCAD.Vector"},
		{in: "MainWindowPy::createWrapper(mw)", want: "FreeCADGui.MainWindowPy"},
		{in: "Part::shape2pyshape(shape)", want: "Part.Shape"},
		{in: "getShapes<TopoShapeEdgePy>(obj)", want: "list[Part.Edge]"},
		{in: "wrap.fromQObject(obj)", want: "qtpy.QtCore.QObject"},
		{in: "wrap.fromQWidget(w)", want: "qtpy.QtWidgets.QWidget"},
		{in: `wrap.fromQWidget(w, "QPushButton")`, want: "qtpy.QtWidgets.QPushButton"},
		{in: "wrap.fromQWidget(w, typeName)", want: "qtpy.QtWidgets.QWidget"},
		{in: "wrap.fromQIcon(new QIcon(icon))", want: "qtpy.QtGui.QIcon"},
		{in: `Base::Interpreter().createSWIGPointerObj("pivy.coin", "_p_SoSeparator", sep, 1)`, want: "pivy.coin.SoSeparator"},
		{in: `Base::Interpreter().createSWIGPointerObj("other", "_p_Thing", p, 0)`, want: "typing.Any"},
		{in: "PyRun_String(code, Py_file_input, dict, dict)", want: "typing.Any"},
		{in: "name->c_str()", want: "str"},
		{in: "Py::asObject(new Base::VectorPy(v))", want: "FreeCAD.Vector"},
		{in: "new Part::TopoShapeFacePy(new TopoShape(face))", want: "Part.Face"},
		{in: "TopoShapeWirePy", want: "Part.Wire"},
		{in: "(a == b)", want: "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(t, newTestConverter(t, ""), tt.in))
		})
	}
}

func TestResolve_WidgetCastWithTooManyArguments(t *testing.T) {
	c := newTestConverter(t, "")
	_, err := c.Resolve(`wrap.fromQWidget(w, "QLabel", extra)`, -1, false)
	require.Error(t, err)
	assert.True(t, errors.IsStructural(err))
}

func TestResolve_SelfReferenceAddsNoImport(t *testing.T) {
	imports := util.NewOrderedSet[string]()
	c := newTestConverter(t, "return new VectorPy(new Base::Vector3d(v));",
		WithClass("FreeCAD.Vector"), WithImports(imports))

	got, err := c.ReturnTypeString()
	require.NoError(t, err)
	assert.Equal(t, "FreeCAD.Vector", got)
	assert.Zero(t, imports.Len())
}

func TestResolve_OtherModuleRecordsImport(t *testing.T) {
	imports := util.NewOrderedSet[string]()
	c := newTestConverter(t, "return new Part::TopoShapePy(new TopoShape(s));",
		WithClass("FreeCAD.Document"), WithImports(imports))

	got, err := c.ReturnTypeString()
	require.NoError(t, err)
	assert.Equal(t, "Part.Shape", got)
	assert.Equal(t, []string{"Part"}, imports.Items())
}

func TestResolve_ComplexGeoDataIsThreeWayUnion(t *testing.T) {
	imports := util.NewOrderedSet[string]()
	c := newTestConverter(t, "return new App::PropertyComplexGeoData(prop);",
		WithClass("FreeCAD.GeoFeature"), WithImports(imports))

	got, err := c.ReturnTypeString()
	require.NoError(t, err)
	assert.Equal(t, "Mesh.MeshObject | Part.Shape | Points.PointKernel", got)
	assert.Equal(t, []string{"Mesh", "Part", "Points"}, imports.Items())
}

func TestResolve_ThisOutsideClass(t *testing.T) {
	c := newTestConverter(t, "return this;")
	_, err := c.ReturnType()
	require.Error(t, err)
	assert.True(t, errors.IsStructural(err))

	c = newTestConverter(t, "return this;", WithClass("Part.Shape"))
	got, err := c.ReturnTypeString()
	require.NoError(t, err)
	assert.Equal(t, "Part.Shape", got)
}

func TestResolve_UnknownExpressionWarnsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := New("", WithLogger(zap.New(core).Sugar()))

	for i := 0; i < 2; i++ {
		typ, err := c.Resolve("first_mystery() + second_mystery() * 3", -1, false)
		require.NoError(t, err)
		assert.True(t, pytype.IsAny(typ))
	}
	assert.Equal(t, 1, logs.FilterMessage("Unknown return expression").Len())
}

func TestReturnTypeString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "boolean builder",
			body: "PyObject* f(PyObject* args)\n{\n    return Py::Boolean(x > 0);\n}",
			want: "bool",
		},
		{
			name: "tuple pack",
			body: "{\n    return PyTuple_Pack(2, PyFloat_FromDouble(a), PyFloat_FromDouble(b));\n}",
			want: "tuple[float, float]",
		},
		{
			name: "sentinels skipped and results unioned",
			body: "{\n    if (!ok) return nullptr;\n    if (flag) return Py::Long(1);\n    return Py::String(\"a\");\n}",
			want: "int | str",
		},
		{
			name: "duplicates collapse",
			body: "{\n    if (a) return Py::Long(1);\n    return PyLong_FromLong(2);\n}",
			want: "int",
		},
		{
			name: "Py_Return",
			body: "{\n    doWork();\n    Py_Return;\n}",
			want: "None",
		},
		{
			name: "no return statement",
			body: "{\n    doWork();\n}",
			want: "object",
		},
		{
			name: "only sentinels",
			body: "{\n    PyErr_SetString(PyExc_ValueError, \"x\");\n    return NULL;\n}",
			want: "object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestConverter(t, tt.body).ReturnTypeString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExceptions(t *testing.T) {
	body := `{
    throw Py::ValueError("bad");
    throw Py::Exception(Base::PyExc_FC_GeneralError, "x");
    throw Py::Exception("plain");
    PyErr_SetString(PyExc_TypeError, "bad");
    PyErr_SetString(PartExceptionOCCError, "occ");
    PyErr_Format(PyExc_ValueError, "%s", s);
    PyErr_SetString(getError(), "x");
}`
	core, logs := observer.New(zapcore.ErrorLevel)
	c := New(body, WithLogger(zap.New(core).Sugar()))

	assert.Equal(t, []string{
		"ValueError",
		"FreeCAD.Base.FreeCADError",
		"Exception",
		"TypeError",
		"Part.OCCError",
	}, c.Exceptions())
	assert.Equal(t, 1, logs.FilterMessage("Invalid exception value").Len())
}

func TestExceptionText(t *testing.T) {
	assert.Equal(t, "ValueError", ExceptionText("PyExc_ValueError"))
	assert.Equal(t, "FreeCAD.Base.FreeCADError", ExceptionText("Base::PyExc_FC_GeneralError"))
	assert.Equal(t, "FreeCAD.Base.SomethingNew", ExceptionText("Base::PyExc_FC_SomethingNew"))
	assert.Equal(t, "Part.OCCError", ExceptionText("Part::PartExceptionOCCError"))
	assert.Equal(t, "MyError", ExceptionText("MyError"))
}
