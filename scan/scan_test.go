package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "simple", in: "a, b ,c", want: []string{"a", "b", "c"}},
		{name: "nested brackets", in: "f(a, b), g[1, 2], {x, y}", want: []string{"f(a, b)", "g[1, 2]", "{x, y}"}},
		{name: "comma in string", in: `"a,b", 'c', d`, want: []string{`"a,b"`, "'c'", "d"}},
		{name: "escaped quote", in: `"a\",b", c`, want: []string{`"a\",b"`, "c"}},
		{name: "stops at unopened close", in: "a, b) + c", want: []string{"a", "b"}},
		{name: "trailing separator", in: "a, b,", want: []string{"a", "b"}},
		{name: "block comment", in: "a /* b, c) */, d", want: []string{"a /* b, c) */", "d"}},
		{name: "line comment", in: "a, // it's (b,\nc", want: []string{"a", "// it's (b,\nc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTopLevel(tt.in, ','))
		})
	}
}

func TestArgs(t *testing.T) {
	args := Args(`PyTuple_Pack(2, PyFloat_FromDouble(a), PyFloat_FromDouble(b));`)
	assert.Equal(t, []string{"2", "PyFloat_FromDouble(a)", "PyFloat_FromDouble(b)"}, args)

	assert.Equal(t, []string{`"s|O"`, "&name", "&obj"}, Args(`(  "s|O", &name, &obj )`))
	assert.Nil(t, Args("noCall"))
	assert.Nil(t, Args("f()"))
}

func TestMatchingClose(t *testing.T) {
	text := `f(a, ")", g(b))`
	assert.Equal(t, len(text)-1, MatchingClose(text, 1))
	assert.Equal(t, -1, MatchingClose("f(a", 1))
	assert.Equal(t, -1, MatchingClose("(]", 0))
	assert.Equal(t, -1, MatchingClose("abc", 0))

	commented := "{ // it's }\n x; /* } { */ }"
	assert.Equal(t, len(commented)-1, MatchingClose(commented, 0))
	assert.Equal(t, -1, MatchingClose("{ /* } unterminated", 0))
}

func TestSkipIgnored(t *testing.T) {
	assert.Equal(t, 5, skipIgnored(`"a,b" x`, 0))
	assert.Equal(t, 7, skipIgnored("// note\nx", 0), "stops at the newline")
	assert.Equal(t, 7, skipIgnored("/* a */x", 0))
	assert.Equal(t, 5, skipIgnored("// no", 0))
	assert.Equal(t, 0, skipIgnored("a / b", 0))
	assert.Equal(t, 2, skipIgnored("a / b", 2))
	assert.Equal(t, 0, skipIgnored("/", 0))
}

func TestFindCallAndBlock(t *testing.T) {
	src := `Py::Object x = call(a, (b)); if (y) { z(); { w(); } } tail`

	assert.Equal(t, "call(a, (b))", FindCall(src, 15))
	assert.Equal(t, "if (y) { z(); { w(); } }", FindBlock(src, 29))
	assert.Equal(t, "", FindBlock("no braces", 0))
	assert.Equal(t, "", FindCall(src, -1))
}

func TestFunctionBody(t *testing.T) {
	content := `
PyObject* VectorPy::add(PyObject *args)
{
    if (VectorPy::check(args)) { return nullptr; }
    return new VectorPy(new Base::Vector3d());
}

PyObject* VectorPy::sub(PyObject *args) const
{
    Py_Return;
}

static PyObject* helper(PyObject* self, PyObject* args) {
    return Py::new_reference_to(Py::Long(1));
}
`
	body, ok := FunctionBody(content, "VectorPy", "add")
	require.True(t, ok)
	assert.Contains(t, body, "VectorPy::add(PyObject *args)")
	assert.Contains(t, body, "return new VectorPy")
	assert.NotContains(t, body, "Py_Return")

	body, ok = FunctionBody(content, "VectorPy", "sub")
	require.True(t, ok)
	assert.Contains(t, body, "Py_Return;")

	body, ok = FunctionBody(content, "", "helper")
	require.True(t, ok)
	assert.Contains(t, body, "Py::Long(1)")

	_, ok = FunctionBody(content, "VectorPy", "check")
	assert.False(t, ok, "a call site is not a definition")

	_, ok = FunctionBody(content, "VectorPy", "missing")
	assert.False(t, ok)
}

func TestFunctionBody_Comments(t *testing.T) {
	content := `
// APy::f(PyObject*) { return nullptr; } is replaced below
PyObject* APy::f(PyObject* /*args*/) // it's (mostly) a float
{
    // it's a float, see "g"
    /* } */
    return PyFloat_FromDouble(1.0);
}

PyObject* APy::g(PyObject*)
{
    return PyLong_FromLong(1);
}
`
	body, ok := FunctionBody(content, "APy", "f")
	require.True(t, ok)
	assert.Contains(t, body, "PyFloat_FromDouble(1.0);\n}")
	assert.NotContains(t, body, "is replaced below")
	assert.NotContains(t, body, "APy::g")
	assert.NotContains(t, body, "PyLong_FromLong")

	body, ok = FunctionBody(content, "APy", "g")
	require.True(t, ok)
	assert.Contains(t, body, "PyLong_FromLong(1)")
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "QPushButton", Unquote(`"QPushButton"`))
	assert.Equal(t, "Returns a vector", Unquote(`"Returns " "a vector"`))
	assert.Equal(t, "say \"hi\"\nnext", Unquote(`"say \"hi\"\n" "next"`))
	assert.Equal(t, "pivy.coin", Unquote("  'pivy.coin' "))
	assert.Equal(t, "plain", Unquote("plain"))
}

func TestIsWrapped(t *testing.T) {
	assert.True(t, IsWrapped("(a + b)"))
	assert.True(t, IsWrapped("((a))"))
	assert.False(t, IsWrapped("(a) + (b)"))
	assert.False(t, IsWrapped("a"))
}
