package stubgen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/klass"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/signature"
)

func TestDocstring(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "blank", doc: "  \n", want: ""},
		{name: "single line", doc: "Returns the length.", want: `"""Returns the length."""`},
		{name: "multi line", doc: "a\nb", want: "\"\"\"\na\nb\n\"\"\""},
		{name: "trailing quote", doc: `say "hi"`, want: "\"\"\"\nsay \"hi\"\n\"\"\""},
		{name: "backslash", doc: `C:\dir`, want: `"""C:\\dir"""`},
		{name: "triple quote", doc: `x """ y`, want: `"""x \"\"\" y"""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, docstring(tt.doc))
		})
	}
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "    a\n\n    b", indent("a\n\nb"))
}

func TestModule_Render(t *testing.T) {
	m := NewModule("Part")
	m.Revision = "main@1a2b3c4"
	m.Require("typing", "FreeCAD", "Part", "", "FreeCAD")

	_, added := m.AddClass("Shape", "class Shape:\n    pass\n", "Mod/Part/App/TopoShapePy.xml")
	assert.True(t, added)
	first, added := m.AddClass("Shape", "class Shape:\n    ...\n", "Mod/Part/App/Other.cpp")
	assert.False(t, added)
	assert.Equal(t, "Mod/Part/App/TopoShapePy.xml", first)
	m.AddClass("Face", "class Face(Shape):\n    pass", "Mod/Part/App/TopoShapeFacePy.xml")

	want := `# Generated by stubgen. Do not edit.
# Source revision: main@1a2b3c4

import FreeCAD
import typing


class Shape:
    pass


class Face(Shape):
    pass
`
	assert.Equal(t, want, m.Render())
	assert.Equal(t, 2, m.Len())
}

func TestModule_Path(t *testing.T) {
	assert.Equal(t, filepath.Join("Part", "Geom2d", "__init__.pyi"), NewModule("Part.Geom2d").Path())
	assert.Equal(t, filepath.Join("FreeCAD", "__init__.pyi"), NewModule("FreeCAD").Path())
}

func TestMethodStub_Render(t *testing.T) {
	self := signature.FirstParam(false, false)
	one := signature.Signature{
		Params: []signature.Parameter{*self, {Name: "x", Type: pytype.Int, Kind: signature.PositionalOrKeyword}},
		Return: pytype.Float,
	}
	two := signature.Signature{Params: []signature.Parameter{*self}}

	t.Run("single with doc", func(t *testing.T) {
		m := methodStub{name: "scale", sigs: []signature.Signature{one}, doc: "Scales."}
		assert.Equal(t, "def scale(self, x: int) -> float:\n    \"\"\"Scales.\"\"\"\n", m.render())
	})

	t.Run("overloads", func(t *testing.T) {
		m := methodStub{name: "scale", sigs: []signature.Signature{one, two}}
		want := "@typing.overload\ndef scale(self, x: int) -> float: ...\n" +
			"@typing.overload\ndef scale(self): ...\n"
		assert.Equal(t, want, m.render())
	})

	t.Run("static", func(t *testing.T) {
		m := methodStub{name: "make", sigs: []signature.Signature{{}}, static: true}
		assert.Equal(t, "@staticmethod\ndef make(): ...\n", m.render())
	})

	t.Run("class method", func(t *testing.T) {
		cls := signature.FirstParam(false, true)
		m := methodStub{name: "create", sigs: []signature.Signature{{Params: []signature.Parameter{*cls}}}, classMethod: true}
		assert.Equal(t, "@classmethod\ndef create(cls): ...\n", m.render())
	})
}

func TestPropertyStub_Render(t *testing.T) {
	ro := propertyStub{name: "Length", typ: pytype.Float, readOnly: true}
	assert.Equal(t, "@property\ndef Length(self) -> float: ...\n", ro.render())

	rw := propertyStub{name: "Label", doc: "The label."}
	want := "@property\ndef Label(self) -> typing.Any:\n    \"\"\"The label.\"\"\"\n" +
		"@Label.setter\ndef Label(self, value: typing.Any) -> None: ...\n"
	assert.Equal(t, want, rw.render())
}

func TestClassStub(t *testing.T) {
	desc := &klass.Descriptor{Name: "Face", Module: "Part", Bases: []string{"Part.Shape"}}
	stub := newClassStub(desc, nil, "Mod/Part/App/TopoShapeFacePy.xml")

	assert.Equal(t, "class Face(Part.Shape):\n    pass\n", stub.render())

	sig := signature.Signature{Params: []signature.Parameter{{Name: "v", Type: pytype.Literal("FreeCAD.Vector"), Kind: signature.PositionalOnly}}}
	stub.addMethod(methodStub{name: "a", sigs: []signature.Signature{sig, {}}})
	stub.addProperty(propertyStub{name: "Area", typ: pytype.Param("list", pytype.Literal("Part.Edge")), readOnly: true})

	assert.Equal(t, []string{"typing", "FreeCAD", "Part"}, stub.imports.Items())
}

func TestEmptyMethod(t *testing.T) {
	assert.Equal(t, "def __neg__(self) -> Vector: ...", emptyMethod("__neg__", "Vector", false))
	assert.Equal(t,
		"def __add__(self, other) -> Vector: ...\ndef __radd__(self, other) -> Vector: ...",
		emptyMethod("__add__", "Vector", true, "other"))
	assert.Equal(t,
		"def __pow__(self, power, modulo=None): ...\ndef __rpow__(self, power, modulo=None): ...",
		emptyMethod("__pow__", "", true, "power", "modulo=None"))
}

func TestExceptionsDoc(t *testing.T) {
	sigs := []signature.Signature{
		{Exceptions: []string{"ValueError", "Part.OCCError"}},
		{Exceptions: []string{"ValueError", "TypeError"}},
	}
	assert.Equal(t, "Possible exceptions: (ValueError, Part.OCCError, TypeError).", exceptionsDoc(sigs))
	assert.Empty(t, exceptionsDoc([]signature.Signature{{}}))
}

func TestJoinDoc(t *testing.T) {
	assert.Equal(t, "a\n\nb", joinDoc(" a ", "", "\n", "b"))
	assert.Empty(t, joinDoc())
}

func TestNewClassStub_KeepsImports(t *testing.T) {
	imports := util.NewOrderedSet("qtpy.QtWidgets")
	stub := newClassStub(&klass.Descriptor{Name: "X"}, imports, "x.cpp")
	assert.Same(t, imports, stub.imports)
}
