package decl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/errors"
)

const vectorXML = `<?xml version="1.0" encoding="UTF-8"?>
<GenerateModel xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="generateMetaModel_Module.xsd">
  <PythonExport
      Father="PyObjectBase"
      Name="VectorPy"
      PythonName="FreeCAD.Vector"
      Twin="Vector3d"
      TwinPointer="Vector3d"
      Include="Base/Vector3D.h"
      FatherInclude="Base/PyObjectBase.h"
      Namespace="Base"
      Constructor="true"
      Delete="true"
      NumberProtocol="true"
      RichCompare="true"
      FatherNamespace="Base">
    <Documentation>
      <Author Licence="LGPL" Name="Juergen Riegel" EMail="FreeCAD@juergen-riegel.net" />
      <UserDocu>
        This class represents a 3D float vector
      </UserDocu>
    </Documentation>
    <Methode Name="add" Const="true">
      <Documentation>
        <UserDocu>add(vector2) -> Base.Vector

Returns the sum of this vector and vector2.</UserDocu>
      </Documentation>
    </Methode>
    <Methode Name="fromString" Static="true" Keyword="true">
      <Documentation><UserDocu>fromString(text)</UserDocu></Documentation>
    </Methode>
    <Attribute Name="Length" ReadOnly="false">
      <Documentation><UserDocu>Gets or sets the length of this vector.</UserDocu></Documentation>
      <Parameter Name="Length" Type="Float" />
    </Attribute>
    <Attribute Name="Tag" ReadOnly="true">
      <Documentation><UserDocu>Opaque tag.</UserDocu></Documentation>
      <Parameter Name="Tag" Type="Mystery" />
    </Attribute>
  </PythonExport>
</GenerateModel>`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(vectorXML))
	require.NoError(t, err)
	require.Len(t, m.Exports, 1)

	e := m.Exports[0]
	assert.Equal(t, "VectorPy", e.Name)
	assert.Equal(t, "Vector", e.ClassName())
	assert.Equal(t, "Base::PyObjectBase", e.FatherName())
	assert.Equal(t, "Base/PyObjectBase.h", e.FatherInclude)
	assert.True(t, e.Constructor)
	assert.True(t, e.RichCompare)
	assert.True(t, e.NumberProtocol)
	assert.False(t, e.Reference)
	assert.Equal(t, "This class represents a 3D float vector", e.Documentation.UserDocu)

	require.Len(t, e.Methods, 2)
	assert.Equal(t, "add", e.Methods[0].Name)
	assert.True(t, e.Methods[0].Const)
	assert.True(t, strings.HasPrefix(e.Methods[0].Documentation.UserDocu, "add(vector2) -> Base.Vector\n"))
	assert.True(t, e.Methods[1].Static)
	assert.True(t, e.Methods[1].Keyword)
	assert.False(t, e.Methods[1].Class)

	require.Len(t, e.Attributes, 2)
	assert.False(t, e.Attributes[0].ReadOnly)
	assert.Equal(t, "float", e.Attributes[0].Parameter.PythonType().String())
	assert.True(t, e.Attributes[1].ReadOnly)
	assert.Equal(t, "typing.Any", e.Attributes[1].Parameter.PythonType().String())
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "Shape", Export{Name: "TopoShapePy", PythonName: "Part.Shape"}.ClassName())
	assert.Equal(t, "Document", Export{Name: "DocumentPy"}.ClassName())
	assert.Equal(t, "Standalone", Export{Name: "XPy", PythonName: "Standalone"}.ClassName())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "VectorPy.xml")
	require.NoError(t, os.WriteFile(path, []byte(vectorXML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Exports, 1)

	_, err = Load(filepath.Join(dir, "MissingPy.xml"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	bad := filepath.Join(dir, "BadPy.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<GenerateModel><PythonExport"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.False(t, errors.IsNotFoundError(err))
}
