// Package decl loads the XML declaration files (*Py.xml) that describe the
// Python-visible surface of a native class.
package decl

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/pytype"
)

// Model is the root GenerateModel element.
type Model struct {
	XMLName xml.Name `xml:"GenerateModel"`
	Exports []Export `xml:"PythonExport"`
}

// Export declares one Python class backed by a native twin.
type Export struct {
	Name            string `xml:"Name,attr"`
	PythonName      string `xml:"PythonName,attr"`
	Twin            string `xml:"Twin,attr"`
	TwinPointer     string `xml:"TwinPointer,attr"`
	Include         string `xml:"Include,attr"`
	Namespace       string `xml:"Namespace,attr"`
	Father          string `xml:"Father,attr"`
	FatherInclude   string `xml:"FatherInclude,attr"`
	FatherNamespace string `xml:"FatherNamespace,attr"`

	Constructor    bool `xml:"Constructor,attr"`
	Delete         bool `xml:"Delete,attr"`
	RichCompare    bool `xml:"RichCompare,attr"`
	NumberProtocol bool `xml:"NumberProtocol,attr"`
	Reference      bool `xml:"Reference,attr"`
	Initialization bool `xml:"Initialization,attr"`

	Documentation Documentation `xml:"Documentation"`
	Methods       []Method      `xml:"Methode"`
	Attributes    []Attribute   `xml:"Attribute"`
}

// Documentation holds the user-facing and developer notes of an element.
type Documentation struct {
	UserDocu      string `xml:"UserDocu"`
	DeveloperDocu string `xml:"DeveloperDocu"`
}

// Method is a Methode element.
type Method struct {
	Name          string        `xml:"Name,attr"`
	Const         bool          `xml:"Const,attr"`
	Keyword       bool          `xml:"Keyword,attr"`
	NoArgs        bool          `xml:"NoArgs,attr"`
	Static        bool          `xml:"Static,attr"`
	Class         bool          `xml:"Class,attr"`
	Documentation Documentation `xml:"Documentation"`
}

// Attribute is an Attribute element; it becomes a Python property.
type Attribute struct {
	Name          string        `xml:"Name,attr"`
	ReadOnly      bool          `xml:"ReadOnly,attr"`
	Documentation Documentation `xml:"Documentation"`
	Parameter     Parameter     `xml:"Parameter"`
}

// Parameter carries the declared type of an attribute.
type Parameter struct {
	Name string `xml:"Name,attr"`
	Type string `xml:"Type,attr"`
}

// parameterTypes maps declared parameter types to Python.
var parameterTypes = map[string]pytype.Type{
	"Boolean":  pytype.Bool,
	"Int":      pytype.Int,
	"Long":     pytype.Int,
	"Float":    pytype.Float,
	"String":   pytype.Str,
	"Object":   pytype.Object,
	"List":     pytype.List,
	"Dict":     pytype.Dict,
	"Tuple":    pytype.Tuple,
	"Callable": pytype.Literal("typing.Callable"),
	"Complex":  pytype.Literal("complex"),
	"Module":   pytype.Literal("types.ModuleType"),
	"Char":     pytype.Str,
}

// PythonType maps the declared type to a Python type; unknown types are Any.
func (p Parameter) PythonType() pytype.Type {
	if t, ok := parameterTypes[p.Type]; ok {
		return t
	}
	return pytype.Any
}

// ClassName is the Python class name: the last segment of PythonName, or the
// declared name without its Py suffix.
func (e Export) ClassName() string {
	if e.PythonName != "" {
		if i := strings.LastIndexByte(e.PythonName, '.'); i >= 0 {
			return e.PythonName[i+1:]
		}
		return e.PythonName
	}
	return strings.TrimSuffix(e.Name, "Py")
}

// FatherName is the native name of the parent export, qualified by its
// namespace when one is declared.
func (e Export) FatherName() string {
	if e.FatherNamespace != "" && !strings.Contains(e.Father, "::") {
		return e.FatherNamespace + "::" + e.Father
	}
	return e.Father
}

// Parse decodes a declaration document.
func Parse(r io.Reader) (*Model, error) {
	var m Model
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to decode declaration")
	}
	for i := range m.Exports {
		m.Exports[i].trim()
	}
	return &m, nil
}

// Load reads and decodes the declaration file at path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("declaration %s does not exist", path)
		}
		return nil, errors.Wrapf(err, "failed to read declaration %s", path)
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid declaration %s", path)
	}
	return m, nil
}

func (e *Export) trim() {
	e.Documentation.trim()
	for i := range e.Methods {
		e.Methods[i].Documentation.trim()
	}
	for i := range e.Attributes {
		e.Attributes[i].Documentation.trim()
	}
}

func (d *Documentation) trim() {
	d.UserDocu = strings.TrimSpace(d.UserDocu)
	d.DeveloperDocu = strings.TrimSpace(d.DeveloperDocu)
}
