package stubgen

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/stubgen/internal/util"
)

const indentUnit = "    "

// Module accumulates the classes generated into one Python module.
type Module struct {
	Name string
	// Revision is written into the header when non-empty.
	Revision string

	imports *util.OrderedSet[string]
	classes []string
	names   map[string]string
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:    name,
		imports: util.NewOrderedSet[string](),
		names:   make(map[string]string),
	}
}

// Require records modules the generated text refers to. The module itself and
// empty names are skipped.
func (m *Module) Require(modules ...string) {
	for _, mod := range modules {
		if mod != "" && mod != m.Name {
			m.imports.Add(mod)
		}
	}
}

// AddClass appends a rendered class. A second class with the same name is
// dropped; the returned string names the file that contributed the first one.
func (m *Module) AddClass(name, text, source string) (string, bool) {
	if prev, ok := m.names[name]; ok {
		return prev, false
	}
	m.names[name] = source
	m.classes = append(m.classes, text)
	return source, true
}

// Len returns the number of classes.
func (m *Module) Len() int { return len(m.classes) }

// Path returns the stub file path of the module relative to the output root.
//
//	NewModule("Part.Geom2d").Path() == "Part/Geom2d/__init__.pyi"
func (m *Module) Path() string {
	parts := append(strings.Split(m.Name, "."), "__init__.pyi")
	return filepath.Join(parts...)
}

// Render returns the stub file text.
func (m *Module) Render() string {
	var sb strings.Builder
	sb.WriteString("# Generated by stubgen. Do not edit.\n")
	if m.Revision != "" {
		sb.WriteString("# Source revision: " + m.Revision + "\n")
	}

	imports := m.imports.Items()
	sort.Strings(imports)
	if len(imports) > 0 {
		sb.WriteString("\n")
		for _, mod := range imports {
			sb.WriteString("import " + mod + "\n")
		}
	}

	for _, class := range m.classes {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimRight(class, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// indent prefixes every non-empty line of text with one indentation level.
func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = indentUnit + line
		}
	}
	return strings.Join(lines, "\n")
}

// docstring renders doc as a triple-quoted Python string literal, or "" when
// doc is blank.
//
//	docstring("Returns the length.") == `"""Returns the length."""`
func docstring(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}
	doc = strings.ReplaceAll(doc, `\`, `\\`)
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	if !strings.Contains(doc, "\n") && !strings.HasSuffix(doc, `"`) {
		return `"""` + doc + `"""`
	}
	return "\"\"\"\n" + doc + "\n\"\"\""
}
