// Package registry maps native FreeCAD class names to the Python names they are
// exposed under.
//
// Lookups use, in order: override entries, the embedded classes.yaml table,
// and finally the namespace convention (Base::VectorPy -> FreeCAD.Vector).
package registry

import (
	_ "embed"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/logger"
)

//go:embed classes.yaml
var embeddedTable []byte

// Table is the on-disk shape of a registry file.
type Table struct {
	// Modules maps a C++ namespace to the Python module exposing it.
	Modules map[string]string `yaml:"modules"`

	// Aliases maps short module names used in docs to their importable name.
	Aliases map[string]string `yaml:"aliases,omitempty"`

	// Classes maps native class names ("Part::TopoShapePy") to "Module.Class".
	Classes map[string]string `yaml:"classes"`
}

// Registry resolves native class names. It is read-only after construction.
type Registry struct {
	modules map[string]string
	aliases map[string]string
	classes map[string]string
	// byClass indexes classes by their unqualified native name.
	byClass map[string]string
	known   map[string]struct{}

	warned *util.OnceSet
	log    *zap.SugaredLogger
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	// unknownWarned is shared by all registries so a name is reported once per run.
	unknownWarned util.OnceSet
)

// Default returns the registry built from the embedded table.
func Default() *Registry {
	defaultOnce.Do(func() {
		table, err := ParseTable(embeddedTable)
		if err != nil {
			panic(errors.Wrap(err, "embedded class table is invalid"))
		}
		defaultRegistry = New(table)
	})
	return defaultRegistry
}

// ParseTable decodes a registry table from YAML.
func ParseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrap(err, "failed to parse class table YAML")
	}
	return &table, nil
}

// LoadTable reads a registry table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.NewNotFoundError("registry file %s does not exist", path),
				"set registry_file to an existing YAML file or leave it empty",
			)
		}
		return nil, errors.Wrapf(err, "failed to read registry file %s", path)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid registry file %s", path)
	}
	return table, nil
}

// New builds a registry from one or more tables; later tables win.
func New(tables ...*Table) *Registry {
	r := &Registry{
		modules: make(map[string]string),
		aliases: make(map[string]string),
		classes: make(map[string]string),
		byClass: make(map[string]string),
		known:   make(map[string]struct{}),
		warned:  &unknownWarned,
		log:     logger.ComponentLogger("registry"),
	}
	for _, t := range tables {
		r.merge(t)
	}
	return r
}

// WithOverrides returns a copy of r with the entries of t taking precedence.
func (r *Registry) WithOverrides(t *Table) *Registry {
	out := New(r.table(), t)
	out.warned = r.warned
	return out
}

func (r *Registry) table() *Table {
	t := &Table{
		Modules: make(map[string]string, len(r.modules)),
		Aliases: make(map[string]string, len(r.aliases)),
		Classes: make(map[string]string, len(r.classes)),
	}
	for k, v := range r.modules {
		t.Modules[k] = v
	}
	for k, v := range r.aliases {
		t.Aliases[k] = v
	}
	for k, v := range r.classes {
		t.Classes[k] = v
	}
	return t
}

func (r *Registry) merge(t *Table) {
	if t == nil {
		return
	}
	for k, v := range t.Modules {
		r.modules[k] = v
	}
	for k, v := range t.Aliases {
		r.aliases[k] = v
	}

	natives := make([]string, 0, len(t.Classes))
	for native := range t.Classes {
		natives = append(natives, native)
	}
	sort.Strings(natives)

	// Within one table the first namespace in sort order owns a bare name
	// (App::DocumentPy over Gui::DocumentPy); a later table replaces it.
	claimed := make(map[string]struct{})
	for _, native := range natives {
		qualified := t.Classes[native]
		r.classes[native] = qualified
		r.known[qualified] = struct{}{}

		bare := lastSegment(native)
		if _, ok := claimed[bare]; !ok {
			claimed[bare] = struct{}{}
			r.byClass[bare] = qualified
		}
	}
}

// FromPointer resolves a native construction expression to "Module.Class".
//
// Allocation and wrapper syntax, template arguments, pointer and const
// decorations and constructor arguments are stripped first. An unknown name
// yields "" and is warned about once per process.
//
//	FromPointer("new Base::VectorPy(new Base::Vector3d(v))") == "FreeCAD.Vector"
func (r *Registry) FromPointer(cType string) string {
	name := StripPointer(cType)
	if name == "" {
		return ""
	}

	if q, ok := r.classes[name]; ok {
		return q
	}
	if !strings.Contains(name, "::") {
		if q, ok := r.byClass[name]; ok {
			return q
		}
	}
	if q := r.byConvention(name); q != "" {
		return q
	}

	if r.warned.First(name) {
		r.log.Warnw("Unknown native class", logger.FieldPointer, name)
	}
	return ""
}

// StripPointer reduces a construction expression to its bare native class token.
func StripPointer(cType string) string {
	s := strings.TrimSpace(cType)
	for _, prefix := range []string{"Py::asObject(", "new ", "const "} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	if i := strings.IndexAny(s, "(<"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(strings.TrimRight(s, "*& "))
	s = strings.TrimSpace(strings.TrimPrefix(s, "const "))
	return strings.TrimPrefix(s, "::")
}

// byConvention handles Namespace::NamePy style names.
func (r *Registry) byConvention(name string) string {
	parts := strings.Split(name, "::")
	if len(parts) != 2 || !util.IsIdentifier(parts[0]) || !util.IsIdentifier(parts[1]) {
		return ""
	}
	ns, class := parts[0], parts[1]
	if !strings.HasSuffix(class, "Py") || class == "Py" {
		return ""
	}

	module, ok := r.modules[ns]
	if !ok {
		module = ns
	}
	return module + "." + strings.TrimSuffix(class, "Py")
}

// IsImportable reports whether qualified names a class listed in the table,
// i.e. one reachable with a plain import of its module.
func (r *Registry) IsImportable(qualified string) bool {
	_, ok := r.known[qualified]
	return ok
}

// Aliased rewrites a short module prefix to its importable module name.
//
//	Aliased("App.Document") == "FreeCAD.Document"
func (r *Registry) Aliased(name string) string {
	mod, rest, found := strings.Cut(name, ".")
	if alias, ok := r.aliases[mod]; ok {
		if !found {
			return alias
		}
		return alias + "." + rest
	}
	return name
}

// ClassName returns the last dotted segment of a qualified name.
//
//	ClassName("FreeCAD.Units.Quantity") == "Quantity"
func ClassName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// ModuleName returns everything before the last dotted segment, or "".
//
//	ModuleName("qtpy.QtWidgets.QWidget") == "qtpy.QtWidgets"
func ModuleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[:i]
	}
	return ""
}

func lastSegment(native string) string {
	if i := strings.LastIndex(native, "::"); i >= 0 {
		return native[i+2:]
	}
	return native
}
