// Package klass builds Class Descriptors: the name, module, base classes,
// docstring and Qt signals of a Python class exposed by native code.
package klass

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/decl"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/registry"
	"github.com/teranos/stubgen/scan"
)

var (
	initTypeRe  = regexp.MustCompile(`::init_type\([^{;]*\{`)
	classNameRe = regexp.MustCompile(`behaviors\(\)\.name\(\s*"([\w.]+)"\s*\);`)
	classDocRe  = regexp.MustCompile(`behaviors\(\)\.doc\(((?:"(?:[^"\\]|\\.)*"\s*)+)\);`)
	accessRe    = regexp.MustCompile(`\b(?:public|protected|private)\s+(?:virtual\s+)?`)
)

// Descriptor describes one generated Python class.
type Descriptor struct {
	// Name is the Python class name.
	Name string
	// Module is the Python module the class is generated into.
	Module string
	// Bases are module-qualified Python base classes.
	Bases []string
	Doc   string
	// Constructible is set when the class declares a Python constructor.
	Constructible bool
	// Importable is set when the registry lists the class.
	Importable bool
	Signals    []Signal
}

// Qualified returns "Module.Name".
func (d *Descriptor) Qualified() string {
	if d.Module == "" {
		return d.Name
	}
	return d.Module + "." + d.Name
}

// Context carries what class-level processing needs from its generation unit.
type Context struct {
	// Module is the Python module being generated.
	Module string
	// Header is the companion header text; empty when unavailable.
	Header   string
	Registry *registry.Registry
	// Imports is the Required Imports collector of the generation unit.
	Imports *util.OrderedSet[string]
	Log     *zap.SugaredLogger
}

func (ctx *Context) defaults() {
	if ctx.Registry == nil {
		ctx.Registry = registry.Default()
	}
	if ctx.Imports == nil {
		ctx.Imports = util.NewOrderedSet[string]()
	}
	if ctx.Log == nil {
		ctx.Log = logger.ComponentLogger("klass")
	}
}

func (ctx *Context) require(qualified string) {
	if mod := registry.ModuleName(qualified); mod != "" && mod != ctx.Module {
		ctx.Imports.Add(mod)
	}
}

// InitTypeBlocks returns every `X::init_type(...) { ... }` definition in content.
func InitTypeBlocks(content string) []string {
	var out []string
	for _, loc := range initTypeRe.FindAllStringIndex(content, -1) {
		if block := scan.FindBlock(content, loc[0]); block != "" {
			out = append(out, block)
		}
	}
	return out
}

// FromInitType describes the PyCXX class registered by an init_type block.
// It returns nil without error when the block names no class (templates).
func FromInitType(block string, ctx Context) (*Descriptor, error) {
	ctx.defaults()

	name, err := ClassName(block, ctx.Module, ctx.Registry)
	if err != nil || name == "" {
		if name == "" && err == nil {
			ctx.Log.Debugw("init_type block without class name", logger.FieldModule, ctx.Module)
		}
		return nil, err
	}

	d := &Descriptor{Name: name, Module: ctx.Module}
	d.Importable = ctx.Registry.IsImportable(d.Qualified())
	if m := classDocRe.FindStringSubmatch(block); m != nil {
		d.Doc = scan.Unquote(m[1])
	}

	if d.Bases, err = BaseClasses(name, ctx); err != nil {
		return nil, err
	}
	d.Signals = Signals(name, ctx.Header)
	return d, nil
}

// FromExport describes a class declared in an XML declaration file.
func FromExport(e decl.Export, ctx Context) (*Descriptor, error) {
	ctx.defaults()

	d := &Descriptor{
		Name:          e.ClassName(),
		Module:        ctx.Module,
		Doc:           e.Documentation.UserDocu,
		Constructible: e.Constructor,
	}
	if mod := registry.ModuleName(e.PythonName); mod != "" {
		mod = ctx.Registry.Aliased(mod)
		if ctx.Module != "" && mod != ctx.Module {
			return nil, errors.Structuralf("module mismatch: %s declares %s but %s is generated", e.Name, mod, ctx.Module)
		}
		d.Module = mod
		ctx.Module = mod
	}
	d.Importable = ctx.Registry.IsImportable(d.Qualified())

	if e.Father != "" && e.Father != "PyObjectBase" {
		if base := ctx.Registry.FromPointer(e.FatherName()); base != "" {
			ctx.require(base)
			d.Bases = append(d.Bases, base)
		}
	}
	return d, nil
}

// ClassName extracts the Python class name from behaviors().name(...). A name
// qualified by one module must belong to module; deeper qualification is a
// structural error. "" means the block names no class.
func ClassName(block, module string, reg *registry.Registry) (string, error) {
	m := classNameRe.FindStringSubmatch(block)
	if m == nil {
		return "", nil
	}
	name := m[1]

	switch strings.Count(name, ".") {
	case 0:
		return name, nil
	case 1:
		if declared := registry.ModuleName(reg.Aliased(name)); declared != module {
			return "", errors.Structuralf("module mismatch: %s vs %s", module, declared)
		}
		return registry.ClassName(name), nil
	default:
		return "", errors.Structuralf("unexpected class name %q", name)
	}
}

// BaseClasses resolves the Python base classes of className from the class
// declaration in the companion header. Only Python wrapper bases (names ending
// in Py) and QMainWindow are kept; any other Qt base is a structural error.
func BaseClasses(className string, ctx Context) ([]string, error) {
	ctx.defaults()

	native, ok := strings.CutSuffix(className, "Py")
	if !ok || ctx.Header == "" {
		return nil, nil
	}
	var bases []string
	for _, base := range baseList(inheritanceOf(native, ctx.Header)) {
		var qualified string
		switch {
		case base == "QMainWindow":
			qualified = "qtpy.QtWidgets.QMainWindow"
		case strings.HasPrefix(base, "Q"):
			return nil, errors.Structuralf("unknown Qt base class %s of %s", base, className)
		case strings.HasSuffix(base, "Py"):
			qualified = ctx.Registry.FromPointer(base)
		}
		if qualified == "" {
			continue
		}
		ctx.require(qualified)
		bases = append(bases, qualified)
	}
	return bases, nil
}

// inheritanceOf returns the text between "class Name :" and the opening brace
// of its body, brace included.
func inheritanceOf(native, header string) string {
	re := regexp.MustCompile(`class\s+(?:\w+\s+)?` + regexp.QuoteMeta(native) + `\s*:\s*([^{]*\{)`)
	m := re.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return m[1]
}

// baseList splits an inheritance clause into its base class names.
func baseList(inherited string) []string {
	inherited = strings.TrimSuffix(strings.TrimSpace(inherited), "{")
	locs := accessRe.FindAllStringIndex(inherited, -1)

	var out []string
	for i, loc := range locs {
		end := len(inherited)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		base := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(inherited[loc[1]:end]), ","))
		if base != "" {
			out = append(out, base)
		}
	}
	return out
}
