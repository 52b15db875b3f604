package stubgen

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/decl"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/klass"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/registry"
	"github.com/teranos/stubgen/signature"
)

// maxFatherDepth bounds the chain of parent declarations searched for an
// inherited implementation.
const maxFatherDepth = 16

// unit carries what one source file's generation needs.
type unit struct {
	// path is the absolute file path, rel its path below sourceDir.
	path      string
	rel       string
	sourceDir string
	// module is the Python module derived from the file location.
	module     string
	registry   *registry.Registry
	debugNotes bool
	log        *zap.SugaredLogger
}

// readOptional returns the content of path, or "" when it does not exist.
func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}

// xmlSource is one declaration file with its implementation text.
type xmlSource struct {
	path  string
	model *decl.Model
	// imp is the XPyImp.cpp text (XPy.cpp for PyObjectBase); "" when missing.
	imp string
}

func loadXMLSource(path string) (*xmlSource, error) {
	model, err := decl.Load(path)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	imp, err := readOptional(stem + "Imp.cpp")
	if err != nil {
		return nil, err
	}
	if imp == "" {
		if imp, err = readOptional(stem + ".cpp"); err != nil {
			return nil, err
		}
	}
	return &xmlSource{path: path, model: model, imp: imp}, nil
}

// xmlGenerator renders the classes declared in one *Py.xml file.
type xmlGenerator struct {
	unit
	src *xmlSource
	// fathers caches parent declarations by path; nil entries are missing.
	fathers map[string]*xmlSource
}

func generateXML(u unit) ([]*classStub, error) {
	src, err := loadXMLSource(u.path)
	if err != nil {
		return nil, err
	}
	g := &xmlGenerator{unit: u, src: src, fathers: make(map[string]*xmlSource)}

	var out []*classStub
	for _, e := range src.model.Exports {
		stub, err := g.class(e)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate %s", e.Name)
		}
		if stub != nil {
			out = append(out, stub)
		}
	}
	return out, nil
}

func (g *xmlGenerator) class(e decl.Export) (*classStub, error) {
	module := registry.ModuleName(g.registry.Aliased(e.PythonName))
	if module == "" {
		module = g.module
	}
	if module == "" {
		g.log.Debugw("Declaration outside any module", logger.FieldClass, e.Name)
		return nil, nil
	}
	imports := util.NewOrderedSet[string]()
	desc, err := klass.FromExport(e, klass.Context{
		Module:   module,
		Registry: g.registry,
		Imports:  imports,
		Log:      g.log,
	})
	if err != nil {
		return nil, err
	}

	stub := newClassStub(desc, imports, g.rel)
	sc := scope{
		desc:     desc,
		imports:  imports,
		registry: g.registry,
		log:      logger.ChildLogger(g.log, logger.FieldClass, desc.Qualified()),
	}

	var notes []string
	if desc.Importable {
		notes = append(notes, "This class can be imported.")
	}
	notes = append(notes, e.Documentation.UserDocu)
	if g.debugNotes {
		notes = append(notes, debugNote("xml", g.rel))
	}
	stub.doc = joinDoc(notes...)

	if desc.Constructible {
		ctor, ok, err := g.constructor(e, sc)
		if err != nil {
			return nil, errors.Wrap(err, "__init__")
		}
		if ok {
			stub.addMethod(ctor)
		}
	}
	for _, m := range e.Methods {
		method, err := g.method(e, m, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s", m.Name)
		}
		stub.addMethod(method)
	}
	for _, a := range e.Attributes {
		prop, err := g.attribute(e, a, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", a.Name)
		}
		stub.addProperty(prop)
	}
	if e.RichCompare {
		for _, m := range richCompareMethods() {
			stub.add(m)
		}
	}
	if e.NumberProtocol {
		for _, m := range numberProtocolMethods(desc.Name) {
			stub.add(m)
		}
	}
	return stub, nil
}

// constructor stubs __init__ when PyMake constructs an object. PyMake returning
// nothing usable means the class is not meant to be instantiated from Python.
func (g *xmlGenerator) constructor(e decl.Export, sc scope) (methodStub, bool, error) {
	maker, ok := g.inheritedBody(e.Name, "PyMake")
	if !ok {
		return methodStub{}, false, nil
	}
	// PyMake imports are not part of the stub.
	throwaway := sc
	throwaway.imports = util.NewOrderedSet[string]()
	ret, err := throwaway.converter(maker).ReturnType()
	if errors.IsStructural(err) {
		return methodStub{}, false, err
	}
	if err != nil || ret == nil {
		if err != nil {
			sc.log.Debugw("PyMake return type", logger.FieldError, err)
		}
		return methodStub{}, false, nil
	}

	first := signature.FirstParam(false, false)
	body, found := g.inheritedBody(e.Name, "PyInit")
	sigs, err := g.signatures(sc, body, found, sc.desc.Name, e.Documentation.UserDocu, false, first)
	if err != nil {
		if errors.IsStructural(err) {
			return methodStub{}, false, err
		}
		sc.log.Warnw("Failed to infer __init__ signature", logger.FieldError, err)
		sigs = signature.Merge(nil, nil, first)
	}
	for i := range sigs {
		sigs[i].Return = pytype.None
	}
	return methodStub{name: "__init__", sigs: sigs, doc: exceptionsDoc(sigs)}, true, nil
}

func (g *xmlGenerator) method(e decl.Export, m decl.Method, sc scope) (methodStub, error) {
	sc.log = logger.ChildLogger(sc.log, logger.FieldMethod, m.Name)
	first := signature.FirstParam(m.Static, m.Class)

	body, found := g.inheritedBody(e.Name, m.Name)
	sigs, err := g.signatures(sc, body, found, m.Name, m.Documentation.UserDocu, m.NoArgs, first)
	if err != nil {
		if errors.IsStructural(err) {
			return methodStub{}, err
		}
		sc.log.Warnw("Failed to infer signature", logger.FieldError, err)
		sigs = signature.Merge(nil, nil, first)
	}

	notes := []string{m.Documentation.UserDocu, exceptionsDoc(sigs)}
	if g.debugNotes {
		notes = append(notes, debugNote("xml", g.rel))
	}
	return methodStub{
		name:        util.ToPythonIdent(m.Name),
		sigs:        sigs,
		doc:         joinDoc(notes...),
		static:      m.Static,
		classMethod: m.Class,
	}, nil
}

// signatures is scope.signatures, except that a declaration without an
// implementation file yields only the first parameter.
func (g *xmlGenerator) signatures(sc scope, body string, found bool, docName, doc string, noArgs bool, first *signature.Parameter) ([]signature.Signature, error) {
	if g.src.imp == "" {
		var params []signature.Parameter
		if first != nil {
			params = append(params, *first)
		}
		return []signature.Signature{{Params: params}}, nil
	}
	return sc.signatures(body, found, docName, doc, noArgs, first)
}

func (g *xmlGenerator) attribute(e decl.Export, a decl.Attribute, sc scope) (propertyStub, error) {
	p := propertyStub{name: a.Name, readOnly: a.ReadOnly}

	if body, ok := g.inheritedBody(e.Name, "get"+a.Name); ok {
		t, err := sc.converter(body).ReturnType()
		switch {
		case errors.IsStructural(err):
			return propertyStub{}, err
		case err != nil:
			sc.log.Debugw("Getter return type", logger.FieldVariable, a.Name, logger.FieldError, err)
		case t != nil && !pytype.IsAny(t):
			p.typ = t
		}
	}
	if p.typ == nil {
		p.typ = a.Parameter.PythonType()
	}

	notes := []string{a.Documentation.UserDocu}
	if g.debugNotes {
		notes = append(notes, debugNote("xml", g.rel))
	}
	p.doc = joinDoc(notes...)
	return p, nil
}

// inheritedBody finds className::funcName in the implementation, then in the
// implementations of the declared parent classes.
func (g *xmlGenerator) inheritedBody(className, funcName string) (string, bool) {
	if body, ok := findBody(g.src.imp, className, funcName); ok {
		return body, true
	}

	src := g.src
	for depth := 0; depth < maxFatherDepth; depth++ {
		father := g.father(src)
		if father == nil {
			return "", false
		}
		for _, e := range father.model.Exports {
			if body, ok := findBody(father.imp, e.Name, funcName); ok {
				return body, true
			}
		}
		src = father
	}
	return "", false
}

// father loads the declaration of the first export's parent class.
func (g *xmlGenerator) father(src *xmlSource) *xmlSource {
	if len(src.model.Exports) == 0 {
		return nil
	}
	include := src.model.Exports[0].FatherInclude
	if include == "" {
		return nil
	}
	path := filepath.Join(g.sourceDir, strings.TrimSuffix(include, filepath.Ext(include))+".xml")
	if cached, ok := g.fathers[path]; ok {
		return cached
	}

	father, err := loadXMLSource(path)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			g.log.Warnw("Cannot load parent declaration", logger.FieldFile, path, logger.FieldError, err)
		}
		father = nil
	}
	g.fathers[path] = father
	return father
}
