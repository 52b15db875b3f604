package stubgen

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/klass"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/registry"
	"github.com/teranos/stubgen/scan"
	"github.com/teranos/stubgen/signature"
)

// addMethodRe matches PyCXX method registrations:
//
//	add_varargs_method("getSize", &MyClassPy::getSize, "getSize() -> int");
var addMethodRe = regexp.MustCompile(`\badd_(varargs|keyword|noargs)_method\(\s*"(\w+)"\s*,\s*&?\s*([\w:]+)\s*(?:,\s*((?:"(?:[^"\\]|\\.)*"\s*)+))?\)`)

// generateCpp renders the PyCXX classes registered by init_type blocks in one
// .cpp file.
func generateCpp(u unit) ([]*classStub, error) {
	content, err := readOptional(u.path)
	if err != nil {
		return nil, err
	}
	blocks := klass.InitTypeBlocks(content)
	if len(blocks) == 0 {
		return nil, nil
	}
	header, err := twinHeader(u.path)
	if err != nil {
		return nil, err
	}

	var out []*classStub
	for _, block := range blocks {
		imports := util.NewOrderedSet[string]()
		desc, err := klass.FromInitType(block, klass.Context{
			Module:   u.module,
			Header:   header,
			Registry: u.registry,
			Imports:  imports,
			Log:      u.log,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to describe init_type class")
		}
		if desc == nil {
			continue
		}
		stub, err := cppClass(u, content, block, desc, imports)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate %s", desc.Name)
		}
		out = append(out, stub)
	}
	return out, nil
}

func cppClass(u unit, content, block string, desc *klass.Descriptor, imports *util.OrderedSet[string]) (*classStub, error) {
	stub := newClassStub(desc, imports, u.rel)
	if len(desc.Signals) > 0 {
		imports.Add(registry.ModuleName(klass.SignalType))
	}

	var notes []string
	if desc.Importable {
		notes = append(notes, "This class can be imported.")
	}
	notes = append(notes, desc.Doc)
	if u.debugNotes {
		notes = append(notes, debugNote("pycxx", u.rel))
	}
	stub.doc = joinDoc(notes...)

	sc := scope{
		desc:     desc,
		imports:  imports,
		registry: u.registry,
		log:      logger.ChildLogger(u.log, logger.FieldClass, desc.Qualified()),
	}
	first := signature.FirstParam(false, false)

	for _, m := range addMethodRe.FindAllStringSubmatch(block, -1) {
		kind, name, ref := m[1], m[2], m[3]
		doc := ""
		if m[4] != "" {
			doc = scan.Unquote(m[4])
		}

		className, funcName := "", ref
		if i := strings.LastIndex(ref, "::"); i >= 0 {
			className, funcName = ref[:i], ref[i+2:]
		}
		body, found := findBody(content, className, funcName)
		if !found {
			sc.log.Debugw("Method body not found", logger.FieldMethod, ref)
		}

		msc := sc
		msc.log = logger.ChildLogger(sc.log, logger.FieldMethod, name)
		sigs, err := msc.signatures(body, found, name, doc, kind == "noargs", first)
		if err != nil {
			if errors.IsStructural(err) {
				return nil, errors.Wrapf(err, "method %s", name)
			}
			msc.log.Warnw("Failed to infer signature", logger.FieldError, err)
			sigs = signature.Merge(nil, nil, first)
		}

		notes := []string{doc, exceptionsDoc(sigs)}
		if u.debugNotes {
			notes = append(notes, debugNote("pycxx", u.rel))
		}
		stub.addMethod(methodStub{
			name: util.ToPythonIdent(name),
			sigs: sigs,
			doc:  joinDoc(notes...),
		})
	}
	return stub, nil
}

// twinHeader reads the header declaring the native twin of XPy.cpp: X.h, or
// XPy.h when the twin has a non-standard name. Files not named XPy.cpp have
// no twin.
func twinHeader(path string) (string, error) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	twin, ok := strings.CutSuffix(stem, "Py")
	if !ok {
		return "", nil
	}
	header, err := readOptional(twin + ".h")
	if err != nil || header != "" {
		return header, err
	}
	return readOptional(stem + ".h")
}
