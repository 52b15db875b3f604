package rettype

import (
	"regexp"
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/scan"
)

var (
	returnRe      = regexp.MustCompile(`\breturn\s+([^;]+);|\bPy_Return\s*;`)
	throwRe       = regexp.MustCompile(`throw\s+Py::(\w+)\(([^;]*)\);`)
	setErrorRe    = regexp.MustCompile(`\bPyErr_(?:SetString|Format)\(([^;]+)\);`)
	exceptionName = regexp.MustCompile(`^[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*$`)
)

// exceptionTable maps native exception objects to Python exception names.
var exceptionTable = map[string]string{
	"Base::PyExc_FC_GeneralError":         "FreeCAD.Base.FreeCADError",
	"Base::PyExc_FC_FreeCADAbort":         "FreeCAD.Base.FreeCADAbort",
	"Base::PyExc_FC_XMLBaseException":     "FreeCAD.Base.XMLBaseException",
	"Base::PyExc_FC_XMLParseException":    "FreeCAD.Base.XMLParseException",
	"Base::PyExc_FC_XMLAttributeError":    "FreeCAD.Base.XMLAttributeError",
	"Base::PyExc_FC_UnknownProgramOption": "FreeCAD.Base.UnknownProgramOption",
	"Base::PyExc_FC_BadFormatError":       "FreeCAD.Base.BadFormatError",
	"Base::PyExc_FC_BadGraphError":        "FreeCAD.Base.BadGraphError",
	"Base::PyExc_FC_ExpressionError":      "FreeCAD.Base.ExpressionError",
	"Base::PyExc_FC_ParserError":          "FreeCAD.Base.ParserError",
	"Base::PyExc_FC_CADKernelError":       "FreeCAD.Base.CADKernelError",
	"PartExceptionOCCError":               "Part.OCCError",
	"PartExceptionOCCDomainError":         "Part.OCCDomainError",
	"PartExceptionOCCRangeError":          "Part.OCCRangeError",
	"PartExceptionOCCConstructionError":   "Part.OCCConstructionError",
	"PartExceptionOCCDimensionError":      "Part.OCCDimensionError",
}

// ExceptionText maps a native exception expression to its Python name.
//
//	ExceptionText("PyExc_ValueError") == "ValueError"
//	ExceptionText("Part::PartExceptionOCCError") == "Part.OCCError"
func ExceptionText(native string) string {
	native = strings.TrimSpace(native)
	if name, ok := exceptionTable[native]; ok {
		return name
	}
	if _, rest, ok := strings.Cut(native, "::"); ok {
		if name, ok := exceptionTable[rest]; ok {
			return name
		}
	}
	if _, rest, ok := strings.Cut(native, "PyExc_FC_"); ok {
		return "FreeCAD.Base." + rest
	}
	if _, rest, ok := strings.Cut(native, "PyExc_"); ok {
		return rest
	}
	return native
}

// ReturnType unions the types of every return statement in the body.
// Statements returning a sentinel are skipped. The result is nil when no
// statement yields a type. Modules mentioned by the result are recorded as
// Required Imports.
func (c *Converter) ReturnType() (pytype.Type, error) {
	var types []pytype.Type
	for _, loc := range returnRe.FindAllStringSubmatchIndex(c.body, -1) {
		expr := "Py_Return"
		if loc[2] >= 0 {
			expr = c.body[loc[2]:loc[3]]
		}
		t, err := c.Resolve(expr, loc[1], false)
		if err != nil {
			if errors.IsInvalidReturnType(err) {
				continue
			}
			return nil, err
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, nil
	}

	result := pytype.NewUnion(types...)
	c.recordImports(result)
	return result, nil
}

// ReturnTypeString renders ReturnType, or "object" when the body returns
// nothing usable.
func (c *Converter) ReturnTypeString() (string, error) {
	t, err := c.ReturnType()
	if err != nil {
		return "", err
	}
	if t == nil {
		return string(pytype.Object), nil
	}
	return t.String(), nil
}

// Exceptions lists, in order of appearance per kind, the Python exceptions the
// body may raise: `throw Py::X(...)` first, then PyErr_SetString/PyErr_Format.
func (c *Converter) Exceptions() []string {
	found := util.NewOrderedSet[string]()
	add := func(name string) {
		if !exceptionName.MatchString(name) {
			c.log.Errorw("Invalid exception value",
				logger.FieldExpression, name,
				logger.FieldClass, c.class,
			)
			return
		}
		found.Add(name)
	}

	for _, m := range throwRe.FindAllStringSubmatch(c.body, -1) {
		kind, args := m[1], m[2]
		if kind == "Exception" && strings.TrimSpace(args) != "" {
			first := scan.SplitTopLevel(args, ',')
			if len(first) > 0 && first[0] != "" && !strings.HasPrefix(first[0], `"`) {
				add(ExceptionText(first[0]))
				continue
			}
		}
		add(kind)
	}

	for _, m := range setErrorRe.FindAllStringSubmatch(c.body, -1) {
		args := scan.SplitTopLevel(m[1], ',')
		if len(args) == 0 {
			continue
		}
		add(ExceptionText(args[0]))
	}
	return found.Items()
}
