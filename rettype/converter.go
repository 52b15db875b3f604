// Package rettype infers the Python type returned by C++ expressions found in
// FreeCAD extension sources.
//
// A Converter is bound to one function body. Resolve normalizes an expression
// fragment and runs it through an ordered chain of rule tables (literal,
// builder, domain object, GUI wrapper, method call) before falling back to
// variable search. Every module referenced by a resolved type is recorded in
// the Required Imports set the Converter was given.
package rettype

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/pattern"
	"github.com/teranos/stubgen/pytype"
	"github.com/teranos/stubgen/registry"
)

// maxDepth bounds mutual recursion between rules and variable search.
const maxDepth = 32

// unknownWarned dedups "unknown expression" warnings across converters.
var unknownWarned util.OnceSet

// Converter resolves expressions within a single function body.
type Converter struct {
	body      string
	class     string
	module    string
	imports   *util.OrderedSet[string]
	registry  *registry.Registry
	inner     map[string]InnerTypeResolver
	log       *zap.SugaredLogger
	depth     int
	hasModule bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithClass sets the module-qualified name of the class being generated.
// Its module becomes the current module unless WithModule overrides it.
func WithClass(qualified string) Option {
	return func(c *Converter) {
		c.class = qualified
		if !c.hasModule {
			c.module = registry.ModuleName(qualified)
		}
	}
}

// WithModule sets the Python module being generated.
func WithModule(module string) Option {
	return func(c *Converter) {
		c.module = module
		c.hasModule = true
	}
}

// WithImports sets the Required Imports collector of the generation unit.
func WithImports(imports *util.OrderedSet[string]) Option {
	return func(c *Converter) {
		if imports != nil {
			c.imports = imports
		}
	}
}

// WithRegistry sets the class registry used for class lookups.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Converter) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// WithInnerType registers (or replaces) the element-type refinement for a
// container type such as "list".
func WithInnerType(container string, resolver InnerTypeResolver) Option {
	return func(c *Converter) {
		c.inner[container] = resolver
	}
}

// New creates a Converter over body.
func New(body string, opts ...Option) *Converter {
	c := &Converter{
		body:     body,
		imports:  util.NewOrderedSet[string](),
		registry: registry.Default(),
		inner: map[string]InnerTypeResolver{
			"list":  listInnerType,
			"tuple": tupleInnerType,
			"dict":  dictInnerType,
		},
		log: logger.ComponentLogger("rettype"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Body returns the function body the converter scans.
func (c *Converter) Body() string { return c.body }

// Class returns the qualified name of the class being generated, if any.
func (c *Converter) Class() string { return c.class }

// Imports returns the Required Imports collector.
func (c *Converter) Imports() *util.OrderedSet[string] { return c.imports }

// Registry returns the class registry used for lookups.
func (c *Converter) Registry() *registry.Registry { return c.registry }

// RequireClass resolves a native class name through the registry and records
// its module as a Required Import. Unknown names resolve to Any.
func (c *Converter) RequireClass(native string) pytype.Type {
	return c.classWithModule(native)
}

// Require records the modules referenced by t as Required Imports.
func (c *Converter) Require(t pytype.Type) {
	c.recordImports(t)
}

// query is one resolution request.
type query struct {
	text        string
	end         int
	onlyLiteral bool
}

// resolveFn is the deferred action selected by a rule table.
type resolveFn func(c *Converter, q query) (pytype.Type, error)

// Resolve returns the Python type of fragment. end bounds every backward scan
// of the body (normally the offset just past the statement holding fragment).
//
// Sentinels such as NULL or -1 fail with errors.ErrInvalidReturnType unless
// onlyLiteral is set, in which case they resolve to Any.
func (c *Converter) Resolve(fragment string, end int, onlyLiteral bool) (pytype.Type, error) {
	if c.depth >= maxDepth {
		c.log.Debugw("Resolution depth exceeded", logger.FieldExpression, fragment)
		return pytype.Any, nil
	}
	c.depth++
	defer func() { c.depth-- }()

	if end < 0 || end > len(c.body) {
		end = len(c.body)
	}
	q := query{text: normalize(fragment), end: end, onlyLiteral: onlyLiteral}

	for _, table := range chain {
		fn, matched, err := table.Dispatch(q.text)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		t, err := fn(c, q)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return c.fallback(q)
}

// resolveOrAny resolves fragment and degrades every failure except structural
// ones to Any.
func (c *Converter) resolveOrAny(fragment string, end int, onlyLiteral bool) (pytype.Type, error) {
	t, err := c.Resolve(fragment, end, onlyLiteral)
	if err != nil {
		if errors.IsInvalidReturnType(err) {
			return pytype.Any, nil
		}
		return nil, err
	}
	return t, nil
}

// normalize strips reference sugar and pointer/const decorations.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	for _, wrapper := range []string{"Py::new_reference_to(", "new_reference_to("} {
		if strings.HasPrefix(text, wrapper) && strings.HasSuffix(text, ")") {
			text = strings.TrimSpace(text[len(wrapper) : len(text)-1])
			break
		}
	}
	text = trimKeyword(text, "const")
	text = strings.TrimSpace(strings.TrimPrefix(text, "*"))
	text = strings.TrimSpace(strings.TrimSuffix(text, "*"))
	return strings.TrimSpace(strings.TrimSuffix(text, "&"))
}

// trimKeyword removes a leading keyword that stands as its own word.
func trimKeyword(text, keyword string) string {
	rest, ok := strings.CutPrefix(text, keyword)
	if !ok || (rest != "" && !unicode.IsSpace(rune(rest[0])) && rest[0] != '*') {
		return text
	}
	return strings.TrimSpace(rest)
}

// fallback handles fragments no table claimed.
func (c *Converter) fallback(q query) (pytype.Type, error) {
	text := q.text

	if q.onlyLiteral {
		if text != "" && util.IsIdentifierChain(text) {
			if !strings.HasSuffix(text, "Py") {
				text += "Py"
			}
			return c.classWithModule(text), nil
		}
		return pytype.Any, nil
	}

	if util.IsIdentifier(text) {
		return c.variableType(text, q.end)
	}

	if m, ok := pattern.Wrapped("(", ")")(text); ok {
		return c.Resolve(m.Rest, q.end, q.onlyLiteral)
	}

	if strings.Contains(text, "==") || strings.Contains(text, "!=") {
		return pytype.Bool, nil
	}

	if unknownWarned.First(text) {
		c.log.Warnw("Unknown return expression", logger.FieldExpression, text, logger.FieldClass, c.class)
	}
	return pytype.Any, nil
}

// classWithModule resolves a construction expression through the registry.
// A class equal to the one being generated is returned without recording an
// import.
func (c *Converter) classWithModule(text string) pytype.Type {
	qualified := c.registry.FromPointer(text)
	if qualified == "" {
		return pytype.Any
	}

	name := registry.ClassName(qualified)
	switch {
	case c.class != "" && name == registry.ClassName(c.class):
		return pytype.Literal(c.class)
	case name == "PropertyComplexGeoData":
		// The shared geometry property base cannot be narrowed any further.
		return pytype.NewUnion(
			pytype.Literal("Mesh.MeshObject"),
			pytype.Literal("Part.Shape"),
			pytype.Literal("Points.PointKernel"),
		)
	}

	c.addImport(registry.ModuleName(qualified))
	return pytype.Literal(qualified)
}

func (c *Converter) addImport(module string) {
	if module == "" || module == c.module {
		return
	}
	c.imports.Add(module)
}

// recordImports adds the modules referenced by t.
func (c *Converter) recordImports(t pytype.Type) {
	for _, mod := range pytype.Imports(t) {
		c.addImport(mod)
	}
}
