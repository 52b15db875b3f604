package stubgen

import (
	"go.uber.org/zap"

	"github.com/teranos/stubgen/internal/util"
	"github.com/teranos/stubgen/klass"
	"github.com/teranos/stubgen/registry"
	"github.com/teranos/stubgen/rettype"
	"github.com/teranos/stubgen/scan"
	"github.com/teranos/stubgen/signature"
)

// scope is the class a member is generated for.
type scope struct {
	desc     *klass.Descriptor
	imports  *util.OrderedSet[string]
	registry *registry.Registry
	log      *zap.SugaredLogger
}

func (sc scope) converter(body string) *rettype.Converter {
	return rettype.New(body,
		rettype.WithClass(sc.desc.Qualified()),
		rettype.WithImports(sc.imports),
		rettype.WithRegistry(sc.registry),
		rettype.WithLogger(sc.log),
	)
}

// signatures discovers candidates in the native function body, when found,
// and merges them with those documented under docName. noArgs marks a
// function that takes no arguments and so parses none.
func (sc scope) signatures(body string, found bool, docName, doc string, noArgs bool, first *signature.Parameter) ([]signature.Signature, error) {
	argNumStart := 0
	if first != nil {
		argNumStart = 1
	}

	var code []signature.Signature
	if found {
		var err error
		conv := sc.converter(body)
		if code, err = signature.FromCode(conv, argNumStart); err != nil {
			return nil, err
		}
		if len(code) == 0 && noArgs {
			if code, err = bare(conv); err != nil {
				return nil, err
			}
		}
	}
	return signature.Merge(code, signature.FromDoc(docName, doc, argNumStart), first), nil
}

// bare is the single parameterless candidate of a function that parses no
// arguments.
func bare(conv *rettype.Converter) ([]signature.Signature, error) {
	ret, err := conv.ReturnType()
	if err != nil {
		return nil, err
	}
	return []signature.Signature{{Return: ret, Exceptions: conv.Exceptions()}}, nil
}

// findBody returns the definition of className::funcName in content.
func findBody(content, className, funcName string) (string, bool) {
	if content == "" {
		return "", false
	}
	return scan.FunctionBody(content, className, funcName)
}
