package signature

import (
	"github.com/teranos/stubgen/pytype"
)

// Merge reconciles code-derived and doc-derived candidates.
//
// A doc candidate matches a code candidate when their parameter counts agree
// and every doc name equals the code name or replaces a weak one. Matched
// pairs merge parameter-wise: code types and defaults win, the doc supplies
// what the code could not tell. Unmatched doc candidates follow and inherit
// the first code candidate's return type and exceptions when they have none.
// first, when non-nil, is prepended to every candidate. Two empty inputs
// produce a single (first, *args, **kwargs) candidate. The result is unique
// by rendering.
func Merge(code, doc []Signature, first *Parameter) []Signature {
	if len(code) == 0 && len(doc) == 0 {
		open := Signature{Params: []Parameter{
			{Name: "args", Kind: VarPositional},
			{Name: "kwargs", Kind: VarKeyword},
		}}
		return []Signature{open.withFirst(first)}
	}

	used := make([]bool, len(doc))
	out := make([]Signature, 0, len(code)+len(doc))

	for _, c := range code {
		merged := c
		for i, d := range doc {
			if used[i] || !matches(c, d) {
				continue
			}
			used[i] = true
			merged = mergePair(c, d)
			break
		}
		out = append(out, merged.withFirst(first))
	}

	for i, d := range doc {
		if used[i] {
			continue
		}
		if len(code) > 0 {
			if d.Return == nil {
				d.Return = code[0].Return
			}
			if len(d.Exceptions) == 0 {
				d.Exceptions = code[0].Exceptions
			}
		}
		out = append(out, d.withFirst(first))
	}
	return Unique(out)
}

// matches reports whether doc describes the same call form as code.
func matches(code, doc Signature) bool {
	cp, dp := withoutFirst(code.Params), withoutFirst(doc.Params)
	if len(cp) != len(dp) {
		return false
	}
	for i := range cp {
		if cp[i].Name != dp[i].Name && !cp[i].WeakName && !dp[i].WeakName {
			return false
		}
	}
	return true
}

func mergePair(code, doc Signature) Signature {
	cp, dp := withoutFirst(code.Params), withoutFirst(doc.Params)
	params := make([]Parameter, len(cp))
	for i := range cp {
		params[i] = mergeParam(cp[i], dp[i])
	}

	out := Signature{Params: params, Return: code.Return, Exceptions: code.Exceptions}
	if out.Return == nil {
		out.Return = doc.Return
	}
	if len(out.Exceptions) == 0 {
		out.Exceptions = doc.Exceptions
	}
	return out
}

func mergeParam(code, doc Parameter) Parameter {
	p := code
	if code.WeakName && !doc.WeakName {
		p.Name = doc.Name
		p.WeakName = false
	}
	if p.Type == nil || pytype.IsAny(p.Type) || p.Type == pytype.Object {
		if doc.Type != nil {
			p.Type = doc.Type
		}
	}
	if p.Default == "..." {
		if doc.Default != "" {
			p.Default = doc.Default
		}
	}
	return p
}

func withoutFirst(params []Parameter) []Parameter {
	if len(params) > 0 && params[0].First {
		return params[1:]
	}
	return params
}
