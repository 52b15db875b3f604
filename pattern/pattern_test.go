package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/errors"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		pred      Predicate
		in        string
		wantOK    bool
		wantShape Shape
		wantValue string
		wantRest  string
	}{
		{name: "exact hit", pred: Exact("NULL", "nullptr"), in: "nullptr", wantOK: true, wantShape: ShapeExact, wantValue: "nullptr", wantRest: "nullptr"},
		{name: "exact miss", pred: Exact("NULL"), in: "NULL2"},
		{name: "prefix first listed wins", pred: Prefix("Py::", "Py::Long"), in: "Py::Long(1)", wantOK: true, wantShape: ShapePrefix, wantValue: "Py::", wantRest: "Long(1)"},
		{name: "suffix", pred: Suffix("->c_str()"), in: "name->c_str()", wantOK: true, wantShape: ShapeSuffix, wantValue: "->c_str()", wantRest: "name"},
		{name: "contains", pred: Contains("Py_True"), in: "x ? Py_True : Py_False", wantOK: true, wantShape: ShapeContains, wantValue: "Py_True", wantRest: "x ? Py_True : Py_False"},
		{name: "wrapped", pred: Wrapped("(", ")"), in: "(a + b)", wantOK: true, wantShape: ShapeWrapped, wantValue: "()", wantRest: "a + b"},
		{name: "wrapped rejects split groups", pred: Wrapped("(", ")"), in: "(a) + (b)"},
		{name: "identifier", pred: Identifier(), in: "result", wantOK: true, wantShape: ShapeIdentifier, wantValue: "result", wantRest: "result"},
		{name: "identifier rejects calls", pred: Identifier(), in: "result()"},
		{name: "when", pred: When(func(s string) bool { return len(s) == 3 }), in: "abc", wantOK: true, wantShape: ShapeCustom, wantValue: "abc", wantRest: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.pred(tt.in)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantShape, m.Shape)
			assert.Equal(t, tt.in, m.Text)
			assert.Equal(t, tt.wantValue, m.Value)
			assert.Equal(t, tt.wantRest, m.Rest)
		})
	}
}

func TestAll(t *testing.T) {
	upperPy := All(Suffix("Py"), When(func(s string) bool { return s[0] >= 'A' && s[0] <= 'Z' }))

	m, ok := upperPy("VectorPy")
	require.True(t, ok)
	assert.Equal(t, ShapeSuffix, m.Shape)
	assert.Equal(t, "Vector", m.Rest)

	_, ok = upperPy("vectorPy")
	assert.False(t, ok)

	_, ok = All()("anything")
	assert.False(t, ok)
}

func TestTableDispatch(t *testing.T) {
	table := Table[string]{
		{Name: "sentinel", When: Exact("NULL"), Then: func(Match) (string, error) { return "", errors.ErrInvalidReturnType }},
		{Name: "bool", When: Prefix("Py::Boolean"), Then: Fixed("bool")},
		{Name: "broad", When: Prefix("Py::"), Then: Fixed("object")},
		{Name: "strip", When: Suffix("->c_str()"), Then: func(m Match) (string, error) { return "str:" + m.Rest, nil }},
	}

	got, matched, err := table.Dispatch("Py::Boolean(x > 0)")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "bool", got, "earlier rule shadows a broader later rule")

	got, matched, err = table.Dispatch("Py::Long(1)")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "object", got)

	got, _, err = table.Dispatch("s->c_str()")
	require.NoError(t, err)
	assert.Equal(t, "str:s", got)

	_, matched, err = table.Dispatch("NULL")
	assert.True(t, matched)
	assert.True(t, errors.IsInvalidReturnType(err))

	got, matched, err = table.Dispatch("unknown")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, got)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "prefix", ShapePrefix.String())
	assert.Equal(t, "wrapped", ShapeWrapped.String())
	assert.Equal(t, "none", ShapeNone.String())
}
