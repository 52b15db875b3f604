package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("error"), "check the twin header")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "check the twin header", hints[0])
}

func TestInvalidReturnTypeSurvivesWrapping(t *testing.T) {
	err := Wrapf(ErrInvalidReturnType, "return %s", "NULL")

	assert.True(t, IsInvalidReturnType(err))
	assert.False(t, IsStructural(err))
	assert.False(t, IsInvalidReturnType(nil))
}

func TestStructuralf(t *testing.T) {
	err := Structuralf("unexpected class name %q", "A.B.C")

	assert.Equal(t, `unexpected class name "A.B.C"`, err.Error())
	assert.True(t, IsStructural(err))
	assert.True(t, IsStructural(Wrap(err, "PartFeaturePy.xml")))
	assert.False(t, Is(err, ErrNotFound))
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("twin header %s", "Feature.h")

	assert.True(t, IsNotFoundError(err))
	assert.Contains(t, err.Error(), "Feature.h")
	assert.False(t, IsNotFoundError(New("other")))
}
