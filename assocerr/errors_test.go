package assocerr_test

import (
	"fmt"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"martianoff/assocgen/assocerr"
)

func TestErrorWithPosition(t *testing.T) {
	err := assocerr.NewAt(assocerr.TypeCompleteness, token.Position{Filename: "kind.go", Line: 10, Column: 5}, "missing association")
	assert.Equal(t, assocerr.TypeCompleteness, err.Type())
	assert.Equal(t, 10, err.Line)
	assert.Equal(t, 5, err.Column)
	assert.Equal(t, "kind.go", err.FilePath)
	assert.Equal(t, "[CompletenessError] kind.go:10:5 missing association", err.Error())
}

func TestErrorLineOnly(t *testing.T) {
	err := assocerr.NewAt(assocerr.TypeShape, token.Position{Line: 3, Column: 1}, "bad shape")
	assert.Equal(t, "[ShapeError] line 3:1 bad shape", err.Error())
}

func TestErrorNoPosition(t *testing.T) {
	err := assocerr.Newf(assocerr.TypeArity, "function %s has no parameters", "Make")
	assert.Equal(t, 0, err.Line)
	assert.Equal(t, "[ArityError] function Make has no parameters", err.Error())
}

func TestErrorAnchors(t *testing.T) {
	err := assocerr.New(assocerr.TypeAmbiguity, "too many").In("Kind", "KindA", "Level")
	assert.Equal(t, "Kind", err.Union)
	assert.Equal(t, "KindA", err.Variant)
	assert.Equal(t, "Level", err.Function)
}

func TestFatal(t *testing.T) {
	assert.True(t, assocerr.New(assocerr.TypeStructural, "not a union").Fatal())
	assert.False(t, assocerr.New(assocerr.TypeShape, "fields").Fatal())
}

func TestMultiError(t *testing.T) {
	e1 := assocerr.NewAt(assocerr.TypeCompleteness, token.Position{Line: 1, Column: 1}, "error 1")
	e2 := assocerr.NewAt(assocerr.TypeAmbiguity, token.Position{Line: 2, Column: 2}, "error 2")
	multi := &assocerr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, assocerr.TypeCompleteness, multi.Type())
	errMsg := multi.Error()
	assert.Contains(t, errMsg, "2 error(s) occurred:")
	assert.Contains(t, errMsg, "- [CompletenessError] line 1:1 error 1")
	assert.Contains(t, errMsg, "- [AmbiguityError] line 2:2 error 2")
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := &assocerr.MultiError{}
	assert.Equal(t, assocerr.ErrorType("MultiError"), multi.Type())
	assert.True(t, strings.HasPrefix(multi.Error(), "0 error(s) occurred:"))
	assert.NoError(t, multi.ErrOrNil())
}

func TestMultiErrorAddFlattens(t *testing.T) {
	inner := &assocerr.MultiError{}
	inner.Add(assocerr.New(assocerr.TypeShape, "a"))
	inner.Add(assocerr.New(assocerr.TypeArity, "b"))

	outer := &assocerr.MultiError{}
	outer.Add(inner)
	outer.Add(nil)
	outer.Add(assocerr.New(assocerr.TypeWildcardConflict, "c"))

	assert.Len(t, outer.Errors, 3)
	assert.Error(t, outer.ErrOrNil())
}

func TestIsType(t *testing.T) {
	multi := &assocerr.MultiError{}
	multi.Add(assocerr.New(assocerr.TypeShape, "a"))
	wrapped := fmt.Errorf("synthesizing Kind: %w", multi)

	assert.True(t, assocerr.IsType(wrapped, assocerr.TypeShape))
	assert.False(t, assocerr.IsType(wrapped, assocerr.TypeArity))
	assert.True(t, assocerr.IsType(assocerr.New(assocerr.TypeArity, "x"), assocerr.TypeArity))
	assert.False(t, assocerr.IsType(fmt.Errorf("plain"), assocerr.TypeArity))
}

func TestFlatten(t *testing.T) {
	multi := &assocerr.MultiError{}
	multi.Add(assocerr.New(assocerr.TypeShape, "a"))
	multi.Add(assocerr.New(assocerr.TypeArity, "b"))

	assert.Len(t, assocerr.Flatten(multi), 2)
	assert.Len(t, assocerr.Flatten(assocerr.New(assocerr.TypeShape, "a")), 1)
	assert.Nil(t, assocerr.Flatten(nil))
}
