// Package assocerr defines the diagnostics reported while synthesizing
// association functions.
package assocerr

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeStructural       ErrorType = "StructuralError"
	TypeSignatureParse   ErrorType = "SignatureParseError"
	TypeAssociationParse ErrorType = "AssociationParseError"
	TypeCompleteness     ErrorType = "CompletenessError"
	TypeAmbiguity        ErrorType = "AmbiguityError"
	TypeShape            ErrorType = "ShapeError"
	TypeWildcardConflict ErrorType = "WildcardConflictError"
	TypeArity            ErrorType = "ArityError"
)

// AssocError is the interface for all assocgen errors.
type AssocError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for assocgen errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// Error is a diagnostic anchored at the annotation, variant or type that
// caused it.
type Error struct {
	BaseError
	Line     int
	Column   int
	FilePath string

	// Union, Variant and Function name the offending triple. Any of them
	// may be empty when the error is not specific to it.
	Union    string
	Variant  string
	Function string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		if e.FilePath != "" {
			return fmt.Sprintf("[%s] %s:%d:%d %s", e.ErrType, e.FilePath, e.Line, e.Column, e.Msg)
		}
		return fmt.Sprintf("[%s] line %d:%d %s", e.ErrType, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// Fatal reports whether nothing at all can be synthesized for the union.
func (e *Error) Fatal() bool {
	return e.ErrType == TypeStructural
}

// At anchors the error at pos and returns it.
func (e *Error) At(pos token.Position) *Error {
	e.FilePath = pos.Filename
	e.Line = pos.Line
	e.Column = pos.Column
	return e
}

// In records the union, variant and function names the error refers to.
func (e *Error) In(union, variant, function string) *Error {
	e.Union = union
	e.Variant = variant
	e.Function = function
	return e
}

// New creates an error of the given category.
func New(typ ErrorType, msg string) *Error {
	return &Error{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: typ,
		},
	}
}

// Newf creates an error of the given category with a formatted message.
func Newf(typ ErrorType, format string, args ...any) *Error {
	return New(typ, fmt.Sprintf(format, args...))
}

// NewAt creates an error anchored at pos.
func NewAt(typ ErrorType, pos token.Position, msg string) *Error {
	return New(typ, msg).At(pos)
}

// MultiError collects errors from several declared functions.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if ae, ok := m.Errors[0].(AssocError); ok {
			return ae.Type()
		}
	}
	return "MultiError"
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add appends err, flattening nested MultiErrors.
func (m *MultiError) Add(err error) {
	if err == nil {
		return
	}
	var nested *MultiError
	if errors.As(err, &nested) {
		m.Errors = append(m.Errors, nested.Errors...)
		return
	}
	m.Errors = append(m.Errors, err)
}

// ErrOrNil returns m when it holds at least one error.
func (m *MultiError) ErrOrNil() error {
	if m == nil || len(m.Errors) == 0 {
		return nil
	}
	return m
}

// IsType reports whether err, or any error it wraps, has the given type.
func IsType(err error, typ ErrorType) bool {
	var multi *MultiError
	if errors.As(err, &multi) {
		for _, e := range multi.Errors {
			if IsType(e, typ) {
				return true
			}
		}
		return false
	}
	var ae AssocError
	if errors.As(err, &ae) {
		return ae.Type() == typ
	}
	return false
}

// Flatten returns the individual diagnostics contained in err.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	var multi *MultiError
	if errors.As(err, &multi) {
		var out []error
		for _, e := range multi.Errors {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}
