// Package errors provides error handling for stubgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for the person running the generator
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadDeclaration(path); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", path)
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrInvalidReturnType) {
//	    // skip this return statement
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinel errors shared across the generator.
// Use these with errors.Is(); wrap them with errors.Wrap() to add context.
var (
	// ErrInvalidReturnType signals that an expression is a "no meaningful value"
	// sentinel (NULL, 0, -1, ...) and the return statement carrying it must be skipped.
	ErrInvalidReturnType = New("invalid return type")

	// ErrStructural marks input that violates a naming convention the generator
	// relies on. The per-file driver skips the file and continues.
	ErrStructural = New("structural inconsistency")

	// ErrNotFound indicates a companion file or declaration does not exist
	ErrNotFound = New("not found")
)

// Structuralf creates an error marked as ErrStructural with a formatted message.
func Structuralf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrStructural)
}

// IsStructural checks if an error is or wraps ErrStructural
func IsStructural(err error) bool {
	return err != nil && Is(err, ErrStructural)
}

// IsInvalidReturnType checks if an error is or wraps ErrInvalidReturnType
func IsInvalidReturnType(err error) bool {
	return err != nil && Is(err, ErrInvalidReturnType)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotFound)
}
