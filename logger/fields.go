package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across stubgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Source locations
	FieldFile   = "file"
	FieldModule = "module"
	FieldClass  = "class"
	FieldMethod = "method"

	// Inference
	FieldExpression = "expression"
	FieldVariable   = "variable"
	FieldType       = "type"
	FieldPointer    = "pointer"

	// Components
	FieldComponent = "component"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount  = "count"
	FieldFailed = "failed"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Converter struct {
//	    log *zap.SugaredLogger
//	}
//
//	func NewConverter() *Converter {
//	    return &Converter{
//	        log: logger.ComponentLogger("rettype"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	fileLogger := logger.ChildLogger(baseLogger, logger.FieldFile, path)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
