package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across regen.
// Use these constants instead of raw strings to ensure consistency.
const (
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Export units
	FieldEntity  = "entity"
	FieldKind    = "kind"
	FieldModule  = "module"
	FieldMember  = "member"
	FieldSymbol  = "symbol"
	FieldOrigin  = "origin"
	FieldPath    = "path"
	FieldCatalog = "catalog"

	// Outcomes
	FieldError    = "error"
	FieldCount    = "count"
	FieldDeferred = "deferred"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	exp := export.New(cat, opts, export.WithLogger(logger.ComponentLogger("export")))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	runLogger := logger.ChildLogger(base, logger.FieldRunID, summary.RunID)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
