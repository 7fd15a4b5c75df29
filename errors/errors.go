// Package errors provides error handling for regen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for user-facing output
//   - Markers so export conditions survive wrapping
//
// Usage:
//
//	// Create a classified export error
//	err := errors.Unresolvable("np", "module object has no package")
//
//	// Wrap with context
//	if err := writer.Write(unit); err != nil {
//	    return errors.Wrap(err, "failed to write module")
//	}
//
//	// Check the condition
//	if errors.Is(err, errors.ErrUnresolvableReference) {
//	    // fail the unit
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
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	CombineErrors = crdb.CombineErrors
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Export conditions. Every error the export engine produces is marked with
// exactly one of these so callers can classify it with errors.Is.
var (
	// ErrUnclassifiableEntity: the entity is not a class, tuple-like type or callable
	ErrUnclassifiableEntity = New("unclassifiable entity")

	// ErrUnresolvableReference: a referenced symbol has no determinable origin module
	ErrUnresolvableReference = New("unresolvable reference")

	// ErrSourceUnavailable: source text cannot be retrieved for a function or method
	ErrSourceUnavailable = New("source unavailable")

	// ErrUnsupportedClosure: a function or method captures a lexical free variable
	ErrUnsupportedClosure = New("unsupported closure")

	// ErrUnsupportedInheritance: a class declares more than one real base
	ErrUnsupportedInheritance = New("unsupported inheritance")

	// ErrDestinationCollision: two distinct entities derive the same destination module
	ErrDestinationCollision = New("destination collision")

	// ErrInvalidCatalog: an entity catalog failed to parse or validate
	ErrInvalidCatalog = New("invalid catalog")
)

// Unclassifiable reports an entity that fits none of the exportable categories.
func Unclassifiable(name string, flags string) error {
	err := Newf("cannot export %s: not a class, tuple-like type or function (flags: %s)", name, flags)
	return Mark(err, ErrUnclassifiableEntity)
}

// Unresolvable reports a symbol whose origin module cannot be determined.
func Unresolvable(symbol string, reason string) error {
	err := Newf("cannot resolve reference %q: %s", symbol, reason)
	err = WithHint(err, "declare the symbol as an import, an external or an entity in the catalog")
	return Mark(err, ErrUnresolvableReference)
}

// SourceUnavailable reports a function or method with no retrievable source text.
func SourceUnavailable(name string) error {
	err := Newf("no source text for %s; it may be generated by the runtime", name)
	return Mark(err, ErrSourceUnavailable)
}

// UnsupportedClosure reports a function or method that captures enclosing-scope variables.
func UnsupportedClosure(name string, vars []string) error {
	err := Newf("%s captures enclosing-scope variables %v that cannot be tracked", name, vars)
	err = WithHint(err, "move the captured values to module scope or pass them as parameters")
	return Mark(err, ErrUnsupportedClosure)
}

// UnsupportedInheritance reports a class with more than one real base.
func UnsupportedInheritance(name string, bases []string) error {
	err := Newf("%s has %d bases %v; exporting it without ancestors", name, len(bases), bases)
	return Mark(err, ErrUnsupportedInheritance)
}

// DestinationCollision reports two entities that map onto one output module.
func DestinationCollision(module string, first, second string) error {
	err := Newf("%s and %s both export to module %q", first, second, module)
	err = WithHint(err, "rename one of the entities so their snake_case names differ")
	return Mark(err, ErrDestinationCollision)
}

// InvalidCatalog marks a catalog parse or validation failure.
func InvalidCatalog(err error) error {
	if err == nil {
		return nil
	}
	return Mark(err, ErrInvalidCatalog)
}
