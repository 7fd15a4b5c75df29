// Package entity models the runtime objects the exporter regenerates source for.
//
// The exporter never touches a live interpreter. Everything it needs to know about
// a class, function or tuple-like type is read through an Introspector, which is
// implemented by the catalog package (a manifest describing one program's top-level
// scope) and by the goscan package (Go structs read from a Go package).
package entity

import (
	"fmt"
	"strings"
)

// Well-known module and symbol names of the target dialect.
const (
	// BuiltinsModule is the origin of symbols that never need an import.
	BuiltinsModule = "builtins"
	// DefaultMainModule is the top-level pseudo-module of the program being exported.
	DefaultMainModule = "__main__"
	// TypingModule provides the generic constructors (List, Union, ...) and Any.
	TypingModule = "typing"

	// RootBase is the implicit ancestor of every class.
	RootBase = "object"
	// TupleBase is the ancestor that marks fixed-field record types.
	TupleBase = "tuple"
	// NoneTypeName is the declared name of the null type.
	NoneTypeName = "NoneType"
	// NoneLiteral is how the null type is written in a type expression.
	NoneLiteral = "None"
	// AnyName is the open type used for properties without an annotation.
	AnyName = "Any"
	// RecordBase is the base written for regenerated tuple-like records.
	RecordBase = "NamedTuple"
	// ConstructorName is the member the runtime calls to initialize instances.
	ConstructorName = "__init__"
)

// Ref is an opaque handle to one runtime object known to an Introspector.
// Refs are comparable and stable for the lifetime of the introspector.
type Ref string

// Flags are the category bits an introspector reports for an object.
type Flags struct {
	Class    bool
	Callable bool
	Module   bool
	Builtin  bool
}

func (f Flags) String() string {
	var parts []string
	if f.Class {
		parts = append(parts, "class")
	}
	if f.Callable {
		parts = append(parts, "callable")
	}
	if f.Module {
		parts = append(parts, "module")
	}
	if f.Builtin {
		parts = append(parts, "builtin")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Annotation is one declared name → type pair. Order of a []Annotation is the
// declaration order.
type Annotation struct {
	Name string
	Type Descriptor
}

// Binding is a name in a function body bound to a global object.
type Binding struct {
	Name string
	Ref  Ref
}

// References are the closure variables of a function, split the way the runtime
// splits them.
type References struct {
	// Globals are module-level objects the body refers to, in first-use order.
	Globals []Binding
	// Nonlocals are variables captured from an enclosing function scope.
	Nonlocals []string
	// Builtins are builtin names the body refers to.
	Builtins []string
	// Unbound are names the body uses that resolve nowhere, typically attribute names.
	Unbound []string
}

// Member is a callable declared directly in a class body.
type Member struct {
	Name string
	Ref  Ref
}

// Kind is the structural category the dispatcher routes on.
type Kind int

const (
	Unclassifiable Kind = iota
	Structured
	TupleLike
	Callable
)

func (k Kind) String() string {
	switch k {
	case Structured:
		return "class"
	case TupleLike:
		return "record"
	case Callable:
		return "function"
	default:
		return "unclassifiable"
	}
}

// Qualified returns "module.name" for diagnostics.
func Qualified(in Introspector, ref Ref) string {
	name := in.DeclaredName(ref)
	if module, ok := in.OriginModule(ref); ok && module != "" {
		return fmt.Sprintf("%s.%s", module, name)
	}
	return name
}
