package entity

// Introspector gives read access to the declared structure of runtime objects.
// Implementations answer for every Ref they hand out, including builtins,
// externals and module objects reachable from an entity's references.
type Introspector interface {
	// MainModule is the name of the top-level pseudo-module whose objects are
	// exported as siblings rather than imported.
	MainModule() string

	// DeclaredName is the object's own name (a class or function name).
	DeclaredName(ref Ref) string

	// OriginModule is the module the object was declared in, if it has one.
	OriginModule(ref Ref) (string, bool)

	// Package is the dotted import path of a module object.
	Package(ref Ref) (string, bool)

	Flags(ref Ref) Flags

	// DeclaredAnnotations are the class-level property annotations of a class, or
	// the parameter and return annotations of a function ("return" last).
	DeclaredAnnotations(ref Ref) []Annotation

	// SourceText is the object's source, or an error when it cannot be retrieved.
	SourceText(ref Ref) (string, error)

	GlobalReferences(ref Ref) References

	// DeclaredFields is the ordered field list of a tuple-like type.
	DeclaredFields(ref Ref) ([]string, bool)

	// AncestorChain is the method resolution order after ref itself, ending with
	// the root base.
	AncestorChain(ref Ref) []Ref

	// Bases are the direct bases of a class, excluding the root base.
	Bases(ref Ref) []Ref

	// OwnMembers are callables present in the class's own member dictionary;
	// inherited and runtime-synthesized members are not included.
	OwnMembers(ref Ref) []Member

	// Constructor is the class's own initializer, if it declares one.
	Constructor(ref Ref) (Ref, bool)
}

// Classify decides the structural category of ref once, so downstream code
// switches on a closed Kind instead of probing attributes.
func Classify(in Introspector, ref Ref) Kind {
	flags := in.Flags(ref)
	switch {
	case flags.Module:
		return Unclassifiable
	case flags.Class:
		if _, ok := in.DeclaredFields(ref); ok && hasTupleAncestor(in, ref) {
			return TupleLike
		}
		return Structured
	case flags.Callable:
		return Callable
	default:
		return Unclassifiable
	}
}

// IsBuiltin reports whether ref lives in the builtin scope.
func IsBuiltin(in Introspector, ref Ref) bool {
	if in.Flags(ref).Builtin {
		return true
	}
	module, ok := in.OriginModule(ref)
	return ok && module == BuiltinsModule
}

// IsNoneType reports whether ref is the null type.
func IsNoneType(in Introspector, ref Ref) bool {
	return IsBuiltin(in, ref) && in.DeclaredName(ref) == NoneTypeName
}

func hasTupleAncestor(in Introspector, ref Ref) bool {
	for _, ancestor := range in.AncestorChain(ref) {
		if IsBuiltin(in, ancestor) && in.DeclaredName(ancestor) == TupleBase {
			return true
		}
	}
	return false
}
