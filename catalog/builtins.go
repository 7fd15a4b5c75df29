package catalog

import "github.com/teranos/regen/entity"

// builtinTypes are classes of the builtin scope.
var builtinTypes = []string{
	"object", "type", "int", "float", "complex", "bool", "str", "bytes", "bytearray",
	"list", "tuple", "dict", "set", "frozenset", "range", "slice", "memoryview",
	entity.NoneTypeName, "property", "staticmethod", "classmethod", "super",
	"BaseException", "Exception", "ArithmeticError", "AssertionError", "AttributeError",
	"IndexError", "KeyError", "LookupError", "NotImplementedError", "OSError",
	"OverflowError", "RuntimeError", "StopIteration", "TypeError", "ValueError",
	"ZeroDivisionError",
}

// builtinFunctions are callables of the builtin scope.
var builtinFunctions = []string{
	"abs", "all", "any", "callable", "chr", "divmod", "enumerate", "filter", "format",
	"getattr", "hasattr", "hash", "id", "input", "isinstance", "issubclass", "iter",
	"len", "map", "max", "min", "next", "open", "ord", "pow", "print", "repr",
	"reversed", "round", "setattr", "sorted", "sum", "vars", "zip",
}

// typingNames are symbols resolved against the typing module when the catalog
// does not declare them itself.
var typingNames = []string{entity.AnyName, "Callable", "Iterable", "Iterator", "Sequence", "Mapping"}

func builtinRef(name string) entity.Ref {
	return entity.Ref(entity.BuiltinsModule + "." + name)
}

// registerBuiltins adds the builtin scope and the typing fallbacks.
func (c *Catalog) registerBuiltins() {
	for _, name := range builtinTypes {
		ref := builtinRef(name)
		c.objects[ref] = &object{
			name:   name,
			module: entity.BuiltinsModule,
			flags:  entity.Flags{Class: true, Callable: true, Builtin: true},
		}
		c.fallback[name] = ref
	}
	for _, name := range builtinFunctions {
		ref := builtinRef(name)
		c.objects[ref] = &object{
			name:   name,
			module: entity.BuiltinsModule,
			flags:  entity.Flags{Callable: true, Builtin: true},
		}
		c.fallback[name] = ref
	}
	for _, name := range typingNames {
		ref := entity.Ref(entity.TypingModule + "." + name)
		c.objects[ref] = &object{
			name:   name,
			module: entity.TypingModule,
			flags:  entity.Flags{Class: true},
		}
		c.fallback[name] = ref
	}
}
