package export

import (
	"strings"

	"github.com/teranos/regen/entity"
)

// Resolution is the result of resolving one type descriptor: the type
// expression to write and the imports and deferred siblings needed to use it.
type Resolution struct {
	Expr     string
	Imports  *ImportTable
	Deferred *DeferredSet
}

// Resolve flattens d into a type expression as seen from the module of self.
// Every call starts from empty tables, so resolving the same descriptor twice
// yields the same result.
func Resolve(in entity.Introspector, self entity.Ref, d entity.Descriptor, typingModule string) (Resolution, error) {
	scope := &referenceScope{
		in:       in,
		self:     self,
		imports:  NewImportTable(),
		deferred: NewDeferredSet(),
	}
	r := resolver{scope: scope, typing: typingModule}
	expr, err := r.resolve(d)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Expr: expr, Imports: scope.imports, Deferred: scope.deferred}, nil
}

// resolver walks a descriptor tree, writing import obligations into its scope.
type resolver struct {
	scope  *referenceScope
	typing string
}

func (r resolver) resolve(d entity.Descriptor) (string, error) {
	if d.None {
		return entity.NoneLiteral, nil
	}

	var base string
	if d.Ctor != entity.CtorNone {
		base = d.Ctor.VocabularyName()
		r.scope.imports.Add(r.typing, base)
	} else {
		name, err := r.leaf(d.Symbol)
		if err != nil {
			return "", err
		}
		base = name
	}

	if len(d.Args) == 0 {
		return base, nil
	}

	args := make([]string, 0, len(d.Args))
	for _, arg := range d.Args {
		expr, err := r.resolve(arg)
		if err != nil {
			return "", err
		}
		args = append(args, expr)
	}
	return base + "[" + strings.Join(args, ", ") + "]", nil
}

func (r resolver) leaf(ref entity.Ref) (string, error) {
	in := r.scope.in
	if entity.IsNoneType(in, ref) {
		return entity.NoneLiteral, nil
	}
	name := in.DeclaredName(ref)
	if name == "" {
		name = string(ref)
	}
	_, used, err := r.scope.register(name, ref)
	return used, err
}
