package export

import (
	"sort"
	"strings"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

// ImportTable maps an origin module to the set of symbols imported from it.
// Symbols from the builtin scope are never recorded.
type ImportTable struct {
	modules map[string]map[string]struct{}
}

// NewImportTable returns an empty table.
func NewImportTable() *ImportTable {
	return &ImportTable{modules: make(map[string]map[string]struct{})}
}

// Add records symbol as imported from module.
func (t *ImportTable) Add(module, symbol string) {
	if module == entity.BuiltinsModule || symbol == "" {
		return
	}
	symbols, ok := t.modules[module]
	if !ok {
		symbols = make(map[string]struct{})
		t.modules[module] = symbols
	}
	symbols[symbol] = struct{}{}
}

// Merge adds every import of other into t.
func (t *ImportTable) Merge(other *ImportTable) {
	if other == nil {
		return
	}
	for module, symbols := range other.modules {
		for symbol := range symbols {
			t.Add(module, symbol)
		}
	}
}

// Has reports whether symbol is imported from module.
func (t *ImportTable) Has(module, symbol string) bool {
	_, ok := t.modules[module][symbol]
	return ok
}

// Modules returns the origin modules in sorted order.
func (t *ImportTable) Modules() []string {
	modules := make([]string, 0, len(t.modules))
	for module := range t.modules {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Symbols returns the symbols imported from module in sorted order.
func (t *ImportTable) Symbols(module string) []string {
	symbols := make([]string, 0, len(t.modules[module]))
	for symbol := range t.modules[module] {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Len is the number of origin modules.
func (t *ImportTable) Len() int {
	return len(t.modules)
}

// DeferredSet is the insertion-ordered set of sibling entities a unit referenced
// and that must be exported after it.
type DeferredSet struct {
	order []entity.Ref
	seen  map[entity.Ref]struct{}
}

// NewDeferredSet returns an empty set.
func NewDeferredSet() *DeferredSet {
	return &DeferredSet{seen: make(map[entity.Ref]struct{})}
}

// Add inserts ref and reports whether it was new.
func (d *DeferredSet) Add(ref entity.Ref) bool {
	if _, ok := d.seen[ref]; ok {
		return false
	}
	d.seen[ref] = struct{}{}
	d.order = append(d.order, ref)
	return true
}

// Merge appends every ref of other not already present.
func (d *DeferredSet) Merge(other *DeferredSet) {
	if other == nil {
		return
	}
	for _, ref := range other.order {
		d.Add(ref)
	}
}

// Contains reports whether ref is in the set.
func (d *DeferredSet) Contains(ref entity.Ref) bool {
	_, ok := d.seen[ref]
	return ok
}

// Refs returns the entities in insertion order.
func (d *DeferredSet) Refs() []entity.Ref {
	out := make([]entity.Ref, len(d.order))
	copy(out, d.order)
	return out
}

// Len is the number of deferred entities.
func (d *DeferredSet) Len() int {
	return len(d.order)
}

// referenceScope resolves global names into import obligations for one unit.
// The tables it writes to are owned by the caller.
type referenceScope struct {
	in       entity.Introspector
	self     entity.Ref
	imports  *ImportTable
	deferred *DeferredSet
}

// register records what is needed to refer to ref by name from the unit being
// built and returns the origin module and the name the generated code uses for
// it. Builtins and the unit's own entity need no import and return an empty
// origin.
func (s *referenceScope) register(name string, ref entity.Ref) (origin, importedAs string, err error) {
	if ref == s.self || entity.IsBuiltin(s.in, ref) {
		return "", name, nil
	}

	main := s.in.MainModule()
	flags := s.in.Flags(ref)

	if flags.Module {
		return s.registerModule(name, ref)
	}

	module, ok := s.in.OriginModule(ref)
	if !ok || module == "" {
		return "", "", errors.Unresolvable(name, "object declares no origin module")
	}

	if module != main {
		s.imports.Add(module, name)
		return module, name, nil
	}

	// A sibling in the top-level scope: export it later under its own module
	s.deferred.Add(ref)
	sibling := ModuleName(s.in.DeclaredName(ref))
	s.imports.Add(sibling, name)
	return sibling, name, nil
}

// registerModule handles module objects bound in the top-level scope. A top-level
// package is imported bare ("import numpy as np"); a submodule is imported from
// its parent ("from scipy import integrate").
func (s *referenceScope) registerModule(alias string, ref entity.Ref) (string, string, error) {
	pkg, ok := s.in.Package(ref)
	if !ok || pkg == "" {
		return "", "", errors.Unresolvable(alias, "module object has no package path")
	}

	main := s.in.MainModule()
	parent, leaf := "", pkg
	if i := strings.LastIndex(pkg, "."); i >= 0 {
		parent, leaf = pkg[:i], pkg[i+1:]
	}

	if parent == "" {
		s.imports.Add(main, aliased(pkg, alias))
		return main, alias, nil
	}

	s.imports.Add(parent, aliased(leaf, alias))
	return parent, alias, nil
}

func aliased(name, alias string) string {
	if alias == "" || alias == name {
		return name
	}
	return name + " as " + alias
}
