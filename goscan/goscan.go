// Package goscan reads exported Go structs from a package and presents each as a
// tuple-like record entity, so Go data types can be regenerated as typed records.
package goscan

import (
	"context"
	"go/ast"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

// basicTypes maps Go basic types to builtin names of the target dialect.
var basicTypes = map[string]string{
	"string":  "str",
	"bool":    "bool",
	"int":     "int",
	"int8":    "int",
	"int16":   "int",
	"int32":   "int",
	"int64":   "int",
	"uint":    "int",
	"uint8":   "int",
	"uint16":  "int",
	"uint32":  "int",
	"uint64":  "int",
	"uintptr": "int",
	"byte":    "int",
	"rune":    "int",
	"float32": "float",
	"float64": "float",
}

// qualifiedTypes maps package-qualified Go types. An empty module means a builtin.
var qualifiedTypes = map[string]struct{ module, name string }{
	"time.Time":       {"datetime", "datetime"},
	"time.Duration":   {"", "int"},
	"json.RawMessage": {entity.TypingModule, entity.AnyName},
	"uuid.UUID":       {"uuid", "UUID"},
}

type record struct {
	name   string
	fields []string
	anns   []entity.Annotation
}

type symbol struct {
	name   string
	module string
	flags  entity.Flags
}

// Scanner is an entity.Introspector over the exported structs of one Go package.
type Scanner struct {
	pkg     string
	main    string
	records map[entity.Ref]*record
	symbols map[entity.Ref]symbol
	order   []entity.Ref
}

var _ entity.Introspector = (*Scanner)(nil)

// Load loads the Go package matching pattern and scans its syntax.
func Load(ctx context.Context, pattern string) (*Scanner, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load package %s", pattern)
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found for %s", pattern)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, errors.Newf("package errors: %v", pkg.Errors)
	}
	return FromFiles(pkg.Name, pkg.Syntax), nil
}

// FromFiles scans already-parsed files of one package.
func FromFiles(pkgName string, files []*ast.File) *Scanner {
	s := &Scanner{
		pkg:     pkgName,
		main:    entity.DefaultMainModule,
		records: make(map[entity.Ref]*record),
		symbols: make(map[entity.Ref]symbol),
	}
	s.registerBuiltins()

	structs := make(map[string]*ast.StructType)
	named := make(map[string]ast.Expr)
	var names []string
	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			spec, ok := n.(*ast.TypeSpec)
			if !ok || spec.TypeParams != nil {
				return true
			}
			if st, ok := spec.Type.(*ast.StructType); ok && spec.Name.IsExported() {
				structs[spec.Name.Name] = st
				names = append(names, spec.Name.Name)
				return true
			}
			named[spec.Name.Name] = spec.Type
			return true
		})
	}

	for _, name := range names {
		ref := s.recordRef(name)
		s.order = append(s.order, ref)
		s.records[ref] = &record{name: name}
	}
	for _, name := range names {
		s.fillRecord(s.records[s.recordRef(name)], structs[name], named)
	}
	return s
}

func (s *Scanner) recordRef(name string) entity.Ref {
	return entity.Ref(s.main + "." + name)
}

func (s *Scanner) registerBuiltins() {
	for _, name := range []string{"str", "bool", "int", "float", "bytes", entity.TupleBase, entity.RootBase, entity.NoneTypeName} {
		s.symbols[builtinRef(name)] = symbol{
			name:   name,
			module: entity.BuiltinsModule,
			flags:  entity.Flags{Class: true, Callable: true, Builtin: true},
		}
	}
}

func builtinRef(name string) entity.Ref {
	return entity.Ref(entity.BuiltinsModule + "." + name)
}

func (s *Scanner) external(module, name string) entity.Ref {
	if module == "" {
		return builtinRef(name)
	}
	ref := entity.Ref(module + "." + name)
	if _, ok := s.symbols[ref]; !ok {
		s.symbols[ref] = symbol{name: name, module: module, flags: entity.Flags{Class: true}}
	}
	return ref
}

func (s *Scanner) fillRecord(r *record, st *ast.StructType, named map[string]ast.Expr) {
	for _, field := range st.Fields.List {
		// Embedded fields have no names of their own
		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			name, skip := fieldName(ident.Name, field.Tag)
			if skip {
				continue
			}
			r.fields = append(r.fields, name)
			r.anns = append(r.anns, entity.Annotation{
				Name: name,
				Type: s.convert(field.Type, named, 0),
			})
		}
	}
}

// fieldName prefers the json tag name and falls back to snake_case.
func fieldName(goName string, tag *ast.BasicLit) (string, bool) {
	if tag != nil {
		value := reflect.StructTag(strings.Trim(tag.Value, "`")).Get("json")
		name := strings.Split(value, ",")[0]
		if name == "-" {
			return "", true
		}
		if name != "" {
			return name, false
		}
	}
	return snakeCase(goName), false
}

// snakeCase converts a Go field name to snake_case, keeping acronyms whole
// ("HTTPCode" -> "http_code").
func snakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && runes[i-1] != '_' {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !prevUpper || nextLower {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// maxAliasDepth bounds the walk through named non-struct types.
const maxAliasDepth = 8

// convert maps a Go type expression onto a descriptor.
func (s *Scanner) convert(expr ast.Expr, named map[string]ast.Expr, depth int) entity.Descriptor {
	anyType := entity.Leaf(s.external(entity.TypingModule, entity.AnyName))

	switch t := expr.(type) {
	case *ast.Ident:
		if t.Name == "any" || t.Name == "error" {
			return anyType
		}
		if mapped, ok := basicTypes[t.Name]; ok {
			return entity.Leaf(builtinRef(mapped))
		}
		if ref := s.recordRef(t.Name); s.records[ref] != nil {
			return entity.Leaf(ref)
		}
		if underlying, ok := named[t.Name]; ok && depth < maxAliasDepth {
			return s.convert(underlying, named, depth+1)
		}
		return anyType

	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			if mapped, ok := qualifiedTypes[ident.Name+"."+t.Sel.Name]; ok {
				return entity.Leaf(s.external(mapped.module, mapped.name))
			}
		}
		return anyType

	case *ast.StarExpr:
		return entity.Optional(s.convert(t.X, named, depth))

	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok && t.Len == nil && (ident.Name == "byte" || ident.Name == "uint8") {
			return entity.Leaf(builtinRef("bytes"))
		}
		return entity.List(s.convert(t.Elt, named, depth))

	case *ast.MapType:
		return entity.Dict(s.convert(t.Key, named, depth), s.convert(t.Value, named, depth))

	default:
		return anyType
	}
}

// PackageName is the Go package name that was scanned.
func (s *Scanner) PackageName() string { return s.pkg }

// Lookup returns the ref of an exported struct by its Go name.
func (s *Scanner) Lookup(name string) (entity.Ref, bool) {
	ref := s.recordRef(name)
	_, ok := s.records[ref]
	return ref, ok
}

// Entities returns the scanned structs in source order.
func (s *Scanner) Entities() []entity.Ref {
	return append([]entity.Ref(nil), s.order...)
}

// Names returns the struct names, sorted.
func (s *Scanner) Names() []string {
	names := make([]string, 0, len(s.records))
	for _, r := range s.records {
		names = append(names, r.name)
	}
	sort.Strings(names)
	return names
}

func (s *Scanner) MainModule() string { return s.main }

func (s *Scanner) DeclaredName(ref entity.Ref) string {
	if r, ok := s.records[ref]; ok {
		return r.name
	}
	return s.symbols[ref].name
}

func (s *Scanner) OriginModule(ref entity.Ref) (string, bool) {
	if _, ok := s.records[ref]; ok {
		return s.main, true
	}
	sym, ok := s.symbols[ref]
	return sym.module, ok && sym.module != ""
}

func (s *Scanner) Package(entity.Ref) (string, bool) { return "", false }

func (s *Scanner) Flags(ref entity.Ref) entity.Flags {
	if _, ok := s.records[ref]; ok {
		return entity.Flags{Class: true, Callable: true}
	}
	return s.symbols[ref].flags
}

func (s *Scanner) DeclaredAnnotations(ref entity.Ref) []entity.Annotation {
	if r, ok := s.records[ref]; ok {
		return r.anns
	}
	return nil
}

func (s *Scanner) SourceText(ref entity.Ref) (string, error) {
	return "", errors.Newf("go structs carry no target-language source (%s)", ref)
}

func (s *Scanner) GlobalReferences(entity.Ref) entity.References { return entity.References{} }

func (s *Scanner) DeclaredFields(ref entity.Ref) ([]string, bool) {
	r, ok := s.records[ref]
	if !ok {
		return nil, false
	}
	return r.fields, true
}

func (s *Scanner) AncestorChain(ref entity.Ref) []entity.Ref {
	if _, ok := s.records[ref]; ok {
		return []entity.Ref{builtinRef(entity.TupleBase), builtinRef(entity.RootBase)}
	}
	return nil
}

func (s *Scanner) Bases(ref entity.Ref) []entity.Ref {
	if _, ok := s.records[ref]; ok {
		return []entity.Ref{builtinRef(entity.TupleBase)}
	}
	return nil
}

func (s *Scanner) OwnMembers(entity.Ref) []entity.Member { return nil }

func (s *Scanner) Constructor(entity.Ref) (entity.Ref, bool) { return "", false }
