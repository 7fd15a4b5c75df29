// Package catalog describes the top-level scope of one program in a manifest
// file and serves it to the exporter as an entity.Introspector.
//
// Every object reachable from the manifest gets a Ref:
//
//	builtins.int             builtin scope
//	typing.Any               typing fallbacks
//	pathlib.Path             externals ("module.Name")
//	import:np                module objects bound in the top-level scope
//	__main__.Sim             entities of the top-level scope
//	__main__.Sim.step        methods declared on an entity
package catalog

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

type object struct {
	name      string
	module    string
	pkg       string
	flags     entity.Flags
	anns      []entity.Annotation
	source    string
	hasSource bool
	refs      entity.References
	fields    []string
	hasFields bool
	bases     []entity.Ref
	members   []entity.Member
}

// Catalog is a validated manifest. It is read-only after construction.
type Catalog struct {
	main    string
	version *semver.Version
	path    string

	objects map[entity.Ref]*object
	// scope holds the names the manifest declares; fallback the builtin and
	// typing names they may shadow.
	scope    map[string]entity.Ref
	fallback map[string]entity.Ref
	entities []entity.Ref
}

var _ entity.Introspector = (*Catalog)(nil)

// FromManifest validates m and builds the catalog. All validation problems are
// reported together.
func FromManifest(m *Manifest) (*Catalog, error) {
	c := &Catalog{
		main:     m.Main,
		objects:  make(map[entity.Ref]*object),
		scope:    make(map[string]entity.Ref),
		fallback: make(map[string]entity.Ref),
	}
	if c.main == "" {
		c.main = entity.DefaultMainModule
	}

	var errs []error
	v, err := checkVersion(m.Version)
	if err != nil {
		errs = append(errs, err)
	}
	c.version = v

	c.registerBuiltins()
	errs = append(errs, c.declare(m)...)
	defined := make(map[entity.Ref]bool)
	for i := range m.Entities {
		ref := c.entityRef(m.Entities[i].Name)
		if defined[ref] {
			continue
		}
		defined[ref] = true
		errs = append(errs, c.define(&m.Entities[i])...)
	}
	errs = append(errs, c.checkBaseCycles()...)

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		err := errors.Newf("%d problem(s) found:\n  - %s", len(errs), strings.Join(msgs, "\n  - "))
		return nil, errors.InvalidCatalog(err)
	}
	return c, nil
}

// declare registers every top-level name before any reference is resolved.
func (c *Catalog) declare(m *Manifest) []error {
	var errs []error
	bind := func(name string, ref entity.Ref, obj *object) {
		if name == "" {
			errs = append(errs, errors.Newf("%s with an empty name", ref))
			return
		}
		if prev, ok := c.scope[name]; ok {
			errs = append(errs, errors.Newf("duplicate name %q (%s and %s)", name, prev, ref))
			return
		}
		c.scope[name] = ref
		c.objects[ref] = obj
	}

	for _, imp := range m.Imports {
		if imp.Module == "" {
			errs = append(errs, errors.Newf("import %q has no module", imp.Alias))
			continue
		}
		alias := imp.Alias
		if alias == "" {
			alias = imp.Module[strings.LastIndex(imp.Module, ".")+1:]
		}
		bind(alias, entity.Ref("import:"+alias), &object{
			name:  alias,
			pkg:   imp.Module,
			flags: entity.Flags{Module: true},
		})
	}

	for _, ext := range m.Externals {
		flags, err := externalFlags(ext)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ext.Module == "" {
			errs = append(errs, errors.Newf("external %q has no module", ext.Name))
			continue
		}
		bind(ext.Name, entity.Ref(ext.Module+"."+ext.Name), &object{
			name:   ext.Name,
			module: ext.Module,
			flags:  flags,
		})
	}

	for _, spec := range m.Entities {
		var flags entity.Flags
		switch spec.Kind {
		case KindClass, KindRecord:
			flags = entity.Flags{Class: true, Callable: true}
		case KindFunction:
			flags = entity.Flags{Callable: true}
		default:
			errs = append(errs, errors.Newf("entity %q has unknown kind %q (want class, record or function)", spec.Name, spec.Kind))
			continue
		}
		ref := c.entityRef(spec.Name)
		before := len(errs)
		bind(spec.Name, ref, &object{name: spec.Name, module: c.main, flags: flags})
		if len(errs) == before {
			c.entities = append(c.entities, ref)
		}
	}
	return errs
}

func externalFlags(ext External) (entity.Flags, error) {
	switch ext.Kind {
	case "", KindClass:
		return entity.Flags{Class: true, Callable: true}, nil
	case KindFunction:
		return entity.Flags{Callable: true}, nil
	default:
		return entity.Flags{}, errors.Newf("external %q has unknown kind %q", ext.Name, ext.Kind)
	}
}

func (c *Catalog) entityRef(name string) entity.Ref {
	return entity.Ref(c.main + "." + name)
}

// define fills in the structure of one declared entity.
func (c *Catalog) define(spec *EntitySpec) []error {
	ref := c.entityRef(spec.Name)
	obj, ok := c.objects[ref]
	if !ok {
		// Rejected by declare; already reported.
		return nil
	}

	var errs []error
	wrap := func(err error) {
		errs = append(errs, errors.Wrapf(err, "entity %s", spec.Name))
	}

	if spec.Kind == KindRecord {
		obj.bases = append(obj.bases, builtinRef(entity.TupleBase))
		obj.hasFields = true
		obj.fields = append([]string{}, spec.Fields...)
	} else if spec.Fields != nil {
		obj.hasFields = true
		obj.fields = append([]string{}, spec.Fields...)
	}

	for _, base := range spec.Bases {
		if spec.Kind == KindRecord && base == entity.TupleBase {
			continue
		}
		if spec.Kind == KindFunction {
			wrap(errors.Newf("function cannot declare bases"))
			break
		}
		baseRef, err := c.lookupName(base)
		if err != nil {
			wrap(err)
			continue
		}
		if baseRef == builtinRef(entity.RootBase) {
			continue
		}
		if !c.objects[baseRef].flags.Class {
			wrap(errors.Newf("base %q is not a class", base))
			continue
		}
		obj.bases = append(obj.bases, baseRef)
	}

	anns, err := c.annotations(spec.Annotations)
	if err != nil {
		wrap(err)
	}
	obj.anns = anns

	if spec.Source != nil {
		obj.source = *spec.Source
		obj.hasSource = true
	}
	refs, err := c.references(obj.source, spec.Globals, spec.Nonlocals, spec.Unbound)
	if err != nil {
		wrap(err)
	}
	obj.refs = refs

	for _, m := range spec.Members {
		if err := c.defineMember(ref, obj, m); err != nil {
			wrap(err)
		}
	}
	return errs
}

func (c *Catalog) defineMember(owner entity.Ref, obj *object, spec MemberSpec) error {
	if spec.Name == "" {
		return errors.New("member with an empty name")
	}
	ref := entity.Ref(string(owner) + "." + spec.Name)
	if _, ok := c.objects[ref]; ok {
		return errors.Newf("duplicate member %q", spec.Name)
	}

	member := &object{name: spec.Name, module: c.main, flags: entity.Flags{Callable: true}}
	anns, err := c.annotations(spec.Annotations)
	if err != nil {
		return errors.Wrapf(err, "member %s", spec.Name)
	}
	member.anns = anns
	if spec.Source != nil {
		member.source = *spec.Source
		member.hasSource = true
	}
	refs, err := c.references(member.source, spec.Globals, spec.Nonlocals, spec.Unbound)
	if err != nil {
		return errors.Wrapf(err, "member %s", spec.Name)
	}
	member.refs = refs

	c.objects[ref] = member
	obj.members = append(obj.members, entity.Member{Name: spec.Name, Ref: ref})
	return nil
}

func (c *Catalog) annotations(specs []AnnotationSpec) ([]entity.Annotation, error) {
	var anns []entity.Annotation
	for _, a := range specs {
		d, err := ParseType(a.Type, c.lookupName)
		if err != nil {
			return nil, errors.Wrapf(err, "annotation %s", a.Name)
		}
		anns = append(anns, entity.Annotation{Name: a.Name, Type: d})
	}
	return anns, nil
}

// references builds the closure variables of a function body. Explicit globals
// must all resolve; inferred ones are the free names of source that do.
func (c *Catalog) references(source string, globals *[]string, nonlocals []string, unbound *[]string) (entity.References, error) {
	refs := entity.References{Nonlocals: append([]string(nil), nonlocals...)}

	var inferred sourceNames
	if globals == nil || unbound == nil {
		var err error
		if inferred, err = inferNames(source); err != nil {
			return entity.References{}, err
		}
	}

	names := inferred.Globals
	strict := globals != nil
	if strict {
		names = *globals
	}

	for _, name := range names {
		ref, err := c.lookupName(name)
		if err != nil {
			if strict {
				return entity.References{}, errors.Wrapf(err, "global %s", name)
			}
			continue
		}
		if c.objects[ref].flags.Builtin {
			refs.Builtins = append(refs.Builtins, name)
			continue
		}
		refs.Globals = append(refs.Globals, entity.Binding{Name: name, Ref: ref})
	}

	if unbound != nil {
		refs.Unbound = append([]string(nil), (*unbound)...)
	} else {
		refs.Unbound = inferred.Attributes
	}
	return refs, nil
}

// lookupName resolves a name the way the top-level scope would. Dotted names
// reach into an imported module ("np.ndarray") or name a module directly
// ("collections.abc.Sequence") and become implicit externals.
func (c *Catalog) lookupName(name string) (entity.Ref, error) {
	if ref, ok := c.scope[name]; ok {
		return ref, nil
	}
	if ref, ok := c.fallback[name]; ok {
		return ref, nil
	}

	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return "", errors.Unresolvable(name, "not declared in the catalog")
	}
	module, symbol := name[:i], name[i+1:]

	head := module
	rest := ""
	if j := strings.Index(module, "."); j >= 0 {
		head, rest = module[:j], module[j:]
	}
	if ref, ok := c.scope[head]; ok {
		obj := c.objects[ref]
		if !obj.flags.Module {
			return "", errors.Unresolvable(name, head+" is not a module")
		}
		module = obj.pkg + rest
	}

	ref := entity.Ref(module + "." + symbol)
	if _, ok := c.objects[ref]; !ok {
		c.objects[ref] = &object{
			name:   symbol,
			module: module,
			flags:  entity.Flags{Class: true, Callable: true},
		}
	}
	return ref, nil
}

// checkBaseCycles rejects classes that inherit from themselves.
func (c *Catalog) checkBaseCycles() []error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[entity.Ref]int)
	var errs []error

	var visit func(ref entity.Ref, path []string) bool
	visit = func(ref entity.Ref, path []string) bool {
		switch state[ref] {
		case visiting:
			errs = append(errs, errors.Newf("inheritance cycle: %s", strings.Join(append(path, c.objects[ref].name), " -> ")))
			return false
		case done:
			return true
		}
		state[ref] = visiting
		ok := true
		for _, base := range c.objects[ref].bases {
			if !visit(base, append(path, c.objects[ref].name)) {
				ok = false
				break
			}
		}
		state[ref] = done
		return ok
	}

	for _, ref := range c.entities {
		visit(ref, nil)
	}
	return errs
}

// Path is the file the catalog was loaded from, if any.
func (c *Catalog) Path() string { return c.path }

// Version is the manifest schema version.
func (c *Catalog) Version() string {
	if c.version == nil {
		return ""
	}
	return c.version.String()
}

// Lookup returns the ref of an exportable entity by name.
func (c *Catalog) Lookup(name string) (entity.Ref, bool) {
	ref, ok := c.scope[name]
	if !ok {
		return "", false
	}
	module, _ := c.OriginModule(ref)
	return ref, module == c.main
}

// Entities returns the exportable entities in manifest order.
func (c *Catalog) Entities() []entity.Ref {
	return append([]entity.Ref(nil), c.entities...)
}

// Names returns the names of the exportable entities, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entities))
	for _, ref := range c.entities {
		names = append(names, c.objects[ref].name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) get(ref entity.Ref) *object {
	if obj, ok := c.objects[ref]; ok {
		return obj
	}
	return &object{}
}

func (c *Catalog) MainModule() string { return c.main }

func (c *Catalog) DeclaredName(ref entity.Ref) string { return c.get(ref).name }

func (c *Catalog) OriginModule(ref entity.Ref) (string, bool) {
	obj := c.get(ref)
	return obj.module, obj.module != ""
}

func (c *Catalog) Package(ref entity.Ref) (string, bool) {
	obj := c.get(ref)
	return obj.pkg, obj.pkg != ""
}

func (c *Catalog) Flags(ref entity.Ref) entity.Flags { return c.get(ref).flags }

func (c *Catalog) DeclaredAnnotations(ref entity.Ref) []entity.Annotation {
	return c.get(ref).anns
}

func (c *Catalog) SourceText(ref entity.Ref) (string, error) {
	obj := c.get(ref)
	if !obj.hasSource {
		return "", errors.Newf("catalog records no source for %s", ref)
	}
	return obj.source, nil
}

func (c *Catalog) GlobalReferences(ref entity.Ref) entity.References {
	return c.get(ref).refs
}

func (c *Catalog) DeclaredFields(ref entity.Ref) ([]string, bool) {
	obj := c.get(ref)
	return obj.fields, obj.hasFields
}

// AncestorChain linearizes bases depth-first, left to right, dropping repeats
// and ending with the root base.
func (c *Catalog) AncestorChain(ref entity.Ref) []entity.Ref {
	root := builtinRef(entity.RootBase)
	seen := map[entity.Ref]bool{ref: true, root: true}
	var chain []entity.Ref
	var walk func(entity.Ref)
	walk = func(r entity.Ref) {
		for _, base := range c.get(r).bases {
			if seen[base] {
				continue
			}
			seen[base] = true
			chain = append(chain, base)
			walk(base)
		}
	}
	walk(ref)
	if c.get(ref).flags.Class && ref != root {
		chain = append(chain, root)
	}
	return chain
}

func (c *Catalog) Bases(ref entity.Ref) []entity.Ref {
	return append([]entity.Ref(nil), c.get(ref).bases...)
}

func (c *Catalog) OwnMembers(ref entity.Ref) []entity.Member {
	return append([]entity.Member(nil), c.get(ref).members...)
}

func (c *Catalog) Constructor(ref entity.Ref) (entity.Ref, bool) {
	for _, m := range c.get(ref).members {
		if m.Name == entity.ConstructorName {
			return m.Ref, true
		}
	}
	return "", false
}
