package export

import (
	"strings"

	"github.com/teranos/regen/entity"
)

// indent is one level of block indentation in the generated source.
const indent = "    "

// Renderer is implemented by every concrete unit. RenderBody returns the module
// body without the import block; the ModuleWriter composes the two.
type Renderer interface {
	Base() *Unit
	RenderBody() string
}

// Skip is a member left out of a unit, with the reason.
type Skip struct {
	Member string
	Reason error
}

// Unit is the shared state of one exportable entity. It is built through a fixed
// sequence of resolution steps, rendered once, then discarded.
type Unit struct {
	Entity   entity.Ref
	Name     string
	Kind     entity.Kind
	Module   string
	Imports  *ImportTable
	Deferred *DeferredSet

	// Warnings are degrade-only conditions that still let the unit be written.
	Warnings []error
	Skipped  []Skip

	// self is the entity references are resolved against; a method resolves as
	// its owning class.
	self entity.Ref
}

func newUnit(in entity.Introspector, ref entity.Ref, kind entity.Kind) *Unit {
	name := in.DeclaredName(ref)
	return &Unit{
		Entity:   ref,
		Name:     name,
		Kind:     kind,
		Module:   ModuleName(name),
		Imports:  NewImportTable(),
		Deferred: NewDeferredSet(),
		self:     ref,
	}
}

func (u *Unit) Base() *Unit { return u }

// absorb merges the obligations of a resolved annotation or nested unit.
func (u *Unit) absorb(imports *ImportTable, deferred *DeferredSet) {
	u.Imports.Merge(imports)
	u.Deferred.Merge(deferred)
}

// resolve resolves d from this unit's module and absorbs the result.
func (u *Unit) resolve(b *builder, d entity.Descriptor) (string, error) {
	res, err := Resolve(b.in, u.self, d, b.typing)
	if err != nil {
		return "", err
	}
	u.absorb(res.Imports, res.Deferred)
	return res.Expr, nil
}

// scope returns a reference scope that writes straight into this unit.
func (u *Unit) scope(in entity.Introspector) *referenceScope {
	return &referenceScope{in: in, self: u.self, imports: u.Imports, deferred: u.Deferred}
}

// builder carries what every exporter needs to build a unit.
type builder struct {
	in     entity.Introspector
	typing string
}

// Property is one typed attribute line of a class or record body.
type Property struct {
	Name string
	Type string
}

func writeProperties(sb *strings.Builder, props []Property) {
	for _, p := range props {
		sb.WriteString(indent)
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Type)
		sb.WriteByte('\n')
	}
}

func writeDeclaration(sb *strings.Builder, name string, bases []string) {
	sb.WriteString("class ")
	sb.WriteString(name)
	if len(bases) > 0 {
		sb.WriteByte('(')
		sb.WriteString(strings.Join(bases, ", "))
		sb.WriteByte(')')
	}
	sb.WriteString(":\n")
}

// reindent prefixes every non-blank line of src with one indentation level.
func reindent(src string) string {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n") + "\n"
}
