package export

import (
	"strings"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

// ClassUnit regenerates a structured type: at most one base, typed
// properties, and the methods declared directly on the class.
type ClassUnit struct {
	*Unit
	Bases      []string
	Properties []Property
	Methods    []*FunctionUnit
}

// BuildClass runs the inheritance, properties and methods steps for ref.
func BuildClass(in entity.Introspector, ref entity.Ref, typingModule string) (*ClassUnit, error) {
	b := &builder{in: in, typing: typingModule}
	c := &ClassUnit{Unit: newUnit(in, ref, entity.Structured)}

	if err := c.resolveInheritance(b); err != nil {
		return nil, err
	}
	if err := c.resolveProperties(b); err != nil {
		return nil, err
	}
	if err := c.resolveMethods(b); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveInheritance accepts zero or one direct base. Several bases degrade to
// none with a warning.
func (c *ClassUnit) resolveInheritance(b *builder) error {
	bases := b.in.Bases(c.Entity)
	switch len(bases) {
	case 0:
		return nil
	case 1:
		_, name, err := c.scope(b.in).register(b.in.DeclaredName(bases[0]), bases[0])
		if err != nil {
			return errors.Wrapf(err, "base of %s", c.Name)
		}
		c.Bases = []string{name}
		return nil
	default:
		names := make([]string, len(bases))
		for i, base := range bases {
			names[i] = entity.Qualified(b.in, base)
		}
		c.Warnings = append(c.Warnings, errors.UnsupportedInheritance(c.Name, names))
		return nil
	}
}

// resolveProperties seeds the table from the declared annotations, then adds
// constructor-assigned attributes not already covered, typed Any.
func (c *ClassUnit) resolveProperties(b *builder) error {
	seen := make(map[string]struct{})
	for _, a := range b.in.DeclaredAnnotations(c.Entity) {
		if _, ok := seen[a.Name]; ok {
			continue
		}
		expr, err := c.resolve(b, a.Type)
		if err != nil {
			return errors.Wrapf(err, "property %s of %s", a.Name, c.Name)
		}
		seen[a.Name] = struct{}{}
		c.Properties = append(c.Properties, Property{Name: a.Name, Type: expr})
	}

	ctor, ok := b.in.Constructor(c.Entity)
	if !ok {
		return nil
	}
	for _, name := range b.in.GlobalReferences(ctor).Unbound {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		c.Imports.Add(b.typing, entity.AnyName)
		c.Properties = append(c.Properties, Property{Name: name, Type: entity.AnyName})
	}
	return nil
}

// resolveMethods wraps each own method through the function path. Methods with
// no source or with closures are skipped; anything else that fails fails the class.
func (c *ClassUnit) resolveMethods(b *builder) error {
	for _, m := range b.in.OwnMembers(c.Entity) {
		method, err := b.function(m.Ref, c.Entity)
		if err != nil {
			if errors.IsAny(err, errors.ErrSourceUnavailable, errors.ErrUnsupportedClosure) {
				c.Skipped = append(c.Skipped, Skip{Member: m.Name, Reason: err})
				continue
			}
			return errors.Wrapf(err, "method %s of %s", m.Name, c.Name)
		}
		c.Methods = append(c.Methods, method)
		c.absorb(method.Imports, method.Deferred)
	}
	return nil
}

func (c *ClassUnit) RenderBody() string {
	var sb strings.Builder
	writeDeclaration(&sb, c.Name, c.Bases)
	writeProperties(&sb, c.Properties)
	for i, m := range c.Methods {
		if i > 0 || len(c.Properties) > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(reindent(m.Source))
	}
	if len(c.Properties) == 0 && len(c.Methods) == 0 {
		sb.WriteString(indent + "pass\n")
	}
	return sb.String()
}
