package export

import (
	"strings"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

// FunctionUnit re-emits a free function (or a method) from its captured source.
type FunctionUnit struct {
	*Unit
	Source string
}

// BuildFunction captures a standalone function. Missing source and closures
// over enclosing-scope variables fail the unit.
func BuildFunction(in entity.Introspector, ref entity.Ref, typingModule string) (*FunctionUnit, error) {
	b := &builder{in: in, typing: typingModule}
	return b.function(ref, ref)
}

// function builds a unit for ref whose references are resolved as seen from the
// module of owner (the function itself, or the class a method belongs to).
func (b *builder) function(ref, owner entity.Ref) (*FunctionUnit, error) {
	u := &FunctionUnit{Unit: newUnit(b.in, ref, entity.Callable)}
	u.self = owner

	src, err := b.in.SourceText(ref)
	if err != nil {
		return nil, errors.WithDetail(errors.SourceUnavailable(u.Name), err.Error())
	}
	u.Source = Dedent(src)

	if err := u.resolveReferences(b, ref); err != nil {
		return nil, err
	}
	if err := u.resolveAnnotations(b, ref); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *FunctionUnit) resolveReferences(b *builder, ref entity.Ref) error {
	refs := b.in.GlobalReferences(ref)
	if len(refs.Nonlocals) > 0 {
		return errors.UnsupportedClosure(u.Name, refs.Nonlocals)
	}

	scope := u.scope(b.in)
	for _, g := range refs.Globals {
		if _, _, err := scope.register(g.Name, g.Ref); err != nil {
			return errors.Wrapf(err, "function %s", u.Name)
		}
	}
	return nil
}

// resolveAnnotations only collects imports; annotations already appear in the
// captured source.
func (u *FunctionUnit) resolveAnnotations(b *builder, ref entity.Ref) error {
	for _, a := range b.in.DeclaredAnnotations(ref) {
		if _, err := u.resolve(b, a.Type); err != nil {
			return errors.Wrapf(err, "annotation %s of %s", a.Name, u.Name)
		}
	}
	return nil
}

func (u *FunctionUnit) RenderBody() string {
	return strings.TrimRight(u.Source, "\n") + "\n"
}

// Dedent strips the smallest leading-whitespace width found on non-blank lines
// from every line. Blank lines become empty.
func Dedent(src string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	minLeading := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		leading := len(line) - len(strings.TrimLeft(line, " \t"))
		if minLeading < 0 || leading < minLeading {
			minLeading = leading
		}
	}
	if minLeading < 0 {
		minLeading = 0
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = line[minLeading:]
	}
	return strings.Join(lines, "\n")
}
