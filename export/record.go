package export

import (
	"strings"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

// RecordUnit regenerates a fixed-field tuple-like type as a typed record.
// Methods are never rendered.
type RecordUnit struct {
	*Unit
	Properties []Property
}

// BuildRecord keeps the declared field order exactly and prefers per-field
// annotations over Any.
func BuildRecord(in entity.Introspector, ref entity.Ref, typingModule string) (*RecordUnit, error) {
	b := &builder{in: in, typing: typingModule}
	r := &RecordUnit{Unit: newUnit(in, ref, entity.TupleLike)}

	r.Imports.Add(b.typing, entity.RecordBase)

	annotated := make(map[string]entity.Descriptor)
	for _, a := range in.DeclaredAnnotations(ref) {
		annotated[a.Name] = a.Type
	}

	fields, _ := in.DeclaredFields(ref)
	for _, field := range fields {
		d, ok := annotated[field]
		if !ok {
			r.Imports.Add(b.typing, entity.AnyName)
			r.Properties = append(r.Properties, Property{Name: field, Type: entity.AnyName})
			continue
		}
		expr, err := r.resolve(b, d)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s of %s", field, r.Name)
		}
		r.Properties = append(r.Properties, Property{Name: field, Type: expr})
	}
	return r, nil
}

func (r *RecordUnit) RenderBody() string {
	var sb strings.Builder
	writeDeclaration(&sb, r.Name, []string{entity.RecordBase})
	writeProperties(&sb, r.Properties)
	if len(r.Properties) == 0 {
		sb.WriteString(indent + "pass\n")
	}
	return sb.String()
}
