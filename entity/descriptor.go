package entity

import "strings"

// Ctor is the parametric constructor at the root of a Descriptor.
type Ctor int

const (
	// CtorNone marks a leaf, or a generic whose base is an ordinary symbol.
	CtorNone Ctor = iota
	CtorList
	CtorTuple
	CtorUnion
	CtorOptional
	CtorDict
)

// VocabularyName is the name the constructor is imported under from the typing module.
func (c Ctor) VocabularyName() string {
	switch c {
	case CtorList:
		return "List"
	case CtorTuple:
		return "Tuple"
	case CtorUnion:
		return "Union"
	case CtorOptional:
		return "Optional"
	case CtorDict:
		return "Dict"
	default:
		return ""
	}
}

// Descriptor is a type annotation tree. A descriptor with no Args is a leaf and
// names exactly one symbol, or the null type when None is set.
type Descriptor struct {
	Ctor   Ctor
	Symbol Ref
	None   bool
	Args   []Descriptor
}

// Leaf returns a descriptor naming one symbol.
func Leaf(symbol Ref) Descriptor {
	return Descriptor{Symbol: symbol}
}

// NoneType returns the null-type leaf.
func NoneType() Descriptor {
	return Descriptor{None: true}
}

// List returns List[elem].
func List(elem Descriptor) Descriptor {
	return Descriptor{Ctor: CtorList, Args: []Descriptor{elem}}
}

// Tuple returns Tuple[elems...].
func Tuple(elems ...Descriptor) Descriptor {
	return Descriptor{Ctor: CtorTuple, Args: elems}
}

// Union returns Union[members...], keeping member order.
func Union(members ...Descriptor) Descriptor {
	return Descriptor{Ctor: CtorUnion, Args: members}
}

// Optional returns Optional[inner].
func Optional(inner Descriptor) Descriptor {
	return Descriptor{Ctor: CtorOptional, Args: []Descriptor{inner}}
}

// Dict returns Dict[key, value].
func Dict(key, value Descriptor) Descriptor {
	return Descriptor{Ctor: CtorDict, Args: []Descriptor{key, value}}
}

// Generic returns base[args...] for a base that is not part of the typing vocabulary.
func Generic(base Ref, args ...Descriptor) Descriptor {
	return Descriptor{Symbol: base, Args: args}
}

// IsLeaf reports whether d has no children.
func (d Descriptor) IsLeaf() bool {
	return d.Ctor == CtorNone && len(d.Args) == 0
}

// String renders a debug form using raw refs, not resolved names.
func (d Descriptor) String() string {
	var sb strings.Builder
	d.write(&sb)
	return sb.String()
}

func (d Descriptor) write(sb *strings.Builder) {
	switch {
	case d.None:
		sb.WriteString(NoneLiteral)
		return
	case d.Ctor != CtorNone:
		sb.WriteString(d.Ctor.VocabularyName())
	default:
		sb.WriteString(string(d.Symbol))
	}
	if len(d.Args) == 0 {
		return
	}
	sb.WriteByte('[')
	for i, arg := range d.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		arg.write(sb)
	}
	sb.WriteByte(']')
}
