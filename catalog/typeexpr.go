package catalog

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

// NameResolver maps a (possibly dotted) name in a type expression to a ref.
type NameResolver func(name string) (entity.Ref, error)

// ParseType parses a type expression such as "Dict[str, List[Vec]] | None".
// Names may be dotted, subscripted, joined with '|' or quoted as forward
// references.
func ParseType(expr string, resolve NameResolver) (entity.Descriptor, error) {
	p := &typeParser{resolve: resolve, expr: expr}
	text := strings.TrimSpace(expr)
	if text == "" {
		return entity.Descriptor{}, p.errorf("empty type expression")
	}
	p.src = []byte(text)
	root, err := parsePython(p.src)
	if err != nil {
		return entity.Descriptor{}, errors.Wrapf(err, "type %q", expr)
	}
	if root.HasError() {
		return entity.Descriptor{}, p.errorf("syntax error")
	}
	if root.NamedChildCount() != 1 {
		return entity.Descriptor{}, p.errorf("expected a single type expression")
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return entity.Descriptor{}, p.errorf("expected a single type expression")
	}
	return p.convert(stmt.NamedChild(0))
}

type typeParser struct {
	src     []byte
	resolve NameResolver
	expr    string
}

func (p *typeParser) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Newf(format, args...), "type %q", p.expr)
}

func (p *typeParser) convert(n *sitter.Node) (entity.Descriptor, error) {
	switch n.Type() {
	case "none":
		return p.build(entity.NoneLiteral, nil)

	case "identifier", "attribute":
		name, ok := p.dotted(n)
		if !ok {
			return entity.Descriptor{}, p.errorf("expected a type name, got %q", n.Content(p.src))
		}
		return p.build(name, nil)

	case "subscript":
		value := n.ChildByFieldName("value")
		name, ok := p.dotted(value)
		if value != nil && value.Type() == "none" {
			name, ok = entity.NoneLiteral, true
		}
		if !ok {
			return entity.Descriptor{}, p.errorf("expected a type name, got %q", n.Content(p.src))
		}
		var args []entity.Descriptor
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if sameNode(c, value) || c.Type() == "comment" {
				continue
			}
			d, err := p.convert(c)
			if err != nil {
				return entity.Descriptor{}, err
			}
			args = append(args, d)
		}
		return p.build(name, args)

	case "binary_operator":
		var members []entity.Descriptor
		for _, operand := range p.unionOperands(n) {
			if operand.Type() == "binary_operator" {
				op := operand.ChildByFieldName("operator")
				return entity.Descriptor{}, p.errorf("unsupported operator %q", op.Content(p.src))
			}
			d, err := p.convert(operand)
			if err != nil {
				return entity.Descriptor{}, err
			}
			members = append(members, d)
		}
		return entity.Union(members...), nil

	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return p.convert(n.NamedChild(0))
		}

	case "string":
		if body, ok := stringLiteral(n, p.src); ok {
			return ParseType(body, p.resolve)
		}
	}
	return entity.Descriptor{}, p.errorf("expected a type name, got %q", n.Content(p.src))
}

// unionOperands flattens "A | B | C" in written order. A binary operator other
// than '|' is returned as an operand for the caller to reject.
func (p *typeParser) unionOperands(n *sitter.Node) []*sitter.Node {
	op := n.ChildByFieldName("operator")
	if n.Type() != "binary_operator" || op == nil || op.Type() != "|" {
		return []*sitter.Node{n}
	}
	left := p.unionOperands(n.ChildByFieldName("left"))
	return append(left, p.unionOperands(n.ChildByFieldName("right"))...)
}

func (p *typeParser) dotted(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "identifier":
		return n.Content(p.src), true
	case "attribute":
		obj, ok := p.dotted(n.ChildByFieldName("object"))
		attr := n.ChildByFieldName("attribute")
		if !ok || attr == nil {
			return "", false
		}
		return obj + "." + attr.Content(p.src), true
	}
	return "", false
}

func (p *typeParser) build(name string, args []entity.Descriptor) (entity.Descriptor, error) {
	switch name {
	case entity.NoneLiteral:
		if len(args) > 0 {
			return entity.Descriptor{}, p.errorf("None takes no arguments")
		}
		return entity.NoneType(), nil
	case "List", "list":
		if name == "list" && len(args) == 0 {
			break
		}
		return p.arity(entity.Descriptor{Ctor: entity.CtorList, Args: args}, name, 0, 1)
	case "Tuple", "tuple":
		if name == "tuple" && len(args) == 0 {
			break
		}
		return entity.Descriptor{Ctor: entity.CtorTuple, Args: args}, nil
	case "Union":
		return entity.Descriptor{Ctor: entity.CtorUnion, Args: args}, nil
	case "Optional":
		return p.arity(entity.Descriptor{Ctor: entity.CtorOptional, Args: args}, name, 1, 1)
	case "Dict", "dict":
		if name == "dict" && len(args) == 0 {
			break
		}
		return p.arity(entity.Descriptor{Ctor: entity.CtorDict, Args: args}, name, 0, 2)
	}

	ref, err := p.resolve(name)
	if err != nil {
		return entity.Descriptor{}, err
	}
	if len(args) == 0 {
		return entity.Leaf(ref), nil
	}
	return entity.Generic(ref, args...), nil
}

// arity accepts either no arguments or exactly want; min 1 forbids the bare form.
func (p *typeParser) arity(d entity.Descriptor, name string, min, want int) (entity.Descriptor, error) {
	n := len(d.Args)
	if (n == 0 && min == 0) || n == want {
		return d, nil
	}
	return entity.Descriptor{}, p.errorf("%s takes %d argument(s), got %d", name, want, n)
}
