package catalog

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/teranos/regen/errors"
)

// sourceNames is what a definition's source uses without defining it.
type sourceNames struct {
	// Globals are the names read from the top-level scope, in first-use order.
	Globals []string
	// Attributes are the names assigned through self, in first-assignment order.
	Attributes []string
}

func parsePython(src []byte) (*sitter.Node, error) {
	root, err := sitter.ParseCtx(context.Background(), src, python.GetLanguage())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse python source")
	}
	return root, nil
}

// inferNames parses src and resolves every name it reads against the scopes the
// source itself opens. Parameters, locals, comprehension variables and imported
// names stay local; whatever reaches the top-level scope is a global.
func inferNames(src string) (sourceNames, error) {
	if strings.TrimSpace(src) == "" {
		return sourceNames{}, nil
	}
	data := []byte(dedent(src))
	root, err := parsePython(data)
	if err != nil {
		return sourceNames{}, err
	}
	s := &nameScanner{src: data, attrSeen: make(map[string]struct{})}
	s.visit(root, newScope(nil, false))
	return sourceNames{Globals: s.globals(), Attributes: s.attrs}, nil
}

// dedent removes the indentation common to all non-blank lines, so methods
// captured from inside a class body parse as top-level definitions.
func dedent(src string) string {
	lines := strings.Split(src, "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return src
	}
	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

type scope struct {
	parent *scope
	class  bool
	bound  map[string]struct{}
	// declared holds global (true) and nonlocal (false) statements
	declared map[string]bool
}

func newScope(parent *scope, class bool) *scope {
	return &scope{
		parent:   parent,
		class:    class,
		bound:    make(map[string]struct{}),
		declared: make(map[string]bool),
	}
}

func (sc *scope) bind(name string) { sc.bound[name] = struct{}{} }

// global reports whether name, read in sc, resolves to the top-level scope.
func (sc *scope) global(name string) bool {
	for cur := sc; cur.parent != nil; cur = cur.parent {
		if isGlobal, ok := cur.declared[name]; ok {
			return isGlobal
		}
		// Class bodies are invisible to the functions nested in them
		if cur.class && cur != sc {
			continue
		}
		if _, ok := cur.bound[name]; ok {
			return false
		}
	}
	return true
}

type nameUse struct {
	name  string
	scope *scope
}

type nameScanner struct {
	src      []byte
	uses     []nameUse
	attrs    []string
	attrSeen map[string]struct{}
}

func (s *nameScanner) text(n *sitter.Node) string { return n.Content(s.src) }

func (s *nameScanner) globals() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, u := range s.uses {
		if _, ok := seen[u.name]; ok || !u.scope.global(u.name) {
			continue
		}
		seen[u.name] = struct{}{}
		names = append(names, u.name)
	}
	return names
}

func (s *nameScanner) visit(n *sitter.Node, sc *scope) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		s.uses = append(s.uses, nameUse{name: s.text(n), scope: sc})
	case "comment":
	case "attribute":
		s.visit(n.ChildByFieldName("object"), sc)
	case "keyword_argument":
		s.visit(n.ChildByFieldName("value"), sc)
	case "assignment":
		left := n.ChildByFieldName("left")
		s.selfAttributes(left)
		s.bindTarget(left, sc)
		s.visit(n.ChildByFieldName("type"), sc)
		s.visit(n.ChildByFieldName("right"), sc)
	case "augmented_assignment":
		s.bindTarget(n.ChildByFieldName("left"), sc)
		s.visit(n.ChildByFieldName("right"), sc)
	case "for_statement":
		s.bindTarget(n.ChildByFieldName("left"), sc)
		s.visit(n.ChildByFieldName("right"), sc)
		s.visit(n.ChildByFieldName("body"), sc)
		s.visit(n.ChildByFieldName("alternative"), sc)
	case "named_expression":
		s.bindTarget(n.ChildByFieldName("name"), sc)
		s.visit(n.ChildByFieldName("value"), sc)
	case "as_pattern":
		alias := n.ChildByFieldName("alias")
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); !sameNode(c, alias) {
				s.visit(c, sc)
			}
		}
		s.bindTarget(alias, sc)
	case "with_item":
		// Older grammars carry the target as a field instead of an as_pattern
		alias := n.ChildByFieldName("alias")
		if alias == nil {
			s.children(n, sc)
			return
		}
		s.visit(n.ChildByFieldName("value"), sc)
		s.bindTarget(alias, sc)
	case "except_clause":
		s.exceptClause(n, sc)
	case "import_statement", "import_from_statement":
		s.imports(n, sc)
	case "future_import_statement":
	case "global_statement", "nonlocal_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			sc.declared[s.text(n.NamedChild(i))] = n.Type() == "global_statement"
		}
	case "function_definition":
		if name := n.ChildByFieldName("name"); name != nil {
			sc.bind(s.text(name))
		}
		inner := newScope(sc, false)
		s.parameters(n.ChildByFieldName("parameters"), sc, inner)
		s.visit(n.ChildByFieldName("return_type"), sc)
		s.visit(n.ChildByFieldName("body"), inner)
	case "lambda":
		inner := newScope(sc, false)
		s.parameters(n.ChildByFieldName("parameters"), sc, inner)
		s.visit(n.ChildByFieldName("body"), inner)
	case "class_definition":
		if name := n.ChildByFieldName("name"); name != nil {
			sc.bind(s.text(name))
		}
		s.visit(n.ChildByFieldName("superclasses"), sc)
		s.visit(n.ChildByFieldName("body"), newScope(sc, true))
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		s.comprehension(n, sc)
	case "type":
		if n.NamedChildCount() == 1 && n.NamedChild(0).Type() == "string" {
			s.forwardReference(n.NamedChild(0), sc)
			return
		}
		s.children(n, sc)
	default:
		s.children(n, sc)
	}
}

func (s *nameScanner) children(n *sitter.Node, sc *scope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		s.visit(n.NamedChild(i), sc)
	}
}

// bindTarget binds the names a store target introduces. Attribute and
// subscript targets bind nothing and read their operands.
func (s *nameScanner) bindTarget(n *sitter.Node, sc *scope) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		sc.bind(s.text(n))
	case "pattern_list", "tuple_pattern", "list_pattern", "list_splat_pattern",
		"dictionary_splat_pattern", "as_pattern_target", "expression_list",
		"tuple", "list", "list_splat", "parenthesized_expression":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			s.bindTarget(n.NamedChild(i), sc)
		}
	default:
		s.visit(n, sc)
	}
}

// parameters binds parameter names in inner. Defaults and annotations are
// evaluated where the definition is, in outer.
func (s *nameScanner) parameters(n *sitter.Node, outer, inner *scope) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "typed_parameter":
			for j := 0; j < int(p.NamedChildCount()); j++ {
				if c := p.NamedChild(j); c.Type() == "type" {
					s.visit(c, outer)
				} else {
					s.bindTarget(c, inner)
				}
			}
		case "default_parameter", "typed_default_parameter":
			s.bindTarget(p.ChildByFieldName("name"), inner)
			s.visit(p.ChildByFieldName("type"), outer)
			s.visit(p.ChildByFieldName("value"), outer)
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
			s.bindTarget(p, inner)
		}
	}
}

// comprehension opens its own scope; only the first iterable is evaluated
// outside it.
func (s *nameScanner) comprehension(n *sitter.Node, sc *scope) {
	inner := newScope(sc, false)
	first := true
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "for_in_clause" {
			s.visit(c, inner)
			continue
		}
		s.bindTarget(c.ChildByFieldName("left"), inner)
		iterScope := inner
		if first {
			iterScope, first = sc, false
		}
		s.visit(c.ChildByFieldName("right"), iterScope)
	}
}

// exceptClause handles both "except E as e" grammars: an as_pattern child, or
// a bare name following the as keyword.
func (s *nameScanner) exceptClause(n *sitter.Node, sc *scope) {
	afterAs := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case !c.IsNamed():
			afterAs = c.Type() == "as"
		case afterAs:
			s.bindTarget(c, sc)
			afterAs = false
		default:
			s.visit(c, sc)
		}
	}
}

func (s *nameScanner) imports(n *sitter.Node, sc *scope) {
	module := n.ChildByFieldName("module_name")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if sameNode(c, module) {
			continue
		}
		switch c.Type() {
		case "aliased_import":
			s.bindTarget(c.ChildByFieldName("alias"), sc)
		case "dotted_name":
			// "import a.b" binds a
			if c.NamedChildCount() > 0 {
				s.bindTarget(c.NamedChild(0), sc)
			}
		}
	}
}

// forwardReference reads the names of a quoted annotation such as "State".
func (s *nameScanner) forwardReference(str *sitter.Node, sc *scope) {
	body, ok := stringLiteral(str, s.src)
	if !ok || strings.TrimSpace(body) == "" {
		return
	}
	data := []byte(strings.TrimSpace(body))
	root, err := parsePython(data)
	if err != nil {
		return
	}
	sub := &nameScanner{src: data, attrSeen: s.attrSeen}
	sub.visit(root, sc)
	s.uses = append(s.uses, sub.uses...)
}

func (s *nameScanner) selfAttributes(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "attribute":
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj == nil || attr == nil || obj.Type() != "identifier" || s.text(obj) != "self" {
			return
		}
		name := s.text(attr)
		if _, ok := s.attrSeen[name]; ok {
			return
		}
		s.attrSeen[name] = struct{}{}
		s.attrs = append(s.attrs, name)
	case "pattern_list", "tuple_pattern", "list_pattern", "expression_list",
		"tuple", "list", "parenthesized_expression":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			s.selfAttributes(n.NamedChild(i))
		}
	}
}

// stringLiteral returns the body of a plain string node. Strings with
// interpolations or escapes are not plain.
func stringLiteral(n *sitter.Node, src []byte) (string, bool) {
	var sb strings.Builder
	content := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "string_start", "string_end":
		case "string_content":
			content = true
			sb.WriteString(c.Content(src))
		default:
			return "", false
		}
	}
	if content {
		return sb.String(), true
	}
	raw := n.Content(src)
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') {
		return strings.Trim(raw, `"'`), true
	}
	return "", false
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.Type() == b.Type() &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
