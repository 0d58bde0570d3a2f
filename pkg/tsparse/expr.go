package tsparse

import (
	"strings"

	"github.com/l3aro/tscfg/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

// expr lowers an expression. Constructs without control flow of their own
// that have no node of their own become Raw.
func (l *lowerer) expr(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "parenthesized_expression":
		return l.expr(firstChild(n))
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"private_property_identifier", "type_identifier", "super", "import":
		return located(l, n, &ast.Ident{Name: l.text(n)})
	case "this":
		return located(l, n, &ast.This{})
	case "number", "string", "template_string", "regex",
		"true", "false", "null", "undefined":
		return l.literal(n)
	case "binary_expression":
		return l.binary(n)
	case "ternary_expression":
		return located(l, n, &ast.Conditional{
			Test: l.expr(n.ChildByFieldName("condition")),
			Cons: l.expr(n.ChildByFieldName("consequence")),
			Alt:  l.expr(n.ChildByFieldName("alternative")),
		})
	case "assignment_expression", "augmented_assignment_expression":
		op := "="
		if o := n.ChildByFieldName("operator"); o != nil {
			op = l.text(o)
		}
		a := located(l, n, &ast.Assign{
			Op:    op,
			Left:  l.pattern(n.ChildByFieldName("left")),
			Right: l.expr(n.ChildByFieldName("right")),
		})
		nameAnonymous(a.Right, a.Left)
		return a
	case "call_expression":
		return located(l, n, &ast.Call{
			Callee:   l.expr(n.ChildByFieldName("function")),
			Args:     l.arguments(n.ChildByFieldName("arguments")),
			Optional: isOptional(n),
		})
	case "new_expression":
		return located(l, n, &ast.New{
			Callee: l.expr(n.ChildByFieldName("constructor")),
			Args:   l.arguments(n.ChildByFieldName("arguments")),
		})
	case "member_expression":
		return located(l, n, &ast.Member{
			Object:   l.expr(n.ChildByFieldName("object")),
			Property: l.expr(n.ChildByFieldName("property")),
			Optional: isOptional(n),
		})
	case "subscript_expression":
		return located(l, n, &ast.Member{
			Object:   l.expr(n.ChildByFieldName("object")),
			Property: l.expr(n.ChildByFieldName("index")),
			Computed: true,
			Optional: isOptional(n),
		})
	case "update_expression":
		u := located(l, n, &ast.Update{
			Op:  l.text(n.ChildByFieldName("operator")),
			Arg: l.expr(n.ChildByFieldName("argument")),
		})
		if first := n.Child(0); first != nil {
			u.Prefix = first.Type() == "++" || first.Type() == "--"
		}
		return u
	case "unary_expression":
		op := l.text(n.ChildByFieldName("operator"))
		arg := l.expr(n.ChildByFieldName("argument"))
		if op == "typeof" {
			return located(l, n, &ast.TypeOf{Arg: arg})
		}
		return located(l, n, &ast.Unary{Op: op, Arg: arg})
	case "yield_expression":
		return located(l, n, &ast.Unary{Op: "yield", Arg: l.expr(firstChild(n))})
	case "await_expression":
		return located(l, n, &ast.Await{Arg: l.expr(firstChild(n))})
	case "spread_element":
		return located(l, n, &ast.Spread{Arg: l.expr(firstChild(n))})
	case "sequence_expression":
		s := located(l, n, &ast.Sequence{})
		l.flattenSequence(n, s)
		return s
	case "array":
		a := located(l, n, &ast.ArrayLit{})
		for _, c := range children(n) {
			a.Elems = append(a.Elems, l.expr(c))
		}
		return a
	case "object":
		return l.object(n)
	case "arrow_function":
		return l.function(n, true)
	case "function", "function_expression", "generator_function":
		return l.function(n, false)
	case "class":
		return l.class(n)
	case "as_expression", "satisfies_expression":
		cs := children(n)
		as := located(l, n, &ast.As{X: l.expr(firstChild(n))})
		if len(cs) > 1 {
			as.Type = l.text(cs[len(cs)-1])
		}
		return as
	case "type_assertion":
		// <T>x
		cs := children(n)
		if len(cs) == 0 {
			return l.raw(n)
		}
		return located(l, n, &ast.As{X: l.expr(cs[len(cs)-1]), Type: l.text(cs[0])})
	case "non_null_expression":
		return located(l, n, &ast.NonNull{X: l.expr(firstChild(n))})
	}
	return l.raw(n)
}

func (l *lowerer) literal(n *sitter.Node) *ast.Literal {
	text := l.text(n)
	lit := &ast.Literal{Value: text}
	switch n.Type() {
	case "number":
		lit.Lit = ast.LitNumber
		if strings.HasSuffix(text, "n") {
			lit.Lit = ast.LitBigInt
		}
	case "string":
		lit.Lit = ast.LitString
		if len(text) >= 2 {
			lit.Value = text[1 : len(text)-1]
		}
	case "template_string":
		lit.Lit = ast.LitTemplate
	case "regex":
		lit.Lit = ast.LitRegExp
	case "true", "false":
		lit.Lit = ast.LitBool
	case "null":
		lit.Lit = ast.LitNull
	case "undefined":
		lit.Lit = ast.LitUndefined
	}
	return located(l, n, lit)
}

var logicalOps = map[string]ast.LogicalOp{
	"&&": ast.LogicalAnd,
	"||": ast.LogicalOr,
	"??": ast.LogicalNullish,
}

func (l *lowerer) binary(n *sitter.Node) ast.Node {
	op := l.text(n.ChildByFieldName("operator"))
	left := l.expr(n.ChildByFieldName("left"))
	right := l.expr(n.ChildByFieldName("right"))

	if lop, ok := logicalOps[op]; ok {
		return located(l, n, &ast.Logical{Op: lop, Left: left, Right: right})
	}
	return located(l, n, &ast.Binary{Op: op, Left: left, Right: right})
}

// isOptional reports whether a call or member access uses `?.`.
func isOptional(n *sitter.Node) bool {
	return n.ChildByFieldName("optional_chain") != nil || hasToken(n, "optional_chain") || hasToken(n, "?.")
}

// arguments lowers a call's argument list. Tagged templates pass the
// template itself.
func (l *lowerer) arguments(n *sitter.Node) []ast.Node {
	if n == nil {
		return nil
	}
	if n.Type() != "arguments" {
		return []ast.Node{l.expr(n)}
	}
	var args []ast.Node
	for _, c := range children(n) {
		args = append(args, l.expr(c))
	}
	return args
}

func (l *lowerer) flattenSequence(n *sitter.Node, s *ast.Sequence) {
	for _, c := range children(n) {
		if c.Type() == "sequence_expression" {
			l.flattenSequence(c, s)
			continue
		}
		s.Exprs = append(s.Exprs, l.expr(c))
	}
}

func (l *lowerer) object(n *sitter.Node) *ast.ObjectLit {
	obj := located(l, n, &ast.ObjectLit{})
	for _, c := range children(n) {
		p := located(l, c, &ast.Property{})
		switch c.Type() {
		case "pair":
			key := c.ChildByFieldName("key")
			if key != nil && key.Type() == "computed_property_name" {
				p.Computed = true
				p.Key = l.expr(firstChild(key))
			} else {
				p.Key = l.expr(key)
			}
			p.Value = l.expr(c.ChildByFieldName("value"))
			if id, ok := p.Key.(*ast.Ident); ok && !p.Computed {
				nameAnonymous(p.Value, id)
			}
		case "shorthand_property_identifier":
			p.Key = located(l, c, &ast.Ident{Name: l.text(c)})
			p.Value = located(l, c, &ast.Ident{Name: l.text(c)})
		case "method_definition":
			fn := l.function(c, false)
			p.Key = located(l, c, &ast.Ident{Name: fn.Name})
			p.Value = fn
		default:
			p.Value = l.expr(c)
		}
		obj.Props = append(obj.Props, p)
	}
	return obj
}

// pattern lowers a binding target. Plain identifiers and member expressions
// keep their structure; destructuring patterns stay opaque.
func (l *lowerer) pattern(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return located(l, n, &ast.Ident{Name: l.text(n)})
	case "object_pattern", "array_pattern", "assignment_pattern", "rest_pattern", "pair_pattern":
		return l.raw(n)
	case "required_parameter", "optional_parameter":
		if p := n.ChildByFieldName("pattern"); p != nil {
			return l.pattern(p)
		}
		return l.raw(n)
	}
	return l.expr(n)
}

// function lowers any function form. Jump targets never cross a function
// boundary, so the target stack starts empty inside.
func (l *lowerer) function(n *sitter.Node, arrow bool) *ast.Function {
	fn := located(l, n, &ast.Function{Name: l.text(n.ChildByFieldName("name")), Arrow: arrow})
	if p := n.ChildByFieldName("parameter"); p != nil {
		fn.Params = append(fn.Params, l.pattern(p))
	}
	for _, p := range children(n.ChildByFieldName("parameters")) {
		fn.Params = append(fn.Params, l.pattern(p))
	}

	saved := l.targets
	l.targets = nil
	defer func() { l.targets = saved }()

	body := n.ChildByFieldName("body")
	switch {
	case body == nil:
		fn.Body = &ast.Block{}
	case body.Type() == "statement_block":
		fn.Body = l.block(body)
	default:
		fn.Body = l.expr(body)
	}
	return fn
}

func (l *lowerer) class(n *sitter.Node) *ast.Class {
	c := located(l, n, &ast.Class{Name: l.text(n.ChildByFieldName("name"))})
	for _, m := range children(n.ChildByFieldName("body")) {
		switch m.Type() {
		case "method_definition":
			c.Methods = append(c.Methods, l.function(m, false))
		case "public_field_definition", "field_definition":
			v := m.ChildByFieldName("value")
			if v == nil {
				continue
			}
			if fn, ok := l.expr(v).(*ast.Function); ok {
				if fn.Name == "" {
					fn.Name = l.text(m.ChildByFieldName("name"))
				}
				c.Methods = append(c.Methods, fn)
			}
		}
	}
	return c
}
