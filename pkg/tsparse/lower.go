package tsparse

import (
	"github.com/l3aro/tscfg/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

// lowerer converts one tree-sitter tree. targets is the stack of statements
// that break and continue may name; it is reset at function boundaries.
type lowerer struct {
	src     []byte
	targets []jumpTarget
}

// jumpTarget is an enclosing loop or switch (label empty) or a labeled
// statement. loop reports whether continue may target it.
type jumpTarget struct {
	label string
	stmt  ast.Node
	loop  bool
}

func spanOf(n *sitter.Node) ast.Span {
	s, e := n.StartPoint(), n.EndPoint()
	return ast.Span{
		Start: ast.Pos{Line: int(s.Row) + 1, Column: int(s.Column) + 1},
		End:   ast.Pos{Line: int(e.Row) + 1, Column: int(e.Column) + 1},
	}
}

// located records the source text and span of ts on n.
func located[N ast.Node](l *lowerer, ts *sitter.Node, n N) N {
	return ast.SetText(n, ts.Content(l.src), spanOf(ts))
}

// children returns the named children of n, skipping comments.
func children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

func firstChild(n *sitter.Node) *sitter.Node {
	if cs := children(n); len(cs) > 0 {
		return cs[0]
	}
	return nil
}

// hasToken reports whether n has a direct child of the given type.
func hasToken(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() == typ {
			return true
		}
	}
	return false
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

func (l *lowerer) raw(n *sitter.Node) *ast.Raw {
	return located(l, n, &ast.Raw{Type: n.Type()})
}

func (l *lowerer) program(n *sitter.Node) *ast.Program {
	prog := located(l, n, &ast.Program{})
	for _, c := range children(n) {
		if s := l.stmt(c); s != nil {
			prog.Body = append(prog.Body, s)
		}
	}
	return prog
}

func (l *lowerer) block(n *sitter.Node) *ast.Block {
	b := located(l, n, &ast.Block{})
	for _, c := range children(n) {
		if s := l.stmt(c); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	return b
}

// stmt lowers a statement. It returns nil for nodes that carry nothing, like
// a hash-bang line.
func (l *lowerer) stmt(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "hash_bang_line":
		return nil
	case "statement_block":
		return l.block(n)
	case "expression_statement":
		return located(l, n, &ast.ExprStmt{X: l.expr(firstChild(n))})
	case "empty_statement":
		return located(l, n, &ast.Empty{})
	case "lexical_declaration", "variable_declaration":
		return l.varDecl(n)
	case "if_statement":
		return l.ifStmt(n)
	case "while_statement":
		return l.whileStmt(n)
	case "do_statement":
		return l.doStmt(n)
	case "for_statement":
		return l.forStmt(n)
	case "for_in_statement":
		return l.forInStmt(n)
	case "switch_statement":
		return l.switchStmt(n)
	case "labeled_statement":
		return l.labeledStmt(n)
	case "break_statement":
		return l.breakStmt(n)
	case "continue_statement":
		return l.continueStmt(n)
	case "return_statement":
		ret := located(l, n, &ast.Return{})
		if arg := firstChild(n); arg != nil {
			ret.Arg = l.expr(arg)
		}
		return ret
	case "throw_statement":
		return located(l, n, &ast.Throw{Arg: l.expr(firstChild(n))})
	case "try_statement":
		return l.tryStmt(n)
	case "function_declaration", "generator_function_declaration":
		return l.function(n, false)
	case "class_declaration", "abstract_class_declaration":
		return l.class(n)
	case "export_statement":
		if d := n.ChildByFieldName("declaration"); d != nil {
			return l.stmt(d)
		}
		if v := n.ChildByFieldName("value"); v != nil {
			return located(l, n, &ast.ExprStmt{X: l.expr(v)})
		}
		return l.raw(n)
	case "internal_module", "module":
		if body := n.ChildByFieldName("body"); body != nil {
			return l.block(body)
		}
		return l.raw(n)
	case "ambient_declaration":
		// `declare ...` has no runtime behavior.
		return l.raw(n)
	}
	return l.raw(n)
}

func (l *lowerer) varDecl(n *sitter.Node) *ast.VarDecl {
	decl := located(l, n, &ast.VarDecl{Keyword: "var"})
	if kind := n.ChildByFieldName("kind"); kind != nil {
		decl.Keyword = l.text(kind)
	} else if first := n.Child(0); first != nil && n.Type() == "lexical_declaration" {
		decl.Keyword = l.text(first)
	}

	for _, c := range children(n) {
		if c.Type() != "variable_declarator" {
			continue
		}
		d := located(l, c, &ast.VarDeclarator{Name: l.pattern(c.ChildByFieldName("name"))})
		if v := c.ChildByFieldName("value"); v != nil {
			d.Init = l.expr(v)
			nameAnonymous(d.Init, d.Name)
		}
		decl.Decls = append(decl.Decls, d)
	}
	return decl
}

// nameAnonymous gives `const f = () => ...` the name of its binding.
func nameAnonymous(value, name ast.Node) {
	fn, ok := value.(*ast.Function)
	id, isIdent := name.(*ast.Ident)
	if ok && isIdent && fn.Name == "" {
		fn.Name = id.Name
	}
}

func (l *lowerer) ifStmt(n *sitter.Node) *ast.If {
	s := located(l, n, &ast.If{
		Test: l.expr(n.ChildByFieldName("condition")),
		Cons: l.stmt(n.ChildByFieldName("consequence")),
	})
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		if alt.Type() == "else_clause" {
			alt = firstChild(alt)
		}
		s.Alt = l.stmt(alt)
	}
	return s
}

func (l *lowerer) whileStmt(n *sitter.Node) *ast.While {
	s := located(l, n, &ast.While{})
	s.Test = l.expr(n.ChildByFieldName("condition"))
	l.push(jumpTarget{stmt: s, loop: true})
	s.Body = l.stmt(n.ChildByFieldName("body"))
	l.pop()
	return s
}

func (l *lowerer) doStmt(n *sitter.Node) *ast.DoWhile {
	s := located(l, n, &ast.DoWhile{})
	l.push(jumpTarget{stmt: s, loop: true})
	s.Body = l.stmt(n.ChildByFieldName("body"))
	l.pop()
	s.Test = l.expr(n.ChildByFieldName("condition"))
	return s
}

func (l *lowerer) forStmt(n *sitter.Node) *ast.For {
	s := located(l, n, &ast.For{})
	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Type() {
		case "lexical_declaration", "variable_declaration":
			s.Init = l.varDecl(init)
		default:
			s.Init = l.clause(init)
		}
	}
	s.Test = l.clause(n.ChildByFieldName("condition"))
	s.Update = l.clause(n.ChildByFieldName("increment"))

	l.push(jumpTarget{stmt: s, loop: true})
	s.Body = l.stmt(n.ChildByFieldName("body"))
	l.pop()
	return s
}

// clause lowers one of the three for-loop header clauses, which the grammar
// wraps in expression or empty statements.
func (l *lowerer) clause(n *sitter.Node) ast.Node {
	if n == nil || !n.IsNamed() {
		return nil
	}
	switch n.Type() {
	case "empty_statement":
		return nil
	case "expression_statement":
		return l.expr(firstChild(n))
	}
	return l.expr(n)
}

// forInStmt lowers both `for (x in y)` and `for (x of y)`.
func (l *lowerer) forInStmt(n *sitter.Node) ast.Node {
	var left ast.Node
	if ln := n.ChildByFieldName("left"); ln != nil {
		left = l.pattern(ln)
		if kind := n.ChildByFieldName("kind"); kind != nil {
			d := located(l, ln, &ast.VarDeclarator{Name: left})
			left = &ast.VarDecl{Base: d.Base, Keyword: l.text(kind), Decls: []*ast.VarDeclarator{d}}
		}
	}
	right := l.expr(n.ChildByFieldName("right"))

	var stmt ast.Node
	var setBody func(ast.Node)
	isIn := hasToken(n, "in")
	if op := n.ChildByFieldName("operator"); op != nil {
		isIn = l.text(op) == "in"
	}
	if isIn {
		s := located(l, n, &ast.ForIn{Left: left, Right: right})
		stmt, setBody = s, func(b ast.Node) { s.Body = b }
	} else {
		s := located(l, n, &ast.ForOf{Left: left, Right: right, Await: hasToken(n, "await")})
		stmt, setBody = s, func(b ast.Node) { s.Body = b }
	}

	l.push(jumpTarget{stmt: stmt, loop: true})
	setBody(l.stmt(n.ChildByFieldName("body")))
	l.pop()
	return stmt
}

func (l *lowerer) switchStmt(n *sitter.Node) *ast.Switch {
	s := located(l, n, &ast.Switch{Disc: l.expr(n.ChildByFieldName("value"))})
	l.push(jumpTarget{stmt: s})
	for _, c := range children(n.ChildByFieldName("body")) {
		clause := located(l, c, &ast.Case{})
		stmts := children(c)
		switch c.Type() {
		case "switch_case":
			if len(stmts) == 0 {
				continue
			}
			clause.Test = l.expr(stmts[0])
			stmts = stmts[1:]
		case "switch_default":
		default:
			continue
		}
		for _, sc := range stmts {
			if st := l.stmt(sc); st != nil {
				clause.Body = append(clause.Body, st)
			}
		}
		s.Cases = append(s.Cases, clause)
	}
	l.pop()
	return s
}

func (l *lowerer) labeledStmt(n *sitter.Node) *ast.Labeled {
	s := located(l, n, &ast.Labeled{Label: l.text(n.ChildByFieldName("label"))})
	body := n.ChildByFieldName("body")
	if body == nil {
		cs := children(n)
		if len(cs) > 1 {
			body = cs[len(cs)-1]
		}
	}
	l.push(jumpTarget{label: s.Label, stmt: s, loop: labelsLoop(body)})
	s.Body = l.stmt(body)
	l.pop()
	return s
}

// labelsLoop reports whether a labeled statement body is a loop, looking
// through nested labels.
func labelsLoop(n *sitter.Node) bool {
	for n != nil && n.Type() == "labeled_statement" {
		n = n.ChildByFieldName("body")
	}
	if n == nil {
		return false
	}
	switch n.Type() {
	case "while_statement", "do_statement", "for_statement", "for_in_statement":
		return true
	}
	return false
}

func (l *lowerer) breakStmt(n *sitter.Node) *ast.Break {
	s := located(l, n, &ast.Break{Label: l.text(n.ChildByFieldName("label"))})
	s.Target = l.resolve(s.Label, false)
	return s
}

func (l *lowerer) continueStmt(n *sitter.Node) *ast.Continue {
	s := located(l, n, &ast.Continue{Label: l.text(n.ChildByFieldName("label"))})
	s.Target = l.resolve(s.Label, true)
	return s
}

func (l *lowerer) tryStmt(n *sitter.Node) *ast.Try {
	s := located(l, n, &ast.Try{})
	if body := n.ChildByFieldName("body"); body != nil {
		s.Block = l.block(body)
	}
	if h := n.ChildByFieldName("handler"); h != nil {
		c := located(l, h, &ast.Catch{})
		if p := h.ChildByFieldName("parameter"); p != nil {
			c.Param = l.pattern(p)
		}
		if body := h.ChildByFieldName("body"); body != nil {
			c.Body = l.block(body)
		}
		s.Handler = c
	}
	if f := n.ChildByFieldName("finalizer"); f != nil {
		if body := f.ChildByFieldName("body"); body != nil {
			s.Finalizer = l.block(body)
		}
	}
	return s
}

func (l *lowerer) push(t jumpTarget) { l.targets = append(l.targets, t) }
func (l *lowerer) pop() { l.targets = l.targets[:len(l.targets)-1] }

// resolve finds the statement a jump exits or repeats. An unlabeled break
// takes the innermost loop or switch, an unlabeled continue the innermost
// loop; a labeled jump takes the labeled statement itself. It returns nil
// when nothing matches.
func (l *lowerer) resolve(label string, isContinue bool) ast.Node {
	for i := len(l.targets) - 1; i >= 0; i-- {
		t := l.targets[i]
		if t.label != label {
			continue
		}
		if isContinue && !t.loop {
			if label != "" {
				return nil
			}
			continue
		}
		return t.stmt
	}
	return nil
}
