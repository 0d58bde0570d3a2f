package ast

// Children returns the direct children of n in source order. Nil children are
// omitted. Jump targets of Break and Continue are references, not children.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Program:
		add(n.Body...)
	case *Function:
		add(n.Params...)
		add(n.Body)
	case *Class:
		for _, m := range n.Methods {
			add(m)
		}
	case *Block:
		add(n.Stmts...)
	case *ExprStmt:
		add(n.X)
	case *VarDecl:
		for _, d := range n.Decls {
			add(d)
		}
	case *VarDeclarator:
		add(n.Name, n.Init)
	case *If:
		add(n.Test, n.Cons, n.Alt)
	case *While:
		add(n.Test, n.Body)
	case *DoWhile:
		add(n.Body, n.Test)
	case *For:
		add(n.Init, n.Test, n.Update, n.Body)
	case *ForOf:
		add(n.Left, n.Right, n.Body)
	case *ForIn:
		add(n.Left, n.Right, n.Body)
	case *Switch:
		add(n.Disc)
		for _, c := range n.Cases {
			add(c)
		}
	case *Case:
		add(n.Test)
		add(n.Body...)
	case *Labeled:
		add(n.Body)
	case *Return:
		add(n.Arg)
	case *Throw:
		add(n.Arg)
	case *Try:
		if n.Block != nil {
			add(n.Block)
		}
		if n.Handler != nil {
			add(n.Handler)
		}
		if n.Finalizer != nil {
			add(n.Finalizer)
		}
	case *Catch:
		add(n.Param)
		if n.Body != nil {
			add(n.Body)
		}
	case *Binary:
		add(n.Left, n.Right)
	case *Logical:
		add(n.Left, n.Right)
	case *Conditional:
		add(n.Test, n.Cons, n.Alt)
	case *Assign:
		add(n.Left, n.Right)
	case *Call:
		add(n.Callee)
		add(n.Args...)
	case *New:
		add(n.Callee)
		add(n.Args...)
	case *Member:
		add(n.Object, n.Property)
	case *Update:
		add(n.Arg)
	case *Unary:
		add(n.Arg)
	case *TypeOf:
		add(n.Arg)
	case *As:
		add(n.X)
	case *NonNull:
		add(n.X)
	case *Await:
		add(n.Arg)
	case *Spread:
		add(n.Arg)
	case *Sequence:
		add(n.Exprs...)
	case *ArrayLit:
		add(n.Elems...)
	case *ObjectLit:
		for _, p := range n.Props {
			add(p)
		}
	case *Property:
		add(n.Key, n.Value)
	}
	return out
}

// isNilNode catches typed nil pointers stored in a Node interface, such as a
// nil *Block assigned to Function.Body.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *Block:
		return n == nil
	case *Catch:
		return n == nil
	case *Function:
		return n == nil
	}
	return false
}

// Inspect traverses the tree rooted at n in depth-first order. If f returns
// false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Functions returns every function in the tree rooted at n, outer functions
// before the functions nested inside them.
func Functions(n Node) []*Function {
	var fns []*Function
	Inspect(n, func(n Node) bool {
		if fn, ok := n.(*Function); ok {
			fns = append(fns, fn)
		}
		return true
	})
	return fns
}
