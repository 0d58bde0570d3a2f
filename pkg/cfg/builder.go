package cfg

import (
	"fmt"

	"github.com/l3aro/tscfg/pkg/ast"
)

// builder holds the mutable state of one Build call. The current block is
// threaded through return values; loopDepth only drives the LOOP flag.
type builder struct {
	g         *CFG
	loopDepth int
}

func (b *builder) newBlock() *BasicBlock {
	var flags Flags
	if b.loopDepth > 0 {
		flags |= FlagLoop
	}
	return b.g.createBlock(flags)
}

// Build constructs the blocks of fn and returns its entry block. Each function
// must be built at most once, and only before MergeEmptyBlocks.
func (g *CFG) Build(fn *ast.Function) *BasicBlock {
	if fn == nil {
		panic("cfg: Build called with nil function")
	}
	if g.merged {
		panic(fmt.Sprintf("cfg: Build(%q) after MergeEmptyBlocks", fn.Name))
	}
	if _, ok := g.entries[fn]; ok {
		panic(fmt.Sprintf("cfg: function %q built twice", fn.Name))
	}

	b := &builder{g: g}
	entry := b.newBlock()
	entry.SetFlag(FlagEntry)
	g.entries[fn] = entry
	g.functions = append(g.functions, fn)

	// An expression body is an implicit return of its value; a block body
	// falls off its end. Either way the final block leaves the function.
	end := b.build(fn.Body, entry)
	end.SetFlag(FlagExit)
	return entry
}

// build adds n to bb and returns the block that follows it. Dispatch tries
// statements, then common expressions, then TypeScript expressions, and ends
// in the leaf rule.
func (b *builder) build(n ast.Node, bb *BasicBlock) *BasicBlock {
	if n == nil {
		return bb
	}
	if out, ok := b.buildStatement(n, bb); ok {
		return out
	}
	if out, ok := b.buildExpression(n, bb); ok {
		return out
	}
	if out, ok := b.buildTSExpression(n, bb); ok {
		return out
	}
	return b.buildLeaf(n, bb)
}

func (b *builder) buildSeq(nodes []ast.Node, bb *BasicBlock) *BasicBlock {
	for _, n := range nodes {
		bb = b.build(n, bb)
	}
	return bb
}

func (b *builder) buildStatement(n ast.Node, bb *BasicBlock) (*BasicBlock, bool) {
	switch n := n.(type) {
	case *ast.Block:
		return b.buildSeq(n.Stmts, bb), true
	case *ast.ExprStmt:
		return b.build(n.X, bb), true
	case *ast.Empty:
		return bb, true
	case *ast.VarDecl:
		for _, d := range n.Decls {
			bb = b.build(d.Init, bb)
			b.g.addNode(bb, d)
		}
		return bb, true
	case *ast.If:
		return b.buildIf(n, bb), true
	case *ast.While:
		return b.buildWhile(n, bb), true
	case *ast.DoWhile:
		return b.buildDoWhile(n, bb), true
	case *ast.For:
		return b.buildFor(n, bb), true
	case *ast.ForOf:
		return b.buildForEach(n, n.Left, n.Right, n.Body, bb), true
	case *ast.ForIn:
		return b.buildForEach(n, n.Left, n.Right, n.Body, bb), true
	case *ast.Switch:
		return b.buildSwitch(n, bb), true
	case *ast.Labeled:
		return b.buildLabeled(n, bb), true
	case *ast.Break:
		return b.buildJump(n, n.Target, true, bb), true
	case *ast.Continue:
		return b.buildJump(n, n.Target, false, bb), true
	case *ast.Return:
		bb = b.build(n.Arg, bb)
		b.g.addNode(bb, n)
		bb.SetFlag(FlagExit)
		return b.newBlock(), true
	}
	return nil, false
}

func (b *builder) buildIf(n *ast.If, bb *BasicBlock) *BasicBlock {
	cond := b.build(n.Test, bb)
	cond.SetFlag(FlagCondition)

	thenBB := b.newBlock()
	b.g.addEdge(cond, thenBB, LabelTrue)
	thenEnd := b.build(n.Cons, thenBB)

	if n.Alt == nil {
		join := b.newBlock()
		b.g.addEdge(thenEnd, join, nil)
		b.g.addEdge(cond, join, LabelFalse)
		return join
	}

	elseBB := b.newBlock()
	b.g.addEdge(cond, elseBB, LabelFalse)
	elseEnd := b.build(n.Alt, elseBB)

	join := b.newBlock()
	b.g.addEdge(thenEnd, join, nil)
	b.g.addEdge(elseEnd, join, nil)
	return join
}

func (b *builder) buildWhile(n *ast.While, bb *BasicBlock) *BasicBlock {
	test := b.newBlock()
	b.g.addEdge(bb, test, nil)
	exit := b.newBlock()
	b.g.jumpTargets[n] = JumpTargets{Continue: test, Break: exit}

	cond := b.build(n.Test, test)
	cond.SetFlag(FlagCondition)

	b.loopDepth++
	body := b.newBlock()
	b.g.addEdge(cond, body, LabelTrue)
	b.g.addEdge(cond, exit, LabelFalse)
	end := b.build(n.Body, body)
	b.loopDepth--

	b.g.addEdge(end, test, nil)
	return exit
}

func (b *builder) buildDoWhile(n *ast.DoWhile, bb *BasicBlock) *BasicBlock {
	test := b.newBlock()
	exit := b.newBlock()
	b.g.jumpTargets[n] = JumpTargets{Continue: test, Break: exit}

	b.loopDepth++
	body := b.newBlock()
	b.g.addEdge(bb, body, nil)
	end := b.build(n.Body, body)
	b.loopDepth--
	b.g.addEdge(end, test, nil)

	cond := b.build(n.Test, test)
	cond.SetFlag(FlagCondition)
	b.g.addEdge(cond, body, LabelTrue)
	b.g.addEdge(cond, exit, LabelFalse)
	return exit
}

// buildFor routes continue through a dedicated update block. Without an
// update expression that block is an empty pass-through and merging folds it
// into the test (or the body start for loops without a test).
func (b *builder) buildFor(n *ast.For, bb *BasicBlock) *BasicBlock {
	bb = b.build(n.Init, bb)
	exit := b.newBlock()

	var head, cond *BasicBlock
	if n.Test != nil {
		head = b.newBlock()
		b.g.addEdge(bb, head, nil)
		cond = b.build(n.Test, head)
		cond.SetFlag(FlagCondition)
	}

	b.loopDepth++
	body := b.newBlock()
	update := b.newBlock()
	b.g.jumpTargets[n] = JumpTargets{Continue: update, Break: exit}
	if cond != nil {
		b.g.addEdge(cond, body, LabelTrue)
		b.g.addEdge(cond, exit, LabelFalse)
	} else {
		b.g.addEdge(bb, body, nil)
		head = body
	}
	end := b.build(n.Body, body)
	b.g.addEdge(end, update, nil)
	updateEnd := b.build(n.Update, update)
	b.loopDepth--

	b.g.addEdge(updateEnd, head, nil)
	return exit
}

// buildForEach handles for-of and for-in. Whether another element exists is
// decided by the iteration protocol at run time, so the body end always keeps
// both the repeat edge and the exit edge.
func (b *builder) buildForEach(stmt, left, right, body ast.Node, bb *BasicBlock) *BasicBlock {
	bb = b.build(right, bb)
	exit := b.newBlock()

	b.loopDepth++
	loop := b.newBlock()
	b.g.jumpTargets[stmt] = JumpTargets{Continue: loop, Break: exit}
	b.g.addEdge(bb, loop, nil)
	cur := b.build(left, loop)
	end := b.build(body, cur)
	b.loopDepth--

	b.g.addEdge(end, loop, nil)
	b.g.addEdge(end, exit, nil)
	return exit
}

// buildSwitch chains the case tests: each test branches to its body (labeled
// with the test node) or falls to the next test (labeled false). Bodies also
// fall through from the previous body. The default body is entered when the
// last test fails.
func (b *builder) buildSwitch(n *ast.Switch, bb *BasicBlock) *BasicBlock {
	bb = b.build(n.Disc, bb)
	after := b.newBlock()
	b.g.jumpTargets[n] = JumpTargets{Break: after}

	// miss is the block reached when no case test so far has matched.
	miss := bb
	var missLabel ast.Node
	var prevEnd, defaultBody *BasicBlock
	for _, c := range n.Cases {
		var cond *BasicBlock
		if !c.IsDefault() {
			test := b.newBlock()
			b.g.addEdge(miss, test, missLabel)
			cond = b.build(c.Test, test)
			cond.SetFlag(FlagCondition)
			b.g.switchCases[c.Test] = n.Disc
		}

		body := b.newBlock()
		if cond != nil {
			b.g.addEdge(cond, body, c.Test)
			miss, missLabel = cond, LabelFalse
		} else {
			defaultBody = body
		}
		if prevEnd != nil {
			b.g.addEdge(prevEnd, body, nil)
		}
		prevEnd = b.buildSeq(c.Body, body)
	}

	if defaultBody != nil {
		b.g.addEdge(miss, defaultBody, missLabel)
	} else {
		b.g.addEdge(miss, after, missLabel)
	}
	if prevEnd != nil {
		b.g.addEdge(prevEnd, after, nil)
	}
	return after
}

// buildLabeled builds labeled loops and switches directly; they register
// their own jump targets. Any other labeled statement gets a break target so
// that `break label` leaves it.
func (b *builder) buildLabeled(n *ast.Labeled, bb *BasicBlock) *BasicBlock {
	if n.Body == nil {
		return bb
	}
	switch k := n.Body.Kind(); {
	case k.IsLoop(), k == ast.KindSwitch, k == ast.KindLabeled:
		return b.build(n.Body, bb)
	}

	after := b.newBlock()
	b.g.jumpTargets[n.Body] = JumpTargets{Break: after}
	end := b.build(n.Body, bb)
	b.g.addEdge(end, after, nil)
	return after
}

// buildJump adds the break or continue edge, if the target resolves, and
// starts a fresh unreachable block for whatever follows the jump.
func (b *builder) buildJump(n, target ast.Node, isBreak bool, bb *BasicBlock) *BasicBlock {
	b.g.addNode(bb, n)
	if t, ok := b.g.jumpTargets[unwrapLabels(target)]; ok {
		dst := t.Continue
		if isBreak {
			dst = t.Break
		}
		if dst != nil {
			b.g.addEdge(bb, dst, nil)
		}
	}
	return b.newBlock()
}

func unwrapLabels(n ast.Node) ast.Node {
	for {
		l, ok := n.(*ast.Labeled)
		if !ok {
			return n
		}
		n = l.Body
	}
}

func (b *builder) buildExpression(n ast.Node, bb *BasicBlock) (*BasicBlock, bool) {
	switch n := n.(type) {
	case *ast.Logical:
		return b.buildLogical(n, bb), true
	case *ast.Conditional:
		return b.buildConditional(n, bb), true
	case *ast.Binary:
		bb = b.build(n.Left, bb)
		bb = b.build(n.Right, bb)
	case *ast.Assign:
		bb = b.build(n.Right, bb)
		bb = b.build(n.Left, bb)
	case *ast.Call:
		bb = b.build(n.Callee, bb)
		bb = b.buildSeq(n.Args, bb)
	case *ast.New:
		bb = b.build(n.Callee, bb)
		bb = b.buildSeq(n.Args, bb)
	case *ast.Member:
		bb = b.build(n.Object, bb)
		if n.Computed {
			bb = b.build(n.Property, bb)
		}
	case *ast.Update:
		if n.Prefix {
			b.g.addNode(bb, n)
			return b.build(n.Arg, bb), true
		}
		bb = b.build(n.Arg, bb)
	case *ast.Unary:
		bb = b.build(n.Arg, bb)
	case *ast.Await:
		bb = b.build(n.Arg, bb)
	case *ast.Spread:
		bb = b.build(n.Arg, bb)
	case *ast.Sequence:
		return b.buildSeq(n.Exprs, bb), true
	case *ast.ArrayLit:
		bb = b.buildSeq(n.Elems, bb)
	case *ast.ObjectLit:
		for _, p := range n.Props {
			if p.Computed {
				bb = b.build(p.Key, bb)
			}
			bb = b.build(p.Value, bb)
		}
	default:
		return nil, false
	}
	b.g.addNode(bb, n)
	return bb, true
}

func (b *builder) buildTSExpression(n ast.Node, bb *BasicBlock) (*BasicBlock, bool) {
	switch n := n.(type) {
	case *ast.TypeOf:
		bb = b.build(n.Arg, bb)
	case *ast.As:
		bb = b.build(n.X, bb)
	case *ast.NonNull:
		bb = b.build(n.X, bb)
	default:
		return nil, false
	}
	b.g.addNode(bb, n)
	return bb, true
}

// buildLogical evaluates the right operand in its own block that is entered
// only when the left operand does not decide the result. `??` takes the same
// shape as `||`.
func (b *builder) buildLogical(n *ast.Logical, bb *BasicBlock) *BasicBlock {
	left := b.build(n.Left, bb)
	left.SetFlag(FlagCondition)

	enter, skip := LabelFalse, LabelTrue
	if n.Op == ast.LogicalAnd {
		enter, skip = LabelTrue, LabelFalse
	}

	right := b.newBlock()
	b.g.addEdge(left, right, enter)
	rightEnd := b.build(n.Right, right)

	join := b.newBlock()
	b.g.addEdge(left, join, skip)
	b.g.addEdge(rightEnd, join, nil)
	b.g.addNode(join, n)
	return join
}

func (b *builder) buildConditional(n *ast.Conditional, bb *BasicBlock) *BasicBlock {
	cond := b.build(n.Test, bb)
	cond.SetFlag(FlagCondition)

	consBB := b.newBlock()
	b.g.addEdge(cond, consBB, LabelTrue)
	consEnd := b.build(n.Cons, consBB)

	altBB := b.newBlock()
	b.g.addEdge(cond, altBB, LabelFalse)
	altEnd := b.build(n.Alt, altBB)

	join := b.newBlock()
	b.g.addEdge(consEnd, join, nil)
	b.g.addEdge(altEnd, join, nil)
	b.g.addNode(join, n)
	return join
}

// buildLeaf appends nodes that carry no control flow of their own. Nested
// functions and classes are built separately; try, catch and throw are kept
// opaque since exceptional edges are not modeled.
func (b *builder) buildLeaf(n ast.Node, bb *BasicBlock) *BasicBlock {
	switch n.(type) {
	case *ast.Ident, *ast.Literal, *ast.This,
		*ast.Function, *ast.Class,
		*ast.Try, *ast.Catch, *ast.Throw, *ast.Raw:
		b.g.addNode(bb, n)
		return bb
	}
	panic(fmt.Sprintf("cfg: no build rule for %s node", n.Kind()))
}
