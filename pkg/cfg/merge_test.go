package cfg

import (
	"testing"

	"github.com/l3aro/tscfg/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEmptyBlocks_PreservesPredLabel(t *testing.T) {
	a, y := ident("a"), ident("y")
	g, entry := buildOne(t, function("f", &ast.If{Test: a, Cons: block(), Alt: block(stmt(y))}))
	require.Len(t, g.BasicBlocks(), 4)

	g.MergeEmptyBlocks()
	require.NoError(t, g.CheckEdges())
	assert.Len(t, g.BasicBlocks(), 3, "the empty then branch is folded away")

	els := blockOf(t, g, y)
	join := els.Succs()[0]
	assert.Equal(t, []*BasicBlock{join, els}, entry.Succs())
	assert.Equal(t, LabelTrue, g.SuccEdgeLabel(entry, 0))
	assert.Equal(t, LabelFalse, g.SuccEdgeLabel(entry, 1))

	assert.Equal(t, []*BasicBlock{entry, els}, join.Preds())
	assert.Equal(t, LabelTrue, g.PredEdgeLabel(join, 0))
	assert.Nil(t, g.PredEdgeLabel(join, 1))
	cond, label := g.PredCondition(join, 0)
	assert.Equal(t, a, cond)
	assert.Equal(t, LabelTrue, label)
}

func TestMergeEmptyBlocks_RemovesDeadBlocks(t *testing.T) {
	ret := &ast.Return{Arg: ident("x")}
	g, entry := buildOne(t, function("f", ret))
	require.Len(t, g.BasicBlocks(), 2)

	g.MergeEmptyBlocks()
	assert.Equal(t, []*BasicBlock{entry}, g.BasicBlocks())
	assert.True(t, g.Merged())
}

func TestMergeEmptyBlocks_DropsUnreachablePassThrough(t *testing.T) {
	d := ident("d")
	loop := &ast.While{Test: ident("c")}
	brk := &ast.Break{Target: loop}
	loop.Body = block(&ast.If{Test: d, Cons: brk}, stmt(ident("z")))
	g, _ := buildOne(t, function("f", loop))

	cond := blockOf(t, g, d)
	join := cond.Succs()[1]
	require.Len(t, join.Preds(), 2, "join is fed by the dead block after break and by the false edge")

	g.MergeEmptyBlocks()
	require.NoError(t, g.CheckEdges())
	assert.Equal(t, []*BasicBlock{cond}, join.Preds())
	assert.Equal(t, LabelFalse, g.PredEdgeLabel(join, 0))
}

func TestMergeEmptyBlocks_KeepsEntryAndSelfLoops(t *testing.T) {
	g := New()
	fn := function("f")
	entry := g.Build(fn)

	spin := g.createBlock(0)
	g.addEdge(spin, spin, nil)

	g.MergeEmptyBlocks()
	blocks := g.BasicBlocks()
	assert.Contains(t, blocks, entry)
	assert.Contains(t, blocks, spin)
}

func TestMergeEmptyBlocks_KeepsLabeledPassThrough(t *testing.T) {
	g := New()
	g.Build(function("f"))
	from, mid, to := g.createBlock(0), g.createBlock(0), g.createBlock(0)
	from.AddNode(ident("x"))
	to.AddNode(ident("y"))
	g.addEdge(from, mid, nil)
	g.addEdge(mid, to, LabelTrue)

	g.MergeEmptyBlocks()
	assert.Contains(t, g.BasicBlocks(), mid)
	assert.Equal(t, []*BasicBlock{mid}, from.Succs())
}

func TestMergeEmptyBlocks_ChainedPassThroughs(t *testing.T) {
	g := New()
	g.Build(function("f"))
	src, p1, p2, dst := g.createBlock(0), g.createBlock(0), g.createBlock(0), g.createBlock(0)
	src.AddNode(ident("a"))
	dst.AddNode(ident("b"))
	g.addEdge(src, p1, LabelFalse)
	g.addEdge(p1, p2, nil)
	g.addEdge(p2, dst, nil)

	g.MergeEmptyBlocks()
	require.NoError(t, g.CheckEdges())
	assert.Equal(t, []*BasicBlock{dst}, src.Succs())
	assert.Equal(t, []*BasicBlock{src}, dst.Preds())
	assert.Equal(t, LabelFalse, g.SuccEdgeLabel(src, 0))
	assert.Equal(t, LabelFalse, g.PredEdgeLabel(dst, 0))
	assert.NotContains(t, g.BasicBlocks(), p1)
	assert.NotContains(t, g.BasicBlocks(), p2)
}

// Merging must not change which statements can run.
func TestMergeEmptyBlocks_PreservesReachableNodes(t *testing.T) {
	sw := &ast.Switch{Disc: ident("d")}
	sw.Cases = []*ast.Case{
		{Test: num("1"), Body: []ast.Node{&ast.Break{Target: sw}}},
		{Body: []ast.Node{stmt(call("fallback"))}},
	}
	forLoop := &ast.For{Test: ident("t"), Body: block(&ast.If{Test: ident("u"), Cons: block()})}
	cont := &ast.Continue{Target: forLoop}
	forLoop.Body.(*ast.Block).Stmts = append(forLoop.Body.(*ast.Block).Stmts, cont)

	tests := []struct {
		name string
		fn   *ast.Function
	}{
		{"switch", function("s", sw)},
		{"for", function("l", forLoop, stmt(ident("done")))},
		{"logical", function("o", stmt(&ast.Logical{Op: ast.LogicalOr, Left: ident("a"), Right: ident("b")}))},
		{"nested if", function("n", &ast.If{Test: ident("a"), Cons: &ast.If{Test: ident("b"), Cons: block()}})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, entry := buildOne(t, tc.fn)
			before := reachableNodes(g, entry)

			g.MergeEmptyBlocks()
			require.NoError(t, g.CheckEdges())
			assert.Equal(t, before, reachableNodes(g, entry))

			for _, bb := range g.BasicBlocks() {
				if bb.IsEmpty() && !bb.HasFlag(FlagEntry) && len(bb.Succs()) == 1 && bb.Succs()[0] != bb {
					assert.NotNil(t, g.SuccEdgeLabel(bb, 0), "%s is an unlabeled pass-through", bb)
				}
			}
		})
	}
}

func TestMergeEmptyBlocks_Twice(t *testing.T) {
	g := New()
	g.MergeEmptyBlocks()
	assert.PanicsWithValue(t, "cfg: MergeEmptyBlocks called twice", g.MergeEmptyBlocks)
}

func reachableNodes(g *CFG, entry *BasicBlock) map[ast.Node]bool {
	out := make(map[ast.Node]bool)
	for _, bb := range g.Reachable(Forward, entry) {
		for _, n := range bb.Nodes() {
			out[n] = true
		}
	}
	return out
}
