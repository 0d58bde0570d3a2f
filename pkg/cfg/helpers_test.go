package cfg

import (
	"testing"

	"github.com/l3aro/tscfg/pkg/ast"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.Ident {
	return &ast.Ident{Base: ast.Base{Src: name}, Name: name}
}

func num(v string) *ast.Literal {
	return &ast.Literal{Base: ast.Base{Src: v}, Lit: ast.LitNumber, Value: v}
}

func call(name string) *ast.Call {
	return &ast.Call{Base: ast.Base{Src: name + "()"}, Callee: ident(name)}
}

func stmt(x ast.Node) *ast.ExprStmt {
	return &ast.ExprStmt{Base: ast.Base{Src: x.Text() + ";"}, X: x}
}

func block(stmts ...ast.Node) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

func function(name string, stmts ...ast.Node) *ast.Function {
	return &ast.Function{Name: name, Body: block(stmts...)}
}

// buildOne builds fn into a fresh graph and checks edge pairing.
func buildOne(t *testing.T, fn *ast.Function) (*CFG, *BasicBlock) {
	t.Helper()
	g := New()
	entry := g.Build(fn)
	require.NotNil(t, entry)
	require.NoError(t, g.CheckEdges())
	return g, entry
}

// blockOf returns the block holding n.
func blockOf(t *testing.T, g *CFG, n ast.Node) *BasicBlock {
	t.Helper()
	bb, idx := g.FindBasicBlock(n)
	require.NotNil(t, bb, "node %s not placed in any block", n.Kind())
	require.GreaterOrEqual(t, idx, 0)
	return bb
}

func indices(blocks []*BasicBlock) []int {
	out := make([]int, len(blocks))
	for i, bb := range blocks {
		out[i] = bb.Index()
	}
	return out
}

func exitBlocks(g *CFG) []*BasicBlock {
	var out []*BasicBlock
	for _, bb := range g.BasicBlocks() {
		if bb.HasFlag(FlagExit) {
			out = append(out, bb)
		}
	}
	return out
}
