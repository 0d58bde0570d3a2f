package cfg

import (
	"encoding/json"
	"testing"

	"github.com/l3aro/tscfg/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_While(t *testing.T) {
	x, y := ident("x"), call("y")
	fn := function("poll", &ast.While{Test: x, Body: block(stmt(y))})
	g, _ := buildOne(t, fn)
	g.MergeEmptyBlocks()

	info := g.Describe(fn)
	require.NotNil(t, info)
	assert.Equal(t, "poll", info.FunctionName)
	assert.Equal(t, "bb0", info.EntryBlockID)
	assert.Equal(t, []string{"bb2"}, info.ExitBlockIDs)

	types := make(map[string]BlockType)
	for _, b := range info.Blocks {
		types[b.ID] = b.Type
	}
	assert.Equal(t, map[string]BlockType{
		"bb0": BlockTypeEntry,
		"bb1": BlockTypeBranch,
		"bb2": BlockTypeExit,
		"bb3": BlockTypeLoopBody,
	}, types)
	assert.Equal(t, []string{"y", "y()"}, info.Blocks[3].Statements)
	assert.Equal(t, []string{"bb0", "bb3"}, info.Blocks[1].Predecessors)

	assert.Equal(t, []EdgeInfo{
		{SourceID: "bb0", TargetID: "bb1", EdgeType: EdgeTypeUnconditional},
		{SourceID: "bb1", TargetID: "bb3", EdgeType: EdgeTypeTrue, Condition: "true"},
		{SourceID: "bb1", TargetID: "bb2", EdgeType: EdgeTypeFalse, Condition: "false"},
		{SourceID: "bb3", TargetID: "bb1", EdgeType: EdgeTypeBackEdge},
	}, info.Edges)
	assert.Equal(t, 2, info.CyclomaticComplexity)
}

func TestDescribe_Complexity(t *testing.T) {
	sw := &ast.Switch{Disc: ident("d"), Cases: []*ast.Case{
		{Test: num("1"), Body: []ast.Node{stmt(ident("p"))}},
		{Test: num("2"), Body: []ast.Node{stmt(ident("q"))}},
	}}

	tests := []struct {
		name string
		fn   *ast.Function
		want int
	}{
		{"straight line", function("a", stmt(ident("x"))), 1},
		{"if", function("b", &ast.If{Test: ident("c"), Cons: stmt(ident("x"))}), 2},
		{"if else", function("c", &ast.If{Test: ident("c"), Cons: stmt(ident("x")), Alt: stmt(ident("y"))}), 2},
		{"and", function("d", stmt(&ast.Logical{Op: ast.LogicalAnd, Left: ident("a"), Right: ident("b")})), 2},
		{"switch", function("e", sw), 3},
		{"early return", function("f",
			&ast.If{Test: ident("c"), Cons: &ast.Return{Arg: ident("a")}},
			&ast.Return{Arg: ident("b")}), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := buildOne(t, tc.fn)
			g.MergeEmptyBlocks()
			info := g.Describe(tc.fn)
			require.NotNil(t, info)
			assert.Equal(t, tc.want, info.CyclomaticComplexity)
		})
	}
}

func TestDescribe_CaseEdgesAndReturn(t *testing.T) {
	one := num("1")
	ret := &ast.Return{Arg: ident("r")}
	fn := function("pick", &ast.Switch{Disc: ident("d"), Cases: []*ast.Case{
		{Test: one, Body: []ast.Node{ret}},
	}})
	g, _ := buildOne(t, fn)
	g.MergeEmptyBlocks()
	info := g.Describe(fn)
	require.NotNil(t, info)

	var caseEdge *EdgeInfo
	for i := range info.Edges {
		if info.Edges[i].EdgeType == EdgeTypeCase {
			caseEdge = &info.Edges[i]
		}
	}
	require.NotNil(t, caseEdge)
	assert.Equal(t, "1", caseEdge.Condition)

	retBB := blockOf(t, g, ret)
	for _, b := range info.Blocks {
		if b.ID == retBB.String() {
			assert.Equal(t, BlockTypeReturn, b.Type)
		}
	}
	assert.Contains(t, info.ExitBlockIDs, retBB.String())
}

func TestDescribe_Unbuilt(t *testing.T) {
	assert.Nil(t, New().Describe(function("nope")))
}

func TestInfoJSON(t *testing.T) {
	fn := function("", stmt(ident("x")))
	fn.Loc = ast.Span{Start: ast.Pos{Line: 7, Column: 1}}
	g, _ := buildOne(t, fn)

	data, err := json.Marshal(g.Describe(fn))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "<anonymous:7>", decoded["function_name"])
	assert.Equal(t, "bb0", decoded["entry_block_id"])
	assert.EqualValues(t, 1, decoded["cyclomatic_complexity"])
	assert.Contains(t, decoded, "edges")
}
