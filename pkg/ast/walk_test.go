package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChildren(t *testing.T) {
	a, b := &Ident{Name: "a"}, &Ident{Name: "b"}
	tests := []struct {
		name string
		node Node
		want []Node
	}{
		{"if without else", &If{Test: a, Cons: b}, []Node{a, b}},
		{"for with nil clauses", &For{Test: a, Body: b}, []Node{a, b}},
		{"call", &Call{Callee: a, Args: []Node{b}}, []Node{a, b}},
		{"try with nil handler", &Try{Block: &Block{}}, []Node{&Block{}}},
		{"typed nil body", &Function{Body: (*Block)(nil)}, nil},
		{"leaf", a, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Children(tc.node))
		})
	}
}

func TestChildren_JumpTargetsAreNotChildren(t *testing.T) {
	loop := &While{Test: &Ident{Name: "x"}}
	assert.Empty(t, Children(&Break{Target: loop}))
	assert.Empty(t, Children(&Continue{Target: loop}))
}

func TestInspect_Prune(t *testing.T) {
	inner := &Function{Name: "inner", Body: &Block{}}
	outer := &Function{Name: "outer", Body: &Block{Stmts: []Node{&ExprStmt{X: inner}}}}

	var kinds []Kind
	Inspect(outer, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n != Node(inner)
	})
	assert.Equal(t, []Kind{KindFunction, KindBlock, KindExprStmt, KindFunction}, kinds)
}

func TestFunctions(t *testing.T) {
	arrow := &Function{Arrow: true, Body: &Ident{Name: "v"}}
	method := &Function{Name: "m", Body: &Block{}}
	outer := &Function{Name: "outer", Body: &Block{Stmts: []Node{
		&VarDecl{Keyword: "const", Decls: []*VarDeclarator{{Name: &Ident{Name: "f"}, Init: arrow}}},
	}}}
	prog := &Program{Body: []Node{
		outer,
		&Class{Name: "C", Methods: []*Function{method}},
	}}

	assert.Equal(t, []*Function{outer, arrow, method}, Functions(prog))
	assert.True(t, arrow.IsExpressionBody())
	assert.False(t, method.IsExpressionBody())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "while_statement", KindWhile.String())
	assert.Equal(t, "if_statement", (&If{}).Kind().String())
	assert.True(t, KindForOf.IsLoop())
	assert.True(t, KindDoWhile.IsLoop())
	assert.False(t, KindSwitch.IsLoop())
	assert.False(t, KindLabeled.IsLoop())
}

func TestSetText(t *testing.T) {
	span := Span{Start: Pos{Line: 2, Column: 3}, End: Pos{Line: 2, Column: 4}}
	id := SetText(&Ident{Name: "x"}, "x", span)
	assert.Equal(t, "x", id.Text())
	assert.Equal(t, span, id.Span())
	assert.Equal(t, "x", id.Name)
}
