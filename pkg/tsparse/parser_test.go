package tsparse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/tscfg/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := NewParser(TypeScript)
	defer p.Close()
	prog, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return prog
}

// collect returns every node of type T under n in preorder.
func collect[T ast.Node](n ast.Node) []T {
	var out []T
	ast.Inspect(n, func(n ast.Node) bool {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

func TestParse_FunctionShape(t *testing.T) {
	prog := parse(t, `function f(a: number): number {
  while (a) {
    a--;
  }
  return a;
}`)

	require.Len(t, prog.Body, 1)
	fn, ok := prog.Body[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	assert.False(t, fn.Arrow)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "a", fn.Params[0].(*ast.Ident).Name)
	assert.Equal(t, 1, fn.Span().Start.Line)
	assert.Equal(t, 6, fn.Span().End.Line)

	body := fn.Body.(*ast.Block)
	require.Len(t, body.Stmts, 2)
	loop, ok := body.Stmts[0].(*ast.While)
	require.True(t, ok)
	assert.Equal(t, "a", loop.Test.Text())

	upd := collect[*ast.Update](loop)
	require.Len(t, upd, 1)
	assert.Equal(t, "--", upd[0].Op)
	assert.False(t, upd[0].Prefix)

	ret, ok := body.Stmts[1].(*ast.Return)
	require.True(t, ok)
	assert.Equal(t, "return a;", ret.Text())
}

func TestParse_JumpTargets(t *testing.T) {
	prog := parse(t, `function g(xs) {
  outer: for (const x of xs) {
    for (let i = 0; i < x; i++) {
      if (i) continue outer;
      if (x) break;
    }
    switch (x) {
      case 1:
        break;
      default:
        continue;
    }
  }
}`)

	labeled := collect[*ast.Labeled](prog)
	require.Len(t, labeled, 1)
	assert.Equal(t, "outer", labeled[0].Label)
	forOf := collect[*ast.ForOf](prog)
	require.Len(t, forOf, 1)
	inner := collect[*ast.For](prog)
	require.Len(t, inner, 1)
	sw := collect[*ast.Switch](prog)
	require.Len(t, sw, 1)

	conts := collect[*ast.Continue](prog)
	require.Len(t, conts, 2)
	assert.Equal(t, "outer", conts[0].Label)
	assert.Equal(t, labeled[0], conts[0].Target)
	assert.Equal(t, forOf[0], conts[1].Target, "continue inside a switch repeats the enclosing loop")

	breaks := collect[*ast.Break](prog)
	require.Len(t, breaks, 2)
	assert.Equal(t, inner[0], breaks[0].Target)
	assert.Equal(t, sw[0], breaks[1].Target)

	require.Len(t, sw[0].Cases, 2)
	assert.Equal(t, "1", sw[0].Cases[0].Test.Text())
	assert.True(t, sw[0].Cases[1].IsDefault())
}

func TestParse_LabeledBlockAndUnresolved(t *testing.T) {
	prog := parse(t, `function h() {
  blk: {
    break blk;
  }
  while (true) {
    const f = () => { break; };
  }
}`)

	labeled := collect[*ast.Labeled](prog)
	require.Len(t, labeled, 1)
	breaks := collect[*ast.Break](prog)
	require.Len(t, breaks, 2)
	assert.Equal(t, labeled[0], breaks[0].Target)
	assert.Nil(t, breaks[1].Target, "jumps do not resolve across function boundaries")
}

func TestParse_UnlabeledBreakSkipsLabels(t *testing.T) {
	prog := parse(t, `function k() {
  for (;;) {
    blk: {
      break;
    }
  }
}`)

	loops := collect[*ast.For](prog)
	require.Len(t, loops, 1)
	assert.Nil(t, loops[0].Test)
	assert.Nil(t, loops[0].Init)
	assert.Nil(t, loops[0].Update)

	breaks := collect[*ast.Break](prog)
	require.Len(t, breaks, 1)
	assert.Equal(t, loops[0], breaks[0].Target, "an unlabeled break skips labeled blocks")
}

func TestParse_Expressions(t *testing.T) {
	prog := parse(t, `const v = a ?? b;
const w = a && b;
const n = (x as number)!;
const t = typeof y;
let z = c ? d : e;
obj?.m(1, ...rest);
arr[i] += 2;
`)

	decls := collect[*ast.VarDeclarator](prog)
	require.Len(t, decls, 5)

	nullish, ok := decls[0].Init.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalNullish, nullish.Op)
	and, ok := decls[1].Init.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalAnd, and.Op)

	nn, ok := decls[2].Init.(*ast.NonNull)
	require.True(t, ok)
	as, ok := nn.X.(*ast.As)
	require.True(t, ok)
	assert.Equal(t, "number", as.Type)

	_, ok = decls[3].Init.(*ast.TypeOf)
	assert.True(t, ok)
	_, ok = decls[4].Init.(*ast.Conditional)
	assert.True(t, ok)

	vds := collect[*ast.VarDecl](prog)
	require.Len(t, vds, 5)
	assert.Equal(t, "const", vds[0].Keyword)
	assert.Equal(t, "let", vds[4].Keyword)

	calls := collect[*ast.Call](prog)
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Args, 2)
	_, ok = calls[0].Args[1].(*ast.Spread)
	assert.True(t, ok)
	callee, ok := calls[0].Callee.(*ast.Member)
	require.True(t, ok)
	assert.True(t, callee.Optional)

	assigns := collect[*ast.Assign](prog)
	require.Len(t, assigns, 1)
	assert.Equal(t, "+=", assigns[0].Op)
	sub, ok := assigns[0].Left.(*ast.Member)
	require.True(t, ok)
	assert.True(t, sub.Computed)
}

func TestParse_FunctionForms(t *testing.T) {
	prog := parse(t, `const add = (a, b) => a + b;
const obj = {
  run() { return 1; },
  go: function () {},
};
class C {
  m() { return 2; }
  h = () => 3;
}
`)

	var names []string
	for _, fn := range ast.Functions(prog) {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"add", "run", "go", "m", "h"}, names)

	add := ast.Functions(prog)[0]
	assert.True(t, add.Arrow)
	assert.True(t, add.IsExpressionBody())

	classes := collect[*ast.Class](prog)
	require.Len(t, classes, 1)
	assert.Equal(t, "C", classes[0].Name)
}

func TestParse_ForIn(t *testing.T) {
	prog := parse(t, `for (const k in obj) { use(k); }
for (x of xs) {}
`)

	forIn := collect[*ast.ForIn](prog)
	require.Len(t, forIn, 1)
	decl, ok := forIn[0].Left.(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "const", decl.Keyword)
	assert.Equal(t, "obj", forIn[0].Right.Text())

	forOf := collect[*ast.ForOf](prog)
	require.Len(t, forOf, 1)
	_, ok = forOf[0].Left.(*ast.Ident)
	assert.True(t, ok)
}

func TestParse_TryAndTypes(t *testing.T) {
	prog := parse(t, `interface P { x: number }
type Q = string;
try { risky(); } catch (e) { handle(e); } finally { done(); }
throw new Error("x");
`)

	raws := collect[*ast.Raw](prog)
	require.GreaterOrEqual(t, len(raws), 2)
	assert.Equal(t, "interface_declaration", raws[0].Type)

	tries := collect[*ast.Try](prog)
	require.Len(t, tries, 1)
	require.NotNil(t, tries[0].Handler)
	assert.Equal(t, "e", tries[0].Handler.Param.(*ast.Ident).Name)
	assert.NotNil(t, tries[0].Finalizer)

	throws := collect[*ast.Throw](prog)
	require.Len(t, throws, 1)
	_, ok := throws[0].Arg.(*ast.New)
	assert.True(t, ok)
}

func TestParse_SyntaxError(t *testing.T) {
	p := NewParser(TypeScript)
	defer p.Close()
	_, err := p.Parse(context.Background(), []byte("function (a { return"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "view.tsx")
	require.NoError(t, os.WriteFile(path, []byte("export function View() { return <div />; }\n"), 0644))

	prog, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	fns := ast.Functions(prog)
	require.Len(t, fns, 1)
	assert.Equal(t, "View", fns[0].Name)

	_, err = ParseFile(context.Background(), filepath.Join(dir, "missing.ts"))
	assert.Error(t, err)
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		path string
		want Dialect
	}{
		{"a.ts", TypeScript},
		{"a.mts", TypeScript},
		{"a.tsx", TSX},
		{"A.JSX", TSX},
		{"noext", TypeScript},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, DialectFor(tc.path))
		})
	}
}
