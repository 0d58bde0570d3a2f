// Package ast defines the closed set of syntax nodes consumed by the CFG builder.
// Nodes are produced by a front end (see package tsparse) after parsing and
// jump-target resolution; the builder only reads them.
package ast

// Pos is a 1-based source position.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is the source range covered by a node.
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// Node is implemented by every syntax node.
type Node interface {
	Kind() Kind
	Span() Span
	// Text returns the source text of the node, if the front end recorded it.
	Text() string
	base() *Base
}

// Base carries the location and source text shared by all nodes.
type Base struct {
	Loc Span
	Src string
}

func (b *Base) Span() Span { return b.Loc }
func (b *Base) Text() string { return b.Src }
func (b *Base) base() *Base { return b }

// SetText records the source text and span of a node. It returns the node so
// front ends can wrap constructors.
func SetText[N Node](n N, text string, span Span) N {
	b := n.base()
	b.Src = text
	b.Loc = span
	return n
}

// Program is a parsed source file.
type Program struct {
	Base
	Body []Node
}

// Function is a function declaration, function expression, method or arrow
// function. Body is a *Block, or any expression for arrow functions with an
// expression body.
type Function struct {
	Base
	Name   string
	Params []Node
	Body   Node
	Arrow  bool
}

// IsExpressionBody reports whether the function is an arrow function whose
// body is a single expression.
func (f *Function) IsExpressionBody() bool {
	_, ok := f.Body.(*Block)
	return f.Body != nil && !ok
}

// Class is an opaque class declaration or expression. Its methods are
// separate functions reached through Methods.
type Class struct {
	Base
	Name    string
	Methods []*Function
}

// Block is a braced statement list.
type Block struct {
	Base
	Stmts []Node
}

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	Base
	X Node
}

// VarDecl is a var/let/const declaration.
type VarDecl struct {
	Base
	Keyword string
	Decls   []*VarDeclarator
}

// VarDeclarator is a single binding inside a VarDecl. Init may be nil.
type VarDeclarator struct {
	Base
	Name Node
	Init Node
}

// Empty is the empty statement.
type Empty struct {
	Base
}

type If struct {
	Base
	Test Node
	Cons Node
	Alt  Node
}

type While struct {
	Base
	Test Node
	Body Node
}

type DoWhile struct {
	Base
	Body Node
	Test Node
}

// For is a classic three-clause loop. Any of Init, Test and Update may be nil.
type For struct {
	Base
	Init   Node
	Test   Node
	Update Node
	Body   Node
}

// ForOf is `for (left of right)`.
type ForOf struct {
	Base
	Left  Node
	Right Node
	Body  Node
	Await bool
}

// ForIn is `for (left in right)`.
type ForIn struct {
	Base
	Left  Node
	Right Node
	Body  Node
}

type Switch struct {
	Base
	Disc  Node
	Cases []*Case
}

// Case is a switch clause. Test is nil for `default`.
type Case struct {
	Base
	Test Node
	Body []Node
}

// IsDefault reports whether the clause is the default clause.
func (c *Case) IsDefault() bool { return c.Test == nil }

// Labeled is `label: body`.
type Labeled struct {
	Base
	Label string
	Body  Node
}

// Break is a break statement. Target is the statement it exits, as resolved
// by the front end: the innermost loop or switch, or the *Labeled statement
// named by Label. A nil Target means unresolved.
type Break struct {
	Base
	Label  string
	Target Node
}

// Continue is a continue statement. Target is the innermost loop, or the
// *Labeled statement named by Label.
type Continue struct {
	Base
	Label  string
	Target Node
}

// Return is a return statement. Arg may be nil.
type Return struct {
	Base
	Arg Node
}

type Throw struct {
	Base
	Arg Node
}

// Try holds Block, an optional Handler and an optional Finalizer.
type Try struct {
	Base
	Block     *Block
	Handler   *Catch
	Finalizer *Block
}

type Catch struct {
	Base
	Param Node
	Body  *Block
}

// Ident is an identifier reference or binding name.
type Ident struct {
	Base
	Name string
}

// LitKind classifies literals.
type LitKind int

const (
	LitNumber LitKind = iota
	LitString
	LitBool
	LitNull
	LitUndefined
	LitRegExp
	LitTemplate
	LitBigInt
)

type Literal struct {
	Base
	Lit   LitKind
	Value string
}

type This struct {
	Base
}

// Binary is a non-short-circuit binary operation.
type Binary struct {
	Base
	Op    string
	Left  Node
	Right Node
}

// LogicalOp is a short-circuit operator.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalNullish
)

func (op LogicalOp) String() string {
	switch op {
	case LogicalAnd:
		return "&&"
	case LogicalOr:
		return "||"
	case LogicalNullish:
		return "??"
	default:
		return "?"
	}
}

type Logical struct {
	Base
	Op    LogicalOp
	Left  Node
	Right Node
}

// Conditional is the ternary `test ? cons : alt`.
type Conditional struct {
	Base
	Test Node
	Cons Node
	Alt  Node
}

// Assign is a plain or compound assignment; Op is "=", "+=", ...
type Assign struct {
	Base
	Op    string
	Left  Node
	Right Node
}

type Call struct {
	Base
	Callee   Node
	Args     []Node
	Optional bool
}

type New struct {
	Base
	Callee Node
	Args   []Node
}

// Member is `object.property` or, when Computed, `object[property]`.
type Member struct {
	Base
	Object   Node
	Property Node
	Computed bool
	Optional bool
}

// Update is `++x`, `x++`, `--x` or `x--`.
type Update struct {
	Base
	Op     string
	Arg    Node
	Prefix bool
}

type Unary struct {
	Base
	Op  string
	Arg Node
}

type TypeOf struct {
	Base
	Arg Node
}

// As is a TypeScript `x as T` (or `x satisfies T`) expression.
type As struct {
	Base
	X    Node
	Type string
}

// NonNull is a TypeScript `x!` expression.
type NonNull struct {
	Base
	X Node
}

type Await struct {
	Base
	Arg Node
}

type Spread struct {
	Base
	Arg Node
}

// Sequence is the comma operator.
type Sequence struct {
	Base
	Exprs []Node
}

type ArrayLit struct {
	Base
	Elems []Node
}

type ObjectLit struct {
	Base
	Props []*Property
}

// Property is an object literal entry. Key is only evaluated when Computed;
// methods carry a *Function as Value.
type Property struct {
	Base
	Key      Node
	Value    Node
	Computed bool
}

// Raw is a construct kept only as source text: binding patterns, type-level
// declarations, imports and JSX. Type is the front end's name for it.
type Raw struct {
	Base
	Type string
}
