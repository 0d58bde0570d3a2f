package ast

// Kind discriminates node variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram
	KindFunction
	KindClass
	KindBlock
	KindExprStmt
	KindVarDecl
	KindVarDeclarator
	KindEmpty
	KindIf
	KindWhile
	KindDoWhile
	KindFor
	KindForOf
	KindForIn
	KindSwitch
	KindCase
	KindLabeled
	KindBreak
	KindContinue
	KindReturn
	KindThrow
	KindTry
	KindCatch
	KindIdent
	KindLiteral
	KindThis
	KindBinary
	KindLogical
	KindConditional
	KindAssign
	KindCall
	KindNew
	KindMember
	KindUpdate
	KindUnary
	KindTypeOf
	KindAs
	KindNonNull
	KindAwait
	KindSpread
	KindSequence
	KindArrayLit
	KindObjectLit
	KindProperty
	KindRaw
)

var kindNames = [...]string{
	KindInvalid:       "invalid",
	KindProgram:       "program",
	KindFunction:      "function",
	KindClass:         "class",
	KindBlock:         "block",
	KindExprStmt:      "expression_statement",
	KindVarDecl:       "variable_declaration",
	KindVarDeclarator: "variable_declarator",
	KindEmpty:         "empty_statement",
	KindIf:            "if_statement",
	KindWhile:         "while_statement",
	KindDoWhile:       "do_statement",
	KindFor:           "for_statement",
	KindForOf:         "for_of_statement",
	KindForIn:         "for_in_statement",
	KindSwitch:        "switch_statement",
	KindCase:          "switch_case",
	KindLabeled:       "labeled_statement",
	KindBreak:         "break_statement",
	KindContinue:      "continue_statement",
	KindReturn:        "return_statement",
	KindThrow:         "throw_statement",
	KindTry:           "try_statement",
	KindCatch:         "catch_clause",
	KindIdent:         "identifier",
	KindLiteral:       "literal",
	KindThis:          "this",
	KindBinary:        "binary_expression",
	KindLogical:       "logical_expression",
	KindConditional:   "conditional_expression",
	KindAssign:        "assignment_expression",
	KindCall:          "call_expression",
	KindNew:           "new_expression",
	KindMember:        "member_expression",
	KindUpdate:        "update_expression",
	KindUnary:         "unary_expression",
	KindTypeOf:        "typeof_expression",
	KindAs:            "as_expression",
	KindNonNull:       "non_null_expression",
	KindAwait:         "await_expression",
	KindSpread:        "spread_element",
	KindSequence:      "sequence_expression",
	KindArrayLit:      "array",
	KindObjectLit:     "object",
	KindProperty:      "property",
	KindRaw:           "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsLoop reports whether nodes of this kind are iteration statements.
func (k Kind) IsLoop() bool {
	switch k {
	case KindWhile, KindDoWhile, KindFor, KindForOf, KindForIn:
		return true
	}
	return false
}

func (*Program) Kind() Kind { return KindProgram }
func (*Function) Kind() Kind { return KindFunction }
func (*Class) Kind() Kind { return KindClass }
func (*Block) Kind() Kind { return KindBlock }
func (*ExprStmt) Kind() Kind { return KindExprStmt }
func (*VarDecl) Kind() Kind { return KindVarDecl }
func (*VarDeclarator) Kind() Kind { return KindVarDeclarator }
func (*Empty) Kind() Kind { return KindEmpty }
func (*If) Kind() Kind { return KindIf }
func (*While) Kind() Kind { return KindWhile }
func (*DoWhile) Kind() Kind { return KindDoWhile }
func (*For) Kind() Kind { return KindFor }
func (*ForOf) Kind() Kind { return KindForOf }
func (*ForIn) Kind() Kind { return KindForIn }
func (*Switch) Kind() Kind { return KindSwitch }
func (*Case) Kind() Kind { return KindCase }
func (*Labeled) Kind() Kind { return KindLabeled }
func (*Break) Kind() Kind { return KindBreak }
func (*Continue) Kind() Kind { return KindContinue }
func (*Return) Kind() Kind { return KindReturn }
func (*Throw) Kind() Kind { return KindThrow }
func (*Try) Kind() Kind { return KindTry }
func (*Catch) Kind() Kind { return KindCatch }
func (*Ident) Kind() Kind { return KindIdent }
func (*Literal) Kind() Kind { return KindLiteral }
func (*This) Kind() Kind { return KindThis }
func (*Binary) Kind() Kind { return KindBinary }
func (*Logical) Kind() Kind { return KindLogical }
func (*Conditional) Kind() Kind { return KindConditional }
func (*Assign) Kind() Kind { return KindAssign }
func (*Call) Kind() Kind { return KindCall }
func (*New) Kind() Kind { return KindNew }
func (*Member) Kind() Kind { return KindMember }
func (*Update) Kind() Kind { return KindUpdate }
func (*Unary) Kind() Kind { return KindUnary }
func (*TypeOf) Kind() Kind { return KindTypeOf }
func (*As) Kind() Kind { return KindAs }
func (*NonNull) Kind() Kind { return KindNonNull }
func (*Await) Kind() Kind { return KindAwait }
func (*Spread) Kind() Kind { return KindSpread }
func (*Sequence) Kind() Kind { return KindSequence }
func (*ArrayLit) Kind() Kind { return KindArrayLit }
func (*ObjectLit) Kind() Kind { return KindObjectLit }
func (*Property) Kind() Kind { return KindProperty }
func (*Raw) Kind() Kind { return KindRaw }
