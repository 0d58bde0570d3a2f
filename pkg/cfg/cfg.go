// Package cfg builds control flow graphs of basic blocks from function bodies.
//
// A single CFG owns the blocks of every function built into it. The expected
// lifecycle is: Build once per function, MergeEmptyBlocks once, then treat the
// graph as read-only and hand it to analysis passes through the query and
// traversal methods.
package cfg

import (
	"fmt"

	"github.com/l3aro/tscfg/pkg/ast"
)

// Sentinel edge labels for the two sides of a conditional branch. Switch case
// edges are labeled with the case test node instead.
var (
	LabelTrue  ast.Node = &ast.Literal{Base: ast.Base{Src: "true"}, Lit: ast.LitBool, Value: "true"}
	LabelFalse ast.Node = &ast.Literal{Base: ast.Base{Src: "false"}, Lit: ast.LitBool, Value: "false"}
)

// JumpTargets holds the blocks a continue and a break inside a loop or switch
// jump to. Continue is nil for switches and labeled non-loop statements.
type JumpTargets struct {
	Continue *BasicBlock
	Break    *BasicBlock
}

type edgeKey struct {
	bb  *BasicBlock
	idx int
}

type nodeLoc struct {
	bb  *BasicBlock
	idx int
}

// CFG owns the basic blocks of one compilation unit.
type CFG struct {
	blocks      []*BasicBlock
	nextIndex   int
	entries     map[*ast.Function]*BasicBlock
	functions   []*ast.Function
	nodeBlocks  map[ast.Node]nodeLoc
	succLabels  map[edgeKey]ast.Node
	predLabels  map[edgeKey]ast.Node
	switchCases map[ast.Node]ast.Node
	jumpTargets map[ast.Node]JumpTargets
	merged      bool
}

// New creates an empty CFG.
func New() *CFG {
	return &CFG{
		entries:     make(map[*ast.Function]*BasicBlock),
		nodeBlocks:  make(map[ast.Node]nodeLoc),
		succLabels:  make(map[edgeKey]ast.Node),
		predLabels:  make(map[edgeKey]ast.Node),
		switchCases: make(map[ast.Node]ast.Node),
		jumpTargets: make(map[ast.Node]JumpTargets),
	}
}

func (g *CFG) createBlock(flags Flags) *BasicBlock {
	bb := &BasicBlock{index: g.nextIndex, flags: flags}
	g.nextIndex++
	g.blocks = append(g.blocks, bb)
	return bb
}

func (g *CFG) addNode(bb *BasicBlock, n ast.Node) {
	idx := bb.AddNode(n)
	g.nodeBlocks[n] = nodeLoc{bb: bb, idx: idx}
}

// addEdge links from -> to and attaches label to both sides of the edge.
// A nil label leaves the edge unlabeled.
func (g *CFG) addEdge(from, to *BasicBlock, label ast.Node) {
	si, pi := from.AddSuccessor(to)
	if label != nil {
		g.succLabels[edgeKey{from, si}] = label
		g.predLabels[edgeKey{to, pi}] = label
	}
}

// BasicBlocks returns the live blocks ordered by index.
func (g *CFG) BasicBlocks() []*BasicBlock {
	out := make([]*BasicBlock, len(g.blocks))
	copy(out, g.blocks)
	return out
}

// Functions returns the functions built so far, in build order.
func (g *CFG) Functions() []*ast.Function {
	out := make([]*ast.Function, len(g.functions))
	copy(out, g.functions)
	return out
}

// FindEntryBasicBlock returns the entry block of fn, or nil if fn was not built.
func (g *CFG) FindEntryBasicBlock(fn *ast.Function) *BasicBlock {
	return g.entries[fn]
}

// FindBasicBlock returns the block holding n and the position of n inside it.
// It returns (nil, -1) for nodes that were never added to a block.
func (g *CFG) FindBasicBlock(n ast.Node) (*BasicBlock, int) {
	loc, ok := g.nodeBlocks[n]
	if !ok {
		return nil, -1
	}
	return loc.bb, loc.idx
}

// SuccEdgeLabel returns the label of the idx-th successor edge of bb, or nil.
func (g *CFG) SuccEdgeLabel(bb *BasicBlock, idx int) ast.Node {
	return g.succLabels[edgeKey{bb, idx}]
}

// PredEdgeLabel returns the label of the idx-th predecessor edge of bb, or nil.
func (g *CFG) PredEdgeLabel(bb *BasicBlock, idx int) ast.Node {
	return g.predLabels[edgeKey{bb, idx}]
}

// PredCondition returns the branch condition guarding the idx-th predecessor
// edge of bb together with the edge label. For switch case edges the
// condition is the switch discriminant; otherwise it is the last node of the
// predecessor block. Both results are nil for unlabeled edges.
func (g *CFG) PredCondition(bb *BasicBlock, idx int) (cond, label ast.Node) {
	label = g.predLabels[edgeKey{bb, idx}]
	if label == nil {
		return nil, nil
	}
	if disc, ok := g.switchCases[label]; ok {
		return disc, label
	}
	if idx < len(bb.preds) {
		cond = bb.preds[idx].LastNode()
	}
	return cond, label
}

// SwitchDiscriminant returns the discriminant a case test is compared with.
func (g *CFG) SwitchDiscriminant(caseTest ast.Node) ast.Node {
	return g.switchCases[caseTest]
}

// LoopJumpTargets returns the continue and break targets registered for a
// loop, switch or labeled statement.
func (g *CFG) LoopJumpTargets(stmt ast.Node) (JumpTargets, bool) {
	t, ok := g.jumpTargets[stmt]
	return t, ok
}

// Merged reports whether MergeEmptyBlocks has run.
func (g *CFG) Merged() bool { return g.merged }

// CheckEdges verifies that every successor edge has exactly one matching
// predecessor edge and vice versa.
func (g *CFG) CheckEdges() error {
	type pair struct{ from, to int }
	count := make(map[pair]int)
	for _, bb := range g.blocks {
		for _, s := range bb.succs {
			count[pair{bb.index, s.index}]++
		}
		for _, p := range bb.preds {
			count[pair{p.index, bb.index}]--
		}
	}
	for e, n := range count {
		if n != 0 {
			return fmt.Errorf("edge bb%d -> bb%d: %d unmatched", e.from, e.to, n)
		}
	}
	return nil
}

// LabelString renders an edge label for display.
func LabelString(label ast.Node) string {
	switch label {
	case nil:
		return ""
	case LabelTrue:
		return "true"
	case LabelFalse:
		return "false"
	}
	if t := label.Text(); t != "" {
		return t
	}
	return label.Kind().String()
}
