package cfg

import (
	"fmt"
	"strings"

	"github.com/l3aro/tscfg/pkg/ast"
)

// Flags is the bitset of block properties.
type Flags uint8

const (
	// FlagEntry marks the unique entry block of a function.
	FlagEntry Flags = 1 << iota
	// FlagExit marks blocks that leave the function.
	FlagExit
	// FlagCondition marks blocks whose last node is a branch test.
	FlagCondition
	// FlagLoop marks blocks created inside a loop body.
	FlagLoop
)

func (f Flags) String() string {
	var parts []string
	if f&FlagEntry != 0 {
		parts = append(parts, "ENTRY")
	}
	if f&FlagExit != 0 {
		parts = append(parts, "EXIT")
	}
	if f&FlagCondition != 0 {
		parts = append(parts, "CONDITION")
	}
	if f&FlagLoop != 0 {
		parts = append(parts, "LOOP")
	}
	return strings.Join(parts, "|")
}

// BasicBlock is a straight-line run of AST nodes with ordered successor and
// predecessor lists. Edges are always added in pairs.
type BasicBlock struct {
	index int
	nodes []ast.Node
	succs []*BasicBlock
	preds []*BasicBlock
	flags Flags
}

// Index returns the creation index of the block, unique within its CFG.
func (bb *BasicBlock) Index() int { return bb.index }

// Nodes returns the AST nodes of the block in evaluation order.
func (bb *BasicBlock) Nodes() []ast.Node { return bb.nodes }

// Succs returns the successor blocks in edge order.
func (bb *BasicBlock) Succs() []*BasicBlock { return bb.succs }

// Preds returns the predecessor blocks in edge order.
func (bb *BasicBlock) Preds() []*BasicBlock { return bb.preds }

// LastNode returns the final node of the block, or nil for an empty block.
func (bb *BasicBlock) LastNode() ast.Node {
	if len(bb.nodes) == 0 {
		return nil
	}
	return bb.nodes[len(bb.nodes)-1]
}

// AddNode appends n and returns its position in the block.
func (bb *BasicBlock) AddNode(n ast.Node) int {
	bb.nodes = append(bb.nodes, n)
	return len(bb.nodes) - 1
}

// AddSuccessor adds the edge bb -> target and returns the new successor
// index in bb and predecessor index in target.
func (bb *BasicBlock) AddSuccessor(target *BasicBlock) (succIdx, predIdx int) {
	if target == nil {
		panic(fmt.Sprintf("cfg: nil successor for bb%d", bb.index))
	}
	bb.succs = append(bb.succs, target)
	target.preds = append(target.preds, bb)
	return len(bb.succs) - 1, len(target.preds) - 1
}

// AddPredecessor adds the edge source -> bb. It is the mirror of
// AddSuccessor for sites where the target side is known first.
func (bb *BasicBlock) AddPredecessor(source *BasicBlock) (succIdx, predIdx int) {
	if source == nil {
		panic(fmt.Sprintf("cfg: nil predecessor for bb%d", bb.index))
	}
	return source.AddSuccessor(bb)
}

// Flags returns the flags set on bb.
func (bb *BasicBlock) Flags() Flags { return bb.flags }

// HasFlag reports whether any of the flags in f is set.
func (bb *BasicBlock) HasFlag(f Flags) bool { return bb.flags&f != 0 }

// SetFlag sets the flags in f.
func (bb *BasicBlock) SetFlag(f Flags) { bb.flags |= f }

// ClearFlag clears the flags in f.
func (bb *BasicBlock) ClearFlag(f Flags) { bb.flags &^= f }

// IsEmpty reports whether bb holds no nodes.
func (bb *BasicBlock) IsEmpty() bool { return len(bb.nodes) == 0 }

// String returns the block name used in dumps, such as "bb3".
func (bb *BasicBlock) String() string { return fmt.Sprintf("bb%d", bb.index) }
