package cfg

import (
	"slices"

	"github.com/l3aro/tscfg/pkg/ast"
)

// MergeEmptyBlocks removes scaffolding blocks left by Build. A block without
// nodes is dropped when it has no edges at all, or when it has exactly one
// unlabeled successor other than itself; in the second case its predecessors
// are redirected to that successor and keep their edge labels. Entry blocks
// are always kept. Reachability and edge labels are unchanged.
//
// MergeEmptyBlocks must run exactly once, after every function is built.
func (g *CFG) MergeEmptyBlocks() {
	if g.merged {
		panic("cfg: MergeEmptyBlocks called twice")
	}
	g.merged = true

	removed := make(map[*BasicBlock]bool)
	forward := make(map[*BasicBlock]*BasicBlock)
	for _, bb := range g.blocks {
		if !bb.IsEmpty() || bb.HasFlag(FlagEntry) {
			continue
		}
		switch {
		case len(bb.succs) == 0 && len(bb.preds) == 0:
			removed[bb] = true
		case len(bb.succs) == 1 && bb.succs[0] != bb && g.succLabels[edgeKey{bb, 0}] == nil:
			forward[bb] = bb.succs[0]
			g.bypass(bb)
			removed[bb] = true
		}
	}
	if len(removed) == 0 {
		return
	}

	g.blocks = slices.DeleteFunc(g.blocks, func(bb *BasicBlock) bool { return removed[bb] })
	for k := range g.succLabels {
		if removed[k.bb] {
			delete(g.succLabels, k)
		}
	}
	for k := range g.predLabels {
		if removed[k.bb] {
			delete(g.predLabels, k)
		}
	}

	// Keep LoopJumpTargets answering with live blocks.
	resolve := func(bb *BasicBlock) *BasicBlock {
		for bb != nil && removed[bb] {
			bb = forward[bb]
		}
		return bb
	}
	for stmt, t := range g.jumpTargets {
		g.jumpTargets[stmt] = JumpTargets{Continue: resolve(t.Continue), Break: resolve(t.Break)}
	}
}

// bypass redirects every edge into bb to its single successor.
func (g *CFG) bypass(bb *BasicBlock) {
	succ := bb.succs[0]
	slot := slices.Index(succ.preds, bb)

	for j, p := range bb.preds {
		label := g.predLabels[edgeKey{bb, j}]
		// Earlier iterations already rewrote earlier p -> bb edges, so this
		// finds the edge that belongs to predecessor slot j.
		k := slices.Index(p.succs, bb)
		p.succs[k] = succ
		if j == 0 {
			succ.preds[slot] = p
			g.setPredLabel(succ, slot, label)
		} else {
			succ.preds = append(succ.preds, p)
			g.setPredLabel(succ, len(succ.preds)-1, label)
		}
	}
	if len(bb.preds) == 0 {
		g.removePred(succ, slot)
	}
	bb.preds, bb.succs = nil, nil
}

func (g *CFG) setPredLabel(bb *BasicBlock, idx int, label ast.Node) {
	key := edgeKey{bb, idx}
	if label == nil {
		delete(g.predLabels, key)
		return
	}
	g.predLabels[key] = label
}

// removePred deletes predecessor slot idx of bb and shifts the labels of the
// following slots down by one.
func (g *CFG) removePred(bb *BasicBlock, idx int) {
	bb.preds = slices.Delete(bb.preds, idx, idx+1)
	delete(g.predLabels, edgeKey{bb, idx})
	for i := idx; i < len(bb.preds); i++ {
		if l, ok := g.predLabels[edgeKey{bb, i + 1}]; ok {
			g.predLabels[edgeKey{bb, i}] = l
			delete(g.predLabels, edgeKey{bb, i + 1})
		}
	}
}
