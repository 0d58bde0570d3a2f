package cfg

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Direction selects the edge list a traversal follows.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

func (d Direction) next(bb *BasicBlock) []*BasicBlock {
	if d == Backward {
		return bb.preds
	}
	return bb.succs
}

// VisitFunc is called for each block a depth-first traversal reaches.
// Returning false stops the traversal from descending past that block.
type VisitFunc func(bb *BasicBlock) bool

// roots returns start, or when start is nil, every function entry for a
// forward walk and every EXIT block for a backward walk.
func (g *CFG) roots(dir Direction, start *BasicBlock) []*BasicBlock {
	if start != nil {
		return []*BasicBlock{start}
	}
	var out []*BasicBlock
	if dir == Forward {
		for _, fn := range g.functions {
			if bb := g.entries[fn]; bb != nil {
				out = append(out, bb)
			}
		}
		return out
	}
	for _, bb := range g.blocks {
		if bb.HasFlag(FlagExit) {
			out = append(out, bb)
		}
	}
	return out
}

// DepthFirst walks the graph from start in preorder. A block already on the
// current path is skipped, which breaks cycles; a block reached again along a
// different path is visited again, so a visit that always returns true
// enumerates every acyclic path. That is exponential in the number of
// sequential branches; use Reachable to see each block once.
//
// Returning false from visit prunes the walk below that block only. The
// remaining siblings and roots are still walked.
func (g *CFG) DepthFirst(dir Direction, start *BasicBlock, visit VisitFunc) {
	onStack := bitset.New(uint(g.nextIndex))

	var walk func(bb *BasicBlock)
	walk = func(bb *BasicBlock) {
		i := uint(bb.index)
		if onStack.Test(i) || !visit(bb) {
			return
		}
		onStack.Set(i)
		for _, next := range dir.next(bb) {
			walk(next)
		}
		onStack.Clear(i)
	}

	for _, root := range g.roots(dir, start) {
		walk(root)
	}
}

// DepthFirstForward is DepthFirst along successor edges.
func (g *CFG) DepthFirstForward(start *BasicBlock, visit VisitFunc) {
	g.DepthFirst(Forward, start, visit)
}

// DepthFirstBackward is DepthFirst along predecessor edges.
func (g *CFG) DepthFirstBackward(start *BasicBlock, visit VisitFunc) {
	g.DepthFirst(Backward, start, visit)
}

// Reachable returns the blocks reachable from start in preorder, each once.
func (g *CFG) Reachable(dir Direction, start *BasicBlock) []*BasicBlock {
	seen := bitset.New(uint(g.nextIndex))
	var out []*BasicBlock
	g.DepthFirst(dir, start, func(bb *BasicBlock) bool {
		i := uint(bb.index)
		if seen.Test(i) {
			return false
		}
		seen.Set(i)
		out = append(out, bb)
		return true
	})
	return out
}

// TopologicalOrder returns the blocks reachable from start in reverse
// postorder. When closeLoop is set, a back edge to a block still in progress
// emits that block again at the point the edge is found, so loop headers
// reappear after their bodies. With several roots all of them share one
// postorder, so an edge between blocks found from different roots is still
// ordered; disjoint roots keep their relative order.
func (g *CFG) TopologicalOrder(dir Direction, start *BasicBlock, closeLoop bool) []*BasicBlock {
	size := uint(g.nextIndex)
	gray := bitset.New(size)
	black := bitset.New(size)

	var post []*BasicBlock
	var dfs func(bb *BasicBlock)
	dfs = func(bb *BasicBlock) {
		i := uint(bb.index)
		gray.Set(i)
		for _, next := range dir.next(bb) {
			j := uint(next.index)
			switch {
			case black.Test(j):
			case gray.Test(j):
				if closeLoop {
					post = append(post, next)
				}
			default:
				dfs(next)
			}
		}
		gray.Clear(i)
		black.Set(i)
		post = append(post, bb)
	}

	// Walking the roots last to first puts the first root's blocks at the
	// front once the postorder is reversed.
	roots := g.roots(dir, start)
	for _, root := range slices.Backward(roots) {
		if !black.Test(uint(root.index)) {
			dfs(root)
		}
	}
	slices.Reverse(post)
	return post
}

// TopologicalForward is TopologicalOrder along successor edges.
func (g *CFG) TopologicalForward(start *BasicBlock, closeLoop bool) []*BasicBlock {
	return g.TopologicalOrder(Forward, start, closeLoop)
}

// TopologicalBackward is TopologicalOrder along predecessor edges.
func (g *CFG) TopologicalBackward(start *BasicBlock, closeLoop bool) []*BasicBlock {
	return g.TopologicalOrder(Backward, start, closeLoop)
}
