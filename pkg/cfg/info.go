package cfg

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/l3aro/tscfg/pkg/ast"
)

// FunctionName returns the declared name of fn, or a position-based name for
// anonymous functions.
func FunctionName(fn *ast.Function) string {
	if fn.Name != "" {
		return fn.Name
	}
	return fmt.Sprintf("<anonymous:%d>", fn.Span().Start.Line)
}

// Describe summarizes the blocks reachable from the entry of fn. It returns
// nil if fn was never built.
func (g *CFG) Describe(fn *ast.Function) *Info {
	entry := g.entries[fn]
	if entry == nil {
		return nil
	}

	blocks := g.Reachable(Forward, entry)
	slices.SortFunc(blocks, func(a, b *BasicBlock) int { return a.index - b.index })
	live := bitset.New(uint(g.nextIndex))
	for _, bb := range blocks {
		live.Set(uint(bb.index))
	}
	back := g.backEdges(entry)

	info := &Info{
		FunctionName: FunctionName(fn),
		StartLine:    fn.Span().Start.Line,
		Blocks:       make([]BlockInfo, 0, len(blocks)),
		Edges:        make([]EdgeInfo, 0),
		EntryBlockID: entry.String(),
		ExitBlockIDs: make([]string, 0),
	}
	for _, bb := range blocks {
		bi := BlockInfo{
			ID:           bb.String(),
			Type:         classifyBlock(bb),
			Flags:        bb.Flags().String(),
			Statements:   make([]string, 0, len(bb.nodes)),
			Predecessors: make([]string, 0, len(bb.preds)),
		}
		for _, n := range bb.nodes {
			bi.Statements = append(bi.Statements, nodeSummary(n))
			span := n.Span()
			if span.Start.Line > 0 && (bi.StartLine == 0 || span.Start.Line < bi.StartLine) {
				bi.StartLine = span.Start.Line
			}
			if span.End.Line > bi.EndLine {
				bi.EndLine = span.End.Line
			}
		}
		for _, p := range bb.preds {
			if live.Test(uint(p.index)) {
				bi.Predecessors = append(bi.Predecessors, p.String())
			}
		}
		info.Blocks = append(info.Blocks, bi)
		if bb.HasFlag(FlagExit) {
			info.ExitBlockIDs = append(info.ExitBlockIDs, bb.String())
		}

		for i, succ := range bb.succs {
			label := g.SuccEdgeLabel(bb, i)
			et := edgeType(label)
			if back[edgeKey{bb, i}] {
				et = EdgeTypeBackEdge
			}
			info.Edges = append(info.Edges, EdgeInfo{
				SourceID:  bb.String(),
				TargetID:  succ.String(),
				EdgeType:  et,
				Condition: LabelString(label),
			})
		}
	}
	// Every exit is joined to one virtual sink, so a return in the middle of
	// the function still counts as a path: E + X - (N + 1) + 2.
	exits := max(len(info.ExitBlockIDs), 1)
	info.CyclomaticComplexity = len(info.Edges) - len(info.Blocks) + exits + 1
	return info
}

// backEdges returns the successor edges that close a cycle in a depth-first
// walk from entry.
func (g *CFG) backEdges(entry *BasicBlock) map[edgeKey]bool {
	size := uint(g.nextIndex)
	gray, done := bitset.New(size), bitset.New(size)
	back := make(map[edgeKey]bool)

	var dfs func(bb *BasicBlock)
	dfs = func(bb *BasicBlock) {
		gray.Set(uint(bb.index))
		for i, succ := range bb.succs {
			j := uint(succ.index)
			switch {
			case gray.Test(j):
				back[edgeKey{bb, i}] = true
			case !done.Test(j):
				dfs(succ)
			}
		}
		gray.Clear(uint(bb.index))
		done.Set(uint(bb.index))
	}
	dfs(entry)
	return back
}

func classifyBlock(bb *BasicBlock) BlockType {
	switch {
	case bb.HasFlag(FlagEntry):
		return BlockTypeEntry
	case bb.HasFlag(FlagExit):
		if _, ok := bb.LastNode().(*ast.Return); ok {
			return BlockTypeReturn
		}
		return BlockTypeExit
	case bb.HasFlag(FlagCondition):
		return BlockTypeBranch
	case bb.HasFlag(FlagLoop):
		return BlockTypeLoopBody
	default:
		return BlockTypePlain
	}
}

func edgeType(label ast.Node) EdgeType {
	switch label {
	case nil:
		return EdgeTypeUnconditional
	case LabelTrue:
		return EdgeTypeTrue
	case LabelFalse:
		return EdgeTypeFalse
	default:
		return EdgeTypeCase
	}
}
