package cfg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/l3aro/tscfg/pkg/ast"
)

const maxDotNodeText = 60

// WriteDot writes the graph in Graphviz DOT format. Blocks list the source
// text of their nodes; successor edges are blue and labeled with their branch
// condition, the mirrored predecessor edges are red and dashed.
func (g *CFG) WriteDot(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph cfg {")
	fmt.Fprintln(bw, `  node [shape=box, fontname="monospace"];`)
	for _, bb := range g.blocks {
		fmt.Fprintf(bw, "  bb%d [label=\"%s\"];\n", bb.index, dotBlockLabel(bb))
	}
	for _, bb := range g.blocks {
		for i, succ := range bb.succs {
			attrs := `color="blue"`
			if l := g.SuccEdgeLabel(bb, i); l != nil {
				attrs += fmt.Sprintf(`, label="%s"`, dotEscape(LabelString(l)))
			}
			fmt.Fprintf(bw, "  bb%d -> bb%d [%s];\n", bb.index, succ.index, attrs)
		}
		for _, pred := range bb.preds {
			fmt.Fprintf(bw, "  bb%d -> bb%d [color=\"red\", style=\"dashed\", constraint=false];\n",
				bb.index, pred.index)
		}
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}

// DumpDot writes the graph to path in DOT format and reports whether it
// succeeded.
func (g *CFG) DumpDot(path string) bool {
	f, err := os.Create(path)
	if err != nil {
		return false
	}
	if err := g.WriteDot(f); err != nil {
		f.Close()
		return false
	}
	return f.Close() == nil
}

func dotBlockLabel(bb *BasicBlock) string {
	var sb strings.Builder
	sb.WriteString(bb.String())
	if f := bb.Flags(); f != 0 {
		sb.WriteString(" [" + f.String() + "]")
	}
	sb.WriteString(`\l`)
	for _, n := range bb.nodes {
		sb.WriteString(dotEscape(nodeSummary(n)))
		sb.WriteString(`\l`)
	}
	return sb.String()
}

// nodeSummary renders a node as one line of source text.
func nodeSummary(n ast.Node) string {
	text := strings.Join(strings.Fields(n.Text()), " ")
	if text == "" {
		return "<" + n.Kind().String() + ">"
	}
	if len(text) > maxDotNodeText {
		text = text[:maxDotNodeText-3] + "..."
	}
	return text
}

func dotEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}
