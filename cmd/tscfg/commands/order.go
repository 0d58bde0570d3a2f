package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/l3aro/tscfg/internal/config"
	"github.com/l3aro/tscfg/pkg/ast"
	"github.com/l3aro/tscfg/pkg/cfg"
	"github.com/l3aro/tscfg/pkg/unit"
	"github.com/spf13/cobra"
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order <file> <function>",
	Short: "Print the topological block order of a function",
	Long: `Prints the blocks of a function in topological order. The forward order
starts at the entry block. The backward order runs along predecessor edges
and is printed once for each exit block of the function.

With --close-loop a loop header is repeated after the body that jumps back
to it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Forward
		if settings.Direction == config.DirectionBackward {
			dir = cfg.Backward
		}
		if cmd.Flags().Changed("backward") {
			if backward, _ := cmd.Flags().GetBool("backward"); backward {
				dir = cfg.Backward
			} else {
				dir = cfg.Forward
			}
		}
		closeLoop := settings.CloseLoop
		if cmd.Flags().Changed("close-loop") {
			closeLoop, _ = cmd.Flags().GetBool("close-loop")
		}

		u, err := unit.Load(cmd.Context(), args[0], unitOptions(false))
		if err != nil {
			return fmt.Errorf("building CFG: %w", err)
		}
		fn, err := u.Find(args[1])
		if err != nil {
			return notFound(u, args[1], err)
		}

		for _, order := range functionOrder(u.CFG, fn, dir, closeLoop) {
			printOrder(cmd.OutOrStdout(), order)
		}
		return nil
	},
}

// functionOrder returns one topological order for a forward walk, and one
// per exit block reachable from the entry for a backward walk.
func functionOrder(g *cfg.CFG, fn *ast.Function, dir cfg.Direction, closeLoop bool) [][]*cfg.BasicBlock {
	entry := g.FindEntryBasicBlock(fn)
	if dir == cfg.Forward {
		return [][]*cfg.BasicBlock{g.TopologicalForward(entry, closeLoop)}
	}
	var out [][]*cfg.BasicBlock
	for _, bb := range g.Reachable(cfg.Forward, entry) {
		if bb.HasFlag(cfg.FlagExit) {
			out = append(out, g.TopologicalBackward(bb, closeLoop))
		}
	}
	return out
}

func printOrder(w io.Writer, order []*cfg.BasicBlock) {
	ids := make([]string, len(order))
	for i, bb := range order {
		ids[i] = bb.String()
	}
	fmt.Fprintln(w, strings.Join(ids, " "))
}

func init() {
	orderCmd.Flags().BoolP("backward", "b", false, "Walk predecessor edges from each exit block")
	orderCmd.Flags().Bool("close-loop", false, "Repeat loop headers after their bodies")
}
