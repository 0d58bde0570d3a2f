package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/l3aro/tscfg/internal/config"
	"github.com/l3aro/tscfg/pkg/cfg"
	"github.com/l3aro/tscfg/pkg/unit"
	"github.com/spf13/cobra"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> [function]",
	Short: "Print the control flow graph of a function",
	Long: `Builds the control flow graph of a TypeScript file and prints the blocks,
edges, and cyclomatic complexity of one function, or of every function when no
name is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		noMerge, _ := cmd.Flags().GetBool("no-merge")
		format := settings.Format
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			format = config.FormatJSON
		}

		u, err := unit.Load(cmd.Context(), args[0], unitOptions(noMerge))
		if err != nil {
			return fmt.Errorf("building CFG: %w", err)
		}

		infos := u.Infos()
		if len(args) == 2 {
			fn, err := u.Find(args[1])
			if err != nil {
				return notFound(u, args[1], err)
			}
			infos = []cfg.Info{*u.CFG.Describe(fn)}
		}

		out := cmd.OutOrStdout()
		switch format {
		case config.FormatJSON:
			var v any = infos
			if len(args) == 2 {
				v = infos[0]
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case config.FormatDot:
			return u.CFG.WriteDot(out)
		default:
			for i := range infos {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printInfo(out, &infos[i])
			}
		}
		return nil
	},
}

// notFound decorates a lookup failure with the names that do exist.
func notFound(u *unit.Unit, name string, err error) error {
	var names []string
	for _, fn := range u.CFG.Functions() {
		names = append(names, cfg.FunctionName(fn))
	}
	if len(names) == 0 {
		return err
	}
	return fmt.Errorf("%w\navailable: %s", err, strings.Join(names, ", "))
}

// printInfo prints CFG information in human-readable format.
func printInfo(w io.Writer, info *cfg.Info) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "=== CFG for function: %s ===\n", info.FunctionName)
	fmt.Fprintf(w, "Cyclomatic Complexity: %d\n", info.CyclomaticComplexity)
	fmt.Fprintf(w, "Entry Block: %s\n", info.EntryBlockID)
	fmt.Fprintf(w, "Exit Blocks: %s\n", strings.Join(info.ExitBlockIDs, ", "))
	fmt.Fprintf(w, "\nBlocks (%d):\n", len(info.Blocks))
	for _, block := range info.Blocks {
		fmt.Fprintf(w, "  %s (%s", block.ID, block.Type)
		if block.StartLine > 0 {
			fmt.Fprintf(w, ", lines %d-%d", block.StartLine, block.EndLine)
		}
		fmt.Fprintln(w, ")")
		for _, stmt := range block.Statements {
			fmt.Fprintf(w, "    %s\n", stmt)
		}
	}

	fmt.Fprintf(w, "\nEdges (%d):\n", len(info.Edges))
	for _, edge := range info.Edges {
		if edge.EdgeType == cfg.EdgeTypeCase {
			fmt.Fprintf(w, "  %s --case %s--> %s\n", edge.SourceID, edge.Condition, edge.TargetID)
			continue
		}
		fmt.Fprintf(w, "  %s --%s--> %s\n", edge.SourceID, edge.EdgeType, edge.TargetID)
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cfgCmd.Flags().Bool("no-merge", false, "Keep empty blocks produced by the builder")
}
