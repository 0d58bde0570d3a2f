package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/tscfg/pkg/unit"
	"github.com/spf13/cobra"
)

// dotCmd represents the dot command
var dotCmd = &cobra.Command{
	Use:   "dot <file>",
	Short: "Export the control flow graph of a file as Graphviz DOT",
	Long: `Builds every function of a TypeScript file into one graph and writes it in
Graphviz DOT format. Without --output the graph goes to dot_dir when it is
configured, and to stdout otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noMerge, _ := cmd.Flags().GetBool("no-merge")
		output, _ := cmd.Flags().GetString("output")

		u, err := unit.Load(cmd.Context(), args[0], unitOptions(noMerge))
		if err != nil {
			return fmt.Errorf("building CFG: %w", err)
		}

		if output == "" && settings.DotDir != "" {
			if err := os.MkdirAll(settings.DotDir, 0755); err != nil {
				return fmt.Errorf("creating dot directory: %w", err)
			}
			output = dotPath(settings.DotDir, args[0])
		}
		if output == "" {
			return u.CFG.WriteDot(cmd.OutOrStdout())
		}

		if !u.CFG.DumpDot(output) {
			return fmt.Errorf("failed to write %s", output)
		}
		logger.Info("wrote graph", "file", output, "blocks", len(u.CFG.BasicBlocks()))
		return nil
	},
}

// dotPath names the DOT file for a source file inside dir.
func dotPath(dir, source string) string {
	base := filepath.Base(source)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".dot")
}

func init() {
	dotCmd.Flags().StringP("output", "o", "", "Write the graph to this file")
	dotCmd.Flags().Bool("no-merge", false, "Keep empty blocks produced by the builder")
}
