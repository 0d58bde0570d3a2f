// Package commands provides the CLI commands for the tscfg tool.
package commands

import (
	"fmt"

	"github.com/l3aro/tscfg/internal/config"
	"github.com/l3aro/tscfg/internal/log"
	"github.com/l3aro/tscfg/pkg/unit"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	// settings and logger are populated before any subcommand runs.
	settings            = config.DefaultConfig()
	logger   log.Logger = log.Nop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tscfg",
	Short: "tscfg - Control flow graphs for TypeScript",
	Long: `tscfg builds the control flow graph of every function in a TypeScript file.

Commands:
  cfg         Print the blocks and edges of one or all functions
  dot         Export the graph of a file as Graphviz DOT
  order       Print the topological block order of a function
  stats       Summarize many files in parallel
  init        Create a configuration file interactively

Use "tscfg [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings = cfg

		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		if verbose {
			level = log.DebugLevel
		}
		logger = log.New(log.LoggerConfig{
			Level:      level,
			JSONOutput: cfg.JSONLogs,
			Output:     cmd.ErrOrStderr(),
		})
		logger.Debug("configuration loaded", "merge", cfg.MergeEmptyBlocks, "format", cfg.Format, "workers", cfg.Workers)
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// unitOptions returns the build options for the current settings. noMerge
// forces the unmerged graph regardless of configuration.
func unitOptions(noMerge bool) unit.Options {
	return unit.Options{
		NoMerge: noMerge || !settings.MergeEmptyBlocks,
		Logger:  logger,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./.tscfg/config.yaml, ~/.tscfg/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	RootCmd.AddCommand(cfgCmd)
	RootCmd.AddCommand(dotCmd)
	RootCmd.AddCommand(orderCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(initCmd)
}
