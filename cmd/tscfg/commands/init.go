package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/l3aro/tscfg/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tscfg configuration interactively",
	Long: `Guides you through setting up tscfg configuration step by step and saves
it to the project (./.tscfg/config.yaml) or your home directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

// initAnswers holds the values collected by the init form.
type initAnswers struct {
	scope     string
	merge     bool
	closeLoop bool
	direction string
	format    string
	logLevel  string
	workers   string
}

func runInit(cmd *cobra.Command) error {
	a := initAnswers{
		scope:     "project",
		merge:     settings.MergeEmptyBlocks,
		closeLoop: settings.CloseLoop,
		direction: string(settings.Direction),
		format:    string(settings.Format),
		logLevel:  settings.LogLevel,
		workers:   strconv.Itoa(settings.Workers),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the configuration live?").
				Options(
					huh.NewOption("This project (./.tscfg/config.yaml)", "project"),
					huh.NewOption("Global (~/.tscfg/config.yaml)", "global"),
				).
				Value(&a.scope),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Merge empty blocks after building?").
				Description("Removes the pass-through blocks the builder leaves behind").
				Value(&a.merge),
			huh.NewSelect[string]().
				Title("Default output format").
				Options(
					huh.NewOption("Text", string(config.FormatText)),
					huh.NewOption("JSON", string(config.FormatJSON)),
					huh.NewOption("Graphviz DOT", string(config.FormatDot)),
				).
				Value(&a.format),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default traversal direction for `tscfg order`").
				Options(
					huh.NewOption("Forward", string(config.DirectionForward)),
					huh.NewOption("Backward", string(config.DirectionBackward)),
				).
				Value(&a.direction),
			huh.NewConfirm().
				Title("Repeat loop headers after their bodies?").
				Value(&a.closeLoop),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Files built in parallel (0 = one per CPU)").
				Placeholder("0").
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}).
				Value(&a.workers),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.logLevel),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	cfg, err := a.config()
	if err != nil {
		return err
	}
	path, err := initPath(a.scope)
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n=== Configuration Summary ===")
	fmt.Fprintf(out, "Merge empty blocks: %v\n", cfg.MergeEmptyBlocks)
	fmt.Fprintf(out, "Format: %s\n", cfg.Format)
	fmt.Fprintf(out, "Direction: %s (close loop: %v)\n", cfg.Direction, cfg.CloseLoop)
	fmt.Fprintf(out, "Workers: %d\n", cfg.Workers)
	fmt.Fprintf(out, "Log level: %s\n", cfg.LogLevel)
	fmt.Fprintln(out, "=============================")
	fmt.Fprintf(out, "Configuration saved to: %s\n", path)
	return nil
}

// config turns the answers into a validated Config.
func (a initAnswers) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.MergeEmptyBlocks = a.merge
	cfg.CloseLoop = a.closeLoop
	cfg.Direction = config.Direction(a.direction)
	cfg.Format = config.Format(a.format)
	cfg.LogLevel = a.logLevel

	workers, err := strconv.Atoi(a.workers)
	if err != nil {
		return nil, fmt.Errorf("invalid workers %q: %w", a.workers, err)
	}
	cfg.Workers = workers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initPath(scope string) (string, error) {
	if scope != "global" {
		return config.ProjectConfigFilePath(), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".tscfg", "config.yaml"), nil
}
