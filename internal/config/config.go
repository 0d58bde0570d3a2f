package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how the CLI prints a graph.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDot  Format = "dot"
)

// Direction selects the edge direction used by traversals.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Config holds all configuration for tscfg
type Config struct {
	// MergeEmptyBlocks runs the merge pass after building
	MergeEmptyBlocks bool `yaml:"merge_empty_blocks" env:"TSCFG_MERGE_EMPTY_BLOCKS"`

	// Traversal defaults for the order command
	CloseLoop bool      `yaml:"close_loop" env:"TSCFG_CLOSE_LOOP"`
	Direction Direction `yaml:"direction" env:"TSCFG_DIRECTION"`

	// Output
	Format Format `yaml:"format" env:"TSCFG_FORMAT"`
	DotDir string `yaml:"dot_dir" env:"TSCFG_DOT_DIR"`

	// Number of files built in parallel; 0 means one per CPU
	Workers int `yaml:"workers" env:"TSCFG_WORKERS"`

	// Logging
	LogLevel string `yaml:"log_level" env:"TSCFG_LOG_LEVEL"`
	JSONLogs bool   `yaml:"json_logs" env:"TSCFG_JSON_LOGS"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MergeEmptyBlocks: true,
		CloseLoop:        false,
		Direction:        DirectionForward,
		Format:           FormatText,
		DotDir:           "",
		Workers:          0,
		LogLevel:         "info",
		JSONLogs:         false,
	}
}

// globalConfigFilePath returns the global config file path (~/.tscfg/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tscfg/config.yaml"
	}
	return filepath.Join(home, ".tscfg", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.tscfg/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".tscfg", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Project-level config (./.tscfg/config.yaml)
// 2. Environment variables
// 3. Global config (~/.tscfg/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	return load(globalConfigFilePath(), ProjectConfigFilePath())
}

func load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeFile(cfg, globalPath); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := mergeFile(cfg, projectPath); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the keys present in path onto cfg. A missing file is
// not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromFile loads configuration from a specific file path on top of the
// defaults. Environment variables still apply.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if v, ok := parseBool(os.Getenv("TSCFG_MERGE_EMPTY_BLOCKS")); ok {
		cfg.MergeEmptyBlocks = v
	}
	if v, ok := parseBool(os.Getenv("TSCFG_CLOSE_LOOP")); ok {
		cfg.CloseLoop = v
	}
	if v := os.Getenv("TSCFG_DIRECTION"); v != "" {
		cfg.Direction = Direction(strings.ToLower(v))
	}
	if v := os.Getenv("TSCFG_FORMAT"); v != "" {
		cfg.Format = Format(strings.ToLower(v))
	}
	if v := os.Getenv("TSCFG_DOT_DIR"); v != "" {
		cfg.DotDir = v
	}
	if v := os.Getenv("TSCFG_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("TSCFG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := parseBool(os.Getenv("TSCFG_JSON_LOGS")); ok {
		cfg.JSONLogs = v
	}
}

func parseBool(s string) (bool, bool) {
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Direction {
	case DirectionForward, DirectionBackward:
	default:
		return fmt.Errorf("invalid direction: %q (must be %q or %q)", c.Direction, DirectionForward, DirectionBackward)
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatDot:
	default:
		return fmt.Errorf("invalid format: %q (must be text, json or dot)", c.Format)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	return nil
}
