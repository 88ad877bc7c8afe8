// Package config loads analyzer settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable knobs of the analysis and its presentation.
// Zero values in the file fall back to the defaults.
type Config struct {
	// MinStringLength is the shortest printable run reported by string
	// extraction.
	MinStringLength int `yaml:"min_string_length"`
	// DisasmLimit is the number of instructions decoded at the entry of the
	// code section in reports.
	DisasmLimit int `yaml:"disasm_limit"`
	// MaxSymbols and MaxStrings cap the symbol and string listings of the
	// text report; the remaining count is summarized.
	MaxSymbols int `yaml:"max_symbols"`
	MaxStrings int `yaml:"max_strings"`
	// RuleFile is a default YARA rule file applied when the command line
	// does not name one.
	RuleFile string `yaml:"rule_file"`
	// Color selects report coloring: auto, always or never.
	Color string `yaml:"color"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MinStringLength: 4,
		DisasmLimit:     10,
		MaxSymbols:      20,
		MaxStrings:      20,
		Color:           "auto",
	}
}

// Load reads a YAML config from path, filling unset fields with defaults.
// An empty path yields the defaults without touching the filesystem.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if fileCfg.MinStringLength > 0 {
		cfg.MinStringLength = fileCfg.MinStringLength
	}
	if fileCfg.DisasmLimit > 0 {
		cfg.DisasmLimit = fileCfg.DisasmLimit
	}
	if fileCfg.MaxSymbols > 0 {
		cfg.MaxSymbols = fileCfg.MaxSymbols
	}
	if fileCfg.MaxStrings > 0 {
		cfg.MaxStrings = fileCfg.MaxStrings
	}
	if fileCfg.RuleFile != "" {
		cfg.RuleFile = fileCfg.RuleFile
	}
	if fileCfg.Color != "" {
		cfg.Color = fileCfg.Color
	}

	return cfg, nil
}
