// Package config loads the build configuration: extension-to-frontend
// registration, the root include directory, strict-vs-lenient parsing, pass
// ordering overrides, and fix-point iteration caps. Shaped after the
// teacher's inspector/info.Config and inspector/graph.Config (both small
// yaml-tagged structs with a DefaultConfig constructor), generalized from a
// single-language config to the whole build.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strictness selects how a frontend reacts to a file it cannot fully parse.
type Strictness string

const (
	// Lenient skips unparseable files, recording a diagnostic and continuing
	// the build — the default, per spec.md's Non-goal on recovering from
	// severely malformed input ("a file that fails to parse is skipped").
	Lenient Strictness = "lenient"
	// Strict aborts translation of the whole input set on the first
	// ParseFailure, for callers who want a CI-style all-or-nothing build.
	Strict Strictness = "strict"
)

// Config is the build's top-level configuration.
type Config struct {
	// RootDir is the include search root from §6: the cfamily frontend joins
	// it against an unresolved #include name when the file isn't found next
	// to the including file. The golike and pylike frontends do not read it
	// (golike looks for go.mod by walking up from each file's own directory).
	RootDir string `yaml:"rootDir"`

	// Extensions maps a file extension (including the leading dot, e.g.
	// ".go") to the registered frontend name. Frontend names are resolved
	// against translate.Manager's frontend registry.
	Extensions map[string]string `yaml:"extensions"`

	// Parsing selects Strict or Lenient handling of per-file parse errors.
	Parsing Strictness `yaml:"parsing"`

	// PassOrder overrides the canonical pass order from §4.6 when non-empty:
	// pass.New then runs exactly the passes named here (by Pass.Name), in
	// this order; a name that matches no pass in the pipeline is ignored.
	// Most builds leave this empty and get the canonical order.
	PassOrder []string `yaml:"passOrder,omitempty"`

	// MaxFixedPointIterations caps TypeResolver/VariableUsageResolver
	// iteration; the pipeline records a diagnostic warning if the cap is
	// reached before the pass reports zero new edges.
	MaxFixedPointIterations int `yaml:"maxFixedPointIterations"`

	// EnableCallGraphClosure toggles the optional CallGraphClosure pass
	// (off by default, per §4.6 item 8).
	EnableCallGraphClosure bool `yaml:"enableCallGraphClosure"`
}

// DefaultConfig returns the configuration a build uses when no YAML file is
// supplied: the three built-in frontends, lenient parsing, the canonical
// pass order, a 10-iteration fix-point cap, and CallGraphClosure disabled.
func DefaultConfig() *Config {
	return &Config{
		Extensions: map[string]string{
			".c":    "cfamily",
			".h":    "cfamily",
			".cc":   "cfamily",
			".cpp":  "cfamily",
			".hpp":  "cfamily",
			".go":   "golike",
			".py":   "pylike",
		},
		Parsing:                 Lenient,
		MaxFixedPointIterations: 10,
		EnableCallGraphClosure:  false,
	}
}

// Load reads and parses a YAML configuration file at path, filling any
// field left zero-valued with DefaultConfig's value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.MaxFixedPointIterations <= 0 {
		cfg.MaxFixedPointIterations = DefaultConfig().MaxFixedPointIterations
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultConfig().Extensions
	}
	if cfg.Parsing == "" {
		cfg.Parsing = Lenient
	}
	return cfg, nil
}

// FrontendFor returns the registered frontend name for a file extension
// (including the leading dot), and whether one was found.
func (c *Config) FrontendFor(ext string) (string, bool) {
	name, ok := c.Extensions[ext]
	return name, ok
}

// Marshal serializes the config back to YAML, used by tests and by callers
// that generate a starting config file.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
