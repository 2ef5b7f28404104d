package sim

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCostMultiplier weights walking ticks against driving ticks.
const DefaultCostMultiplier = 3

// RunConfig holds run settings, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and keep their defaults.
type RunConfig struct {
	CostMultiplier     *int   `yaml:"cost_multiplier"`
	StructureExtension string `yaml:"structure_extension"`
	TraceExtension     string `yaml:"trace_extension"`
	LogLevel           string `yaml:"log_level"`
	Summary            bool   `yaml:"summary"`
}

// DefaultRunConfig returns the settings used when no file is given.
func DefaultRunConfig() *RunConfig {
	mult := DefaultCostMultiplier
	return &RunConfig{
		CostMultiplier:     &mult,
		StructureExtension: ".cfg",
		TraceExtension:     ".pts",
		LogLevel:           "warn",
	}
}

// LoadRunConfig reads a YAML run configuration. Fields absent from the file keep
// their defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return cfg, nil
}

// ValidLogLevels is the set of recognized log level names.
var ValidLogLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks every field of the configuration.
func (c *RunConfig) Validate() error {
	if c.CostMultiplier == nil {
		return fmt.Errorf("cost_multiplier must be set")
	}
	if *c.CostMultiplier < 0 {
		return fmt.Errorf("cost_multiplier must be non-negative, got %d", *c.CostMultiplier)
	}
	if !strings.HasPrefix(c.StructureExtension, ".") {
		return fmt.Errorf("structure_extension must start with '.', got %q", c.StructureExtension)
	}
	if !strings.HasPrefix(c.TraceExtension, ".") || len(c.TraceExtension) < 2 {
		return fmt.Errorf("trace_extension must be '.' followed by a name, got %q", c.TraceExtension)
	}
	if !ValidLogLevels[c.LogLevel] {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Multiplier returns the configured cost multiplier.
func (c *RunConfig) Multiplier() int {
	if c.CostMultiplier == nil {
		return DefaultCostMultiplier
	}
	return *c.CostMultiplier
}

// TracePath derives the trace path from the structure path by swapping the
// structure extension for the trace extension. A path without the structure
// extension gets the trace extension appended.
func (c *RunConfig) TracePath(structurePath string) string {
	if base, ok := strings.CutSuffix(structurePath, c.StructureExtension); ok && base != "" {
		return base + c.TraceExtension
	}
	return structurePath + c.TraceExtension
}
