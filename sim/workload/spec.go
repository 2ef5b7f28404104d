package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTagPrefix prefixes generated vehicle tags: V1, V2, ...
const DefaultTagPrefix = "V"

// GeneratorSpec describes a synthetic event file: how many vehicles arrive, how
// arrivals are spaced, how long each stays and which exits drivers ask for.
type GeneratorSpec struct {
	Seed      int64       `yaml:"seed"`
	Vehicles  int         `yaml:"vehicles"`
	TagPrefix string      `yaml:"tag_prefix,omitempty"`
	Arrival   ArrivalSpec `yaml:"arrival"`
	Stay      DistSpec    `yaml:"stay"`
	// ExitTypes restricts the exit letters drawn for arrivals. Empty means every
	// exit type the structure declares.
	ExitTypes []string `yaml:"exit_types,omitempty"`
}

// ArrivalSpec configures the arrival process.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	Rate    float64  `yaml:"rate"` // vehicles per tick
	CV      *float64 `yaml:"cv,omitempty"`
}

// DistSpec parameterizes a stay distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Valid value registries.
var (
	validArrivalProcesses = map[string]bool{
		"poisson": true, "gamma": true, "constant": true,
	}
	validDistTypes = map[string]bool{
		"gaussian": true, "exponential": true, "constant": true,
	}
)

// LoadGeneratorSpec reads and parses a YAML generator specification file.
func LoadGeneratorSpec(path string) (*GeneratorSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator spec: %w", err)
	}
	return ParseGeneratorSpec(data)
}

// ParseGeneratorSpec decodes a YAML generator specification.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func ParseGeneratorSpec(data []byte) (*GeneratorSpec, error) {
	var spec GeneratorSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing generator spec: %w", err)
	}
	if spec.TagPrefix == "" {
		spec.TagPrefix = DefaultTagPrefix
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *GeneratorSpec) Validate() error {
	if s.Vehicles <= 0 {
		return fmt.Errorf("vehicles must be positive, got %d", s.Vehicles)
	}
	if strings.ContainsAny(s.TagPrefix, " \t") {
		return fmt.Errorf("tag_prefix %q must not contain whitespace", s.TagPrefix)
	}
	if !validArrivalProcesses[s.Arrival.Process] {
		return fmt.Errorf("unknown arrival process %q; valid: poisson, gamma, constant", s.Arrival.Process)
	}
	if err := validateFinitePositive("arrival.rate", s.Arrival.Rate); err != nil {
		return err
	}
	if s.Arrival.CV != nil {
		if err := validateFinitePositive("arrival.cv", *s.Arrival.CV); err != nil {
			return err
		}
	}
	if !validDistTypes[s.Stay.Type] {
		return fmt.Errorf("stay: unknown distribution type %q; valid: gaussian, exponential, constant", s.Stay.Type)
	}
	for name, val := range s.Stay.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("stay.params.%s must be a finite number, got %f", name, val)
		}
	}
	for i, t := range s.ExitTypes {
		// "S" would read back as a departure.
		if len(t) != 1 || t == "S" || t == " " || t == "\t" {
			return fmt.Errorf("exit_types[%d]: %q is not an exit-type letter", i, t)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
