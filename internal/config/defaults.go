package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults is the shape of an optional --defaults YAML file: flag values
// an operator doesn't want to repeat on every invocation.
type Defaults struct {
	TimeUnitsSec int     `yaml:"time_units_sec"`
	MaxDistanceM float64 `yaml:"max_distance_m"`
	BatchSize    int     `yaml:"batch_size"`
	Threads      int     `yaml:"threads"`
}

// LoadDefaults reads and parses a --defaults YAML file.
func LoadDefaults(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read defaults: %w", err)
	}
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("config: parse defaults: %w", err)
	}
	return &d, nil
}
