package score

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of the classifier settings.
type Config struct {
	Thresholds Thresholds         `yaml:"thresholds"`
	Tags       ThresholdTagPolicy `yaml:"tags"`
}

// DefaultConfig returns the built-in thresholds and tag policy.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Tags:       *DefaultTagPolicy(),
	}
}

// LoadConfig reads classifier settings from a YAML file. Missing fields
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("score: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("score: parse config: %w", err)
	}
	return cfg, nil
}

// Classifier builds a classifier from the config.
func (c Config) Classifier() *Classifier {
	tags := c.Tags
	return NewClassifier(c.Thresholds, &tags)
}
