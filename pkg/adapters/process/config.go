package process

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the command that executes directives.
type Config struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	// Timeout bounds one directive. Zero means no limit beyond the caller's context.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ConfigFile represents the structure of executor.yaml.
type ConfigFile struct {
	Executor Config `yaml:"executor" json:"executor"`
}

// LoadConfig reads a configuration file (YAML or JSON).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read executor config: %w", err)
	}

	// YAML is a superset of JSON
	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Executor.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.Executor, nil
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("executor command is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("executor timeout must not be negative")
	}
	return nil
}
