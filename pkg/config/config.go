// Package config loads the optional YAML run configuration. Every field has
// a working default; command-line flags override whatever was loaded.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a tuning or comparison run.
type Config struct {
	Workload Workload `yaml:"workload"`
	Search   Search   `yaml:"search"`
}

// Workload shapes the synthesized fio job.
type Workload struct {
	Loops int    `yaml:"loops"` // how many times each worker reads the file
	Size  string `yaml:"size"`  // fio size spec, e.g. "10G"
	Jobs  int    `yaml:"jobs"`  // workers for multithread runs; 0 means NumCPU
}

// Search bounds the candidate space.
type Search struct {
	Range int `yaml:"range"` // candidate values are [0, range) per tunable
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

// Load reads a YAML config file and fills defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Search.Range < 0 {
		return nil, fmt.Errorf("config %s: search range must not be negative, got %d", path, cfg.Search.Range)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

func (c *Config) fillDefaults() {
	if c.Workload.Loops == 0 {
		c.Workload.Loops = 3
	}
	if c.Workload.Size == "" {
		c.Workload.Size = "10G"
	}
	if c.Workload.Jobs == 0 {
		c.Workload.Jobs = runtime.NumCPU()
	}
	if c.Search.Range == 0 {
		c.Search.Range = 10
	}
}
