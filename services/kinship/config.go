// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kinship

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the kinship service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port"`

	// DatasetPath is a JSON dataset loaded at startup when non-empty.
	DatasetPath string `yaml:"dataset_path"`

	// WatchDataset reloads the dataset on file change when true.
	WatchDataset bool `yaml:"watch_dataset"`

	// SnapshotDir enables BadgerDB snapshot persistence when non-empty.
	SnapshotDir string `yaml:"snapshot_dir"`

	// MaxNodes caps graph size. Zero uses the graph default.
	MaxNodes int `yaml:"max_nodes"`

	// MaxEdges caps edge count. Zero uses the graph default.
	MaxEdges int `yaml:"max_edges"`

	// QueryTimeout is the per-traversal time budget for query execution.
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogDir enables JSON file logging when non-empty.
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Port:         8086,
		QueryTimeout: 5 * time.Second,
		LogLevel:     "info",
	}
}

// LoadConfig reads a YAML config file over the defaults.
//
// Description:
//
//	Starts from DefaultConfig, overlays whatever keys the file sets (a
//	partial config file is fine), then overlays KINSHIP_* environment
//	variables. An empty path skips the file read.
//
// Outputs:
//
//	Config - The effective configuration.
//	error - Non-nil on read, parse, or validation failure.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays KINSHIP_* environment variables on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("KINSHIP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("KINSHIP_DATASET"); v != "" {
		c.DatasetPath = v
	}
	if v := os.Getenv("KINSHIP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max_nodes %d is negative", c.MaxNodes)
	}
	if c.MaxEdges < 0 {
		return fmt.Errorf("max_edges %d is negative", c.MaxEdges)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout %s is negative", c.QueryTimeout)
	}
	return nil
}
