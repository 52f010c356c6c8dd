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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kinship.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if cfg.Port != 8086 {
		t.Errorf("Port = %d, want 8086", cfg.Port)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %s, want 5s", cfg.QueryTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	path := writeConfig(t, "port: 9000\nlog_level: warn\n")
	t.Setenv("KINSHIP_PORT", "9100")
	t.Setenv("KINSHIP_LOG_LEVEL", "debug")
	t.Setenv("KINSHIP_DATASET", "/tmp/env.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want env override 9100", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want env override debug", cfg.LogLevel)
	}
	if cfg.DatasetPath != "/tmp/env.json" {
		t.Errorf("DatasetPath = %q, want env override", cfg.DatasetPath)
	}
}

func TestLoadConfig_PartialOverlay(t *testing.T) {
	path := writeConfig(t, "port: 9000\nmax_nodes: 500\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.MaxNodes != 500 {
		t.Errorf("MaxNodes = %d, want 500", cfg.MaxNodes)
	}
	// Unset keys keep their defaults.
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %s, want default 5s", cfg.QueryTimeout)
	}
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `port: 8090
dataset_path: /data/graph.json
watch_dataset: true
snapshot_dir: /data/snapshots
max_nodes: 1000
max_edges: 5000
query_timeout: 2s
log_level: debug
log_dir: /var/log/kinship
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DatasetPath != "/data/graph.json" {
		t.Errorf("DatasetPath = %q", cfg.DatasetPath)
	}
	if !cfg.WatchDataset {
		t.Error("WatchDataset = false, want true")
	}
	if cfg.SnapshotDir != "/data/snapshots" {
		t.Errorf("SnapshotDir = %q", cfg.SnapshotDir)
	}
	if cfg.QueryTimeout != 2*time.Second {
		t.Errorf("QueryTimeout = %s, want 2s", cfg.QueryTimeout)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "port: [not a number\n"},
		{"port out of range", "port: 99999\n"},
		{"negative port", "port: -1\n"},
		{"negative max_nodes", "max_nodes: -5\n"},
		{"negative timeout", "query_timeout: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() error = nil, want failure")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() error = nil, want failure")
	}
}
