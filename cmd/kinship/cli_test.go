// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/kinship/services/kinship/query"
)

const testDataset = `{
  "nodes": [
    {"id": "bob", "label": "Person", "properties": {"name": "Bob"}},
    {"id": "alice", "label": "Person", "properties": {"name": "Alice"}},
    {"id": "carol", "label": "Person", "properties": {"name": "Carol"}}
  ],
  "edges": [
    {"from": "bob", "to": "alice", "type": "FRIEND"},
    {"from": "alice", "to": "bob", "type": "FRIEND"},
    {"from": "alice", "to": "carol", "type": "FRIEND"}
  ]
}`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func resetFlags() {
	dataPath = ""
	jsonOutput = false
	queryTimeout = ""
	recommendNode = ""
	recommendRelation = ""
	recommendLimit = 0
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestQueryCommand(t *testing.T) {
	path := writeDataset(t)
	err := execute(t, "query", "--data", path,
		`MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)`)
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}
}

func TestQueryCommand_Malformed(t *testing.T) {
	path := writeDataset(t)
	err := execute(t, "query", "--data", path, "MATCH Person -FRIEND-")
	if !errors.Is(err, query.ErrMalformedPattern) {
		t.Fatalf("query command error = %v, want ErrMalformedPattern", err)
	}

	var de *datasetError
	if errors.As(err, &de) {
		t.Error("malformed pattern should not carry the dataset exit code")
	}
}

func TestQueryCommand_MissingDataset(t *testing.T) {
	err := execute(t, "query", "--data", filepath.Join(t.TempDir(), "missing.json"),
		`(Person) -[FRIEND]-> (Person)`)
	if err == nil {
		t.Fatal("query command error = nil, want dataset failure")
	}

	var de *datasetError
	if !errors.As(err, &de) {
		t.Errorf("error = %v, want *datasetError", err)
	}
}

func TestQueryCommand_NoDataFlag(t *testing.T) {
	if err := execute(t, "query", `(Person) -[FRIEND]-> (Person)`); err == nil {
		t.Fatal("query command error = nil, want missing --data failure")
	}
}

func TestRecommendCommand(t *testing.T) {
	path := writeDataset(t)
	if err := execute(t, "recommend", "--data", path, "--node", "bob"); err != nil {
		t.Fatalf("recommend command error = %v", err)
	}
}

func TestRecommendCommand_UnknownNode(t *testing.T) {
	path := writeDataset(t)
	if err := execute(t, "recommend", "--data", path, "--node", "ghost"); err == nil {
		t.Fatal("recommend command error = nil, want unknown node failure")
	}
}

func TestStatsCommand(t *testing.T) {
	path := writeDataset(t)
	if err := execute(t, "stats", "--data", path, "--json"); err != nil {
		t.Fatalf("stats command error = %v", err)
	}
}
