// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dataset reads and writes graph datasets as JSON files.
//
// A dataset file holds the full node and edge set of one graph:
//
//	{
//	  "nodes": [{"id": "n1", "label": "Person", "properties": {"name": "Bob"}}],
//	  "edges": [{"from": "n1", "to": "n2", "type": "FRIEND"}]
//	}
//
// Node IDs in the file are preserved on load so edges reconnect to the
// same nodes, and so repeated loads of the same file produce identical
// graphs.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/kinship/services/kinship/graph"
)

// ErrEmptyDataset indicates a dataset file with no nodes at all.
var ErrEmptyDataset = errors.New("dataset contains no nodes")

// NodeRecord is one node entry in a dataset file.
type NodeRecord struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// EdgeRecord is one edge entry in a dataset file.
type EdgeRecord struct {
	From       string            `json:"from"`
	To         string            `json:"to"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// File is the on-disk shape of a dataset.
type File struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges,omitempty"`
}

// Load reads a dataset file and builds a graph from it.
//
// Description:
//
//	Parses the JSON file, inserts every node with its file-assigned ID,
//	then replays edges in file order. A node without an ID is rejected
//	rather than auto-assigned, since edges reference nodes by ID.
//
// Inputs:
//
//	path - Dataset file path.
//	opts - Graph options applied to the new graph.
//
// Outputs:
//
//	*graph.Graph - The loaded graph.
//	error - Non-nil on IO, decode, or graph construction failure.
func Load(path string, opts ...graph.Option) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse builds a graph from raw dataset JSON.
func Parse(data []byte, opts ...graph.Option) (*graph.Graph, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(f.Nodes) == 0 {
		return nil, ErrEmptyDataset
	}

	g := graph.New(opts...)
	for i, n := range f.Nodes {
		if err := g.PutNode(n.ID, n.Label, n.Properties); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, n.ID, err)
		}
	}
	for i, e := range f.Edges {
		if err := g.AddEdge(e.From, e.To, e.Type, e.Properties); err != nil {
			return nil, fmt.Errorf("edge %d (%s->%s): %w", i, e.From, e.To, err)
		}
	}
	return g, nil
}

// Save writes the full contents of g to a dataset file.
//
// The file is written atomically via a temp file in the same directory,
// so a watcher reloading on write events never observes a partial file.
func Save(path string, g *graph.Graph) error {
	f := File{}
	for _, n := range g.Nodes() {
		f.Nodes = append(f.Nodes, NodeRecord{ID: n.ID, Label: n.Label, Properties: n.Properties})
	}
	for _, e := range g.Edges() {
		f.Edges = append(f.Edges, EdgeRecord{From: e.FromID, To: e.ToID, Type: e.Type, Properties: e.Properties})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close dataset: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dataset %s: %w", path, err)
	}
	return nil
}
