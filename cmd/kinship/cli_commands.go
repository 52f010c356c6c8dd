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
	"github.com/spf13/cobra"
)

var (
	// Shared flags
	dataPath   string
	jsonOutput bool

	// Query-specific
	queryTimeout string

	// Recommend-specific
	recommendNode     string
	recommendRelation string
	recommendLimit    int
)

var rootCmd = &cobra.Command{
	Use:   "kinship",
	Short: "Query friend-of-friend graphs from the command line",
	Long: `Kinship loads a JSON graph dataset and runs traversal patterns and
friend recommendations against it.

A dataset file holds nodes and edges:

  {
    "nodes": [{"id": "bob", "label": "Person", "properties": {"name": "Bob"}}],
    "edges": [{"from": "bob", "to": "alice", "type": "FRIEND"}]
  }

Examples:
  kinship query --data graph.json 'MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)'
  kinship recommend --data graph.json --node bob --limit 5
  kinship stats --data graph.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Path to the JSON dataset file (required)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON instead of tables")

	queryCmd.Flags().StringVar(&queryTimeout, "timeout", "", "Per-hop time budget, e.g. 500ms (default: none)")

	recommendCmd.Flags().StringVar(&recommendNode, "node", "", "Node ID to recommend for (required)")
	recommendCmd.Flags().StringVar(&recommendRelation, "relation", "", "Edge type to traverse (default: FRIEND)")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "Maximum suggestions (default: 10)")
	recommendCmd.MarkFlagRequired("node")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(statsCmd)
}
