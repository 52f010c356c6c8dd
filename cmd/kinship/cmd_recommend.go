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
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kinship/pkg/ux"
	"github.com/AleutianAI/kinship/services/kinship/recommend"
)

// recommendCmd suggests new connections for a node.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest new connections for a node",
	Long: `Suggest new connections for a node, scored by mutual neighbors.

Candidates are nodes two hops away that are not already connected to the
starting node. Each candidate's score is the number of distinct shared
neighbors.

Examples:
  kinship recommend --data graph.json --node bob
  kinship recommend --data graph.json --node bob --relation COLLEAGUE --limit 5`,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	g, err := loadDataset()
	if err != nil {
		return err
	}

	var opts []recommend.Option
	if recommendRelation != "" {
		opts = append(opts, recommend.WithRelation(recommendRelation))
	}
	if recommendLimit > 0 {
		opts = append(opts, recommend.WithLimit(recommendLimit))
	}

	suggestions, err := recommend.SuggestFriends(cmd.Context(), g, recommendNode, opts...)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(suggestions)
	}

	if len(suggestions) == 0 {
		ux.Muted("no suggestions")
		return nil
	}
	rows := make([][]string, len(suggestions))
	for i, s := range suggestions {
		rows[i] = []string{s.NodeID, strconv.Itoa(s.Score)}
	}
	fmt.Print(ux.RenderTable([]string{"node_id", "score"}, rows))
	return nil
}
