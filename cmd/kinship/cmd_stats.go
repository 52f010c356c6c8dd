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
)

// statsCmd prints dataset size and integrity information.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dataset size and integrity information",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := loadDataset()
	if err != nil {
		return err
	}

	if err := g.Validate(); err != nil {
		return &datasetError{err: fmt.Errorf("dataset failed validation: %w", err)}
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]int{
			"nodes": g.NodeCount(),
			"edges": g.EdgeCount(),
		})
	}

	fmt.Print(ux.RenderTable(
		[]string{"metric", "value"},
		[][]string{
			{"nodes", strconv.Itoa(g.NodeCount())},
			{"edges", strconv.Itoa(g.EdgeCount())},
		},
	))
	return nil
}
