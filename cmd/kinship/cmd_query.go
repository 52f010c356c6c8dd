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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kinship/pkg/ux"
	"github.com/AleutianAI/kinship/services/kinship/dataset"
	"github.com/AleutianAI/kinship/services/kinship/graph"
	"github.com/AleutianAI/kinship/services/kinship/query"
)

// queryCmd runs a traversal pattern against a dataset.
var queryCmd = &cobra.Command{
	Use:   "query PATTERN",
	Short: "Run a traversal pattern against a dataset",
	Long: `Run a traversal pattern against a dataset and print matches as a table.

Pattern syntax:
  MATCH (Label {prop: "value"}) -[TYPE]-> ... (Label {prop: "value"})

The leading MATCH keyword is optional. Hops traverse outgoing edges with
-[T]->, incoming with <-[T]-, and either direction with -[T]-. A trailing
group filters the terminal nodes.

Examples:
  kinship query --data graph.json '(Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)'
  kinship query --data graph.json 'MATCH (Person {name: "Bob"}) <-[FOLLOWS]- (Person)'
  kinship query --data graph.json --json '(Person) -[FRIEND]-> (Person)'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	g, err := loadDataset()
	if err != nil {
		return err
	}

	var opts []query.PlanOption
	if queryTimeout != "" {
		d, err := time.ParseDuration(queryTimeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		opts = append(opts, query.WithHopTimeout(d))
	}

	table, err := query.Run(cmd.Context(), g, args[0], opts...)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(table)
	}

	if len(table.Rows) == 0 {
		ux.Muted("no matches")
		return nil
	}
	fmt.Print(ux.RenderTable(table.Columns, table.Rows))
	if table.Truncated {
		ux.Warning("results truncated by time budget")
	}
	ux.Muted(fmt.Sprintf("%d rows in %s", len(table.Rows), table.Duration.Round(time.Microsecond)))
	return nil
}

// loadDataset reads the --data file, wrapping failures so main can map
// them to the dataset exit code.
func loadDataset() (*graph.Graph, error) {
	if dataPath == "" {
		return nil, fmt.Errorf("--data is required")
	}
	g, err := dataset.Load(dataPath)
	if err != nil {
		return nil, &datasetError{err: err}
	}
	return g, nil
}
