// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command kinship is the CLI for querying graph datasets offline.
//
// It loads a JSON dataset file, runs traversal patterns or friend
// recommendations against it, and prints results as aligned tables.
//
// Exit codes:
//
//	0 - Success
//	1 - Malformed pattern or bad arguments
//	2 - Dataset could not be read or parsed
//
// Examples:
//
//	kinship query --data graph.json 'MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)'
//	kinship recommend --data graph.json --node bob
//	kinship stats --data graph.json
package main

import (
	"errors"
	"os"

	"github.com/AleutianAI/kinship/pkg/ux"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitDataset = 2
)

// datasetError marks failures reading or parsing the dataset file, which
// carry a distinct exit code so scripts can tell bad input data from a
// bad query.
type datasetError struct {
	err error
}

func (e *datasetError) Error() string { return e.err.Error() }
func (e *datasetError) Unwrap() error { return e.err }

func main() {
	if err := rootCmd.Execute(); err != nil {
		ux.Error(err.Error())

		var de *datasetError
		if errors.As(err, &de) {
			os.Exit(exitDataset)
		}
		os.Exit(exitUsage)
	}
	os.Exit(exitOK)
}
