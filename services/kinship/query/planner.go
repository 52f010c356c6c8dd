// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"context"
	"sort"
	"time"

	"github.com/AleutianAI/kinship/services/kinship/graph"
)

// Table holds tabular query results: bound variables per matched pair of
// start and terminal node.
type Table struct {
	// Columns names the bound variables, in row order.
	Columns []string `json:"columns"`

	// Rows holds one entry per match. Sorted by start ID then end ID for
	// deterministic output.
	Rows [][]string `json:"rows"`

	// Truncated is true if any underlying traversal was cut short by
	// cancellation or an expired time budget.
	Truncated bool `json:"truncated,omitempty"`

	// Duration is the execution time.
	Duration time.Duration `json:"-"`
}

// Plan is a compiled pattern, ready to execute against a graph.
type Plan struct {
	pattern *Pattern
	timeout time.Duration
}

// PlanOption is a functional option for configuring plans.
type PlanOption func(*Plan)

// WithHopTimeout sets the per-traversal time budget used at each hop.
func WithHopTimeout(d time.Duration) PlanOption {
	return func(p *Plan) {
		p.timeout = d
	}
}

// Compile validates a pattern and prepares it for execution.
//
// Outputs:
//
//	*Plan - The compiled plan.
//	error - An error wrapping ErrMalformedPattern if validation fails.
func Compile(pattern *Pattern, opts ...PlanOption) (*Plan, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	p := &Plan{pattern: pattern}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Execute runs the plan against a graph.
//
// Description:
//
//	Finds the start nodes matching the start filter, then expands the hop
//	chain breadth first: each hop runs one single-depth traversal per
//	frontier node, with a per-start visited set so a chain can never loop
//	back onto nodes it already passed through (a two-hop FRIEND chain
//	from A never reports A itself). Terminal nodes are filtered by the
//	Where clause when present.
//
// Inputs:
//
//	ctx - Context for cancellation, applied to every traversal.
//	g - The graph to query.
//
// Outputs:
//
//	*Table - Rows of (start_id, start_label, end_id, end_label), plus one
//	"end.<key>" column per property named in the Where filter, sorted.
//	error - Traversal setup errors. A start node disappearing mid-flight
//	is skipped, not an error.
func (p *Plan) Execute(ctx context.Context, g *graph.Graph) (*Table, error) {
	started := time.Now()
	ctx, span := graph.StartTraversalSpan(ctx, "ExecutePattern", p.pattern.Start.Label)
	defer span.End()

	// Properties named in the terminal filter come back as extra columns.
	endProps := make([]string, 0)
	if p.pattern.Where != nil {
		for k := range p.pattern.Where.Props {
			endProps = append(endProps, k)
		}
		sort.Strings(endProps)
	}

	columns := []string{"start_id", "start_label", "end_id", "end_label"}
	for _, k := range endProps {
		columns = append(columns, "end."+k)
	}
	table := &Table{
		Columns: columns,
		Rows:    make([][]string, 0),
	}

	startIDs := g.FindNodes(p.pattern.Start.Label, p.pattern.Start.Props)
	for _, startID := range startIDs {
		ends, truncated, err := p.expandFrom(ctx, g, startID)
		if err != nil {
			return nil, err
		}
		if truncated {
			table.Truncated = true
		}

		for _, endID := range ends {
			if p.pattern.Where != nil &&
				!g.MatchesFilter(endID, p.pattern.Where.Label, p.pattern.Where.Props) {
				continue
			}
			endNode, err := g.GetNode(endID)
			if err != nil {
				continue
			}
			startNode, err := g.GetNode(startID)
			if err != nil {
				continue
			}
			row := []string{startNode.ID, startNode.Label, endNode.ID, endNode.Label}
			for _, k := range endProps {
				row = append(row, endNode.Properties[k])
			}
			table.Rows = append(table.Rows, row)
		}
	}

	sort.Slice(table.Rows, func(i, j int) bool {
		if table.Rows[i][0] != table.Rows[j][0] {
			return table.Rows[i][0] < table.Rows[j][0]
		}
		return table.Rows[i][2] < table.Rows[j][2]
	})

	table.Duration = time.Since(started)
	return table, nil
}

// expandFrom walks the hop chain from one start node and returns the
// terminal frontier.
//
// The visited set spans the whole chain, so hops never step back onto
// nodes from earlier depths (including the start itself).
func (p *Plan) expandFrom(ctx context.Context, g *graph.Graph, startID string) ([]string, bool, error) {
	frontier := []string{startID}
	visited := map[string]bool{startID: true}
	truncated := false

	for _, hop := range p.pattern.Hops {
		next := make([]string, 0)
		for _, nodeID := range frontier {
			opts := []graph.TraversalOption{
				graph.WithEdgeType(hop.Type),
				graph.WithDirection(hop.Direction),
				graph.WithDepth(1),
			}
			if p.timeout > 0 {
				opts = append(opts, graph.WithTimeout(p.timeout))
			}

			tr, err := graph.NewTraversal(ctx, g, nodeID, opts...)
			if err != nil {
				// Frontier node vanished between hops; skip it.
				continue
			}
			for v, ok := tr.Next(); ok; v, ok = tr.Next() {
				if visited[v.NodeID] {
					continue
				}
				visited[v.NodeID] = true
				next = append(next, v.NodeID)
			}
			if tr.Truncated() {
				truncated = true
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return frontier, truncated, nil
}

// Run is a convenience that parses, compiles and executes a text pattern.
//
// Example:
//
//	table, err := query.Run(ctx, g, `MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)`)
func Run(ctx context.Context, g *graph.Graph, text string, opts ...PlanOption) (*Table, error) {
	pattern, err := ParsePattern(text)
	if err != nil {
		return nil, err
	}
	plan, err := Compile(pattern, opts...)
	if err != nil {
		return nil, err
	}
	return plan.Execute(ctx, g)
}
