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
	"github.com/AleutianAI/kinship/services/kinship/query"
	"github.com/AleutianAI/kinship/services/kinship/recommend"
)

// CreateNodeRequest is the request body for POST /v1/kinship/nodes.
type CreateNodeRequest struct {
	// Label is the node's category, e.g. "Person".
	Label string `json:"label" binding:"required"`

	// Properties are string key-value pairs stored on the node.
	Properties map[string]string `json:"properties,omitempty"`

	// Merge enables find-or-create semantics keyed on MergeKey.
	Merge bool `json:"merge,omitempty"`

	// MergeKey is the property name used for merge identity. Required
	// when Merge is set.
	MergeKey string `json:"merge_key,omitempty"`
}

// CreateNodeResponse reports the created or matched node.
type CreateNodeResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// AddEdgeRequest is the request body for POST /v1/kinship/edges.
type AddEdgeRequest struct {
	From       string            `json:"from" binding:"required"`
	To         string            `json:"to" binding:"required"`
	Type       string            `json:"type" binding:"required"`
	Properties map[string]string `json:"properties,omitempty"`
}

// NodeResponse is the wire shape of a single node.
type NodeResponse struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// NeighborsResponse lists adjacent node IDs.
type NeighborsResponse struct {
	NodeID    string   `json:"node_id"`
	Neighbors []string `json:"neighbors"`
}

// QueryRequest is the request body for POST /v1/kinship/query.
type QueryRequest struct {
	// Pattern is the traversal pattern text, e.g.
	// `MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)`.
	Pattern string `json:"pattern" binding:"required"`
}

// QueryResponse wraps the result table.
type QueryResponse struct {
	Table      *query.Table `json:"table"`
	DurationMs int64        `json:"duration_ms"`
}

// RecommendRequest is the request body for POST /v1/kinship/recommendations.
type RecommendRequest struct {
	// NodeID is the node to suggest new connections for.
	NodeID string `json:"node_id" binding:"required"`

	// Relation is the edge type to traverse. Defaults to FRIEND.
	Relation string `json:"relation,omitempty"`

	// Limit caps the suggestion count. Defaults to 10.
	Limit int `json:"limit,omitempty"`
}

// RecommendResponse lists scored suggestions for a node.
type RecommendResponse struct {
	NodeID      string                 `json:"node_id"`
	Suggestions []recommend.Suggestion `json:"suggestions"`
}

// StatsResponse summarizes graph size.
type StatsResponse struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// HealthResponse is the GET /v1/kinship/health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse is the GET /v1/kinship/ready body.
type ReadyResponse struct {
	Ready bool `json:"ready"`
	Nodes int  `json:"nodes"`
	Edges int  `json:"edges"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
