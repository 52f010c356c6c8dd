// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the property-graph store and traversal engine.
//
// The graph package contains types for representing a social graph where
// nodes carry a label and free-form string properties, and edges are
// directed, typed relationships (FRIEND, FOLLOWS, etc.).
//
// # Ownership Model
//
// The graph owns all nodes and edges. Callers refer to nodes by opaque
// string IDs, never by pointer; every accessor returns copies of node and
// edge data so that results remain valid after subsequent mutations.
//
// # Thread Safety
//
// Graph is safe for concurrent use. Reads (GetNode, Neighbors, FindNodes,
// traversals) may run concurrently; mutations (CreateNode, MergeNode,
// AddEdge, SetNodeProperties) take the write lock and exclude readers for
// the duration of the mutation.
//
// # Invariants
//
//   - Every edge's endpoints exist in the node set at all times.
//   - Node IDs are immutable once assigned.
//   - At most one edge exists per (source, target, type) triple; adding a
//     duplicate merges its properties into the existing edge.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrNotFound is returned when an operation references a node ID that
	// is not present in the graph.
	ErrNotFound = errors.New("node not found")

	// ErrInvalidDirection is returned when a direction value is not one of
	// outgoing, incoming or both.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidLabel is returned when a node label is empty.
	ErrInvalidLabel = errors.New("invalid node label")

	// ErrInvalidEdgeType is returned when an edge type is empty.
	ErrInvalidEdgeType = errors.New("invalid edge type")

	// ErrMissingKeyProperty is returned by MergeNode when the supplied
	// properties do not contain the merge key property.
	ErrMissingKeyProperty = errors.New("missing merge key property")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured maximum node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the graph has reached its
	// configured maximum edge capacity.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")

	// ErrDepthLimitExceeded is returned when a traversal requests a depth
	// beyond the configured maximum.
	ErrDepthLimitExceeded = errors.New("traversal depth limit exceeded")

	// ErrDuplicateNode is returned by PutNode when a node with the given
	// ID already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidNodeID is returned by PutNode when the supplied ID is empty.
	ErrInvalidNodeID = errors.New("invalid node ID")
)
