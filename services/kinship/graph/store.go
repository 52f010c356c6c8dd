// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// CreateNode inserts a new node and returns its ID.
//
// Description:
//
//	Always inserts. The node is assigned a fresh opaque ID. Use MergeNode
//	for idempotent get-or-create semantics.
//
// Inputs:
//
//	label - Node label, must be non-empty.
//	props - Initial properties. Copied; the caller keeps ownership.
//
// Outputs:
//
//	string - The new node's ID.
//	error - ErrInvalidLabel or ErrMaxNodesExceeded.
func (g *Graph) CreateNode(label string, props map[string]string) (string, error) {
	if label == "" {
		return "", ErrInvalidLabel
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.insertNode(uuid.NewString(), label, props)
	if err != nil {
		return "", err
	}
	recordMutation("create_node")
	return id, nil
}

// MergeNode inserts a node or merges properties into an existing one.
//
// Description:
//
//	Node identity is (label, props[keyProp]). If a node with the same
//	identity already exists, however it was created, no new node is made:
//	the supplied properties are merged into the existing node and its ID
//	is returned. Otherwise a new node is created and registered under that
//	identity.
//
// Inputs:
//
//	label - Node label, must be non-empty.
//	keyProp - Name of the property that carries the identity value.
//	props - Properties; must contain keyProp.
//
// Outputs:
//
//	string - ID of the merged-into or newly created node.
//	bool - True if a new node was created.
//	error - ErrInvalidLabel, ErrMissingKeyProperty or ErrMaxNodesExceeded.
//
// Example:
//
//	id1, _, _ := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
//	id2, created, _ := g.MergeNode("Person", "name", map[string]string{"name": "Bob", "city": "Oslo"})
//	// id1 == id2, created == false, node now has city=Oslo
func (g *Graph) MergeNode(label, keyProp string, props map[string]string) (string, bool, error) {
	if label == "" {
		return "", false, ErrInvalidLabel
	}
	value, ok := props[keyProp]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrMissingKeyProperty, keyProp)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := mergeKey(label, keyProp, value)
	id, exists := g.mergeIndex[key]
	if !exists {
		// Nodes that entered through CreateNode or PutNode are not in the
		// merge index; match them by (label, key property) so merge identity
		// holds for dataset-loaded graphs too.
		for _, candidate := range g.nodesByLabel[label] {
			if g.nodes[candidate].props[keyProp] == value {
				id = candidate
				exists = true
				g.mergeIndex[key] = candidate
				break
			}
		}
	}
	if exists {
		n := g.nodes[id]
		for k, v := range props {
			if n.props == nil {
				n.props = make(map[string]string, len(props))
			}
			n.props[k] = v
		}
		recordMutation("merge_node")
		return id, false, nil
	}

	id, err := g.insertNode(uuid.NewString(), label, props)
	if err != nil {
		return "", false, err
	}
	g.mergeIndex[key] = id
	recordMutation("merge_node")
	return id, true, nil
}

// PutNode inserts a node with a caller-supplied ID.
//
// Description:
//
//	Intended for snapshot restore and dataset loading, where IDs must be
//	preserved so that edge records keep referring to the right nodes.
//
// Outputs:
//
//	error - ErrDuplicateNode if the ID is taken, ErrInvalidLabel or
//	ErrMaxNodesExceeded.
func (g *Graph) PutNode(id, label string, props map[string]string) error {
	if id == "" {
		return fmt.Errorf("%w: empty ID", ErrInvalidNodeID)
	}
	if label == "" {
		return ErrInvalidLabel
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	_, err := g.insertNode(id, label, props)
	return err
}

// insertNode adds a node under an already-held write lock.
func (g *Graph) insertNode(id, label string, props map[string]string) (string, error) {
	if len(g.nodes) >= g.options.MaxNodes {
		return "", fmt.Errorf("%w: limit %d", ErrMaxNodesExceeded, g.options.MaxNodes)
	}

	g.nodes[id] = &node{
		id:    id,
		label: label,
		props: cloneProps(props),
	}
	g.nodesByLabel[label] = append(g.nodesByLabel[label], id)
	return id, nil
}

// AddEdge creates a directed typed edge between two existing nodes.
//
// Description:
//
//	Both endpoints must already exist; the graph never holds dangling
//	edges. Multiple edges between the same pair are allowed when their
//	types differ. Adding an edge that already exists as (src, dst, type)
//	merges the supplied properties into the existing edge instead of
//	inserting a second one.
//
// Outputs:
//
//	error - ErrNotFound (wrapped with the missing ID), ErrInvalidEdgeType
//	or ErrMaxEdgesExceeded.
func (g *Graph) AddEdge(src, dst, edgeType string, props map[string]string) error {
	if edgeType == "" {
		return ErrInvalidEdgeType
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	from, ok := g.nodes[src]
	if !ok {
		return fmt.Errorf("%w: source %s", ErrNotFound, src)
	}
	to, ok := g.nodes[dst]
	if !ok {
		return fmt.Errorf("%w: target %s", ErrNotFound, dst)
	}

	// Duplicate (src, dst, type) merges properties.
	for _, e := range from.out {
		if e.to == dst && e.typ == edgeType {
			for k, v := range props {
				if e.props == nil {
					e.props = make(map[string]string, len(props))
				}
				e.props[k] = v
			}
			recordMutation("merge_edge")
			return nil
		}
	}

	if len(g.edges) >= g.options.MaxEdges {
		return fmt.Errorf("%w: limit %d", ErrMaxEdgesExceeded, g.options.MaxEdges)
	}

	e := &edge{
		from:  src,
		to:    dst,
		typ:   edgeType,
		props: cloneProps(props),
	}
	g.edges = append(g.edges, e)
	from.out = append(from.out, e)
	to.in = append(to.in, e)
	recordMutation("add_edge")
	return nil
}

// GetNode returns a snapshot of the node with the given ID.
func (g *Graph) GetNode(id string) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Node{ID: n.id, Label: n.label, Properties: cloneProps(n.props)}, nil
}

// SetNodeProperties merges properties into an existing node.
//
// Node IDs are immutable; properties are the only mutable part of a node.
func (g *Graph) SetNodeProperties(id string, props map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for k, v := range props {
		if n.props == nil {
			n.props = make(map[string]string, len(props))
		}
		n.props[k] = v
	}
	recordMutation("set_properties")
	return nil
}

// Neighbors returns the IDs of nodes adjacent to id via edges of edgeType.
//
// Description:
//
//	Follows edges matching edgeType in the requested direction. An empty
//	edgeType matches every type. Results are deduplicated (a reciprocal
//	pair of edges yields the peer once under DirectionBoth) and appear in
//	edge insertion order.
//
// Outputs:
//
//	[]string - Neighbor IDs, empty slice if none.
//	error - ErrNotFound if id is absent, ErrInvalidDirection.
func (g *Graph) Neighbors(id, edgeType string, dir Direction) ([]string, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	ids := make([]string, 0)
	seen := make(map[string]bool)

	if dir == DirectionOutgoing || dir == DirectionBoth {
		for _, e := range n.out {
			if edgeType != "" && e.typ != edgeType {
				continue
			}
			if !seen[e.to] {
				seen[e.to] = true
				ids = append(ids, e.to)
			}
		}
	}
	if dir == DirectionIncoming || dir == DirectionBoth {
		for _, e := range n.in {
			if edgeType != "" && e.typ != edgeType {
				continue
			}
			if !seen[e.from] {
				seen[e.from] = true
				ids = append(ids, e.from)
			}
		}
	}
	return ids, nil
}

// FindNodes returns the IDs of nodes with the given label whose properties
// contain every entry of props.
//
// An empty props map matches every node with the label. Results appear in
// node insertion order.
func (g *Graph) FindNodes(label string, props map[string]string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0)
	for _, id := range g.nodesByLabel[label] {
		n := g.nodes[id]
		if nodeMatches(n, props) {
			ids = append(ids, id)
		}
	}
	return ids
}

// MatchesFilter reports whether the node with the given ID has the label and
// contains every property entry. Unknown IDs do not match.
func (g *Graph) MatchesFilter(id, label string, props map[string]string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	if label != "" && n.label != label {
		return false
	}
	return nodeMatches(n, props)
}

// nodeMatches checks props containment under an already-held lock.
func nodeMatches(n *node, props map[string]string) bool {
	for k, v := range props {
		if n.props[k] != v {
			return false
		}
	}
	return true
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Nodes returns a snapshot of every node. Intended for persistence.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, Node{ID: n.id, Label: n.label, Properties: cloneProps(n.props)})
	}
	return out
}

// Edges returns a snapshot of every edge in insertion order. Intended for
// persistence.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, Edge{FromID: e.from, ToID: e.to, Type: e.typ, Properties: cloneProps(e.props)})
	}
	return out
}

// Validate checks that the graph is in a consistent state.
//
// Description:
//
//	Verifies all edges reference existing nodes. The mutation paths make
//	dangling edges impossible, so a failure here indicates corruption.
//
// Outputs:
//
//	error - Non-nil if a dangling edge is found.
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for i, e := range g.edges {
		if _, ok := g.nodes[e.from]; !ok {
			return fmt.Errorf("edge[%d]: source node %q not found", i, e.from)
		}
		if _, ok := g.nodes[e.to]; !ok {
			return fmt.Errorf("edge[%d]: target node %q not found", i, e.to)
		}
	}
	return nil
}
