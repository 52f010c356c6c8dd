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
	"strings"
	"sync"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	DefaultMaxEdges = 10_000_000
)

// Direction selects which edges a neighbor lookup or traversal follows.
type Direction int

const (
	// DirectionOutgoing follows edges where the node is the source.
	DirectionOutgoing Direction = iota

	// DirectionIncoming follows edges where the node is the target.
	DirectionIncoming

	// DirectionBoth follows edges in either orientation.
	DirectionBoth
)

// String returns the string representation of the Direction.
func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	case DirectionBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the defined directions.
func (d Direction) Valid() bool {
	return d == DirectionOutgoing || d == DirectionIncoming || d == DirectionBoth
}

// ParseDirection converts a string to a Direction.
//
// Accepts "outgoing", "incoming" and "both" (case-insensitive). The empty
// string maps to DirectionOutgoing, matching the common case of following
// a relationship the way it was written.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "outgoing", "out":
		return DirectionOutgoing, nil
	case "incoming", "in":
		return DirectionIncoming, nil
	case "both":
		return DirectionBoth, nil
	default:
		return DirectionOutgoing, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Node is a caller-facing snapshot of a stored node.
//
// Node values returned from the graph are copies; mutating Properties on a
// returned Node has no effect on the store.
type Node struct {
	// ID is the opaque unique identifier. Immutable once assigned.
	ID string `json:"id"`

	// Label classifies the node (e.g. "Person").
	Label string `json:"label"`

	// Properties holds free-form key/value attributes.
	Properties map[string]string `json:"properties,omitempty"`
}

// Edge is a caller-facing snapshot of a stored edge.
type Edge struct {
	// FromID is the ID of the source node.
	FromID string `json:"from"`

	// ToID is the ID of the target node.
	ToID string `json:"to"`

	// Type is the relationship type (e.g. "FRIEND").
	Type string `json:"type"`

	// Properties holds optional edge attributes.
	Properties map[string]string `json:"properties,omitempty"`
}

// node is the internal representation, holding adjacency.
type node struct {
	id    string
	label string
	props map[string]string

	// out and in hold pointers into Graph.edges. At most one entry per
	// (peer, type) in each slice.
	out []*edge
	in  []*edge
}

// edge is the internal representation shared between adjacency lists.
type edge struct {
	from  string
	to    string
	typ   string
	props map[string]string
}

// Options configures Graph behavior and limits.
type Options struct {
	// MaxNodes is the maximum number of nodes the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of edges the graph can hold.
	// Default: 10,000,000
	MaxEdges int
}

// DefaultOptions returns sensible defaults for graph configuration.
func DefaultOptions() Options {
	return Options{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// Option is a functional option for configuring Graph.
type Option func(*Options)

// WithMaxNodes sets the maximum number of nodes the graph can hold.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxNodes = n
		}
	}
}

// WithMaxEdges sets the maximum number of edges the graph can hold.
func WithMaxEdges(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxEdges = n
		}
	}
}

// Graph is an adjacency-list property graph.
//
// Thread Safety:
//
//	Graph is safe for concurrent use. A sync.RWMutex guards all state:
//	reads take the read lock, mutations take the write lock and exclude
//	readers for the duration of the mutation.
type Graph struct {
	mu sync.RWMutex

	// nodes maps node ID to node. Unexported to prevent direct access.
	nodes map[string]*node

	// edges contains all edges in the graph.
	edges []*edge

	// nodesByLabel maps label to node IDs with that label.
	// Secondary index for label-filtered lookups.
	nodesByLabel map[string][]string

	// mergeIndex maps (label, key property, value) to a node ID, so that
	// MergeNode resolves the same identity to the same node every time.
	mergeIndex map[string]string

	options Options
}

// New creates a new empty graph.
//
// Example:
//
//	// Default limits
//	g := graph.New()
//
//	// Custom limits
//	g := graph.New(graph.WithMaxNodes(10_000))
func New(opts ...Option) *Graph {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		nodes:        make(map[string]*node),
		edges:        make([]*edge, 0),
		nodesByLabel: make(map[string][]string),
		mergeIndex:   make(map[string]string),
		options:      options,
	}
}

// mergeKey builds the identity key used by the merge index.
//
// Components are joined with NUL so that no label/property combination can
// collide with another.
func mergeKey(label, keyProp, value string) string {
	return label + "\x00" + keyProp + "\x00" + value
}

// cloneProps returns a copy of props, or nil if props is empty.
func cloneProps(props map[string]string) map[string]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
