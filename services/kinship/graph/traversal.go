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
	"context"
	"fmt"
	"time"
)

// Traversal configuration limits.
const (
	// DefaultMaxDepth is the default maximum traversal depth. Two hops is
	// the friends-of-friends case and covers the bulk of queries.
	DefaultMaxDepth = 2

	// MaxTraversalDepth is the maximum allowed traversal depth.
	MaxTraversalDepth = 100

	// contextCheckInterval is how often to check context during traversal.
	contextCheckInterval = 100
)

// Visit is one element of a traversal stream: a reached node and the depth
// (number of hops from the start) at which it was first reached.
type Visit struct {
	// NodeID is the reached node.
	NodeID string

	// Depth is the hop count from the start node, always >= 1.
	Depth int
}

// TraversalOptions configures traversal behavior.
type TraversalOptions struct {
	// MaxDepth is the maximum depth to expand (default: 2, max: 100).
	MaxDepth int

	// EdgeType restricts expansion to edges of this type.
	// Empty matches every type.
	EdgeType string

	// Direction selects which edges to follow (default: outgoing).
	Direction Direction

	// Timeout is the per-traversal time budget (0 = context deadline only).
	Timeout time.Duration
}

// defaultTraversalOptions returns sensible defaults for traversals.
func defaultTraversalOptions() TraversalOptions {
	return TraversalOptions{
		MaxDepth:  DefaultMaxDepth,
		Direction: DirectionOutgoing,
	}
}

// TraversalOption is a functional option for configuring traversals.
type TraversalOption func(*TraversalOptions)

// WithDepth sets the maximum traversal depth.
//
// If d <= 0, uses the default (2). Values above MaxTraversalDepth are
// rejected by NewTraversal with ErrDepthLimitExceeded.
func WithDepth(d int) TraversalOption {
	return func(o *TraversalOptions) {
		if d > 0 {
			o.MaxDepth = d
		}
	}
}

// WithEdgeType restricts the traversal to edges of the given type.
func WithEdgeType(t string) TraversalOption {
	return func(o *TraversalOptions) {
		o.EdgeType = t
	}
}

// WithDirection sets the edge direction to follow.
func WithDirection(d Direction) TraversalOption {
	return func(o *TraversalOptions) {
		o.Direction = d
	}
}

// WithTimeout sets the per-traversal time budget.
func WithTimeout(d time.Duration) TraversalOption {
	return func(o *TraversalOptions) {
		o.Timeout = d
	}
}

// Traversal is a lazy breadth-first expansion from a start node.
//
// Description:
//
//	Expands edges matching the configured type and direction, breadth
//	first, up to MaxDepth. Each reachable node is yielded exactly once,
//	at its minimum depth. The start node itself is never yielded, which
//	also excludes trivial cycles (A→B→A never re-yields A).
//
// The stream is finite and consume-once: after Next returns false the
// traversal is exhausted and cannot be restarted.
//
// Thread Safety:
//
//	A Traversal must be consumed by a single goroutine. It takes the
//	graph's read lock only while expanding one frontier node at a time,
//	so concurrent traversals over the same graph are fine.
type Traversal struct {
	g   *Graph
	ctx context.Context

	opts     TraversalOptions
	deadline time.Time // zero if no timeout

	queue        []queueItem
	visited      map[string]bool
	checkCounter int
	truncated    bool
	started      time.Time
	yielded      int
	done         bool
}

type queueItem struct {
	nodeID string
	depth  int
}

// NewTraversal starts a breadth-first traversal from startID.
//
// Inputs:
//
//	ctx - Context for cancellation (checked every 100 expansions).
//	g - The graph to traverse.
//	startID - Start node ID.
//	opts - Traversal options (depth, edge type, direction, timeout).
//
// Outputs:
//
//	*Traversal - The lazy visit stream.
//	error - ErrNotFound if startID is absent, ErrDepthLimitExceeded if the
//	requested depth exceeds MaxTraversalDepth, ErrInvalidDirection.
//
// Example:
//
//	tr, err := graph.NewTraversal(ctx, g, bob,
//	    graph.WithEdgeType("FRIEND"),
//	    graph.WithDepth(2),
//	)
//	if err != nil {
//	    return err
//	}
//	for v, ok := tr.Next(); ok; v, ok = tr.Next() {
//	    fmt.Println(v.NodeID, v.Depth)
//	}
func NewTraversal(ctx context.Context, g *Graph, startID string, opts ...TraversalOption) (*Traversal, error) {
	options := defaultTraversalOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.MaxDepth > MaxTraversalDepth {
		return nil, fmt.Errorf("%w: %d > %d", ErrDepthLimitExceeded, options.MaxDepth, MaxTraversalDepth)
	}
	if !options.Direction.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(options.Direction))
	}
	if _, err := g.GetNode(startID); err != nil {
		return nil, err
	}

	t := &Traversal{
		g:       g,
		ctx:     ctx,
		opts:    options,
		queue:   []queueItem{{startID, 0}},
		visited: map[string]bool{startID: true},
		started: time.Now(),
	}
	if options.Timeout > 0 {
		t.deadline = time.Now().Add(options.Timeout)
	}
	return t, nil
}

// Next returns the next visit in breadth-first order.
//
// Returns false when the stream is exhausted, the context is cancelled or
// the time budget expires. Cancellation and expiry mark the stream as
// truncated rather than producing an error; partial results remain valid.
func (t *Traversal) Next() (Visit, bool) {
	if t.done {
		return Visit{}, false
	}

	for len(t.queue) > 0 {
		t.checkCounter++
		if t.checkCounter%contextCheckInterval == 0 && t.ctx.Err() != nil {
			t.truncated = true
			break
		}
		if !t.deadline.IsZero() && time.Now().After(t.deadline) {
			t.truncated = true
			break
		}

		item := t.queue[0]
		t.queue = t.queue[1:]

		if item.depth < t.opts.MaxDepth {
			t.expand(item)
		}

		if item.depth > 0 {
			t.yielded++
			return Visit{NodeID: item.nodeID, Depth: item.depth}, true
		}
	}

	t.finish()
	return Visit{}, false
}

// expand enqueues unvisited neighbors of item at depth+1.
func (t *Traversal) expand(item queueItem) {
	neighbors, err := t.g.Neighbors(item.nodeID, t.opts.EdgeType, t.opts.Direction)
	if err != nil {
		// Node was removed between enqueue and expand; skip it.
		return
	}
	for _, id := range neighbors {
		if t.visited[id] {
			continue // Cycle exclusion
		}
		t.visited[id] = true
		t.queue = append(t.queue, queueItem{id, item.depth + 1})
	}
}

// finish records metrics once when the stream is exhausted.
func (t *Traversal) finish() {
	if t.done {
		return
	}
	t.done = true
	t.queue = nil
	recordTraversal(t.ctx, time.Since(t.started), t.yielded, t.truncated)
}

// Truncated reports whether the stream ended early due to cancellation or
// an expired time budget. Only meaningful once Next has returned false.
func (t *Traversal) Truncated() bool {
	return t.truncated
}

// Collect drains the remaining stream into a slice.
//
// Convenience for callers that want the whole finite result; the lazy
// consume-once contract still applies.
func (t *Traversal) Collect() []Visit {
	visits := make([]Visit, 0)
	for v, ok := t.Next(); ok; v, ok = t.Next() {
		visits = append(visits, v)
	}
	return visits
}
