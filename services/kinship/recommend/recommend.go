// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package recommend scores friend-of-friend candidates.
//
// A candidate for a node is any node reachable in exactly two hops over a
// relationship type that is not already a direct neighbor and not the node
// itself. The score is the number of distinct mutual neighbors, which is
// the classic common-neighbors heuristic for link prediction in social
// graphs.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/kinship/services/kinship/graph"
)

// Default configuration values.
const (
	// DefaultRelation is the relationship type scored by default.
	DefaultRelation = "FRIEND"

	// DefaultLimit is the default maximum number of suggestions.
	DefaultLimit = 10

	// DefaultConcurrency bounds the fan-out of SuggestForAll.
	DefaultConcurrency = 4
)

// Suggestion is one scored candidate.
type Suggestion struct {
	// NodeID is the candidate node.
	NodeID string `json:"node_id"`

	// Score is the number of distinct mutual neighbors.
	Score int `json:"score"`
}

// Options configures recommendation behavior.
type Options struct {
	// Relation is the relationship type to score over. Default: FRIEND.
	Relation string

	// Direction selects the edge orientation treated as "knows".
	// Default: both, since friendship is usually recorded one way.
	Direction graph.Direction

	// Limit is the maximum number of suggestions returned. Default: 10.
	Limit int

	// Concurrency bounds the SuggestForAll fan-out. Default: 4.
	Concurrency int
}

// DefaultOptions returns sensible defaults for recommendations.
func DefaultOptions() Options {
	return Options{
		Relation:    DefaultRelation,
		Direction:   graph.DirectionBoth,
		Limit:       DefaultLimit,
		Concurrency: DefaultConcurrency,
	}
}

// Option is a functional option for configuring recommendations.
type Option func(*Options)

// WithRelation sets the relationship type to score over.
func WithRelation(t string) Option {
	return func(o *Options) {
		if t != "" {
			o.Relation = t
		}
	}
}

// WithDirection sets the edge orientation treated as "knows".
func WithDirection(d graph.Direction) Option {
	return func(o *Options) {
		o.Direction = d
	}
}

// WithLimit sets the maximum number of suggestions.
func WithLimit(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Limit = n
		}
	}
}

// WithConcurrency bounds the SuggestForAll fan-out.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// SuggestFriends returns scored friend-of-friend candidates for a node.
//
// Description:
//
//	Expands two hops from the node over the configured relation. Every
//	depth-2 node that is not a direct neighbor and not the origin is a
//	candidate; its score counts the distinct direct neighbors it was
//	reached through. Results are sorted by score descending, then node ID
//	ascending for determinism, and truncated to the limit.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	g - The graph to score against.
//	nodeID - The node to recommend for.
//	opts - Recommendation options.
//
// Outputs:
//
//	[]Suggestion - Scored candidates, best first. Empty if none.
//	error - ErrNotFound if nodeID is absent.
func SuggestFriends(ctx context.Context, g *graph.Graph, nodeID string, opts ...Option) ([]Suggestion, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := graph.StartTraversalSpan(ctx, "SuggestFriends", nodeID)
	defer span.End()

	direct, err := g.Neighbors(nodeID, options.Relation, options.Direction)
	if err != nil {
		return nil, err
	}

	directSet := make(map[string]bool, len(direct))
	for _, id := range direct {
		directSet[id] = true
	}

	scores := make(map[string]int)
	for _, friend := range direct {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates, err := g.Neighbors(friend, options.Relation, options.Direction)
		if err != nil {
			// Friend removed mid-scoring; skip it.
			continue
		}
		for _, candidate := range candidates {
			if candidate == nodeID || directSet[candidate] {
				continue
			}
			scores[candidate]++
		}
	}

	suggestions := make([]Suggestion, 0, len(scores))
	for id, score := range scores {
		suggestions = append(suggestions, Suggestion{NodeID: id, Score: score})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].NodeID < suggestions[j].NodeID
	})

	if len(suggestions) > options.Limit {
		suggestions = suggestions[:options.Limit]
	}
	return suggestions, nil
}

// SuggestForAll computes suggestions for many seed nodes concurrently.
//
// Description:
//
//	Fans out SuggestFriends across the seeds with bounded concurrency.
//	The first error cancels the remaining work.
//
// Outputs:
//
//	map[string][]Suggestion - Seed ID to its suggestions.
//	error - The first per-seed error, wrapped with the seed ID.
func SuggestForAll(ctx context.Context, g *graph.Graph, seeds []string, opts ...Option) (map[string][]Suggestion, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	results := make(map[string][]Suggestion, len(seeds))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(options.Concurrency)

	for _, seed := range seeds {
		eg.Go(func() error {
			suggestions, err := SuggestFriends(ctx, g, seed, opts...)
			if err != nil {
				return fmt.Errorf("seed %s: %w", seed, err)
			}
			mu.Lock()
			results[seed] = suggestions
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
