// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package kinship exposes the graph store, traversal queries, and friend
// suggestions over HTTP, plus the dataset reload machinery that keeps a
// running server in sync with a dataset file on disk.
package kinship

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/kinship/services/kinship/dataset"
	"github.com/AleutianAI/kinship/services/kinship/graph"
	"github.com/AleutianAI/kinship/services/kinship/query"
	"github.com/AleutianAI/kinship/services/kinship/recommend"
)

// ServiceVersion is the kinship service version.
const ServiceVersion = "0.1.0"

// Service owns the live graph and runs operations against it.
//
// Thread Safety:
//
//	Safe for concurrent use. The graph pointer is swapped atomically on
//	dataset reload; in-flight requests finish against the graph they
//	started with, new requests see the replacement.
type Service struct {
	cfg   Config
	graph atomic.Pointer[graph.Graph]
}

// NewService creates a service with an empty graph.
func NewService(cfg Config) *Service {
	s := &Service{cfg: cfg}
	s.graph.Store(graph.New(s.graphOptions()...))
	return s
}

func (s *Service) graphOptions() []graph.Option {
	var opts []graph.Option
	if s.cfg.MaxNodes > 0 {
		opts = append(opts, graph.WithMaxNodes(s.cfg.MaxNodes))
	}
	if s.cfg.MaxEdges > 0 {
		opts = append(opts, graph.WithMaxEdges(s.cfg.MaxEdges))
	}
	return opts
}

// Graph returns the current graph. Callers must not hold the pointer
// across a reload boundary if they need reload visibility.
func (s *Service) Graph() *graph.Graph {
	return s.graph.Load()
}

// Replace swaps in a new graph, typically after a dataset reload or a
// snapshot restore.
func (s *Service) Replace(g *graph.Graph) {
	s.graph.Store(g)
}

// LoadDataset replaces the live graph with the contents of a dataset
// file. The old graph stays live until the load fully succeeds, so a
// broken file never takes down a serving graph.
func (s *Service) LoadDataset(path string) error {
	g, err := dataset.Load(path, s.graphOptions()...)
	if err != nil {
		return err
	}
	s.graph.Store(g)
	return nil
}

// CreateNode adds or merges a node per the request.
func (s *Service) CreateNode(req CreateNodeRequest) (CreateNodeResponse, error) {
	g := s.graph.Load()
	if req.Merge {
		id, created, err := g.MergeNode(req.Label, req.MergeKey, req.Properties)
		if err != nil {
			return CreateNodeResponse{}, err
		}
		return CreateNodeResponse{ID: id, Created: created}, nil
	}
	id, err := g.CreateNode(req.Label, req.Properties)
	if err != nil {
		return CreateNodeResponse{}, err
	}
	return CreateNodeResponse{ID: id, Created: true}, nil
}

// AddEdge connects two existing nodes.
func (s *Service) AddEdge(req AddEdgeRequest) error {
	return s.graph.Load().AddEdge(req.From, req.To, req.Type, req.Properties)
}

// GetNode returns one node by ID.
func (s *Service) GetNode(id string) (NodeResponse, error) {
	n, err := s.graph.Load().GetNode(id)
	if err != nil {
		return NodeResponse{}, err
	}
	return NodeResponse{ID: n.ID, Label: n.Label, Properties: n.Properties}, nil
}

// Neighbors returns adjacent node IDs with optional type and direction
// filters.
func (s *Service) Neighbors(id, edgeType, direction string) (NeighborsResponse, error) {
	dir, err := graph.ParseDirection(direction)
	if err != nil {
		return NeighborsResponse{}, err
	}
	ids, err := s.graph.Load().Neighbors(id, edgeType, dir)
	if err != nil {
		return NeighborsResponse{}, err
	}
	return NeighborsResponse{NodeID: id, Neighbors: ids}, nil
}

// Query parses and executes a pattern against the live graph.
func (s *Service) Query(ctx context.Context, pattern string) (QueryResponse, error) {
	var opts []query.PlanOption
	if s.cfg.QueryTimeout > 0 {
		opts = append(opts, query.WithHopTimeout(s.cfg.QueryTimeout))
	}
	table, err := query.Run(ctx, s.graph.Load(), pattern, opts...)
	if err != nil {
		return QueryResponse{}, err
	}
	return QueryResponse{
		Table:      table,
		DurationMs: table.Duration.Milliseconds(),
	}, nil
}

// Recommend returns friend suggestions for one node.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (RecommendResponse, error) {
	var opts []recommend.Option
	if req.Relation != "" {
		opts = append(opts, recommend.WithRelation(req.Relation))
	}
	if req.Limit > 0 {
		opts = append(opts, recommend.WithLimit(req.Limit))
	}
	suggestions, err := recommend.SuggestFriends(ctx, s.graph.Load(), req.NodeID, opts...)
	if err != nil {
		return RecommendResponse{}, err
	}
	return RecommendResponse{NodeID: req.NodeID, Suggestions: suggestions}, nil
}

// Stats reports current graph size.
func (s *Service) Stats() StatsResponse {
	g := s.graph.Load()
	return StatsResponse{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
}

// QueryTimeout exposes the configured per-traversal budget for callers
// that run plans directly.
func (s *Service) QueryTimeout() time.Duration {
	return s.cfg.QueryTimeout
}
