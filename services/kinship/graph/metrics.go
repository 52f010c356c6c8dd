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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for graph operations.
var (
	tracer = otel.Tracer("kinship.graph")
	meter  = otel.Meter("kinship.graph")
)

// Metrics for graph store and traversal operations.
var (
	mutationTotal    metric.Int64Counter
	traversalLatency metric.Float64Histogram
	traversalTotal   metric.Int64Counter
	visitsYielded    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		mutationTotal, err = meter.Int64Counter(
			"graph_mutation_total",
			metric.WithDescription("Total number of graph mutations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalLatency, err = meter.Float64Histogram(
			"graph_traversal_duration_seconds",
			metric.WithDescription("Duration of graph traversals"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalTotal, err = meter.Int64Counter(
			"graph_traversal_total",
			metric.WithDescription("Total number of graph traversals"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		visitsYielded, err = meter.Int64Histogram(
			"graph_traversal_visits",
			metric.WithDescription("Number of visits yielded per traversal"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordMutation records a store mutation. Called under the write lock, so
// it must stay cheap.
func recordMutation(op string) {
	if err := initMetrics(); err != nil {
		return
	}
	mutationTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("op", op)),
	)
}

// recordTraversal records metrics for a completed traversal.
func recordTraversal(ctx context.Context, duration time.Duration, yielded int, truncated bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("truncated", truncated))
	traversalLatency.Record(ctx, duration.Seconds(), attrs)
	traversalTotal.Add(ctx, 1, attrs)
	visitsYielded.Record(ctx, int64(yielded))
}

// StartTraversalSpan creates a span for a traversal-backed operation.
//
// Exposed for the query planner and recommender, which wrap one logical
// operation around many traversal calls.
func StartTraversalSpan(ctx context.Context, op, startID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Graph."+op,
		trace.WithAttributes(
			attribute.String("graph.op", op),
			attribute.String("graph.start_id", startID),
		),
	)
}
