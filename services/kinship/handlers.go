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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/kinship/services/kinship/graph"
	"github.com/AleutianAI/kinship/services/kinship/query"
)

// Handlers contains the HTTP handlers for the kinship service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleCreateNode handles POST /v1/kinship/nodes.
//
// Description:
//
//	Creates a node, or merges into an existing one when the request sets
//	merge with a merge_key.
//
// Request Body:
//
//	CreateNodeRequest
//
// Response:
//
//	200 OK: CreateNodeResponse
//	400 Bad Request: Validation error
//	507 Insufficient Storage: Graph capacity reached
func (h *Handlers) HandleCreateNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateNode")

	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.svc.CreateNode(req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "CREATE_FAILED"

		if errors.Is(err, graph.ErrInvalidLabel) || errors.Is(err, graph.ErrMissingKeyProperty) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_NODE"
		} else if errors.Is(err, graph.ErrMaxNodesExceeded) {
			statusCode = http.StatusInsufficientStorage
			errCode = "GRAPH_FULL"
		}

		logger.Error("Create node failed", "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	logger.Info("Node created", "node_id", resp.ID, "created", resp.Created)
	c.JSON(http.StatusOK, resp)
}

// HandleAddEdge handles POST /v1/kinship/edges.
//
// Response:
//
//	200 OK: StatsResponse
//	400 Bad Request: Validation error
//	404 Not Found: Either endpoint does not exist
//	507 Insufficient Storage: Graph capacity reached
func (h *Handlers) HandleAddEdge(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddEdge")

	var req AddEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.svc.AddEdge(req); err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "EDGE_FAILED"

		if errors.Is(err, graph.ErrNotFound) {
			statusCode = http.StatusNotFound
			errCode = "NODE_NOT_FOUND"
		} else if errors.Is(err, graph.ErrInvalidEdgeType) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_EDGE"
		} else if errors.Is(err, graph.ErrMaxEdgesExceeded) {
			statusCode = http.StatusInsufficientStorage
			errCode = "GRAPH_FULL"
		}

		logger.Error("Add edge failed", "error", err, "from", req.From, "to", req.To)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	logger.Info("Edge added", "from", req.From, "to", req.To, "type", req.Type)
	c.JSON(http.StatusOK, h.svc.Stats())
}

// HandleGetNode handles GET /v1/kinship/nodes/:id.
func (h *Handlers) HandleGetNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetNode")

	id := c.Param("id")
	resp, err := h.svc.GetNode(id)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: err.Error(),
				Code:  "NODE_NOT_FOUND",
			})
			return
		}
		logger.Error("Get node failed", "error", err, "node_id", id)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "GET_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleNeighbors handles GET /v1/kinship/nodes/:id/neighbors.
//
// Description:
//
//	Lists adjacent node IDs. Query parameters `type` and `direction`
//	("out", "in", "both") filter the adjacency; both default to
//	unfiltered outgoing.
func (h *Handlers) HandleNeighbors(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleNeighbors")

	id := c.Param("id")
	resp, err := h.svc.Neighbors(id, c.Query("type"), c.Query("direction"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "NEIGHBORS_FAILED"

		if errors.Is(err, graph.ErrNotFound) {
			statusCode = http.StatusNotFound
			errCode = "NODE_NOT_FOUND"
		} else if errors.Is(err, graph.ErrInvalidDirection) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_DIRECTION"
		}

		logger.Error("Neighbors failed", "error", err, "node_id", id)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleQuery handles POST /v1/kinship/query.
//
// Description:
//
//	Parses and executes a traversal pattern, returning the result table.
//	Malformed patterns are a client error, not a server failure.
//
// Response:
//
//	200 OK: QueryResponse
//	400 Bad Request: Malformed pattern
//	500 Internal Server Error: Execution error
func (h *Handlers) HandleQuery(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleQuery")

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.svc.Query(c.Request.Context(), req.Pattern)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "QUERY_FAILED"

		if errors.Is(err, query.ErrMalformedPattern) {
			statusCode = http.StatusBadRequest
			errCode = "MALFORMED_PATTERN"
		} else if errors.Is(err, graph.ErrDepthLimitExceeded) {
			statusCode = http.StatusBadRequest
			errCode = "DEPTH_LIMIT"
		}

		logger.Error("Query failed", "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	logger.Info("Query executed",
		"rows", len(resp.Table.Rows),
		"truncated", resp.Table.Truncated,
		"duration_ms", resp.DurationMs)
	c.JSON(http.StatusOK, resp)
}

// HandleRecommend handles POST /v1/kinship/recommendations.
//
// Response:
//
//	200 OK: RecommendResponse
//	400 Bad Request: Validation error
//	404 Not Found: Unknown node
func (h *Handlers) HandleRecommend(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRecommend")

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.svc.Recommend(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: err.Error(),
				Code:  "NODE_NOT_FOUND",
			})
			return
		}
		logger.Error("Recommend failed", "error", err, "node_id", req.NodeID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "RECOMMEND_FAILED",
		})
		return
	}

	logger.Info("Recommendations computed",
		"node_id", req.NodeID,
		"count", len(resp.Suggestions))
	c.JSON(http.StatusOK, resp)
}

// HandleStats handles GET /v1/kinship/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

// HandleHealth handles GET /v1/kinship/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if running.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/kinship/ready.
//
// Description:
//
//	Returns readiness including graph size. The service is ready as soon
//	as a graph is loaded, even an empty one.
func (h *Handlers) HandleReady(c *gin.Context) {
	stats := h.svc.Stats()
	c.JSON(http.StatusOK, ReadyResponse{
		Ready: true,
		Nodes: stats.Nodes,
		Edges: stats.Edges,
	})
}

// getOrCreateRequestID returns the X-Request-ID header, generating one
// if the client did not send it. The ID is echoed on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
