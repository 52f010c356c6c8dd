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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all kinship routes with the router.
//
// Description:
//
//	Registers all /v1/kinship/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/kinship/nodes - Create or merge a node
//	GET  /v1/kinship/nodes/:id - Get a node by ID
//	GET  /v1/kinship/nodes/:id/neighbors - List adjacent node IDs
//	POST /v1/kinship/edges - Connect two nodes
//	POST /v1/kinship/query - Execute a traversal pattern
//	POST /v1/kinship/recommendations - Friend-of-friend suggestions
//	GET  /v1/kinship/stats - Graph size
//	GET  /v1/kinship/health - Liveness
//	GET  /v1/kinship/ready - Readiness
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	kinship := rg.Group("/kinship")

	kinship.POST("/nodes", handlers.HandleCreateNode)
	kinship.GET("/nodes/:id", handlers.HandleGetNode)
	kinship.GET("/nodes/:id/neighbors", handlers.HandleNeighbors)
	kinship.POST("/edges", handlers.HandleAddEdge)
	kinship.POST("/query", handlers.HandleQuery)
	kinship.POST("/recommendations", handlers.HandleRecommend)
	kinship.GET("/stats", handlers.HandleStats)
	kinship.GET("/health", handlers.HandleHealth)
	kinship.GET("/ready", handlers.HandleReady)
}
