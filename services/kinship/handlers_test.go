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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	handlers := NewHandlers(svc)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestNode(t *testing.T, router *gin.Engine, name string) string {
	t.Helper()
	w := postJSON(t, router, "/v1/kinship/nodes", CreateNodeRequest{
		Label:      "Person",
		Properties: map[string]string{"name": name},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create node %s: status %d, body %s", name, w.Code, w.Body.String())
	}
	var resp CreateNodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	return resp.ID
}

func addTestEdge(t *testing.T, router *gin.Engine, from, to string) {
	t.Helper()
	w := postJSON(t, router, "/v1/kinship/edges", AddEdgeRequest{
		From: from, To: to, Type: "FRIEND",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add edge %s->%s: status %d, body %s", from, to, w.Code, w.Body.String())
	}
}

func TestHandlers_HandleHealth(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/kinship/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}
	if resp.Version != ServiceVersion {
		t.Errorf("expected version %q, got %q", ServiceVersion, resp.Version)
	}
}

func TestHandlers_HandleReady(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)
	createTestNode(t, router, "Alice")

	req, _ := http.NewRequest("GET", "/v1/kinship/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ReadyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Ready {
		t.Error("expected Ready=true")
	}
	if resp.Nodes != 1 {
		t.Errorf("expected 1 node, got %d", resp.Nodes)
	}
}

func TestHandlers_HandleCreateNode(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/kinship/nodes", CreateNodeRequest{
		Label:      "Person",
		Properties: map[string]string{"name": "Bob"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp CreateNodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected a node ID")
	}
	if !resp.Created {
		t.Error("expected Created=true")
	}
}

func TestHandlers_HandleCreateNode_MissingLabel(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/kinship/nodes", map[string]any{
		"properties": map[string]string{"name": "Bob"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandlers_HandleCreateNode_Merge(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	first := postJSON(t, router, "/v1/kinship/nodes", CreateNodeRequest{
		Label:      "Person",
		Properties: map[string]string{"name": "Bob"},
		Merge:      true,
		MergeKey:   "name",
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first merge: status %d", first.Code)
	}
	var firstResp CreateNodeResponse
	if err := json.Unmarshal(first.Body.Bytes(), &firstResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !firstResp.Created {
		t.Error("first merge: expected Created=true")
	}

	second := postJSON(t, router, "/v1/kinship/nodes", CreateNodeRequest{
		Label:      "Person",
		Properties: map[string]string{"name": "Bob", "city": "Kodiak"},
		Merge:      true,
		MergeKey:   "name",
	})
	if second.Code != http.StatusOK {
		t.Fatalf("second merge: status %d", second.Code)
	}
	var secondResp CreateNodeResponse
	if err := json.Unmarshal(second.Body.Bytes(), &secondResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if secondResp.Created {
		t.Error("second merge: expected Created=false")
	}
	if secondResp.ID != firstResp.ID {
		t.Errorf("merge returned new ID %s, want %s", secondResp.ID, firstResp.ID)
	}
}

func TestHandlers_HandleCreateNode_MergeWithoutKey(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/kinship/nodes", CreateNodeRequest{
		Label: "Person",
		Merge: true,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandlers_HandleAddEdge(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	bob := createTestNode(t, router, "Bob")
	alice := createTestNode(t, router, "Alice")
	addTestEdge(t, router, bob, alice)

	stats := svc.Stats()
	if stats.Edges != 1 {
		t.Errorf("expected 1 edge, got %d", stats.Edges)
	}
}

func TestHandlers_HandleAddEdge_MissingNode(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	bob := createTestNode(t, router, "Bob")
	w := postJSON(t, router, "/v1/kinship/edges", AddEdgeRequest{
		From: bob, To: "no-such-node", Type: "FRIEND",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "NODE_NOT_FOUND" {
		t.Errorf("expected code NODE_NOT_FOUND, got %q", resp.Code)
	}
}

func TestHandlers_HandleGetNode(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	bob := createTestNode(t, router, "Bob")

	req, _ := http.NewRequest("GET", "/v1/kinship/nodes/"+bob, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp NodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Properties["name"] != "Bob" {
		t.Errorf("expected name Bob, got %q", resp.Properties["name"])
	}
}

func TestHandlers_HandleGetNode_NotFound(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/kinship/nodes/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandlers_HandleNeighbors(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	bob := createTestNode(t, router, "Bob")
	alice := createTestNode(t, router, "Alice")
	carol := createTestNode(t, router, "Carol")
	addTestEdge(t, router, bob, alice)
	addTestEdge(t, router, bob, carol)

	req, _ := http.NewRequest("GET", "/v1/kinship/nodes/"+bob+"/neighbors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp NeighborsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Neighbors) != 2 {
		t.Errorf("expected 2 neighbors, got %v", resp.Neighbors)
	}
}

func TestHandlers_HandleNeighbors_BadDirection(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	bob := createTestNode(t, router, "Bob")

	req, _ := http.NewRequest("GET", "/v1/kinship/nodes/"+bob+"/neighbors?direction=sideways", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandlers_HandleQuery(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	// Bob -> Alice -> Carol, so Carol is Bob's friend-of-friend.
	bob := createTestNode(t, router, "Bob")
	alice := createTestNode(t, router, "Alice")
	carol := createTestNode(t, router, "Carol")
	addTestEdge(t, router, bob, alice)
	addTestEdge(t, router, alice, bob)
	addTestEdge(t, router, alice, carol)

	w := postJSON(t, router, "/v1/kinship/query", QueryRequest{
		Pattern: `MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(resp.Table.Rows))
	}
	row := resp.Table.Rows[0]
	if row[0] != bob || row[2] != carol {
		t.Errorf("row = %v, want start %s end %s", row, bob, carol)
	}
}

func TestHandlers_HandleQuery_Malformed(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/kinship/query", QueryRequest{
		Pattern: `MATCH Person -FRIEND-`,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "MALFORMED_PATTERN" {
		t.Errorf("expected code MALFORMED_PATTERN, got %q", resp.Code)
	}
}

func TestHandlers_HandleRecommend(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	// me-a, me-b, a-x, b-x: x shares two friends with me.
	me := createTestNode(t, router, "Me")
	a := createTestNode(t, router, "A")
	b := createTestNode(t, router, "B")
	x := createTestNode(t, router, "X")
	addTestEdge(t, router, me, a)
	addTestEdge(t, router, me, b)
	addTestEdge(t, router, a, x)
	addTestEdge(t, router, b, x)

	w := postJSON(t, router, "/v1/kinship/recommendations", RecommendRequest{NodeID: me})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp RecommendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %v", resp.Suggestions)
	}
	if resp.Suggestions[0].NodeID != x {
		t.Errorf("suggested %s, want %s", resp.Suggestions[0].NodeID, x)
	}
	if resp.Suggestions[0].Score != 2 {
		t.Errorf("score = %d, want 2", resp.Suggestions[0].Score)
	}
}

func TestHandlers_HandleRecommend_UnknownNode(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	w := postJSON(t, router, "/v1/kinship/recommendations", RecommendRequest{NodeID: "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandlers_RequestIDEcho(t *testing.T) {
	svc := NewService(DefaultConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/kinship/nodes/missing", nil)
	req.Header.Set("X-Request-ID", "test-request-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "test-request-42" {
		t.Errorf("X-Request-ID = %q, want echo of caller's ID", got)
	}
}
