package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, baseURL)
	}
	if client.httpClient == nil {
		t.Error("httpClient not initialized")
	}
	if client.mcpServer == nil {
		t.Error("mcpServer not initialized")
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:8080/")
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", client.baseURL)
	}
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected non-empty tool result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestClientApiCallDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"hello": "world"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var out map[string]string
	if err := client.apiCall(http.MethodGet, "/anything", "", nil, &out); err != nil {
		t.Fatalf("apiCall: %v", err)
	}
	if out["hello"] != "world" {
		t.Errorf("out = %v", out)
	}
}

func TestClientApiCallSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.apiCall(http.MethodGet, "/x", "deadbeef", nil, &map[string]string{}); err != nil {
		t.Fatalf("apiCall: %v", err)
	}
	if gotAuth != "Bearer deadbeef" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
}

func TestClientApiCallReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"code": "invalidArgument", "message": "bad input"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.apiCall(http.MethodGet, "/x", "", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "invalidArgument") {
		t.Fatalf("err = %v, want invalidArgument", err)
	}
}

func TestClientApiCallTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	if err := client.apiCall(http.MethodGet, "/x", "", nil, nil); err == nil {
		t.Error("expected error dialing unreachable host")
	}
}

func TestHandleJoin(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/game/join" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{"authToken": "abc123", "playerId": 7})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleJoin(context.Background(), toolRequest(map[string]interface{}{
		"userName": "rex", "mapId": "map1",
	}))
	if err != nil {
		t.Fatalf("handleJoin: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "abc123") || !strings.Contains(text, "playerId: 7") {
		t.Errorf("unexpected result: %s", text)
	}
	if gotBody["userName"] != "rex" || gotBody["mapId"] != "map1" {
		t.Errorf("unexpected request body: %v", gotBody)
	}
}

func TestHandleJoinPropagatesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "mapNotFound", "message": "no such map"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleJoin(context.Background(), toolRequest(map[string]interface{}{
		"userName": "rex", "mapId": "bogus",
	}))
	if err != nil {
		t.Fatalf("handleJoin returned Go error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool result to carry an error")
	}
}

func TestHandleMove(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleMove(context.Background(), toolRequest(map[string]interface{}{
		"token": "tok", "direction": "U",
	}))
	if err != nil {
		t.Fatalf("handleMove: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["move"] != "U" {
		t.Errorf("move = %q", gotBody["move"])
	}
	if !strings.Contains(textOf(t, result), `"U"`) {
		t.Errorf("unexpected result text: %s", textOf(t, result))
	}
}

func TestHandleState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"players": map[string]interface{}{
				"3": map[string]interface{}{
					"pos": map[string]float64{"x": 1, "y": 2}, "dir": "U", "score": 5,
					"bag": []map[string]int{{"id": 1, "type": 0}},
				},
			},
			"lostObjects": map[string]interface{}{
				"9": map[string]interface{}{"type": 2, "pos": map[string]float64{"x": 3, "y": 4}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleState(context.Background(), toolRequest(map[string]interface{}{"token": "tok"}))
	if err != nil {
		t.Fatalf("handleState: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "#3") || !strings.Contains(text, "score=5") {
		t.Errorf("unexpected player line: %s", text)
	}
	if !strings.Contains(text, "#9") {
		t.Errorf("unexpected ground loot line: %s", text)
	}
}

func TestHandleTickRejectsNonPositiveDelta(t *testing.T) {
	client := NewClient("http://localhost:8080")
	result, err := client.handleTick(context.Background(), toolRequest(map[string]interface{}{"timeDeltaMs": float64(0)}))
	if err != nil {
		t.Fatalf("handleTick returned Go error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for non-positive delta")
	}
}

func TestHandleTick(t *testing.T) {
	var gotBody map[string]int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/game/tick" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleTick(context.Background(), toolRequest(map[string]interface{}{"timeDeltaMs": float64(100)}))
	if err != nil {
		t.Fatalf("handleTick: %v", err)
	}
	if gotBody["timeDelta"] != 100 {
		t.Errorf("timeDelta = %d, want 100", gotBody["timeDelta"])
	}
	if !strings.Contains(textOf(t, result), "100ms") {
		t.Errorf("unexpected text: %s", textOf(t, result))
	}
}

func TestHandleRecords(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "rex", "score": 42, "playTime": 120},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleRecords(context.Background(), toolRequest(map[string]interface{}{
		"start": float64(5), "maxItems": float64(10),
	}))
	if err != nil {
		t.Fatalf("handleRecords: %v", err)
	}
	if !strings.Contains(gotQuery, "start=5") || !strings.Contains(gotQuery, "maxItems=10") {
		t.Errorf("query = %q", gotQuery)
	}
	if !strings.Contains(textOf(t, result), "rex") {
		t.Errorf("unexpected text: %s", textOf(t, result))
	}
}

func TestGetMCPServerReturnsServer(t *testing.T) {
	client := NewClient("http://localhost:8080")
	if client.GetMCPServer() == nil {
		t.Fatal("GetMCPServer returned nil")
	}
}
