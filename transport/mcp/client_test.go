package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/service"
)

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func canonicalSnapshot(steps int) *engine.Snapshot {
	sim := engine.NewSimulation(
		engine.Grid{MaxX: 5, MaxY: 3},
		[]engine.RobotSpec{
			{Position: engine.Position{X: 1, Y: 1}, Orientation: engine.East, Instructions: "RFRFRFRF"},
			{Position: engine.Position{X: 3, Y: 2}, Orientation: engine.North, Instructions: "FRRFLLFFRRFLL"},
			{Position: engine.Position{X: 0, Y: 3}, Orientation: engine.West, Instructions: "LLFFFLFLFL"},
		},
		engine.DefaultRules(),
	)
	sim.StepN(steps)
	return sim.Snapshot()
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "test-session"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api/sessions/test-session", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != "test-session" {
		t.Errorf("Expected id test-session, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api/missions", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/missions", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}
	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_FormatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"invalid orientation \"Q\"","line":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("POST", "/api/simulate", map[string]string{"input": "x"}, nil)
	if err == nil {
		t.Fatal("Expected error for 422 response")
	}
	if err.Error() != `line 2: invalid orientation "Q"` {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestClient_handleSimulate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/simulate" {
			t.Errorf("Expected POST /api/simulate, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if !strings.HasPrefix(body["input"], "5 3") {
			t.Errorf("Unexpected input %q", body["input"])
		}
		json.NewEncoder(w).Encode(map[string]string{"result": "1 1 E\n3 3 N LOST\n2 3 S"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSimulate(context.Background(), toolRequest("simulate", map[string]interface{}{
		"input": "5 3\n1 1 E\nRFRFRFRF",
	}))
	if err != nil {
		t.Fatalf("handleSimulate failed: %v", err)
	}

	if text := textOf(t, result); text != "1 1 E\n3 3 N LOST\n2 3 S" {
		t.Errorf("Unexpected output %q", text)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var req service.CreateSessionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Mission != "canonical" {
			t.Errorf("Expected mission canonical, got %q", req.Mission)
		}

		resp := service.SessionInfo{
			ID:          "test-session-123",
			MissionName: "canonical",
			Snapshot:    canonicalSnapshot(0),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{
		"mission": "canonical",
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := textOf(t, result)
	for _, want := range []string{"test-session-123", "Mission: canonical", "robot 1 of 3"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleStep_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleStep(context.Background(), toolRequest("step_session", map[string]interface{}{
		"session_id": "nope",
	}))
	if err != nil {
		t.Fatalf("handleStep returned a protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error result")
	}
	if text := textOf(t, result); !strings.Contains(text, "session not found") {
		t.Errorf("Unexpected error text %q", text)
	}
}

func TestClient_handleStep_SendsCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s1/step" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["count"] != 3 {
			t.Errorf("Expected count 3, got %d", body["count"])
		}
		json.NewEncoder(w).Encode(service.StepResult{
			SessionID:      "s1",
			RequestedSteps: 3,
			StepsExecuted:  3,
			Snapshot:       canonicalSnapshot(3),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleStep(context.Background(), toolRequest("step_session", map[string]interface{}{
		"session_id": "s1",
		"count":      float64(3),
	}))
	if err != nil {
		t.Fatalf("handleStep failed: %v", err)
	}
	if text := textOf(t, result); !strings.Contains(text, "Applied 3 of 3") {
		t.Errorf("Unexpected step text %q", text)
	}
}

func TestFormatSnapshot(t *testing.T) {
	snap := canonicalSnapshot(2)

	result := formatSnapshot(snap)

	expectedFields := []string{
		"Grid: 6x4",
		"Steps applied: 2",
		"robot 1 of 3, instruction 3",
		"Active robot: 1 0 S",
		"Remaining: RFRFRF",
	}
	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}

	rows := strings.Split(strings.TrimRight(renderGrid(snap), "\n"), "\n")
	if len(rows) != 4 {
		t.Fatalf("Expected 4 grid rows, got %d", len(rows))
	}
	if rows[3] != " 0 .v...." {
		t.Errorf("Expected robot facing south at (1,0), got %q", rows[3])
	}
}

func TestFormatSnapshot_Finished(t *testing.T) {
	snap := canonicalSnapshot(1000)

	result := formatSnapshot(snap)

	for _, field := range []string{"finished", "1. 1 1 E", "2. 3 3 N LOST", "3. 2 3 S"} {
		if !strings.Contains(result, field) {
			t.Errorf("Expected '%s' in result, got: %s", field, result)
		}
	}

	rows := strings.Split(strings.TrimRight(renderGrid(snap), "\n"), "\n")
	if rows[0] != " 3 ...x.." {
		t.Errorf("Expected scent at (3,3), got %q", rows[0])
	}
}

func TestFormatSnapshot_Nil(t *testing.T) {
	if got := formatSnapshot(nil); got != "State: unavailable" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestFormatStepResult(t *testing.T) {
	sim := engine.NewSimulation(
		engine.Grid{MaxX: 5, MaxY: 3},
		[]engine.RobotSpec{{Position: engine.Position{X: 3, Y: 2}, Orientation: engine.North, Instructions: "FRRFLLFFRRFLL"}},
		engine.DefaultRules(),
	)
	steps := sim.StepN(8)

	result := formatStepResult(&service.StepResult{
		RequestedSteps: 8,
		StepsExecuted:  len(steps),
		Steps:          steps,
		Events:         []service.SimulationEvent{{Type: "robot_lost", Message: "Robot 1 lost at 3 3 N"}},
		Output:         "3 3 N LOST",
		Done:           true,
	})

	for _, want := range []string{"Applied 8 of 8", "[lost]", "=> 3 3 N LOST", "Robot 1 lost", "Simulation finished"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected '%s' in result, got: %s", want, result)
		}
	}
}

func TestClient_handleProtocolInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleProtocolInstructions(context.Background(), toolRequest("protocol_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleProtocolInstructions failed: %v", err)
	}

	text := textOf(t, result)
	for _, content := range []string{"INPUT:", "RULES:", "OUTPUT:", "3 3 N LOST", "scent", "1 to 100 characters"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
	if strings.Contains(text, "fewer than") {
		t.Error("Instruction length bound should be inclusive")
	}
}
