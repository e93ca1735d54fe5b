package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Martian Robots",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Martian Robots - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Robots explore a rectangular grid on Mars. Each robot follows a string of
L (turn left), R (turn right) and F (forward) instructions. A robot that
moves off the grid is LOST and leaves a scent that stops later robots from
falling off at the same place.

AVAILABLE TOOLS:
- simulate: Run a whole mission and get the output lines
- create_session: Start a step-by-step replay of a mission
- step_session: Apply the next instruction(s) of a replay
- run_session: Run a replay to the end
- reset_session: Rewind a replay to the beginning
- session_state: Show the grid, robots and scents of a replay
- session_history: Show the instructions applied so far
- list_sessions: List active replays
- list_missions: List saved missions
- protocol_instructions: Explain the input and output format`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate",
		Description: "Run a complete mission and return one output line per robot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"input": map[string]interface{}{
					"type":        "string",
					"description": "Mission text: grid line, then a position line and an instruction line per robot",
				},
			},
			Required: []string{"input"},
		},
	}, c.handleSimulate)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a replay session from a saved mission or inline mission text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mission": map[string]interface{}{
					"type":        "string",
					"description": "Name of a saved mission (optional)",
				},
				"input": map[string]interface{}{
					"type":        "string",
					"description": "Inline mission text, takes precedence over mission (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active replay sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_state",
		Description: "Get the current state of a replay, including a map of the grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSessionState)

	// Replay control
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step_session",
		Description: "Apply the next instruction(s) of a replay",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of instructions to apply (default 1)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_session",
		Description: "Apply every remaining instruction of a replay",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Rewind a replay to its first instruction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_history",
		Description: "Get the applied instructions of a replay",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_missions",
		Description: "List saved missions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMissions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "protocol_instructions",
		Description: "Explain the mission input format, the robot rules and the output format",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleProtocolInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Line  *int   `json:"line"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		switch {
		case errResp.Error != "" && errResp.Line != nil:
			return fmt.Errorf("line %d: %s", *errResp.Line+1, errResp.Error)
		case errResp.Error != "":
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	input, _ := args["input"].(string)

	var response struct {
		Result string `json:"result"`
	}
	err := c.apiCall("POST", "/api/simulate", map[string]string{"input": input}, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Result), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mission, _ := args["mission"].(string)
	input, _ := args["input"].(string)

	body := service.CreateSessionRequest{Mission: mission, Input: input}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nMission: %s\n\n%s",
		session.ID, session.MissionName, formatSnapshot(session.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.Snapshot != nil {
			progress = fmt.Sprintf(", Steps: %d, Done: %t", s.Snapshot.TotalSteps, s.Snapshot.Done)
		}
		result += fmt.Sprintf("- %s (Mission: %s, Created: %s%s)\n",
			s.ID, s.MissionName, s.CreatedAt.Format("15:04:05"), progress)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSessionState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	err := c.apiCall("GET", sessionPath(sessionID, "/snapshot"), nil, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]interface{}{}
	if count, ok := args["count"].(float64); ok {
		body["count"] = int(count)
	}

	var result service.StepResult
	err := c.apiCall("POST", sessionPath(sessionID, "/step"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.StepResult
	err := c.apiCall("POST", sessionPath(sessionID, "/run"), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message  string           `json:"message"`
		Snapshot *engine.Snapshot `json:"snapshot"`
	}

	err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	params.Set("order", "asc")
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", sessionPath(sessionID, "/history?"+params.Encode()), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListMissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var missions []service.MissionInfo
	err := c.apiCall("GET", "/api/missions", nil, &missions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Missions:\n\n"
	for _, m := range missions {
		builtIn := ""
		if m.BuiltIn {
			builtIn = " (built-in)"
		}
		result += fmt.Sprintf("• %s%s\n  Grid: %dx%d, Robots: %d, Instructions: %d\n\n",
			m.Name, builtIn, m.Grid.MaxX, m.Grid.MaxY, m.Robots, m.Instructions)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleProtocolInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Martian Robots - Protocol

INPUT:
The first line is the upper-right corner of the grid, "X Y". The lower-left
corner is always 0 0. Coordinates are at most 50.

Each robot then takes two lines:
  1. Start position and orientation, "X Y O" where O is N, E, S or W.
     The start must lie on the grid.
  2. Instructions, a string of L, R and F (1 to 100 characters).

Leading and trailing whitespace on each line is ignored.

RULES:
• L and R turn the robot 90 degrees without moving it
• F moves one cell forward; N is +Y and E is +X
• A robot that moves off the grid is LOST. Its last position on the grid is
  reported and it ignores the rest of its instructions
• A lost robot leaves a scent at its last cell. A later robot at a scented
  cell ignores any F that would take it off the grid
• Robots run one after another, never at the same time

OUTPUT:
One line per robot in input order, "X Y O", with " LOST" appended when the
robot fell off the grid.

EXAMPLE:
  5 3
  1 1 E
  RFRFRFRF
  3 2 N
  FRRFLLFFRRFLL
  0 3 W
  LLFFFLFLFL

produces
  1 1 E
  3 3 N LOST
  2 3 S

REPLAYS:
create_session loads a mission without running it. step_session applies one
instruction at a time, run_session finishes the mission, and session_state
draws the grid with robots (^ > v <) and scents (x).`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

var orientationGlyphs = map[engine.Orientation]string{
	engine.North: "^",
	engine.East:  ">",
	engine.South: "v",
	engine.West:  "<",
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "State: unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d (upper-right %d %d)\n", snap.Grid.MaxX+1, snap.Grid.MaxY+1, snap.Grid.MaxX, snap.Grid.MaxY)
	fmt.Fprintf(&b, "Scent mode: %s\n", snap.Rules.ScentMode)
	fmt.Fprintf(&b, "Steps applied: %d\n", snap.TotalSteps)

	if snap.Done {
		b.WriteString("Status: ✅ finished\n")
	} else {
		fmt.Fprintf(&b, "Status: robot %d of %d, instruction %d\n",
			snap.CurrentRobot+1, snap.RobotCount, snap.InstrIndex+1)
		if snap.Active != nil {
			fmt.Fprintf(&b, "Active robot: %d %d %s\n",
				snap.Active.Position.X, snap.Active.Position.Y, snap.Active.Orientation)
		}
		if snap.Remaining != "" {
			fmt.Fprintf(&b, "Remaining: %s\n", snap.Remaining)
		}
	}

	if len(snap.Results) > 0 {
		b.WriteString("\nFinished robots:\n")
		for i, r := range snap.Results {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, r)
		}
	}

	b.WriteString("\n")
	b.WriteString(renderGrid(snap))
	return b.String()
}

// renderGrid draws the grid with north at the top
func renderGrid(snap *engine.Snapshot) string {
	// Keep the map readable for small grids only
	if snap.Grid.MaxX > 40 || snap.Grid.MaxY > 40 {
		return "(grid too large to draw)\n"
	}

	scented := make(map[engine.Position]bool, len(snap.Scents))
	for _, s := range snap.Scents {
		scented[s.Position] = true
	}

	var b strings.Builder
	for y := snap.Grid.MaxY; y >= 0; y-- {
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x <= snap.Grid.MaxX; x++ {
			p := engine.Position{X: x, Y: y}
			switch {
			case snap.Active != nil && snap.Active.Position == p:
				b.WriteString(orientationGlyphs[snap.Active.Orientation])
			case scented[p]:
				b.WriteString("x")
			default:
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Applied %d of %d requested instruction(s)", result.StepsExecuted, result.RequestedSteps)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")

	for _, entry := range result.Steps {
		b.WriteString(formatStepLine(entry))
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, ev := range result.Events {
			fmt.Fprintf(&b, "  • %s\n", ev.Message)
		}
	}

	if result.Output != "" {
		fmt.Fprintf(&b, "\nOutput so far:\n%s\n", result.Output)
	}

	if result.Done {
		b.WriteString("\n✅ Simulation finished\n")
	}

	return b.String()
}

func formatStepLine(entry engine.StepEntry) string {
	s := entry.Step
	line := fmt.Sprintf("%d. robot %d %s: %d %d %s -> %d %d %s [%s]",
		entry.Number, entry.RobotIndex+1, s.Instruction,
		s.From.Position.X, s.From.Position.Y, s.From.Orientation,
		s.To.Position.X, s.To.Position.Y, s.To.Orientation,
		s.Outcome)
	if entry.FinalResult != nil {
		line += " => " + entry.FinalResult.String()
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Instruction History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalSteps)

	for _, entry := range history.Steps {
		result += formatStepLine(entry)
	}

	if history.HasNext {
		result += fmt.Sprintf("\nMore on page %d\n", history.Page+1)
	}

	return result
}
