// Package mcp exposes the simulator to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON response is rendered as text that reads
// well in a chat transcript. The package holds no simulation state of its own.
//
// MCP Tools:
//   - simulate: Run a mission and return the output lines
//   - create_session: Start a replay from a saved mission or inline text
//   - step_session: Apply the next instruction(s)
//   - run_session: Finish a replay
//   - reset_session: Rewind a replay
//   - session_state: Show the grid with robots and scents
//   - session_history: Page through applied instructions
//   - list_sessions: List active replays
//   - list_missions: List saved missions
//   - protocol_instructions: Describe the input format and robot rules
//
// Transport Modes:
//   - Stdio: the stdio-mcp command serves GetMCPServer over stdin/stdout
//   - HTTP: the serve command answers JSON-RPC messages on /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
