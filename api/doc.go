// Package api provides the HTTP REST API for the Martian robots simulator.
//
// The api package implements:
//   - The one-shot simulate endpoint
//   - Replay session management and step control
//   - The mission catalogue
//   - WebSocket upgrade handling for replay viewers
//
// Endpoints:
//
// Simulation:
//   - POST /api/simulate - Run a mission and return the protocol output
//
// Sessions:
//   - POST /api/sessions - Create a replay session ({"mission":"name"} or {"input":"..."})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//   - POST /api/sessions/{id}/step - Apply {"count":n} instructions
//   - POST /api/sessions/{id}/run - Run the remaining instructions
//   - POST /api/sessions/{id}/reset - Rewind to the first instruction
//   - GET /api/sessions/{id}/snapshot - Current state
//   - GET /api/sessions/{id}/history - Applied instructions with pagination
//
// Missions:
//   - GET /api/missions - List missions
//   - GET /api/missions/{name} - Get a mission and its text
//   - POST /api/missions - Save {"name":"...","input":"..."}
//
// Simulate contract:
//
//	200 {"result":"1 1 E\n3 3 N LOST\n2 3 S"}
//	400 {"error":"Invalid or missing JSON input.","received":"<raw body>"}
//	400 {"error":"Invalid input format","issues":[...],"received":"<raw body>"}
//	422 {"error":"Invalid robot instructions","line":2}
//
// The line in a 422 body is the 0-based index of the offending input line.
//
// Error Handling:
//
// Other errors are returned as {"error":"message"}. Unknown sessions and
// missions map to 404, invalid missions to 422 and stepping a finished
// replay to 409.
package api
