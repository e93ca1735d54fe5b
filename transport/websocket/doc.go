// Package websocket pushes replay updates to browsers watching a session.
//
// Architecture:
//
// A central Hub owns every connection, grouped by session ID. Each client has
// a read pump that only watches for close frames and pongs, and a write pump
// that drains its send buffer and keeps the connection alive with pings.
// Viewers are read-only; replays are driven through the REST API or MCP.
//
// Message Protocol:
//
// Every frame is one JSON object:
//
//	{"session_id":"1f2e3d4c","event":"state_update","snapshot":{...}}
//	{"session_id":"1f2e3d4c","event":"step","data":{...step result...}}
//
// Broadcasts never block the caller. When the queue is full the message is
// dropped and logged, and a client whose own buffer is full is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, snapshot)
//
// Cancelling the context passed to Run closes every connection.
package websocket
