// Package session provides in-memory storage for step-wise replay sessions.
//
// Manager implements service.SessionManager. Each session owns its own
// engine.Simulation, so scents and history never leak between sessions.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID, short
// enough to type into a browser. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//	manager.StartCleanup(ctx, time.Minute, 30*time.Minute)
//
//	sess, err := manager.Create("", mission, engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Simulation.Step()
//
// Sessions are not persisted. They expire after a period of inactivity when
// the cleanup sweep is running, or can be deleted explicitly.
package session
