// Package service provides the business logic layer for the Martian Robots
// simulator.
//
// The service package implements:
//   - One-shot simulation of text missions
//   - Step-wise replay sessions for visualisation
//   - The mission catalogue
//
// Core Interfaces:
//
// SimulationService is the main service interface used by every transport.
// SessionManager stores replay sessions. MissionStore loads and saves named
// missions.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP, CLI)
// and the engine. Raw text is always validated by the protocol parser before
// the engine sees it, so validation failures surface as *protocol.FormatError
// and the engine itself never errors. Each session owns an independent
// engine.Simulation with its own scent set.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	missionMgr := config.NewManager("missions")
//	svc := service.NewSimulationService(sessionMgr, missionMgr, service.Options{
//		Rules: engine.DefaultRules(),
//	})
//
//	res, err := svc.Simulate(ctx, "5 3\n1 1 E\nRFRFRFRF")
//	// res.Result == "1 1 E"
//
//	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Mission: "canonical"})
//	step, err := svc.Step(ctx, info.ID, 5)
//
// Replay Sessions:
//
// Step advances the current robot one instruction at a time and moves on to
// the next robot once it is lost or out of instructions. Stepping a finished
// replay returns ErrSimulationDone. Reset rewinds the replay and clears its
// scents.
package service
