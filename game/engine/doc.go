// Package engine provides the core simulation logic for Martian Robots.
//
// The engine package implements:
//   - Grid bounds and the N, E, S, W orientation cycle
//   - Turn and forward-move rules for a single instruction
//   - Loss detection when a robot would leave the grid
//   - Scents that stop later robots falling off at the same place
//   - Batch and step-wise execution of a run
//
// Core Types:
//
// Grid holds the inclusive bounds of the surface. RobotSpec is the input for
// one robot and Result its final state. Scents is the per-run accumulator
// shared, in order, by every robot of that run.
//
// Usage:
//
//	grid := engine.Grid{MaxX: 5, MaxY: 3}
//	robots := []engine.RobotSpec{
//		{Position: engine.Position{X: 1, Y: 1}, Orientation: engine.East, Instructions: "RFRFRFRF"},
//	}
//	for _, r := range engine.Run(grid, robots, engine.ScentByCell) {
//		fmt.Println(r) // 1 1 E
//	}
//
// Step-wise replay goes through Simulation, which applies one instruction per
// call to Step and yields the same results as Run once Done:
//
//	sim := engine.NewSimulation(grid, robots, engine.DefaultRules())
//	for {
//		entry, ok := sim.Step()
//		if !ok {
//			break
//		}
//		render(sim.Snapshot(), entry)
//	}
//
// Rules:
//
// L and R rotate the robot in place. F moves one cell in the facing direction.
// A move that would leave the grid loses the robot at its last valid cell and
// leaves a scent there, unless a scent is already present, in which case the
// move is ignored. A lost robot ignores the rest of its instructions. Scents are
// keyed by cell, or by cell and orientation, depending on ScentMode.
//
// The engine does not validate input; see package protocol.
package engine
