// Command analyze prints quick, human-readable statistics about the mission
// files in a directory (default: missions.dir from the settings file). It
// loads rules the same way the server does, replays each mission and
// summarizes grid size, robots, instructions, lost robots, scents, moves
// cancelled by scents, and how far each robot ended from where it started.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/martian-robots/game/config"
	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
)

// Analysis is the summary of one replayed mission
type Analysis struct {
	Grid         engine.Grid
	Robots       int
	Instructions int
	Lost         int
	Absorbed     int
	Scents       []engine.Scent
	EdgeCells    int
	Displacement []int // Manhattan distance from start to final cell, per robot
	Output       string
}

func main() {
	settings, err := config.LoadSettings(os.Getenv("MARS_CONFIG"))
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		os.Exit(1)
	}
	rules, err := settings.EngineRules()
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		os.Exit(1)
	}
	parser := protocol.NewParser(settings.Limits())

	missionDir := settings.Missions.Dir
	if len(os.Args) > 1 {
		missionDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(missionDir, "*.txt"))
	if err != nil {
		fmt.Printf("Error finding mission files: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scent mode: %s\n", rules.ScentMode)
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			continue
		}

		a, err := analyzeMission(string(data), parser, rules)
		if err != nil {
			fmt.Printf("Error parsing mission: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, a)
	}
}

// analyzeMission replays input step by step under rules and collects statistics
func analyzeMission(input string, parser *protocol.Parser, rules engine.Rules) (*Analysis, error) {
	mission, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}

	sim := engine.NewSimulation(mission.Grid, mission.Robots, rules)
	results := sim.RunToEnd()
	outcomes := engine.CountOutcomes(sim.History())

	a := &Analysis{
		Grid:         mission.Grid,
		Robots:       len(mission.Robots),
		Instructions: engine.CountInstructions(mission.Robots),
		Lost:         engine.CountLost(results),
		Absorbed:     outcomes[engine.OutcomeAbsorbed],
		Scents:       sim.Snapshot().Scents,
		EdgeCells:    engine.EdgeCells(mission.Grid),
		Displacement: make([]int, len(results)),
		Output:       protocol.FormatResults(results),
	}

	for i, r := range results {
		a.Displacement[i] = engine.ManhattanDistance(mission.Robots[i].Position, engine.Position{X: r.X, Y: r.Y})
	}

	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Grid: %d x %d (%d edge cells)\n", a.Grid.MaxX+1, a.Grid.MaxY+1, a.EdgeCells)
	fmt.Fprintf(w, "Robots: %d\n", a.Robots)
	fmt.Fprintf(w, "Instructions: %d\n", a.Instructions)
	fmt.Fprintf(w, "Lost robots: %d\n", a.Lost)
	fmt.Fprintf(w, "Scents: %d\n", len(a.Scents))
	for _, s := range a.Scents {
		fmt.Fprintf(w, "   Scent at (%d, %d)\n", s.Position.X, s.Position.Y)
	}
	fmt.Fprintf(w, "Moves cancelled by scents: %d\n", a.Absorbed)
	for i, d := range a.Displacement {
		fmt.Fprintf(w, "Robot %d ended %d cells from its start\n", i+1, d)
	}

	if a.Lost == a.Robots && a.Robots > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: every robot was lost\n")
	} else if a.Lost == 0 {
		fmt.Fprintf(w, "✅ No robots lost\n")
	}

	fmt.Fprintf(w, "Output:\n%s\n", a.Output)
}
