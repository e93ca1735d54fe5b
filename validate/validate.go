// Command validate provides a small CLI that validates mission files in a
// directory (default ./missions). It checks:
//   - The grid line and coordinate limits
//   - Every robot position line, including that the robot starts on the grid
//   - Instruction characters (L, R, F) and length
//
// Valid missions are also run once so the report shows how many robots are lost.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages contains informational lines; otherwise it
// holds the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

// validateMission loads and validates a single mission file
func validateMission(filePath string, parser *protocol.Parser) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(filePath),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	mission, err := parser.Parse(string(data))
	if err != nil {
		result.Valid = false
		var fe *protocol.FormatError
		if errors.As(err, &fe) {
			lines := protocol.SplitLines(string(data))
			msg := fmt.Sprintf("Line %d: %s", fe.Line+1, fe.Message)
			if fe.Line >= 0 && fe.Line < len(lines) {
				msg += fmt.Sprintf(" (%q)", lines[fe.Line])
			}
			result.Messages = append(result.Messages, msg)
		} else {
			result.Messages = append(result.Messages, err.Error())
		}
		return result
	}

	results := engine.Run(mission.Grid, mission.Robots, engine.DefaultScentMode)

	result.Messages = append(result.Messages,
		fmt.Sprintf("✓ Grid: upper-right %d %d", mission.Grid.MaxX, mission.Grid.MaxY),
		fmt.Sprintf("✓ Robots: %d", len(mission.Robots)),
		fmt.Sprintf("✓ Instructions: %d", engine.CountInstructions(mission.Robots)),
		fmt.Sprintf("✓ Lost robots: %d", engine.CountLost(results)),
	)

	return result
}

// main scans the mission directory for *.txt files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	missionDir := "missions"
	if len(os.Args) > 1 {
		missionDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(missionDir, "*.txt"))
	if err != nil {
		fmt.Printf("Error finding mission files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No mission files found in %s\n", missionDir)
		return
	}

	parser := protocol.NewParser(protocol.DefaultLimits())

	allValid := true
	for _, file := range files {
		result := validateMission(file, parser)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Messages {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Messages {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All missions are valid!")
	} else {
		fmt.Println("❌ Some missions have errors")
		os.Exit(1)
	}
}
