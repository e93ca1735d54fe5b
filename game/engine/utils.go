package engine

// CountLost counts the results flagged lost
func CountLost(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Lost {
			count++
		}
	}
	return count
}

// CountOutcomes tallies the outcome of every entry in a step history
func CountOutcomes(history []StepEntry) map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, entry := range history {
		counts[entry.Step.Outcome]++
	}
	return counts
}

// CountInstructions returns the total number of instructions across robots
func CountInstructions(robots []RobotSpec) int {
	total := 0
	for _, r := range robots {
		total += len(r.Instructions)
	}
	return total
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// EdgeCells counts the cells on the border of the grid, where every loss
// happens.
func EdgeCells(g Grid) int {
	w, h := g.MaxX+1, g.MaxY+1
	if w <= 2 || h <= 2 {
		return w * h
	}
	return 2*w + 2*h - 4
}
