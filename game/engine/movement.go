package engine

// ApplyInstruction applies a single instruction to r and returns the step
// taken. It is the only place the turn, move and loss rules live; both Run
// and Simulation go through it.
//
// scents is the run's accumulator. It is read on every off-grid attempt and
// written when a robot is lost.
func ApplyInstruction(grid Grid, r Robot, in Instruction, scents *Scents) Step {
	step := Step{Instruction: in, From: r, To: r}

	if r.Lost {
		step.Outcome = OutcomeIgnored
		return step
	}

	switch in {
	case TurnLeft:
		step.To.Orientation = r.Orientation.Left()
		step.Outcome = OutcomeTurned

	case TurnRight:
		step.To.Orientation = r.Orientation.Right()
		step.Outcome = OutcomeTurned

	case Forward:
		next := r.Position.Add(r.Orientation.Offset())
		if grid.Contains(next) {
			step.To.Position = next
			step.Outcome = OutcomeMoved
			return step
		}

		// Off the edge: a scent here means an earlier robot already fell
		if scents.Has(r.Position, r.Orientation) {
			step.Outcome = OutcomeAbsorbed
			return step
		}
		scents.Add(r.Position, r.Orientation)
		step.To.Lost = true
		step.Outcome = OutcomeLost

	default:
		step.Outcome = OutcomeIgnored
	}

	return step
}

// RunRobot executes every instruction of spec in order, stopping as soon as
// the robot is lost.
func RunRobot(grid Grid, spec RobotSpec, scents *Scents) Result {
	r := NewRobot(spec)
	for i := 0; i < len(spec.Instructions); i++ {
		r = ApplyInstruction(grid, r, Instruction(spec.Instructions[i]), scents).To
		if r.Lost {
			break
		}
	}
	return r.Result()
}
