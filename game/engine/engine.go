package engine

// Run simulates every robot in order against a fresh scent set and returns one
// result per robot, in input order. It never fails: input is assumed to be
// well-formed.
func Run(grid Grid, robots []RobotSpec, mode ScentMode) []Result {
	results, _ := RunWithScents(grid, robots, mode)
	return results
}

// RunWithScents is Run that also returns the scents left behind, in the order
// they were laid.
func RunWithScents(grid Grid, robots []RobotSpec, mode ScentMode) ([]Result, []Scent) {
	scents := NewScents(mode)
	results := make([]Result, 0, len(robots))
	for _, spec := range robots {
		results = append(results, RunRobot(grid, spec, scents))
	}
	return results, scents.Marks()
}

// Engine provides step-wise access to a simulation run
type Engine interface {
	// Progress
	Step() (StepEntry, bool)
	StepN(n int) []StepEntry
	RunToEnd() []Result
	Reset() *Snapshot
	Done() bool

	// State
	Snapshot() *Snapshot
	Results() []Result
	History() []StepEntry
	Grid() Grid
	Rules() Rules
}

// StepEntry is one instruction applied during a step-wise run
type StepEntry struct {
	Number      int     `json:"number"`      // 1-based across the whole run
	RobotIndex  int     `json:"robot_index"` // 0-based position in the input
	InstrIndex  int     `json:"instruction_index"`
	Step        Step    `json:"step"`
	Finished    bool    `json:"finished"`
	FinalResult *Result `json:"result,omitempty"` // set when this step finished the robot
}

// Snapshot is a point-in-time view of a step-wise run, suitable for rendering
type Snapshot struct {
	Grid         Grid        `json:"grid"`
	Rules        Rules       `json:"rules"`
	RobotCount   int         `json:"robot_count"`
	CurrentRobot int         `json:"current_robot"`
	InstrIndex   int         `json:"instruction_index"`
	Active       *Robot      `json:"active,omitempty"`
	Remaining    string      `json:"remaining_instructions,omitempty"`
	Results      []Result    `json:"results"`
	Scents       []Scent     `json:"scents"`
	TotalSteps   int         `json:"total_steps"`
	Done         bool        `json:"done"`
	LastStep     *StepEntry  `json:"last_step,omitempty"`
	Robots       []RobotSpec `json:"robots"`
}

// Simulation replays a run one instruction at a time. It produces the same
// results as Run once it reaches the end. Not safe for concurrent use.
type Simulation struct {
	grid   Grid
	robots []RobotSpec
	rules  Rules

	scents  *Scents
	current int
	cursor  int
	active  Robot
	results []Result
	history []StepEntry
}

// NewSimulation creates a step-wise run over robots
func NewSimulation(grid Grid, robots []RobotSpec, rules Rules) *Simulation {
	specs := make([]RobotSpec, len(robots))
	copy(specs, robots)

	s := &Simulation{
		grid:   grid,
		robots: specs,
		rules:  rules,
	}
	s.init()
	return s
}

func (s *Simulation) init() {
	s.scents = NewScents(s.rules.ScentMode)
	s.current = 0
	s.cursor = 0
	s.results = make([]Result, 0, len(s.robots))
	s.history = []StepEntry{}
	if len(s.robots) > 0 {
		s.active = NewRobot(s.robots[0])
	}
	s.settle()
}

// settle finishes robots that have nothing left to do, so that the cursor
// always points at an instruction while the run is not done.
func (s *Simulation) settle() {
	for s.current < len(s.robots) {
		spec := s.robots[s.current]
		if !s.active.Lost && s.cursor < len(spec.Instructions) {
			return
		}
		s.finishRobot()
	}
}

func (s *Simulation) finishRobot() {
	s.results = append(s.results, s.active.Result())
	s.current++
	s.cursor = 0
	if s.current < len(s.robots) {
		s.active = NewRobot(s.robots[s.current])
	}
}

// Step applies the next instruction. It reports false once every robot has
// finished.
func (s *Simulation) Step() (StepEntry, bool) {
	if s.Done() {
		return StepEntry{}, false
	}

	spec := s.robots[s.current]
	step := ApplyInstruction(s.grid, s.active, Instruction(spec.Instructions[s.cursor]), s.scents)

	entry := StepEntry{
		Number:     len(s.history) + 1,
		RobotIndex: s.current,
		InstrIndex: s.cursor,
		Step:       step,
	}

	s.active = step.To
	s.cursor++

	if s.active.Lost || s.cursor >= len(spec.Instructions) {
		res := s.active.Result()
		entry.Finished = true
		entry.FinalResult = &res
		s.settle()
	}

	s.history = append(s.history, entry)
	return entry, true
}

// StepN applies up to n instructions and returns the entries applied
func (s *Simulation) StepN(n int) []StepEntry {
	entries := make([]StepEntry, 0, n)
	for i := 0; i < n; i++ {
		entry, ok := s.Step()
		if !ok {
			break
		}
		entries = append(entries, entry)
	}
	return entries
}

// RunToEnd applies every remaining instruction and returns all results
func (s *Simulation) RunToEnd() []Result {
	for {
		if _, ok := s.Step(); !ok {
			break
		}
	}
	return s.Results()
}

// Reset rewinds the run to its initial state, discarding scents and history
func (s *Simulation) Reset() *Snapshot {
	s.init()
	return s.Snapshot()
}

// Done reports whether every robot has finished
func (s *Simulation) Done() bool {
	return s.current >= len(s.robots)
}

// Results returns the results of finished robots, in input order
func (s *Simulation) Results() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// History returns every step applied since the last reset
func (s *Simulation) History() []StepEntry {
	out := make([]StepEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Grid returns the grid of the run
func (s *Simulation) Grid() Grid {
	return s.grid
}

// Rules returns the rules of the run
func (s *Simulation) Rules() Rules {
	return s.rules
}

// Robots returns the robot specs of the run
func (s *Simulation) Robots() []RobotSpec {
	out := make([]RobotSpec, len(s.robots))
	copy(out, s.robots)
	return out
}

// Snapshot captures the current state of the run
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{
		Grid:         s.grid,
		Rules:        s.rules,
		RobotCount:   len(s.robots),
		CurrentRobot: s.current,
		InstrIndex:   s.cursor,
		Results:      s.Results(),
		Scents:       s.scents.Marks(),
		TotalSteps:   len(s.history),
		Done:         s.Done(),
		Robots:       s.Robots(),
	}

	if !snap.Done {
		active := s.active
		snap.Active = &active
		snap.Remaining = s.robots[s.current].Instructions[s.cursor:]
	}

	if n := len(s.history); n > 0 {
		last := s.history[n-1]
		snap.LastStep = &last
	}

	return snap
}
