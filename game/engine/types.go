package engine

import (
	"encoding/json"
	"fmt"
)

// Orientation is the direction a robot faces. Values follow the cyclic
// order N, E, S, W used for turn arithmetic.
type Orientation int

const (
	North Orientation = iota
	East
	South
	West
)

// orientationCount is the size of the orientation cycle
const orientationCount = 4

var orientationLetters = [orientationCount]string{"N", "E", "S", "W"}

// unit offsets indexed by Orientation
var orientationOffsets = [orientationCount]Position{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
}

// Valid reports whether o is one of the four compass orientations
func (o Orientation) Valid() bool {
	return o >= North && o <= West
}

// String returns the single-letter form (N, E, S or W)
func (o Orientation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationLetters[o]
}

// Left returns the orientation after a 90 degree counter-clockwise turn
func (o Orientation) Left() Orientation {
	return (o + orientationCount - 1) % orientationCount
}

// Right returns the orientation after a 90 degree clockwise turn
func (o Orientation) Right() Orientation {
	return (o + 1) % orientationCount
}

// Offset returns the unit vector a forward move applies
func (o Orientation) Offset() Position {
	return orientationOffsets[o]
}

// MarshalJSON encodes the orientation as its letter
func (o Orientation) MarshalJSON() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid orientation %d", int(o))
	}
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an orientation letter
func (o *Orientation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("orientation must be a string: %w", err)
	}
	parsed, err := ParseOrientation(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrientation converts "N", "E", "S" or "W" into an Orientation
func ParseOrientation(s string) (Orientation, error) {
	for i, letter := range orientationLetters {
		if s == letter {
			return Orientation(i), nil
		}
	}
	return North, fmt.Errorf("unknown orientation %q", s)
}

// Instruction is a single robot command
type Instruction byte

const (
	TurnLeft  Instruction = 'L'
	TurnRight Instruction = 'R'
	Forward   Instruction = 'F'
)

// Valid reports whether the instruction is one the engine understands
func (i Instruction) Valid() bool {
	return i == TurnLeft || i == TurnRight || i == Forward
}

// String returns the instruction character
func (i Instruction) String() string {
	return string(rune(i))
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the component-wise sum of two positions
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Grid holds the inclusive upper bounds of the surface. The lower bounds are
// always 0,0.
type Grid struct {
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Contains reports whether p lies within the grid bounds
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= g.MaxX && p.Y <= g.MaxY
}

// RobotSpec is the input for one robot: where it lands and what it is told
type RobotSpec struct {
	Position     Position    `json:"position"`
	Orientation  Orientation `json:"orientation"`
	Instructions string      `json:"instructions"`
}

// Robot is the mutable state of a robot during a run
type Robot struct {
	Position    Position    `json:"position"`
	Orientation Orientation `json:"orientation"`
	Lost        bool        `json:"lost"`
}

// NewRobot places a robot according to its spec
func NewRobot(spec RobotSpec) Robot {
	return Robot{Position: spec.Position, Orientation: spec.Orientation}
}

// Result returns the externally visible final state of the robot
func (r Robot) Result() Result {
	return Result{X: r.Position.X, Y: r.Position.Y, Orientation: r.Orientation, Lost: r.Lost}
}

// Result is the final state of one robot after its run
type Result struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Orientation Orientation `json:"orientation"`
	Lost        bool        `json:"lost"`
}

// String renders the result in the text protocol form, e.g. "3 3 N LOST"
func (r Result) String() string {
	s := fmt.Sprintf("%d %d %s", r.X, r.Y, r.Orientation)
	if r.Lost {
		s += " LOST"
	}
	return s
}

// Outcome classifies what a single instruction did to a robot
type Outcome string

const (
	OutcomeTurned   Outcome = "turned"
	OutcomeMoved    Outcome = "moved"
	OutcomeAbsorbed Outcome = "absorbed" // off-grid move cancelled by a scent
	OutcomeLost     Outcome = "lost"
	OutcomeIgnored  Outcome = "ignored"
)

// Step records the effect of applying one instruction
type Step struct {
	Instruction Instruction `json:"-"`
	From        Robot       `json:"from"`
	To          Robot       `json:"to"`
	Outcome     Outcome     `json:"outcome"`
}

// MarshalJSON keeps the instruction readable in API payloads
func (s Step) MarshalJSON() ([]byte, error) {
	type alias Step
	return json.Marshal(struct {
		Instruction string `json:"instruction"`
		alias
	}{Instruction: s.Instruction.String(), alias: alias(s)})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (s *Step) UnmarshalJSON(data []byte) error {
	type alias Step
	aux := struct {
		Instruction string `json:"instruction"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Instruction) == 1 {
		s.Instruction = Instruction(aux.Instruction[0])
	}
	return nil
}
