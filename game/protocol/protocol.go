package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wricardo/martian-robots/game/engine"
)

const (
	// DefaultMaxCoordinate caps both grid bounds
	DefaultMaxCoordinate = 50
	// DefaultMaxInstructions caps the length of one instruction line
	DefaultMaxInstructions = 100
)

// ErrFormat is wrapped by every FormatError
var ErrFormat = errors.New("invalid mission format")

// FormatError reports raw input that fails structural validation. Line is the
// 0-based index of the offending line.
type FormatError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Message)
}

// Unwrap lets callers match any FormatError with errors.Is(err, ErrFormat)
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func formatErrorf(line int, format string, args ...interface{}) *FormatError {
	return &FormatError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Limits bounds what the parser accepts
type Limits struct {
	MaxCoordinate   int `json:"max_coordinate"`
	MaxInstructions int `json:"max_instructions"`
}

// DefaultLimits returns the 50x50 grid and 100-instruction ceilings
func DefaultLimits() Limits {
	return Limits{
		MaxCoordinate:   DefaultMaxCoordinate,
		MaxInstructions: DefaultMaxInstructions,
	}
}

// Mission is a parsed input: one grid and its robots in input order
type Mission struct {
	Grid   engine.Grid        `json:"grid"`
	Robots []engine.RobotSpec `json:"robots"`
}

// String re-encodes the mission in the text protocol
func (m *Mission) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d", m.Grid.MaxX, m.Grid.MaxY)
	for _, r := range m.Robots {
		fmt.Fprintf(&b, "\n%d %d %s\n%s", r.Position.X, r.Position.Y, r.Orientation, r.Instructions)
	}
	return b.String()
}

var (
	gridLinePattern  = regexp.MustCompile(`^(\d+)\s+(\d+)$`)
	robotLinePattern = regexp.MustCompile(`^(\d+)\s+(\d+)\s+([NESW])$`)
	instrLinePattern = regexp.MustCompile(`^[LRF]+$`)
)

// Parser validates and decodes text missions under a set of limits
type Parser struct {
	limits Limits
}

// NewParser creates a parser. Non-positive limits fall back to the defaults.
func NewParser(limits Limits) *Parser {
	if limits.MaxCoordinate <= 0 {
		limits.MaxCoordinate = DefaultMaxCoordinate
	}
	if limits.MaxInstructions <= 0 {
		limits.MaxInstructions = DefaultMaxInstructions
	}
	return &Parser{limits: limits}
}

// Limits returns the limits the parser enforces
func (p *Parser) Limits() Limits {
	return p.limits
}

// Parse validates input and decodes it into a Mission. The first violation
// is returned as a *FormatError.
func (p *Parser) Parse(input string) (*Mission, error) {
	lines := SplitLines(input)

	if len(lines) < 3 || (len(lines)-1)%2 != 0 {
		return nil, formatErrorf(0, "input must start with the grid size followed by two lines per robot (got %d lines)", len(lines))
	}

	grid, err := p.parseGrid(lines[0])
	if err != nil {
		return nil, err
	}

	mission := &Mission{
		Grid:   grid,
		Robots: make([]engine.RobotSpec, 0, (len(lines)-1)/2),
	}

	for i := 1; i < len(lines); i += 2 {
		spec, err := p.parseRobot(grid, lines[i], i)
		if err != nil {
			return nil, err
		}

		instructions := lines[i+1]
		if len(instructions) > p.limits.MaxInstructions || !instrLinePattern.MatchString(instructions) {
			return nil, p.instructionError(instructions, i+1)
		}
		spec.Instructions = instructions

		mission.Robots = append(mission.Robots, spec)
	}

	return mission, nil
}

// Validate reports the first structural problem in input, or nil
func (p *Parser) Validate(input string) error {
	_, err := p.Parse(input)
	return err
}

func (p *Parser) parseGrid(line string) (engine.Grid, error) {
	m := gridLinePattern.FindStringSubmatch(line)
	if m == nil {
		return engine.Grid{}, formatErrorf(0, "invalid grid size line %q: want two non-negative integers", line)
	}

	maxX, errX := strconv.Atoi(m[1])
	maxY, errY := strconv.Atoi(m[2])
	if errX != nil || errY != nil || maxX > p.limits.MaxCoordinate || maxY > p.limits.MaxCoordinate {
		return engine.Grid{}, formatErrorf(0, "grid size cannot exceed %dx%d", p.limits.MaxCoordinate, p.limits.MaxCoordinate)
	}

	return engine.Grid{MaxX: maxX, MaxY: maxY}, nil
}

func (p *Parser) parseRobot(grid engine.Grid, line string, idx int) (engine.RobotSpec, error) {
	m := robotLinePattern.FindStringSubmatch(line)
	if m == nil {
		return engine.RobotSpec{}, formatErrorf(idx, "invalid robot position %q: want \"x y orientation\" with orientation one of N, E, S, W", line)
	}

	x, errX := strconv.Atoi(m[1])
	y, errY := strconv.Atoi(m[2])
	pos := engine.Position{X: x, Y: y}
	if errX != nil || errY != nil || !grid.Contains(pos) {
		return engine.RobotSpec{}, formatErrorf(idx, "robot position %s %s lies outside the %dx%d grid", m[1], m[2], grid.MaxX, grid.MaxY)
	}

	orientation, err := engine.ParseOrientation(m[3])
	if err != nil {
		return engine.RobotSpec{}, formatErrorf(idx, "%v", err)
	}

	return engine.RobotSpec{Position: pos, Orientation: orientation}, nil
}

func (p *Parser) instructionError(line string, idx int) *FormatError {
	switch {
	case len(line) == 0:
		return formatErrorf(idx, "instruction string is empty")
	case len(line) > p.limits.MaxInstructions:
		return formatErrorf(idx, "instruction string has %d characters, maximum is %d", len(line), p.limits.MaxInstructions)
	default:
		return formatErrorf(idx, "invalid instruction string %q: only L, R, F allowed", line)
	}
}

var defaultParser = NewParser(DefaultLimits())

// Parse decodes input under DefaultLimits
func Parse(input string) (*Mission, error) {
	return defaultParser.Parse(input)
}

// Validate checks input under DefaultLimits
func Validate(input string) error {
	return defaultParser.Validate(input)
}

// SplitLines trims the whole input and every line, tolerating CRLF endings
func SplitLines(input string) []string {
	lines := strings.Split(strings.TrimSpace(input), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// FormatResults renders one line per robot, newline-joined
func FormatResults(results []engine.Result) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
