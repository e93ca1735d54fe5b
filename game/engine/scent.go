package engine

// Scent marks the last valid position (and, depending on the mode, the
// orientation) of a robot that fell off the grid.
type Scent struct {
	Position    Position    `json:"position"`
	Orientation Orientation `json:"orientation"`
}

// Scents accumulates scent marks for a single run. Marks are never removed.
// The zero value is not usable; call NewScents.
type Scents struct {
	mode  ScentMode
	marks map[Scent]struct{}
	order []Scent
}

// NewScents creates an empty accumulator keyed according to mode
func NewScents(mode ScentMode) *Scents {
	return &Scents{
		mode:  mode,
		marks: make(map[Scent]struct{}),
	}
}

// Mode returns the granularity scents are keyed by
func (s *Scents) Mode() ScentMode {
	return s.mode
}

func (s *Scents) key(p Position, o Orientation) Scent {
	if s.mode == ScentByCellAndOrientation {
		return Scent{Position: p, Orientation: o}
	}
	return Scent{Position: p}
}

// Has reports whether a scent protects a robot at p facing o
func (s *Scents) Has(p Position, o Orientation) bool {
	_, ok := s.marks[s.key(p, o)]
	return ok
}

// Add records a scent. It reports false if the mark already existed.
func (s *Scents) Add(p Position, o Orientation) bool {
	k := s.key(p, o)
	if _, ok := s.marks[k]; ok {
		return false
	}
	s.marks[k] = struct{}{}
	s.order = append(s.order, Scent{Position: p, Orientation: o})
	return true
}

// Len returns the number of marks recorded
func (s *Scents) Len() int {
	return len(s.marks)
}

// Marks returns the recorded scents in the order they were left
func (s *Scents) Marks() []Scent {
	out := make([]Scent, len(s.order))
	copy(out, s.order)
	return out
}
