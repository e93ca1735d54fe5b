package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScentMode selects how scents are keyed
type ScentMode int

const (
	// ScentByCell keys scents by (x, y). A scent protects every orientation
	// at that cell.
	ScentByCell ScentMode = iota
	// ScentByCellAndOrientation keys scents by (x, y, orientation).
	ScentByCellAndOrientation
)

// DefaultScentMode is the granularity used when none is configured
const DefaultScentMode = ScentByCell

// String returns the settings name of the mode
func (m ScentMode) String() string {
	switch m {
	case ScentByCell:
		return "cell"
	case ScentByCellAndOrientation:
		return "cell_orientation"
	default:
		return fmt.Sprintf("ScentMode(%d)", int(m))
	}
}

// MarshalJSON encodes the mode by name
func (m ScentMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode by name
func (m *ScentMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("scent mode must be a string: %w", err)
	}
	parsed, err := ParseScentMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseScentMode converts a settings value into a ScentMode. An empty value
// selects DefaultScentMode.
func ParseScentMode(s string) (ScentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultScentMode, nil
	case "cell", "xy":
		return ScentByCell, nil
	case "cell_orientation", "cell-orientation", "xyo":
		return ScentByCellAndOrientation, nil
	default:
		return DefaultScentMode, fmt.Errorf("unknown scent mode %q (want cell or cell_orientation)", s)
	}
}

// Rules holds the tunable behaviour of a simulation run
type Rules struct {
	ScentMode ScentMode `json:"scent_mode"`
}

// DefaultRules returns the canonical rule set
func DefaultRules() Rules {
	return Rules{ScentMode: DefaultScentMode}
}

// ValidateRules checks that every rule holds a known value
func ValidateRules(r Rules) error {
	switch r.ScentMode {
	case ScentByCell, ScentByCellAndOrientation:
		return nil
	default:
		return fmt.Errorf("rules validation: unknown scent mode %d", int(r.ScentMode))
	}
}
