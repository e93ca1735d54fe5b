package service

import (
	"time"

	"github.com/wricardo/martian-robots/game/engine"
)

// SimulationResult is the outcome of a one-shot run
type SimulationResult struct {
	Result string          `json:"result"`
	Robots []engine.Result `json:"robots"`
	Scents []engine.Scent  `json:"scents"`
	Lost   int             `json:"lost"`
	Grid   engine.Grid     `json:"grid"`
}

// CreateSessionRequest names the mission a replay session should load.
// Input takes precedence over Mission; both empty selects the default mission.
type CreateSessionRequest struct {
	Input   string `json:"input,omitempty"`
	Mission string `json:"mission,omitempty"`
}

// SessionInfo provides information about a replay session
type SessionInfo struct {
	ID             string           `json:"id"`
	MissionName    string           `json:"mission_name"`
	Input          string           `json:"input"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// StepResult contains the outcome of advancing a replay
type StepResult struct {
	SessionID      string             `json:"session_id"`
	RequestedSteps int                `json:"requested_steps"`
	StepsExecuted  int                `json:"steps_executed"`
	Truncated      bool               `json:"truncated,omitempty"`
	Limit          int                `json:"limit,omitempty"`
	Steps          []engine.StepEntry `json:"steps"`
	Events         []SimulationEvent  `json:"events"`
	Snapshot       *engine.Snapshot   `json:"snapshot"`
	Done           bool               `json:"done"`
	Output         string             `json:"output"` // protocol lines for robots finished so far
}

// SimulationEvent is a notable moment during a replay
type SimulationEvent struct {
	Type       string          `json:"type"` // "robot_lost", "scent_absorbed", "robot_finished", "simulation_done", "reset"
	Message    string          `json:"message"`
	Timestamp  time.Time       `json:"timestamp"`
	RobotIndex int             `json:"robot_index"`
	Position   engine.Position `json:"position"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a page of applied instructions
type HistoryResponse struct {
	Steps       []engine.StepEntry `json:"steps"`
	TotalSteps  int                `json:"total_steps"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalPages  int                `json:"total_pages"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
}

// MissionInfo summarises a mission in the catalogue
type MissionInfo struct {
	Name         string      `json:"name"`
	Filename     string      `json:"filename,omitempty"`
	Grid         engine.Grid `json:"grid"`
	Robots       int         `json:"robots"`
	Instructions int         `json:"instructions"`
	BuiltIn      bool        `json:"built_in,omitempty"`
}

// NewMissionInfo summarises a parsed mission file
func NewMissionInfo(m *MissionFile) *MissionInfo {
	info := &MissionInfo{Name: m.Name}
	if m.Mission != nil {
		info.Grid = m.Mission.Grid
		info.Robots = len(m.Mission.Robots)
		info.Instructions = engine.CountInstructions(m.Mission.Robots)
	}
	return info
}
