package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
)

// ErrSimulationDone is returned when stepping a replay that has no instructions left
var ErrSimulationDone = errors.New("simulation already finished")

// SimulationService defines all simulation-related operations
type SimulationService interface {
	// One-shot runs
	Simulate(ctx context.Context, input string) (*SimulationResult, error)

	// Replay sessions
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Replay control
	Step(ctx context.Context, sessionID string, count int) (*StepResult, error)
	RunToEnd(ctx context.Context, sessionID string) (*StepResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Mission catalogue
	ListMissions(ctx context.Context) ([]*MissionInfo, error)
	LoadMission(ctx context.Context, name string) (*MissionFile, error)
	SaveMission(ctx context.Context, name, input string) (*MissionInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, mission *MissionFile, rules engine.Rules) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// MissionStore loads and stores named missions
type MissionStore interface {
	LoadMission(name string) (*MissionFile, error)
	ListMissions() ([]*MissionInfo, error)
	GetDefault() *MissionFile
	SaveMission(name, input string) (*MissionFile, error)
}

// Session is an active step-wise replay of one mission
type Session struct {
	ID             string
	Simulation     engine.Engine
	Mission        *MissionFile
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// MissionFile is a mission together with the text it was parsed from
type MissionFile struct {
	Name    string            `json:"name"`
	Input   string            `json:"input"`
	Mission *protocol.Mission `json:"mission"`
}
