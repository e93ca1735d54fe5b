package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
)

const (
	// InlineMissionName labels sessions created from raw input
	InlineMissionName = "inline"
	// DefaultMaxStepsPerCall bounds a single Step call
	DefaultMaxStepsPerCall = 1000
)

// Options tunes the simulation service
type Options struct {
	Rules           engine.Rules
	Limits          protocol.Limits
	MaxStepsPerCall int
}

// simulationServiceImpl implements the SimulationService interface
type simulationServiceImpl struct {
	sessions SessionManager
	missions MissionStore
	parser   *protocol.Parser
	rules    engine.Rules
	maxSteps int
	mu       sync.RWMutex
}

// NewSimulationService creates a new simulation service instance
func NewSimulationService(sessions SessionManager, missions MissionStore, opts Options) SimulationService {
	if opts.MaxStepsPerCall <= 0 {
		opts.MaxStepsPerCall = DefaultMaxStepsPerCall
	}
	return &simulationServiceImpl{
		sessions: sessions,
		missions: missions,
		parser:   protocol.NewParser(opts.Limits),
		rules:    opts.Rules,
		maxSteps: opts.MaxStepsPerCall,
	}
}

// Simulate validates input and runs every robot to completion
func (s *simulationServiceImpl) Simulate(ctx context.Context, input string) (*SimulationResult, error) {
	mission, err := s.parser.Parse(input)
	if err != nil {
		return nil, err
	}

	results, scents := engine.RunWithScents(mission.Grid, mission.Robots, s.rules.ScentMode)

	return &SimulationResult{
		Result: protocol.FormatResults(results),
		Robots: results,
		Scents: scents,
		Lost:   engine.CountLost(results),
		Grid:   mission.Grid,
	}, nil
}

// CreateSession starts a step-wise replay
func (s *simulationServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mission, err := s.resolveMission(req)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create("", mission, s.rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

func (s *simulationServiceImpl) resolveMission(req CreateSessionRequest) (*MissionFile, error) {
	switch {
	case req.Input != "":
		parsed, err := s.parser.Parse(req.Input)
		if err != nil {
			return nil, err
		}
		return &MissionFile{Name: InlineMissionName, Input: req.Input, Mission: parsed}, nil

	case req.Mission != "":
		mission, err := s.missions.LoadMission(req.Mission)
		if err != nil {
			available, listErr := s.missions.ListMissions()
			if listErr == nil && len(available) > 0 {
				names := make([]string, 0, len(available))
				for _, m := range available {
					names = append(names, m.Name)
				}
				return nil, fmt.Errorf("mission '%s' (available: %v): %w", req.Mission, names, err)
			}
			return nil, fmt.Errorf("mission '%s': %w", req.Mission, err)
		}
		return mission, nil

	default:
		return s.missions.GetDefault(), nil
	}
}

// GetSession retrieves session information
func (s *simulationServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *simulationServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *simulationServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Step applies up to count instructions. A count below one means a single step.
func (s *simulationServiceImpl) Step(ctx context.Context, sessionID string, count int) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Simulation.Done() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSimulationDone)
	}

	if count < 1 {
		count = 1
	}
	result := &StepResult{SessionID: sess.ID, RequestedSteps: count}
	if count > s.maxSteps {
		result.Truncated = true
		result.Limit = s.maxSteps
		count = s.maxSteps
	}

	steps := sess.Simulation.StepN(count)
	return s.finishStep(sess, result, steps), nil
}

// RunToEnd applies every remaining instruction
func (s *simulationServiceImpl) RunToEnd(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	before := len(sess.Simulation.History())
	sess.Simulation.RunToEnd()
	steps := sess.Simulation.History()[before:]

	result := &StepResult{SessionID: sess.ID, RequestedSteps: len(steps)}
	return s.finishStep(sess, result, steps), nil
}

func (s *simulationServiceImpl) finishStep(sess *Session, result *StepResult, steps []engine.StepEntry) *StepResult {
	if steps == nil {
		steps = []engine.StepEntry{}
	}
	result.Steps = steps
	result.StepsExecuted = len(steps)
	result.Events = extractEvents(steps)
	result.Snapshot = sess.Simulation.Snapshot()
	result.Done = result.Snapshot.Done
	result.Output = protocol.FormatResults(result.Snapshot.Results)

	if result.Done && len(steps) > 0 {
		result.Events = append(result.Events, SimulationEvent{
			Type:      "simulation_done",
			Message:   fmt.Sprintf("All %d robots finished, %d lost", result.Snapshot.RobotCount, engine.CountLost(result.Snapshot.Results)),
			Timestamp: time.Now(),
		})
	}
	return result
}

// Reset rewinds a session to its initial state, clearing scents
func (s *simulationServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Simulation.Reset(), nil
}

// GetSnapshot returns the current state of a replay
func (s *simulationServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Simulation.Snapshot(), nil
}

// GetHistory returns paginated step history
func (s *simulationServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Simulation.History()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	steps := []engine.StepEntry{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				steps = append(steps, history[i])
			}
		} else {
			steps = append(steps, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Steps:       steps,
		TotalSteps:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListMissions returns the mission catalogue
func (s *simulationServiceImpl) ListMissions(ctx context.Context) ([]*MissionInfo, error) {
	return s.missions.ListMissions()
}

// LoadMission loads a named mission
func (s *simulationServiceImpl) LoadMission(ctx context.Context, name string) (*MissionFile, error) {
	return s.missions.LoadMission(name)
}

// SaveMission validates input and stores it under name
func (s *simulationServiceImpl) SaveMission(ctx context.Context, name, input string) (*MissionInfo, error) {
	if err := s.parser.Validate(input); err != nil {
		return nil, err
	}
	saved, err := s.missions.SaveMission(name, input)
	if err != nil {
		return nil, err
	}
	return NewMissionInfo(saved), nil
}

// touch looks a session up and refreshes its access time. Callers must hold
// the write lock: sessionInfo reads LastAccessedAt under the read lock.
func (s *simulationServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		MissionName:    sess.Mission.Name,
		Input:          sess.Mission.Input,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       sess.Simulation.Snapshot(),
	}
}

func extractEvents(steps []engine.StepEntry) []SimulationEvent {
	events := []SimulationEvent{}
	for _, entry := range steps {
		to := entry.Step.To
		switch entry.Step.Outcome {
		case engine.OutcomeLost:
			events = append(events, SimulationEvent{
				Type:       "robot_lost",
				Message:    fmt.Sprintf("Robot %d lost moving %s from (%d,%d), scent left", entry.RobotIndex+1, to.Orientation, to.Position.X, to.Position.Y),
				Timestamp:  time.Now(),
				RobotIndex: entry.RobotIndex,
				Position:   to.Position,
			})
		case engine.OutcomeAbsorbed:
			events = append(events, SimulationEvent{
				Type:       "scent_absorbed",
				Message:    fmt.Sprintf("Robot %d ignored a move off the grid at (%d,%d)", entry.RobotIndex+1, to.Position.X, to.Position.Y),
				Timestamp:  time.Now(),
				RobotIndex: entry.RobotIndex,
				Position:   to.Position,
			})
		}

		if entry.Finished && entry.FinalResult != nil {
			events = append(events, SimulationEvent{
				Type:       "robot_finished",
				Message:    fmt.Sprintf("Robot %d finished at %s", entry.RobotIndex+1, entry.FinalResult),
				Timestamp:  time.Now(),
				RobotIndex: entry.RobotIndex,
				Position:   to.Position,
			})
		}
	}
	return events
}
