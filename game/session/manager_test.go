package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
	"github.com/wricardo/martian-robots/game/service"
)

func createTestMission(t *testing.T) *service.MissionFile {
	t.Helper()
	input := "5 3\n1 1 E\nRFRFRFRF\n3 2 N\nFRRFLLFFRRFLL"
	parsed, err := protocol.Parse(input)
	if err != nil {
		t.Fatalf("parse test mission: %v", err)
	}
	return &service.MissionFile{Name: "test", Input: input, Mission: parsed}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	mission := createTestMission(t)

	t.Run("create with explicit id", func(t *testing.T) {
		session, err := manager.Create("alpha", mission, engine.DefaultRules())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "alpha" {
			t.Errorf("Expected ID alpha, got %s", session.ID)
		}
		if session.Simulation == nil {
			t.Fatal("Expected simulation to be initialised")
		}
		if session.Simulation.Snapshot().RobotCount != 2 {
			t.Errorf("Expected 2 robots, got %d", session.Simulation.Snapshot().RobotCount)
		}
		if session.CreatedAt.IsZero() || session.LastAccessedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("duplicate id is rejected case-insensitively", func(t *testing.T) {
		_, err := manager.Create("ALPHA", mission, engine.DefaultRules())
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("nil mission is rejected", func(t *testing.T) {
		_, err := manager.Create("", nil, engine.DefaultRules())
		if !errors.Is(err, ErrInvalidMission) {
			t.Errorf("Expected ErrInvalidMission, got %v", err)
		}
		_, err = manager.Create("", &service.MissionFile{Name: "empty"}, engine.DefaultRules())
		if !errors.Is(err, ErrInvalidMission) {
			t.Errorf("Expected ErrInvalidMission, got %v", err)
		}
	})

	t.Run("rules reach the simulation", func(t *testing.T) {
		rules := engine.Rules{ScentMode: engine.ScentByCellAndOrientation}
		session, err := manager.Create("", mission, rules)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.Simulation.Rules() != rules {
			t.Errorf("Expected rules %+v, got %+v", rules, session.Simulation.Rules())
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	manager.Create("MixedCase", createTestMission(t), engine.DefaultRules())

	tests := []struct {
		id      string
		wantErr error
	}{
		{"MixedCase", nil},
		{"mixedcase", nil},
		{"MIXEDCASE", nil},
		{"other", ErrSessionNotFound},
	}

	for _, test := range tests {
		t.Run(test.id, func(t *testing.T) {
			session, err := manager.Get(test.id)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Expected error %v, got %v", test.wantErr, err)
			}
			if test.wantErr == nil && session.ID != "MixedCase" {
				t.Errorf("Expected original ID to be kept, got %s", session.ID)
			}
		})
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("doomed", createTestMission(t), engine.DefaultRules())

	if err := manager.Delete("DOOMED"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("doomed"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected session to be gone, got %v", err)
	}
	if err := manager.Delete("doomed"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	mission := createTestMission(t)

	if len(manager.List()) != 0 {
		t.Error("Expected empty list")
	}

	for i := 0; i < 3; i++ {
		manager.Create(fmt.Sprintf("s%d", i), mission, engine.DefaultRules())
	}

	if len(manager.List()) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(manager.List()))
	}
	if manager.Count() != 3 {
		t.Errorf("Expected count 3, got %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	mission := createTestMission(t)

	active, _ := manager.Create("active", mission, engine.DefaultRules())
	expired, _ := manager.Create("expired", mission, engine.DefaultRules())

	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	deleted := manager.CleanupExpiredSessions(1 * time.Hour)
	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}

	if _, err := manager.Get("expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_StartCleanup(t *testing.T) {
	manager := NewManager()
	stale, _ := manager.Create("stale", createTestMission(t), engine.DefaultRules())
	stale.LastAccessedAt = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager.StartCleanup(ctx, 5*time.Millisecond, time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for manager.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if manager.Count() != 0 {
		t.Error("Expected background sweep to remove the stale session")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", createTestMission(t), engine.DefaultRules())
	originalTime := session.LastAccessedAt

	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}

	updated, _ := manager.Get("access-test")
	if !updated.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}

	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	mission := createTestMission(t)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", mission, engine.DefaultRules())
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(session.ID); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 100 {
		t.Errorf("Expected 100 sessions, got %d", manager.Count())
	}
}

func TestManager_ConcurrentServiceReads(t *testing.T) {
	manager := NewManager()
	svc := service.NewSimulationService(manager, nil, service.Options{
		Rules:  engine.DefaultRules(),
		Limits: protocol.DefaultLimits(),
	})
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Input: createTestMission(t).Input})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				var err error
				switch (worker + j) % 5 {
				case 0:
					_, err = svc.GetSession(ctx, info.ID)
				case 1:
					_, err = svc.GetSnapshot(ctx, info.ID)
				case 2:
					_, err = svc.GetHistory(ctx, info.ID, service.HistoryOptions{})
				case 3:
					_, err = svc.ListSessions(ctx)
				case 4:
					_, err = svc.Step(ctx, info.ID, 1)
					if errors.Is(err, service.ErrSimulationDone) {
						err = nil
					}
				}
				if err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent reads: %v", err)
	}

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.LastAccessedAt.Before(got.CreatedAt) {
		t.Errorf("Expected LastAccessedAt after CreatedAt, got %v < %v", got.LastAccessedAt, got.CreatedAt)
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	mission := createTestMission(t)

	session1, _ := manager.Create("iso-1", mission, engine.DefaultRules())
	session2, _ := manager.Create("iso-2", mission, engine.DefaultRules())

	session1.Simulation.RunToEnd()

	if session2.Simulation.Snapshot().TotalSteps != 0 {
		t.Error("Session 2 should not be affected by session 1 steps")
	}
	if len(session2.Simulation.Snapshot().Scents) != 0 {
		t.Error("Scents must not leak between sessions")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	mission := createTestMission(t)

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", mission, engine.DefaultRules())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 8 {
			t.Errorf("Expected 8-character ID, got %q", session.ID)
		}
	}
}
