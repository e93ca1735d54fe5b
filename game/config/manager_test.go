package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeMissionFile(t *testing.T, dir, name, input string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+MissionExt), []byte(input), 0644); err != nil {
		t.Fatalf("Failed to write mission file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault() == nil {
			t.Fatal("Expected default mission")
		}
		if manager.GetDefault().Input != CanonicalInput {
			t.Error("Expected built-in canonical mission as default")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("no directory", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if _, err := manager.LoadMission("canonical"); err != nil {
			t.Errorf("Expected built-in mission, got %v", err)
		}
		if _, err := manager.SaveMission("x", "1 1\n0 0 N\nF"); err == nil {
			t.Error("Expected save to fail without a directory")
		}
	})

	t.Run("canonical file overrides built-in", func(t *testing.T) {
		dir := t.TempDir()
		writeMissionFile(t, dir, "canonical", "2 2\n0 0 N\nFF\n")

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := len(manager.GetDefault().Mission.Robots); got != 1 {
			t.Errorf("Expected default from file with 1 robot, got %d", got)
		}
	})

	t.Run("invalid canonical file falls back", func(t *testing.T) {
		dir := t.TempDir()
		writeMissionFile(t, dir, "canonical", "not a mission")

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Input != CanonicalInput {
			t.Error("Expected built-in fallback")
		}
	})
}

func TestManager_LoadMission(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "corner", "0 0\n0 0 N\nF\n")
	writeMissionFile(t, dir, "broken", "5 3\n1 1 E\nRFX\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		mission string
		wantErr error
	}{
		{"by name", "corner", nil},
		{"with extension", "corner.txt", nil},
		{"built-in", "canonical", nil},
		{"missing", "nope", ErrMissionNotFound},
		{"invalid content", "broken", ErrInvalidMission},
		{"path traversal", "../etc/passwd", ErrInvalidMission},
		{"empty name", "", ErrInvalidMission},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mission, err := manager.LoadMission(test.mission)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Errorf("Expected %v, got %v", test.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if mission.Mission == nil {
				t.Error("Expected parsed mission")
			}
		})
	}
}

func TestManager_LoadMission_ReportsLine(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "broken", "5 3\n1 1 E\nRFX\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	_, err = manager.LoadMission("broken")
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected error to name line 3, got %v", err)
	}
}

func TestManager_ListMissions(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "zeta", "1 1\n0 0 N\nF\n")
	writeMissionFile(t, dir, "alpha", "2 2\n0 0 N\nFF\n1 1 E\nL\n")
	writeMissionFile(t, dir, "broken", "bad")
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	missions, err := manager.ListMissions()
	if err != nil {
		t.Fatalf("Failed to list missions: %v", err)
	}

	var names []string
	for _, m := range missions {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, ","); got != "alpha,canonical,zeta" {
		t.Errorf("Expected alpha,canonical,zeta, got %s", got)
	}

	alpha := missions[0]
	if alpha.Robots != 2 || alpha.Instructions != 3 || alpha.Filename != "alpha.txt" {
		t.Errorf("Unexpected alpha summary: %+v", alpha)
	}
	if !missions[1].BuiltIn {
		t.Error("Expected canonical to be marked built-in")
	}
}

func TestManager_SaveMission(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	saved, err := manager.SaveMission("fresh", "  3 3\n1 1 N\nFFF  ")
	if err != nil {
		t.Fatalf("Failed to save mission: %v", err)
	}
	if saved.Name != "fresh" {
		t.Errorf("Expected name fresh, got %s", saved.Name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fresh.txt"))
	if err != nil {
		t.Fatalf("Expected file on disk: %v", err)
	}
	if string(data) != "3 3\n1 1 N\nFFF\n" {
		t.Errorf("Unexpected file content %q", data)
	}

	loaded, err := manager.LoadMission("fresh")
	if err != nil {
		t.Fatalf("Failed to load saved mission: %v", err)
	}
	if loaded != saved {
		t.Error("Expected saved mission to be served from cache")
	}

	if _, err := manager.SaveMission("bad", "3 3\n1 1 N\nQ"); !errors.Is(err, ErrInvalidMission) {
		t.Errorf("Expected ErrInvalidMission, got %v", err)
	}
	if _, err := manager.SaveMission("../escape", "3 3\n1 1 N\nF"); !errors.Is(err, ErrInvalidMission) {
		t.Errorf("Expected ErrInvalidMission for bad name, got %v", err)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "small", "1 1\n0 0 N\nF\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("small"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Name != "small" {
		t.Errorf("Expected default small, got %s", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrMissionNotFound) {
		t.Errorf("Expected ErrMissionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 5; i++ {
		writeMissionFile(t, dir, fmt.Sprintf("mission%d", i), "5 5\n0 0 N\nFFRFF\n")
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadMission(fmt.Sprintf("mission%d", id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 5 {
		t.Errorf("Expected 5 missions in cache, got %d", manager.Count())
	}
}
