package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/martian-robots/game/protocol"
	"github.com/wricardo/martian-robots/game/service"
)

var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrInvalidMission  = errors.New("invalid mission")
)

const (
	// MissionExt is the extension mission files are stored with
	MissionExt = ".txt"
	// DefaultMissionName names the mission used when none is requested
	DefaultMissionName = "canonical"
)

// CanonicalInput is the three-robot sample mission
const CanonicalInput = `5 3
1 1 E
RFRFRFRF
3 2 N
FRRFLLFFRRFLL
0 3 W
LLFFFLFLFL`

var missionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Manager loads and caches missions stored as text files in a directory
type Manager struct {
	missionDir     string
	parser         *protocol.Parser
	defaultMission *service.MissionFile
	missions       map[string]*service.MissionFile
	mu             sync.RWMutex
}

// NewManager creates a mission manager over missionDir using the default
// parser limits. An empty missionDir serves only the built-in mission.
func NewManager(missionDir string) (*Manager, error) {
	return NewManagerWithLimits(missionDir, protocol.DefaultLimits())
}

// NewManagerWithLimits creates a mission manager that validates files under limits
func NewManagerWithLimits(missionDir string, limits protocol.Limits) (*Manager, error) {
	if missionDir != "" {
		if _, err := os.Stat(missionDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("mission directory does not exist: %s", missionDir)
		}
	}

	m := &Manager{
		missionDir: missionDir,
		parser:     protocol.NewParser(limits),
		missions:   make(map[string]*service.MissionFile),
	}

	if err := m.loadDefaultMission(); err != nil {
		return nil, fmt.Errorf("failed to load default mission: %w", err)
	}

	return m, nil
}

// LoadMission loads a mission by name, with or without the .txt extension
func (m *Manager) LoadMission(name string) (*service.MissionFile, error) {
	name = strings.TrimSuffix(name, MissionExt)
	if !missionNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: bad name %q", ErrInvalidMission, name)
	}

	m.mu.RLock()
	if mission, exists := m.missions[name]; exists {
		m.mu.RUnlock()
		return mission, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if mission, exists := m.missions[name]; exists {
		return mission, nil
	}

	if m.missionDir == "" {
		return m.builtIn(name)
	}

	data, err := os.ReadFile(filepath.Join(m.missionDir, name+MissionExt))
	if err != nil {
		if os.IsNotExist(err) {
			return m.builtIn(name)
		}
		return nil, fmt.Errorf("failed to read mission file: %w", err)
	}

	input := string(data)
	parsed, err := m.parser.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMission, name, err)
	}

	mission := &service.MissionFile{Name: name, Input: input, Mission: parsed}
	m.missions[name] = mission
	return mission, nil
}

// builtIn serves the canonical mission when no file shadows it
func (m *Manager) builtIn(name string) (*service.MissionFile, error) {
	if name != DefaultMissionName {
		return nil, ErrMissionNotFound
	}
	return canonicalMission(), nil
}

// ListMissions returns information about every valid mission, sorted by name.
// Files that fail validation are skipped.
func (m *Manager) ListMissions() ([]*service.MissionInfo, error) {
	var missions []*service.MissionInfo
	seen := map[string]bool{}

	if m.missionDir != "" {
		entries, err := os.ReadDir(m.missionDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read mission directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), MissionExt) {
				continue
			}

			mission, err := m.LoadMission(entry.Name())
			if err != nil {
				continue
			}

			info := service.NewMissionInfo(mission)
			info.Filename = entry.Name()
			missions = append(missions, info)
			seen[mission.Name] = true
		}
	}

	if !seen[DefaultMissionName] {
		info := service.NewMissionInfo(canonicalMission())
		info.BuiltIn = true
		missions = append(missions, info)
	}

	sort.Slice(missions, func(i, j int) bool {
		return missions[i].Name < missions[j].Name
	})
	return missions, nil
}

// GetDefault returns the default mission
func (m *Manager) GetDefault() *service.MissionFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMission
}

// SetDefault sets the default mission by name
func (m *Manager) SetDefault(name string) error {
	mission, err := m.LoadMission(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMission = mission
	return nil
}

// Count returns the number of cached missions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.missions)
}

// loadDefaultMission prefers canonical.txt, falling back to the built-in copy
func (m *Manager) loadDefaultMission() error {
	mission, err := m.LoadMission(DefaultMissionName)
	if err != nil {
		if !errors.Is(err, ErrInvalidMission) {
			return err
		}
		mission = canonicalMission()
	}

	m.mu.Lock()
	m.defaultMission = mission
	m.mu.Unlock()
	return nil
}

// SaveMission validates input and writes it to the mission directory
func (m *Manager) SaveMission(name, input string) (*service.MissionFile, error) {
	name = strings.TrimSuffix(name, MissionExt)
	if !missionNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: bad name %q", ErrInvalidMission, name)
	}
	if m.missionDir == "" {
		return nil, fmt.Errorf("no mission directory configured")
	}

	parsed, err := m.parser.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMission, err)
	}

	input = strings.TrimSpace(input) + "\n"
	if err := os.WriteFile(filepath.Join(m.missionDir, name+MissionExt), []byte(input), 0644); err != nil {
		return nil, fmt.Errorf("failed to write mission file: %w", err)
	}

	mission := &service.MissionFile{Name: name, Input: input, Mission: parsed}

	m.mu.Lock()
	m.missions[name] = mission
	m.mu.Unlock()

	return mission, nil
}

func canonicalMission() *service.MissionFile {
	parsed, err := protocol.Parse(CanonicalInput)
	if err != nil {
		panic(fmt.Sprintf("built-in mission is invalid: %v", err))
	}
	return &service.MissionFile{Name: DefaultMissionName, Input: CanonicalInput, Mission: parsed}
}
