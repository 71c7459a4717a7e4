package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/crosslight/controlroom/traffic/engine"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
)

// Manager handles scenario loading and caching.
type Manager struct {
	configDir       string
	defaultScenario *engine.ScenarioConfig
	scenarios       map[string]*engine.ScenarioConfig
	mu              sync.RWMutex
}

// NewManager creates a scenario manager rooted at configDir.
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		scenarios: make(map[string]*engine.ScenarioConfig),
	}

	if err := m.loadDefaultScenario(); err != nil {
		return nil, fmt.Errorf("failed to load default scenario: %w", err)
	}

	return m, nil
}

// loadDefaultScenario prefers a shipped default.json and falls back to the
// engine's built-in scenario.
func (m *Manager) loadDefaultScenario() error {
	scenario, err := m.LoadScenario("default")
	if err != nil {
		if errors.Is(err, ErrScenarioNotFound) {
			m.defaultScenario = engine.DefaultScenario()
			return nil
		}
		return err
	}

	m.defaultScenario = scenario
	return nil
}

// LoadScenario loads a scenario by name, consulting the cache first.
func (m *Manager) LoadScenario(name string) (*engine.ScenarioConfig, error) {
	m.mu.RLock()
	if scenario, exists := m.scenarios[name]; exists {
		m.mu.RUnlock()
		return scenario, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if scenario, exists := m.scenarios[name]; exists {
		return scenario, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario engine.ScenarioConfig
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := engine.ValidateScenarioConfig(&scenario); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	m.scenarios[name] = &scenario
	return &scenario, nil
}

// GetDefault returns the default scenario.
func (m *Manager) GetDefault() *engine.ScenarioConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// ListScenarios returns the names of every scenario file in the config
// directory, sorted alphabetically.
func (m *Manager) ListScenarios() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(m.configDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan config directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(file), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
