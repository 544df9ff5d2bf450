package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/service"
)

var (
	ErrConfigNotFound = fmt.Errorf("configuration %w", service.ErrNotFound)
	ErrInvalidConfig  = fmt.Errorf("board %w", engine.ErrInvalidConfig)
)

// BuiltinName is the ID of the board compiled into the binary
const BuiltinName = "classic"

// extensions are tried in order when a config is named without one
var extensions = []string{".json", ".yaml", ".yml"}

//go:embed board.schema.json
var boardSchemaJSON []byte

const boardSchemaURL = "board.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func boardSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(boardSchemaURL, bytes.NewReader(boardSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(boardSchemaURL)
	})
	return schema, schemaErr
}

// Parse decodes a JSON or YAML board file, checks it against the board schema
// and then against the engine's playability rules
func Parse(filename string, data []byte) (*engine.GameConfig, error) {
	raw := data
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidConfig, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		raw = converted
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrInvalidConfig, err)
	}
	s, err := boardSchema()
	if err != nil {
		return nil, fmt.Errorf("compile board schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config, err := engine.ParseGameConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// LoadFile reads and validates one board file
func LoadFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// IsConfigFile reports whether a file name has a supported board extension
func IsConfigFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultName   string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a configuration manager over configDir. A missing
// directory leaves only the built-in classic board.
func NewManager(configDir, defaultName string) (*Manager, error) {
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", configDir)
	}
	if defaultName == "" {
		defaultName = BuiltinName
	}

	m := &Manager{
		configDir:   configDir,
		defaultName: defaultName,
		configs:     make(map[string]*engine.GameConfig),
	}
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	return m, nil
}

// LoadConfig loads a configuration by ID, with or without its file extension
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}
	m.configs[id] = config
	return config, nil
}

// readConfig finds the file for a name and parses it. The built-in board
// answers for its ID when no file shadows it.
func (m *Manager) readConfig(name string) (*engine.GameConfig, error) {
	candidates := []string{name}
	if !IsConfigFile(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, filename := range candidates {
		path := filepath.Join(m.configDir, filename)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return Parse(filename, data)
	}

	if configID(name) == BuiltinName {
		return engine.DefaultGameConfig(), nil
	}
	return nil, ErrConfigNotFound
}

// ListConfigs returns information about all available configurations, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !IsConfigFile(entry.Name()) {
			continue
		}
		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true
		configs = append(configs, configInfo(entry.Name(), id, config))
	}

	if !seen[BuiltinName] {
		config, _ := m.LoadConfig(BuiltinName)
		configs = append(configs, configInfo("", BuiltinName, config))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

func configInfo(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		Tiles:       len(config.Tiles),
		OuterSize:   config.Topology.OuterSize,
		InnerSize:   config.Topology.InnerSize,
		Stocks:      len(config.Stocks),
	}
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = configID(name)
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations so edited files are read again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the configured default, falling back to the built-in board
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(m.defaultName)
	if errors.Is(err, ErrConfigNotFound) {
		config, err = m.LoadConfig(BuiltinName)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

func configID(name string) string {
	if IsConfigFile(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.ToLower(strings.TrimSpace(name))
}
