// Package config loads the ambient configuration cmd/agentcore resolves
// before driving a turn: which providers are configured, which agents are
// declared, and where the conversation database lives. YAML is the primary
// format, with a JSON5 fallback for .json/.json5 files, and $VAR / ${VAR}
// references are expanded against the process environment before parsing so
// credentials never need to be written to disk in plain config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// ProviderConfig declares one vendor binding.
type ProviderConfig struct {
	ID      string `yaml:"id" json:"id"`
	Dialect string `yaml:"dialect" json:"dialect"`
	BaseURL string `yaml:"base_url" json:"base_url"`

	// APIKeyEnv names the environment variable holding the API key (e.g.
	// "ANTHROPIC_API_KEY"); APIKey is the literal value after $-expansion.
	// A non-empty APIKey takes precedence; APIKeyEnv is read only when
	// APIKey is empty.
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`
	APIKey    string `yaml:"api_key" json:"api_key"`

	Models []string `yaml:"models" json:"models"`
}

// AgentConfig declares one bound agent.
type AgentConfig struct {
	ID        string   `yaml:"id" json:"id"`
	ModelID   string   `yaml:"model_id" json:"model_id"`
	System    string   `yaml:"system" json:"system"`
	Tools     []string `yaml:"tools" json:"tools"`
	ToolOrder []string `yaml:"tool_order" json:"tool_order"`

	MaxRequestsPerTurn     int `yaml:"max_requests_per_turn" json:"max_requests_per_turn"`
	MaxToolFailurePerTurn  int `yaml:"max_tool_failure_per_turn" json:"max_tool_failure_per_turn"`
	CompactThresholdTokens int `yaml:"compact_threshold_tokens" json:"compact_threshold_tokens"`
}

// Config is the top-level document cmd/agentcore loads.
type Config struct {
	// DatabasePath is where the SQLite conversation database lives; see
	// internal/store.
	DatabasePath string `yaml:"database_path" json:"database_path"`
	// Workspace bounds the filesystem tools (internal/tools).
	Workspace string `yaml:"workspace" json:"workspace"`

	Providers []ProviderConfig `yaml:"providers" json:"providers"`
	Agents    []AgentConfig    `yaml:"agents" json:"agents"`

	RetryStatusCodes []int `yaml:"retry_status_codes" json:"retry_status_codes"`
}

// Load reads path (YAML by default; .json/.json5 parsed via JSON5),
// expanding $VAR / ${VAR} references against the environment first, then
// resolves each provider's APIKeyEnv into APIKey.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := parse(path, []byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.APIKey == "" && p.APIKeyEnv != "" {
			p.APIKey = os.Getenv(p.APIKeyEnv)
		}
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath()
	}
	return &cfg, nil
}

func parse(pathHint string, data []byte, out *Config) error {
	switch strings.ToLower(filepath.Ext(pathHint)) {
	case ".json", ".json5":
		return json5.Unmarshal(data, out)
	default:
		return yaml.Unmarshal(data, out)
	}
}

// DefaultConfigPath returns ~/.agentcore/config.yaml, falling back to a
// relative path if the home directory can't be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "agentcore.yaml"
	}
	return filepath.Join(home, ".agentcore", "config.yaml")
}

// DefaultDatabasePath returns ~/.agentcore/agentcore.db, falling back to a
// relative path if the home directory can't be resolved.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "agentcore.db"
	}
	return filepath.Join(home, ".agentcore", "agentcore.db")
}

// FindAgent returns the agent declared with the given id.
func (c *Config) FindAgent(id string) (AgentConfig, bool) {
	for _, a := range c.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return AgentConfig{}, false
}

// FindProvider returns the provider declared with the given id.
func (c *Config) FindProvider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
