// Package config holds all configuration for the bill context resolution
// subsystem. Threshold and cap values are passed explicitly into each
// resolver rather than read from ambient state, so resolvers stay
// independently testable with different configurations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all subsystem configuration.
type Config struct {
	// Resolution knobs consumed by the resolver chain
	Resolution ResolutionConfig `yaml:"resolution"`

	// LLM completion provider
	LLM LLMConfig `yaml:"llm"`

	// Embedding provider
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Knowledge store
	Store StoreConfig `yaml:"store"`

	// Logging (mirrored by the logging package's own JSON config)
	Logging LoggingConfig `yaml:"logging"`
}

// ResolutionConfig carries the recognized resolution options.
type ResolutionConfig struct {
	// DistanceThreshold is the maximum cosine distance accepted as a
	// candidate (lower distance = more similar).
	DistanceThreshold float64 `yaml:"distance_threshold"`

	// CandidateLimit caps results per vector query.
	CandidateLimit int `yaml:"candidate_limit"`

	// ActiveCongress scopes semantic bill search to the current session.
	// Numeric lookup and document search are deliberately not scoped by it.
	ActiveCongress string `yaml:"active_congress"`

	// AgentStepCap bounds the agentic refinement loop.
	AgentStepCap int `yaml:"agent_step_cap"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // "openai" or any OpenAI-compatible endpoint
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // "genai" or "ollama"
	GenAIAPIKey    string `yaml:"genai_api_key"`
	GenAIModel     string `yaml:"genai_model"`
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
}

// StoreConfig configures the knowledge store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	DebugMode bool   `yaml:"debug_mode"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Resolution: ResolutionConfig{
			DistanceThreshold: 0.6,
			CandidateLimit:    5,
			ActiveCongress:    "119",
			AgentStepCap:      10,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  120 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:       "genai",
			GenAIModel:     "gemini-embedding-001",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(".dogeai", "knowledge.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
	}
	if model := os.Getenv("DOGEAI_LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv("DOGEAI_LLM_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if path := os.Getenv("DOGEAI_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if congress := os.Getenv("DOGEAI_CONGRESS"); congress != "" {
		c.Resolution.ActiveCongress = congress
	}
}

// Validate checks for obviously broken settings.
func (c *Config) Validate() error {
	if c.Resolution.DistanceThreshold <= 0 || c.Resolution.DistanceThreshold > 2 {
		return fmt.Errorf("distance_threshold must be in (0, 2], got %v", c.Resolution.DistanceThreshold)
	}
	if c.Resolution.CandidateLimit <= 0 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.Resolution.CandidateLimit)
	}
	if c.Resolution.AgentStepCap <= 0 {
		return fmt.Errorf("agent_step_cap must be positive, got %d", c.Resolution.AgentStepCap)
	}
	if c.Resolution.ActiveCongress == "" {
		return fmt.Errorf("active_congress is required")
	}
	return nil
}
