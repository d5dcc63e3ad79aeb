package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pkt.systems/soapgen/internal/llm"
)

// Config carries all runtime settings. It is resolved once at process start
// (file, then environment, then flags) and passed in explicitly; nothing in
// the pipeline reads the environment at call time.
type Config struct {
	// OllamaURL is the base URL of the Ollama-compatible generator service.
	OllamaURL string `yaml:"ollama_url"`
	// Model is the generator model name.
	Model string `yaml:"model"`
	// TimeoutSeconds bounds one external generation call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// SessionPath, when set, enables the bbolt-backed session store.
	SessionPath string `yaml:"session_path"`
	// Listen is the HTTP API listen address (serve command).
	Listen string `yaml:"listen"`
	// AllowedOrigins lists CORS origins for the HTTP API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig mirrors the generator service's local defaults.
func DefaultConfig() Config {
	return Config{
		OllamaURL:      llm.DefaultBaseURL,
		Model:          llm.DefaultModel,
		TimeoutSeconds: 120,
		Listen:         ":8080",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost"},
	}
}

// Timeout returns the generation timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig builds a Config from defaults, an optional YAML file, and the
// OLLAMA_BASE_URL / LLM_MODEL environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg, nil
}
