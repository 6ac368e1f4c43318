// Package config loads CLI configuration from the OS config directory
// with environment-variable fallbacks for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	appDir     = "semantic-router"
	configFile = "config.yaml"
)

// Config is the CLI configuration.
type Config struct {
	// Encoder selects the embedding provider: "openai" or "gemini".
	Encoder string `yaml:"encoder,omitempty"`

	// Model overrides the provider's default embedding model.
	Model string `yaml:"model,omitempty"`

	// Dimensions overrides the provider's default vector dimensionality.
	Dimensions int `yaml:"dimensions,omitempty"`

	// OpenAIAPIKey authenticates the OpenAI encoder.
	// Falls back to $OPENAI_API_KEY.
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`

	// OpenAIBaseURL points the OpenAI encoder at a compatible provider.
	OpenAIBaseURL string `yaml:"openai_base_url,omitempty"`

	// GeminiAPIKey authenticates the Gemini encoder.
	// Falls back to $GEMINI_API_KEY.
	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"`

	// Pinecone configures the remote vector index.
	Pinecone PineconeConfig `yaml:"pinecone,omitempty"`

	// BadgerDir is the data directory for the local vector index.
	BadgerDir string `yaml:"badger_dir,omitempty"`
}

// PineconeConfig holds Pinecone settings.
type PineconeConfig struct {
	// APIKey falls back to $PINECONE_API_KEY.
	APIKey    string `yaml:"api_key,omitempty"`
	IndexName string `yaml:"index_name,omitempty"`
	Cloud     string `yaml:"cloud,omitempty"`
	Region    string `yaml:"region,omitempty"`
}

// Path returns the config file location.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve config dir: %w", err)
	}
	return filepath.Join(base, appDir, configFile), nil
}

// Load reads the config file if it exists and applies environment
// fallbacks. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{Encoder: "openai"}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file: defaults + env.
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.Encoder == "" {
			cfg.Encoder = "openai"
		}
	}

	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Pinecone.APIKey == "" {
		cfg.Pinecone.APIKey = os.Getenv("PINECONE_API_KEY")
	}
	return cfg, nil
}
