// Package config loads application configuration from an optional YAML file
// overlaid with environment variables. Secrets only ever come from the
// environment; a .env file is honored for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAddr           = "127.0.0.1:5001"
	DefaultRedirectURI    = "http://localhost:5001/callback"
	DefaultFrontendOrigin = "http://localhost:3000"
	DefaultVocabularyPath = "model/embeddings.txt"
	DefaultModelPath      = "model/moodPredictor.json"
)

// UpstreamConfig configures one external HTTP service.
type UpstreamConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the configured timeout, or zero for the client default.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSecs) * time.Second
}

// Config is the full application configuration.
type Config struct {
	Addr           string `yaml:"addr"`
	RedirectURI    string `yaml:"redirect_uri"`
	FrontendOrigin string `yaml:"frontend_origin"`

	VocabularyPath string `yaml:"vocabulary_path"`
	ModelPath      string `yaml:"model_path"`

	Transcription UpstreamConfig `yaml:"transcription"`
	Sentiment     UpstreamConfig `yaml:"sentiment"`

	// Environment-only values.
	SpotifyID     string `yaml:"-"`
	SpotifySecret string `yaml:"-"`
	OpenAIAPIKey  string `yaml:"-"`
	HFAPIToken    string `yaml:"-"`
	DatabaseURL   string `yaml:"-"`
}

// Load reads configuration from the given YAML path (missing file means
// defaults) and overlays environment variables. A .env file in the working
// directory is loaded first if present. Returns an error when required
// credentials are missing.
func Load(path string) (*Config, error) {
	// Missing .env is fine; it only exists in development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
			applyDefaults(cfg)
		}
	}

	cfg.SpotifyID = os.Getenv("SPOTIFY_ID")
	cfg.SpotifySecret = os.Getenv("SPOTIFY_SECRET")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.HFAPIToken = os.Getenv("HF_API_TOKEN")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if cfg.FrontendOrigin == "" {
		cfg.FrontendOrigin = DefaultFrontendOrigin
	}
	if cfg.VocabularyPath == "" {
		cfg.VocabularyPath = DefaultVocabularyPath
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
}

func (c *Config) validate() error {
	if c.SpotifyID == "" || c.SpotifySecret == "" {
		return fmt.Errorf("SPOTIFY_ID and SPOTIFY_SECRET must be set")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY must be set")
	}
	return nil
}
