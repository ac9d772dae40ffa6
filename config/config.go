// Package config loads the editor's configuration from a YAML, TOML or JSON
// file, a .env file and the environment, in increasing priority.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvEndpoint   = "BLOG_AI_ENDPOINT"
	EnvAPIKey     = "BLOG_AI_LLM_API_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvServerAddr = "BLOG_AI_SERVER_ADDR"
)

type Config struct {
	ServerAddr string          `json:"server_addr" yaml:"server_addr" toml:"server_addr"`
	Log        LogConfig       `json:"log" yaml:"log" toml:"log"`
	LLM        LLMConfig       `json:"llm" yaml:"llm" toml:"llm"`
	Assistant  AssistantConfig `json:"assistant" yaml:"assistant" toml:"assistant"`
	Store      StoreConfig     `json:"store" yaml:"store" toml:"store"`
	RateLimit  RateLimitConfig `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
	File  string `json:"file" yaml:"file" toml:"file"`
	JSON  bool   `json:"json" yaml:"json" toml:"json"`
}

// LLMConfig configures the model behind the local transformation endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider" toml:"provider"`
	Model    string `json:"model" yaml:"model" toml:"model"`
	APIKey   string `json:"api_key" yaml:"api_key" toml:"api_key"`
	BaseURL  string `json:"base_url" yaml:"base_url" toml:"base_url"`
}

// AssistantConfig configures the editor side of the AI toolbar.
type AssistantConfig struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Audience       string `json:"audience" yaml:"audience" toml:"audience"`
	Language       string `json:"language" yaml:"language" toml:"language"`
}

// Timeout is the per-call limit as a duration.
func (a AssistantConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver" toml:"driver"`
	Dir    string `json:"dir" yaml:"dir" toml:"dir"`
	DSN    string `json:"dsn" yaml:"dsn" toml:"dsn"`
}

type RateLimitConfig struct {
	RPS   float64 `json:"rps" yaml:"rps" toml:"rps"`
	Burst int     `json:"burst" yaml:"burst" toml:"burst"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerAddr: ":8080",
		Log:        LogConfig{Level: "info"},
		LLM:        LLMConfig{Provider: "mock"},
		Assistant: AssistantConfig{
			Endpoint:       "http://localhost:8080/api/ai/transform",
			TimeoutSeconds: 60,
			Audience:       "empleats-publics",
			Language:       "ca",
		},
		Store:     StoreConfig{Driver: "file", Dir: "data/posts"},
		RateLimit: RateLimitConfig{RPS: 2, Burst: 4},
	}
}

// Load reads the config file at path over the defaults. A missing file is not
// an error. envFiles are loaded into the environment first (".env" when none
// are given); variables already set win.
func Load(path string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Assistant.Endpoint = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		c.ServerAddr = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.LLM.APIKey = v
	} else if v := os.Getenv(EnvOpenAIKey); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
}

// Validate checks the values other packages rely on.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "mock":
	case "deepseek":
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %q not supported", c.LLM.Provider)
	}

	switch c.Store.Driver {
	case "memory":
	case "file":
		if c.Store.Dir == "" {
			return errors.New("store driver file requires store.dir")
		}
	case "sqlite":
		if c.Store.DSN == "" {
			return errors.New("store driver sqlite requires store.dsn")
		}
	default:
		return fmt.Errorf("store driver %q not supported", c.Store.Driver)
	}

	if c.Assistant.Endpoint == "" {
		return errors.New("assistant.endpoint is required")
	}
	if c.Assistant.TimeoutSeconds <= 0 {
		return errors.New("assistant.timeout_seconds must be positive")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	return nil
}
