package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied to anything the file leaves out
const (
	DefaultRegion     = "jp"
	DefaultModel      = "gpt-5.2-chat-latest"
	DefaultEndpoint   = "https://api.openai.com/v1/chat/completions"
	DefaultHistoryTTL = 30 * time.Minute
)

// FileName is the config file looked up in the app directory
const FileName = "config.yaml"

// Engine is one OpenAI-compatible completion backend
type Engine struct {
	Name   string   `yaml:"name"`
	APIURL string   `yaml:"api_url"`
	APIKey string   `yaml:"api_key"`
	Models []string `yaml:"models"`
}

// AIConfig selects the completion backend
type AIConfig struct {
	Engines []Engine `yaml:"engines"`
	APIKey  string   `yaml:"api_key"`
	Model   string   `yaml:"model"`
}

// PollConfig overrides the poller's sleep intervals
type PollConfig struct {
	ActiveInterval     time.Duration `yaml:"active_interval"`
	IdleBackoff        time.Duration `yaml:"idle_backoff"`
	UnavailableBackoff time.Duration `yaml:"unavailable_backoff"`
}

// Config is the application configuration
type Config struct {
	LockfileDir   string        `yaml:"lockfile_dir"`
	Region        string        `yaml:"region"`
	CachePath     string        `yaml:"cache_path"`
	HistoryDBPath string        `yaml:"history_db_path"`
	DatabaseURL   string        `yaml:"database_url"`
	HistoryTTL    time.Duration `yaml:"history_ttl"`
	Poll          PollConfig    `yaml:"poll"`
	AI            AIConfig      `yaml:"ai"`

	// Legacy single-engine keys, folded into AI.Engines on load
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
}

// Load reads .env (when present) and the YAML file at path, then applies
// environment overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	for _, envPath := range []string{".env", filepath.Join(filepath.Dir(path), ".env")} {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf("Loaded .env from: %s", envPath)
			break
		}
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("No config file at %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := envValue("LOL_LOCKFILE_DIR"); v != "" {
		c.LockfileDir = v
	}
	if v := envValue("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := envValue("OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
}

// envValue reads a variable, dropping the quotes .env files tend to carry
func envValue(key string) string {
	return strings.Trim(os.Getenv(key), "\"")
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.HistoryTTL == 0 {
		c.HistoryTTL = DefaultHistoryTTL
	}

	if c.AI.APIKey == "" {
		c.AI.APIKey = c.OpenAIAPIKey
	}
	if c.AI.Model == "" {
		c.AI.Model = c.OpenAIModel
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultModel
	}
	if len(c.AI.Engines) == 0 {
		c.AI.Engines = []Engine{{
			Name:   "openai",
			APIURL: DefaultEndpoint,
			APIKey: c.AI.APIKey,
			Models: []string{c.AI.Model},
		}}
	}
	for i := range c.AI.Engines {
		e := &c.AI.Engines[i]
		if e.APIURL == "" {
			e.APIURL = DefaultEndpoint
		}
		if e.APIKey == "" {
			e.APIKey = c.AI.APIKey
		}
		if len(e.Models) == 0 {
			e.Models = []string{c.AI.Model}
		}
	}
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	if c.Poll.ActiveInterval < 0 || c.Poll.IdleBackoff < 0 || c.Poll.UnavailableBackoff < 0 {
		return fmt.Errorf("poll intervals cannot be negative")
	}
	for i, e := range c.AI.Engines {
		if e.Name == "" {
			return fmt.Errorf("engine %d must have a name", i)
		}
	}
	return nil
}

// Engine returns the engine named name, or the first one when name is empty
// or unknown
func (c *Config) Engine(name string) Engine {
	for _, e := range c.AI.Engines {
		if e.Name == name {
			return e
		}
	}
	return c.AI.Engines[0]
}

// Save writes the configuration back as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", path, err)
	}
	return nil
}
