// Package config loads the dealboard configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Environment variables read on top of the config file
const (
	EnvThemeFile    = "DEALBOARD_THEME_FILE"
	EnvOpenAIAPIKey = "DEALBOARD_OPENAI_API_KEY"
	EnvGeminiAPIKey = "DEALBOARD_GEMINI_API_KEY"
	EnvRedisURL     = "DEALBOARD_REDIS_URL"
)

// Config represents the application configuration
type Config struct {
	Pipeline    PipelineConfig   `yaml:"pipeline"`
	Storage     StorageConfig    `yaml:"storage"`
	Daemon      DaemonConfig     `yaml:"daemon"`
	Enrichment  EnrichmentConfig `yaml:"enrichment"`
	ColorScheme ColorScheme      `yaml:"theme"`
}

// StageConfig is one configured pipeline column
type StageConfig struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Color string `yaml:"color"`
}

// PipelineConfig lists the stages in board order and names the terminal ones
type PipelineConfig struct {
	Stages    []StageConfig `yaml:"stages"`
	WonStage  string        `yaml:"won_stage"`
	LostStage string        `yaml:"lost_stage"`
}

// StorageConfig selects where the board snapshot lives
type StorageConfig struct {
	Backend  string `yaml:"backend"` // sqlite or redis
	Path     string `yaml:"path"`    // sqlite database file
	RedisURL string `yaml:"redis_url"`
	Board    string `yaml:"board"` // redis key namespace
}

// DaemonConfig configures the event daemon connection
type DaemonConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SocketPath string `yaml:"socket_path"`
}

// EnrichmentConfig configures AI deal enrichment
type EnrichmentConfig struct {
	Provider     string        `yaml:"provider"` // static, openai or gemini
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	Concurrency  int           `yaml:"concurrency"`
	Timeout      time.Duration `yaml:"timeout"`
	OpenAIAPIKey string        `yaml:"-"`
	GeminiAPIKey string        `yaml:"-"`
}

// APIKey returns the key for the configured provider
func (e EnrichmentConfig) APIKey() string {
	switch e.Provider {
	case "openai":
		return e.OpenAIAPIKey
	case "gemini":
		return e.GeminiAPIKey
	}
	return ""
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// loadThemeFile loads and merges theme from DEALBOARD_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv(EnvThemeFile)
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		config := Default()
		loadThemeFile(config)
		config.applyEnv()
		return config, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	loadThemeFile(&config)
	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(configPath)
}

// SaveFile writes the config as YAML to path, creating parent directories
func (c *Config) SaveFile(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o644)
}

// Validate checks the pipeline and storage settings
func (c *Config) Validate() error {
	if _, err := c.StageSet(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case StorageSQLite:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (must be: sqlite, redis)", c.Storage.Backend)
	}
	return nil
}

// StageSet builds the board stage set from the pipeline section
func (c *Config) StageSet() (*board.StageSet, error) {
	stages := make([]models.Stage, len(c.Pipeline.Stages))
	for i, s := range c.Pipeline.Stages {
		stages[i] = models.Stage{ID: models.StageID(s.ID), Title: s.Title, Color: s.Color}
	}
	return board.NewStageSet(stages,
		models.StageID(c.Pipeline.WonStage),
		models.StageID(c.Pipeline.LostStage))
}

// Path returns the location Load reads the config from
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "dealboard", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "dealboard", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if len(c.Pipeline.Stages) == 0 {
		for _, s := range models.DefaultStages() {
			c.Pipeline.Stages = append(c.Pipeline.Stages, StageConfig{
				ID:    string(s.ID),
				Title: s.Title,
				Color: s.Color,
			})
		}
		if c.Pipeline.WonStage == "" {
			c.Pipeline.WonStage = string(models.StageClosedWon)
		}
		if c.Pipeline.LostStage == "" {
			c.Pipeline.LostStage = string(models.StageClosedLost)
		}
	}
	for i := range c.Pipeline.Stages {
		if c.Pipeline.Stages[i].Title == "" {
			c.Pipeline.Stages[i].Title = c.Pipeline.Stages[i].ID
		}
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageSQLite
	}
	if c.Storage.Board == "" {
		c.Storage.Board = "default"
	}

	if c.Daemon.SocketPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Daemon.SocketPath = filepath.Join(home, ".dealboard", "dealboard.sock")
		}
	}

	if c.Enrichment.Provider == "" {
		c.Enrichment.Provider = "static"
	}
	if c.Enrichment.Concurrency <= 0 {
		c.Enrichment.Concurrency = 4
	}
	if c.Enrichment.Timeout <= 0 {
		c.Enrichment.Timeout = 30 * time.Second
	}

	c.ColorScheme.ApplyDefaults()
}

// applyEnv reads secrets and overrides from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		c.Enrichment.OpenAIAPIKey = v
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.Enrichment.GeminiAPIKey = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Storage.Backend = StorageRedis
		c.Storage.RedisURL = v
	}
}
