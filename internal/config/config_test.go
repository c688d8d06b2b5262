package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	configDir := filepath.Join(dir, "dealboard")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return dir
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvRedisURL, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without config file failed: %v", err)
	}

	if len(cfg.Pipeline.Stages) != 6 {
		t.Errorf("default stages = %d, want 6", len(cfg.Pipeline.Stages))
	}
	if cfg.Pipeline.WonStage != string(models.StageClosedWon) {
		t.Errorf("won stage = %s, want %s", cfg.Pipeline.WonStage, models.StageClosedWon)
	}
	if cfg.Storage.Backend != StorageSQLite {
		t.Errorf("storage backend = %s, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Enrichment.Provider != "static" || cfg.Enrichment.Concurrency != 4 {
		t.Errorf("enrichment defaults = %+v", cfg.Enrichment)
	}
	if cfg.ColorScheme.Accent == "" {
		t.Error("Expected default accent color")
	}
}

func TestLoadConfigWithFile(t *testing.T) {
	dir := writeConfig(t, `pipeline:
  stages:
    - id: lead
      title: Lead
    - id: demo
    - id: won
    - id: lost
  won_stage: won
  lost_stage: lost
enrichment:
  provider: openai
  model: gpt-4o-mini
  timeout: 10s
  concurrency: 2
theme:
  preset: monochrome
  accent: "#FF0000"
`)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvOpenAIAPIKey, "sk-from-env")
	t.Setenv(EnvRedisURL, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	set, err := cfg.StageSet()
	if err != nil {
		t.Fatalf("StageSet() failed: %v", err)
	}
	if set.Len() != 4 || set.First() != "lead" || set.Won() != "won" || set.Lost() != "lost" {
		t.Errorf("unexpected stage set: %v", set.IDs())
	}
	if cfg.Pipeline.Stages[1].Title != "demo" {
		t.Errorf("missing title should default to id, got %q", cfg.Pipeline.Stages[1].Title)
	}
	if cfg.Enrichment.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Enrichment.Timeout)
	}
	if got := cfg.Enrichment.APIKey(); got != "sk-from-env" {
		t.Errorf("APIKey() = %q, want key from environment", got)
	}
	if cfg.ColorScheme.Accent != "#FF0000" {
		t.Errorf("accent = %s, want #FF0000", cfg.ColorScheme.Accent)
	}
	if cfg.ColorScheme.Normal != MonochromeColorScheme().Normal {
		t.Errorf("normal = %s, want monochrome preset value", cfg.ColorScheme.Normal)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "pipeline: [unterminated"},
		{"duplicate stage", "pipeline:\n  stages:\n    - id: a\n    - id: a\n"},
		{"unknown won stage", "pipeline:\n  stages:\n    - id: a\n  won_stage: b\n"},
		{"unknown backend", "storage:\n  backend: mongo\n"},
		{"redis without url", "storage:\n  backend: redis\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", writeConfig(t, tt.content))
			t.Setenv(EnvRedisURL, "")
			if _, err := Load(); err == nil {
				t.Error("expected Load() to fail")
			}
		})
	}
}

func TestRedisURLFromEnvironment(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Storage.Backend != StorageRedis || cfg.Storage.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("storage = %+v, want redis from environment", cfg.Storage)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvGeminiAPIKey, "")

	cfg := Default()
	cfg.Enrichment.Provider = "gemini"
	cfg.Enrichment.GeminiAPIKey = "secret"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Enrichment.Provider != "gemini" {
		t.Errorf("provider = %s, want gemini", loaded.Enrichment.Provider)
	}
	if loaded.Enrichment.GeminiAPIKey != "" {
		t.Error("API keys must not be written to the config file")
	}
}
