// Package enrich asks an AI provider for deal insights (win probability and
// custom fields) and applies them to the board without overwriting newer edits.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// Provider names accepted by NewProvider
const (
	ProviderStatic = "static"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrInvalidResult indicates a provider answer that cannot be applied
var ErrInvalidResult = errors.New("invalid enrichment result")

// Request is what a provider gets to look at
type Request struct {
	DealID string
	Deal   *models.Deal
}

// Result is a provider's suggestion. Nil/empty fields leave the deal unchanged.
type Result struct {
	Probability  *int              `json:"probability,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	Confidence   float64           `json:"confidence"`
	Provider     string            `json:"provider"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Validate checks the result is applicable
func (r *Result) Validate() error {
	if r.Probability != nil && (*r.Probability < 0 || *r.Probability > 100) {
		return fmt.Errorf("%w: probability %d", ErrInvalidResult, *r.Probability)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v", ErrInvalidResult, r.Confidence)
	}
	for k := range r.CustomFields {
		if k == "" {
			return fmt.Errorf("%w: empty custom field name", ErrInvalidResult)
		}
	}
	return nil
}

// Patch converts the result into a deal update
func (r *Result) Patch() models.DealPatch {
	patch := models.DealPatch{Probability: r.Probability}
	if len(r.CustomFields) > 0 {
		patch.CustomFields = make(map[string]string, len(r.CustomFields))
		for k, v := range r.CustomFields {
			// An empty value would delete the field; providers only add
			if v != "" {
				patch.CustomFields[k] = v
			}
		}
	}
	return patch
}

// Provider produces enrichment results
type Provider interface {
	Name() string
	Enrich(ctx context.Context, req Request) (*Result, error)
}

// Config selects and configures a provider
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewProvider builds the configured provider. A remote provider without an
// API key falls back to the static provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderStatic:
		return NewStaticProvider(), nil
	case ProviderOpenAI, ProviderGemini:
		if cfg.APIKey == "" {
			slog.Warn("no API key configured, using static enrichment", "provider", cfg.Provider)
			return NewStaticProvider(), nil
		}
	default:
		return nil, fmt.Errorf("unknown enrichment provider %q (must be: static, openai, gemini)", cfg.Provider)
	}

	if cfg.Provider == ProviderOpenAI {
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	}
	gemini, err := NewGeminiProvider(ctx, GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return gemini, nil
}
