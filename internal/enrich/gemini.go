package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini provider
type GeminiConfig struct {
	APIKey  string
	BaseURL string // optional endpoint override
	Model   string // default gemini-2.5-flash
	Timeout time.Duration
}

// GeminiProvider enriches deals through the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
	now    func() time.Time
}

// NewGeminiProvider creates a Gemini API client
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &GeminiProvider{client: client, model: cfg.Model, now: time.Now}, nil
}

func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Enrich asks Gemini for a JSON answer about the deal
func (p *GeminiProvider) Enrich(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		genai.Text(buildPrompt(req.Deal)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}
	result, err := parseResult(text)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	result.Provider = p.Name()
	result.Timestamp = p.now()
	slog.Debug("gemini enrichment complete", "deal_id", req.DealID, "elapsed", time.Since(start))
	return result, nil
}
