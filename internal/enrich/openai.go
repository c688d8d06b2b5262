package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAIConfig configures the OpenAI chat completions provider
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default https://api.openai.com/v1
	Model   string // default gpt-4o-mini
	Timeout time.Duration
}

// OpenAIProvider enriches deals through the chat completions API
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

// NewOpenAIProvider creates the provider, filling in defaults
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: 3,
		backoff:    time.Second,
		now:        time.Now,
	}
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var errRateLimited = errors.New("rate limit exceeded (429)")

// Enrich sends the deal to the model and parses its JSON reply
func (p *OpenAIProvider) Enrich(ctx context.Context, req Request) (*Result, error) {
	if p.apiKey == "" {
		return nil, errors.New("openai: API key not configured")
	}

	body := openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req.Deal)},
		},
		Temperature: 0.1,
	}
	body.ResponseFormat.Type = "json_object"
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to marshal request: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			wait := p.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := p.complete(ctx, payload)
		if errors.Is(err, errRateLimited) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		result, err := parseResult(text)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		result.Provider = p.Name()
		result.Timestamp = p.now()
		slog.Debug("openai enrichment complete", "deal_id", req.DealID, "elapsed", time.Since(start))
		return result, nil
	}
	return nil, fmt.Errorf("openai: max retries exceeded: %w", lastErr)
}

func (p *OpenAIProvider) complete(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("openai: failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai: API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai: no completion returned")
	}
	return parsed.Choices[0].Message.Content, nil
}
