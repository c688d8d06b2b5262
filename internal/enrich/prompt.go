package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thenoetrevino/dealboard/internal/models"
)

const systemPrompt = `You are a sales operations assistant. Given a CRM deal, estimate the
probability (0-100) that it closes as won and suggest short custom fields
(for example "segment", "next_step", "risk"). Reply with a single JSON object:
{"probability": <int>, "custom_fields": {"<name>": "<value>"}, "confidence": <0..1>}`

// buildPrompt describes the deal for the model
func buildPrompt(d *models.Deal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	if d.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", d.Company)
	}
	if d.ContactName != "" {
		fmt.Fprintf(&b, "Contact: %s\n", d.ContactName)
	}
	fmt.Fprintf(&b, "Value: %.2f\n", d.Value)
	fmt.Fprintf(&b, "Stage: %s\n", d.Stage)
	fmt.Fprintf(&b, "Current probability: %d\n", d.Probability)
	fmt.Fprintf(&b, "Priority: %s\n", d.Priority)
	if d.DueDate != nil {
		fmt.Fprintf(&b, "Due: %s\n", d.DueDate.Format("2006-01-02"))
	}
	if len(d.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(d.Tags, ", "))
	}
	return b.String()
}

// parseResult decodes a model reply, tolerating markdown code fences around the JSON
func parseResult(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var r Result
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return &r, nil
}
