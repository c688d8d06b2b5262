package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// DateLayout is the accepted --due format
const DateLayout = "2006-01-02"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateColorHex validates that a color string is in valid hex format #RRGGBB
func ValidateColorHex(color string) error {
	if !hexColor.MatchString(color) {
		return fmt.Errorf("color must be in hex format #RRGGBB (e.g., #FF0000), got: %s", color)
	}
	return nil
}

// ParsePriority maps a priority flag value to a priority; empty means medium
func ParsePriority(priority string) (models.Priority, error) {
	if strings.TrimSpace(priority) == "" {
		return models.PriorityMedium, nil
	}
	return models.ParsePriority(strings.ToLower(strings.TrimSpace(priority)))
}

// ParseStage resolves a stage flag value against the configured stages.
// Matching is case-insensitive on the id and then on the title.
func ParseStage(stages *board.StageSet, value string) (models.StageID, error) {
	value = strings.TrimSpace(value)
	for _, s := range stages.Stages() {
		if strings.EqualFold(string(s.ID), value) {
			return s.ID, nil
		}
	}
	for _, s := range stages.Stages() {
		if strings.EqualFold(s.Title, value) {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("stage '%s': %w", value, models.ErrNotFound)
}

// StageList renders the stage ids for suggestions
func StageList(stages *board.StageSet) string {
	ids := stages.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// ParseDueDate parses a --due value (YYYY-MM-DD); empty returns nil
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	due, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid due date '%s' (expected YYYY-MM-DD)", value)
	}
	return &due, nil
}

// ParseFields parses key=value pairs from --field flags
func ParseFields(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid field '%s' (expected key=value)", pair)
		}
		fields[strings.TrimSpace(key)] = value
	}
	return fields, nil
}

// FormatMoney renders a deal value like $12,500
func FormatMoney(value float64) string {
	whole := int64(value + 0.5)
	digits := fmt.Sprintf("%d", whole)
	if whole < 0 {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if whole < 0 {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
