package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// ============================================================================
// Color Validation Tests
// ============================================================================

func TestValidateColorHex_Valid(t *testing.T) {
	tests := []string{
		"#FF0000", // Red
		"#00FF00", // Green
		"#0000FF", // Blue
		"#ff5733", // Lowercase (should work)
		"#AbCdEf", // Mixed case
	}

	for _, color := range tests {
		t.Run(color, func(t *testing.T) {
			if err := ValidateColorHex(color); err != nil {
				t.Errorf("Expected %s to be valid, got error: %v", color, err)
			}
		})
	}
}

func TestValidateColorHex_Invalid(t *testing.T) {
	tests := []struct {
		color       string
		description string
	}{
		{"FF0000", "missing hash"},
		{"#FFF", "short form"},
		{"#GGGGGG", "not hex"},
		{"#FF00000", "too long"},
		{"", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if err := ValidateColorHex(tt.color); err == nil {
				t.Errorf("Expected %q (%s) to be invalid", tt.color, tt.description)
			}
		})
	}
}

// ============================================================================
// Priority / Stage Parsing Tests
// ============================================================================

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input   string
		want    models.Priority
		wantErr bool
	}{
		{"", models.PriorityMedium, false},
		{"low", models.PriorityLow, false},
		{"HIGH", models.PriorityHigh, false},
		{" medium ", models.PriorityMedium, false},
		{"critical", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStage(t *testing.T) {
	stages := board.DefaultStageSet()

	tests := []struct {
		input string
		want  models.StageID
	}{
		{"proposal", models.StageProposal},
		{"PROPOSAL", models.StageProposal},
		{"closed-won", models.StageClosedWon},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStage(stages, tt.input)
			if err != nil {
				t.Fatalf("ParseStage(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	// Titles resolve too
	first := stages.Stages()[0]
	if got, err := ParseStage(stages, first.Title); err != nil || got != first.ID {
		t.Errorf("ParseStage(title %q) = %q, %v", first.Title, got, err)
	}

	if _, err := ParseStage(stages, "nowhere"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown stage, got %v", err)
	}
}

func TestStageList(t *testing.T) {
	got := StageList(board.DefaultStageSet())
	want := "discovery, qualification, proposal, negotiation, closed-won, closed-lost"
	if got != want {
		t.Errorf("StageList() = %q, want %q", got, want)
	}
}

// ============================================================================
// Due Date / Field Parsing Tests
// ============================================================================

func TestParseDueDate(t *testing.T) {
	due, err := ParseDueDate("2026-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", due)
	}

	if due, err := ParseDueDate(""); err != nil || due != nil {
		t.Errorf("empty value should give nil, got %v, %v", due, err)
	}
	if _, err := ParseDueDate("31/03/2026"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields([]string{"segment=enterprise", "source = referral", "note=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["segment"] != "enterprise" || fields["source"] != " referral" || fields["note"] != "a=b" {
		t.Errorf("unexpected fields: %v", fields)
	}

	if fields, err := ParseFields(nil); err != nil || fields != nil {
		t.Errorf("no pairs should give nil, got %v, %v", fields, err)
	}
	if _, err := ParseFields([]string{"novalue"}); err == nil {
		t.Error("expected error for pair without '='")
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[float64]string{
		0:         "$0",
		999:       "$999",
		1000:      "$1,000",
		12500.4:   "$12,500",
		1234567.5: "$1,234,568",
	}
	for in, want := range tests {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}
