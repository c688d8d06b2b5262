package models

import (
	"errors"
	"testing"
	"time"
)

// ============================================================================
// Error Tests
// ============================================================================

func TestErrors_Unique(t *testing.T) {
	errs := []error{
		ErrNotFound,
		ErrIndexOutOfRange,
		ErrInvariantViolation,
		ErrStaleUpdate,
		ErrVersionConflict,
		ErrAlreadyFirstStage,
		ErrAlreadyLastStage,
	}

	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

// ============================================================================
// Deal Tests
// ============================================================================

func validDeal() *Deal {
	return &Deal{
		ID:          "d1",
		Title:       "Website redesign",
		Company:     "TechCorp Solutions",
		ContactName: "Ada Park",
		Value:       1000,
		Stage:       StageQualification,
		Probability: 40,
		Priority:    PriorityHigh,
	}
}

func TestDeal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Deal)
		wantErr error
	}{
		{"valid", func(d *Deal) {}, nil},
		{"empty title", func(d *Deal) { d.Title = "   " }, ErrEmptyTitle},
		{"negative value", func(d *Deal) { d.Value = -1 }, ErrNegativeValue},
		{"probability above 100", func(d *Deal) { d.Probability = 101 }, ErrInvalidProbability},
		{"probability below 0", func(d *Deal) { d.Probability = -5 }, ErrInvalidProbability},
		{"unknown priority", func(d *Deal) { d.Priority = "urgent" }, ErrInvalidPriority},
		{"zero value is allowed", func(d *Deal) { d.Value = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDeal()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDeal_CloneIsIndependent(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	d := validDeal()
	d.DueDate = &due
	d.Tags = []string{"enterprise"}
	d.CustomFields = map[string]string{"industry": "saas"}

	clone := d.Clone()
	clone.Tags[0] = "smb"
	clone.CustomFields["industry"] = "retail"
	*clone.DueDate = due.AddDate(0, 1, 0)

	if d.Tags[0] != "enterprise" {
		t.Errorf("Expected original tags untouched, got %v", d.Tags)
	}
	if d.CustomFields["industry"] != "saas" {
		t.Errorf("Expected original custom fields untouched, got %v", d.CustomFields)
	}
	if !d.DueDate.Equal(due) {
		t.Errorf("Expected original due date untouched, got %v", d.DueDate)
	}
}

func TestDealPatch_Apply(t *testing.T) {
	d := validDeal()
	d.CustomFields = map[string]string{"industry": "saas", "region": "emea"}

	title := "Website redesign v2"
	prob := 75
	fav := true
	tags := []string{"hot"}
	DealPatch{
		Title:        &title,
		Probability:  &prob,
		Favorite:     &fav,
		Tags:         &tags,
		CustomFields: map[string]string{"region": "", "score": "high"},
	}.Apply(d)

	if d.Title != title {
		t.Errorf("Expected title %q, got %q", title, d.Title)
	}
	if d.Probability != 75 {
		t.Errorf("Expected probability 75, got %d", d.Probability)
	}
	if !d.Favorite {
		t.Error("Expected favorite to be set")
	}
	if len(d.Tags) != 1 || d.Tags[0] != "hot" {
		t.Errorf("Expected tags [hot], got %v", d.Tags)
	}
	if _, ok := d.CustomFields["region"]; ok {
		t.Error("Expected empty value to delete custom field 'region'")
	}
	if d.CustomFields["industry"] != "saas" || d.CustomFields["score"] != "high" {
		t.Errorf("Unexpected custom fields: %v", d.CustomFields)
	}
	if d.Company != "TechCorp Solutions" {
		t.Errorf("Expected untouched company, got %q", d.Company)
	}
}

func TestDealPatch_IsEmpty(t *testing.T) {
	if !(DealPatch{}).IsEmpty() {
		t.Error("Expected zero patch to be empty")
	}
	fav := false
	if (DealPatch{Favorite: &fav}).IsEmpty() {
		t.Error("Expected patch with favorite to be non-empty")
	}
}

func TestDealPatch_ClearDueDate(t *testing.T) {
	due := time.Now()
	d := validDeal()
	d.DueDate = &due

	DealPatch{ClearDueDate: true}.Apply(d)

	if d.DueDate != nil {
		t.Errorf("Expected due date cleared, got %v", d.DueDate)
	}
}

// ============================================================================
// Priority Tests
// ============================================================================

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"low", PriorityLow, false},
		{"HIGH", PriorityHigh, false},
		{" Medium ", PriorityMedium, false},
		{"critical", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Column Tests
// ============================================================================

func TestColumn_IndexOfAndClone(t *testing.T) {
	c := &Column{Stage: StageProposal, DealIDs: []string{"a", "b", "c"}}

	if c.IndexOf("b") != 1 {
		t.Errorf("Expected index 1, got %d", c.IndexOf("b"))
	}
	if c.IndexOf("z") != -1 {
		t.Errorf("Expected -1 for missing id, got %d", c.IndexOf("z"))
	}

	clone := c.Clone()
	clone.DealIDs[0] = "x"
	if c.DealIDs[0] != "a" {
		t.Error("Expected clone to not share the id slice")
	}
}
