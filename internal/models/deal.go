package models

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// MaxTitleLength is the longest accepted deal title
const MaxTitleLength = 255

// Deal represents a sales opportunity on the board
type Deal struct {
	ID           string            `json:"id" yaml:"id"`
	Title        string            `json:"title" yaml:"title"`
	Company      string            `json:"company" yaml:"company"`
	ContactName  string            `json:"contact_name" yaml:"contact_name"`
	Value        float64           `json:"value" yaml:"value"`
	Stage        StageID           `json:"stage" yaml:"stage"`
	Probability  int               `json:"probability" yaml:"probability"` // 0-100
	Priority     Priority          `json:"priority" yaml:"priority"`
	DueDate      *time.Time        `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Favorite     bool              `json:"favorite" yaml:"favorite"`
	Tags         []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" yaml:"updated_at"`
}

// GetID returns the deal identifier (used by quiet CLI output)
func (d *Deal) GetID() string {
	return d.ID
}

// Clone returns a deep copy of the deal
func (d *Deal) Clone() *Deal {
	if d == nil {
		return nil
	}
	clone := *d
	if d.DueDate != nil {
		due := *d.DueDate
		clone.DueDate = &due
	}
	clone.Tags = append([]string(nil), d.Tags...)
	if d.CustomFields != nil {
		clone.CustomFields = maps.Clone(d.CustomFields)
	}
	return &clone
}

// Validate checks the field-level rules of a deal record.
// Stage membership is checked by the board, not here.
func (d *Deal) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if len(d.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if d.Value < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeValue, d.Value)
	}
	if d.Probability < 0 || d.Probability > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidProbability, d.Probability)
	}
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, d.Priority)
	}
	return nil
}

// DealPatch is a partial deal update.
// Pointer fields are optional - nil means don't update.
type DealPatch struct {
	Title        *string
	Company      *string
	ContactName  *string
	Value        *float64
	Stage        *StageID
	Probability  *int
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Favorite     *bool
	Tags         *[]string
	CustomFields map[string]string // merged key by key; an empty value deletes the key
}

// IsEmpty reports whether the patch changes nothing
func (p DealPatch) IsEmpty() bool {
	return p.Title == nil && p.Company == nil && p.ContactName == nil &&
		p.Value == nil && p.Stage == nil && p.Probability == nil &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Favorite == nil && p.Tags == nil && len(p.CustomFields) == 0
}

// Apply merges the patch into d. UpdatedAt is left to the caller.
func (p DealPatch) Apply(d *Deal) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Company != nil {
		d.Company = *p.Company
	}
	if p.ContactName != nil {
		d.ContactName = *p.ContactName
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Probability != nil {
		d.Probability = *p.Probability
	}
	if p.Priority != nil {
		d.Priority = *p.Priority
	}
	if p.ClearDueDate {
		d.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		d.DueDate = &due
	}
	if p.Favorite != nil {
		d.Favorite = *p.Favorite
	}
	if p.Tags != nil {
		d.Tags = append([]string(nil), (*p.Tags)...)
	}
	if len(p.CustomFields) > 0 {
		if d.CustomFields == nil {
			d.CustomFields = make(map[string]string, len(p.CustomFields))
		}
		for k, v := range p.CustomFields {
			if v == "" {
				delete(d.CustomFields, k)
				continue
			}
			d.CustomFields[k] = v
		}
	}
}
