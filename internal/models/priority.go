package models

import (
	"fmt"
	"strings"
)

// Priority is the urgency of a deal
type Priority string

// Priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned to deals created without a priority
const DefaultPriority = PriorityMedium

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority maps a case-insensitive priority name to its Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w '%s' (must be: low, medium, high)", ErrInvalidPriority, s)
	}
	return p, nil
}
