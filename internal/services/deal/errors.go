package deal

import "errors"

// Deal service errors
var (
	// Validation errors
	ErrInvalidDealID   = errors.New("invalid deal ID")
	ErrNothingToUpdate = errors.New("no fields to update")
	ErrEmptyFieldName  = errors.New("custom field name cannot be empty")
	ErrTooManyTags     = errors.New("a deal cannot have more than 20 tags")
	ErrEmptyImport     = errors.New("no deals to import")
)

// MaxTags is the most tags a deal can carry
const MaxTags = 20
