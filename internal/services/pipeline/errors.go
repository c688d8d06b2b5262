package pipeline

import "errors"

// Movement-related errors
var (
	// ErrAlreadyTop indicates that the deal is already at the top of its column
	ErrAlreadyTop = errors.New("deal is already at the top of the column")

	// ErrAlreadyBottom indicates that the deal is already at the bottom of its column
	ErrAlreadyBottom = errors.New("deal is already at the bottom of the column")

	// ErrInvalidDealID indicates an empty deal id
	ErrInvalidDealID = errors.New("invalid deal ID")
)
