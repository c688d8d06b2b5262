package models

import "errors"

// Board errors shared by the stores, the move engine and persistence
var (
	// ErrNotFound indicates a referenced deal or stage does not exist
	ErrNotFound = errors.New("not found")

	// ErrIndexOutOfRange indicates a position outside a column's bounds
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvariantViolation indicates the deal/column consistency rule would break
	// or has already been broken
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrStaleUpdate indicates a deal changed after an asynchronous update was issued
	ErrStaleUpdate = errors.New("stale update: deal changed since the request was issued")

	// ErrVersionConflict indicates a snapshot save lost a race with another writer
	ErrVersionConflict = errors.New("snapshot version conflict")
)

// Navigation errors for next/previous stage moves
var (
	// ErrAlreadyLastStage indicates the deal is already in the last stage
	ErrAlreadyLastStage = errors.New("deal is already in the last stage")

	// ErrAlreadyFirstStage indicates the deal is already in the first stage
	ErrAlreadyFirstStage = errors.New("deal is already in the first stage")
)

// Deal validation errors
var (
	ErrEmptyTitle         = errors.New("deal title cannot be empty")
	ErrTitleTooLong       = errors.New("deal title cannot exceed 255 characters")
	ErrNegativeValue      = errors.New("deal value cannot be negative")
	ErrInvalidProbability = errors.New("probability must be between 0 and 100")
	ErrInvalidPriority    = errors.New("invalid priority")
)
