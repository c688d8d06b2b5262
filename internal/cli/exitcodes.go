package cli

import (
	"errors"

	"github.com/thenoetrevino/dealboard/internal/enrich"
	"github.com/thenoetrevino/dealboard/internal/models"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
	pipelineservice "github.com/thenoetrevino/dealboard/internal/services/pipeline"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneral indicates a general error occurred.
	// Use for: Storage errors, network errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitGeneral = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required arguments or invalid flag combinations.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Deal not found, stage not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Invalid import files, inconsistent stored boards, version conflicts.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid priority values, negative deal values, out-of-range probabilities,
	// or any case where input fails validation rules.
	ExitValidation = 5
)

// ExitError carries the process exit code of a failed command.
// The message has already been reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for err (ExitSuccess for nil)
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return classify(err).exit
}

type errorClass struct {
	code string // machine readable code for JSON output
	exit int
}

func classify(err error) errorClass {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return errorClass{"NOT_FOUND", ExitNotFound}
	case errors.Is(err, models.ErrEmptyTitle),
		errors.Is(err, models.ErrTitleTooLong),
		errors.Is(err, models.ErrNegativeValue),
		errors.Is(err, models.ErrInvalidProbability),
		errors.Is(err, models.ErrInvalidPriority),
		errors.Is(err, dealservice.ErrInvalidDealID),
		errors.Is(err, dealservice.ErrNothingToUpdate),
		errors.Is(err, dealservice.ErrEmptyFieldName),
		errors.Is(err, dealservice.ErrTooManyTags),
		errors.Is(err, dealservice.ErrEmptyImport),
		errors.Is(err, enrich.ErrInvalidResult):
		return errorClass{"VALIDATION_ERROR", ExitValidation}
	case errors.Is(err, models.ErrAlreadyFirstStage),
		errors.Is(err, models.ErrAlreadyLastStage),
		errors.Is(err, pipelineservice.ErrAlreadyTop),
		errors.Is(err, pipelineservice.ErrAlreadyBottom),
		errors.Is(err, pipelineservice.ErrInvalidDealID):
		return errorClass{"INVALID_MOVE", ExitValidation}
	case errors.Is(err, models.ErrInvariantViolation),
		errors.Is(err, models.ErrIndexOutOfRange),
		errors.Is(err, models.ErrVersionConflict),
		errors.Is(err, models.ErrStaleUpdate):
		return errorClass{"BOARD_CONFLICT", ExitDataErr}
	default:
		return errorClass{"ERROR", ExitGeneral}
	}
}

type suggestedError struct {
	err        error
	suggestion string
}

func (e *suggestedError) Error() string { return e.err.Error() }
func (e *suggestedError) Unwrap() error { return e.err }

// Suggest attaches a hint that Fail prints next to the error
func Suggest(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &suggestedError{err: err, suggestion: suggestion}
}

func suggestionFor(err error) string {
	var s *suggestedError
	if errors.As(err, &s) {
		return s.suggestion
	}
	return ""
}
