package models

import "errors"

// Custom errors
var (
	// ErrMissingRating means no rating exists for the season or the prior
	// season; the projector cannot run and the caller should skip or backfill.
	ErrMissingRating = errors.New("no team rating for season or prior season")
	// ErrMissingLine means no snapshot exists at the required label; the
	// affected game is skipped, not fatal.
	ErrMissingLine = errors.New("no line snapshot at required label")
	// ErrGameNotFinal means grading was attempted before the game concluded;
	// the caller should retry later.
	ErrGameNotFinal = errors.New("game is not final")
	// ErrAlreadyGraded marks an idempotent skip, not a failure.
	ErrAlreadyGraded = errors.New("bet already graded")
	// ErrInvalidConfig is fatal and surfaced before any computation starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// ValidationError carries a machine-readable code alongside the message
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a code
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
