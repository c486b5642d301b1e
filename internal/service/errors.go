package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"errors"
	"fmt"
)

// Error kinds. Every error a core operation returns wraps exactly one of these,
// except unexpected storage failures, which are passed through untouched.
var (
	// ErrNotFound covers both missing entities and entities owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the requested transition is not legal from the current status.
	ErrInvalidState = domain.ErrInvalidTransition
	// ErrValidation means the input was rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means another request changed the workout first; the caller may retry.
	ErrConflict = errors.New("workout was modified concurrently")
)

// Entity-specific errors, each wrapping a kind.
var (
	ErrWorkoutNotFound  = fmt.Errorf("workout %w", ErrNotFound)
	ErrTrackerNotFound  = fmt.Errorf("workout exercise %w", ErrNotFound)
	ErrSetNotFound      = fmt.Errorf("exercise set %w", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("exercise %w", ErrNotFound)
	ErrOwnerNotFound    = fmt.Errorf("owner %w", ErrNotFound)
	ErrUploadNotFound   = fmt.Errorf("upload %w", ErrNotFound)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapRepoError converts a repository lookup failure into the given not-found error.
func mapRepoError(err, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	}
	return err
}
