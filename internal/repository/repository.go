package repository

import (
	"alcyxob/fitness-tracker/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("version conflict") // Document changed since it was read
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner runs fn inside a storage transaction. Writes made through ctx inside
// fn are committed together or not at all.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository is the user directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ExerciseFinder resolves catalog exercises by id. It is all the workout core needs.
type ExerciseFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
}

// ExerciseFilter narrows catalog listings. Zero values mean "any".
type ExerciseFilter struct {
	Category   domain.ExerciseCategory
	ActiveOnly bool
}

// ExerciseRepository defines the interface for the shared exercise catalog.
type ExerciseRepository interface {
	ExerciseFinder
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository persists workout aggregates. Every lookup is scoped to the
// owning user: a workout owned by someone else is reported as ErrNotFound.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error)
	GetByEntryID(ctx context.Context, entryID, userID primitive.ObjectID) (*domain.Workout, error)
	GetBySetID(ctx context.Context, setID, userID primitive.ObjectID) (*domain.Workout, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]domain.Workout, int64, error)
	// Update replaces the stored aggregate if its version still equals workout.Version,
	// then increments workout.Version. A stale version yields ErrConflict, a
	// workout that no longer exists ErrNotFound.
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetLatestByEntryID(ctx context.Context, entryID primitive.ObjectID) (*domain.Upload, error)
	ListByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Upload, error)
	DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (int64, error)
}
