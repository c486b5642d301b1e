package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrExerciseNameTaken    = errors.New("an exercise with this name already exists")
)

// ExerciseInput holds the editable fields of a catalog exercise.
type ExerciseInput struct {
	Name           string
	Description    string
	Category       domain.ExerciseCategory
	Equipment      string
	Difficulty     string
	PrimaryMuscles []string
	Instructions   string
	Active         *bool // Defaults to true on create
}

// Invalidator drops cached copies of a catalog exercise.
type Invalidator interface {
	Invalidate(id primitive.ObjectID)
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, actorID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	finder       repository.ExerciseFinder
	cache        Invalidator
}

// NewExerciseService creates a new instance of exerciseService. Reads go
// through finder, normally a cache in front of exerciseRepo; writes evict
// the changed entry from it.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, finder repository.ExerciseFinder, cache Invalidator) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		finder:       finder,
		cache:        cache,
	}
}

func validateExerciseInput(in ExerciseInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("exercise name is required")
	}
	if !domain.ValidCategory(in.Category) {
		return validationError("unknown exercise category %q", in.Category)
	}
	return nil
}

// CreateExercise adds an exercise to the shared catalog.
func (s *exerciseService) CreateExercise(ctx context.Context, actorID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := validateExerciseInput(in); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		CreatedBy: actorID,
		Active:    true,
	}
	applyExerciseInput(exercise, in)

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.finder.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

// ListExercises returns catalog exercises matching the filter.
func (s *exerciseService) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	if filter.Category != "" && !domain.ValidCategory(filter.Category) {
		return nil, validationError("unknown exercise category %q", filter.Category)
	}
	return s.exerciseRepo.List(ctx, filter)
}

// UpdateExercise changes a catalog exercise. Only its creator or an admin may.
func (s *exerciseService) UpdateExercise(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := validateExerciseInput(in); err != nil {
		return nil, err
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound)
	}
	if existing.CreatedBy != actorID && actorRole != domain.RoleAdmin {
		return nil, ErrExerciseAccessDenied
	}

	applyExerciseInput(existing, in)
	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, mapRepoError(err, ErrExerciseNotFound)
	}
	s.cache.Invalidate(exerciseID)
	return existing, nil
}

// DeleteExercise removes a catalog exercise. Workouts already referencing it
// keep their entries.
func (s *exerciseService) DeleteExercise(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, exerciseID primitive.ObjectID) error {
	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return mapRepoError(err, ErrExerciseNotFound)
	}
	if existing.CreatedBy != actorID && actorRole != domain.RoleAdmin {
		return ErrExerciseAccessDenied
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		return mapRepoError(err, ErrExerciseNotFound)
	}
	s.cache.Invalidate(exerciseID)
	return nil
}

func applyExerciseInput(e *domain.Exercise, in ExerciseInput) {
	e.Name = strings.TrimSpace(in.Name)
	e.Description = in.Description
	e.Category = in.Category
	e.Equipment = in.Equipment
	e.Difficulty = in.Difficulty
	e.PrimaryMuscles = in.PrimaryMuscles
	e.Instructions = in.Instructions
	if in.Active != nil {
		e.Active = *in.Active
	}
}
