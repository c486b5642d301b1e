package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddTracker appends a Pending exercise entry to a workout. The catalog
// exercise must exist and the plan must suit its category.
func (s *workoutService) AddTracker(ctx context.Context, userID, workoutID, exerciseID primitive.ObjectID, plan domain.ExercisePlan) (*domain.WorkoutExercise, error) {
	// 1. Validate input
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	// 2. Resolve the catalog exercise
	exercise, err := s.exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound)
	}
	if err := validateModality(exercise.Category, plan); err != nil {
		return nil, err
	}

	// 3. Append to the aggregate
	var entryID primitive.ObjectID
	workout, err := s.mutate(ctx, s.loadWorkout(userID, workoutID), ErrWorkoutNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			entry := domain.NewWorkoutExercise(exerciseID, plan, now)
			entryID = entry.ID
			w.Exercises = append(w.Exercises, entry)
			w.UpdatedAt = now
			return nil, nil
		})
	if err != nil {
		return nil, err
	}
	return workout.Exercise(entryID), nil
}

// ListTrackers returns the entries of a workout ordered by order index.
func (s *workoutService) ListTrackers(ctx context.Context, userID, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, userID)
	if err != nil {
		return nil, mapRepoError(err, ErrWorkoutNotFound)
	}
	return workout.OrderedExercises(), nil
}

// StartTracker starts an entry, starting its workout too when still Planned.
func (s *workoutService) StartTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return s.mutateTracker(ctx, userID, workoutID, entryID,
		func(w *domain.Workout, _ *domain.WorkoutExercise, now time.Time) ([]Event, error) {
			sessionStarted, err := w.StartExercise(entryID, now)
			if err != nil {
				return nil, err
			}
			if sessionStarted {
				return []Event{sessionEvent(EventSessionStarted, w, TriggerImplicit, now)}, nil
			}
			return nil, nil
		})
}

// CompleteTracker completes an InProgress entry.
func (s *workoutService) CompleteTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return s.mutateTracker(ctx, userID, workoutID, entryID,
		func(w *domain.Workout, entry *domain.WorkoutExercise, now time.Time) ([]Event, error) {
			if err := entry.Complete(now); err != nil {
				return nil, err
			}
			w.UpdatedAt = now
			return entryEvents(w, []primitive.ObjectID{entry.ID}, TriggerExplicit, now), nil
		})
}

// SkipTracker marks an entry Skipped from any status.
func (s *workoutService) SkipTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return s.mutateTracker(ctx, userID, workoutID, entryID,
		func(w *domain.Workout, entry *domain.WorkoutExercise, now time.Time) ([]Event, error) {
			entry.Skip(now)
			w.UpdatedAt = now
			return nil, nil
		})
}

// UpdateTracker changes the plan or order of an entry.
func (s *workoutService) UpdateTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, patch domain.ExercisePatch) (*domain.WorkoutExercise, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return s.mutateTracker(ctx, userID, workoutID, entryID,
		func(w *domain.Workout, entry *domain.WorkoutExercise, now time.Time) ([]Event, error) {
			entry.ApplyPatch(patch, now)
			w.UpdatedAt = now
			return nil, nil
		})
}

// mutateTracker runs apply against one entry of a workout and returns the
// entry as committed.
func (s *workoutService) mutateTracker(
	ctx context.Context,
	userID, workoutID, entryID primitive.ObjectID,
	apply func(w *domain.Workout, entry *domain.WorkoutExercise, now time.Time) ([]Event, error),
) (*domain.WorkoutExercise, error) {
	workout, err := s.mutate(ctx, s.loadWorkout(userID, workoutID), ErrWorkoutNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			entry := w.Exercise(entryID)
			if entry == nil {
				return nil, ErrTrackerNotFound
			}
			events, err := apply(w, entry, now)
			if errors.Is(err, domain.ErrEntryNotFound) {
				return nil, ErrTrackerNotFound
			}
			return events, err
		})
	if err != nil {
		return nil, err
	}
	return workout.Exercise(entryID), nil
}
