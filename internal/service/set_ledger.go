package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogSet records a Pending set against an entry. The entry is addressed
// directly; its workout is found through it.
func (s *workoutService) LogSet(ctx context.Context, userID, entryID primitive.ObjectID, data domain.SetData) (*domain.ExerciseSet, error) {
	if err := validateSetData(data); err != nil {
		return nil, err
	}

	var setID primitive.ObjectID
	load := func(ctx context.Context) (*domain.Workout, error) {
		return s.workoutRepo.GetByEntryID(ctx, entryID, userID)
	}
	workout, err := s.mutate(ctx, load, ErrTrackerNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			entry := w.Exercise(entryID)
			if entry == nil {
				return nil, ErrTrackerNotFound
			}
			set := entry.AddSet(domain.NewExerciseSet(data, now), now)
			setID = set.ID
			w.UpdatedAt = now
			return nil, nil
		})
	if err != nil {
		return nil, err
	}
	_, set := workout.ExerciseForSet(setID)
	return set, nil
}

// CompleteSet completes a Pending set. When the entry is InProgress and its
// completed sets reach the planned count, the entry completes in the same write.
func (s *workoutService) CompleteSet(ctx context.Context, userID, setID primitive.ObjectID) (*domain.ExerciseSet, error) {
	load := func(ctx context.Context) (*domain.Workout, error) {
		return s.workoutRepo.GetBySetID(ctx, setID, userID)
	}
	workout, err := s.mutate(ctx, load, ErrSetNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			entry, set := w.ExerciseForSet(setID)
			if set == nil {
				return nil, ErrSetNotFound
			}
			if err := set.Complete(now); err != nil {
				return nil, err
			}
			w.UpdatedAt = now
			if entry.AutoComplete(now) {
				return entryEvents(w, []primitive.ObjectID{entry.ID}, TriggerAuto, now), nil
			}
			return nil, nil
		})
	if err != nil {
		return nil, err
	}
	_, set := workout.ExerciseForSet(setID)
	return set, nil
}

// ListSets returns the sets of an entry ordered by set number. Sets sharing a
// number keep the order they were logged in.
func (s *workoutService) ListSets(ctx context.Context, userID, entryID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	workout, err := s.workoutRepo.GetByEntryID(ctx, entryID, userID)
	if err != nil {
		return nil, mapRepoError(err, ErrTrackerNotFound)
	}
	entry := workout.Exercise(entryID)
	if entry == nil {
		return nil, ErrTrackerNotFound
	}

	sets := make([]domain.ExerciseSet, len(entry.Sets))
	copy(sets, entry.Sets)
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].SetNumber < sets[j].SetNumber
	})
	return sets, nil
}
