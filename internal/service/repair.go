package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepairSession brings a workout's status back in line with its entries.
// A consistent workout is left untouched, so repeating the call is harmless.
// Reports whether anything was written.
func (s *workoutService) RepairSession(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error) {
	var (
		before    domain.WorkoutStatus
		completed []primitive.ObjectID
		changed   bool
	)
	workout, err := s.mutate(ctx, s.loadWorkout(userID, workoutID), ErrWorkoutNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			before = w.Status
			completed, changed = w.Reconcile(now)
			if !changed {
				return nil, errUnchanged
			}
			events := entryEvents(w, completed, TriggerCascade, now)
			return append(events, sessionEvent(EventSessionRepaired, w, "", now)), nil
		})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	logrus.WithFields(logrus.Fields{
		"workout_id":  workoutID.Hex(),
		"status_from": before,
		"status_to":   workout.Status,
		"completed":   len(completed),
	}).Warn("repaired inconsistent workout")
	return true, nil
}
