package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidTransition is returned when a status change is not legal from the current status.
var ErrInvalidTransition = errors.New("invalid state transition")

// WorkoutStatus type for workout session lifecycle
type WorkoutStatus string

const (
	WorkoutPlanned    WorkoutStatus = "planned"
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
	WorkoutCancelled  WorkoutStatus = "cancelled"
	WorkoutSkipped    WorkoutStatus = "skipped"
)

// Workout is a single workout session owned by one user. It is the aggregate root:
// its exercise entries and their sets are embedded and persisted as one document.
type Workout struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`                             // Owner
	TrainerID       *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"` // Supervising trainer, never an owner
	Name            string              `bson:"name" json:"name"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	Status          WorkoutStatus       `bson:"status" json:"status"`
	ScheduledAt     *time.Time          `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	StartedAt       *time.Time          `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	DurationMinutes *int                `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	CaloriesBurned  *int                `bson:"caloriesBurned,omitempty" json:"caloriesBurned,omitempty"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises       []WorkoutExercise   `bson:"exercises" json:"exercises"`
	Version         int64               `bson:"version" json:"-"` // Optimistic concurrency token
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// NewWorkout builds a Planned workout for the given owner.
func NewWorkout(userID primitive.ObjectID, name string, now time.Time) *Workout {
	return &Workout{
		UserID:    userID,
		Name:      name,
		Status:    WorkoutPlanned,
		Exercises: []WorkoutExercise{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start moves a Planned workout to InProgress. It is a one-way gate: any other
// current status is rejected, including InProgress.
func (w *Workout) Start(now time.Time) error {
	if w.Status != WorkoutPlanned {
		return fmt.Errorf("%w: workout is %s, expected %s", ErrInvalidTransition, w.Status, WorkoutPlanned)
	}
	w.Status = WorkoutInProgress
	w.StartedAt = timePtr(now)
	w.UpdatedAt = now
	return nil
}

// Complete finishes an InProgress workout. Every entry still InProgress is completed
// first so a Completed workout never owns an InProgress entry. Returns the entries
// completed by the cascade.
func (w *Workout) Complete(now time.Time) ([]primitive.ObjectID, error) {
	if w.Status != WorkoutInProgress {
		return nil, fmt.Errorf("%w: workout is %s, expected %s", ErrInvalidTransition, w.Status, WorkoutInProgress)
	}
	cascaded := w.completeInProgressExercises(now)

	w.Status = WorkoutCompleted
	w.CompletedAt = timePtr(now)
	w.UpdatedAt = now
	if w.StartedAt != nil {
		minutes := ElapsedMinutes(*w.StartedAt, now)
		w.DurationMinutes = &minutes
	}
	return cascaded, nil
}

// Cancel abandons a workout that has not started yet.
func (w *Workout) Cancel(now time.Time) error {
	if w.Status != WorkoutPlanned {
		return fmt.Errorf("%w: workout is %s, expected %s", ErrInvalidTransition, w.Status, WorkoutPlanned)
	}
	w.Status = WorkoutCancelled
	w.UpdatedAt = now
	return nil
}

// StartExercise starts one entry. A Planned workout is started along with it,
// so the session begins the moment its first exercise begins. Workouts in any
// other status keep their status; Reconcile fixes what that leaves behind.
// Reports whether the workout itself was started by this call.
func (w *Workout) StartExercise(entryID primitive.ObjectID, now time.Time) (bool, error) {
	entry := w.Exercise(entryID)
	if entry == nil {
		return false, ErrEntryNotFound
	}
	entry.Start(now)

	sessionStarted := false
	if w.Status == WorkoutPlanned {
		if err := w.Start(now); err != nil {
			return false, err
		}
		sessionStarted = true
	}
	w.UpdatedAt = now
	return sessionStarted, nil
}

// Reconcile corrects drift between the workout status and its entries:
// a Planned workout with an InProgress entry is promoted to InProgress, and
// InProgress entries under a Completed workout are completed. Nothing else is
// touched. Returns the entries it completed and whether anything changed.
func (w *Workout) Reconcile(now time.Time) ([]primitive.ObjectID, bool) {
	if !w.hasInProgressExercise() {
		return nil, false
	}

	switch w.Status {
	case WorkoutPlanned:
		w.Status = WorkoutInProgress
		if w.StartedAt == nil {
			w.StartedAt = timePtr(now)
		}
		w.UpdatedAt = now
		return nil, true
	case WorkoutCompleted:
		completed := w.completeInProgressExercises(now)
		w.UpdatedAt = now
		return completed, true
	}
	return nil, false
}

// Exercise returns a pointer to the embedded entry with the given id, or nil.
func (w *Workout) Exercise(entryID primitive.ObjectID) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == entryID {
			return &w.Exercises[i]
		}
	}
	return nil
}

// ExerciseForSet returns the entry owning the given set, and the set itself.
func (w *Workout) ExerciseForSet(setID primitive.ObjectID) (*WorkoutExercise, *ExerciseSet) {
	for i := range w.Exercises {
		if set := w.Exercises[i].Set(setID); set != nil {
			return &w.Exercises[i], set
		}
	}
	return nil, nil
}

// OrderedExercises returns the entries sorted by OrderIndex. Entries sharing an
// index keep their insertion order.
func (w *Workout) OrderedExercises() []WorkoutExercise {
	ordered := make([]WorkoutExercise, len(w.Exercises))
	copy(ordered, w.Exercises)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})
	return ordered
}

func (w *Workout) hasInProgressExercise() bool {
	for _, e := range w.Exercises {
		if e.Status == ExerciseInProgress {
			return true
		}
	}
	return false
}

func (w *Workout) completeInProgressExercises(now time.Time) []primitive.ObjectID {
	var completed []primitive.ObjectID
	for i := range w.Exercises {
		entry := &w.Exercises[i]
		if entry.Status != ExerciseInProgress {
			continue
		}
		// Cannot fail: the entry is InProgress.
		_ = entry.Complete(now)
		completed = append(completed, entry.ID)
	}
	return completed
}

// ElapsedMinutes returns the whole minutes between two instants, floored, never negative.
func ElapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
