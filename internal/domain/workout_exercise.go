package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEntryNotFound = errors.New("workout exercise not found in workout")
	ErrSetNotFound   = errors.New("exercise set not found in workout")
)

// ExerciseStatus type for the lifecycle of one exercise inside a workout
type ExerciseStatus string

const (
	ExercisePending    ExerciseStatus = "pending"
	ExerciseInProgress ExerciseStatus = "in_progress"
	ExerciseCompleted  ExerciseStatus = "completed"
	ExerciseSkipped    ExerciseStatus = "skipped"
)

// WorkoutExercise tracks one catalog exercise inside a workout: the planned
// targets and the sets actually performed.
type WorkoutExercise struct {
	ID                     primitive.ObjectID `bson:"_id" json:"id"`
	ExerciseID             primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Link to the catalog Exercise
	OrderIndex             int                `bson:"orderIndex" json:"orderIndex"`
	PlannedSets            *int               `bson:"plannedSets,omitempty" json:"plannedSets,omitempty"`
	PlannedReps            *int               `bson:"plannedReps,omitempty" json:"plannedReps,omitempty"`
	PlannedWeight          *float64           `bson:"plannedWeight,omitempty" json:"plannedWeight,omitempty"`
	PlannedDurationSeconds *int               `bson:"plannedDurationSeconds,omitempty" json:"plannedDurationSeconds,omitempty"`
	PlannedDistanceMeters  *float64           `bson:"plannedDistanceMeters,omitempty" json:"plannedDistanceMeters,omitempty"`
	RestTimeSeconds        *int               `bson:"restTimeSeconds,omitempty" json:"restTimeSeconds,omitempty"`
	Sets                   []ExerciseSet      `bson:"sets" json:"sets"`
	Notes                  string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status                 ExerciseStatus     `bson:"status" json:"status"`
	StartedAt              *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt            *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExercisePlan holds the planned targets for an exercise entry.
type ExercisePlan struct {
	OrderIndex             int
	PlannedSets            *int
	PlannedReps            *int
	PlannedWeight          *float64
	PlannedDurationSeconds *int
	PlannedDistanceMeters  *float64
	RestTimeSeconds        *int
	Notes                  string
}

// ExercisePatch is a partial update of an entry; nil fields are left unchanged.
type ExercisePatch struct {
	OrderIndex             *int
	PlannedSets            *int
	PlannedReps            *int
	PlannedWeight          *float64
	PlannedDurationSeconds *int
	PlannedDistanceMeters  *float64
	RestTimeSeconds        *int
	Notes                  *string
}

// NewWorkoutExercise creates a Pending entry for a catalog exercise.
func NewWorkoutExercise(exerciseID primitive.ObjectID, plan ExercisePlan, now time.Time) WorkoutExercise {
	return WorkoutExercise{
		ID:                     primitive.NewObjectID(),
		ExerciseID:             exerciseID,
		OrderIndex:             plan.OrderIndex,
		PlannedSets:            plan.PlannedSets,
		PlannedReps:            plan.PlannedReps,
		PlannedWeight:          plan.PlannedWeight,
		PlannedDurationSeconds: plan.PlannedDurationSeconds,
		PlannedDistanceMeters:  plan.PlannedDistanceMeters,
		RestTimeSeconds:        plan.RestTimeSeconds,
		Notes:                  plan.Notes,
		Sets:                   []ExerciseSet{},
		Status:                 ExercisePending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// Start marks the entry InProgress from any status and stamps startedAt.
// A restart moves startedAt forward.
func (e *WorkoutExercise) Start(now time.Time) {
	e.Status = ExerciseInProgress
	e.StartedAt = timePtr(now)
	e.UpdatedAt = now
}

// Complete finishes an InProgress entry.
func (e *WorkoutExercise) Complete(now time.Time) error {
	if e.Status != ExerciseInProgress {
		return fmt.Errorf("%w: exercise is %s, expected %s", ErrInvalidTransition, e.Status, ExerciseInProgress)
	}
	e.Status = ExerciseCompleted
	e.CompletedAt = timePtr(now)
	e.UpdatedAt = now
	return nil
}

// Skip marks the entry Skipped regardless of its current status.
func (e *WorkoutExercise) Skip(now time.Time) {
	e.Status = ExerciseSkipped
	e.UpdatedAt = now
}

// ApplyPatch updates plan fields and order. Allowed in every status.
func (e *WorkoutExercise) ApplyPatch(p ExercisePatch, now time.Time) {
	if p.OrderIndex != nil {
		e.OrderIndex = *p.OrderIndex
	}
	if p.PlannedSets != nil {
		e.PlannedSets = p.PlannedSets
	}
	if p.PlannedReps != nil {
		e.PlannedReps = p.PlannedReps
	}
	if p.PlannedWeight != nil {
		e.PlannedWeight = p.PlannedWeight
	}
	if p.PlannedDurationSeconds != nil {
		e.PlannedDurationSeconds = p.PlannedDurationSeconds
	}
	if p.PlannedDistanceMeters != nil {
		e.PlannedDistanceMeters = p.PlannedDistanceMeters
	}
	if p.RestTimeSeconds != nil {
		e.RestTimeSeconds = p.RestTimeSeconds
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	e.UpdatedAt = now
}

// AddSet appends a Pending set. Set numbers are not checked for uniqueness.
func (e *WorkoutExercise) AddSet(set ExerciseSet, now time.Time) *ExerciseSet {
	e.Sets = append(e.Sets, set)
	e.UpdatedAt = now
	return &e.Sets[len(e.Sets)-1]
}

// Set returns a pointer to the embedded set with the given id, or nil.
func (e *WorkoutExercise) Set(setID primitive.ObjectID) *ExerciseSet {
	for i := range e.Sets {
		if e.Sets[i].ID == setID {
			return &e.Sets[i]
		}
	}
	return nil
}

// CompletedSetCount counts the sets in status Completed.
func (e *WorkoutExercise) CompletedSetCount() int {
	n := 0
	for _, s := range e.Sets {
		if s.Status == SetCompleted {
			n++
		}
	}
	return n
}

// AutoComplete completes an InProgress entry once its completed sets reach the
// planned set count. Entries without a planned set count never auto-complete.
// Reports whether the entry was completed.
func (e *WorkoutExercise) AutoComplete(now time.Time) bool {
	if e.Status != ExerciseInProgress || e.PlannedSets == nil {
		return false
	}
	if e.CompletedSetCount() < *e.PlannedSets {
		return false
	}
	return e.Complete(now) == nil
}
