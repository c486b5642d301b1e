package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetStatus type for a single performed set
type SetStatus string

const (
	SetPending   SetStatus = "pending"
	SetCompleted SetStatus = "completed"
	SetFailed    SetStatus = "failed" // Entity supports it; no operation produces it yet
)

// ExerciseSet is one attempt logged against a workout exercise.
type ExerciseSet struct {
	ID                    primitive.ObjectID `bson:"_id" json:"id"`
	SetNumber             int                `bson:"setNumber" json:"setNumber"`
	ActualReps            *int               `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	ActualWeight          *float64           `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	ActualDurationSeconds *int               `bson:"actualDurationSeconds,omitempty" json:"actualDurationSeconds,omitempty"`
	ActualDistanceMeters  *float64           `bson:"actualDistanceMeters,omitempty" json:"actualDistanceMeters,omitempty"`
	RPEScore              *int               `bson:"rpeScore,omitempty" json:"rpeScore,omitempty"` // Rate of perceived exertion, 1-10
	RestTimeSeconds       *int               `bson:"restTimeSeconds,omitempty" json:"restTimeSeconds,omitempty"`
	Status                SetStatus          `bson:"status" json:"status"`
	Notes                 string             `bson:"notes,omitempty" json:"notes,omitempty"`
	StartedAt             *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt           *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}

// SetData is the performance data supplied when logging a set.
type SetData struct {
	SetNumber             int
	ActualReps            *int
	ActualWeight          *float64
	ActualDurationSeconds *int
	ActualDistanceMeters  *float64
	RPEScore              *int
	RestTimeSeconds       *int
	Notes                 string
	StartedAt             *time.Time
}

// NewExerciseSet creates a Pending set from logged data.
func NewExerciseSet(data SetData, now time.Time) ExerciseSet {
	return ExerciseSet{
		ID:                    primitive.NewObjectID(),
		SetNumber:             data.SetNumber,
		ActualReps:            data.ActualReps,
		ActualWeight:          data.ActualWeight,
		ActualDurationSeconds: data.ActualDurationSeconds,
		ActualDistanceMeters:  data.ActualDistanceMeters,
		RPEScore:              data.RPEScore,
		RestTimeSeconds:       data.RestTimeSeconds,
		Notes:                 data.Notes,
		StartedAt:             data.StartedAt,
		Status:                SetPending,
		CreatedAt:             now,
	}
}

// Complete marks a Pending set Completed. A set transitions once.
func (s *ExerciseSet) Complete(now time.Time) error {
	if s.Status != SetPending {
		return fmt.Errorf("%w: set is %s, expected %s", ErrInvalidTransition, s.Status, SetPending)
	}
	s.Status = SetCompleted
	s.CompletedAt = timePtr(now)
	return nil
}
