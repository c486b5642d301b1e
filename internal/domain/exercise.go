package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseCategory decides which plan targets a workout entry must carry.
type ExerciseCategory string

const (
	CategoryStrength       ExerciseCategory = "strength"
	CategoryCardio         ExerciseCategory = "cardio"
	CategoryFlexibility    ExerciseCategory = "flexibility"
	CategorySports         ExerciseCategory = "sports"
	CategoryRehabilitation ExerciseCategory = "rehabilitation"
)

// Exercise represents a single exercise definition in the shared catalog.
type Exercise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy      primitive.ObjectID `bson:"createdBy" json:"createdBy"` // Trainer or admin who added it
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Category       ExerciseCategory   `bson:"category" json:"category"`
	Equipment      string             `bson:"equipment,omitempty" json:"equipment,omitempty"`   // e.g., "Barbell", "None"
	Difficulty     string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g., "Novice", "Medium", "Advanced"
	PrimaryMuscles []string           `bson:"primaryMuscles,omitempty" json:"primaryMuscles,omitempty"`
	Instructions   string             `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c ExerciseCategory) bool {
	switch c {
	case CategoryStrength, CategoryCardio, CategoryFlexibility, CategorySports, CategoryRehabilitation:
		return true
	}
	return false
}
