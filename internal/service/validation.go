package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"strings"
	"unicode/utf8"
)

const maxWorkoutNameLength = 100

func validateSessionSpec(spec SessionSpec) error {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return validationError("workout name is required")
	}
	if utf8.RuneCountInString(name) > maxWorkoutNameLength {
		return validationError("workout name must be at most %d characters", maxWorkoutNameLength)
	}
	if spec.CaloriesBurned != nil && *spec.CaloriesBurned < 0 {
		return validationError("calories burned must not be negative")
	}
	return nil
}

func validatePlan(plan domain.ExercisePlan) error {
	return validatePatch(domain.ExercisePatch{
		OrderIndex:             &plan.OrderIndex,
		PlannedSets:            plan.PlannedSets,
		PlannedReps:            plan.PlannedReps,
		PlannedWeight:          plan.PlannedWeight,
		PlannedDurationSeconds: plan.PlannedDurationSeconds,
		PlannedDistanceMeters:  plan.PlannedDistanceMeters,
		RestTimeSeconds:        plan.RestTimeSeconds,
	})
}

func validatePatch(p domain.ExercisePatch) error {
	switch {
	case p.OrderIndex != nil && *p.OrderIndex < 0:
		return validationError("order index must not be negative")
	case p.PlannedSets != nil && *p.PlannedSets < 1:
		return validationError("planned sets must be at least 1")
	case p.PlannedReps != nil && *p.PlannedReps < 1:
		return validationError("planned reps must be at least 1")
	case p.PlannedWeight != nil && *p.PlannedWeight < 0:
		return validationError("planned weight must not be negative")
	case p.PlannedDurationSeconds != nil && *p.PlannedDurationSeconds < 0:
		return validationError("planned duration must not be negative")
	case p.PlannedDistanceMeters != nil && *p.PlannedDistanceMeters < 0:
		return validationError("planned distance must not be negative")
	case p.RestTimeSeconds != nil && *p.RestTimeSeconds < 0:
		return validationError("rest time must not be negative")
	}
	return nil
}

// validateModality checks that a plan carries the targets its exercise category needs.
func validateModality(category domain.ExerciseCategory, plan domain.ExercisePlan) error {
	switch category {
	case domain.CategoryStrength:
		if plan.PlannedSets == nil {
			return validationError("strength exercises need planned sets")
		}
	case domain.CategoryCardio:
		if plan.PlannedDurationSeconds == nil && plan.PlannedDistanceMeters == nil {
			return validationError("cardio exercises need a planned duration or distance")
		}
	}
	return nil
}

func validateSetData(data domain.SetData) error {
	switch {
	case data.SetNumber < 1:
		return validationError("set number must be at least 1")
	case data.RPEScore != nil && (*data.RPEScore < 1 || *data.RPEScore > 10):
		return validationError("rpe score must be between 1 and 10")
	case data.ActualReps != nil && *data.ActualReps < 0:
		return validationError("actual reps must not be negative")
	case data.ActualWeight != nil && *data.ActualWeight < 0:
		return validationError("actual weight must not be negative")
	case data.ActualDurationSeconds != nil && *data.ActualDurationSeconds < 0:
		return validationError("actual duration must not be negative")
	case data.ActualDistanceMeters != nil && *data.ActualDistanceMeters < 0:
		return validationError("actual distance must not be negative")
	case data.RestTimeSeconds != nil && *data.RestTimeSeconds < 0:
		return validationError("rest time must not be negative")
	}
	return nil
}
