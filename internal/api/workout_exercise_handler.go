package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- DTOs ---

type AddWorkoutExerciseRequest struct {
	ExerciseID             string   `json:"exerciseId" binding:"required"`
	OrderIndex             *int     `json:"orderIndex" binding:"required,min=0"`
	PlannedSets            *int     `json:"plannedSets" binding:"omitempty,min=1"`
	PlannedReps            *int     `json:"plannedReps" binding:"omitempty,min=1"`
	PlannedWeight          *float64 `json:"plannedWeight" binding:"omitempty,min=0"`
	PlannedDurationSeconds *int     `json:"plannedDurationSeconds" binding:"omitempty,min=0"`
	PlannedDistanceMeters  *float64 `json:"plannedDistanceMeters" binding:"omitempty,min=0"`
	RestTimeSeconds        *int     `json:"restTimeSeconds" binding:"omitempty,min=0"`
	Notes                  string   `json:"notes"`
}

// UpdateWorkoutExerciseRequest changes only the fields present in the body.
type UpdateWorkoutExerciseRequest struct {
	OrderIndex             *int     `json:"orderIndex" binding:"omitempty,min=0"`
	PlannedSets            *int     `json:"plannedSets" binding:"omitempty,min=1"`
	PlannedReps            *int     `json:"plannedReps" binding:"omitempty,min=1"`
	PlannedWeight          *float64 `json:"plannedWeight" binding:"omitempty,min=0"`
	PlannedDurationSeconds *int     `json:"plannedDurationSeconds" binding:"omitempty,min=0"`
	PlannedDistanceMeters  *float64 `json:"plannedDistanceMeters" binding:"omitempty,min=0"`
	RestTimeSeconds        *int     `json:"restTimeSeconds" binding:"omitempty,min=0"`
	Notes                  *string  `json:"notes"`
}

type LogSetRequest struct {
	SetNumber             int        `json:"setNumber" binding:"required,min=1"`
	ActualReps            *int       `json:"actualReps" binding:"omitempty,min=0"`
	ActualWeight          *float64   `json:"actualWeight" binding:"omitempty,min=0"`
	ActualDurationSeconds *int       `json:"actualDurationSeconds" binding:"omitempty,min=0"`
	ActualDistanceMeters  *float64   `json:"actualDistanceMeters" binding:"omitempty,min=0"`
	RPEScore              *int       `json:"rpeScore" binding:"omitempty,min=1,max=10"`
	RestTimeSeconds       *int       `json:"restTimeSeconds" binding:"omitempty,min=0"`
	Notes                 string     `json:"notes"`
	StartedAt             *time.Time `json:"startedAt"`
}

type WorkoutExerciseResponse struct {
	ID                     string                `json:"id"`
	ExerciseID             string                `json:"exerciseId"`
	OrderIndex             int                   `json:"orderIndex"`
	PlannedSets            *int                  `json:"plannedSets,omitempty"`
	PlannedReps            *int                  `json:"plannedReps,omitempty"`
	PlannedWeight          *float64              `json:"plannedWeight,omitempty"`
	PlannedDurationSeconds *int                  `json:"plannedDurationSeconds,omitempty"`
	PlannedDistanceMeters  *float64              `json:"plannedDistanceMeters,omitempty"`
	RestTimeSeconds        *int                  `json:"restTimeSeconds,omitempty"`
	Status                 domain.ExerciseStatus `json:"status"`
	CompletedSets          int                   `json:"completedSets"`
	Sets                   []ExerciseSetResponse `json:"sets"`
	Notes                  string                `json:"notes,omitempty"`
	StartedAt              *time.Time            `json:"startedAt,omitempty"`
	CompletedAt            *time.Time            `json:"completedAt,omitempty"`
}

type ExerciseSetResponse struct {
	ID                    string           `json:"id"`
	SetNumber             int              `json:"setNumber"`
	ActualReps            *int             `json:"actualReps,omitempty"`
	ActualWeight          *float64         `json:"actualWeight,omitempty"`
	ActualDurationSeconds *int             `json:"actualDurationSeconds,omitempty"`
	ActualDistanceMeters  *float64         `json:"actualDistanceMeters,omitempty"`
	RPEScore              *int             `json:"rpeScore,omitempty"`
	RestTimeSeconds       *int             `json:"restTimeSeconds,omitempty"`
	Status                domain.SetStatus `json:"status"`
	Notes                 string           `json:"notes,omitempty"`
	StartedAt             *time.Time       `json:"startedAt,omitempty"`
	CompletedAt           *time.Time       `json:"completedAt,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
}

func MapWorkoutExerciseToResponse(e *domain.WorkoutExercise) WorkoutExerciseResponse {
	if e == nil {
		return WorkoutExerciseResponse{}
	}
	return WorkoutExerciseResponse{
		ID:                     e.ID.Hex(),
		ExerciseID:             e.ExerciseID.Hex(),
		OrderIndex:             e.OrderIndex,
		PlannedSets:            e.PlannedSets,
		PlannedReps:            e.PlannedReps,
		PlannedWeight:          e.PlannedWeight,
		PlannedDurationSeconds: e.PlannedDurationSeconds,
		PlannedDistanceMeters:  e.PlannedDistanceMeters,
		RestTimeSeconds:        e.RestTimeSeconds,
		Status:                 e.Status,
		CompletedSets:          e.CompletedSetCount(),
		Sets:                   MapExerciseSetsToResponse(e.Sets),
		Notes:                  e.Notes,
		StartedAt:              e.StartedAt,
		CompletedAt:            e.CompletedAt,
	}
}

func MapWorkoutExercisesToResponse(entries []domain.WorkoutExercise) []WorkoutExerciseResponse {
	responses := make([]WorkoutExerciseResponse, len(entries))
	for i := range entries {
		responses[i] = MapWorkoutExerciseToResponse(&entries[i])
	}
	return responses
}

func MapExerciseSetToResponse(s *domain.ExerciseSet) ExerciseSetResponse {
	if s == nil {
		return ExerciseSetResponse{}
	}
	return ExerciseSetResponse{
		ID:                    s.ID.Hex(),
		SetNumber:             s.SetNumber,
		ActualReps:            s.ActualReps,
		ActualWeight:          s.ActualWeight,
		ActualDurationSeconds: s.ActualDurationSeconds,
		ActualDistanceMeters:  s.ActualDistanceMeters,
		RPEScore:              s.RPEScore,
		RestTimeSeconds:       s.RestTimeSeconds,
		Status:                s.Status,
		Notes:                 s.Notes,
		StartedAt:             s.StartedAt,
		CompletedAt:           s.CompletedAt,
		CreatedAt:             s.CreatedAt,
	}
}

func MapExerciseSetsToResponse(sets []domain.ExerciseSet) []ExerciseSetResponse {
	responses := make([]ExerciseSetResponse, len(sets))
	for i := range sets {
		responses[i] = MapExerciseSetToResponse(&sets[i])
	}
	return responses
}

// --- Workout exercise handlers ---

// AddWorkoutExercise godoc
// @Summary Add a catalog exercise to a workout
// @Description Strength exercises need plannedSets; cardio needs plannedDurationSeconds or plannedDistanceMeters.
// @Tags Workout Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param exercise body AddWorkoutExerciseRequest true "Plan"
// @Success 201 {object} WorkoutExerciseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Workout or exercise not found"
// @Router /workouts/{id}/exercises [post]
func (h *WorkoutHandler) AddWorkoutExercise(c *gin.Context) {
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req AddWorkoutExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "Invalid exerciseId format.")
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	plan := domain.ExercisePlan{
		OrderIndex:             *req.OrderIndex,
		PlannedSets:            req.PlannedSets,
		PlannedReps:            req.PlannedReps,
		PlannedWeight:          req.PlannedWeight,
		PlannedDurationSeconds: req.PlannedDurationSeconds,
		PlannedDistanceMeters:  req.PlannedDistanceMeters,
		RestTimeSeconds:        req.RestTimeSeconds,
		Notes:                  req.Notes,
	}
	entry, err := h.workoutService.AddTracker(c.Request.Context(), userID, workoutID, exerciseID, plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutExerciseToResponse(entry))
}

// ListWorkoutExercises godoc
// @Summary List the exercises of a workout by order index
// @Tags Workout Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {array} WorkoutExerciseResponse
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/exercises [get]
func (h *WorkoutHandler) ListWorkoutExercises(c *gin.Context) {
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	entries, err := h.workoutService.ListTrackers(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutExercisesToResponse(entries))
}

// UpdateWorkoutExercise godoc
// @Summary Change the plan or order of a workout exercise
// @Tags Workout Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Param patch body UpdateWorkoutExerciseRequest true "Fields to change"
// @Success 200 {object} WorkoutExerciseResponse
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId} [put]
func (h *WorkoutHandler) UpdateWorkoutExercise(c *gin.Context) {
	var req UpdateWorkoutExerciseRequest
	h.entryAction(c, http.StatusOK, func(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
		return h.workoutService.UpdateTracker(ctx, userID, workoutID, entryID, domain.ExercisePatch{
			OrderIndex:             req.OrderIndex,
			PlannedSets:            req.PlannedSets,
			PlannedReps:            req.PlannedReps,
			PlannedWeight:          req.PlannedWeight,
			PlannedDurationSeconds: req.PlannedDurationSeconds,
			PlannedDistanceMeters:  req.PlannedDistanceMeters,
			RestTimeSeconds:        req.RestTimeSeconds,
			Notes:                  req.Notes,
		})
	}, &req)
}

// StartWorkoutExercise godoc
// @Summary Start a workout exercise
// @Description Starts the workout as well when it is still Planned.
// @Tags Workout Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Success 200 {object} WorkoutExerciseResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId}/start [post]
func (h *WorkoutHandler) StartWorkoutExercise(c *gin.Context) {
	h.entryAction(c, http.StatusOK, h.workoutService.StartTracker, nil)
}

// CompleteWorkoutExercise godoc
// @Summary Complete an InProgress workout exercise
// @Tags Workout Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Success 200 {object} WorkoutExerciseResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId}/complete [post]
func (h *WorkoutHandler) CompleteWorkoutExercise(c *gin.Context) {
	h.entryAction(c, http.StatusOK, h.workoutService.CompleteTracker, nil)
}

// SkipWorkoutExercise godoc
// @Summary Skip a workout exercise
// @Tags Workout Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Success 200 {object} WorkoutExerciseResponse
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId}/skip [post]
func (h *WorkoutHandler) SkipWorkoutExercise(c *gin.Context) {
	h.entryAction(c, http.StatusOK, h.workoutService.SkipTracker, nil)
}

type entryFunc func(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error)

// entryAction parses the workout and entry path params, binds body when
// non-nil, and renders the entry fn returns.
func (h *WorkoutHandler) entryAction(c *gin.Context, status int, fn entryFunc, body any) {
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	entryID, ok := pathObjectID(c, "entryId")
	if !ok {
		return
	}
	if body != nil && !bindJSON(c, body) {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	entry, err := fn(c.Request.Context(), userID, workoutID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, MapWorkoutExerciseToResponse(entry))
}

// --- Set handlers ---

// LogSet godoc
// @Summary Log a set against a workout exercise
// @Tags Sets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Workout exercise ID"
// @Param set body LogSetRequest true "Performance data"
// @Success 201 {object} ExerciseSetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workout-exercises/{entryId}/sets [post]
func (h *WorkoutHandler) LogSet(c *gin.Context) {
	entryID, ok := pathObjectID(c, "entryId")
	if !ok {
		return
	}
	var req LogSetRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	set, err := h.workoutService.LogSet(c.Request.Context(), userID, entryID, domain.SetData{
		SetNumber:             req.SetNumber,
		ActualReps:            req.ActualReps,
		ActualWeight:          req.ActualWeight,
		ActualDurationSeconds: req.ActualDurationSeconds,
		ActualDistanceMeters:  req.ActualDistanceMeters,
		RPEScore:              req.RPEScore,
		RestTimeSeconds:       req.RestTimeSeconds,
		Notes:                 req.Notes,
		StartedAt:             req.StartedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseSetToResponse(set))
}

// ListSets godoc
// @Summary List the sets of a workout exercise by set number
// @Tags Sets
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Workout exercise ID"
// @Success 200 {array} ExerciseSetResponse
// @Failure 404 {object} ErrorResponse
// @Router /workout-exercises/{entryId}/sets [get]
func (h *WorkoutHandler) ListSets(c *gin.Context) {
	entryID, ok := pathObjectID(c, "entryId")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	sets, err := h.workoutService.ListSets(c.Request.Context(), userID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseSetsToResponse(sets))
}

// CompleteSet godoc
// @Summary Complete a set
// @Description Completes the workout exercise too once its planned set count is reached.
// @Tags Sets
// @Produce json
// @Security BearerAuth
// @Param setId path string true "Set ID"
// @Success 200 {object} ExerciseSetResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sets/{setId}/complete [post]
func (h *WorkoutHandler) CompleteSet(c *gin.Context) {
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	set, err := h.workoutService.CompleteSet(c.Request.Context(), userID, setID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseSetToResponse(set))
}
