package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/service"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves workout sessions, their exercises and sets.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type CreateWorkoutRequest struct {
	Name           string     `json:"name" binding:"required,max=100"`
	Description    string     `json:"description"`
	TrainerID      string     `json:"trainerId"`
	ScheduledAt    *time.Time `json:"scheduledAt"`
	CaloriesBurned *int       `json:"caloriesBurned" binding:"omitempty,min=0"`
	Notes          string     `json:"notes"`
}

type WorkoutResponse struct {
	ID              string                    `json:"id"`
	UserID          string                    `json:"userId"`
	TrainerID       string                    `json:"trainerId,omitempty"`
	Name            string                    `json:"name"`
	Description     string                    `json:"description,omitempty"`
	Status          domain.WorkoutStatus      `json:"status"`
	ScheduledAt     *time.Time                `json:"scheduledAt,omitempty"`
	StartedAt       *time.Time                `json:"startedAt,omitempty"`
	CompletedAt     *time.Time                `json:"completedAt,omitempty"`
	DurationMinutes *int                      `json:"durationMinutes,omitempty"`
	CaloriesBurned  *int                      `json:"caloriesBurned,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	Exercises       []WorkoutExerciseResponse `json:"exercises"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

type WorkoutPageResponse struct {
	Items    []WorkoutResponse `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int64             `json:"total"`
}

// MapWorkoutToResponse converts a domain.Workout, exercises in order, to its DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	resp := WorkoutResponse{
		ID:              w.ID.Hex(),
		UserID:          w.UserID.Hex(),
		Name:            w.Name,
		Description:     w.Description,
		Status:          w.Status,
		ScheduledAt:     w.ScheduledAt,
		StartedAt:       w.StartedAt,
		CompletedAt:     w.CompletedAt,
		DurationMinutes: w.DurationMinutes,
		CaloriesBurned:  w.CaloriesBurned,
		Notes:           w.Notes,
		Exercises:       MapWorkoutExercisesToResponse(w.OrderedExercises()),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	if w.TrainerID != nil {
		resp.TrainerID = w.TrainerID.Hex()
	}
	return resp
}

// --- Handler Methods ---

// CreateWorkout godoc
// @Summary Create a workout session
// @Description Creates a Planned workout owned by the authenticated user.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout details"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} ErrorResponse
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	spec := service.SessionSpec{
		Name:           req.Name,
		Description:    req.Description,
		ScheduledAt:    req.ScheduledAt,
		CaloriesBurned: req.CaloriesBurned,
		Notes:          req.Notes,
	}
	if req.TrainerID != "" {
		trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, CodeValidation, "Invalid trainerId format.")
			return
		}
		spec.TrainerID = &trainerID
	}

	workout, err := h.workoutService.CreateSession(c.Request.Context(), userID, spec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts godoc
// @Summary List the user's workouts
// @Description Newest first. Page is zero-based.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(0)
// @Param size query int false "Page size (1-100)" default(20)
// @Success 200 {object} WorkoutPageResponse
// @Failure 400 {object} ErrorResponse
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "page must be a number")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(service.DefaultPageSize)))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "size must be a number")
		return
	}

	result, err := h.workoutService.ListSessions(c.Request.Context(), userID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]WorkoutResponse, len(result.Items))
	for i := range result.Items {
		items[i] = MapWorkoutToResponse(&result.Items[i])
	}
	c.JSON(http.StatusOK, WorkoutPageResponse{
		Items:    items,
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
	})
}

// GetWorkout godoc
// @Summary Get a workout with its exercises and sets
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	h.sessionAction(c, http.StatusOK, h.workoutService.GetSession)
}

// StartWorkout godoc
// @Summary Start a Planned workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "INVALID_STATE or CONFLICT"
// @Router /workouts/{id}/start [post]
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	h.sessionAction(c, http.StatusOK, h.workoutService.StartSession)
}

// CompleteWorkout godoc
// @Summary Complete an InProgress workout
// @Description Exercises still in progress are completed with it.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "INVALID_STATE or CONFLICT"
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	h.sessionAction(c, http.StatusOK, h.workoutService.CompleteSession)
}

// CancelWorkout godoc
// @Summary Cancel a Planned workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "INVALID_STATE or CONFLICT"
// @Router /workouts/{id}/cancel [post]
func (h *WorkoutHandler) CancelWorkout(c *gin.Context) {
	h.sessionAction(c, http.StatusOK, h.workoutService.CancelSession)
}

// DeleteWorkout godoc
// @Summary Delete a workout in any status
// @Tags Workouts
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.workoutService.DeleteSession(c.Request.Context(), userID, workoutID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RepairWorkout godoc
// @Summary Reconcile a workout's status with its exercises
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} map[string]bool "repaired: whether anything changed"
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/repair [post]
func (h *WorkoutHandler) RepairWorkout(c *gin.Context) {
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	changed, err := h.workoutService.RepairSession(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repaired": changed})
}

type sessionFunc func(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)

func (h *WorkoutHandler) sessionAction(c *gin.Context, status int, fn sessionFunc) {
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workout, err := fn(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, MapWorkoutToResponse(workout))
}
