package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the shared exercise catalog.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

// ExerciseRequest is the body for creating or replacing a catalog exercise.
type ExerciseRequest struct {
	Name           string                  `json:"name" binding:"required"`
	Description    string                  `json:"description"`
	Category       domain.ExerciseCategory `json:"category" binding:"required,oneof=strength cardio flexibility sports rehabilitation"`
	Equipment      string                  `json:"equipment"`
	Difficulty     string                  `json:"difficulty"`
	PrimaryMuscles []string                `json:"primaryMuscles"`
	Instructions   string                  `json:"instructions"`
	Active         *bool                   `json:"active"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		Equipment:      r.Equipment,
		Difficulty:     r.Difficulty,
		PrimaryMuscles: r.PrimaryMuscles,
		Instructions:   r.Instructions,
		Active:         r.Active,
	}
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID             string                  `json:"id"`
	CreatedBy      string                  `json:"createdBy"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description,omitempty"`
	Category       domain.ExerciseCategory `json:"category"`
	Equipment      string                  `json:"equipment,omitempty"`
	Difficulty     string                  `json:"difficulty,omitempty"`
	PrimaryMuscles []string                `json:"primaryMuscles,omitempty"`
	Instructions   string                  `json:"instructions,omitempty"`
	Active         bool                    `json:"active"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:             ex.ID.Hex(),
		CreatedBy:      ex.CreatedBy.Hex(),
		Name:           ex.Name,
		Description:    ex.Description,
		Category:       ex.Category,
		Equipment:      ex.Equipment,
		Difficulty:     ex.Difficulty,
		PrimaryMuscles: ex.PrimaryMuscles,
		Instructions:   ex.Instructions,
		Active:         ex.Active,
		CreatedAt:      ex.CreatedAt,
		UpdatedAt:      ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to the catalog
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not a trainer or admin"
// @Failure 409 {object} ErrorResponse "Name already taken"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List catalog exercises
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param active query bool false "Only active exercises"
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := repository.ExerciseFilter{
		Category:   domain.ExerciseCategory(c.Query("category")),
		ActiveOnly: c.Query("active") == "true",
	}
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get a catalog exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} ErrorResponse
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise godoc
// @Summary Replace a catalog exercise
// @Description Only the creator or an admin may change an exercise.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} ExerciseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	role, _ := getUserRoleFromContext(c)

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), userID, role, exerciseID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Remove a catalog exercise
// @Tags Exercises
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	role, _ := getUserRoleFromContext(c)

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), userID, role, exerciseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
