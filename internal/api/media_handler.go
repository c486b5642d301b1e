package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaHandler serves uploads attached to workout exercises.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"` // e.g. "video/mp4"
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"min=0"`
}

type UploadResponse struct {
	ID          string    `json:"id"`
	WorkoutID   string    `json:"workoutId"`
	EntryID     string    `json:"entryId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func MapUploadToResponse(u *domain.Upload) UploadResponse {
	if u == nil {
		return UploadResponse{}
	}
	return UploadResponse{
		ID:          u.ID.Hex(),
		WorkoutID:   u.WorkoutID.Hex(),
		EntryID:     u.EntryID.Hex(),
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Size:        u.Size,
		UploadedAt:  u.UploadedAt,
	}
}

func entryPathIDs(c *gin.Context) (userID, workoutID, entryID primitive.ObjectID, ok bool) {
	if workoutID, ok = pathObjectID(c, "id"); !ok {
		return
	}
	if entryID, ok = pathObjectID(c, "entryId"); !ok {
		return
	}
	userID, ok = mustUserID(c)
	return
}

// RequestUploadURL godoc
// @Summary Get a presigned URL to upload form-check media
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Param request body RequestUploadURLRequest true "Content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId}/media/upload-url [post]
func (h *MediaHandler) RequestUploadURL(c *gin.Context) {
	var req RequestUploadURLRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, workoutID, entryID, ok := entryPathIDs(c)
	if !ok {
		return
	}

	resp, err := h.mediaService.RequestUploadURL(c.Request.Context(), userID, workoutID, entryID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload godoc
// @Summary Record a finished upload
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Param request body ConfirmUploadRequest true "Upload details"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId}/media/confirm [post]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	var req ConfirmUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, workoutID, entryID, ok := entryPathIDs(c)
	if !ok {
		return
	}

	upload, err := h.mediaService.ConfirmUpload(c.Request.Context(), userID, workoutID, entryID, service.UploadConfirmation{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUploadToResponse(upload))
}

// GetMedia godoc
// @Summary Get a presigned URL to the latest upload of a workout exercise
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param entryId path string true "Workout exercise ID"
// @Success 200 {object} map[string]string "downloadUrl"
// @Failure 404 {object} ErrorResponse
// @Router /workouts/{id}/exercises/{entryId}/media [get]
func (h *MediaHandler) GetMedia(c *gin.Context) {
	userID, workoutID, entryID, ok := entryPathIDs(c)
	if !ok {
		return
	}
	url, err := h.mediaService.GetDownloadURL(c.Request.Context(), userID, workoutID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
