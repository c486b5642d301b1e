package api

import (
	"alcyxob/fitness-tracker/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error codes returned in the "code" field of every error body.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidState  = "INVALID_STATE"
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

// respondError maps a service error to its HTTP status and code. Unexpected
// errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		abortWithError(c, http.StatusConflict, CodeInvalidState, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists), errors.Is(err, service.ErrExerciseNameTaken):
		abortWithError(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, CodeForbidden, err.Error())
	default:
		logrus.WithContext(c.Request.Context()).WithError(err).
			WithField("path", c.FullPath()).Error("request failed")
		abortWithError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error.")
	}
}

// bindJSON decodes the body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "Validation error: "+err.Error())
		return false
	}
	return true
}

// pathObjectID parses a hex ObjectID path parameter, answering 400 on failure.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}
