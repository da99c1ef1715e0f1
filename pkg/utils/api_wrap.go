package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusOK, data, message)
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusCreated, data, message)
}

func RespondWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Success: false,
		Error:   message,
		TraceID: c.GetString("trace_id"),
	})
}

func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrInvalidToken):
		RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, ErrForbidden):
		RespondError(c, http.StatusForbidden, "You do not have access to this resource")
	case errors.Is(err, ErrAccountNotFound):
		RespondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ErrItineraryNotFound):
		RespondError(c, http.StatusNotFound, "Itinerary not found")
	case errors.Is(err, ErrExpenseNotFound):
		RespondError(c, http.StatusNotFound, "Expense not found")
	case errors.Is(err, ErrAIServiceUnavailable):
		zap.L().Warn("AI service error", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		RespondError(c, http.StatusBadGateway, "AI service is temporarily unavailable")
	case errors.Is(err, ErrTranscriptionFailed):
		zap.L().Warn("transcription error", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		RespondError(c, http.StatusBadGateway, "Speech recognition failed")
	case errors.Is(err, ErrMapServiceError):
		zap.L().Warn("map service error", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		RespondError(c, http.StatusBadGateway, "Map service request failed")
	case errors.Is(err, ErrNotConfigured):
		RespondError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrDatabaseError):
		zap.L().Error("database error", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		zap.L().Error("unhandled service error", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// CurrentUserID returns the authenticated user's id set by the JWT middleware.
func CurrentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
