package utils

import (
	"errors"
	"fmt"
)

var (
	ErrDatabaseError        = errors.New("database error")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrForbidden            = errors.New("forbidden")
	ErrItineraryNotFound    = errors.New("itinerary not found")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrAIServiceUnavailable = errors.New("AI service unavailable")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrMapServiceError      = errors.New("map service error")
	ErrNotConfigured        = errors.New("service not configured")
)

// InvalidInput wraps ErrInvalidInput with a message that is safe to show.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
