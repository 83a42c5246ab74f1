package api

import (
	"alcyxob/trainer-marketplace/internal/service"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

// MessageResponse acknowledges operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// errorStatus maps service errors to HTTP status codes and client messages.
var errorStatus = []struct {
	err     error
	code    int
	message string
}{
	{service.ErrValidation, http.StatusBadRequest, ""},
	{service.ErrDuplicateEmail, http.StatusBadRequest, "Email already registered"},
	{service.ErrTrainerExists, http.StatusBadRequest, "Trainer profile already exists"},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, msgUnauthenticated},
	{service.ErrInvalidToken, http.StatusUnauthorized, msgUnauthenticated},
	{service.ErrForbidden, http.StatusForbidden, msgForbidden},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrTrainerNotFound, http.StatusNotFound, "Trainer not found"},
	{service.ErrCourseNotFound, http.StatusNotFound, "Course not found"},
}

// respondError writes the envelope for err. Unmapped errors are logged and become a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	for _, m := range errorStatus {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = validationMessageFrom(err)
		}
		abortWithError(c, m.code, msg)
		return
	}

	logger.Error("unexpected error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", requestIDFrom(c)),
		zap.Error(err))
	abortWithError(c, http.StatusInternalServerError, "Server error")
}

// validationMessageFrom strips the sentinel prefix from a wrapped validation error.
func validationMessageFrom(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	if msg == "" || msg == service.ErrValidation.Error() {
		return "Validation failed"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
