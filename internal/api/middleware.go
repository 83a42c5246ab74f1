package api

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextUserIDKey    = "userID"
	ContextUserRoleKey  = "userRole"
	ContextUserKey      = "user"
	ContextRequestIDKey = "requestID"
)

const requestIDHeader = "X-Request-Id"

const (
	msgUnauthenticated = "Please authenticate"
	msgForbidden       = "Access denied"
)

// Authenticate verifies the bearer token and loads the caller. A token whose
// user no longer exists is rejected like a bad token; a failing user lookup is a 500.
func Authenticate(tokens *service.TokenService, authService service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, tokens, authService)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		setCaller(c, user)
		c.Next()
	}
}

// Require aborts with 403 unless the caller's role may perform op.
// Must run AFTER Authenticate.
func Require(op service.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
			return
		}
		if err := service.Authorize(role, op); err != nil {
			abortWithError(c, http.StatusForbidden, msgForbidden)
			return
		}
		c.Next()
	}
}

// authenticate returns ErrUnauthenticated for missing, invalid or stale tokens.
// Other errors come from loading the user.
func authenticate(c *gin.Context, tokens *service.TokenService, authService service.AuthService) (*domain.User, error) {
	authHeader := c.GetHeader("Authorization")
	scheme, tokenString, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenString) == "" {
		return nil, service.ErrUnauthenticated
	}

	claims, err := tokens.Verify(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, service.ErrUnauthenticated
	}

	user, err := authService.Profile(c.Request.Context(), claims.UserObjectID())
	if errors.Is(err, service.ErrUserNotFound) {
		return nil, service.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load caller: %w", err)
	}
	return user, nil
}

func setCaller(c *gin.Context, user *domain.User) {
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextUserRoleKey, user.Role)
	c.Set(ContextUserKey, user)
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Message: message, RequestID: requestIDFrom(c)})
}

// getUserRoleFromContext returns the role set by Authenticate.
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// getCurrentUser returns the user loaded by Authenticate.
func getCurrentUser(c *gin.Context) (*domain.User, error) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, errors.New("user not found in context")
	}
	user, ok := raw.(*domain.User)
	if !ok {
		return nil, errors.New("invalid user type in context")
	}
	return user, nil
}

// actorFromContext describes the caller for service-level ownership checks.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	user, err := getCurrentUser(c)
	if err != nil {
		return service.Actor{}, false
	}
	return service.Actor{UserID: user.ID, Role: user.Role}, true
}

// RequestID propagates X-Request-Id, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(ContextRequestIDKey, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestIDFrom(c)),
		}
		if id, ok := c.Get(ContextUserIDKey); ok {
			fields = append(fields, zap.Any("user_id", id))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}

// Recovery turns panics into a logged 500 with the standard envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestIDFrom(c)))
		abortWithError(c, http.StatusInternalServerError, "Server error")
	})
}

func requestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextRequestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return c.GetHeader(requestIDHeader)
}
