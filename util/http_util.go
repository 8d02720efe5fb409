// util/http_util.go
package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("correlationID", c.GetString("correlationID")))
	c.JSON(code, gin.H{"error": message})
}

// StatusForError maps a sentinel error to its HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, echo_errors.ErrSessionNotFound),
		errors.Is(err, echo_errors.ErrResourceNotRecognized):
		return http.StatusNotFound
	case errors.Is(err, echo_errors.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, echo_errors.ErrMalformedRequest),
		errors.Is(err, echo_errors.ErrActionNotSupported),
		errors.Is(err, echo_errors.ErrInvalidVerification),
		errors.Is(err, echo_errors.ErrInvalidSessionData),
		errors.Is(err, echo_errors.ErrInvalidPagination),
		errors.Is(err, echo_errors.ErrInvalidSearchCriteria):
		return http.StatusBadRequest
	case errors.Is(err, echo_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, echo_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, echo_errors.ErrRoleDenied),
		errors.Is(err, echo_errors.ErrRoleNotAuthorized),
		errors.Is(err, echo_errors.ErrConditionViolation),
		errors.Is(err, echo_errors.ErrRiskTooHigh):
		return http.StatusForbidden
	case errors.Is(err, echo_errors.ErrAuditSinkUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", nil
	}
	id, ok := userID.(string)
	if !ok {
		return "", echo_errors.ErrUnauthorized
	}
	return id, nil
}
