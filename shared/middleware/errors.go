package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
)

const genericFailure = "Something went wrong, please try again later"

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as {message, error}. Server errors are logged
// with their cause and answered with a generic message.
func RespondWithAppError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := apperr.Message(err, genericFailure)

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(ctxRequestID),
			"error", err,
		)
		message = genericFailure
	}

	c.JSON(status, gin.H{
		"message": message,
		"error":   apperr.Code(err),
	})
}
