package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"fitcomp/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Domain errors keep their message; anything else becomes a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := StatusFor(err)

		var appErr *apperr.Error
		if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
			slog.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(ContextRequestID),
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(status, gin.H{"error": appErr.Message, "code": apperr.Label(err)})
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrInvalidState, apperr.ErrDuplicateEmail:
		return http.StatusConflict
	case apperr.ErrInvalidDateRange, apperr.ErrInvalidReference, apperr.ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
