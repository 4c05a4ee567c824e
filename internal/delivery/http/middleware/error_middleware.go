package middleware

import (
	"errors"
	"net/http"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		requestID := c.GetString(string(domain.KeyRequestID))

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}

		if appErr.Code >= http.StatusInternalServerError {
			// Never expose the cause; it stays in the server log
			logger.Log.Error("Request failed",
				"request_id", requestID,
				"path", c.Request.URL.Path,
				"status", appErr.Code,
				"error", err,
			)
			if appErr.Code == http.StatusInternalServerError {
				audit.Log(c.Request.Context(), security.AuditEvent{
					Event:     security.EventServerError,
					ActorID:   c.GetString(string(domain.KeyUserID)),
					IP:        c.ClientIP(),
					RequestID: requestID,
					Details:   map[string]any{"path": c.Request.URL.Path, "method": c.Request.Method},
				})
				response.Error(c, appErr.Code, "An unexpected error occurred. Please try again later.", nil)
				return
			}
		}

		response.Error(c, appErr.Code, appErr.Message, nil)
	}
}
