package response

import (
	"net/http"

	"go-recruitment-workflow/internal/domain"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(string(domain.KeyRequestID)),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: c.GetString(string(domain.KeyRequestID)),
	})
}

// Redirect answers with 302 and the target in the body for API clients
func Redirect(c *gin.Context, location, message string) {
	c.Header("Location", location)
	c.JSON(http.StatusFound, Response{
		Success:   false,
		Message:   message,
		Data:      gin.H{"redirect": location},
		RequestID: c.GetString(string(domain.KeyRequestID)),
	})
}
