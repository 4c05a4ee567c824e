package v1

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/validation"

	"github.com/gin-gonic/gin"
)

// actor builds the caller identity the gate stored on the context
func actor(c *gin.Context) domain.Actor {
	a := domain.Actor{ID: c.GetString(string(domain.KeyUserID))}
	if v, ok := c.Get(string(domain.KeyUserRole)); ok {
		a.Role, _ = v.(domain.Role)
	}
	return a
}

// bindJSON reports validation failures as a 400 with one message per field
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", validation.FormatValidationErrors(err))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

// readUpload reads the multipart field into memory, at most maxBytes+1 bytes
// so oversize files are still detected by the upload policy.
func readUpload(c *gin.Context, field string, maxBytes int64) (*multipart.FileHeader, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, apperror.BadRequest("A file is required in the '" + field + "' field")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperror.BadRequest("The uploaded file could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, nil, apperror.BadRequest("The uploaded file could not be read")
	}
	return fh, data, nil
}
