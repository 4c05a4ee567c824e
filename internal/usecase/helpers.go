package usecase

import (
	"context"
	"errors"
	"math"
	"net/http"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/logger"
)

const (
	msgCandidateNotFound = "Candidate not found"
	msgDocumentNotFound  = "Document not found"
	msgUserNotFound      = "User not found"
	msgRequestNotFound   = "Deletion request not found"

	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

func paginate[T any](data []T, total int64, page, limit int) *domain.PaginatedResult[T] {
	return &domain.PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// translate maps domain errors onto the HTTP error taxonomy. notFound is the
// single message used for missing and out-of-scope records alike.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var pe *domain.PreconditionError
	switch {
	case errors.As(err, &pe):
		return apperror.Precondition(pe.Message)
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, domain.ErrAccountDeleted):
		return apperror.New(http.StatusUnauthorized, "This account has been closed", err)
	}
	return apperror.Internal(err)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(domain.KeyRequestID).(string); ok {
		return id
	}
	return ""
}

// afterCommit runs a side effect whose failure must not undo a committed change
func afterCommit(what string, err error, attrs ...any) {
	if err != nil {
		logger.Log.Warn("Post-commit "+what+" failed", append(attrs, "error", err)...)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
