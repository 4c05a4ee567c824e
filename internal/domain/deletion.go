package domain

import (
	"context"
	"strings"
	"time"
)

// RequiredDeletionConfirmation must be typed verbatim (after trimming) to file
// an account deletion request. It is part of the client contract.
const RequiredDeletionConfirmation = "Bilgilerimin tamamen silinmesini ve hesabımın kapatılmasını istiyorum."

type DeletionRequestStatus string

const (
	DeletionPending  DeletionRequestStatus = "PENDING"
	DeletionApproved DeletionRequestStatus = "APPROVED"
	DeletionRejected DeletionRequestStatus = "REJECTED"
)

type AccountDeletionRequest struct {
	ID               string                `json:"id"`
	ProfileID        string                `json:"profile_id"`
	ConfirmationText string                `json:"confirmation_text"`
	Status           DeletionRequestStatus `json:"status"`
	RequestedAt      time.Time             `json:"requested_at"`
	ReviewedAt       *time.Time            `json:"reviewed_at,omitempty"`
	ReviewedBy       *string               `json:"reviewed_by,omitempty"`

	// Joined for the admin list
	ProfileName *string `json:"profile_name,omitempty"`
	ProfileRole *Role   `json:"profile_role,omitempty"`
}

// ValidateDeletionConfirmation compares text with the required phrase after
// trimming surrounding whitespace. The comparison is case-sensitive.
func ValidateDeletionConfirmation(text string) error {
	if strings.TrimSpace(text) != RequiredDeletionConfirmation {
		return precondition(`Confirmation text does not match. Please type exactly: "` + RequiredDeletionConfirmation + `"`)
	}
	return nil
}

// CanResolveDeletion reports whether a request in status may still be decided
func CanResolveDeletion(status DeletionRequestStatus) bool {
	return status == DeletionPending
}

type DeletionFilter struct {
	Status DeletionRequestStatus `form:"status"`
	Page   int                   `form:"page"`
	Limit  int                   `form:"limit"`
}

type DeletionRepository interface {
	// Create fails with ErrDuplicatePending when the profile already has a PENDING request
	Create(ctx context.Context, req *AccountDeletionRequest) error
	GetByID(ctx context.Context, id string) (*AccountDeletionRequest, error)
	GetLatestByProfile(ctx context.Context, profileID string) (*AccountDeletionRequest, error)
	HasPending(ctx context.Context, profileID string) (bool, error)
	List(ctx context.Context, filter DeletionFilter) ([]AccountDeletionRequest, int64, error)
	// Approve marks the request APPROVED and soft-deletes the profile in one transaction
	Approve(ctx context.Context, id, reviewerID string, at time.Time) error
	Reject(ctx context.Context, id, reviewerID string, at time.Time) error
}

type DeletionUsecase interface {
	Submit(ctx context.Context, actor Actor, confirmationText string) (*AccountDeletionRequest, error)
	Mine(ctx context.Context, actor Actor) (*AccountDeletionRequest, error)
	List(ctx context.Context, actor Actor, filter DeletionFilter) (*PaginatedResult[AccountDeletionRequest], error)
	Resolve(ctx context.Context, actor Actor, requestID string, approve bool) (*AccountDeletionRequest, error)
}
