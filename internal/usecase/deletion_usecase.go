package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"
)

type deletionUsecase struct {
	deletions domain.DeletionRepository
	events    domain.EventPublisher
	audit     *security.AuditLogger
	now       func() time.Time
}

func NewDeletionUsecase(deletions domain.DeletionRepository, events domain.EventPublisher, audit *security.AuditLogger) domain.DeletionUsecase {
	return &deletionUsecase{
		deletions: deletions,
		events:    events,
		audit:     audit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *deletionUsecase) Submit(ctx context.Context, actor domain.Actor, confirmationText string) (*domain.AccountDeletionRequest, error) {
	if err := domain.ValidateDeletionConfirmation(confirmationText); err != nil {
		return nil, translate(err, msgRequestNotFound)
	}

	pending, err := u.deletions.HasPending(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if pending {
		return nil, apperror.Conflict("You already have a pending deletion request")
	}

	req := &domain.AccountDeletionRequest{
		ProfileID:        actor.ID,
		ConfirmationText: domain.RequiredDeletionConfirmation,
	}
	if err := u.deletions.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicatePending) {
			return nil, apperror.Conflict("You already have a pending deletion request")
		}
		return nil, apperror.Internal(err)
	}

	u.audit.LogAction(ctx, security.EventDeletionRequested, actor.ID, actor.ID, requestID(ctx), map[string]any{"request_id": req.ID})
	return req, nil
}

// Mine returns the caller's latest request, or nil when it never filed one
func (u *deletionUsecase) Mine(ctx context.Context, actor domain.Actor) (*domain.AccountDeletionRequest, error) {
	req, err := u.deletions.GetLatestByProfile(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return req, nil
}

func (u *deletionUsecase) List(ctx context.Context, actor domain.Actor, filter domain.DeletionFilter) (*domain.PaginatedResult[domain.AccountDeletionRequest], error) {
	if !domain.CapabilitiesOf(actor.Role).ResolveDeletions {
		return nil, apperror.Forbidden("Only admins can review deletion requests")
	}
	switch filter.Status {
	case "", domain.DeletionPending, domain.DeletionApproved, domain.DeletionRejected:
	default:
		return nil, apperror.BadRequest("Unknown request status: " + string(filter.Status))
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := u.deletions.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return paginate(items, total, filter.Page, filter.Limit), nil
}

// Resolve approves or rejects a PENDING request. Approval soft-deletes the
// requester in the same transaction.
func (u *deletionUsecase) Resolve(ctx context.Context, actor domain.Actor, id string, approve bool) (*domain.AccountDeletionRequest, error) {
	if !domain.CapabilitiesOf(actor.Role).ResolveDeletions {
		return nil, apperror.Forbidden("Only admins can review deletion requests")
	}

	req, err := u.deletions.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if req == nil {
		return nil, apperror.NotFound(msgRequestNotFound)
	}
	if !domain.CanResolveDeletion(req.Status) {
		return nil, apperror.Precondition("This request has already been " + strings.ToLower(string(req.Status)))
	}

	at := u.now()
	event := security.EventDeletionRejected
	if approve {
		event = security.EventDeletionApproved
		err = u.deletions.Approve(ctx, req.ID, actor.ID, at)
	} else {
		err = u.deletions.Reject(ctx, req.ID, actor.ID, at)
	}
	if errors.Is(err, domain.ErrStaleState) {
		return nil, apperror.Precondition("This request has already been resolved")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	req.Status = domain.DeletionRejected
	if approve {
		req.Status = domain.DeletionApproved
	}
	reviewer := actor.ID
	req.ReviewedAt = &at
	req.ReviewedBy = &reviewer

	u.audit.LogAction(ctx, event, actor.ID, req.ProfileID, requestID(ctx), map[string]any{"request_id": req.ID})
	afterCommit("event publish", u.events.Publish(ctx, domain.Event{
		Type:    domain.EventDeletionResolved,
		Subject: req.ProfileID,
		ActorID: actor.ID,
		Data:    map[string]any{"request_id": req.ID, "status": string(req.Status)},
	}), "request_id", req.ID)

	return req, nil
}
