package usecase

import (
	"context"
	"strings"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/export"
	"go-recruitment-workflow/pkg/security"
)

type applicationUsecase struct {
	profiles     domain.ProfileRepository
	infos        domain.CandidateInfoRepository
	documents    domain.DocumentRepository
	applications domain.ApplicationRepository
	idp          domain.IdentityProvider
	events       domain.EventPublisher
	notifier     domain.Notifier
	audit        *security.AuditLogger
}

func NewApplicationUsecase(
	profiles domain.ProfileRepository,
	infos domain.CandidateInfoRepository,
	documents domain.DocumentRepository,
	applications domain.ApplicationRepository,
	idp domain.IdentityProvider,
	events domain.EventPublisher,
	notifier domain.Notifier,
	audit *security.AuditLogger,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		profiles:     profiles,
		infos:        infos,
		documents:    documents,
		applications: applications,
		idp:          idp,
		events:       events,
		notifier:     notifier,
		audit:        audit,
	}
}

// Decide applies a reviewer action. Ownership and the state machine are
// evaluated inside the repository transaction against locked state.
func (u *applicationUsecase) Decide(ctx context.Context, actor domain.Actor, candidateID string, action domain.ApplicationAction, reason string) (*domain.Decision, error) {
	if !actor.Role.Can(action) {
		return nil, apperror.Forbidden("Your role cannot take this action")
	}
	reason = strings.TrimSpace(reason)

	decide := func(candidate *domain.Profile, docs []domain.Document) (domain.ApplicationStatus, error) {
		if !domain.CanReadCandidate(actor, candidate) {
			return "", domain.ErrNotFound
		}
		return domain.EvaluateTransition(candidate.Status(), action, domain.TransitionInput{
			Docs:   domain.Summarize(docs),
			Reason: reason,
		})
	}

	decision, err := u.applications.Transition(ctx, candidateID, actor.ID, action, strPtr(reason), decide)
	if err != nil {
		return nil, translate(err, msgCandidateNotFound)
	}

	u.audit.LogAction(ctx, security.EventApplicationDecision, actor.ID, candidateID, requestID(ctx), map[string]any{
		"action": string(action),
		"from":   string(decision.FromStatus),
		"to":     string(decision.ToStatus),
	})
	afterCommit("event publish", u.events.Publish(ctx, domain.Event{
		Type:    domain.EventApplicationStatusChanged,
		Subject: candidateID,
		ActorID: actor.ID,
		Data: map[string]any{
			"decision_id": decision.ID,
			"action":      string(action),
			"from_status": string(decision.FromStatus),
			"to_status":   string(decision.ToStatus),
		},
	}), "candidate_id", candidateID)
	afterCommit("status email", u.notify(ctx, candidateID, decision), "candidate_id", candidateID)

	return decision, nil
}

func (u *applicationUsecase) notify(ctx context.Context, candidateID string, decision *domain.Decision) error {
	p, err := u.profiles.GetByID(ctx, candidateID)
	if err != nil || p == nil {
		return err
	}

	var to string
	info, err := u.infos.GetByProfileID(ctx, candidateID)
	if err != nil {
		return err
	}
	if info != nil && info.Email != nil {
		to = *info.Email
	}
	if to == "" {
		principal, err := u.idp.GetUser(ctx, candidateID)
		if err != nil {
			return err
		}
		if principal != nil {
			to = principal.Email
		}
	}

	n := domain.StatusNotification{To: to, CandidateName: p.FullName, Status: decision.ToStatus}
	if decision.Reason != nil {
		n.Reason = *decision.Reason
	}
	return u.notifier.NotifyStatusChange(ctx, n)
}

// scope restricts a filter to what actor may list
func scope(actor domain.Actor, filter *domain.ApplicationFilter) error {
	switch actor.Role {
	case domain.RoleConsultant, domain.RoleAdmin:
		return nil
	case domain.RoleMiddleman:
		filter.MiddlemanID = actor.ID
		return nil
	}
	return apperror.Forbidden("Access denied")
}

func (u *applicationUsecase) List(ctx context.Context, actor domain.Actor, filter domain.ApplicationFilter) (*domain.PaginatedResult[domain.ApplicationSummary], error) {
	if err := scope(actor, &filter); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.BadRequest("Unknown application status: " + string(filter.Status))
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := u.applications.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return paginate(items, total, filter.Page, filter.Limit), nil
}

func (u *applicationUsecase) Detail(ctx context.Context, actor domain.Actor, candidateID string) (*domain.ApplicationDetail, error) {
	p, err := loadCandidate(ctx, u.profiles, actor, candidateID)
	if err != nil {
		return nil, err
	}
	info, err := u.infos.GetByProfileID(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	docs, err := u.documents.ListByProfile(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	history, err := u.applications.History(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	summary := domain.Summarize(docs)
	return &domain.ApplicationDetail{
		Profile:          p,
		Info:             info,
		Documents:        docs,
		Summary:          summary,
		AvailableActions: domain.AvailableActions(actor.Role, p.Status(), summary),
		History:          history,
	}, nil
}

// Export renders every matching application, ignoring pagination
func (u *applicationUsecase) Export(ctx context.Context, actor domain.Actor, filter domain.ApplicationFilter) ([]byte, error) {
	if len(domain.CapabilitiesOf(actor.Role).ApplicationActions) == 0 {
		return nil, apperror.Forbidden("Your role cannot export applications")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.BadRequest("Unknown application status: " + string(filter.Status))
	}
	filter.Page, filter.Limit = 1, 0

	items, _, err := u.applications.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	data, err := export.ApplicationsXLSX(items)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.audit.LogAction(ctx, security.EventDataExport, actor.ID, "", requestID(ctx), map[string]any{
		"rows":   len(items),
		"status": string(filter.Status),
	})
	return data, nil
}

func (u *applicationUsecase) Stats(ctx context.Context, actor domain.Actor) (domain.StatusCounts, error) {
	var filter domain.ApplicationFilter
	if err := scope(actor, &filter); err != nil {
		return nil, err
	}
	counts, err := u.applications.CountByStatus(ctx, filter.MiddlemanID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return counts, nil
}
