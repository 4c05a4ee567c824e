package usecase

import (
	"context"
	"strings"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"
)

type candidateUsecase struct {
	profiles    domain.ProfileRepository
	infos       domain.CandidateInfoRepository
	documents   domain.DocumentRepository
	provisioner *provisioner
	audit       *security.AuditLogger
}

func NewCandidateUsecase(
	profiles domain.ProfileRepository,
	infos domain.CandidateInfoRepository,
	documents domain.DocumentRepository,
	idp domain.IdentityProvider,
	audit *security.AuditLogger,
) domain.CandidateUsecase {
	return &candidateUsecase{
		profiles:    profiles,
		infos:       infos,
		documents:   documents,
		provisioner: &provisioner{idp: idp, profiles: profiles, infos: infos, audit: audit},
		audit:       audit,
	}
}

// loadCandidate returns the candidate only when actor may see it
func loadCandidate(ctx context.Context, profiles domain.ProfileRepository, actor domain.Actor, candidateID string) (*domain.Profile, error) {
	p, err := profiles.GetByID(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if p == nil || !domain.CanReadCandidate(actor, p) {
		return nil, apperror.NotFound(msgCandidateNotFound)
	}
	return p, nil
}

func (u *candidateUsecase) List(ctx context.Context, actor domain.Actor) ([]domain.Profile, error) {
	var (
		list []domain.Profile
		err  error
	)
	switch actor.Role {
	case domain.RoleMiddleman:
		list, err = u.profiles.ListByMiddleman(ctx, actor.ID)
	case domain.RoleConsultant, domain.RoleAdmin:
		list, _, err = u.profiles.List(ctx, domain.ProfileFilter{Role: domain.RoleCandidate})
	case domain.RoleCandidate:
		p, lookupErr := u.profiles.GetByID(ctx, actor.ID)
		if lookupErr != nil {
			return nil, apperror.Internal(lookupErr)
		}
		list = []domain.Profile{}
		if p != nil && domain.CanReadCandidate(actor, p) {
			list = append(list, *p)
		}
		return list, nil
	default:
		return nil, apperror.Forbidden("Access denied")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func (u *candidateUsecase) Get(ctx context.Context, actor domain.Actor, candidateID string) (*domain.CandidateView, error) {
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
	return &domain.CandidateView{
		Profile:  p,
		Info:     info,
		Summary:  domain.Summarize(docs),
		Editable: domain.CanEditCandidate(actor, p),
	}, nil
}

func (u *candidateUsecase) UpsertInfo(ctx context.Context, actor domain.Actor, candidateID string, info *domain.CandidateInfo) (*domain.CandidateInfo, error) {
	p, err := loadCandidate(ctx, u.profiles, actor, candidateID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEditCandidate(actor, p) {
		return nil, apperror.Precondition("Profile details can only be changed while the application is new or an update was requested (current status: " + string(p.Status()) + ")")
	}

	info.ProfileID = candidateID
	if err := u.infos.Upsert(ctx, info); err != nil {
		return nil, apperror.Internal(err)
	}
	return info, nil
}

// Create provisions a candidate on behalf of a middleman, linked to it
func (u *candidateUsecase) Create(ctx context.Context, actor domain.Actor, in domain.NewUserInput) (*domain.Profile, error) {
	switch actor.Role {
	case domain.RoleMiddleman:
		id := actor.ID
		in.MiddlemanID = &id
	case domain.RoleAdmin:
		if err := u.requireMiddleman(ctx, in.MiddlemanID); err != nil {
			return nil, err
		}
	default:
		return nil, apperror.Forbidden("Only middlemen can register candidates")
	}

	in.Role = domain.RoleCandidate
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return nil, apperror.BadRequest("Full name is required")
	}
	return u.provisioner.provision(ctx, actor.ID, in, false)
}

func (u *candidateUsecase) AssignMiddleman(ctx context.Context, actor domain.Actor, candidateID string, middlemanID *string) error {
	if !domain.CapabilitiesOf(actor.Role).ManageUsers {
		return apperror.Forbidden("Only admins can assign middlemen")
	}
	if _, err := loadCandidate(ctx, u.profiles, actor, candidateID); err != nil {
		return err
	}
	if err := u.requireMiddleman(ctx, middlemanID); err != nil {
		return err
	}
	if err := u.profiles.SetMiddleman(ctx, candidateID, middlemanID); err != nil {
		return translate(err, msgCandidateNotFound)
	}

	details := map[string]any{"middleman_id": nil}
	if middlemanID != nil {
		details["middleman_id"] = *middlemanID
	}
	u.audit.LogAction(ctx, security.EventMiddlemanAssigned, actor.ID, candidateID, requestID(ctx), details)
	return nil
}

// requireMiddleman accepts nil (no link) or the ID of a live MIDDLEMAN
func (u *candidateUsecase) requireMiddleman(ctx context.Context, middlemanID *string) error {
	if middlemanID == nil {
		return nil
	}
	m, err := u.profiles.GetByID(ctx, *middlemanID)
	if err != nil {
		return apperror.Internal(err)
	}
	if m == nil || m.IsDeleted() || m.Role != domain.RoleMiddleman {
		return apperror.Precondition("The selected user is not a middleman")
	}
	return nil
}
