package usecase

import (
	"context"
	"strings"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"
)

type adminUsecase struct {
	profiles     domain.ProfileRepository
	documents    domain.DocumentRepository
	applications domain.ApplicationRepository
	deletions    domain.DeletionRepository
	candidates   *candidateUsecase
	provisioner  *provisioner
	audit        *security.AuditLogger
}

func NewAdminUsecase(
	profiles domain.ProfileRepository,
	infos domain.CandidateInfoRepository,
	documents domain.DocumentRepository,
	applications domain.ApplicationRepository,
	deletions domain.DeletionRepository,
	idp domain.IdentityProvider,
	audit *security.AuditLogger,
) domain.AdminUsecase {
	p := &provisioner{idp: idp, profiles: profiles, infos: infos, audit: audit}
	return &adminUsecase{
		profiles:     profiles,
		documents:    documents,
		applications: applications,
		deletions:    deletions,
		candidates:   &candidateUsecase{profiles: profiles, infos: infos, documents: documents, provisioner: p, audit: audit},
		provisioner:  p,
		audit:        audit,
	}
}

func requireAdmin(actor domain.Actor) error {
	if !domain.CapabilitiesOf(actor.Role).ManageUsers {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

// Stats returns dashboard statistics
func (u *adminUsecase) Stats(ctx context.Context, actor domain.Actor) (*domain.AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	byRole, err := u.profiles.CountByRole(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	apps, err := u.applications.CountByStatus(ctx, "")
	if err != nil {
		return nil, apperror.Internal(err)
	}
	_, pendingDocs, err := u.documents.ListPending(ctx, 1, 1)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	_, pendingDeletions, err := u.deletions.List(ctx, domain.DeletionFilter{Status: domain.DeletionPending, Page: 1, Limit: 1})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.AdminStats{
		UsersByRole:        byRole,
		Applications:       apps,
		PendingDocuments:   pendingDocs,
		PendingDeletionReq: pendingDeletions,
	}, nil
}

// ListUsers returns paginated users
func (u *adminUsecase) ListUsers(ctx context.Context, actor domain.Actor, filter domain.ProfileFilter) (*domain.PaginatedResult[domain.Profile], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperror.BadRequest("Unknown role: " + string(filter.Role))
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	users, total, err := u.profiles.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return paginate(users, total, filter.Page, filter.Limit), nil
}

// CreateUser provisions an account of any role
func (u *adminUsecase) CreateUser(ctx context.Context, actor domain.Actor, in domain.NewUserInput) (*domain.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, apperror.BadRequest("Unknown role: " + string(in.Role))
	}
	if in.Role == domain.RoleCandidate {
		return u.candidates.Create(ctx, actor, in)
	}

	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return nil, apperror.BadRequest("Full name is required")
	}
	in.MiddlemanID = nil
	in.Info = nil
	return u.provisioner.provision(ctx, actor.ID, in, false)
}

// ChangeRole moves a user to another role. Candidates keep or gain an
// application status; every other role has none.
func (u *adminUsecase) ChangeRole(ctx context.Context, actor domain.Actor, userID string, role domain.Role) (*domain.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperror.BadRequest("Unknown role: " + string(role))
	}
	if userID == actor.ID {
		return nil, apperror.Precondition("You cannot change your own role")
	}

	p, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if p == nil || p.IsDeleted() {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	if p.Role == role {
		return p, nil
	}
	if p.Role == domain.RoleMiddleman {
		linked, err := u.profiles.ListByMiddleman(ctx, userID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if err := domain.ValidateRoleChange(p.Role, role, len(linked)); err != nil {
			return nil, translate(err, msgUserNotFound)
		}
	}

	var status *domain.ApplicationStatus
	if role == domain.RoleCandidate {
		s := p.Status()
		status = &s
	}
	if err := u.profiles.UpdateRole(ctx, userID, role, status); err != nil {
		return nil, translate(err, msgUserNotFound)
	}

	u.audit.LogAction(ctx, security.EventRoleModified, actor.ID, userID, requestID(ctx), map[string]any{
		"from": string(p.Role),
		"to":   string(role),
	})

	p.Role = role
	p.ApplicationStatus = status
	if role != domain.RoleCandidate {
		p.MiddlemanID = nil
	}
	return p, nil
}
