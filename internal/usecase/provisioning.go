package usecase

import (
	"context"
	"errors"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/compensation"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/security"
)

// provisioner creates a principal together with its application records. The
// profile is written synchronously; any failed step removes what the earlier
// steps created.
type provisioner struct {
	idp      domain.IdentityProvider
	profiles domain.ProfileRepository
	infos    domain.CandidateInfoRepository
	audit    *security.AuditLogger
}

func (p *provisioner) provision(ctx context.Context, actorID string, in domain.NewUserInput, selfService bool) (*domain.Profile, error) {
	var principal *domain.Principal
	var profile *domain.Profile

	createPrincipal := func(ctx context.Context, s *compensation.Stack) error {
		var err error
		if selfService {
			principal, err = p.idp.SignUp(ctx, in.Email, in.Password)
		} else {
			principal, err = p.idp.CreateUser(ctx, in.Email, in.Password, in.Role)
		}
		if err != nil {
			return err
		}
		id := principal.ID
		s.Push("principal", func(ctx context.Context) error { return p.idp.DeleteUser(ctx, id) })
		return nil
	}

	createProfile := func(ctx context.Context, s *compensation.Stack) error {
		if in.Role == domain.RoleCandidate {
			profile = domain.NewCandidateProfile(principal.ID, in.FullName, in.MiddlemanID)
		} else {
			profile = &domain.Profile{ID: principal.ID, FullName: in.FullName, Role: in.Role}
		}
		if err := p.profiles.Create(ctx, profile); err != nil {
			return err
		}
		id := profile.ID
		s.Push("profile", func(ctx context.Context) error { return p.profiles.Delete(ctx, id) })
		return nil
	}

	createInfo := func(ctx context.Context, s *compensation.Stack) error {
		if in.Role != domain.RoleCandidate || in.Info == nil {
			return nil
		}
		in.Info.ProfileID = profile.ID
		return p.infos.Upsert(ctx, in.Info)
	}

	err := compensation.Run(ctx, createPrincipal, createProfile, createInfo)
	if err == nil {
		p.audit.LogAction(ctx, security.EventUserCreated, actorID, profile.ID, requestID(ctx),
			map[string]any{"role": string(in.Role), "self_service": selfService})
		return profile, nil
	}

	if principal == nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, apperror.Conflict("An account with this email already exists")
		}
		return nil, apperror.Dependency("Could not create the account right now, please try again", err)
	}

	logger.Log.Error("User provisioning rolled back", "principal_id", principal.ID, "error", err)
	p.audit.LogAction(ctx, security.EventProvisioningRollback, actorID, principal.ID, requestID(ctx),
		map[string]any{"role": string(in.Role), "error": err.Error()})
	return nil, apperror.Internal(err)
}
