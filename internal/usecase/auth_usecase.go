package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"
)

type identityUsecase struct {
	profiles    domain.ProfileRepository
	idp         domain.IdentityProvider
	provisioner *provisioner
	audit       *security.AuditLogger
}

func NewIdentityUsecase(
	profiles domain.ProfileRepository,
	infos domain.CandidateInfoRepository,
	idp domain.IdentityProvider,
	audit *security.AuditLogger,
) domain.IdentityUsecase {
	return &identityUsecase{
		profiles:    profiles,
		idp:         idp,
		provisioner: &provisioner{idp: idp, profiles: profiles, infos: infos, audit: audit},
		audit:       audit,
	}
}

// Resolve maps a principal to its profile. A principal without a profile
// yields nil, nil; a closed account yields domain.ErrAccountDeleted.
func (u *identityUsecase) Resolve(ctx context.Context, principalID string) (*domain.Profile, error) {
	p, err := u.profiles.GetByID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	if p.IsDeleted() {
		return nil, domain.ErrAccountDeleted
	}
	return p, nil
}

func (u *identityUsecase) ResolveRole(ctx context.Context, principalID string) (*domain.Role, error) {
	p, err := u.Resolve(ctx, principalID)
	if p == nil {
		return nil, err
	}
	role := p.Role
	return &role, nil
}

// Login verifies credentials with the identity provider and refuses closed
// accounts even though the provider still accepts them.
func (u *identityUsecase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Email and password are required")
	}

	principal, token, expiresIn, err := u.idp.PasswordLogin(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, apperror.New(http.StatusUnauthorized, "Invalid email or password", err)
		}
		return nil, apperror.Dependency("Sign-in is temporarily unavailable, please try again", err)
	}

	profile, err := u.profiles.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	session := &domain.Session{AccessToken: token, ExpiresIn: expiresIn, Profile: profile}
	switch {
	case profile == nil:
		session.DefaultRoute = domain.SetupRoute
	case profile.IsDeleted():
		u.audit.Log(ctx, security.AuditEvent{
			Event:        security.EventDeletedAccountUse,
			SubjectType:  "email",
			SubjectValue: security.MaskEmail(email),
			ActorID:      principal.ID,
			RequestID:    requestID(ctx),
		})
		return nil, apperror.New(http.StatusUnauthorized, "This account has been closed", domain.ErrAccountDeleted)
	default:
		session.DefaultRoute = domain.DefaultRoute(profile.Role)
	}
	return session, nil
}

// Register is candidate self-registration
func (u *identityUsecase) Register(ctx context.Context, in domain.RegisterInput) (*domain.Profile, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, apperror.BadRequest("Full name is required")
	}
	return u.provisioner.provision(ctx, "", domain.NewUserInput{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		FullName: fullName,
		Role:     domain.RoleCandidate,
	}, true)
}

func (u *identityUsecase) Me(ctx context.Context, principalID, email string) (*domain.Me, error) {
	p, err := u.Resolve(ctx, principalID)
	if err != nil {
		return nil, translate(err, msgUserNotFound)
	}
	if p == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	return &domain.Me{
		Profile:      p,
		Email:        email,
		DefaultRoute: domain.DefaultRoute(p.Role),
		Capabilities: domain.CapabilitiesOf(p.Role),
	}, nil
}

func (u *identityUsecase) UpdateFullName(ctx context.Context, principalID, fullName string) (*domain.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperror.BadRequest("Full name is required")
	}
	if err := u.profiles.UpdateFullName(ctx, principalID, fullName); err != nil {
		return nil, translate(err, msgUserNotFound)
	}
	p, err := u.profiles.GetByID(ctx, principalID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if p == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	return p, nil
}
