package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/internal/usecase"
	"go-recruitment-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newIdentity() (domain.IdentityUsecase, *MockProfileRepo, *MockInfoRepo, *MockIdentityProvider) {
	profiles := new(MockProfileRepo)
	infos := new(MockInfoRepo)
	idp := new(MockIdentityProvider)
	return usecase.NewIdentityUsecase(profiles, infos, idp, testAudit()), profiles, infos, idp
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("no profile yet", func(t *testing.T) {
		uc, profiles, _, _ := newIdentity()
		profiles.On("GetByID", ctx, "p1").Return(nil, nil)

		p, err := uc.Resolve(ctx, "p1")
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("deleted account", func(t *testing.T) {
		uc, profiles, _, _ := newIdentity()
		now := time.Now()
		profiles.On("GetByID", ctx, "p1").Return(&domain.Profile{ID: "p1", Role: domain.RoleCandidate, DeletedAt: &now}, nil)

		_, err := uc.Resolve(ctx, "p1")
		assert.ErrorIs(t, err, domain.ErrAccountDeleted)
	})

	t.Run("store failure is not a missing profile", func(t *testing.T) {
		uc, profiles, _, _ := newIdentity()
		profiles.On("GetByID", ctx, "p1").Return(nil, errors.New("connection refused"))

		p, err := uc.Resolve(ctx, "p1")
		assert.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("role", func(t *testing.T) {
		uc, profiles, _, _ := newIdentity()
		profiles.On("GetByID", ctx, "p1").Return(&domain.Profile{ID: "p1", Role: domain.RoleConsultant}, nil)

		role, err := uc.ResolveRole(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleConsultant, *role)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the default route of the role", func(t *testing.T) {
		uc, profiles, _, idp := newIdentity()
		idp.On("PasswordLogin", ctx, "a@b.co", "pw").Return(&domain.Principal{ID: "p1"}, "tok", 3600, nil)
		profiles.On("GetByID", ctx, "p1").Return(&domain.Profile{ID: "p1", Role: domain.RoleMiddleman}, nil)

		s, err := uc.Login(ctx, "a@b.co", "pw")
		require.NoError(t, err)
		assert.Equal(t, "tok", s.AccessToken)
		assert.Equal(t, "/dashboard/middleman", s.DefaultRoute)
	})

	t.Run("closed account is refused", func(t *testing.T) {
		uc, profiles, _, idp := newIdentity()
		now := time.Now()
		idp.On("PasswordLogin", ctx, "a@b.co", "pw").Return(&domain.Principal{ID: "p1"}, "tok", 3600, nil)
		profiles.On("GetByID", ctx, "p1").Return(&domain.Profile{ID: "p1", Role: domain.RoleCandidate, DeletedAt: &now}, nil)

		_, err := uc.Login(ctx, "a@b.co", "pw")
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
		assert.ErrorIs(t, err, domain.ErrAccountDeleted)
	})

	t.Run("wrong password", func(t *testing.T) {
		uc, _, _, idp := newIdentity()
		idp.On("PasswordLogin", ctx, "a@b.co", "bad").Return(nil, "", 0, domain.ErrInvalidCredentials)

		_, err := uc.Login(ctx, "a@b.co", "bad")
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("principal without profile goes to setup", func(t *testing.T) {
		uc, profiles, _, idp := newIdentity()
		idp.On("PasswordLogin", ctx, "a@b.co", "pw").Return(&domain.Principal{ID: "p1"}, "tok", 3600, nil)
		profiles.On("GetByID", ctx, "p1").Return(nil, nil)

		s, err := uc.Login(ctx, "a@b.co", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.SetupRoute, s.DefaultRoute)
	})
}

func TestRegisterProvisionsSynchronously(t *testing.T) {
	ctx := context.Background()
	uc, profiles, _, idp := newIdentity()

	idp.On("SignUp", ctx, "new@b.co", "secret123").Return(&domain.Principal{ID: "p9", Email: "new@b.co"}, nil)
	profiles.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.ID == "p9" && p.Role == domain.RoleCandidate && p.Status() == domain.StatusNewApplication
	})).Return(nil)

	p, err := uc.Register(ctx, domain.RegisterInput{Email: "new@b.co", Password: "secret123", FullName: " Ayse Kaya "})
	require.NoError(t, err)
	assert.Equal(t, "Ayse Kaya", p.FullName)
	idp.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestRegisterRollsBackPrincipal(t *testing.T) {
	ctx := context.Background()
	uc, profiles, _, idp := newIdentity()

	idp.On("SignUp", ctx, "new@b.co", "secret123").Return(&domain.Principal{ID: "p9"}, nil)
	profiles.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
	idp.On("DeleteUser", mock.Anything, "p9").Return(nil)

	_, err := uc.Register(ctx, domain.RegisterInput{Email: "new@b.co", Password: "secret123", FullName: "Ayse"})
	assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(err))
	idp.AssertCalled(t, "DeleteUser", mock.Anything, "p9")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc, profiles, _, idp := newIdentity()
	idp.On("SignUp", ctx, "dup@b.co", "secret123").Return(nil, domain.ErrEmailTaken)

	_, err := uc.Register(ctx, domain.RegisterInput{Email: "dup@b.co", Password: "secret123", FullName: "Ayse"})
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
