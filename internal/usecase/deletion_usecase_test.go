package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/internal/usecase"
	"go-recruitment-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDeletions() (domain.DeletionUsecase, *MockDeletionRepo, *MockPublisher) {
	repo := new(MockDeletionRepo)
	events := new(MockPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return usecase.NewDeletionUsecase(repo, events, testAudit()), repo, events
}

func TestSubmitDeletionRequest(t *testing.T) {
	ctx := context.Background()
	self := domain.Actor{ID: "c1", Role: domain.RoleCandidate}

	t.Run("wrong phrase echoes the required text", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		_, err := uc.Submit(ctx, self, "bilgilerimin tamamen silinmesini ve hesabımın kapatılmasını istiyorum.")
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		assert.Contains(t, err.Error(), domain.RequiredDeletionConfirmation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("surrounding whitespace is accepted", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		repo.On("HasPending", ctx, "c1").Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(r *domain.AccountDeletionRequest) bool {
			return r.ProfileID == "c1" && r.ConfirmationText == domain.RequiredDeletionConfirmation
		})).Return(nil)

		_, err := uc.Submit(ctx, self, "  "+domain.RequiredDeletionConfirmation+"\n")
		assert.NoError(t, err)
	})

	t.Run("second pending request conflicts", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		repo.On("HasPending", ctx, "c1").Return(true, nil)

		_, err := uc.Submit(ctx, self, domain.RequiredDeletionConfirmation)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("racing duplicate caught by the store", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		repo.On("HasPending", ctx, "c1").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicatePending)

		_, err := uc.Submit(ctx, self, domain.RequiredDeletionConfirmation)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})
}

func TestResolveDeletionRequest(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}

	t.Run("approve", func(t *testing.T) {
		uc, repo, events := newDeletions()
		repo.On("GetByID", ctx, "r1").Return(&domain.AccountDeletionRequest{ID: "r1", ProfileID: "c1", Status: domain.DeletionPending}, nil)
		repo.On("Approve", ctx, "r1", "a1", mock.Anything).Return(nil)

		req, err := uc.Resolve(ctx, admin, "r1", true)
		require.NoError(t, err)
		assert.Equal(t, domain.DeletionApproved, req.Status)
		assert.Equal(t, "a1", *req.ReviewedBy)
		events.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventDeletionResolved && e.Subject == "c1"
		}))
	})

	t.Run("already resolved", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		repo.On("GetByID", ctx, "r1").Return(&domain.AccountDeletionRequest{ID: "r1", Status: domain.DeletionRejected}, nil)

		_, err := uc.Resolve(ctx, admin, "r1", true)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		repo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		repo.On("GetByID", ctx, "r1").Return(&domain.AccountDeletionRequest{ID: "r1", Status: domain.DeletionPending}, nil)
		repo.On("Reject", ctx, "r1", "a1", mock.Anything).Return(domain.ErrStaleState)

		_, err := uc.Resolve(ctx, admin, "r1", false)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
	})

	t.Run("non admin", func(t *testing.T) {
		uc, _, _ := newDeletions()
		_, err := uc.Resolve(ctx, domain.Actor{ID: "k1", Role: domain.RoleConsultant}, "r1", true)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("missing", func(t *testing.T) {
		uc, repo, _ := newDeletions()
		repo.On("GetByID", ctx, "nope").Return(nil, nil)
		_, err := uc.Resolve(ctx, admin, "nope", true)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})
}
