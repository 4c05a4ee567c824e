package v1_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go-recruitment-workflow/internal/delivery/http/middleware"
	v1 "go-recruitment-workflow/internal/delivery/http/v1"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockDeletions struct {
	mock.Mock
}

func (m *MockDeletions) Submit(ctx context.Context, actor domain.Actor, text string) (*domain.AccountDeletionRequest, error) {
	args := m.Called(actor, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountDeletionRequest), args.Error(1)
}

func (m *MockDeletions) Mine(ctx context.Context, actor domain.Actor) (*domain.AccountDeletionRequest, error) {
	return nil, nil
}

func (m *MockDeletions) List(ctx context.Context, actor domain.Actor, filter domain.DeletionFilter) (*domain.PaginatedResult[domain.AccountDeletionRequest], error) {
	return nil, nil
}

func (m *MockDeletions) Resolve(ctx context.Context, actor domain.Actor, id string, approve bool) (*domain.AccountDeletionRequest, error) {
	return nil, nil
}

type MockApplications struct {
	mock.Mock
}

func (m *MockApplications) Decide(ctx context.Context, actor domain.Actor, candidateID string, action domain.ApplicationAction, reason string) (*domain.Decision, error) {
	args := m.Called(actor, candidateID, action, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Decision), args.Error(1)
}

func (m *MockApplications) List(ctx context.Context, actor domain.Actor, filter domain.ApplicationFilter) (*domain.PaginatedResult[domain.ApplicationSummary], error) {
	args := m.Called(actor, filter)
	return args.Get(0).(*domain.PaginatedResult[domain.ApplicationSummary]), args.Error(1)
}

func (m *MockApplications) Detail(ctx context.Context, actor domain.Actor, candidateID string) (*domain.ApplicationDetail, error) {
	return nil, nil
}

func (m *MockApplications) Export(ctx context.Context, actor domain.Actor, filter domain.ApplicationFilter) ([]byte, error) {
	args := m.Called(actor, filter)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockApplications) Stats(ctx context.Context, actor domain.Actor) (domain.StatusCounts, error) {
	return nil, nil
}

// testRouter stands in for the gate with a fixed caller
func testRouter(caller domain.Actor) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(security.NewAuditLogger(zap.NewNop(), "test", "test")))
	r.Use(func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), caller.ID)
		c.Set(string(domain.KeyUserRole), caller.Role)
		c.Next()
	})
	return r, r.Group("")
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeletionRequestEndpoint(t *testing.T) {
	self := domain.Actor{ID: "c1", Role: domain.RoleCandidate}

	t.Run("missing confirmation", func(t *testing.T) {
		r, g := testRouter(self)
		v1.NewProfileHandler(g, nil, new(MockDeletions))

		w := send(r, http.MethodPost, "/profile/deletion-request", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Validation failed")
	})

	t.Run("mismatch surfaces as 422", func(t *testing.T) {
		r, g := testRouter(self)
		deletions := new(MockDeletions)
		deletions.On("Submit", self, "delete me").Return(nil, apperror.Precondition("Confirmation text does not match"))
		v1.NewProfileHandler(g, nil, deletions)

		w := send(r, http.MethodPost, "/profile/deletion-request", `{"confirmation_text":"delete me"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Confirmation text does not match")
	})

	t.Run("accepted", func(t *testing.T) {
		r, g := testRouter(self)
		deletions := new(MockDeletions)
		deletions.On("Submit", self, domain.RequiredDeletionConfirmation).
			Return(&domain.AccountDeletionRequest{ID: "r1", ProfileID: "c1", Status: domain.DeletionPending}, nil)
		v1.NewProfileHandler(g, nil, deletions)

		w := send(r, http.MethodPost, "/profile/deletion-request", `{"confirmation_text":"`+domain.RequiredDeletionConfirmation+`"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestApplicationActionEndpoints(t *testing.T) {
	consultant := domain.Actor{ID: "k1", Role: domain.RoleConsultant}

	t.Run("reject carries the reason", func(t *testing.T) {
		r, g := testRouter(consultant)
		apps := new(MockApplications)
		apps.On("Decide", consultant, "c1", domain.ActionReject, "missing diploma").
			Return(&domain.Decision{ToStatus: domain.StatusRejected}, nil)
		v1.NewApplicationHandler(g, apps, nil)

		w := send(r, http.MethodPost, "/applications/c1/reject", `{"reason":"missing diploma"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		apps.AssertExpectations(t)
	})

	t.Run("approve needs no body", func(t *testing.T) {
		r, g := testRouter(consultant)
		apps := new(MockApplications)
		apps.On("Decide", consultant, "c1", domain.ActionApprove, "").
			Return(nil, apperror.Precondition("All documents must be approved first"))
		v1.NewApplicationHandler(g, apps, nil)

		w := send(r, http.MethodPost, "/applications/c1/approve", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "All documents must be approved first")
	})

	t.Run("export streams a workbook", func(t *testing.T) {
		r, g := testRouter(consultant)
		apps := new(MockApplications)
		apps.On("Export", consultant, domain.ApplicationFilter{Status: domain.StatusApproved}).Return([]byte("PK"), nil)
		v1.NewApplicationHandler(g, apps, nil)

		w := send(r, http.MethodGet, "/applications/export?status=APPROVED", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
		assert.Equal(t, "PK", w.Body.String())
	})

	t.Run("status filter is case-sensitive", func(t *testing.T) {
		r, g := testRouter(consultant)
		apps := new(MockApplications)
		apps.On("List", consultant, domain.ApplicationFilter{Status: "evaluation"}).
			Return((*domain.PaginatedResult[domain.ApplicationSummary])(nil), apperror.BadRequest("Unknown application status: evaluation"))
		v1.NewApplicationHandler(g, apps, nil)

		w := send(r, http.MethodGet, "/applications?status=evaluation", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		apps.AssertExpectations(t)
	})

	t.Run("unexpected failures stay generic", func(t *testing.T) {
		r, g := testRouter(consultant)
		apps := new(MockApplications)
		apps.On("Decide", consultant, "c1", domain.ActionBeginEvaluation, "").Return(nil, assert.AnError)
		v1.NewApplicationHandler(g, apps, nil)

		w := send(r, http.MethodPost, "/applications/c1/begin-evaluation", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

func TestUploadRejectsUnknownDocumentType(t *testing.T) {
	self := domain.Actor{ID: "c1", Role: domain.RoleCandidate}

	for _, docType := range []string{"cv", "Cv", " CV", ""} {
		t.Run(docType, func(t *testing.T) {
			r, g := testRouter(self)
			v1.NewCandidateHandler(g, nil, nil, nil)

			form := url.Values{"document_type": {docType}}
			req := httptest.NewRequest(http.MethodPost, "/dashboard/candidate/documents", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Unknown document type")
		})
	}
}
