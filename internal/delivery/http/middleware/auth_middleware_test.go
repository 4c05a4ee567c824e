package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-recruitment-workflow/internal/delivery/http/middleware"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/auth"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "gate-secret"

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) Resolve(ctx context.Context, principalID string) (*domain.Profile, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockIdentity) ResolveRole(ctx context.Context, principalID string) (*domain.Role, error) {
	return nil, nil
}

func (m *MockIdentity) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return nil, nil
}

func (m *MockIdentity) Register(ctx context.Context, in domain.RegisterInput) (*domain.Profile, error) {
	return nil, nil
}

func (m *MockIdentity) Me(ctx context.Context, principalID, email string) (*domain.Me, error) {
	return nil, nil
}

func (m *MockIdentity) UpdateFullName(ctx context.Context, principalID, fullName string) (*domain.Profile, error) {
	return nil, nil
}

func token(t *testing.T, sub string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func gatedRouter(identity domain.IdentityUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	audit := security.NewAuditLogger(zap.NewNop(), "test", "test")
	session := middleware.SessionConfig{CookieName: "auth_token"}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Gate(auth.NewVerifier(secret, nil), identity, audit, session))

	ok := func(c *gin.Context) {
		role, _ := c.Get(string(domain.KeyUserRole))
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(string(domain.KeyUserID)), "role": role})
	}
	r.GET("/health", ok)
	r.GET("/dashboard/admin", ok)
	r.GET("/dashboard/candidate", ok)
	r.GET("/documents/review", ok)
	return r
}

func do(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGatePublicPathSkipsAuthentication(t *testing.T) {
	identity := new(MockIdentity)
	w := do(gatedRouter(identity), "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	identity.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	w := do(gatedRouter(new(MockIdentity)), "/dashboard/admin", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?redirect=%2Fdashboard%2Fadmin", w.Header().Get("Location"))
}

func TestGateRejectsForgedToken(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other"))
	require.NoError(t, err)

	w := do(gatedRouter(new(MockIdentity)), "/dashboard/admin", forged)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), domain.LoginRoute)
}

func TestGateRoutesByRole(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		path     string
		wantCode int
		wantLoc  string
	}{
		{"admin reaches admin dashboard", domain.RoleAdmin, "/dashboard/admin", http.StatusOK, ""},
		{"admin reaches review queue", domain.RoleAdmin, "/documents/review", http.StatusOK, ""},
		{"candidate sent home from admin", domain.RoleCandidate, "/dashboard/admin", http.StatusFound, "/dashboard/candidate"},
		{"middleman sent home from review", domain.RoleMiddleman, "/documents/review", http.StatusFound, "/dashboard/middleman"},
		{"consultant reaches review queue", domain.RoleConsultant, "/documents/review", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := new(MockIdentity)
			identity.On("Resolve", mock.Anything, "u1").Return(&domain.Profile{ID: "u1", Role: tt.role}, nil)

			w := do(gatedRouter(identity), tt.path, token(t, "u1"))
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			} else {
				assert.Contains(t, w.Body.String(), `"user":"u1"`)
			}
		})
	}
}

func TestGateWithoutProfileGoesToSetup(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("Resolve", mock.Anything, "u1").Return(nil, nil)

	w := do(gatedRouter(identity), "/dashboard/candidate", token(t, "u1"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, domain.SetupRoute, w.Header().Get("Location"))
}

func TestGateDeletedAccountClearsSession(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("Resolve", mock.Anything, "u1").Return(nil, domain.ErrAccountDeleted)

	w := do(gatedRouter(identity), "/dashboard/candidate", token(t, "u1"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?error=account_deleted", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "auth_token=;")
}

func TestGateStoreFailureIsUnavailable(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("Resolve", mock.Anything, "u1").Return(nil, assert.AnError)

	w := do(gatedRouter(identity), "/dashboard/candidate", token(t, "u1"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGateAcceptsSessionCookie(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("Resolve", mock.Anything, "u1").Return(&domain.Profile{ID: "u1", Role: domain.RoleCandidate}, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/candidate", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token(t, "u1")})
	w := httptest.NewRecorder()
	gatedRouter(identity).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"CANDIDATE"`)
}
