package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-recruitment-workflow/internal/delivery/http/middleware"
	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/auth"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
)

// LoginGuard throttles repeated password failures per email
type LoginGuard interface {
	BlockedFor(ctx context.Context, email string) (time.Duration, error)
	RecordFailure(ctx context.Context, email, ip, userAgent, requestID string) (bool, error)
	Clear(ctx context.Context, email string) error
}

type AuthHandler struct {
	identity domain.IdentityUsecase
	verifier *auth.Verifier
	guard    LoginGuard
	audit    *security.AuditLogger
	session  middleware.SessionConfig
}

func NewAuthHandler(public *gin.RouterGroup, identity domain.IdentityUsecase, verifier *auth.Verifier, guard LoginGuard, audit *security.AuditLogger, session middleware.SessionConfig, limit gin.HandlerFunc) {
	handler := &AuthHandler{
		identity: identity,
		verifier: verifier,
		guard:    guard,
		audit:    audit,
		session:  session,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", limit, handler.Login)
		publicAuth.POST("/register", limit, handler.Register)
		publicAuth.POST("/logout", handler.Logout)
		publicAuth.GET("/setup", handler.Setup)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,min=2,max=100,valid_name,no_emoji"`
}

// Login godoc
// @Summary      User Login
// @Description  Password login against the identity provider. Sets the session cookie and returns the role's landing route.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Login Credentials"
// @Success      200    {object}  response.Response{data=domain.Session}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	requestID := c.GetString(string(domain.KeyRequestID))

	blocked, err := h.guard.BlockedFor(ctx, req.Email)
	if err != nil {
		logger.Log.Warn("Login throttle unavailable", "error", err)
	}
	if blocked > 0 {
		minutes := int(blocked.Minutes()) + 1
		c.Header("Retry-After", strconv.Itoa(int(blocked.Seconds())))
		c.Error(apperror.TooManyRequests(fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutes)))
		return
	}

	session, err := h.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			if _, ferr := h.guard.RecordFailure(ctx, req.Email, c.ClientIP(), c.Request.UserAgent(), requestID); ferr != nil {
				logger.Log.Warn("Failed to record login failure", "error", ferr)
			}
		}
		c.Error(err)
		return
	}

	if err := h.guard.Clear(ctx, req.Email); err != nil {
		logger.Log.Warn("Failed to reset login failures", "error", err)
	}
	h.audit.Log(ctx, security.AuditEvent{
		Event:        security.EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: security.MaskEmail(req.Email),
		IP:           c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		RequestID:    requestID,
	})

	middleware.SetSession(c, h.session, session.AccessToken, session.ExpiresIn)
	response.Success(c, http.StatusOK, "Login successful", session)
}

// Register godoc
// @Summary      Candidate self-registration
// @Description  Creates the principal and its CANDIDATE profile in one step. The principal is removed again when the profile cannot be created.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      201    {object}  response.Response{data=domain.Profile}
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      502    {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.identity.Register(c.Request.Context(), domain.RegisterInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registration successful", profile)
}

// Logout godoc
// @Summary      Logout
// @Description  Clears the session cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c, h.session)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Setup godoc
// @Summary      Account setup status
// @Description  Landing point for principals without a profile. Callers that already have a profile are sent to their default route.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      302  {object}  response.Response
// @Router       /auth/setup [get]
func (h *AuthHandler) Setup(c *gin.Context) {
	claims, ok := middleware.Principal(c, h.verifier, h.session.CookieName)
	if !ok {
		response.Redirect(c, domain.LoginRoute+"?redirect="+domain.SetupRoute, "Authentication required")
		return
	}

	profile, err := h.identity.Resolve(c.Request.Context(), claims.Subject)
	switch {
	case errors.Is(err, domain.ErrAccountDeleted):
		middleware.ClearSession(c, h.session)
		response.Redirect(c, domain.LoginRoute+"?error=account_deleted", "This account has been closed")
		return
	case err != nil:
		c.Error(apperror.New(http.StatusServiceUnavailable, "Your account could not be loaded right now. Please try again.", err))
		return
	case profile != nil:
		response.Redirect(c, domain.DefaultRoute(profile.Role), "Account already set up")
		return
	}

	response.Success(c, http.StatusOK, "Account setup is not complete. Please contact an administrator.", gin.H{
		"principal_id": claims.Subject,
		"email":        claims.Email,
	})
}
