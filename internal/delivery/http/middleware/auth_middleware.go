package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/auth"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
)

// SessionConfig describes the session cookie carrying the access token
type SessionConfig struct {
	CookieName string
	Secure     bool
}

// SetSession stores the access token in an HttpOnly cookie
func SetSession(c *gin.Context, cfg SessionConfig, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, maxAge, "/", "", cfg.Secure, true)
}

func ClearSession(c *gin.Context, cfg SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
}

// Principal verifies the access token from the Authorization header or, when
// absent, the session cookie.
func Principal(c *gin.Context, verifier *auth.Verifier, cookieName string) (*auth.Claims, bool) {
	var token string
	if header := c.GetHeader("Authorization"); header != "" {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if cookie, err := c.Cookie(cookieName); err == nil {
		token = cookie
	}
	if token == "" {
		return nil, false
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		logger.Log.Debug("Token rejected", "error", err)
		return nil, false
	}
	return claims, true
}

// Gate authenticates the caller, resolves its profile and applies the route
// access policy. Public paths pass through untouched.
func Gate(verifier *auth.Verifier, identity domain.IdentityUsecase, audit *security.AuditLogger, session SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if domain.IsPublicPath(path) {
			c.Next()
			return
		}

		claims, ok := Principal(c, verifier, session.CookieName)
		if !ok {
			response.Redirect(c, domain.LoginRoute+"?redirect="+url.QueryEscape(path), "Authentication required")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		requestID := c.GetString(string(domain.KeyRequestID))

		profile, err := identity.Resolve(ctx, claims.Subject)
		switch {
		case errors.Is(err, domain.ErrAccountDeleted):
			audit.Log(ctx, security.AuditEvent{
				Event:        security.EventDeletedAccountUse,
				SubjectType:  "user_id",
				SubjectValue: security.HashValue(claims.Subject),
				ActorID:      claims.Subject,
				IP:           c.ClientIP(),
				UserAgent:    c.Request.UserAgent(),
				RequestID:    requestID,
				Details:      map[string]any{"path": path},
			})
			ClearSession(c, session)
			response.Redirect(c, domain.LoginRoute+"?error=account_deleted", "This account has been closed")
			c.Abort()
			return
		case err != nil:
			logger.Log.Error("Profile lookup failed", "request_id", requestID, "error", err)
			response.Error(c, http.StatusServiceUnavailable, "Your account could not be loaded right now. Please try again.", nil)
			c.Abort()
			return
		case profile == nil:
			response.Redirect(c, domain.SetupRoute, "Account setup is not complete")
			c.Abort()
			return
		}

		if !domain.HasAccess(profile.Role, path) {
			audit.LogRouteDenied(ctx, profile.ID, string(profile.Role), path, c.ClientIP(), requestID)
			response.Redirect(c, domain.DefaultRoute(profile.Role), "Access denied")
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), profile.ID)
		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyUserRole), profile.Role)

		ctx = context.WithValue(ctx, domain.KeyUserID, profile.ID)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, domain.KeyUserRole, profile.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
