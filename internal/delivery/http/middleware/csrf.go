package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookieName = "csrf_token"
	CSRFTokenHeaderName = "X-CSRF-Token"
	csrfTokenBytes      = 32
	csrfTokenExpiry     = 24 * time.Hour
)

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CSRF implements the double-submit cookie pattern for cookie-authenticated
// requests. Requests carrying an Authorization header and public paths are
// not checked; the token cookie is still issued so the browser has one.
//
// The frontend reads the csrf_token cookie and echoes it in X-CSRF-Token on
// every mutating request.
func CSRF(session SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || token == "" {
			token, err = generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			// HttpOnly is off so the frontend can read it
			c.SetCookie(CSRFTokenCookieName, token, int(csrfTokenExpiry.Seconds()), "/", "", session.Secure, false)
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if domain.IsPublicPath(c.Request.URL.Path) || c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}
		if _, err := c.Cookie(session.CookieName); err != nil {
			// Nothing to protect without a session cookie
			c.Next()
			return
		}

		header := c.GetHeader(CSRFTokenHeaderName)
		if header == "" {
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(header), []byte(token)) != 1 {
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
