package auth_test

import (
	"testing"
	"time"

	"go-recruitment-workflow/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func TestVerifyHS256(t *testing.T) {
	v := auth.NewVerifier(secret, nil)
	tok := sign(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.co",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}, secret)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.co", claims.Email)
}

func TestVerifyRejects(t *testing.T) {
	v := auth.NewVerifier(secret, nil)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"wrong key", sign(t, jwt.MapClaims{"sub": "u", "exp": exp}, "other")},
		{"expired", sign(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}, secret)},
		{"missing exp", sign(t, jwt.MapClaims{"sub": "u"}, secret)},
		{"missing subject", sign(t, jwt.MapClaims{"exp": exp}, secret)},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestVerifyWithoutSecretRejectsHS256(t *testing.T) {
	v := auth.NewVerifier("", nil)
	tok := sign(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}, secret)
	_, err := v.Verify(tok)
	assert.Error(t, err)
}
