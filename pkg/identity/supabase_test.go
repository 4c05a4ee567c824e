package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *identity.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return identity.New(srv.URL, "anon", "service")
}

func TestPasswordLogin(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"expires_in":   3600,
			"user":         map[string]string{"id": "u1", "email": "a@b.co"},
		})
	})

	p, token, exp, err := c.PasswordLogin(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "tok", token)
	assert.Equal(t, 3600, exp)
}

func TestPasswordLoginInvalidCredentials(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, _, _, err := c.PasswordLogin(context.Background(), "a@b.co", "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSignUpAcceptsBareUserAndSession(t *testing.T) {
	bare := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.co"}`))
	})
	p, err := bare.SignUp(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)

	session := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"t","user":{"id":"u2","email":"c@d.co"}}`))
	})
	p, err = session.SignUp(context.Background(), "c@d.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u2", p.ID)
}

func TestSignUpEmailTaken(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
	})
	_, err := c.SignUp(context.Background(), "a@b.co", "pw")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAdminCallsUseServiceKey(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodPost:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, true, body["email_confirm"])
			_, _ = w.Write([]byte(`{"id":"u9","email":"m@x.co"}`))
		case http.MethodDelete, http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"msg":"User not found"}`))
		}
	})

	p, err := c.CreateUser(context.Background(), "m@x.co", "pw", domain.RoleMiddleman)
	require.NoError(t, err)
	assert.Equal(t, "u9", p.ID)

	assert.NoError(t, c.DeleteUser(context.Background(), "gone"))

	got, err := c.GetUser(context.Background(), "gone")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
