// Package identity talks to the Supabase Auth (GoTrue) REST API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-recruitment-workflow/internal/domain"
)

type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

// New builds a client for the project at supabaseURL. serviceKey is required
// for the admin endpoints only.
func New(supabaseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueSession struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int         `json:"expires_in"`
	User        *gotrueUser `json:"user"`
}

// signUpResponse is either a bare user (email confirmation on) or a session
type signUpResponse struct {
	gotrueUser
	User *gotrueUser `json:"user"`
}

type gotrueError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// StatusError is a non-2xx answer from the identity provider
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("identity provider error (%d): %s", e.Status, e.Message)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Principal, error) {
	var out signUpResponse
	body := map[string]any{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/signup", c.anonKey, body, &out); err != nil {
		return nil, mapError(err)
	}
	u := out.User
	if u == nil {
		u = &out.gotrueUser
	}
	if u.ID == "" {
		return nil, errors.New("identity provider returned no user id")
	}
	return &domain.Principal{ID: u.ID, Email: u.Email}, nil
}

func (c *Client) PasswordLogin(ctx context.Context, email, password string) (*domain.Principal, string, int, error) {
	var out gotrueSession
	body := map[string]any{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, body, &out); err != nil {
		return nil, "", 0, mapError(err)
	}
	if out.User == nil || out.AccessToken == "" {
		return nil, "", 0, errors.New("identity provider returned an empty session")
	}
	return &domain.Principal{ID: out.User.ID, Email: out.User.Email}, out.AccessToken, out.ExpiresIn, nil
}

// CreateUser provisions a confirmed user through the admin API
func (c *Client) CreateUser(ctx context.Context, email, password string, role domain.Role) (*domain.Principal, error) {
	if c.serviceKey == "" {
		return nil, errors.New("identity admin API not configured")
	}
	var out gotrueUser
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"app_metadata":  map[string]string{"role": string(role)},
	}
	if err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceKey, body, &out); err != nil {
		return nil, mapError(err)
	}
	return &domain.Principal{ID: out.ID, Email: out.Email}, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if c.serviceKey == "" {
		return errors.New("identity admin API not configured")
	}
	err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), c.serviceKey, nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// GetUser returns nil, nil when the principal does not exist
func (c *Client) GetUser(ctx context.Context, id string) (*domain.Principal, error) {
	if c.serviceKey == "" {
		return nil, errors.New("identity admin API not configured")
	}
	var out gotrueUser
	err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), c.serviceKey, nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Principal{ID: out.ID, Email: out.Email}, nil
}

func (c *Client) do(ctx context.Context, method, path, key string, in, out any) error {
	var reader io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e gotrueError
		se := &StatusError{Status: resp.StatusCode, Message: string(body)}
		if json.Unmarshal(body, &e) == nil {
			if msg := e.text(); msg != "" {
				se.Message = msg
			}
			se.Code = e.ErrorCode
			if s, ok := e.Code.(string); ok && se.Code == "" {
				se.Code = s
			}
			if se.Code == "" {
				se.Code = e.Error
			}
		}
		return se
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// mapError translates provider answers into domain errors
func mapError(err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch {
	case se.Code == "invalid_grant" || se.Code == "invalid_credentials":
		return domain.ErrInvalidCredentials
	case se.Code == "user_already_exists" || se.Code == "email_exists" ||
		strings.Contains(strings.ToLower(se.Message), "already registered") ||
		strings.Contains(strings.ToLower(se.Message), "already been registered"):
		return domain.ErrEmailTaken
	}
	return err
}
