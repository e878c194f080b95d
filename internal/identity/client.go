// ===============================
// internal/identity/client.go - Firebase Auth REST client
// ===============================

// Package identity signs users up and in with email and password through the
// Firebase Auth REST API. The Admin SDK can verify tokens but cannot check
// passwords, so these calls go over plain HTTPS with the project's web API key.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// AuthResult mirrors the signUp / signInWithPassword response
type AuthResult struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Registered   bool   `json:"registered"`
}

// Client calls the identitytoolkit endpoints
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint, used by the emulator and tests
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SignUp creates an email/password account
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.post(ctx, "accounts:signUp", map[string]interface{}{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SignIn exchanges email and password for an ID token
func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.post(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SendPasswordReset asks Firebase to mail a reset link
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "accounts:sendOobCode", map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       strings.TrimSpace(email),
	}, nil)
}

func (c *Client) post(ctx context.Context, method string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity %s: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("identity %s: decode response: %w", method, err)
	}
	return nil
}
