// Package supabase delegates credential verification to a Supabase GoTrue
// identity service and maps its session into the local auth flow. The
// session payload it returns has its own shape, so the strategy keeps it
// under a dedicated session key that never collides with the local user
// key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	authkit "github.com/icchy-san/authkit"
)

// Session is the payload the identity service returns on a successful
// password sign-in. It is stored in the browser session verbatim.
type Session struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	RefreshToken string         `json:"refresh_token"`
	User         map[string]any `json:"user"`
}

// APIError is a failure the identity service itself reported.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity service returned %d", e.Status)
	}
	return e.Message
}

// Client talks to the identity service's auth API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient validates the endpoint configuration up front; a half-built
// client is a startup failure, not a runtime one.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, authkit.NewConfigurationError("supabase URL is not set")
	}
	if apiKey == "" {
		return nil, authkit.NewConfigurationError("supabase API key is not set")
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SignInWithPassword submits the credentials to the service's password
// grant endpoint and returns the session it issues.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", body, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, &APIError{Message: "no session returned"}
	}
	return &session, nil
}

// SignUp registers an account with the identity service, carrying the
// display name as user metadata.
func (c *Client) SignUp(ctx context.Context, name, email, password string) error {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"user_name": name},
	}
	return c.post(ctx, "/auth/v1/signup", body, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity service request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed reading identity service response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed parsing identity service response: %w", err)
		}
	}
	return nil
}

// errorMessage digs the human-readable message out of the service's error
// body, which uses different field names depending on the endpoint.
func errorMessage(data []byte) string {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	for _, m := range []string{body.ErrorDescription, body.Msg, body.Message, body.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}
