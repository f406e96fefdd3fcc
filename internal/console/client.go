package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopdesk-dev/shopdesk/internal/session"
)

// Client represents an HTTP client for the Shopdesk admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     session.TokenSource
}

// NewClient creates a new API client. Outgoing requests obtain the
// bearer token through the TokenSource accessor on every call; the
// client never holds its own copy.
func NewClient(baseURL string, tokens session.TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// WireAdmin is the admin record as it appears on the wire
type WireAdmin struct {
	ID          string     `json:"_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Access      string     `json:"access,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// envelope is the common response wrapper of the admin API
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		Token string     `json:"token,omitempty"`
		Admin *WireAdmin `json:"admin,omitempty"`
	} `json:"data,omitempty"`
}

const statusSuccess = "success"

// Login authenticates against the login endpoint. On success it returns
// the token and the wire admin; on any other response shape or transport
// failure it returns an error from the console taxonomy.
func (c *Client) Login(ctx context.Context, email, password string) (string, *WireAdmin, error) {
	reqBody := LoginRequest{
		Email:    email,
		Password: password,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/api/auth/login", c.baseURL),
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return "", nil, err
	}

	if env.Data == nil || env.Data.Token == "" || env.Data.Admin == nil {
		return "", nil, fmt.Errorf("%w: success without token or admin", ErrMalformedResponse)
	}

	return env.Data.Token, env.Data.Admin, nil
}

// Me fetches the current admin. With no token available it fails
// immediately with ErrMissingToken and performs no HTTP call.
func (c *Client) Me(ctx context.Context) (*WireAdmin, error) {
	token, ok := c.tokens.Token()
	if !ok {
		return nil, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/api/auth/me", c.baseURL),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	if env.Data == nil || env.Data.Admin == nil {
		return nil, fmt.Errorf("%w: success without admin", ErrMalformedResponse)
	}

	return env.Data.Admin, nil
}

// decodeEnvelope reads the response wrapper and classifies failures:
// a structured non-success body is a rejection, an undecodable body on a
// non-2xx response is a transport failure, and an undecodable body on a
// 2xx response is malformed.
func decodeEnvelope(resp *http.Response) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if env.Status != statusSuccess {
		return nil, &RejectionError{Message: env.Message}
	}

	return &env, nil
}
