package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AuthClientConfig configures an AuthClient
type AuthClientConfig struct {
	// BaseURL is the identity provider's API base,
	// e.g. "http://localhost:3000/api/auth"
	BaseURL string

	// Timeout bounds each session lookup (default: 10s)
	Timeout time.Duration

	// Logger is optional; defaults to the standard logger
	Logger *logrus.Logger
}

// AuthClient resolves sessions by calling the identity provider's
// get-session endpoint with the browser's cookies forwarded.
type AuthClient struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Entry
}

// NewAuthClient creates a session store backed by the identity provider
func NewAuthClient(cfg AuthClientConfig) *AuthClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &AuthClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithField("component", "session_store"),
	}
}

type sessionResponse struct {
	User *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// Resolve implements Store
func (c *AuthClient) Resolve(ctx context.Context, headers http.Header) (*Session, error) {
	// No cookies, no session; skip the round trip
	cookie := headers.Get("Cookie")
	if cookie == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-session", nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Cookie", cookie)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("session lookup call failed")
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("session lookup returned non-success status")
		return nil, fmt.Errorf("session lookup returned status %d", resp.StatusCode)
	}

	var decoded sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}

	if decoded.User == nil || decoded.User.Email == "" {
		return nil, nil
	}

	return &Session{
		UserID: decoded.User.ID,
		Email:  decoded.User.Email,
		Name:   decoded.User.Name,
	}, nil
}
