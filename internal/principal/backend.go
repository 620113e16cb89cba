package principal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const internalAPIKeyHeader = "X-Internal-API-Key"

// resolveUserID is the placeholder user id sent on resolve-or-create calls.
// The backend keys the upsert on email, not on this id.
const resolveUserID = "proxy-lookup"

// BackendResolverConfig configures a BackendResolver
type BackendResolverConfig struct {
	// BaseURL is the backend API base, e.g. "http://localhost:8080/api/v1"
	BaseURL string

	// APIKey is the server-to-server credential sent as X-Internal-API-Key
	APIKey string

	// Timeout bounds each resolution call (default: 30s)
	Timeout time.Duration

	// Logger is optional; defaults to the standard logger
	Logger *logrus.Logger
}

// BackendResolver resolves principals via the backend's idempotent
// resolve-or-create endpoint. It never retries: a failed call degrades to
// "no token can be minted" for the request that triggered it.
type BackendResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logrus.Entry
}

// NewBackendResolver creates a resolver that calls the backend over HTTP
func NewBackendResolver(cfg BackendResolverConfig) *BackendResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &BackendResolver{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithField("component", "principal_resolver"),
	}
}

type resolveRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type resolveResponse struct {
	Data struct {
		ID    string `json:"id"`
		RefID string `json:"ref_id"`
		Role  string `json:"role"`
	} `json:"data"`
}

// Resolve implements Resolver.
// It POSTs {user_id, email, name} to the backend's signup-external endpoint,
// which returns the existing affiliate or creates a new one.
func (r *BackendResolver) Resolve(ctx context.Context, email string) (*Principal, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", ErrNotResolved)
	}

	body, err := json.Marshal(resolveRequest{
		UserID: resolveUserID,
		Email:  email,
		Name:   displayNameFor(email),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrNotResolved, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/auth/signup-external", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNotResolved, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(internalAPIKeyHeader, r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("backend resolution call failed")
		return nil, fmt.Errorf("%w: backend unreachable", ErrNotResolved)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Log the status only; the response body may carry sensitive data
		r.logger.WithField("status", resp.StatusCode).Warn("backend resolution returned non-success status")
		return nil, fmt.Errorf("%w: backend returned status %d", ErrNotResolved, resp.StatusCode)
	}

	var decoded resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		r.logger.Warn("backend resolution returned malformed payload")
		return nil, fmt.Errorf("%w: decode response: %v", ErrNotResolved, err)
	}

	if decoded.Data.ID == "" {
		r.logger.Warn("backend resolution returned no principal id")
		return nil, fmt.Errorf("%w: response missing principal id", ErrNotResolved)
	}

	role := decoded.Data.Role
	if role == "" {
		role = DefaultRole
	}

	return &Principal{
		ID:    decoded.Data.ID,
		RefID: decoded.Data.RefID,
		Role:  role,
	}, nil
}

// displayNameFor derives a default display name from an email address
func displayNameFor(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
