// Package usersync forwards newly created identity-provider users to the
// backend so an affiliate record exists before their first proxied call.
// The sync is an optimization: the proxy's own resolve-or-create path is the
// authoritative fallback, so a failed sync must never surface to the user.
package usersync

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// HandlerConfig configures a Handler
type HandlerConfig struct {
	// BackendURL is the backend API base
	BackendURL string

	// APIKey is the server-to-server credential sent as X-Internal-API-Key
	APIKey string

	// Timeout bounds the sync call (default: 30s)
	Timeout time.Duration

	// Logger is optional; defaults to the standard logger
	Logger *logrus.Logger
}

// Handler serves POST /api/auth/sync-user
type Handler struct {
	backendURL string
	apiKey     string
	client     *http.Client
	logger     *logrus.Entry
}

// NewHandler creates a sync handler
func NewHandler(cfg HandlerConfig) *Handler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		backendURL: strings.TrimRight(cfg.BackendURL, "/"),
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
		logger:     logger.WithField("component", "user_sync"),
	}
}

type syncRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if req.UserID == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "user_id and email are required",
		})
		return
	}

	if req.Name == "" {
		if at := strings.Index(req.Email, "@"); at > 0 {
			req.Name = req.Email[:at]
		} else {
			req.Name = req.Email
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		h.syncPending(w, "marshal sync request failed")
		return
	}

	backendReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		h.backendURL+"/auth/signup-external", bytes.NewReader(body))
	if err != nil {
		h.syncPending(w, "build sync request failed")
		return
	}
	backendReq.Header.Set("Content-Type", "application/json")
	backendReq.Header.Set("X-Internal-API-Key", h.apiKey)

	resp, err := h.client.Do(backendReq)
	if err != nil {
		h.syncPending(w, "backend unreachable during user sync")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.WithField("status", resp.StatusCode).Warn("backend rejected user sync")
		h.syncPending(w, "")
		return
	}

	var data json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		h.syncPending(w, "decode sync response failed")
		return
	}

	h.logger.WithField("user_id", req.UserID).Info("user synced to backend")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// syncPending reports success to the caller even though the backend sync did
// not complete; the resolve-or-create path will repair it on first use.
func (h *Handler) syncPending(w http.ResponseWriter, logMsg string) {
	if logMsg != "" {
		h.logger.Warn(logMsg)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"warning": "user sync pending, will be retried on first request",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
