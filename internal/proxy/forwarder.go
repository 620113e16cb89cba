package proxy

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/partnerdash/gateway/internal/token"
)

// bodyMethods are the methods whose inbound body is forwarded to the backend
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// ForwarderConfig configures a Forwarder
type ForwarderConfig struct {
	// BaseURL is the backend API base, e.g. "http://localhost:8080/api/v1"
	BaseURL string

	// Timeout bounds each forwarded call (default: 30s)
	Timeout time.Duration

	// Logger is optional; defaults to the standard logger
	Logger *logrus.Logger
}

// Forwarder relays validated requests to the backend and relays responses
// back unchanged. Only the derived bearer token carries identity; inbound
// cookies and other headers are never forwarded.
type Forwarder struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Entry
}

// NewForwarder creates a forwarder for the given backend base URL
func NewForwarder(cfg ForwarderConfig) *Forwarder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Forwarder{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithField("component", "forwarder"),
	}
}

// Forward sends the inbound request to the backend at path+query and writes
// the backend's response to w verbatim. A transport failure writes a 502
// with a generic message; the error detail never reaches the client.
// Returns the relayed status, or 0 on transport failure.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, path, query string, tok *token.Token) (int, error) {
	backendURL := f.baseURL + "/" + path + query

	var body io.Reader
	if bodyMethods[r.Method] {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			// Treated as "no body" rather than failing the request
			f.logger.Warn("could not read request body")
		} else if len(data) > 0 {
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, backendURL, body)
	if err != nil {
		f.logger.Warn("could not build backend request")
		writeGatewayError(w)
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok != nil {
		req.Header.Set("Authorization", "Bearer "+tok.Value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Log the transport error without the URL it contains
		f.logger.WithField("cause", transportCause(err)).Error("backend request failed")
		writeGatewayError(w)
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.WithField("cause", transportCause(err)).Error("reading backend response failed")
		writeGatewayError(w)
		return 0, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(data)
	return resp.StatusCode, nil
}

// transportCause strips the request URL that *url.Error carries so transport
// failures can be logged without echoing backend addresses
func transportCause(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func writeGatewayError(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadGateway, map[string]string{
		"error":   "Proxy error",
		"message": "Failed to connect to backend",
	})
}
