package proxy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerdash/gateway/internal/probe"
	"github.com/partnerdash/gateway/internal/token"
)

// proxyMethods are the methods the gateway accepts on the proxy surface
var proxyMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Minter produces a bearer assertion for a request, or nothing when the
// request has no authenticated session
type Minter interface {
	Mint(ctx context.Context, headers http.Header) (*token.Token, error)
}

// Handler serves /api/proxy/{...path}.
//
// Path validation failures are terminal (400, nothing forwarded). Token
// minting failures are not: the request is forwarded without identity and
// the backend stays the final authority on authorization.
type Handler struct {
	minter    Minter
	forwarder *Forwarder
	observer  probe.ProxyObserver
}

// NewHandler creates a proxy handler
func NewHandler(minter Minter, forwarder *Forwarder, observer probe.ProxyObserver) *Handler {
	if observer == nil {
		observer = probe.NopObserver{}
	}
	return &Handler{
		minter:    minter,
		forwarder: forwarder,
		observer:  observer,
	}
}

// Register mounts the proxy routes on r
func (h *Handler) Register(r chi.Router) {
	for _, method := range proxyMethods {
		r.MethodFunc(method, "/api/proxy/*", h.serve)
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	p := h.observer.RequestReceived(r.Context(), r.Method, path)

	if !ValidatePath(path) {
		p.PathRejected()
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid_path",
			"message": "Invalid request path",
		})
		return
	}

	query := CanonicalQuery(r.URL.RawQuery)

	tok, err := h.minter.Mint(r.Context(), r.Header)
	switch {
	case err != nil:
		// Forward-without-identity fallback: the backend rejects the
		// request itself if it requires authentication
		p.NoToken(err)
	case tok == nil:
		p.NoToken(nil)
	default:
		p.TokenMinted()
	}

	p.Forwarded()
	status, err := h.forwarder.Forward(w, r, path, query, tok)
	if err != nil {
		p.GatewayError()
		return
	}
	p.ResponseRelayed(status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
