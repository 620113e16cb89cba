// Package session recovers the authenticated browser session from inbound
// request headers. The identity provider owns sessions; this package only
// asks it who the caller is.
package session

import (
	"context"
	"net/http"
)

// Session describes an authenticated user as known to the identity provider
type Session struct {
	// UserID is the identity provider's own user id.
	// It is NOT the backend principal id and must never be used as one.
	UserID string

	// Email is the user's email address; this is the key used to resolve
	// the backend principal
	Email string

	// Name is the user's display name
	Name string
}

// Store resolves sessions from inbound request headers
type Store interface {
	// Resolve returns the session for the request, (nil, nil) when the
	// request carries no authenticated session, or an error when the
	// lookup itself failed.
	Resolve(ctx context.Context, headers http.Header) (*Session, error)
}
