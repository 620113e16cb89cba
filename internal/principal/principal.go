// Package principal resolves browser identities (email addresses) to the
// backend's own identity records. The backend assigns every affiliate an id,
// a referral ref id, and a role; those are what proxied tokens must assert.
package principal

import (
	"context"
	"errors"
)

// DefaultRole is assumed when the backend omits a role for a principal
const DefaultRole = "affiliate"

// Principal is the backend's identity record for a user.
// It is distinct from the identity provider's user object; the two
// identifier spaces must never be conflated.
type Principal struct {
	// ID is the backend-assigned principal id
	ID string

	// RefID is the affiliate's referral identifier
	RefID string

	// Role is the backend-side role (e.g. "affiliate", "admin")
	Role string
}

// ErrNotResolved indicates the backend could not resolve a principal
// for the given email. Callers degrade to "no token" rather than failing
// the request.
var ErrNotResolved = errors.New("principal not resolved")

// Resolver resolves an email address to a backend principal
type Resolver interface {
	// Resolve returns the principal for the given email.
	// Returns an error wrapping ErrNotResolved when the backend cannot
	// (or will not) produce one.
	Resolve(ctx context.Context, email string) (*Principal, error)
}
