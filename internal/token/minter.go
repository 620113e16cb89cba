// Package token mints the short-lived bearer assertions the gateway attaches
// to proxied requests. Tokens are HMAC-signed with the secret shared with the
// backend; the backend is the party that verifies them.
package token

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/partnerdash/gateway/internal/clock"
	"github.com/partnerdash/gateway/internal/principal"
	"github.com/partnerdash/gateway/internal/session"
)

// DefaultTTL is the lifetime of minted assertions
const DefaultTTL = 24 * time.Hour

// Token is a signed bearer assertion
type Token struct {
	// Value is the compact serialized JWT
	Value string

	// IssuedAt is when the token was minted
	IssuedAt time.Time

	// ExpiresAt is when the token stops being valid
	ExpiresAt time.Time
}

// MinterConfig configures a Minter
type MinterConfig struct {
	// SigningSecret is the HMAC secret shared with the backend (required)
	SigningSecret string

	// TTL is the token lifetime (default: 24h)
	TTL time.Duration

	// Sessions resolves the browser session from request headers
	Sessions session.Store

	// Principals resolves emails to backend principals
	Principals principal.Resolver

	// Clock is an optional clock for testing (defaults to system clock)
	Clock clock.Clock
}

// Minter produces signed bearer assertions for authenticated sessions.
// Tokens are minted fresh per request; only principal resolution is cached
// upstream of this type.
type Minter struct {
	secret     []byte
	ttl        time.Duration
	sessions   session.Store
	principals principal.Resolver
	clock      clock.Clock
}

// NewMinter creates a minter. The signing secret is required; refusing to
// construct without one keeps a misconfigured gateway from silently minting
// nothing on every request.
func NewMinter(cfg MinterConfig) (*Minter, error) {
	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("token minter requires a signing secret")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("token minter requires a session store")
	}
	if cfg.Principals == nil {
		return nil, fmt.Errorf("token minter requires a principal resolver")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystemClock()
	}

	return &Minter{
		secret:     []byte(cfg.SigningSecret),
		ttl:        ttl,
		sessions:   cfg.Sessions,
		principals: cfg.Principals,
		clock:      clk,
	}, nil
}

// Mint produces a signed assertion for the session carried by headers.
// Returns (nil, nil) when the request has no authenticated session, and an
// error when the session lookup or principal resolution fails. The subject
// claim is always the backend principal id, never the identity provider's
// user id.
func (m *Minter) Mint(ctx context.Context, headers http.Header) (*Token, error) {
	sess, err := m.sessions.Resolve(ctx, headers)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	p, err := m.principals.Resolve(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	tok := jwt.New()
	if err := tok.Set(jwt.SubjectKey, p.ID); err != nil {
		return nil, fmt.Errorf("set subject: %w", err)
	}
	if err := tok.Set("email", sess.Email); err != nil {
		return nil, fmt.Errorf("set email: %w", err)
	}
	if err := tok.Set("name", sess.Name); err != nil {
		return nil, fmt.Errorf("set name: %w", err)
	}
	if err := tok.Set("ref_id", p.RefID); err != nil {
		return nil, fmt.Errorf("set ref_id: %w", err)
	}
	if err := tok.Set("role", p.Role); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	if err := tok.Set(jwt.IssuedAtKey, now.Unix()); err != nil {
		return nil, fmt.Errorf("set issued at: %w", err)
	}
	if err := tok.Set(jwt.ExpirationKey, expiresAt.Unix()); err != nil {
		return nil, fmt.Errorf("set expiration: %w", err)
	}
	if err := tok.Set(jwt.JwtIDKey, uuid.NewString()); err != nil {
		return nil, fmt.Errorf("set JWT ID: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, m.secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Value:     string(signed),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}
