package token

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerdash/gateway/internal/clock"
	"github.com/partnerdash/gateway/internal/principal"
	"github.com/partnerdash/gateway/internal/session"
)

const testSecret = "test-signing-secret"

// fixedResolver resolves every email to the same principal
type fixedResolver struct {
	principal *principal.Principal
	err       error
}

func (r *fixedResolver) Resolve(ctx context.Context, email string) (*principal.Principal, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.principal, nil
}

func parseToken(t *testing.T, value string) jwt.Token {
	t.Helper()
	parsed, err := jwt.Parse([]byte(value),
		jwt.WithKey(jwa.HS256, []byte(testSecret)),
		jwt.WithValidate(false))
	require.NoError(t, err)
	return parsed
}

func TestMinterMint(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sess := &session.Session{UserID: "idp-user-1", Email: "a@x.com", Name: "Alice"}
	resolved := &principal.Principal{ID: "p-123", RefID: "ref-9", Role: "affiliate"}

	t.Run("subject is the backend principal id", func(t *testing.T) {
		minter, err := NewMinter(MinterConfig{
			SigningSecret: testSecret,
			Sessions:      session.NewStubStore(sess),
			Principals:    &fixedResolver{principal: resolved},
			Clock:         clock.NewManualClock(start),
		})
		require.NoError(t, err)

		tok, err := minter.Mint(ctx, http.Header{})
		require.NoError(t, err)
		require.NotNil(t, tok)

		parsed := parseToken(t, tok.Value)
		assert.Equal(t, "p-123", parsed.Subject())
		assert.NotEqual(t, "idp-user-1", parsed.Subject())

		email, ok := parsed.Get("email")
		require.True(t, ok)
		assert.Equal(t, "a@x.com", email)

		refID, ok := parsed.Get("ref_id")
		require.True(t, ok)
		assert.Equal(t, "ref-9", refID)

		role, ok := parsed.Get("role")
		require.True(t, ok)
		assert.Equal(t, "affiliate", role)
	})

	t.Run("token expires 24 hours after mint time", func(t *testing.T) {
		clk := clock.NewManualClock(start)
		minter, err := NewMinter(MinterConfig{
			SigningSecret: testSecret,
			Sessions:      session.NewStubStore(sess),
			Principals:    &fixedResolver{principal: resolved},
			Clock:         clk,
		})
		require.NoError(t, err)

		tok, err := minter.Mint(ctx, http.Header{})
		require.NoError(t, err)

		assert.Equal(t, start, tok.IssuedAt)
		assert.Equal(t, start.Add(24*time.Hour), tok.ExpiresAt)

		parsed := parseToken(t, tok.Value)
		assert.Equal(t, start.Unix(), parsed.IssuedAt().Unix())
		assert.Equal(t, start.Add(24*time.Hour).Unix(), parsed.Expiration().Unix())
	})

	t.Run("no session yields no token and no error", func(t *testing.T) {
		minter, err := NewMinter(MinterConfig{
			SigningSecret: testSecret,
			Sessions:      session.NewStubStore(nil),
			Principals:    &fixedResolver{principal: resolved},
		})
		require.NoError(t, err)

		tok, err := minter.Mint(ctx, http.Header{})
		require.NoError(t, err)
		assert.Nil(t, tok)
	})

	t.Run("session lookup failure is an error", func(t *testing.T) {
		minter, err := NewMinter(MinterConfig{
			SigningSecret: testSecret,
			Sessions:      &session.StubStore{Err: errors.New("idp down")},
			Principals:    &fixedResolver{principal: resolved},
		})
		require.NoError(t, err)

		_, err = minter.Mint(ctx, http.Header{})
		assert.Error(t, err)
	})

	t.Run("principal resolution failure is an error", func(t *testing.T) {
		minter, err := NewMinter(MinterConfig{
			SigningSecret: testSecret,
			Sessions:      session.NewStubStore(sess),
			Principals:    &fixedResolver{err: principal.ErrNotResolved},
		})
		require.NoError(t, err)

		_, err = minter.Mint(ctx, http.Header{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, principal.ErrNotResolved))
	})

	t.Run("a fresh token is minted per call", func(t *testing.T) {
		minter, err := NewMinter(MinterConfig{
			SigningSecret: testSecret,
			Sessions:      session.NewStubStore(sess),
			Principals:    &fixedResolver{principal: resolved},
			Clock:         clock.NewManualClock(start),
		})
		require.NoError(t, err)

		first, err := minter.Mint(ctx, http.Header{})
		require.NoError(t, err)
		second, err := minter.Mint(ctx, http.Header{})
		require.NoError(t, err)

		// Same claims except the unique jti
		assert.NotEqual(t, first.Value, second.Value)
	})
}

func TestNewMinterValidation(t *testing.T) {
	sessions := session.NewStubStore(nil)
	principals := &fixedResolver{}

	t.Run("requires a signing secret", func(t *testing.T) {
		_, err := NewMinter(MinterConfig{Sessions: sessions, Principals: principals})
		assert.Error(t, err)
	})

	t.Run("requires a session store", func(t *testing.T) {
		_, err := NewMinter(MinterConfig{SigningSecret: testSecret, Principals: principals})
		assert.Error(t, err)
	})

	t.Run("requires a principal resolver", func(t *testing.T) {
		_, err := NewMinter(MinterConfig{SigningSecret: testSecret, Sessions: sessions})
		assert.Error(t, err)
	})
}
