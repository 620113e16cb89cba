package session

import (
	"context"
	"net/http"
)

// StubStore is a fixed-response session store for testing
type StubStore struct {
	// Session is returned from Resolve when Err is nil
	Session *Session

	// Err is returned from Resolve when set
	Err error
}

// NewStubStore creates a stub store that always resolves to the given session
func NewStubStore(s *Session) *StubStore {
	return &StubStore{Session: s}
}

// Resolve implements Store
func (s *StubStore) Resolve(ctx context.Context, headers http.Header) (*Session, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Session, nil
}
