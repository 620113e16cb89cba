package usersync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postSync(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sync-user", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSyncHandler(t *testing.T) {
	t.Run("forwards the user to the backend", func(t *testing.T) {
		var gotAPIKey string
		var gotBody syncRequest

		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAPIKey = r.Header.Get("X-Internal-API-Key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"data":{"id":"p-1"}}`))
		}))
		defer backend.Close()

		h := NewHandler(HandlerConfig{BackendURL: backend.URL, APIKey: "internal-key"})
		rec := postSync(t, h, `{"user_id":"idp-1","email":"a@x.com","name":"Alice"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, true, out["success"])
		assert.NotNil(t, out["data"])

		assert.Equal(t, "internal-key", gotAPIKey)
		assert.Equal(t, "idp-1", gotBody.UserID)
		assert.Equal(t, "Alice", gotBody.Name)
	})

	t.Run("derives the name from the email when absent", func(t *testing.T) {
		var gotBody syncRequest
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"data":{"id":"p-1"}}`))
		}))
		defer backend.Close()

		h := NewHandler(HandlerConfig{BackendURL: backend.URL})
		postSync(t, h, `{"user_id":"idp-1","email":"bob@x.com"}`)

		assert.Equal(t, "bob", gotBody.Name)
	})

	t.Run("missing user_id or email is a client error", func(t *testing.T) {
		h := NewHandler(HandlerConfig{BackendURL: "http://localhost:1"})

		for _, body := range []string{
			`{"email":"a@x.com"}`,
			`{"user_id":"idp-1"}`,
			`{}`,
		} {
			rec := postSync(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			out := decode(t, rec)
			assert.Equal(t, false, out["success"])
		}
	})

	t.Run("backend rejection still reports success with a warning", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer backend.Close()

		h := NewHandler(HandlerConfig{BackendURL: backend.URL})
		rec := postSync(t, h, `{"user_id":"idp-1","email":"a@x.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, true, out["success"])
		assert.Contains(t, out["warning"], "pending")
	})

	t.Run("unreachable backend still reports success with a warning", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		backend.Close()

		h := NewHandler(HandlerConfig{BackendURL: backend.URL})
		rec := postSync(t, h, `{"user_id":"idp-1","email":"a@x.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, true, out["success"])
	})
}
