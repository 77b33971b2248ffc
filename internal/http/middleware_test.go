package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/conference-central/internal/identity"
)

type fakeProvider struct {
	identities map[string]identity.Identity
	err        error
}

func (f fakeProvider) Verify(_ context.Context, token string) (identity.Identity, error) {
	if f.err != nil {
		return identity.Identity{}, f.err
	}
	resolved, ok := f.identities[token]
	if !ok {
		return identity.Identity{}, identity.ErrUnknownToken
	}
	return resolved, nil
}

func TestRequireIdentity(t *testing.T) {
	t.Parallel()

	provider := fakeProvider{identities: map[string]identity.Identity{
		"valid-token": {UserID: "alice", Email: "alice@example.com", DisplayName: "Alice"},
	}}

	t.Run("rejects requests without a bearer token", func(t *testing.T) {
		t.Parallel()

		handler := RequireIdentity(provider, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called when authentication fails")
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		t.Parallel()

		handler := RequireIdentity(provider, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called for unknown tokens")
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("ignores non-bearer authorization schemes", func(t *testing.T) {
		t.Parallel()

		handler := RequireIdentity(provider, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called for basic auth")
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("attaches the resolved principal to the request context", func(t *testing.T) {
		t.Parallel()

		var captured bool
		handler := RequireIdentity(provider, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Fatal("expected principal in request context")
			}
			if principal.UserID != "alice" || principal.Email != "alice@example.com" {
				t.Fatalf("unexpected principal: %+v", principal)
			}
			captured = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if !captured {
			t.Fatal("next handler was never invoked")
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected request scoped logger in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/conferences/created", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
}
