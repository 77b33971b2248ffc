package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/conference-central/internal/application"
	"github.com/example/conference-central/internal/identity"
)

// RequireIdentity authenticates requests via a bearer token and stores the
// resolved principal in the request context.
func RequireIdentity(provider identity.Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
				return
			}

			resolved, err := provider.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrUnknownToken) {
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "the bearer token is not valid"})
				} else {
					responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "token verification failed"})
				}
				return
			}

			principal := application.Principal{
				UserID:      resolved.UserID,
				Email:       resolved.Email,
				DisplayName: resolved.DisplayName,
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger tags every request with a generated request ID and logs its
// start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", uuid.NewString(),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
