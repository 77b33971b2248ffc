package http

import (
	"context"

	"github.com/example/conference-central/internal/application"
)

type contextKey string

const (
	principalContextKey     contextKey = "principal"
	conferenceKeyContextKey contextKey = "conference_key"
	sessionKeyContextKey    contextKey = "session_key"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithConferenceKey injects the conference key resolved from the request path.
func ContextWithConferenceKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, conferenceKeyContextKey, key)
}

// ConferenceKeyFromContext extracts a conference key previously associated with the context.
func ConferenceKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(conferenceKeyContextKey).(string)
	return key, ok
}

// ContextWithSessionKey injects the session key resolved from the request path.
func ContextWithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContextKey, key)
}

// SessionKeyFromContext extracts a session key previously associated with the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyContextKey).(string)
	return key, ok
}
