// Package identity verifies API bearer tokens and resolves them to the
// authenticated caller.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrUnknownToken reports a token that matches no configured credential.
	ErrUnknownToken = errors.New("unknown token")
)

// Identity describes an authenticated caller as reported by the token store.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Provider resolves bearer tokens to identities.
type Provider interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
