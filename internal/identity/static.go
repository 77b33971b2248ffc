package identity

import (
	"context"
	"fmt"
	"strings"
)

// Credential pairs an identity with the argon2id hash of its bearer token.
type Credential struct {
	Identity  Identity
	TokenHash string
}

// StaticProvider verifies tokens against a fixed credential list loaded at
// startup.
type StaticProvider struct {
	credentials []Credential
}

// NewStaticProvider creates a provider over the given credentials.
func NewStaticProvider(credentials []Credential) *StaticProvider {
	return &StaticProvider{credentials: append([]Credential(nil), credentials...)}
}

// Verify resolves a bearer token to its identity. Every configured hash is
// checked so that timing does not reveal which entry, if any, matched.
func (p *StaticProvider) Verify(_ context.Context, token string) (Identity, error) {
	if p == nil || token == "" {
		return Identity{}, ErrUnknownToken
	}

	var matched *Identity
	for i := range p.credentials {
		if err := VerifyToken(p.credentials[i].TokenHash, token); err == nil && matched == nil {
			matched = &p.credentials[i].Identity
		}
	}
	if matched == nil {
		return Identity{}, ErrUnknownToken
	}
	return *matched, nil
}

// ParseCredentials parses the credential list format used in configuration:
// semicolon separated entries of "userID:email:displayName:argon2idHash".
// The hash itself contains "$" but never ":".
func ParseCredentials(value string) ([]Credential, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var credentials []Credential
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("malformed credential entry %q", entry)
		}
		userID := strings.TrimSpace(parts[0])
		hash := strings.TrimSpace(parts[3])
		if userID == "" || !strings.HasPrefix(hash, "$argon2id$") {
			return nil, fmt.Errorf("malformed credential entry %q", entry)
		}
		// User IDs become path segments of encoded store keys, where "/" is
		// the segment separator.
		if strings.Contains(userID, "/") {
			return nil, fmt.Errorf("user ID %q must not contain %q", userID, "/")
		}
		credentials = append(credentials, Credential{
			Identity: Identity{
				UserID:      userID,
				Email:       strings.TrimSpace(parts[1]),
				DisplayName: strings.TrimSpace(parts[2]),
			},
			TokenHash: hash,
		})
	}
	return credentials, nil
}
