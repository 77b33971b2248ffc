package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyToken(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("secret-token", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	if err := VerifyToken(hash, "secret-token"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := VerifyToken(hash, "wrong-token"); err == nil {
		t.Fatal("expected mismatch")
	}
	if err := VerifyToken("not-a-hash", "secret-token"); !errors.Is(err, ErrInvalidTokenHash) {
		t.Fatalf("expected ErrInvalidTokenHash, got %v", err)
	}
}

func TestStaticProvider_Verify(t *testing.T) {
	t.Parallel()

	aliceHash, err := HashToken("alice-token", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}
	bobHash, err := HashToken("bob-token", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}

	provider := NewStaticProvider([]Credential{
		{Identity: Identity{UserID: "alice", Email: "alice@example.com", DisplayName: "Alice"}, TokenHash: aliceHash},
		{Identity: Identity{UserID: "bob", Email: "bob@example.com", DisplayName: "Bob"}, TokenHash: bobHash},
	})

	identity, err := provider.Verify(context.Background(), "bob-token")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.UserID != "bob" {
		t.Fatalf("expected bob, got %q", identity.UserID)
	}

	if _, err := provider.Verify(context.Background(), "nobody-token"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
	if _, err := provider.Verify(context.Background(), ""); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken for empty token, got %v", err)
	}
}

func TestParseCredentials(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("secret", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}

	t.Run("parses entries", func(t *testing.T) {
		t.Parallel()
		credentials, err := ParseCredentials("alice:alice@example.com:Alice L.:" + hash + "; bob:bob@example.com:Bob:" + hash)
		if err != nil {
			t.Fatalf("ParseCredentials failed: %v", err)
		}
		if len(credentials) != 2 {
			t.Fatalf("expected 2 credentials, got %d", len(credentials))
		}
		if credentials[0].Identity.DisplayName != "Alice L." {
			t.Fatalf("unexpected identity %+v", credentials[0].Identity)
		}
		if credentials[1].TokenHash != hash {
			t.Fatalf("unexpected hash %q", credentials[1].TokenHash)
		}
	})

	t.Run("empty value yields no credentials", func(t *testing.T) {
		t.Parallel()
		credentials, err := ParseCredentials("  ")
		if err != nil || credentials != nil {
			t.Fatalf("expected empty result, got %v %v", credentials, err)
		}
	})

	t.Run("rejects malformed entries", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseCredentials("alice:missing-fields"); err == nil {
			t.Fatal("expected error for malformed entry")
		}
		if _, err := ParseCredentials("alice:a@example.com:Alice:plaintext"); err == nil {
			t.Fatal("expected error for non argon2id hash")
		}
	})

	t.Run("rejects user IDs containing the key path separator", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseCredentials("team/alice:a@example.com:Alice:" + hash); err == nil {
			t.Fatal("expected error for user ID containing a slash")
		}
	})
}
