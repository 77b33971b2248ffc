package config

import (
	"os"
	"testing"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"CONFERENCE_HTTP_PORT",
			"CONFERENCE_SQLITE_DSN",
			"CONFERENCE_ANNOUNCEMENT_SEAT_THRESHOLD",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const tokens = "alice:alice@example.com:Alice:$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"
		t.Setenv("CONFERENCE_API_TOKENS", tokens)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:conference.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.AnnouncementThreshold != 5 {
			t.Fatalf("expected default threshold 5, got %d", cfg.AnnouncementThreshold)
		}
		if cfg.APITokens != tokens {
			t.Fatalf("unexpected tokens: %q", cfg.APITokens)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"CONFERENCE_API_TOKENS",
			"CONFERENCE_HTTP_PORT",
			"CONFERENCE_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: CONFERENCE_API_TOKENS"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses numeric fields", func(t *testing.T) {
		t.Setenv("CONFERENCE_API_TOKENS", "alice:alice@example.com:Alice:$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA")
		t.Setenv("CONFERENCE_HTTP_PORT", "9090")
		t.Setenv("CONFERENCE_SQLITE_DSN", "file:/tmp/conference.db")
		t.Setenv("CONFERENCE_ANNOUNCEMENT_SEAT_THRESHOLD", "10")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/conference.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.AnnouncementThreshold != 10 {
			t.Fatalf("expected threshold 10, got %d", cfg.AnnouncementThreshold)
		}
	})

	t.Run("rejects invalid numeric values", func(t *testing.T) {
		t.Setenv("CONFERENCE_API_TOKENS", "alice:alice@example.com:Alice:$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA")
		t.Setenv("CONFERENCE_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid port")
		}
	})
}
