package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures environment driven configuration values for the conference
// service.
type Config struct {
	HTTPPort              int
	SQLiteDSN             string
	APITokens             string
	AnnouncementThreshold int
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; required values are
// validated and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:              8080,
		SQLiteDSN:             "file:conference.db",
		AnnouncementThreshold: 5,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CONFERENCE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CONFERENCE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONFERENCE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tokens := strings.TrimSpace(os.Getenv("CONFERENCE_API_TOKENS")); tokens == "" {
		missing = append(missing, "CONFERENCE_API_TOKENS")
	} else {
		cfg.APITokens = tokens
	}

	if thresholdValue := strings.TrimSpace(os.Getenv("CONFERENCE_ANNOUNCEMENT_SEAT_THRESHOLD")); thresholdValue != "" {
		threshold, err := strconv.Atoi(thresholdValue)
		if err != nil || threshold <= 0 {
			invalid = append(invalid, "CONFERENCE_ANNOUNCEMENT_SEAT_THRESHOLD")
		} else {
			cfg.AnnouncementThreshold = threshold
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
