package application

import (
	"context"
	"log/slog"
)

// Notifier dispatches outbound notifications. Implementations must be safe to
// call from independent goroutines; callers never await the result.
type Notifier interface {
	// ConferenceCreated announces a freshly created conference to its
	// organizer.
	ConferenceCreated(ctx context.Context, email, conferenceName string)
}

// LogNotifier records notifications on the service log in place of a real
// outbound dispatcher.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a log backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: defaultLogger(logger)}
}

// ConferenceCreated implements Notifier.
func (n *LogNotifier) ConferenceCreated(ctx context.Context, email, conferenceName string) {
	if n == nil {
		return
	}
	n.logger.InfoContext(ctx, "conference creation confirmation queued",
		"email", email, "conference", conferenceName)
}
