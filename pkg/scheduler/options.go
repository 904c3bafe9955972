package scheduler

import (
	"log/slog"
	"time"
)

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetention retires terminal job states older than maxAge. Without it
// the registry keeps every terminal state until the process exits, which
// is fine for short-lived callers but not for a long-running service.
func WithRetention(maxAge time.Duration) Option {
	return func(s *Scheduler) {
		s.retention = maxAge
	}
}
