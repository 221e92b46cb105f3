package jobqueue

import (
	"log/slog"
	"time"

	"github.com/sportolo/jobs/pkg/broadcast"
)

// Option is a functional option for configuring a Queue
type Option func(*Queue)

// WithLogger sets the logger for queue events
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithClock replaces time.Now. Tests use it to step over retry delays.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithConfig overrides the queue-wide defaults.
// Non-positive attempt and iteration values and negative delays are ignored.
func WithConfig(cfg Config) Option {
	return func(q *Queue) {
		if cfg.DefaultMaxAttempts > 0 {
			q.cfg.DefaultMaxAttempts = cfg.DefaultMaxAttempts
		}
		if cfg.DefaultRetryDelay >= 0 {
			q.cfg.DefaultRetryDelay = cfg.DefaultRetryDelay
		}
		if cfg.DrainMaxIterations > 0 {
			q.cfg.DrainMaxIterations = cfg.DrainMaxIterations
		}
		q.cfg.PolicyFile = cfg.PolicyFile
	}
}

// WithPolicy installs per-pipeline defaults and closes the set of accepted pipelines.
func WithPolicy(policy *Policy) Option {
	return func(q *Queue) {
		q.policy = policy
	}
}

// WithOutcomeBroadcaster publishes every attempt outcome to p.
func WithOutcomeBroadcaster(p broadcast.Publisher[Outcome]) Option {
	return func(q *Queue) {
		q.outcomes = p
	}
}
