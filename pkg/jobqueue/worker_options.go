package jobqueue

import (
	"log/slog"
	"time"
)

// WorkerOption is a functional option for configuring a worker
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pollInterval time.Duration
	concurrency  int
	logger       *slog.Logger
}

// WithPollInterval sets how often the worker checks for ready jobs
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithConcurrency sets how many attempts may run at once
func WithConcurrency(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithWorkerConfig applies poll interval and concurrency from cfg
func WithWorkerConfig(cfg WorkerConfig) WorkerOption {
	return func(o *workerOptions) {
		WithPollInterval(cfg.PollInterval)(o)
		WithConcurrency(cfg.Concurrency)(o)
	}
}

// WithWorkerLogger sets the logger for the worker
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
