package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// JobID records the job identifier under the key "job_id".
func JobID(id string) slog.Attr {
	return slog.String("job_id", id)
}

// Pipeline records the pipeline name under the key "pipeline".
func Pipeline(name string) slog.Attr {
	return slog.String("pipeline", name)
}

// Submitter records the submitting principal under the key "submitter".
func Submitter(id string) slog.Attr {
	return slog.String("submitter", id)
}

// CorrelationID records the correlation identifier under the key "correlation_id".
// If id is empty, it returns an empty Attr.
func CorrelationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("correlation_id", id)
}

// Attempt records the attempt number under the key "attempt_count".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt_count", n)
}

// ErrorCode records an execution error code under the key "error_code".
// If code is empty, it returns an empty Attr.
func ErrorCode(code string) slog.Attr {
	if code == "" {
		return slog.Attr{}
	}
	return slog.String("error_code", code)
}

// WorkerID records the worker identifier under the key "worker_id".
func WorkerID(id string) slog.Attr {
	return slog.String("worker_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
