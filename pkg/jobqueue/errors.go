package jobqueue

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidArgument is returned when an enqueue request violates its preconditions
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIdempotencyConflict is returned when an idempotency key is replayed with a different payload
	ErrIdempotencyConflict = errors.New("idempotency key already used with a different payload")

	// ErrJobNotFound is returned when no job exists for the given id
	ErrJobNotFound = errors.New("job not found")

	// ErrUnknownPipeline is returned when a policy is installed and the pipeline is not part of it
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// ErrNilQueue is returned when a nil queue is provided
	ErrNilQueue = errors.New("queue cannot be nil")

	// ErrWorkerRunning is returned when starting a worker twice
	ErrWorkerRunning = errors.New("worker already started")

	// ErrWorkerNotRunning is returned when stopping a worker that was never started
	ErrWorkerNotRunning = errors.New("worker not started")

	// ErrInvalidPolicy is returned when a pipeline policy document cannot be used
	ErrInvalidPolicy = errors.New("invalid pipeline policy")
)

// Reserved error codes recorded by the queue itself.
const (
	ErrorCodeUnexpected    = "UNEXPECTED_ERROR"
	ErrorCodePayloadDecode = "PAYLOAD_DECODE_FAILED"
)

// ExecutionError is the only channel a handler has to classify a failure.
// Retryable failures are re-queued until MaxAttempts is reached; anything else
// dead-letters the job on the spot.
type ExecutionError struct {
	Code      string
	Message   string
	Retryable bool
}

// NewExecutionError creates a retryable execution error.
func NewExecutionError(code, message string) *ExecutionError {
	return &ExecutionError{Code: code, Message: message, Retryable: true}
}

// NewTerminalError creates a non-retryable execution error.
func NewTerminalError(code, message string) *ExecutionError {
	return &ExecutionError{Code: code, Message: message, Retryable: false}
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// classify converts whatever a handler returned into an execution error.
// Unclassified errors become non-retryable UNEXPECTED_ERROR failures.
func classify(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}
	return NewTerminalError(ErrorCodeUnexpected, err.Error())
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func fmtUnknownPipeline(p Pipeline) error {
	return fmt.Errorf("%w: %q", ErrUnknownPipeline, p)
}
