package jobqueue

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// Pipeline names a category of work and selects the handler that runs it.
type Pipeline string

const (
	PipelineWorkoutSync      Pipeline = "workout_sync"
	PipelineFatigueRecompute Pipeline = "fatigue_recompute"
)

// Status represents the status of a job
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusDeadLetter Status = "dead_letter"
)

// AttemptStatus is the classification of a single handler invocation.
type AttemptStatus string

const (
	AttemptSucceeded      AttemptStatus = "succeeded"
	AttemptRetryScheduled AttemptStatus = "retry_scheduled"
	AttemptDeadLetter     AttemptStatus = "dead_letter"
)

// Defaults applied when neither the request nor the pipeline policy set a value.
const (
	DefaultMaxAttempts        = 3
	DefaultRetryDelay         = time.Duration(0)
	DefaultDrainMaxIterations = 500
)

// MaxRetryDelaySeconds is the largest per-request retry delay that fits in a time.Duration.
const MaxRetryDelaySeconds int64 = math.MaxInt64 / int64(time.Second)

// EnqueueRequest describes a unit of work submitted by a producer.
// MaxAttempts and RetryDelaySeconds are optional; nil means "use the pipeline default".
type EnqueueRequest struct {
	Submitter         string          `json:"submitter"`
	Pipeline          Pipeline        `json:"pipeline"`
	IdempotencyKey    string          `json:"idempotencyKey"`
	CorrelationID     string          `json:"correlationId"`
	Payload           json.RawMessage `json:"payload"`
	MaxAttempts       *int            `json:"maxAttempts,omitempty"`
	RetryDelaySeconds *int            `json:"retryDelaySeconds,omitempty"`
}

// AttemptRecord is an immutable entry in a job's attempt history.
type AttemptRecord struct {
	Number       int           `json:"attemptNumber"`
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt"`
	LatencyMS    float64       `json:"latencyMs"`
	Status       AttemptStatus `json:"status"`
	ErrorCode    string        `json:"errorCode,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// Job is a point-in-time snapshot of a job record.
// Snapshots are detached copies; mutating one never affects the queue.
type Job struct {
	ID               string          `json:"jobId"`
	Submitter        string          `json:"submitter"`
	Pipeline         Pipeline        `json:"pipeline"`
	IdempotencyKey   string          `json:"idempotencyKey"`
	CorrelationID    string          `json:"correlationId"`
	Payload          json.RawMessage `json:"payload"`
	Status           Status          `json:"status"`
	AttemptCount     int             `json:"attemptCount"`
	MaxAttempts      int             `json:"maxAttempts"`
	RetryDelay       time.Duration   `json:"-"`
	EnqueuedAt       time.Time       `json:"enqueuedAt"`
	AvailableAt      time.Time       `json:"availableAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
	LastErrorCode    string          `json:"lastErrorCode,omitempty"`
	LastErrorMessage string          `json:"lastErrorMessage,omitempty"`
	LastFailedAt     *time.Time      `json:"lastFailedAt,omitempty"`
	Attempts         []AttemptRecord `json:"attempts"`
}

// RetryDelaySeconds reports the fixed backoff in whole seconds.
func (j Job) RetryDelaySeconds() int {
	return int(j.RetryDelay / time.Second)
}

// clone returns a deep copy of the job.
func (j *Job) clone() *Job {
	c := *j
	c.Payload = slices.Clone(j.Payload)
	c.Attempts = slices.Clone(j.Attempts)
	if c.Attempts == nil {
		c.Attempts = []AttemptRecord{}
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.LastFailedAt != nil {
		t := *j.LastFailedAt
		c.LastFailedAt = &t
	}
	return &c
}

// Outcome summarizes a single ProcessNext call.
type Outcome struct {
	JobID        string        `json:"jobId"`
	Pipeline     Pipeline      `json:"pipeline"`
	Status       AttemptStatus `json:"status"`
	AttemptCount int           `json:"attemptCount"`
	LatencyMS    float64       `json:"latencyMs"`
	ErrorCode    string        `json:"errorCode,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// Metrics is a point-in-time view of queue health.
type Metrics struct {
	QueueDepth        int     `json:"queueDepth"`
	TotalEnqueued     int     `json:"totalEnqueuedCount"`
	ProcessedAttempts int     `json:"processedAttemptCount"`
	Succeeded         int     `json:"succeededCount"`
	FailedAttempts    int     `json:"failedAttemptCount"`
	Retries           int     `json:"retryCount"`
	DeadLetters       int     `json:"deadLetterCount"`
	FailureRate       float64 `json:"failureRate"`
	AverageLatencyMS  float64 `json:"averageProcessingLatencyMs"`
}
