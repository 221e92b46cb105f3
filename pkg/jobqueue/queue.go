package jobqueue

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sportolo/jobs/pkg/broadcast"
	"github.com/sportolo/jobs/pkg/logger"
)

// Queue is an in-memory job queue with idempotent enqueue, fixed-delay
// retries and a dead-letter set. A single mutex guards all state; handlers
// always run outside it.
type Queue struct {
	mu       sync.Mutex
	store    *jobStore
	ready    readyQueue
	counters counters
	handlers *handlerRegistry

	cfg      Config
	policy   *Policy
	logger   *slog.Logger
	now      func() time.Time
	outcomes broadcast.Publisher[Outcome]
}

// New creates an empty queue. Every pipeline starts with a no-op handler.
func New(opts ...Option) *Queue {
	q := &Queue{
		store:    newJobStore(),
		handlers: newHandlerRegistry(),
		cfg:      defaultConfig(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// RegisterHandler replaces the handler for pipeline. A nil handler restores the no-op.
func (q *Queue) RegisterHandler(pipeline Pipeline, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers.register(pipeline, h)
}

// Enqueue creates a job or replays an existing one.
//
// A repeated (submitter, idempotency key) pair with the same pipeline and
// payload returns the existing job as it is now, without creating a new one.
// The same pair with different content fails with ErrIdempotencyConflict.
func (q *Queue) Enqueue(ctx context.Context, req EnqueueRequest) (*Job, error) {
	job, _, err := q.Submit(ctx, req)
	return job, err
}

// Submit works like Enqueue and also reports whether a new job was created.
func (q *Queue) Submit(ctx context.Context, req EnqueueRequest) (*Job, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := q.validate(req); err != nil {
		return nil, false, err
	}

	fingerprint, err := Fingerprint(req.Pipeline, req.Payload)
	if err != nil {
		return nil, false, invalidArgument("%v", err)
	}

	maxAttempts, retryDelay := q.policy.resolve(req.Pipeline, q.cfg)
	if req.MaxAttempts != nil {
		maxAttempts = *req.MaxAttempts
	}
	if req.RetryDelaySeconds != nil {
		retryDelay = time.Duration(*req.RetryDelaySeconds) * time.Second
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if existing, ok := q.store.lookup(req.Submitter, req.IdempotencyKey); ok {
		if existing.fingerprint != fingerprint {
			return nil, false, ErrIdempotencyConflict
		}
		return existing.clone(), false, nil
	}

	now := q.now()
	record := q.store.create(Job{
		Submitter:      req.Submitter,
		Pipeline:       req.Pipeline,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  req.CorrelationID,
		Payload:        slices.Clone(normalizePayload(req.Payload)),
		Status:         StatusQueued,
		MaxAttempts:    maxAttempts,
		RetryDelay:     retryDelay,
		EnqueuedAt:     now,
		AvailableAt:    now,
		Attempts:       []AttemptRecord{},
	}, fingerprint)
	q.ready.push(record.ID)
	q.counters.totalEnqueued++

	q.logger.InfoContext(ctx, "background_job_enqueued",
		logger.JobID(record.ID),
		logger.Pipeline(string(record.Pipeline)),
		logger.Submitter(record.Submitter),
		logger.CorrelationID(record.CorrelationID),
	)

	return record.clone(), true, nil
}

func (q *Queue) validate(req EnqueueRequest) error {
	switch {
	case strings.TrimSpace(req.Submitter) == "":
		return invalidArgument("submitter is required")
	case strings.TrimSpace(req.IdempotencyKey) == "":
		return invalidArgument("idempotency key is required")
	case req.Pipeline == "":
		return invalidArgument("pipeline is required")
	case req.MaxAttempts != nil && *req.MaxAttempts < 1:
		return invalidArgument("max attempts must be at least 1")
	case req.RetryDelaySeconds != nil && *req.RetryDelaySeconds < 0:
		return invalidArgument("retry delay seconds must be zero or greater")
	case req.RetryDelaySeconds != nil && int64(*req.RetryDelaySeconds) > MaxRetryDelaySeconds:
		return invalidArgument("retry delay seconds must be at most %d", MaxRetryDelaySeconds)
	}
	if !q.policy.Knows(req.Pipeline) {
		return fmtUnknownPipeline(req.Pipeline)
	}
	return nil
}

// GetJob returns a snapshot of the job with the given id.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	record, ok := q.store.get(id)
	if !ok {
		return nil, ErrJobNotFound
	}
	return record.clone(), nil
}

// MetricsSnapshot returns counters plus the live number of queued jobs.
func (q *Queue) MetricsSnapshot(ctx context.Context) (Metrics, error) {
	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	return q.counters.snapshot(q.store.countByStatus(StatusQueued)), nil
}

// ListDeadLetters returns every dead-lettered job ordered by last failure time, then id.
func (q *Queue) ListDeadLetters(ctx context.Context) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	return q.store.deadLetters(), nil
}

// reset clears jobs, counters and handlers. Only tests reach it.
func (q *Queue) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.store = newJobStore()
	q.ready.reset()
	q.counters = counters{}
	q.handlers = newHandlerRegistry()
}
