package jobqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sportolo/jobs/pkg/correlation"
	"github.com/sportolo/jobs/pkg/logger"
)

// ProcessNext runs one attempt of the next ready job.
//
// It returns (nil, nil) when no job is ready. Handler failures and panics are
// recorded on the job and reflected in the outcome; the error result is only
// set when ctx is done before a job is claimed.
func (q *Queue) ProcessNext(ctx context.Context) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	record := q.ready.next(q.store, q.now())
	if record == nil {
		q.mu.Unlock()
		return nil, nil
	}
	record.transition(eventClaim)
	record.AttemptCount++
	snapshot := record.clone()
	handler := q.handlers.lookup(record.Pipeline)
	store := q.store
	startedAt := q.now()
	q.mu.Unlock()

	jobCtx := correlation.WithContext(ctx, snapshot.CorrelationID)
	execErr := q.invoke(jobCtx, handler, *snapshot)
	finishedAt := q.now()

	q.mu.Lock()
	latencyMS := float64(finishedAt.Sub(startedAt)) / float64(time.Millisecond)
	// a reset while the handler ran leaves record detached from the queue
	live := store == q.store
	outcome := q.settle(record, execErr, startedAt, finishedAt, latencyMS, live)
	if live {
		q.counters.recordAttempt(outcome.Status, latencyMS)
	}
	q.mu.Unlock()

	q.logOutcome(jobCtx, outcome)
	q.publish(ctx, outcome)

	return &outcome, nil
}

// invoke runs the handler and converts its result, including a panic, into
// an execution error. It never panics.
func (q *Queue) invoke(ctx context.Context, h Handler, job Job) (execErr *ExecutionError) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.ErrorContext(ctx, "background_job_handler_panicked",
				logger.JobID(job.ID),
				logger.Pipeline(string(job.Pipeline)),
				logger.Attempt(job.AttemptCount),
				slog.Any("panic", r),
			)
			execErr = NewTerminalError(ErrorCodeUnexpected, fmt.Sprint(r))
		}
	}()
	return classify(h.Handle(ctx, job))
}

// settle applies the attempt result to the record. Callers hold q.mu.
func (q *Queue) settle(record *storedJob, execErr *ExecutionError, startedAt, finishedAt time.Time, latencyMS float64, live bool) Outcome {
	attempt := AttemptRecord{
		Number:     record.AttemptCount,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		LatencyMS:  latencyMS,
	}

	switch {
	case execErr == nil:
		record.transition(eventSucceed)
		record.CompletedAt = &finishedAt
		record.LastErrorCode = ""
		record.LastErrorMessage = ""
		record.LastFailedAt = nil
		attempt.Status = AttemptSucceeded

	case execErr.Retryable && record.AttemptCount < record.MaxAttempts:
		record.transition(eventRetry)
		record.AvailableAt = finishedAt.Add(record.RetryDelay)
		if live {
			q.ready.push(record.ID)
		}
		attempt.Status = AttemptRetryScheduled

	default:
		record.transition(eventDeadLetter)
		record.CompletedAt = &finishedAt
		attempt.Status = AttemptDeadLetter
	}

	if execErr != nil {
		record.LastErrorCode = execErr.Code
		record.LastErrorMessage = execErr.Message
		record.LastFailedAt = &finishedAt
		attempt.ErrorCode = execErr.Code
		attempt.ErrorMessage = execErr.Message
	}
	record.Attempts = append(record.Attempts, attempt)

	return Outcome{
		JobID:        record.ID,
		Pipeline:     record.Pipeline,
		Status:       attempt.Status,
		AttemptCount: record.AttemptCount,
		LatencyMS:    latencyMS,
		ErrorCode:    attempt.ErrorCode,
		ErrorMessage: attempt.ErrorMessage,
	}
}

func (q *Queue) logOutcome(ctx context.Context, o Outcome) {
	attrs := []any{
		logger.JobID(o.JobID),
		logger.Pipeline(string(o.Pipeline)),
		logger.Attempt(o.AttemptCount),
		logger.ErrorCode(o.ErrorCode),
	}
	switch o.Status {
	case AttemptSucceeded:
		q.logger.InfoContext(ctx, "background_job_succeeded", attrs...)
	case AttemptRetryScheduled:
		q.logger.WarnContext(ctx, "background_job_retry_scheduled", attrs...)
	case AttemptDeadLetter:
		q.logger.ErrorContext(ctx, "background_job_dead_lettered", attrs...)
	}
}

func (q *Queue) publish(ctx context.Context, o Outcome) {
	if q.outcomes == nil {
		return
	}
	if err := q.outcomes.Publish(ctx, o); err != nil {
		q.logger.DebugContext(ctx, "outcome not published", logger.JobID(o.JobID), logger.Error(err))
	}
}

// ProcessUntilIdle calls ProcessNext until no job is ready or maxIterations
// attempts have run. maxIterations <= 0 uses the configured drain limit.
func (q *Queue) ProcessUntilIdle(ctx context.Context, maxIterations int) ([]Outcome, error) {
	if maxIterations <= 0 {
		maxIterations = q.cfg.DrainMaxIterations
	}

	outcomes := make([]Outcome, 0)
	for range maxIterations {
		outcome, err := q.ProcessNext(ctx)
		if err != nil {
			return outcomes, err
		}
		if outcome == nil {
			break
		}
		outcomes = append(outcomes, *outcome)
	}
	return outcomes, nil
}
