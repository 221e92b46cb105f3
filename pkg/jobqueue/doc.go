// Package jobqueue is an in-memory background job queue with idempotent
// enqueue, fixed-delay retries and a dead-letter set.
//
// Producers call Enqueue with a (submitter, idempotency key) pair. Repeating
// the pair with the same pipeline and payload returns the original job;
// repeating it with different content fails with ErrIdempotencyConflict.
//
// Consumers register a Handler per pipeline and drive execution with
// ProcessNext, ProcessUntilIdle or a Worker. A handler reports a failure by
// returning an *ExecutionError:
//
//	q := jobqueue.New(jobqueue.WithLogger(log))
//	q.RegisterHandler(jobqueue.PipelineWorkoutSync, jobqueue.NewPayloadHandler(
//		func(ctx context.Context, job jobqueue.Job, p jobqueue.DispatchPayload) error {
//			if err := sync(ctx, p); err != nil {
//				return jobqueue.NewExecutionError("SYNC_FAILED", err.Error())
//			}
//			return nil
//		},
//	))
//
// Retryable errors re-queue the job after its retry delay until MaxAttempts
// is reached. Non-retryable errors, other error types and panics move the job
// to the dead-letter set, where it stays inspectable via ListDeadLetters.
//
// Jobs returned by the queue are detached copies. Handlers never see the
// stored record and never run while the queue lock is held.
package jobqueue
