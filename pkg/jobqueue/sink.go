package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
)

// PipelineDispatch is a request from an integration to run a pipeline for
// one external activity.
type PipelineDispatch struct {
	DispatchID         string   `json:"dispatchId"`
	Pipeline           Pipeline `json:"pipeline"`
	ExternalActivityID string   `json:"externalActivityId"`
	PlannedWorkoutID   *string  `json:"plannedWorkoutId"`
	SequenceNumber     int      `json:"sequenceNumber"`
}

// DispatchPayload is the job payload produced by DispatchSink.
type DispatchPayload struct {
	ExternalActivityID string  `json:"externalActivityId"`
	PlannedWorkoutID   *string `json:"plannedWorkoutId"`
	SequenceNumber     int     `json:"sequenceNumber"`
}

// Enqueuer is the write side of a queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, req EnqueueRequest) (*Job, error)
}

// DispatchSink turns integration dispatches into queue jobs. Re-delivering
// the same dispatch replays the existing job.
type DispatchSink struct {
	queue Enqueuer
}

// NewDispatchSink creates a sink writing to q.
func NewDispatchSink(q Enqueuer) (*DispatchSink, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	return &DispatchSink{queue: q}, nil
}

// Enqueue submits d on behalf of submitter.
// The idempotency key is "<pipeline>:<externalActivityId>:<sequenceNumber>"
// and the dispatch id becomes the correlation id.
func (s *DispatchSink) Enqueue(ctx context.Context, submitter string, d PipelineDispatch) (*Job, error) {
	if d.SequenceNumber < 1 {
		return nil, invalidArgument("sequence number must be at least 1")
	}
	if d.ExternalActivityID == "" {
		return nil, invalidArgument("external activity id is required")
	}

	payload, err := json.Marshal(DispatchPayload{
		ExternalActivityID: d.ExternalActivityID,
		PlannedWorkoutID:   d.PlannedWorkoutID,
		SequenceNumber:     d.SequenceNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("encode dispatch payload: %w", err)
	}

	return s.queue.Enqueue(ctx, EnqueueRequest{
		Submitter:      submitter,
		Pipeline:       d.Pipeline,
		IdempotencyKey: DispatchIdempotencyKey(d),
		CorrelationID:  d.DispatchID,
		Payload:        payload,
	})
}

// DispatchIdempotencyKey returns the key a dispatch is deduplicated under.
func DispatchIdempotencyKey(d PipelineDispatch) string {
	return fmt.Sprintf("%s:%s:%d", d.Pipeline, d.ExternalActivityID, d.SequenceNumber)
}
