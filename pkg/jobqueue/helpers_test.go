package jobqueue_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestQueue(t *testing.T, opts ...jobqueue.Option) *jobqueue.Queue {
	t.Helper()
	opts = append([]jobqueue.Option{jobqueue.WithLogger(logger.Discard())}, opts...)
	return jobqueue.New(opts...)
}

func intPtr(v int) *int { return &v }

func request(key string, payload string) jobqueue.EnqueueRequest {
	return jobqueue.EnqueueRequest{
		Submitter:      "athlete-1",
		Pipeline:       jobqueue.PipelineWorkoutSync,
		IdempotencyKey: key,
		CorrelationID:  "corr-" + key,
		Payload:        json.RawMessage(payload),
	}
}

// failTimes fails the first n attempts with a retryable error, then succeeds.
func failTimes(n int) jobqueue.HandlerFunc {
	var mu sync.Mutex
	calls := 0
	return func(_ context.Context, _ jobqueue.Job) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= n {
			return jobqueue.NewExecutionError("PROVIDER_UNAVAILABLE", "provider timed out")
		}
		return nil
	}
}
