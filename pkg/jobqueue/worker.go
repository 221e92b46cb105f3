package jobqueue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sportolo/jobs/pkg/logger"
)

// Processor runs one attempt of the next ready job. *Queue implements it.
type Processor interface {
	ProcessNext(ctx context.Context) (*Outcome, error)
}

// Worker drives a Processor in the background. On every tick each free slot
// drains jobs until the queue reports idle.
type Worker struct {
	processor Processor
	workerID  uuid.UUID
	sem       chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	stopMu    sync.Mutex // guards stopping and wg.Add

	pollInterval time.Duration
	logger       *slog.Logger

	cancel   context.CancelFunc
	done     chan struct{} // closed when the poll loop exits
	stopping atomic.Bool
}

// NewWorker creates a worker for p.
func NewWorker(p Processor, opts ...WorkerOption) (*Worker, error) {
	if p == nil {
		return nil, ErrNilQueue
	}

	options := &workerOptions{
		pollInterval: time.Second,
		concurrency:  1,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		processor:    p,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.concurrency),
		pollInterval: options.pollInterval,
		logger:       options.logger.With(logger.Component("worker")),
	}, nil
}

// ID returns the worker identifier used in logs.
func (w *Worker) ID() string {
	return w.workerID.String()
}

// Start begins processing in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel, w.done = cancel, done
	w.stopping.Store(false)
	w.mu.Unlock()

	go w.run(runCtx, done)

	w.logger.Info("worker started",
		logger.WorkerID(w.ID()),
		slog.Int("max_concurrent", cap(w.sem)),
		slog.Duration("poll_interval", w.pollInterval))

	return nil
}

// Stop cancels polling and waits for the poll loop and in-flight attempts
// to finish. Start blocks until a pending Stop has returned.
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return ErrWorkerNotRunning
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	w.cancel()
	<-w.done
	w.cancel, w.done = nil, nil

	w.logger.Info("worker stopping, waiting for active attempts to complete",
		logger.WorkerID(w.ID()))

	w.wg.Wait()

	w.logger.Info("worker stopped", logger.WorkerID(w.ID()))

	return nil
}

// Run starts the worker and returns a function suitable for errgroup
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return w.Stop()
	}
}

func (w *Worker) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.fillSlots(ctx)
		}
	}
}

// fillSlots starts a drain goroutine for every free slot.
func (w *Worker) fillSlots(ctx context.Context) {
	for {
		select {
		case w.sem <- struct{}{}:
		default:
			return
		}

		w.stopMu.Lock()
		if w.stopping.Load() {
			w.stopMu.Unlock()
			<-w.sem
			return
		}
		w.wg.Add(1)
		w.stopMu.Unlock()

		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			w.drain(ctx)
		}()
	}
}

// drain processes jobs until the queue is idle or the worker stops.
// A claimed attempt always runs to completion, even during shutdown.
func (w *Worker) drain(ctx context.Context) {
	attemptCtx := context.WithoutCancel(ctx)
	for ctx.Err() == nil {
		outcome, err := w.processor.ProcessNext(attemptCtx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to process job", logger.WorkerID(w.ID()), logger.Error(err))
			}
			return
		}
		if outcome == nil {
			return
		}
		w.logger.Debug("attempt finished",
			logger.WorkerID(w.ID()),
			logger.JobID(outcome.JobID),
			slog.String("status", string(outcome.Status)))
	}
}
