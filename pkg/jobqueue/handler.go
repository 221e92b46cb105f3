package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
)

type (
	// Handler performs the real work of a job. Returning nil marks the attempt
	// as succeeded; returning an *ExecutionError classifies the failure; any
	// other error is treated as a non-retryable UNEXPECTED_ERROR.
	Handler interface {
		Handle(ctx context.Context, job Job) error
	}

	HandlerFunc func(ctx context.Context, job Job) error

	PayloadHandlerFunc[T any] func(ctx context.Context, job Job, payload T) error
)

func (f HandlerFunc) Handle(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// NewPayloadHandler decodes the job payload into T before calling fn.
// A payload that does not decode dead-letters the job, since retrying cannot fix it.
func NewPayloadHandler[T any](fn PayloadHandlerFunc[T]) Handler {
	return &payloadHandler[T]{handler: fn}
}

type payloadHandler[T any] struct {
	handler PayloadHandlerFunc[T]
}

func (h *payloadHandler[T]) Handle(ctx context.Context, job Job) error {
	var payload T
	if err := json.Unmarshal(normalizePayload(job.Payload), &payload); err != nil {
		return NewTerminalError(ErrorCodePayloadDecode, fmt.Sprintf("decode %s payload: %v", job.Pipeline, err))
	}
	return h.handler(ctx, job, payload)
}

var noopHandler = HandlerFunc(func(context.Context, Job) error { return nil })

// handlerRegistry maps pipelines to handlers; unregistered pipelines get a no-op.
type handlerRegistry struct {
	handlers map[Pipeline]Handler
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{handlers: make(map[Pipeline]Handler)}
}

func (r *handlerRegistry) register(pipeline Pipeline, h Handler) {
	if h == nil {
		delete(r.handlers, pipeline)
		return
	}
	r.handlers[pipeline] = h
}

func (r *handlerRegistry) lookup(pipeline Pipeline) Handler {
	if h, ok := r.handlers[pipeline]; ok {
		return h
	}
	return noopHandler
}
