package jobapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sportolo/jobs/pkg/correlation"
	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

// Service is the part of the queue the API needs. *jobqueue.Queue implements it.
type Service interface {
	Submit(ctx context.Context, req jobqueue.EnqueueRequest) (*jobqueue.Job, bool, error)
	GetJob(ctx context.Context, id string) (*jobqueue.Job, error)
	MetricsSnapshot(ctx context.Context) (jobqueue.Metrics, error)
	ListDeadLetters(ctx context.Context) ([]jobqueue.Job, error)
}

// Handler serves the job routes.
type Handler struct {
	svc    Service
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for request failures
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClock sets the clock used for envelope timestamps
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler creates a Handler for svc.
func NewHandler(svc Service, opts ...Option) (*Handler, error) {
	if svc == nil {
		return nil, jobqueue.ErrNilQueue
	}
	h := &Handler{
		svc:    svc,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes returns a router with every job route and the correlation middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Route("/v1/system/background-jobs", func(r chi.Router) {
		r.Post("/", h.enqueue)
		r.Get("/metrics", h.metrics)
		r.Get("/dead-letters", h.deadLetters)
		r.Get("/{jobID}", h.getJob)
	})
	return r
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.MetricsSnapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, m)
}

func (h *Handler) deadLetters(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListDeadLetters(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, newDeadLetterList(jobs))
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, newJobResponse(*job))
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req jobqueue.EnqueueRequest
	if err := bindJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.CorrelationID == "" {
		req.CorrelationID = correlation.FromContext(r.Context())
	}

	job, created, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.ok(w, r, status, newJobResponse(*job))
}

func (h *Handler) ok(w http.ResponseWriter, r *http.Request, status int, data any) {
	body := envelope{Data: data, Meta: meta{Status: "ok", Timestamp: h.now().UTC()}}
	if err := writeJSON(w, status, body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response", logger.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	httpErr := httpErrorFor(err)
	message := err.Error()
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "job api request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err))
		message = http.StatusText(httpErr.Status)
	}
	body := errorBody{Error: errorDetail{Code: httpErr.Code, Message: message}}
	if werr := writeJSON(w, httpErr.Status, body); werr != nil {
		h.logger.WarnContext(r.Context(), "failed to write response", logger.Error(werr))
	}
}
