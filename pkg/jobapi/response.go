package jobapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sportolo/jobs/pkg/jobqueue"
)

type envelope struct {
	Data any  `json:"data"`
	Meta meta `json:"meta"`
}

type meta struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// jobResponse is the wire form of a job.
type jobResponse struct {
	jobqueue.Job
	RetryDelaySeconds int `json:"retryDelaySeconds"`
}

func newJobResponse(j jobqueue.Job) jobResponse {
	return jobResponse{Job: j, RetryDelaySeconds: j.RetryDelaySeconds()}
}

type deadLetterResponse struct {
	JobID            string            `json:"jobId"`
	Submitter        string            `json:"submitter"`
	Pipeline         jobqueue.Pipeline `json:"pipeline"`
	IdempotencyKey   string            `json:"idempotencyKey"`
	CorrelationID    string            `json:"correlationId"`
	AttemptCount     int               `json:"attemptCount"`
	MaxAttempts      int               `json:"maxAttempts"`
	LastErrorCode    *string           `json:"lastErrorCode"`
	LastErrorMessage *string           `json:"lastErrorMessage"`
	LastFailedAt     *time.Time        `json:"lastFailedAt"`
}

type deadLetterListResponse struct {
	Jobs []deadLetterResponse `json:"jobs"`
}

func newDeadLetterList(jobs []jobqueue.Job) deadLetterListResponse {
	out := deadLetterListResponse{Jobs: make([]deadLetterResponse, 0, len(jobs))}
	for _, j := range jobs {
		out.Jobs = append(out.Jobs, deadLetterResponse{
			JobID:            j.ID,
			Submitter:        j.Submitter,
			Pipeline:         j.Pipeline,
			IdempotencyKey:   j.IdempotencyKey,
			CorrelationID:    j.CorrelationID,
			AttemptCount:     j.AttemptCount,
			MaxAttempts:      j.MaxAttempts,
			LastErrorCode:    optional(j.LastErrorCode),
			LastErrorMessage: optional(j.LastErrorMessage),
			LastFailedAt:     j.LastFailedAt,
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
