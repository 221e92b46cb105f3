package jobapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sportolo/jobs/pkg/correlation"
	"github.com/sportolo/jobs/pkg/jobapi"
	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"meta"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T, svc jobapi.Service) http.Handler {
	t.Helper()
	h, err := jobapi.NewHandler(svc,
		jobapi.WithLogger(logger.Discard()),
		jobapi.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return h.Routes()
}

func newQueue(t *testing.T) *jobqueue.Queue {
	t.Helper()
	return jobqueue.New(
		jobqueue.WithLogger(logger.Discard()),
		jobqueue.WithPolicy(jobqueue.DefaultPolicy()),
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "ok", env.Meta.Status)
	assert.Equal(t, fixedNow, env.Meta.Timestamp)
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

const enqueueBody = `{
	"submitter": "athlete-1",
	"pipeline": "workout_sync",
	"idempotencyKey": "workout_sync:wahoo-1:1",
	"correlationId": "dispatch-1",
	"payload": {"externalActivityId": "wahoo-1", "sequenceNumber": 1},
	"maxAttempts": 2,
	"retryDelaySeconds": 5
}`

func TestNewHandler(t *testing.T) {
	t.Parallel()

	_, err := jobapi.NewHandler(nil)
	require.ErrorIs(t, err, jobqueue.ErrNilQueue)
}

func TestEnqueue(t *testing.T) {
	t.Parallel()

	t.Run("created then replayed", func(t *testing.T) {
		t.Parallel()

		h := newServer(t, newQueue(t))

		rec := do(t, h, http.MethodPost, "/v1/system/background-jobs", enqueueBody)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		var job map[string]any
		decodeEnvelope(t, rec, &job)
		assert.Equal(t, "bg-job-000001", job["jobId"])
		assert.Equal(t, "queued", job["status"])
		assert.Equal(t, float64(2), job["maxAttempts"])
		assert.Equal(t, float64(5), job["retryDelaySeconds"])
		assert.Equal(t, "dispatch-1", job["correlationId"])

		rec = do(t, h, http.MethodPost, "/v1/system/background-jobs", enqueueBody)
		require.Equal(t, http.StatusOK, rec.Code)
		decodeEnvelope(t, rec, &job)
		assert.Equal(t, "bg-job-000001", job["jobId"])
	})

	t.Run("conflict", func(t *testing.T) {
		t.Parallel()

		h := newServer(t, newQueue(t))
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/system/background-jobs", enqueueBody).Code)

		drifted := strings.Replace(enqueueBody, `"wahoo-1", "sequenceNumber"`, `"wahoo-2", "sequenceNumber"`, 1)
		rec := do(t, h, http.MethodPost, "/v1/system/background-jobs", drifted)
		require.Equal(t, http.StatusConflict, rec.Code)
		env := decodeError(t, rec)
		assert.Equal(t, "idempotency_conflict", env.Error.Code)
		assert.Equal(t, "idempotency key already used with a different payload", env.Error.Message)
	})

	t.Run("correlation id from header", func(t *testing.T) {
		t.Parallel()

		h := newServer(t, newQueue(t))
		body := strings.Replace(enqueueBody, `"correlationId": "dispatch-1",`, "", 1)
		req := httptest.NewRequest(http.MethodPost, "/v1/system/background-jobs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(correlation.Header, "trace-77")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "trace-77", rec.Header().Get(correlation.Header))
		var job map[string]any
		decodeEnvelope(t, rec, &job)
		assert.Equal(t, "trace-77", job["correlationId"])
	})

	tests := []struct {
		name   string
		body   string
		ctype  string
		status int
		code   string
	}{
		{"invalid attempts", strings.Replace(enqueueBody, `"maxAttempts": 2`, `"maxAttempts": 0`, 1), "application/json", http.StatusUnprocessableEntity, "invalid_request"},
		{"unknown pipeline", strings.Replace(enqueueBody, `"pipeline": "workout_sync"`, `"pipeline": "calendar_export"`, 1), "application/json", http.StatusUnprocessableEntity, "unknown_pipeline"},
		{"unknown field", `{"submitter":"a","surprise":true}`, "application/json", http.StatusBadRequest, "bad_request"},
		{"malformed", `{"submitter":`, "application/json", http.StatusBadRequest, "bad_request"},
		{"trailing data", enqueueBody + `{}`, "application/json", http.StatusBadRequest, "bad_request"},
		{"wrong content type", enqueueBody, "text/plain", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"missing content type", enqueueBody, "", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"too large", `{"submitter":"` + strings.Repeat("a", jobapi.MaxBodyBytes) + `"}`, "application/json", http.StatusRequestEntityTooLarge, "request_entity_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := newQueue(t)
			h := newServer(t, q)
			req := httptest.NewRequest(http.MethodPost, "/v1/system/background-jobs", strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)

			m, err := q.MetricsSnapshot(context.Background())
			require.NoError(t, err)
			assert.Zero(t, m.TotalEnqueued)
		})
	}
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	q := newQueue(t)
	h := newServer(t, q)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/system/background-jobs", enqueueBody).Code)

	rec := do(t, h, http.MethodGet, "/v1/system/background-jobs/bg-job-000001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var job map[string]any
	decodeEnvelope(t, rec, &job)
	assert.Equal(t, "athlete-1", job["submitter"])
	assert.Equal(t, []any{}, job["attempts"])

	rec = do(t, h, http.MethodGet, "/v1/system/background-jobs/bg-job-424242", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "job_not_found", decodeError(t, rec).Error.Code)
}

func TestMetricsAndDeadLetters(t *testing.T) {
	t.Parallel()

	q := newQueue(t)
	q.RegisterHandler(jobqueue.PipelineWorkoutSync, jobqueue.HandlerFunc(func(context.Context, jobqueue.Job) error {
		return jobqueue.NewTerminalError("ACTIVITY_REJECTED", "activity is malformed")
	}))
	h := newServer(t, q)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/system/background-jobs", enqueueBody).Code)
	_, err := q.ProcessUntilIdle(context.Background(), 0)
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/v1/system/background-jobs/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m map[string]any
	decodeEnvelope(t, rec, &m)
	assert.Equal(t, float64(1), m["totalEnqueuedCount"])
	assert.Equal(t, float64(1), m["deadLetterCount"])
	assert.Equal(t, float64(1), m["failureRate"])
	assert.Equal(t, float64(0), m["queueDepth"])

	rec = do(t, h, http.MethodGet, "/v1/system/background-jobs/dead-letters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Jobs []struct {
			JobID         string     `json:"jobId"`
			AttemptCount  int        `json:"attemptCount"`
			LastErrorCode *string    `json:"lastErrorCode"`
			LastFailedAt  *time.Time `json:"lastFailedAt"`
		} `json:"jobs"`
	}
	decodeEnvelope(t, rec, &list)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, "bg-job-000001", list.Jobs[0].JobID)
	assert.Equal(t, 1, list.Jobs[0].AttemptCount)
	require.NotNil(t, list.Jobs[0].LastErrorCode)
	assert.Equal(t, "ACTIVITY_REJECTED", *list.Jobs[0].LastErrorCode)
	assert.NotNil(t, list.Jobs[0].LastFailedAt)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Submit(ctx context.Context, req jobqueue.EnqueueRequest) (*jobqueue.Job, bool, error) {
	args := m.Called(ctx, req)
	job, _ := args.Get(0).(*jobqueue.Job)
	return job, args.Bool(1), args.Error(2)
}

func (m *mockService) GetJob(ctx context.Context, id string) (*jobqueue.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*jobqueue.Job)
	return job, args.Error(1)
}

func (m *mockService) MetricsSnapshot(ctx context.Context) (jobqueue.Metrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(jobqueue.Metrics), args.Error(1)
}

func (m *mockService) ListDeadLetters(ctx context.Context) ([]jobqueue.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]jobqueue.Job)
	return jobs, args.Error(1)
}

func TestInternalError(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	svc.On("MetricsSnapshot", mock.Anything).Return(jobqueue.Metrics{}, errors.New("store exploded"))
	h := newServer(t, svc)

	rec := do(t, h, http.MethodGet, "/v1/system/background-jobs/metrics", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.Equal(t, "Internal Server Error", env.Error.Message)
	assert.False(t, bytes.Contains(rec.Body.Bytes(), []byte("exploded")))
	svc.AssertExpectations(t)
}
