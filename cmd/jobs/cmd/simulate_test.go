package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

func TestSimulate(t *testing.T) {
	t.Parallel()

	q := jobqueue.New(jobqueue.WithLogger(logger.Discard()), jobqueue.WithPolicy(jobqueue.DefaultPolicy()))

	report, err := simulate(context.Background(), q, "athlete-1", 3)
	require.NoError(t, err)

	// activity 2 retries once; activity 3 has no planned workout
	assert.Equal(t, 6, report.Metrics.TotalEnqueued)
	assert.Equal(t, 7, report.Metrics.ProcessedAttempts)
	assert.Equal(t, 5, report.Metrics.Succeeded)
	assert.Equal(t, 1, report.Metrics.Retries)
	assert.Equal(t, 1, report.Metrics.DeadLetters)
	assert.Zero(t, report.Metrics.QueueDepth)
	assert.Len(t, report.Outcomes, 7)

	require.Len(t, report.DeadLetters, 1)
	assert.Equal(t, jobqueue.PipelineFatigueRecompute, report.DeadLetters[0].Pipeline)
	assert.Equal(t, "fatigue_recompute:activity-003:3", report.DeadLetters[0].IdempotencyKey)
	assert.Equal(t, "PLANNED_WORKOUT_MISSING", report.DeadLetters[0].LastErrorCode)
}

func TestSimulateCommand(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JOBS_POLICY_FILE", "")

	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"simulate", "--activities", "2"})

	require.NoError(t, root.ExecuteContext(context.Background()))

	var report struct {
		Metrics     jobqueue.Metrics `json:"metrics"`
		DeadLetters []jobqueue.Job   `json:"deadLetters"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 4, report.Metrics.TotalEnqueued)
	assert.Equal(t, 4, report.Metrics.Succeeded)
	assert.Empty(t, report.DeadLetters)
}

func TestSimulateCommand_InvalidFlag(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"simulate", "--activities", "0"})

	require.Error(t, root.ExecuteContext(context.Background()))
}

func TestNewRouter(t *testing.T) {
	a, err := newApp(logger.WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	defer a.close()

	r, err := newRouter(a)
	require.NoError(t, err)
	assert.NotNil(t, r)
}
