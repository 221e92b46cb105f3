package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sportolo/jobs/pkg/correlation"
	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

type simulationReport struct {
	Outcomes    []jobqueue.Outcome `json:"outcomes"`
	Metrics     jobqueue.Metrics   `json:"metrics"`
	DeadLetters []jobqueue.Job     `json:"deadLetters"`
}

func newSimulateCmd() *cobra.Command {
	var (
		activities int
		submitter  string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Enqueue sample dispatches, drain the queue and print the result as JSON",
		Long: `simulate feeds sample integration dispatches through the queue with demo
handlers: workout_sync fails once with a retryable error for every even
sequence number, and fatigue_recompute rejects activities without a planned
workout. The queue is drained and the outcomes, metrics and dead letters are
printed as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if activities < 1 {
				return fmt.Errorf("--activities must be at least 1")
			}

			a, err := newApp(logger.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.close()

			report, err := simulate(cmd.Context(), a.queue, submitter, activities)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().IntVar(&activities, "activities", 3, "number of external activities to dispatch")
	cmd.Flags().StringVar(&submitter, "submitter", "athlete-demo", "submitter the dispatches are enqueued for")
	return cmd
}

func simulate(ctx context.Context, q *jobqueue.Queue, submitter string, activities int) (*simulationReport, error) {
	failed := make(map[string]bool)
	q.RegisterHandler(jobqueue.PipelineWorkoutSync, jobqueue.NewPayloadHandler(
		func(_ context.Context, job jobqueue.Job, p jobqueue.DispatchPayload) error {
			if p.SequenceNumber%2 == 0 && !failed[job.ID] {
				failed[job.ID] = true
				return jobqueue.NewExecutionError("PROVIDER_UNAVAILABLE", "provider did not respond")
			}
			return nil
		},
	))
	q.RegisterHandler(jobqueue.PipelineFatigueRecompute, jobqueue.NewPayloadHandler(
		func(_ context.Context, _ jobqueue.Job, p jobqueue.DispatchPayload) error {
			if p.PlannedWorkoutID == nil {
				return jobqueue.NewTerminalError("PLANNED_WORKOUT_MISSING", "activity is not linked to a planned workout")
			}
			return nil
		},
	))

	sink, err := jobqueue.NewDispatchSink(q)
	if err != nil {
		return nil, err
	}

	for i := 1; i <= activities; i++ {
		activityID := fmt.Sprintf("activity-%03d", i)
		var planned *string
		if i%3 != 0 {
			id := fmt.Sprintf("planned-%03d", i)
			planned = &id
		}
		for _, pipeline := range []jobqueue.Pipeline{jobqueue.PipelineWorkoutSync, jobqueue.PipelineFatigueRecompute} {
			dispatch := jobqueue.PipelineDispatch{
				DispatchID:         correlation.New(),
				Pipeline:           pipeline,
				ExternalActivityID: activityID,
				PlannedWorkoutID:   planned,
				SequenceNumber:     i,
			}
			if _, err := sink.Enqueue(ctx, submitter, dispatch); err != nil {
				return nil, fmt.Errorf("enqueue %s: %w", jobqueue.DispatchIdempotencyKey(dispatch), err)
			}
		}
	}

	outcomes, err := q.ProcessUntilIdle(ctx, 0)
	if err != nil {
		return nil, err
	}
	metrics, err := q.MetricsSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	dead, err := q.ListDeadLetters(ctx)
	if err != nil {
		return nil, err
	}

	return &simulationReport{Outcomes: outcomes, Metrics: metrics, DeadLetters: dead}, nil
}
