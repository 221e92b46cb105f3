// Package cmd holds the cobra commands of the jobs binary.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sportolo/jobs/pkg/config"
)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:   "jobs",
		Short: "In-memory background job queue with retries and a dead-letter set",
		Long: `jobs runs the background job queue used by integrations to defer work.

Jobs are enqueued idempotently per submitter, retried with a fixed delay on
retryable failures and moved to a dead-letter set when they cannot succeed.

Configuration is read from the environment (and optional .env files):

  APP_ENV                     development | staging | production
  LOG_LEVEL                   debug | info | warn | error
  HTTP_ADDR                   listen address (default :8080)
  JOBS_DEFAULT_MAX_ATTEMPTS   attempts when a request sets none (default 3)
  JOBS_DEFAULT_RETRY_DELAY    delay between attempts (default 0s)
  JOBS_POLICY_FILE            YAML pipeline policy
  JOBS_WORKER_POLL_INTERVAL   worker poll interval (default 1s)
  JOBS_WORKER_CONCURRENCY     concurrent attempts (default 1)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadEnv(envFiles...)
		},
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "additional .env files to load")

	root.AddCommand(newServeCmd(), newSimulateCmd())
	return root
}
