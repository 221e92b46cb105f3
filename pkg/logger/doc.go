// Package logger builds *slog.Logger instances for the job service and holds
// the attribute helpers that keep log keys consistent across packages.
//
// New applies functional options, picks a JSON or text handler, and wraps it
// in a decorator that runs ContextExtractor callbacks on every record so
// context-scoped values (correlation id, environment) are logged without
// threading them through call sites.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "jobs"),
//		logger.WithContextExtractors(correlation.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "background_job_enqueued",
//		logger.JobID(job.ID),
//		logger.Pipeline(string(job.Pipeline)),
//	)
//
// Helpers such as Error return an empty slog.Attr for nil input, which slog
// drops, so callers need no nil checks.
package logger
