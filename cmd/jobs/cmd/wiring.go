package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sportolo/jobs/pkg/broadcast"
	"github.com/sportolo/jobs/pkg/config"
	"github.com/sportolo/jobs/pkg/correlation"
	"github.com/sportolo/jobs/pkg/environment"
	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

type appConfig struct {
	Name     string `env:"APP_NAME" envDefault:"jobs"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
}

// app is the set of long-lived components shared by the commands.
type app struct {
	cfg      appConfig
	env      environment.Environment
	log      *slog.Logger
	queue    *jobqueue.Queue
	outcomes *broadcast.MemoryBroadcaster[jobqueue.Outcome]
}

func newApp(opts ...logger.Option) (*app, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	var queueCfg jobqueue.Config
	if err := config.Load(&queueCfg); err != nil {
		return nil, err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithAttr(slog.String("version", cfg.Version)),
		logger.WithContextExtractors(correlation.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	log := logger.New(append(logOpts, opts...)...)

	policy := jobqueue.DefaultPolicy()
	if queueCfg.PolicyFile != "" {
		p, err := jobqueue.LoadPolicyFile(queueCfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	outcomes := broadcast.NewMemoryBroadcaster[jobqueue.Outcome](256)
	q := jobqueue.New(
		jobqueue.WithLogger(log.With(logger.Component("jobqueue"))),
		jobqueue.WithConfig(queueCfg),
		jobqueue.WithPolicy(policy),
		jobqueue.WithOutcomeBroadcaster(outcomes),
	)

	return &app{
		cfg:      cfg,
		env:      environment.Parse(cfg.Env),
		log:      log,
		queue:    q,
		outcomes: outcomes,
	}, nil
}

// watchDeadLetters logs every dead-lettered job until ctx is done.
func (a *app) watchDeadLetters(ctx context.Context) error {
	sub := a.outcomes.Subscribe(ctx)
	defer sub.Close()

	for msg := range sub.Receive() {
		o := msg.Data
		if o.Status != jobqueue.AttemptDeadLetter {
			continue
		}
		job, err := a.queue.GetJob(ctx, o.JobID)
		if err != nil {
			continue
		}
		a.log.ErrorContext(correlation.WithContext(ctx, job.CorrelationID), "dead letter requires operator attention",
			logger.JobID(job.ID),
			logger.Pipeline(string(job.Pipeline)),
			logger.Submitter(job.Submitter),
			logger.Attempt(job.AttemptCount),
			logger.ErrorCode(job.LastErrorCode),
			slog.String("error_message", job.LastErrorMessage),
		)
	}
	return nil
}

func (a *app) close() {
	if err := a.outcomes.Close(); err != nil {
		a.log.Warn("closing outcome broadcaster", logger.Error(err))
	}
}

func (a *app) String() string {
	return fmt.Sprintf("%s %s (%s)", a.cfg.Name, a.cfg.Version, a.env)
}
