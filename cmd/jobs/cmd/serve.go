package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sportolo/jobs/pkg/config"
	"github.com/sportolo/jobs/pkg/httpserver"
	"github.com/sportolo/jobs/pkg/jobapi"
	"github.com/sportolo/jobs/pkg/jobmetrics"
	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var workerCfg jobqueue.WorkerConfig
	if err := config.Load(&workerCfg); err != nil {
		return err
	}
	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	worker, err := jobqueue.NewWorker(a.queue,
		jobqueue.WithWorkerConfig(workerCfg),
		jobqueue.WithWorkerLogger(a.log),
	)
	if err != nil {
		return err
	}

	router, err := newRouter(a)
	if err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(a.log))

	a.log.Info("starting "+a.String(), logger.Component("serve"), logger.WorkerID(worker.ID()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, router) })
	g.Go(worker.Run(gctx))
	g.Go(func() error { return a.watchDeadLetters(gctx) })

	if err := g.Wait(); err != nil {
		a.log.Error("shutdown with error", logger.Error(err))
		return err
	}
	a.log.Info("shutdown complete", logger.Component("serve"))
	return nil
}

// newRouter mounts the job API, the Prometheus endpoint and health checks.
func newRouter(a *app) (http.Handler, error) {
	api, err := jobapi.NewHandler(a.queue, jobapi.WithLogger(a.log.With(logger.Component("jobapi"))))
	if err != nil {
		return nil, err
	}

	collector, err := jobmetrics.NewCollector(a.queue, jobmetrics.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	metrics, err := jobmetrics.Handler(collector)
	if err != nil {
		return nil, err
	}

	r := api.Routes()
	r.Handle("/metrics", metrics)
	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(a.log, func(ctx context.Context) error {
		_, err := a.queue.MetricsSnapshot(ctx)
		return err
	}))
	return r, nil
}
