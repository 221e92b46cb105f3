// Package jobmetrics exports queue metrics to Prometheus.
package jobmetrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sportolo/jobs/pkg/jobqueue"
	"github.com/sportolo/jobs/pkg/logger"
)

const namespace = "background_jobs"

// Source provides point-in-time queue metrics. *jobqueue.Queue implements it.
type Source interface {
	MetricsSnapshot(ctx context.Context) (jobqueue.Metrics, error)
}

// Collector reads a fresh snapshot on every scrape.
type Collector struct {
	src     Source
	timeout time.Duration
	logger  *slog.Logger

	queueDepth     *prometheus.Desc
	enqueued       *prometheus.Desc
	attempts       *prometheus.Desc
	failedAttempts *prometheus.Desc
	retries        *prometheus.Desc
	deadLetters    *prometheus.Desc
	failureRate    *prometheus.Desc
	avgLatency     *prometheus.Desc
}

// Option configures a Collector.
type Option func(*Collector)

// WithTimeout bounds how long a scrape waits for a snapshot
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed scrapes
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCollector creates a collector over src.
func NewCollector(src Source, opts ...Option) (*Collector, error) {
	if src == nil {
		return nil, jobqueue.ErrNilQueue
	}
	c := &Collector{
		src:     src,
		timeout: 5 * time.Second,
		logger:  slog.Default(),

		queueDepth: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "queue_depth"),
			"Jobs currently waiting to run, including delayed retries.", nil, nil),
		enqueued: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "enqueued_total"),
			"Jobs created. Idempotent replays are not counted.", nil, nil),
		attempts: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "attempts_total"),
			"Handler attempts by outcome.", []string{"status"}, nil),
		failedAttempts: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "failed_attempts_total"),
			"Attempts that ended in a retry or a dead letter.", nil, nil),
		retries: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "retries_total"),
			"Attempts that scheduled a retry.", nil, nil),
		deadLetters: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "dead_letters_total"),
			"Jobs moved to the dead-letter set.", nil, nil),
		failureRate: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "failure_rate"),
			"Failed attempts divided by processed attempts.", nil, nil),
		avgLatency: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "average_latency_milliseconds"),
			"Mean handler latency across all attempts.", nil, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queueDepth
	ch <- c.enqueued
	ch <- c.attempts
	ch <- c.failedAttempts
	ch <- c.retries
	ch <- c.deadLetters
	ch <- c.failureRate
	ch <- c.avgLatency
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	m, err := c.src.MetricsSnapshot(ctx)
	if err != nil {
		c.logger.Warn("queue metrics unavailable", logger.Component("jobmetrics"), logger.Error(err))
		ch <- prometheus.NewInvalidMetric(c.queueDepth, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(m.QueueDepth))
	ch <- prometheus.MustNewConstMetric(c.enqueued, prometheus.CounterValue, float64(m.TotalEnqueued))
	ch <- prometheus.MustNewConstMetric(c.attempts, prometheus.CounterValue, float64(m.Succeeded), string(jobqueue.AttemptSucceeded))
	ch <- prometheus.MustNewConstMetric(c.attempts, prometheus.CounterValue, float64(m.Retries), string(jobqueue.AttemptRetryScheduled))
	ch <- prometheus.MustNewConstMetric(c.attempts, prometheus.CounterValue, float64(m.DeadLetters), string(jobqueue.AttemptDeadLetter))
	ch <- prometheus.MustNewConstMetric(c.failedAttempts, prometheus.CounterValue, float64(m.FailedAttempts))
	ch <- prometheus.MustNewConstMetric(c.retries, prometheus.CounterValue, float64(m.Retries))
	ch <- prometheus.MustNewConstMetric(c.deadLetters, prometheus.CounterValue, float64(m.DeadLetters))
	ch <- prometheus.MustNewConstMetric(c.failureRate, prometheus.GaugeValue, m.FailureRate)
	ch <- prometheus.MustNewConstMetric(c.avgLatency, prometheus.GaugeValue, m.AverageLatencyMS)
}

// Handler registers c with a fresh registry, alongside the Go runtime and
// process collectors, and returns the scrape handler for it.
func Handler(c *Collector) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	for _, col := range []prometheus.Collector{
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
