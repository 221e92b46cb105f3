package jobqueue

import "time"

// Config holds queue-wide defaults. Pipeline policy values take precedence.
type Config struct {
	DefaultMaxAttempts int           `env:"JOBS_DEFAULT_MAX_ATTEMPTS" envDefault:"3"`
	DefaultRetryDelay  time.Duration `env:"JOBS_DEFAULT_RETRY_DELAY" envDefault:"0s"`
	DrainMaxIterations int           `env:"JOBS_DRAIN_MAX_ITERATIONS" envDefault:"500"`
	PolicyFile         string        `env:"JOBS_POLICY_FILE"`
}

// WorkerConfig holds the configuration for the background worker
type WorkerConfig struct {
	PollInterval time.Duration `env:"JOBS_WORKER_POLL_INTERVAL" envDefault:"1s"`
	Concurrency  int           `env:"JOBS_WORKER_CONCURRENCY" envDefault:"1"`
}

func defaultConfig() Config {
	return Config{
		DefaultMaxAttempts: DefaultMaxAttempts,
		DefaultRetryDelay:  DefaultRetryDelay,
		DrainMaxIterations: DefaultDrainMaxIterations,
	}
}
