// Package config loads service configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: optional
// .env files are read into the process environment first, then the
// environment is parsed into a struct using `env` and `envDefault` tags.
//
//	type QueueConfig struct {
//		DefaultMaxAttempts int `env:"JOBS_DEFAULT_MAX_ATTEMPTS" envDefault:"3"`
//	}
//
//	var cfg QueueConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Variables already present in the environment take precedence over values
// from .env files.
package config
