package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportolo/jobs/pkg/config"
)

type testConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	Delay       time.Duration `env:"DELAY" envDefault:"0s"`
	Name        string        `env:"NAME,required"`
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"NAME": "jobs"}))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxAttempts)
		assert.Zero(t, cfg.Delay)
		assert.Equal(t, "jobs", cfg.Name)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := config.Load(&cfg,
			config.WithPrefix("JOBS_"),
			config.WithEnvironment(map[string]string{
				"JOBS_NAME":         "sync",
				"JOBS_MAX_ATTEMPTS": "5",
				"JOBS_DELAY":        "2s",
			}),
		)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.Delay)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()

		var cfg *testConfig
		require.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
		assert.Panics(t, func() { config.MustLoad(cfg) })
	})
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("CONFIG_TEST_LOADENV_NAME=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CONFIG_TEST_LOADENV_NAME") })

	require.NoError(t, config.LoadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CONFIG_TEST_LOADENV_NAME"))

	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, config.ErrLoadingEnvFile)

	require.NoError(t, config.LoadEnv())
}
