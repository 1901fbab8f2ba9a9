package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQueueConfig() QueueConfig {
	return QueueConfig{
		PollInterval:     time.Second,
		MaxPollInterval:  30 * time.Second,
		BatchLimit:       25,
		MaxWorkers:       10,
		MaxAttempts:      5,
		BackoffBase:      30 * time.Second,
		BackoffMax:       time.Hour,
		BreakerThreshold: 5,
		BreakerCooldown:  2 * time.Minute,
		StuckAfter:       10 * time.Minute,
	}
}

func TestLoadQueueConfigFromEnv(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func(cfg *QueueConfig) error
		expectError   bool
		errorContains string
	}{
		{
			name: "valid configuration",
			setupEnv: func(cfg *QueueConfig) error {
				*cfg = validQueueConfig()
				return nil
			},
		},
		{
			name: "env processing failure",
			setupEnv: func(cfg *QueueConfig) error {
				return errors.New("env: QUEUE_POLL_INTERVAL malformed")
			},
			expectError:   true,
			errorContains: "failed to process env config",
		},
		{
			name: "validation failure surfaces",
			setupEnv: func(cfg *QueueConfig) error {
				*cfg = validQueueConfig()
				cfg.MaxAttempts = 50
				return nil
			},
			expectError:   true,
			errorContains: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalEnvProcess := envProcess
			defer func() { envProcess = originalEnvProcess }()

			envProcess = func(ctx context.Context, v any, mus ...envconfig.Mutator) error {
				return tt.setupEnv(v.(*QueueConfig))
			}

			cfg, err := LoadQueueConfigFromEnv(context.Background())

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, validQueueConfig(), *cfg)
		})
	}
}

func TestValidateQueueConfig(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(cfg *QueueConfig)
		errorContains string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *QueueConfig) {},
		},
		{
			name:          "poll interval must be positive",
			mutate:        func(cfg *QueueConfig) { cfg.PollInterval = 0 },
			errorContains: "QUEUE_POLL_INTERVAL must be positive",
		},
		{
			name:          "max poll below poll",
			mutate:        func(cfg *QueueConfig) { cfg.MaxPollInterval = 500 * time.Millisecond },
			errorContains: "QUEUE_MAX_POLL_INTERVAL must not be below",
		},
		{
			name:          "batch limit too small",
			mutate:        func(cfg *QueueConfig) { cfg.BatchLimit = 0 },
			errorContains: "QUEUE_BATCH_LIMIT must be at least 1",
		},
		{
			name:          "max attempts out of range",
			mutate:        func(cfg *QueueConfig) { cfg.MaxAttempts = 21 },
			errorContains: "QUEUE_MAX_ATTEMPTS must be between 1 and 20",
		},
		{
			name:          "backoff max below base",
			mutate:        func(cfg *QueueConfig) { cfg.BackoffMax = time.Second },
			errorContains: "QUEUE_BACKOFF_MAX must not be below",
		},
		{
			name:          "breaker threshold too small",
			mutate:        func(cfg *QueueConfig) { cfg.BreakerThreshold = 0 },
			errorContains: "BREAKER_THRESHOLD must be at least 1",
		},
		{
			name:          "stuck threshold must be positive",
			mutate:        func(cfg *QueueConfig) { cfg.StuckAfter = 0 },
			errorContains: "QUEUE_STUCK_AFTER must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validQueueConfig()
			tt.mutate(&cfg)

			err := validateQueueConfig(&cfg)

			if tt.errorContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
