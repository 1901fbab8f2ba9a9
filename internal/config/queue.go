package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// QueueConfig holds the tunables of the dispatch pipeline. Every value has a
// working default so the binaries start with an empty environment.
type QueueConfig struct {
	PollInterval    time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	MaxPollInterval time.Duration `env:"QUEUE_MAX_POLL_INTERVAL,default=30s"`
	BatchLimit      int           `env:"QUEUE_BATCH_LIMIT,default=25"`
	MaxWorkers      int           `env:"QUEUE_MAX_WORKERS,default=10"`
	MaxAttempts     int           `env:"QUEUE_MAX_ATTEMPTS,default=5"`

	BackoffBase time.Duration `env:"QUEUE_BACKOFF_BASE,default=30s"`
	BackoffMax  time.Duration `env:"QUEUE_BACKOFF_MAX,default=1h"`

	BreakerThreshold int           `env:"BREAKER_THRESHOLD,default=5"`
	BreakerCooldown  time.Duration `env:"BREAKER_COOLDOWN,default=2m"`

	// Running jobs whose claim is older than this are swept back to pending
	// by the pool janitor.
	StuckAfter time.Duration `env:"QUEUE_STUCK_AFTER,default=10m"`
}

// to help with testing
var envProcess = envconfig.Process

func LoadQueueConfigFromEnv(ctx context.Context) (*QueueConfig, error) {
	var cfg QueueConfig
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateQueueConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateQueueConfig(cfg *QueueConfig) error {
	var errs []string

	if cfg.PollInterval <= 0 {
		errs = append(errs, "QUEUE_POLL_INTERVAL must be positive")
	}

	if cfg.MaxPollInterval < cfg.PollInterval {
		errs = append(errs, "QUEUE_MAX_POLL_INTERVAL must not be below QUEUE_POLL_INTERVAL")
	}

	if cfg.BatchLimit < 1 {
		errs = append(errs, "QUEUE_BATCH_LIMIT must be at least 1")
	}

	if cfg.MaxWorkers < 1 {
		errs = append(errs, "QUEUE_MAX_WORKERS must be at least 1")
	}

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 20 {
		errs = append(errs, "QUEUE_MAX_ATTEMPTS must be between 1 and 20")
	}

	if cfg.BackoffBase <= 0 {
		errs = append(errs, "QUEUE_BACKOFF_BASE must be positive")
	}

	if cfg.BackoffMax < cfg.BackoffBase {
		errs = append(errs, "QUEUE_BACKOFF_MAX must not be below QUEUE_BACKOFF_BASE")
	}

	if cfg.BreakerThreshold < 1 {
		errs = append(errs, "BREAKER_THRESHOLD must be at least 1")
	}

	if cfg.BreakerCooldown <= 0 {
		errs = append(errs, "BREAKER_COOLDOWN must be positive")
	}

	if cfg.StuckAfter <= 0 {
		errs = append(errs, "QUEUE_STUCK_AFTER must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
