// Package cli implements the publishctl operational surface: thin read and
// control wrappers over the queue, breaker, and DLQ contracts.
package cli

import (
	"context"

	"github.com/omnipress/publishq/internal/backoff"
	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"github.com/omnipress/publishq/internal/storage/postgres"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "publishctl",
	Short: "Operate the publishing job queue",
	Long:  "publishctl inspects and controls queue jobs, circuit breakers, and the dead letter queue.",
}

func Execute() error {
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(dlqCmd)
	rootCmd.AddCommand(breakersCmd)
	rootCmd.AddCommand(diagCmd)
	return rootCmd.Execute()
}

// env holds everything a command needs once the database is open.
type env struct {
	db          *gorm.DB
	jobRepo     *postgres.JobRepository
	dlqRepo     *postgres.DLQRepository
	breakerRepo *postgres.BreakerRepository
	service     job.JobServiceInterface
	queueCfg    *config.QueueConfig
}

func openEnv(ctx context.Context) (*env, error) {
	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	queueCfg, err := config.LoadQueueConfigFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	db, err := postgres.ConnectDB(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	if err := postgres.MigrateModels(db, &models.Job{}, &models.DLQEntry{}, &models.BreakerState{}); err != nil {
		return nil, err
	}

	jobRepo := postgres.NewJobRepository(db)
	dlqRepo := postgres.NewDLQRepository(db)
	policy := backoff.NewPolicy(queueCfg.BackoffBase, queueCfg.BackoffMax, true)

	return &env{
		db:          db,
		jobRepo:     jobRepo,
		dlqRepo:     dlqRepo,
		breakerRepo: postgres.NewBreakerRepository(db),
		service:     job.NewJobService(jobRepo, dlqRepo, policy, clock.System, queueCfg.MaxAttempts),
		queueCfg:    queueCfg,
	}, nil
}

func closeEnv(e *env) {
	if e == nil || e.db == nil {
		return
	}
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
