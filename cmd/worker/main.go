package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omnipress/publishq/internal/backoff"
	"github.com/omnipress/publishq/internal/breaker"
	"github.com/omnipress/publishq/internal/channels"
	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dispatch"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"github.com/omnipress/publishq/internal/pool"
	"github.com/omnipress/publishq/internal/storage/postgres"
)

func main() {
	log.Println("Starting Worker...")

	ctx := context.Background()
	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	queueCfg, err := config.LoadQueueConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load queue config:", err)
	}

	transportCfg, err := channels.LoadTransportConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load transport config:", err)
	}

	db, err := postgres.ConnectDB(ctx, dbCfg)
	if err != nil {
		log.Fatal("Connection failed:", err)
	}

	if err := postgres.MigrateModels(db, &models.Job{}, &models.DLQEntry{}, &models.BreakerState{}); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("SUCCESS! Database connected")

	jobRepo := postgres.NewJobRepository(db)
	dlqRepo := postgres.NewDLQRepository(db)
	breakerRepo := postgres.NewBreakerRepository(db)

	policy := backoff.NewPolicy(queueCfg.BackoffBase, queueCfg.BackoffMax, true)
	registry := breaker.NewRegistry(queueCfg.BreakerThreshold, queueCfg.BreakerCooldown, breakerRepo, clock.System)
	service := job.NewJobService(jobRepo, dlqRepo, policy, clock.System, queueCfg.MaxAttempts)

	dispatcher := dispatch.New(service, registry)
	for _, p := range channels.DefaultPublishers(transportCfg) {
		dispatcher.Register(p)
	}

	workerPool := pool.NewWorkerPool(jobRepo, dispatcher, clock.System, queueCfg)
	workerPool.Start()
	log.Println("Worker pool active. Press Ctrl+C to stop.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	workerPool.Stop()
	log.Println("Shutdown complete.")
}
