package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/omnipress/publishq/internal/backoff"
	"github.com/omnipress/publishq/internal/breaker"
	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"github.com/omnipress/publishq/internal/storage/postgres"
	"github.com/omnipress/publishq/middleware"
)

func main() {
	log.Println("Starting API...")

	ctx := context.Background()
	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	queueCfg, err := config.LoadQueueConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load queue config:", err)
	}

	db, err := postgres.ConnectDB(ctx, dbCfg)
	if err != nil {
		log.Fatal("Connection failed:", err)
	}

	if err := postgres.MigrateModels(db, &models.Job{}, &models.DLQEntry{}, &models.BreakerState{}); err != nil {
		log.Fatal("Migration failed:", err)
	}

	jobRepo := postgres.NewJobRepository(db)
	dlqRepo := postgres.NewDLQRepository(db)
	breakerRepo := postgres.NewBreakerRepository(db)

	policy := backoff.NewPolicy(queueCfg.BackoffBase, queueCfg.BackoffMax, true)
	registry := breaker.NewRegistry(queueCfg.BreakerThreshold, queueCfg.BreakerCooldown, breakerRepo, clock.System)

	service := job.NewJobService(jobRepo, dlqRepo, policy, clock.System, queueCfg.MaxAttempts)
	jobHandler := job.NewJobHandler(service)
	dlqHandler := job.NewDLQHandler(service)
	breakerHandler := job.NewBreakerHandler(registry)

	r := gin.Default()
	r.Use(middleware.ErrorHandler())

	r.POST("/jobs", jobHandler.Create)
	r.GET("/jobs/:id", jobHandler.Get)
	r.GET("/jobs", jobHandler.List)
	r.POST("/jobs/:id/replay", jobHandler.Replay)
	r.GET("/channels/running", jobHandler.RunningChannels)

	r.GET("/dlq", dlqHandler.List)
	r.GET("/dlq/stats", dlqHandler.Stats)
	r.POST("/dlq/:id/retry", dlqHandler.Retry)
	r.DELETE("/dlq", dlqHandler.Cleanup)

	r.GET("/breakers", breakerHandler.List)
	r.POST("/breakers/:service/reset", breakerHandler.Reset)

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	if err := r.Run(addr); err != nil {
		log.Fatal("Server failed:", err)
	}
}
