package job

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omnipress/publishq/internal/dto"
	"github.com/omnipress/publishq/internal/models"
)

// JobFilters narrows Paginate results. Predicates AND together; Search
// matches idempotency keys and error messages by substring.
type JobFilters struct {
	Status  string
	Channel string
	Search  string
}

// DLQStats is the observability summary of the dead letter queue.
type DLQStats struct {
	Total     int64            `json:"total"`
	Recent24h int64            `json:"recent_24h"`
	ByChannel map[string]int64 `json:"by_channel"`
}

// JobRepoInterface defines the contract for job persistence. Not-found is
// never an error at this layer: lookups return nil and conditional updates
// return nil/zero when no row matched. Only genuine storage failures
// propagate.
type JobRepoInterface interface {
	// Enqueue inserts the job unless a live (pending or running) job already
	// holds the same (channel, idempotency key) pair, in which case the
	// existing job is returned and created is false.
	Enqueue(ctx context.Context, job *models.Job) (result *models.Job, created bool, err error)

	// Claim atomically transitions one pending, due job to running and
	// increments its attempt counter. Returns nil when the job was already
	// claimed, completed, or is not yet due.
	Claim(ctx context.Context, id uint, now time.Time) (*models.Job, error)

	MarkCompleted(ctx context.Context, id uint, remoteID string) error

	// Reschedule returns a running job to pending with a new run time,
	// recording the failure message.
	Reschedule(ctx context.Context, id uint, runAt time.Time, errMsg string) error

	// MarkFailed parks the job in its terminal failed state.
	MarkFailed(ctx context.Context, id uint, errMsg string) error

	FindByID(ctx context.Context, id uint) (*models.Job, error)

	// DueJobs lists pending jobs with run_at <= now in (run_at, id) order.
	DueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error)

	Paginate(ctx context.Context, page, perPage int, filters JobFilters) ([]models.Job, int64, error)

	// RunningChannels counts running jobs grouped by channel.
	RunningChannels(ctx context.Context) (map[string]int64, error)

	// Replay forces a pending or failed job back into the runnable set now.
	// Returns nil when the job is missing or in a non-replayable state.
	Replay(ctx context.Context, id uint, now time.Time) (*models.Job, error)

	// ReleaseStuck sweeps running jobs claimed before the cutoff back to
	// pending and returns how many were recovered.
	ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error)

	// LinkChild records a follow-up job reference on the parent.
	LinkChild(ctx context.Context, parentID, childID uint) error
}

// DLQRepoInterface defines the contract for dead-letter persistence.
type DLQRepoInterface interface {
	Move(ctx context.Context, job *models.Job, finalError string, now time.Time) (*models.DLQEntry, error)
	Get(ctx context.Context, id uint) (*models.DLQEntry, error)
	Paginate(ctx context.Context, page, perPage int, channel string) ([]models.DLQEntry, int64, error)
	Stats(ctx context.Context, now time.Time) (*DLQStats, error)
	MarkReplayed(ctx context.Context, id, newJobID uint, now time.Time) error
	// Cleanup purges entries moved before the cutoff. With dryRun it only
	// reports how many would go.
	Cleanup(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error)
}

// JobServiceInterface defines the business operations exposed to producers,
// the dispatcher, and the worker loop.
type JobServiceInterface interface {
	EnqueueJob(ctx context.Context, req *dto.EnqueueDTO) (*dto.JobResponseDTO, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error)
	ListJobs(ctx context.Context, page, perPage int, filters JobFilters) (*dto.JobPageDTO, error)
	RunningChannels(ctx context.Context) (map[string]int64, error)
	ReplayJob(ctx context.Context, id uint) (*dto.JobResponseDTO, error)

	CompleteJob(ctx context.Context, jobID uint, remoteID string) error
	FailJob(ctx context.Context, job *models.Job, message string, retryable bool) error
	RescheduleCircuitOpen(ctx context.Context, job *models.Job, message string) error

	ListDLQ(ctx context.Context, page, perPage int, channel string) (*dto.DLQPageDTO, error)
	DLQStats(ctx context.Context) (*DLQStats, error)
	RetryDLQ(ctx context.Context, dlqID uint) (*dto.JobResponseDTO, error)
	CleanupDLQ(ctx context.Context, olderThanDays int, dryRun bool) (int64, error)
}

// JobHandlerInterface defines the producer-facing HTTP handlers.
type JobHandlerInterface interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Replay(c *gin.Context)
	RunningChannels(c *gin.Context)
}
