package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/omnipress/publishq/common"
	"github.com/omnipress/publishq/internal/backoff"
	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dto"
	"github.com/omnipress/publishq/internal/models"
	"gorm.io/datatypes"
)

type JobService struct {
	repo        JobRepoInterface
	dlq         DLQRepoInterface
	backoff     backoff.Policy
	clock       clock.Clock
	maxAttempts int
}

func NewJobService(repo JobRepoInterface, dlq DLQRepoInterface, policy backoff.Policy, clk clock.Clock, maxAttempts int) *JobService {
	if clk == nil {
		clk = clock.System
	}
	return &JobService{
		repo:        repo,
		dlq:         dlq,
		backoff:     policy,
		clock:       clk,
		maxAttempts: maxAttempts,
	}
}

var _ JobServiceInterface = (*JobService)(nil)

// EnqueueJob validates the submission, fills in defaults, and persists the
// job. Resubmitting the same (channel, idempotency key) while the earlier
// job is still live returns that job unchanged, so flaky producers can
// safely retry their own requests.
func (s *JobService) EnqueueJob(ctx context.Context, req *dto.EnqueueDTO) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	if !json.Valid(req.Payload) {
		return nil, common.Errf(http.StatusBadRequest, "payload must be valid JSON")
	}

	if !slices.Contains(config.AllowedChannels, req.Channel) {
		return nil, common.NewAPIError(
			http.StatusBadRequest,
			"invalid channel",
			map[string]any{
				"provided": req.Channel,
				"allowed":  config.AllowedChannels,
			},
		)
	}

	if err := validateChannelPayload(req.Channel, req.Payload); err != nil {
		return nil, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = s.maxAttempts
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	runAt := s.clock.Now()
	if req.RunAt != nil {
		runAt = req.RunAt.UTC()
	}

	j := models.Job{
		Channel:        req.Channel,
		Payload:        datatypes.JSON(req.Payload),
		Status:         config.JobStatusPending,
		RunAt:          runAt,
		MaxAttempts:    maxAttempts,
		IdempotencyKey: key,
	}

	result, created, err := s.repo.Enqueue(ctx, &j)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, common.Errf(http.StatusRequestTimeout, "request was canceled")
		case errors.Is(err, context.DeadlineExceeded):
			return nil, common.Errf(http.StatusRequestTimeout, "request timeout")
		default:
			return nil, common.Errf(http.StatusInternalServerError, "failed to add job to database")
		}
	}

	if created && req.ParentJobID != nil {
		if err := s.repo.LinkChild(ctx, *req.ParentJobID, result.ID); err != nil {
			return nil, common.Errf(http.StatusInternalServerError, "failed to link parent job")
		}
	}

	return toJobDTO(result), nil
}

// GetJobByID retrieves a job by its ID, mapping not-found and context
// failures to API errors.
func (s *JobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}
		return nil, common.Errf(http.StatusInternalServerError, "failed to get job")
	}
	if j == nil {
		return nil, common.Errf(http.StatusNotFound, "job not found")
	}

	return toJobDTO(j), nil
}

func (s *JobService) ListJobs(ctx context.Context, page, perPage int, filters JobFilters) (*dto.JobPageDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	jobs, total, err := s.repo.Paginate(ctx, page, perPage, filters)
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to list jobs")
	}

	items := make([]dto.JobResponseDTO, len(jobs))
	for i := range jobs {
		items[i] = *toJobDTO(&jobs[i])
	}

	return &dto.JobPageDTO{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *JobService) RunningChannels(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	counts, err := s.repo.RunningChannels(ctx)
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to count running jobs")
	}
	return counts, nil
}

// ReplayJob forces a pending or failed job back into the runnable set
// immediately.
func (s *JobService) ReplayJob(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	j, err := s.repo.Replay(ctx, id, s.clock.Now())
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to replay job")
	}
	if j == nil {
		return nil, common.Errf(http.StatusNotFound, "job not found or not replayable")
	}

	return toJobDTO(j), nil
}

// CompleteJob records a successful publish. An empty remoteID is legal
// (preview runs create no remote artifact).
func (s *JobService) CompleteJob(ctx context.Context, jobID uint, remoteID string) error {
	if err := s.repo.MarkCompleted(ctx, jobID, remoteID); err != nil {
		return fmt.Errorf("complete job %d: %w", jobID, err)
	}
	return nil
}

// FailJob drives the retry lifecycle: a retryable failure below the attempt
// ceiling is rescheduled with exponential backoff; anything else is terminal
// and lands in the DLQ. The terminal condition is !retryable OR attempts >=
// max, so even a retryable verdict cannot outlive the budget.
func (s *JobService) FailJob(ctx context.Context, j *models.Job, message string, retryable bool) error {
	now := s.clock.Now()

	if retryable && j.Attempts < j.MaxAttempts {
		runAt := s.backoff.NextRunAt(now, j.Attempts)
		if err := s.repo.Reschedule(ctx, j.ID, runAt, message); err != nil {
			return fmt.Errorf("reschedule job %d: %w", j.ID, err)
		}
		return nil
	}

	if err := s.repo.MarkFailed(ctx, j.ID, message); err != nil {
		return fmt.Errorf("mark job %d failed: %w", j.ID, err)
	}
	if _, err := s.dlq.Move(ctx, j, message, now); err != nil {
		return fmt.Errorf("move job %d to dlq: %w", j.ID, err)
	}
	return nil
}

// RescheduleCircuitOpen parks a job whose call never reached the external
// service. The breaker cooldown stands in for backoff and the attempt
// ceiling is not consulted: an open circuit must not burn the retry budget.
func (s *JobService) RescheduleCircuitOpen(ctx context.Context, j *models.Job, message string) error {
	runAt := s.clock.Now().Add(s.backoff.Base)
	if err := s.repo.Reschedule(ctx, j.ID, runAt, message); err != nil {
		return fmt.Errorf("reschedule job %d after circuit open: %w", j.ID, err)
	}
	return nil
}

func (s *JobService) ListDLQ(ctx context.Context, page, perPage int, channel string) (*dto.DLQPageDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	entries, total, err := s.dlq.Paginate(ctx, page, perPage, channel)
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to list dlq entries")
	}

	items := make([]dto.DLQEntryDTO, len(entries))
	for i := range entries {
		items[i] = toDLQDTO(&entries[i])
	}

	return &dto.DLQPageDTO{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *JobService) DLQStats(ctx context.Context) (*DLQStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	stats, err := s.dlq.Stats(ctx, s.clock.Now())
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to read dlq stats")
	}
	return stats, nil
}

// RetryDLQ re-enqueues a fresh pending job from a dead-letter entry. The new
// job gets its own idempotency key; the entry is stamped as replayed but
// kept for auditing.
func (s *JobService) RetryDLQ(ctx context.Context, dlqID uint) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	entry, err := s.dlq.Get(ctx, dlqID)
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to read dlq entry")
	}
	if entry == nil {
		return nil, common.Errf(http.StatusNotFound, "dlq entry not found")
	}

	j := models.Job{
		Channel:        entry.Channel,
		Payload:        entry.Payload,
		Status:         config.JobStatusPending,
		RunAt:          s.clock.Now(),
		MaxAttempts:    s.maxAttempts,
		IdempotencyKey: uuid.NewString(),
	}

	result, _, err := s.repo.Enqueue(ctx, &j)
	if err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to re-enqueue dlq entry")
	}

	if err := s.dlq.MarkReplayed(ctx, entry.ID, result.ID, s.clock.Now()); err != nil {
		return nil, common.Errf(http.StatusInternalServerError, "failed to mark dlq entry replayed")
	}

	return toJobDTO(result), nil
}

func (s *JobService) CleanupDLQ(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	if olderThanDays < 1 {
		return 0, common.Errf(http.StatusBadRequest, "olderThanDays must be at least 1")
	}

	cutoff := s.clock.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)
	count, err := s.dlq.Cleanup(ctx, cutoff, dryRun)
	if err != nil {
		return 0, common.Errf(http.StatusInternalServerError, "failed to clean up dlq")
	}
	return count, nil
}

func toJobDTO(j *models.Job) *dto.JobResponseDTO {
	return &dto.JobResponseDTO{
		ID:             j.ID,
		Channel:        j.Channel,
		Payload:        json.RawMessage(j.Payload),
		Status:         string(j.Status),
		RunAt:          j.RunAt,
		Attempts:       j.Attempts,
		MaxAttempts:    j.MaxAttempts,
		Error:          j.Error,
		IdempotencyKey: j.IdempotencyKey,
		RemoteID:       j.RemoteID,
		ChildJobID:     j.ChildJobID,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func toDLQDTO(e *models.DLQEntry) dto.DLQEntryDTO {
	return dto.DLQEntryDTO{
		ID:            e.ID,
		OriginalJobID: e.OriginalJobID,
		Channel:       e.Channel,
		Payload:       json.RawMessage(e.Payload),
		TotalAttempts: e.TotalAttempts,
		FinalError:    e.FinalError,
		MovedToDLQAt:  e.MovedToDLQAt,
		ReplayedAt:    e.ReplayedAt,
		ReplayJobID:   e.ReplayJobID,
	}
}
