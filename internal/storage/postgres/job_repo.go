package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ job.JobRepoInterface = (*JobRepository)(nil)

var liveStatuses = []config.JobStatus{config.JobStatusPending, config.JobStatusRunning}

// Enqueue inserts the job, unless a live job already holds the same
// (channel, idempotency key) pair. The lookup and insert run in one
// transaction so concurrent duplicate submissions resolve to a single row.
// A key becomes reusable once its earlier job is terminal.
func (r *JobRepository) Enqueue(ctx context.Context, j *models.Job) (*models.Job, bool, error) {
	var result *models.Job
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Job
		err := tx.Where("channel = ? AND idempotency_key = ? AND status IN ?",
			j.Channel, j.IdempotencyKey, liveStatuses).
			First(&existing).Error
		if err == nil {
			result = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup live job: %w", err)
		}

		if err := tx.Create(j).Error; err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		result = j
		created = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("enqueue job: %w", err)
	}

	return result, created, nil
}

// Claim is the one operation that must be race-free: a single conditional
// UPDATE matching id, pending status, and due run_at. Concurrent claimers
// get RowsAffected == 0 and back off; no read-then-write window exists.
func (r *JobRepository) Claim(ctx context.Context, id uint, now time.Time) (*models.Job, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ? AND run_at <= ?", id, config.JobStatusPending, now).
		Updates(map[string]any{
			"status":     config.JobStatusRunning,
			"attempts":   gorm.Expr("attempts + ?", 1),
			"claimed_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("claim job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var claimed models.Job
	if err := r.db.WithContext(ctx).First(&claimed, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("reload claimed job: %w", err)
	}
	return &claimed, nil
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id uint, remoteID string) error {
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     config.JobStatusCompleted,
			"remote_id":  remoteID,
			"claimed_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (r *JobRepository) Reschedule(ctx context.Context, id uint, runAt time.Time, errMsg string) error {
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     config.JobStatusPending,
			"run_at":     runAt.UTC(),
			"error":      errMsg,
			"claimed_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("reschedule job: %w", err)
	}
	return nil
}

func (r *JobRepository) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     config.JobStatusFailed,
			"error":      errMsg,
			"claimed_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// FindByID returns nil when no job exists with the given id.
func (r *JobRepository) FindByID(ctx context.Context, id uint) (*models.Job, error) {
	var j models.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// DueJobs returns pending jobs ready to run, oldest schedule first with id
// as the FIFO tie-break.
func (r *JobRepository) DueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND run_at <= ?", config.JobStatusPending, now).
		Order("run_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list due jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) Paginate(ctx context.Context, page, perPage int, filters job.JobFilters) ([]models.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	q := r.db.WithContext(ctx).Model(&models.Job{})
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Channel != "" {
		q = q.Where("channel = ?", filters.Channel)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where("idempotency_key LIKE ? OR error LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	var jobs []models.Job
	err := q.Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("paginate jobs: %w", err)
	}

	return jobs, total, nil
}

func (r *JobRepository) RunningChannels(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Channel string
		Count   int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Select("channel, COUNT(*) AS count").
		Where("status = ?", config.JobStatusRunning).
		Group("channel").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count running channels: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Channel] = r.Count
	}
	return counts, nil
}

// Replay moves a pending or failed job back into the runnable set
// immediately. Completed jobs stay completed.
func (r *JobRepository) Replay(ctx context.Context, id uint, now time.Time) (*models.Job, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status IN ?", id, []config.JobStatus{config.JobStatusPending, config.JobStatusFailed}).
		Updates(map[string]any{
			"status":     config.JobStatusPending,
			"run_at":     now.UTC(),
			"claimed_at": nil,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("replay job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var j models.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("reload replayed job: %w", err)
	}
	return &j, nil
}

// ReleaseStuck recovers running jobs whose worker died mid-dispatch. The
// claim-time attempt increment is kept, so a crash still consumes one try.
func (r *JobRepository) ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND claimed_at < ?", config.JobStatusRunning, cutoff).
		Updates(map[string]any{
			"status":     config.JobStatusPending,
			"claimed_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("release stuck jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *JobRepository) LinkChild(ctx context.Context, parentID, childID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", parentID).
		Update("child_job_id", childID).Error
	if err != nil {
		return fmt.Errorf("link child job: %w", err)
	}
	return nil
}
