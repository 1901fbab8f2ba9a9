package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"gorm.io/gorm"
)

type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

var _ job.DLQRepoInterface = (*DLQRepository)(nil)

// Move copies the terminally failed job into a dead-letter entry. The live
// row itself is retired by the caller (marked failed); the entry keeps the
// payload so a manual retry can re-enqueue fresh work.
func (r *DLQRepository) Move(ctx context.Context, j *models.Job, finalError string, now time.Time) (*models.DLQEntry, error) {
	entry := &models.DLQEntry{
		OriginalJobID: j.ID,
		Channel:       j.Channel,
		Payload:       j.Payload,
		TotalAttempts: j.Attempts,
		FinalError:    finalError,
		MovedToDLQAt:  now.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("move to dlq: %w", err)
	}
	return entry, nil
}

// Get returns nil when no entry exists with the given id.
func (r *DLQRepository) Get(ctx context.Context, id uint) (*models.DLQEntry, error) {
	var entry models.DLQEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dlq entry: %w", err)
	}
	return &entry, nil
}

func (r *DLQRepository) Paginate(ctx context.Context, page, perPage int, channel string) ([]models.DLQEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	q := r.db.WithContext(ctx).Model(&models.DLQEntry{})
	if channel != "" {
		q = q.Where("channel = ?", channel)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count dlq entries: %w", err)
	}

	var entries []models.DLQEntry
	err := q.Order("moved_to_dlq_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("paginate dlq entries: %w", err)
	}

	return entries, total, nil
}

func (r *DLQRepository) Stats(ctx context.Context, now time.Time) (*job.DLQStats, error) {
	stats := &job.DLQStats{ByChannel: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&models.DLQEntry{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count dlq total: %w", err)
	}

	err := r.db.WithContext(ctx).Model(&models.DLQEntry{}).
		Where("moved_to_dlq_at > ?", now.UTC().Add(-24*time.Hour)).
		Count(&stats.Recent24h).Error
	if err != nil {
		return nil, fmt.Errorf("count recent dlq entries: %w", err)
	}

	type row struct {
		Channel string
		Count   int64
	}
	var rows []row
	err = r.db.WithContext(ctx).Model(&models.DLQEntry{}).
		Select("channel, COUNT(*) AS count").
		Group("channel").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count dlq by channel: %w", err)
	}
	for _, r := range rows {
		stats.ByChannel[r.Channel] = r.Count
	}

	return stats, nil
}

// MarkReplayed stamps the entry with the replay time and the id of the
// fresh job it spawned. The entry itself is kept for auditing until Cleanup
// purges it.
func (r *DLQRepository) MarkReplayed(ctx context.Context, id, newJobID uint, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.DLQEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"replayed_at":   now.UTC(),
			"replay_job_id": newJobID,
		}).Error
	if err != nil {
		return fmt.Errorf("mark dlq entry replayed: %w", err)
	}
	return nil
}

func (r *DLQRepository) Cleanup(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.DLQEntry{}).Where("moved_to_dlq_at < ?", cutoff.UTC())

	if dryRun {
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return 0, fmt.Errorf("count dlq cleanup candidates: %w", err)
		}
		return count, nil
	}

	res := q.Delete(&models.DLQEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup dlq: %w", res.Error)
	}
	return res.RowsAffected, nil
}
