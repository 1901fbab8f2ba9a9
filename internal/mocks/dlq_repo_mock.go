package mocks

import (
	"context"
	"time"

	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"github.com/stretchr/testify/mock"
)

type DLQRepoMock struct {
	mock.Mock
}

func (m *DLQRepoMock) Move(ctx context.Context, j *models.Job, finalError string, now time.Time) (*models.DLQEntry, error) {
	args := m.Called(ctx, j, finalError, now)

	entry, _ := args.Get(0).(*models.DLQEntry)
	return entry, args.Error(1)
}

func (m *DLQRepoMock) Get(ctx context.Context, id uint) (*models.DLQEntry, error) {
	args := m.Called(ctx, id)

	entry, _ := args.Get(0).(*models.DLQEntry)
	return entry, args.Error(1)
}

func (m *DLQRepoMock) Paginate(ctx context.Context, page, perPage int, channel string) ([]models.DLQEntry, int64, error) {
	args := m.Called(ctx, page, perPage, channel)

	entries, _ := args.Get(0).([]models.DLQEntry)
	total, _ := args.Get(1).(int64)
	return entries, total, args.Error(2)
}

func (m *DLQRepoMock) Stats(ctx context.Context, now time.Time) (*job.DLQStats, error) {
	args := m.Called(ctx, now)

	stats, _ := args.Get(0).(*job.DLQStats)
	return stats, args.Error(1)
}

func (m *DLQRepoMock) MarkReplayed(ctx context.Context, id, newJobID uint, now time.Time) error {
	args := m.Called(ctx, id, newJobID, now)
	return args.Error(0)
}

func (m *DLQRepoMock) Cleanup(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, cutoff, dryRun)

	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}
