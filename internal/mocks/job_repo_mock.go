package mocks

import (
	"context"
	"time"

	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"github.com/stretchr/testify/mock"
)

type JobRepoMock struct {
	mock.Mock
}

func (m *JobRepoMock) Enqueue(ctx context.Context, j *models.Job) (*models.Job, bool, error) {
	args := m.Called(ctx, j)

	result, _ := args.Get(0).(*models.Job)
	return result, args.Bool(1), args.Error(2)
}

func (m *JobRepoMock) Claim(ctx context.Context, id uint, now time.Time) (*models.Job, error) {
	args := m.Called(ctx, id, now)

	j, _ := args.Get(0).(*models.Job)
	return j, args.Error(1)
}

func (m *JobRepoMock) MarkCompleted(ctx context.Context, id uint, remoteID string) error {
	args := m.Called(ctx, id, remoteID)
	return args.Error(0)
}

func (m *JobRepoMock) Reschedule(ctx context.Context, id uint, runAt time.Time, errMsg string) error {
	args := m.Called(ctx, id, runAt, errMsg)
	return args.Error(0)
}

func (m *JobRepoMock) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *JobRepoMock) FindByID(ctx context.Context, id uint) (*models.Job, error) {
	args := m.Called(ctx, id)

	j, _ := args.Get(0).(*models.Job)
	return j, args.Error(1)
}

func (m *JobRepoMock) DueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	args := m.Called(ctx, now, limit)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *JobRepoMock) Paginate(ctx context.Context, page, perPage int, filters job.JobFilters) ([]models.Job, int64, error) {
	args := m.Called(ctx, page, perPage, filters)

	jobs, _ := args.Get(0).([]models.Job)
	total, _ := args.Get(1).(int64)
	return jobs, total, args.Error(2)
}

func (m *JobRepoMock) RunningChannels(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)

	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *JobRepoMock) Replay(ctx context.Context, id uint, now time.Time) (*models.Job, error) {
	args := m.Called(ctx, id, now)

	j, _ := args.Get(0).(*models.Job)
	return j, args.Error(1)
}

func (m *JobRepoMock) ReleaseStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

func (m *JobRepoMock) LinkChild(ctx context.Context, parentID, childID uint) error {
	args := m.Called(ctx, parentID, childID)
	return args.Error(0)
}
