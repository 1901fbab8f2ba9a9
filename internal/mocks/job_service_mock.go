package mocks

import (
	"context"

	"github.com/omnipress/publishq/internal/dto"
	"github.com/omnipress/publishq/internal/job"
	"github.com/omnipress/publishq/internal/models"
	"github.com/stretchr/testify/mock"
)

type JobServiceMock struct {
	mock.Mock
}

func (m *JobServiceMock) EnqueueJob(ctx context.Context, req *dto.EnqueueDTO) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, req)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) ListJobs(ctx context.Context, page, perPage int, filters job.JobFilters) (*dto.JobPageDTO, error) {
	args := m.Called(ctx, page, perPage, filters)

	resp, _ := args.Get(0).(*dto.JobPageDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) RunningChannels(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)

	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *JobServiceMock) ReplayJob(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) CompleteJob(ctx context.Context, jobID uint, remoteID string) error {
	args := m.Called(ctx, jobID, remoteID)
	return args.Error(0)
}

func (m *JobServiceMock) FailJob(ctx context.Context, j *models.Job, message string, retryable bool) error {
	args := m.Called(ctx, j, message, retryable)
	return args.Error(0)
}

func (m *JobServiceMock) RescheduleCircuitOpen(ctx context.Context, j *models.Job, message string) error {
	args := m.Called(ctx, j, message)
	return args.Error(0)
}

func (m *JobServiceMock) ListDLQ(ctx context.Context, page, perPage int, channel string) (*dto.DLQPageDTO, error) {
	args := m.Called(ctx, page, perPage, channel)

	resp, _ := args.Get(0).(*dto.DLQPageDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) DLQStats(ctx context.Context) (*job.DLQStats, error) {
	args := m.Called(ctx)

	stats, _ := args.Get(0).(*job.DLQStats)
	return stats, args.Error(1)
}

func (m *JobServiceMock) RetryDLQ(ctx context.Context, dlqID uint) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, dlqID)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) CleanupDLQ(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	args := m.Called(ctx, olderThanDays, dryRun)

	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}
