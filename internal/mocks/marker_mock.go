package mocks

import (
	"context"

	"github.com/omnipress/publishq/internal/models"
	"github.com/stretchr/testify/mock"
)

// MarkerMock stands in for the dispatcher's view of the job service.
type MarkerMock struct {
	mock.Mock
}

func (m *MarkerMock) CompleteJob(ctx context.Context, jobID uint, remoteID string) error {
	args := m.Called(ctx, jobID, remoteID)
	return args.Error(0)
}

func (m *MarkerMock) FailJob(ctx context.Context, j *models.Job, message string, retryable bool) error {
	args := m.Called(ctx, j, message, retryable)
	return args.Error(0)
}

func (m *MarkerMock) RescheduleCircuitOpen(ctx context.Context, j *models.Job, message string) error {
	args := m.Called(ctx, j, message)
	return args.Error(0)
}
