package dto

import (
	"encoding/json"
	"time"
)

type EnqueueDTO struct {
	Channel        string          `json:"channel" validate:"required"`
	Payload        json.RawMessage `json:"payload" validate:"required"`
	RunAt          *time.Time      `json:"run_at,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	MaxAttempts    int             `json:"max_attempts" validate:"gte=0,lte=20"`
	ParentJobID    *uint           `json:"parent_job_id,omitempty"`
}

type JobResponseDTO struct {
	ID             uint            `json:"id"`
	Channel        string          `json:"channel"`
	Payload        json.RawMessage `json:"payload"`
	Status         string          `json:"status"`
	RunAt          time.Time       `json:"run_at"`
	Attempts       int             `json:"attempts"`
	MaxAttempts    int             `json:"max_attempts"`
	Error          string          `json:"error,omitempty"`
	IdempotencyKey string          `json:"idempotency_key"`
	RemoteID       string          `json:"remote_id,omitempty"`
	ChildJobID     *uint           `json:"child_job_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type JobPageDTO struct {
	Items   []JobResponseDTO `json:"items"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}
