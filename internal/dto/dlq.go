package dto

import (
	"encoding/json"
	"time"
)

type DLQEntryDTO struct {
	ID            uint            `json:"id"`
	OriginalJobID uint            `json:"original_job_id"`
	Channel       string          `json:"channel"`
	Payload       json.RawMessage `json:"payload"`
	TotalAttempts int             `json:"total_attempts"`
	FinalError    string          `json:"final_error"`
	MovedToDLQAt  time.Time       `json:"moved_to_dlq_at"`
	ReplayedAt    *time.Time      `json:"replayed_at,omitempty"`
	ReplayJobID   *uint           `json:"replay_job_id,omitempty"`
}

type DLQPageDTO struct {
	Items   []DLQEntryDTO `json:"items"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}
