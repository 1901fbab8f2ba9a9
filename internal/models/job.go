package models

import (
	"time"

	"github.com/omnipress/publishq/internal/config"
	"gorm.io/datatypes"
)

// Job is one unit of scheduled publishing work targeting a single channel.
// The payload is opaque to the queue; only the matching channel publisher
// interprets it. All timestamps are stored in UTC.
type Job struct {
	ID             uint             `gorm:"primaryKey;autoIncrement"`
	Channel        string           `gorm:"type:varchar(64);not null;index"`
	Payload        datatypes.JSON   `gorm:"type:jsonb"`
	Status         config.JobStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	RunAt          time.Time        `gorm:"not null;index"`
	Attempts       int              `gorm:"not null;default:0"`
	MaxAttempts    int              `gorm:"not null;default:5"`
	Error          string           `gorm:"type:text"`
	IdempotencyKey string           `gorm:"type:varchar(255);not null;index"`
	RemoteID       string           `gorm:"type:varchar(255)"`
	ChildJobID     *uint
	ClaimedAt      *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Terminal reports whether the job can no longer transition on its own.
func (j *Job) Terminal() bool {
	return j.Status == config.JobStatusCompleted || j.Status == config.JobStatusFailed
}

// DLQEntry is a degraded, terminal copy of a job that exhausted its retries
// or hit a terminal error. Entries keep the original payload so a manual
// retry can re-enqueue a fresh pending job.
type DLQEntry struct {
	ID            uint           `gorm:"primaryKey;autoIncrement"`
	OriginalJobID uint           `gorm:"not null;index"`
	Channel       string         `gorm:"type:varchar(64);not null;index"`
	Payload       datatypes.JSON `gorm:"type:jsonb"`
	TotalAttempts int            `gorm:"not null"`
	FinalError    string         `gorm:"type:text"`
	MovedToDLQAt  time.Time      `gorm:"not null;index"`
	ReplayedAt    *time.Time
	ReplayJobID   *uint
}

// BreakerState persists circuit breaker state per external service name.
// Rows are created lazily on first use and never deleted; a reset clears the
// counters but keeps the row.
type BreakerState struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	ServiceName  string `gorm:"type:varchar(64);not null;uniqueIndex"`
	State        string `gorm:"type:varchar(20);not null;default:'closed'"`
	FailureCount int    `gorm:"not null;default:0"`
	OpenedAt     *time.Time
	LastFailure  string    `gorm:"type:text"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
