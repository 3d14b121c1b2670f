package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MinutesJobStatus represents the status of a post-call minutes job.
type MinutesJobStatus string

const (
	MinutesJobStatusPending    MinutesJobStatus = "pending"    // Enqueued by the tracker, waiting for a worker
	MinutesJobStatusProcessing MinutesJobStatus = "processing" // Claimed by a worker
	MinutesJobStatusCompleted  MinutesJobStatus = "completed"  // Minutes document produced
	MinutesJobStatusFailed     MinutesJobStatus = "failed"     // Run failed after retries
)

// MinutesJob is one post-call pipeline run. The tracker enqueues a row on call
// termination and returns immediately; a worker claims the row and executes
// the transcript poll, parse and generation steps, so failures and eventual
// completion stay observable.
type MinutesJob struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CallID    string           `json:"call_id" gorm:"type:varchar(255);not null;index"`
	MeetingID string           `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	UserID    string           `json:"user_id" gorm:"type:varchar(255);not null"`
	Status    MinutesJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	// Result holds the generated MinutesDocument as JSON once completed.
	Result datatypes.JSON `json:"result,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the GORM default.
func (MinutesJob) TableName() string {
	return "minutes_jobs"
}

// NewMinutesJob creates a pending job for a terminated call.
func NewMinutesJob(callID, meetingID, userID string) *MinutesJob {
	return &MinutesJob{
		ID:         uuid.New(),
		CallID:     callID,
		MeetingID:  meetingID,
		UserID:     userID,
		Status:     MinutesJobStatusPending,
		MaxRetries: 3,
	}
}
