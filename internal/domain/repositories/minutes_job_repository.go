package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
)

// MinutesJobRepository persists post-call pipeline runs.
type MinutesJobRepository interface {
	Create(ctx context.Context, job *entities.MinutesJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.MinutesJob, error)
	ListByMeetingID(ctx context.Context, meetingID string) ([]entities.MinutesJob, error)
	ListByStatus(ctx context.Context, status entities.MinutesJobStatus, limit int) ([]entities.MinutesJob, error)

	// Claim atomically moves a job from `from` to `to`. Returns false when
	// another worker already claimed it.
	Claim(ctx context.Context, id uuid.UUID, from, to entities.MinutesJobStatus) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, result []byte) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error

	// ResetStuck returns jobs stuck in processing since before the cutoff to
	// pending so a worker can pick them up again.
	ResetStuck(ctx context.Context, cutoff time.Time) (int64, error)
}
