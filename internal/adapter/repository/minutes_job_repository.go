package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/domain/repositories"
)

// minutesJobRepository implements the MinutesJobRepository interface
type minutesJobRepository struct {
	db *gorm.DB
}

// NewMinutesJobRepository creates a new minutes job repository
func NewMinutesJobRepository(db *gorm.DB) repositories.MinutesJobRepository {
	return &minutesJobRepository{db: db}
}

// Create persists a new pending job
func (r *minutesJobRepository) Create(ctx context.Context, job *entities.MinutesJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *minutesJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.MinutesJob, error) {
	var job entities.MinutesJob
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error

	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByMeetingID retrieves all jobs for a meeting, newest first
func (r *minutesJobRepository) ListByMeetingID(ctx context.Context, meetingID string) ([]entities.MinutesJob, error) {
	var jobs []entities.MinutesJob
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&jobs).Error

	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListByStatus retrieves jobs with a specific status, oldest first
func (r *minutesJobRepository) ListByStatus(ctx context.Context, status entities.MinutesJobStatus, limit int) ([]entities.MinutesJob, error) {
	var jobs []entities.MinutesJob
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Claim atomically transitions a job between statuses. The conditional UPDATE
// makes sure only one worker wins when several poll the same pending row.
func (r *minutesJobRepository) Claim(ctx context.Context, id uuid.UUID, from, to entities.MinutesJobStatus) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&entities.MinutesJob{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"started_at": &now,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkCompleted stores the generated minutes and finishes the job
func (r *minutesJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, result []byte) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&entities.MinutesJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.MinutesJobStatusCompleted,
			"result":       result,
			"completed_at": &now,
			"last_error":   nil,
		}).Error
}

// MarkFailed records the failure message and finishes the job
func (r *minutesJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&entities.MinutesJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.MinutesJobStatusFailed,
			"last_error":   message,
			"completed_at": &now,
			"retry_count":  gorm.Expr("retry_count + 1"),
		}).Error
}

// ResetStuck returns jobs abandoned mid-processing to pending so another
// worker can pick them up. A job is stuck when it started before the cutoff
// and never finished.
func (r *minutesJobRepository) ResetStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.MinutesJob{}).
		Where("status = ? AND started_at < ?", entities.MinutesJobStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":     entities.MinutesJobStatusPending,
			"started_at": nil,
		})

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
