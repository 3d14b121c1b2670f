package minutes

import (
	"time"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
)

// JoinMeetingRequest asks the service to join a meeting via its invite URL.
type JoinMeetingRequest struct {
	JoinURL string `json:"join_url" validate:"required,url"`
}

// ProcessRequest triggers the pipeline for a tracked call or, alternatively,
// for a meeting addressed directly by organizer and meeting identifiers.
type ProcessRequest struct {
	CallID    string `json:"call_id" validate:"omitempty"`
	MeetingID string `json:"meeting_id" validate:"required_without=CallID"`
	UserID    string `json:"user_id" validate:"required_without=CallID"`

	IncludeTimestamps bool    `json:"include_timestamps"`
	Language          string  `json:"language" validate:"omitempty,len=2"`
	Style             string  `json:"style" validate:"omitempty,oneof=detailed summary executive"`
	MaxTokens         int     `json:"max_tokens" validate:"omitempty,min=1,max=8000"`
	Temperature       float64 `json:"temperature" validate:"omitempty,gt=0,lte=2"`
}

// ArtifactLink points at an archived pipeline artifact.
type ArtifactLink struct {
	Object string `json:"object"`
	URL    string `json:"url"`
}

// JobListResponse carries a meeting's pipeline runs plus download links to
// its archived transcripts and minutes, when object storage is configured.
type JobListResponse struct {
	Jobs      []JobResponse  `json:"jobs"`
	Artifacts []ArtifactLink `json:"artifacts,omitempty"`
}

// JobResponse is one pipeline run in API form.
type JobResponse struct {
	ID          string     `json:"id"`
	CallID      string     `json:"call_id"`
	MeetingID   string     `json:"meeting_id"`
	Status      string     `json:"status"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewJobResponse maps a job entity to its API form.
func NewJobResponse(job *entities.MinutesJob) JobResponse {
	resp := JobResponse{
		ID:          job.ID.String(),
		CallID:      job.CallID,
		MeetingID:   job.MeetingID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.LastError != nil {
		resp.LastError = *job.LastError
	}
	return resp
}

// ParseResponse is the output of the transcript parsing endpoint.
type ParseResponse struct {
	Cues     int      `json:"cues"`
	Duration float64  `json:"duration"`
	Speakers []string `json:"speakers"`
	Text     string   `json:"text"`
}

// SummarizeResponse is the output of the summarization endpoint.
type SummarizeResponse struct {
	Summary string `json:"summary"`
	Words   int    `json:"words"`
}
