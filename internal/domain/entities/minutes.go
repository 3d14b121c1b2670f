package entities

import (
	"time"

	"github.com/google/uuid"
)

// ActionItemPriority levels an extracted action item may carry.
const (
	ActionItemPriorityHigh   = "high"
	ActionItemPriorityMedium = "medium"
	ActionItemPriorityLow    = "low"
)

// ActionItem is one task extracted from a meeting.
type ActionItem struct {
	Task       string `json:"task"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

// MinutesDocument is the structured output artifact of the minutes pipeline.
// Title and Summary are always non-empty strings and every list field is
// non-nil, so callers never need to null-check them.
type MinutesDocument struct {
	ID           uuid.UUID    `json:"id"`
	MeetingID    string       `json:"meeting_id"`
	Title        string       `json:"title"`
	Date         string       `json:"date"`
	Participants []string     `json:"participants"`
	Summary      string       `json:"summary"`
	KeyPoints    []string     `json:"key_points"`
	Decisions    []string     `json:"decisions"`
	ActionItems  []ActionItem `json:"action_items"`
	NextSteps    []string     `json:"next_steps"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// NewMinutesDocument creates an empty document with all list fields
// initialized.
func NewMinutesDocument(meetingID string) *MinutesDocument {
	now := time.Now().UTC()
	return &MinutesDocument{
		ID:           uuid.New(),
		MeetingID:    meetingID,
		Date:         now.Format("2006-01-02"),
		Participants: make([]string, 0),
		KeyPoints:    make([]string, 0),
		Decisions:    make([]string, 0),
		ActionItems:  make([]ActionItem, 0),
		NextSteps:    make([]string, 0),
		GeneratedAt:  now,
	}
}
