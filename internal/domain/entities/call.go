package entities

import "time"

// CallState mirrors the upstream platform's call lifecycle state field.
type CallState string

const (
	CallStateIncoming     CallState = "incoming"
	CallStateEstablishing CallState = "establishing"
	CallStateEstablished  CallState = "established"
	CallStateHold         CallState = "hold"
	CallStateTransferring CallState = "transferring"
	CallStateTerminated   CallState = "terminated"
)

// CallRecord is the Call Info collaborator's read model for a single call.
type CallRecord struct {
	ID        string    `json:"id"`
	State     CallState `json:"state"`
	MeetingID string    `json:"meeting_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	JoinURL   string    `json:"join_url,omitempty"`
}

// CallAssociation links an in-progress call to the meeting and user it belongs
// to. It is owned exclusively by the lifecycle tracker: created on
// establishment, removed exactly once on termination handoff, and never
// recreated from a stale event.
type CallAssociation struct {
	CallID        string    `json:"call_id"`
	MeetingID     string    `json:"meeting_id"`
	UserID        string    `json:"user_id"`
	EstablishedAt time.Time `json:"established_at"`
}

// NewCallAssociation creates an association stamped with the current time.
func NewCallAssociation(callID, meetingID, userID string) *CallAssociation {
	return &CallAssociation{
		CallID:        callID,
		MeetingID:     meetingID,
		UserID:        userID,
		EstablishedAt: time.Now().UTC(),
	}
}
