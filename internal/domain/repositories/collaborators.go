package repositories

import (
	"context"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
)

// CallInfo resolves call context against the meeting platform's
// communications API.
type CallInfo interface {
	// GetCall reads the call resource, including the meeting/user association
	// when the platform exposes it.
	GetCall(ctx context.Context, callID string) (*entities.CallRecord, error)
	// JoinMeeting creates a call by parsing a meeting join URL.
	JoinMeeting(ctx context.Context, joinURL string) (*entities.CallRecord, error)
}

// TranscriptStore fetches transcript metadata and raw content from the
// meeting platform.
type TranscriptStore interface {
	ListTranscripts(ctx context.Context, userID, meetingID string) ([]entities.TranscriptDescriptor, error)
	ListTranscriptsByCall(ctx context.Context, callID string) ([]entities.TranscriptDescriptor, error)
	DownloadContent(ctx context.Context, userID, meetingID, transcriptID string) (string, error)
}

// CallStore holds the call → (meeting, user) association between lifecycle
// events. Remove must be atomic per key: at most one caller observes the
// association for a given call identifier.
type CallStore interface {
	Put(ctx context.Context, assoc *entities.CallAssociation) error
	Get(ctx context.Context, callID string) (*entities.CallAssociation, error)
	// Remove deletes and returns the association, or nil if absent.
	Remove(ctx context.Context, callID string) (*entities.CallAssociation, error)
}
