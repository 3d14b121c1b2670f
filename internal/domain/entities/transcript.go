package entities

import "time"

// TranscriptDescriptor is the platform's metadata record for one transcript of
// a meeting. Content may be inline or behind a content-retrieval reference;
// multiple descriptors can exist per meeting and "latest" means the greatest
// creation timestamp (ties broken by identifier ordering).
type TranscriptDescriptor struct {
	ID         string    `json:"id"`
	MeetingID  string    `json:"meeting_id"`
	CreatedAt  time.Time `json:"created_at"`
	Content    string    `json:"content,omitempty"`
	ContentURL string    `json:"content_url,omitempty"`
}

// LatestTranscript selects the most recent descriptor from a non-empty list.
// Returns nil for an empty list.
func LatestTranscript(descriptors []TranscriptDescriptor) *TranscriptDescriptor {
	var latest *TranscriptDescriptor
	for i := range descriptors {
		d := &descriptors[i]
		if latest == nil ||
			d.CreatedAt.After(latest.CreatedAt) ||
			(d.CreatedAt.Equal(latest.CreatedAt) && d.ID > latest.ID) {
			latest = d
		}
	}
	return latest
}
