package transcripts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
)

type fakeTranscriptStore struct {
	listCalls int
	// responses[i] is returned for the i-th list call; the last entry
	// repeats once exhausted.
	responses []listResponse
	content   map[string]string
}

type listResponse struct {
	descriptors []entities.TranscriptDescriptor
	err         error
}

func (f *fakeTranscriptStore) ListTranscripts(ctx context.Context, userID, meetingID string) ([]entities.TranscriptDescriptor, error) {
	idx := f.listCalls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.listCalls++
	resp := f.responses[idx]
	return resp.descriptors, resp.err
}

func (f *fakeTranscriptStore) ListTranscriptsByCall(ctx context.Context, callID string) ([]entities.TranscriptDescriptor, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeTranscriptStore) DownloadContent(ctx context.Context, userID, meetingID, transcriptID string) (string, error) {
	if f.content == nil {
		return "", fmt.Errorf("no content for %s", transcriptID)
	}
	return f.content[transcriptID], nil
}

func descriptorAt(id string, createdAt time.Time) entities.TranscriptDescriptor {
	return entities.TranscriptDescriptor{ID: id, MeetingID: "meeting-1", CreatedAt: createdAt}
}

func TestWaitForTranscriptReturnsLatest(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTranscriptStore{
		responses: []listResponse{
			{descriptors: []entities.TranscriptDescriptor{
				descriptorAt("tr-2", base.Add(time.Hour)),
				descriptorAt("tr-1", base),
				descriptorAt("tr-3", base.Add(2*time.Hour)),
			}},
		},
	}

	poller := NewPoller(store, 5, time.Millisecond, nil)
	got, err := poller.WaitForTranscript(context.Background(), "user-1", "meeting-1")
	if err != nil {
		t.Fatalf("WaitForTranscript failed: %v", err)
	}
	if got.ID != "tr-3" {
		t.Errorf("expected newest transcript tr-3, got %s", got.ID)
	}
	if store.listCalls != 1 {
		t.Errorf("expected a single query, got %d", store.listCalls)
	}
}

func TestWaitForTranscriptTieBreaksOnID(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTranscriptStore{
		responses: []listResponse{
			{descriptors: []entities.TranscriptDescriptor{
				descriptorAt("tr-a", created),
				descriptorAt("tr-b", created),
			}},
		},
	}

	poller := NewPoller(store, 1, time.Millisecond, nil)
	got, err := poller.WaitForTranscript(context.Background(), "user-1", "meeting-1")
	if err != nil {
		t.Fatalf("WaitForTranscript failed: %v", err)
	}
	if got.ID != "tr-b" {
		t.Errorf("expected tie broken toward greater ID, got %s", got.ID)
	}
}

func TestWaitForTranscriptRetriesUntilAvailable(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTranscriptStore{
		responses: []listResponse{
			{},
			{},
			{descriptors: []entities.TranscriptDescriptor{descriptorAt("tr-1", created)}},
		},
	}

	poller := NewPoller(store, 5, time.Millisecond, nil)
	got, err := poller.WaitForTranscript(context.Background(), "user-1", "meeting-1")
	if err != nil {
		t.Fatalf("WaitForTranscript failed: %v", err)
	}
	if got.ID != "tr-1" {
		t.Errorf("unexpected transcript: %s", got.ID)
	}
	if store.listCalls != 3 {
		t.Errorf("expected 3 queries, got %d", store.listCalls)
	}
}

func TestWaitForTranscriptExhaustsAttempts(t *testing.T) {
	store := &fakeTranscriptStore{
		responses: []listResponse{{}},
	}

	poller := NewPoller(store, 4, time.Millisecond, nil)
	_, err := poller.WaitForTranscript(context.Background(), "user-1", "meeting-1")
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if store.listCalls != 4 {
		t.Errorf("expected exactly 4 queries, got %d", store.listCalls)
	}
}

func TestWaitForTranscriptQueryErrorsAreRetried(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTranscriptStore{
		responses: []listResponse{
			{err: fmt.Errorf("upstream hiccup")},
			{descriptors: []entities.TranscriptDescriptor{descriptorAt("tr-1", created)}},
		},
	}

	poller := NewPoller(store, 3, time.Millisecond, nil)
	got, err := poller.WaitForTranscript(context.Background(), "user-1", "meeting-1")
	if err != nil {
		t.Fatalf("WaitForTranscript failed: %v", err)
	}
	if got.ID != "tr-1" {
		t.Errorf("unexpected transcript: %s", got.ID)
	}
}

func TestFetchContentPrefersInline(t *testing.T) {
	store := &fakeTranscriptStore{
		content: map[string]string{"tr-1": "downloaded"},
	}
	poller := NewPoller(store, 1, time.Millisecond, nil)

	inline := &entities.TranscriptDescriptor{ID: "tr-1", MeetingID: "meeting-1", Content: "inline body"}
	got, err := poller.FetchContent(context.Background(), "user-1", inline)
	if err != nil {
		t.Fatalf("FetchContent failed: %v", err)
	}
	if got != "inline body" {
		t.Errorf("expected inline content, got %q", got)
	}

	remote := &entities.TranscriptDescriptor{ID: "tr-1", MeetingID: "meeting-1"}
	got, err = poller.FetchContent(context.Background(), "user-1", remote)
	if err != nil {
		t.Fatalf("FetchContent failed: %v", err)
	}
	if got != "downloaded" {
		t.Errorf("expected downloaded content, got %q", got)
	}
}
