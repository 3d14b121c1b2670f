package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/infrastructure/cache"
)

type fakeCallInfo struct {
	records map[string]*entities.CallRecord
	err     error
}

func (f *fakeCallInfo) GetCall(ctx context.Context, callID string) (*entities.CallRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[callID]
	if !ok {
		return nil, fmt.Errorf("call %s not found", callID)
	}
	return record, nil
}

func (f *fakeCallInfo) JoinMeeting(ctx context.Context, joinURL string) (*entities.CallRecord, error) {
	return nil, fmt.Errorf("not implemented")
}

type recordingEnqueuer struct {
	enqueued []*entities.CallAssociation
	err      error
}

func (r *recordingEnqueuer) Enqueue(ctx context.Context, assoc *entities.CallAssociation) error {
	if r.err != nil {
		return r.err
	}
	r.enqueued = append(r.enqueued, assoc)
	return nil
}

func newTestTracker(info *fakeCallInfo, enq *recordingEnqueuer) (*Tracker, *cache.MemoryCallStore) {
	store := cache.NewMemoryCallStore(time.Hour)
	return NewTracker(info, store, enq, nil), store
}

func TestEstablishedThenTerminatedEnqueuesOnce(t *testing.T) {
	info := &fakeCallInfo{records: map[string]*entities.CallRecord{
		"call-1": {ID: "call-1", State: entities.CallStateEstablished, MeetingID: "meeting-1", UserID: "user-1"},
	}}
	enq := &recordingEnqueuer{}
	tr, _ := newTestTracker(info, enq)
	ctx := context.Background()

	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablishing)
	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablished)
	tr.HandleStateChange(ctx, "call-1", entities.CallStateTerminated)

	if len(enq.enqueued) != 1 {
		t.Fatalf("expected exactly one enqueue, got %d", len(enq.enqueued))
	}
	got := enq.enqueued[0]
	if got.CallID != "call-1" || got.MeetingID != "meeting-1" || got.UserID != "user-1" {
		t.Errorf("unexpected association: %+v", got)
	}
}

func TestDuplicateTerminationDoesNotReenqueue(t *testing.T) {
	info := &fakeCallInfo{records: map[string]*entities.CallRecord{
		"call-1": {ID: "call-1", MeetingID: "meeting-1", UserID: "user-1"},
	}}
	enq := &recordingEnqueuer{}
	tr, _ := newTestTracker(info, enq)
	ctx := context.Background()

	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablished)
	tr.HandleStateChange(ctx, "call-1", entities.CallStateTerminated)
	tr.HandleStateChange(ctx, "call-1", entities.CallStateTerminated)

	if len(enq.enqueued) != 1 {
		t.Fatalf("duplicate termination must not enqueue again, got %d", len(enq.enqueued))
	}
}

func TestTerminationOfUntrackedCallIsNoop(t *testing.T) {
	enq := &recordingEnqueuer{}
	tr, _ := newTestTracker(&fakeCallInfo{}, enq)

	tr.HandleStateChange(context.Background(), "never-seen", entities.CallStateTerminated)

	if len(enq.enqueued) != 0 {
		t.Errorf("untracked call must not enqueue, got %d", len(enq.enqueued))
	}
}

func TestLookupFailureLeavesCallUntracked(t *testing.T) {
	info := &fakeCallInfo{err: fmt.Errorf("upstream unavailable")}
	enq := &recordingEnqueuer{}
	tr, store := newTestTracker(info, enq)
	ctx := context.Background()

	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablished)

	assoc, err := store.Get(ctx, "call-1")
	if err != nil {
		t.Fatalf("store.Get failed: %v", err)
	}
	if assoc != nil {
		t.Error("call with failed lookup must not be tracked")
	}

	tr.HandleStateChange(ctx, "call-1", entities.CallStateTerminated)
	if len(enq.enqueued) != 0 {
		t.Errorf("expected no enqueue, got %d", len(enq.enqueued))
	}
}

func TestCallWithoutMeetingAssociationIsNotTracked(t *testing.T) {
	info := &fakeCallInfo{records: map[string]*entities.CallRecord{
		"call-1": {ID: "call-1", State: entities.CallStateEstablished},
	}}
	enq := &recordingEnqueuer{}
	tr, store := newTestTracker(info, enq)
	ctx := context.Background()

	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablished)

	assoc, _ := store.Get(ctx, "call-1")
	if assoc != nil {
		t.Error("call without meeting info must not be tracked")
	}
}

func TestUnknownStatesAreIgnored(t *testing.T) {
	info := &fakeCallInfo{records: map[string]*entities.CallRecord{
		"call-1": {ID: "call-1", MeetingID: "meeting-1", UserID: "user-1"},
	}}
	enq := &recordingEnqueuer{}
	tr, store := newTestTracker(info, enq)
	ctx := context.Background()

	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablished)
	tr.HandleStateChange(ctx, "call-1", entities.CallStateHold)
	tr.HandleStateChange(ctx, "call-1", entities.CallState("somethingNew"))

	assoc, _ := store.Get(ctx, "call-1")
	if assoc == nil {
		t.Error("hold and unknown states must not drop the association")
	}
	if len(enq.enqueued) != 0 {
		t.Errorf("no enqueue expected, got %d", len(enq.enqueued))
	}
}

func TestEnqueueErrorIsSwallowed(t *testing.T) {
	info := &fakeCallInfo{records: map[string]*entities.CallRecord{
		"call-1": {ID: "call-1", MeetingID: "meeting-1", UserID: "user-1"},
	}}
	enq := &recordingEnqueuer{err: fmt.Errorf("queue down")}
	tr, _ := newTestTracker(info, enq)
	ctx := context.Background()

	tr.HandleStateChange(ctx, "call-1", entities.CallStateEstablished)
	// Must not panic or propagate.
	tr.HandleStateChange(ctx, "call-1", entities.CallStateTerminated)
}
