package tracker

import (
	"context"

	"go.uber.org/zap"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/domain/repositories"
)

// Enqueuer receives terminated-call associations exactly once per call. The
// pipeline service implements it by persisting a job row.
type Enqueuer interface {
	Enqueue(ctx context.Context, assoc *entities.CallAssociation) error
}

// Tracker follows call lifecycle notifications and hands terminated calls to
// the minutes pipeline. It owns the call store: associations are created on
// establishment and consumed exactly once on termination.
type Tracker struct {
	callInfo repositories.CallInfo
	store    repositories.CallStore
	enqueuer Enqueuer
	logger   *zap.Logger
}

// NewTracker creates a lifecycle tracker.
func NewTracker(callInfo repositories.CallInfo, store repositories.CallStore, enqueuer Enqueuer, logger *zap.Logger) *Tracker {
	return &Tracker{
		callInfo: callInfo,
		store:    store,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// HandleStateChange processes one lifecycle notification for a call. Errors
// are logged and swallowed so a single bad event never breaks notification
// delivery; the caller always acks.
func (t *Tracker) HandleStateChange(ctx context.Context, callID string, state entities.CallState) {
	switch state {
	case entities.CallStateEstablishing:
		if t.logger != nil {
			t.logger.Debug("call establishing", zap.String("call_id", callID))
		}

	case entities.CallStateEstablished:
		t.recordEstablished(ctx, callID)

	case entities.CallStateTerminated:
		t.recordTerminated(ctx, callID)

	default:
		if t.logger != nil {
			t.logger.Debug("ignoring call state",
				zap.String("call_id", callID),
				zap.String("state", string(state)),
			)
		}
	}
}

// recordEstablished resolves the call's meeting association and stores it for
// the termination handler. A call whose association cannot be resolved is
// left untracked; its termination will be a no-op.
func (t *Tracker) recordEstablished(ctx context.Context, callID string) {
	record, err := t.callInfo.GetCall(ctx, callID)
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("call lookup failed, leaving call untracked",
				zap.String("call_id", callID),
				zap.Error(err),
			)
		}
		return
	}
	if record.MeetingID == "" || record.UserID == "" {
		if t.logger != nil {
			t.logger.Warn("call has no meeting association, leaving call untracked",
				zap.String("call_id", callID),
			)
		}
		return
	}

	assoc := entities.NewCallAssociation(callID, record.MeetingID, record.UserID)
	if err := t.store.Put(ctx, assoc); err != nil {
		if t.logger != nil {
			t.logger.Error("failed to store call association",
				zap.String("call_id", callID),
				zap.Error(err),
			)
		}
		return
	}

	if t.logger != nil {
		t.logger.Info("📞 Tracking established call",
			zap.String("call_id", callID),
			zap.String("meeting_id", record.MeetingID),
		)
	}
}

// recordTerminated consumes the association and enqueues the minutes
// pipeline. The store's atomic remove guarantees at most one enqueue per
// call even when termination events are delivered more than once.
func (t *Tracker) recordTerminated(ctx context.Context, callID string) {
	assoc, err := t.store.Remove(ctx, callID)
	if err != nil {
		if t.logger != nil {
			t.logger.Error("failed to remove call association",
				zap.String("call_id", callID),
				zap.Error(err),
			)
		}
		return
	}
	if assoc == nil {
		if t.logger != nil {
			t.logger.Debug("terminated call was not tracked",
				zap.String("call_id", callID),
			)
		}
		return
	}

	if err := t.enqueuer.Enqueue(ctx, assoc); err != nil {
		if t.logger != nil {
			t.logger.Error("failed to enqueue minutes pipeline",
				zap.String("call_id", callID),
				zap.String("meeting_id", assoc.MeetingID),
				zap.Error(err),
			)
		}
		return
	}

	if t.logger != nil {
		t.logger.Info("📝 Call terminated, minutes pipeline enqueued",
			zap.String("call_id", callID),
			zap.String("meeting_id", assoc.MeetingID),
		)
	}
}
