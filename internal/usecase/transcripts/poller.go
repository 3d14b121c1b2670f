package transcripts

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/meetnotes-team/meetnotes/errors"
	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/domain/repositories"
)

// Poller waits for a meeting's transcript to appear on the platform.
// Transcripts become available some time after the call ends, so the poller
// queries at a fixed interval up to a bounded number of attempts.
type Poller struct {
	store        repositories.TranscriptStore
	maxAttempts  int
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewPoller creates a poller. maxAttempts below 1 is raised to 1.
func NewPoller(store repositories.TranscriptStore, maxAttempts int, pollInterval time.Duration, logger *zap.Logger) *Poller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Poller{
		store:        store,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// WaitForTranscript polls until at least one transcript descriptor exists and
// returns the most recent one. Each attempt issues one list query; attempts
// are separated by the configured interval, so the call makes exactly
// maxAttempts queries before giving up with a transcript-not-found error.
func (p *Poller) WaitForTranscript(ctx context.Context, userID, meetingID string) (*entities.TranscriptDescriptor, error) {
	attempt := 0

	operation := func() (*entities.TranscriptDescriptor, error) {
		attempt++
		descriptors, err := p.store.ListTranscripts(ctx, userID, meetingID)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("transcript list query failed",
					zap.String("meeting_id", meetingID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
			return nil, err
		}

		if len(descriptors) == 0 {
			if p.logger != nil {
				p.logger.Debug("transcript not ready yet",
					zap.String("meeting_id", meetingID),
					zap.Int("attempt", attempt),
					zap.Int("max_attempts", p.maxAttempts),
				)
			}
			return nil, fmt.Errorf("no transcripts for meeting %s yet", meetingID)
		}

		latest := entities.LatestTranscript(descriptors)
		if p.logger != nil {
			p.logger.Info("✅ Transcript available",
				zap.String("meeting_id", meetingID),
				zap.String("transcript_id", latest.ID),
				zap.Int("attempt", attempt),
				zap.Int("candidates", len(descriptors)),
			)
		}
		return latest, nil
	}

	// maxAttempts-1 retries after the initial attempt, each preceded by a
	// constant delay.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.pollInterval), uint64(p.maxAttempts-1)),
		ctx,
	)

	descriptor, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ErrTranscriptNotFound(meetingID)
	}
	return descriptor, nil
}

// FetchContent downloads the transcript body for a descriptor, preferring
// inline content when the platform already returned it.
func (p *Poller) FetchContent(ctx context.Context, userID string, descriptor *entities.TranscriptDescriptor) (string, error) {
	if descriptor.Content != "" {
		return descriptor.Content, nil
	}
	return p.store.DownloadContent(ctx, userID, descriptor.MeetingID, descriptor.ID)
}
