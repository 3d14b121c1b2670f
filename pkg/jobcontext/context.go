package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type contextKey string

const (
	jobIDKey     contextKey = "job_id"
	meetingIDKey contextKey = "meeting_id"

	// DefaultJobTimeout bounds a single minutes job end to end, including
	// the transcript poll window.
	DefaultJobTimeout = 15 * time.Minute
)

// JobBegin derives a bounded context for one minutes job and stamps it with
// identifiers so downstream logs can be correlated.
func JobBegin(parent context.Context, jobID, meetingID string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, DefaultJobTimeout)
	ctx = context.WithValue(ctx, jobIDKey, jobID)
	ctx = context.WithValue(ctx, meetingIDKey, meetingID)
	return ctx, cancel
}

// JobID returns the job identifier stamped by JobBegin, or "" if absent.
func JobID(ctx context.Context) string {
	if v, ok := ctx.Value(jobIDKey).(string); ok {
		return v
	}
	return ""
}

// MeetingID returns the meeting identifier stamped by JobBegin, or "" if absent.
func MeetingID(ctx context.Context) string {
	if v, ok := ctx.Value(meetingIDKey).(string); ok {
		return v
	}
	return ""
}

// Run executes fn with panic recovery and exponential retry on transient
// failures. Non-retryable errors abort immediately.
func Run(ctx context.Context, logger *zap.Logger, maxRetries uint64, fn func(ctx context.Context) error) error {
	operation := func() error {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("job panicked: %v", r)
					if logger != nil {
						logger.Error("recovered panic in job",
							zap.String("job_id", JobID(ctx)),
							zap.Any("panic", r))
					}
				}
			}()
			err = fn(ctx)
		}()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}

// IsRetryable reports whether err looks transient. Context cancellation and
// deadline expiry are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"timeout", "connection refused", "connection reset", "temporarily unavailable", "too many requests", "status 429", "status 5"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
