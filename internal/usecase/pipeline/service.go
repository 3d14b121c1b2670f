package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/domain/repositories"
	"github.com/meetnotes-team/meetnotes/internal/usecase/minutes"
	"github.com/meetnotes-team/meetnotes/internal/usecase/transcripts"
	"github.com/meetnotes-team/meetnotes/pkg/config"
	"github.com/meetnotes-team/meetnotes/pkg/jobcontext"
	"github.com/meetnotes-team/meetnotes/pkg/vtt"
)

// Archiver persists raw transcripts and generated minutes to object storage.
// Archiving is best effort; the pipeline proceeds when it fails.
type Archiver interface {
	ArchiveTranscript(ctx context.Context, meetingID string, content []byte) (string, error)
	ArchiveMinutes(ctx context.Context, meetingID string, minutesJSON []byte) (string, error)
}

// Service runs the post-call minutes pipeline. Terminated calls are enqueued
// as persisted jobs; background workers claim and execute them.
type Service interface {
	Enqueue(ctx context.Context, assoc *entities.CallAssociation) error
	ProcessByMeeting(ctx context.Context, userID, meetingID string, opts minutes.Options) (*entities.MinutesDocument, error)
	ProcessByCall(ctx context.Context, callID string) (*entities.MinutesDocument, error)
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type pipelineService struct {
	jobRepo   repositories.MinutesJobRepository
	callInfo  repositories.CallInfo
	poller    *transcripts.Poller
	generator *minutes.Generator
	archive   Archiver
	cfg       *config.Config
	logger    *zap.Logger

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the pipeline service. archive may be nil when object
// storage is not configured.
func NewService(
	jobRepo repositories.MinutesJobRepository,
	callInfo repositories.CallInfo,
	poller *transcripts.Poller,
	generator *minutes.Generator,
	archive Archiver,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &pipelineService{
		jobRepo:   jobRepo,
		callInfo:  callInfo,
		poller:    poller,
		generator: generator,
		archive:   archive,
		cfg:       cfg,
		logger:    logger,
	}
}

// Worker timing comes from PipelineConfig; zero values fall back to the
// envconfig defaults so a partially built config stays safe.
func (s *pipelineService) jobTick() time.Duration {
	if s.cfg != nil && s.cfg.Pipeline.JobTick > 0 {
		return s.cfg.Pipeline.JobTick
	}
	return 10 * time.Second
}

func (s *pipelineService) cleanupTick() time.Duration {
	if s.cfg != nil && s.cfg.Pipeline.CleanupTick > 0 {
		return s.cfg.Pipeline.CleanupTick
	}
	return 10 * time.Minute
}

func (s *pipelineService) zombieCutoff() time.Duration {
	if s.cfg != nil && s.cfg.Pipeline.ZombieCutoff > 0 {
		return s.cfg.Pipeline.ZombieCutoff
	}
	return 30 * time.Minute
}

// Enqueue persists a pending job for a terminated call. Workers pick it up on
// their next poll.
func (s *pipelineService) Enqueue(ctx context.Context, assoc *entities.CallAssociation) error {
	job := entities.NewMinutesJob(assoc.CallID, assoc.MeetingID, assoc.UserID)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue minutes job: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("minutes job enqueued",
			zap.String("job_id", job.ID.String()),
			zap.String("call_id", assoc.CallID),
			zap.String("meeting_id", assoc.MeetingID),
		)
	}
	return nil
}

// ProcessByMeeting runs the pipeline synchronously for a known meeting. Used
// by the manual API surface.
func (s *pipelineService) ProcessByMeeting(ctx context.Context, userID, meetingID string, opts minutes.Options) (*entities.MinutesDocument, error) {
	return s.run(ctx, userID, meetingID, opts)
}

// ProcessByCall resolves a call to its meeting and runs the pipeline
// synchronously.
func (s *pipelineService) ProcessByCall(ctx context.Context, callID string) (*entities.MinutesDocument, error) {
	record, err := s.callInfo.GetCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, record.UserID, record.MeetingID, minutes.Options{})
}

// run executes the full pipeline: wait for the transcript, parse it, archive
// it, and generate the minutes document.
func (s *pipelineService) run(ctx context.Context, userID, meetingID string, opts minutes.Options) (*entities.MinutesDocument, error) {
	opts.Normalize()

	descriptor, err := s.poller.WaitForTranscript(ctx, userID, meetingID)
	if err != nil {
		return nil, err
	}

	content, err := s.poller.FetchContent(ctx, userID, descriptor)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if _, err := s.archive.ArchiveTranscript(ctx, meetingID, []byte(content)); err != nil {
			if s.logger != nil {
				s.logger.Warn("transcript archiving failed, continuing",
					zap.String("meeting_id", meetingID),
					zap.Error(err),
				)
			}
		}
	}

	text := RenderTranscript(content, opts.IncludeTimestamps)

	doc, err := s.generator.GenerateMinutes(ctx, meetingID, text, opts)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if data, marshalErr := json.Marshal(doc); marshalErr == nil {
			if _, err := s.archive.ArchiveMinutes(ctx, meetingID, data); err != nil && s.logger != nil {
				s.logger.Warn("minutes archiving failed, continuing",
					zap.String("meeting_id", meetingID),
					zap.Error(err),
				)
			}
		}
	}

	return doc, nil
}

// RenderTranscript converts raw transcript content to the line-oriented text
// the generator consumes. WebVTT bodies are parsed into cues; anything else
// passes through unchanged. A VTT document that fails to parse also passes
// through raw rather than aborting the pipeline.
func RenderTranscript(content string, includeTimestamps bool) string {
	if !strings.HasPrefix(strings.TrimSpace(content), "WEBVTT") {
		return content
	}

	transcript, err := vtt.Parse(content)
	if err != nil {
		return content
	}
	if includeTimestamps {
		stamped, err := vtt.FormatWithTimestamps(content)
		if err == nil {
			return stamped
		}
		return content
	}

	lines := make([]string, 0, len(transcript.Cues))
	for _, cue := range transcript.Cues {
		lines = append(lines, cue.Text)
	}
	return strings.Join(lines, "\n")
}

// StartWorkerPool starts background workers that claim and execute pending
// minutes jobs, plus a cleanup routine for jobs abandoned mid-processing.
func (s *pipelineService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting minutes worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.jobWorker(ctx, i)
	}

	s.workerWg.Add(1)
	go s.cleanupZombieJobs(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *pipelineService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping minutes worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Minutes worker pool stopped")
	}

	return nil
}

// jobWorker polls for pending jobs and executes one per tick.
func (s *pipelineService) jobWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(s.jobTick())
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Minutes worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Minutes worker stopping", zap.Int("worker_id", workerID))
			}
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.ListByStatus(parentCtx, entities.MinutesJobStatusPending, 5)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll pending jobs",
						zap.Int("worker_id", workerID),
						zap.Error(err),
					)
				}
				continue
			}

			for i := range jobs {
				job := &jobs[i]

				// Atomic claim, so only one worker wins the row.
				claimed, err := s.jobRepo.Claim(parentCtx, job.ID, entities.MinutesJobStatusPending, entities.MinutesJobStatusProcessing)
				if err != nil || !claimed {
					continue
				}

				s.executeJob(parentCtx, job)
				break
			}
		}
	}
}

// executeJob runs one claimed job end to end and records the outcome.
func (s *pipelineService) executeJob(parentCtx context.Context, job *entities.MinutesJob) {
	ctx, cancel := jobcontext.JobBegin(parentCtx, job.ID.String(), job.MeetingID)
	defer cancel()

	if s.logger != nil {
		s.logger.Info("processing minutes job",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", job.MeetingID),
		)
	}

	var doc *entities.MinutesDocument
	err := jobcontext.Run(ctx, s.logger, 2, func(ctx context.Context) error {
		var runErr error
		doc, runErr = s.run(ctx, job.UserID, job.MeetingID, minutes.Options{})
		return runErr
	})

	if err != nil {
		if markErr := s.jobRepo.MarkFailed(parentCtx, job.ID, err.Error()); markErr != nil && s.logger != nil {
			s.logger.Error("failed to mark job failed",
				zap.String("job_id", job.ID.String()),
				zap.Error(markErr),
			)
		}
		if s.logger != nil {
			s.logger.Error("❌ Minutes job failed",
				zap.String("job_id", job.ID.String()),
				zap.String("meeting_id", job.MeetingID),
				zap.Error(err),
			)
		}
		return
	}

	result, err := json.Marshal(doc)
	if err != nil {
		_ = s.jobRepo.MarkFailed(parentCtx, job.ID, fmt.Sprintf("failed to encode result: %v", err))
		return
	}

	if err := s.jobRepo.MarkCompleted(parentCtx, job.ID, result); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to mark job completed",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
		return
	}

	if s.logger != nil {
		s.logger.Info("✅ Minutes job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", job.MeetingID),
			zap.String("title", doc.Title),
		)
	}
}

// cleanupZombieJobs returns jobs stuck in processing to pending. A job is a
// zombie when its worker died after claiming it.
func (s *pipelineService) cleanupZombieJobs(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(s.cleanupTick())
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-s.zombieCutoff())
			reset, err := s.jobRepo.ResetStuck(parentCtx, cutoff)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("zombie job cleanup failed", zap.Error(err))
				}
				continue
			}
			if reset > 0 && s.logger != nil {
				s.logger.Warn("🧟 Reset stuck minutes jobs", zap.Int64("count", reset))
			}
		}
	}
}
