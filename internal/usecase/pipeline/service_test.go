package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/usecase/minutes"
	"github.com/meetnotes-team/meetnotes/internal/usecase/transcripts"
	pkgai "github.com/meetnotes-team/meetnotes/pkg/ai"
	"github.com/meetnotes-team/meetnotes/pkg/config"
)

const sampleVTT = `WEBVTT

00:00:01.000 --> 00:00:04.000
<v Ana García>buenos días a todos

00:00:05.000 --> 00:00:08.000
<v Luis>hola, empecemos
`

type fakeTranscriptStore struct {
	vtt string
}

func (f *fakeTranscriptStore) ListTranscripts(ctx context.Context, userID, meetingID string) ([]entities.TranscriptDescriptor, error) {
	return []entities.TranscriptDescriptor{
		{ID: "tr-1", MeetingID: meetingID, CreatedAt: time.Now()},
	}, nil
}

func (f *fakeTranscriptStore) ListTranscriptsByCall(ctx context.Context, callID string) ([]entities.TranscriptDescriptor, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeTranscriptStore) DownloadContent(ctx context.Context, userID, meetingID, transcriptID string) (string, error) {
	return f.vtt, nil
}

type memoryJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entities.MinutesJob
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{jobs: make(map[uuid.UUID]*entities.MinutesJob)}
}

func (m *memoryJobRepo) Create(ctx context.Context, job *entities.MinutesJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memoryJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.MinutesJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	copied := *job
	return &copied, nil
}

func (m *memoryJobRepo) ListByMeetingID(ctx context.Context, meetingID string) ([]entities.MinutesJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.MinutesJob
	for _, job := range m.jobs {
		if job.MeetingID == meetingID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memoryJobRepo) ListByStatus(ctx context.Context, status entities.MinutesJobStatus, limit int) ([]entities.MinutesJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.MinutesJob
	for _, job := range m.jobs {
		if job.Status == status && len(out) < limit {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memoryJobRepo) Claim(ctx context.Context, id uuid.UUID, from, to entities.MinutesJobStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	now := time.Now().UTC()
	job.StartedAt = &now
	return true, nil
}

func (m *memoryJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID, result []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[id]
	job.Status = entities.MinutesJobStatusCompleted
	job.Result = result
	return nil
}

func (m *memoryJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[id]
	job.Status = entities.MinutesJobStatusFailed
	job.LastError = &message
	return nil
}

func (m *memoryJobRepo) ResetStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, job := range m.jobs {
		if job.Status == entities.MinutesJobStatusProcessing && job.StartedAt != nil && job.StartedAt.Before(cutoff) {
			job.Status = entities.MinutesJobStatusPending
			job.StartedAt = nil
			count++
		}
	}
	return count, nil
}

type stubArchiver struct {
	transcripts int
	minutes     int
	fail        bool
}

func (a *stubArchiver) ArchiveTranscript(ctx context.Context, meetingID string, content []byte) (string, error) {
	if a.fail {
		return "", fmt.Errorf("storage down")
	}
	a.transcripts++
	return "transcripts/" + meetingID, nil
}

func (a *stubArchiver) ArchiveMinutes(ctx context.Context, meetingID string, minutesJSON []byte) (string, error) {
	if a.fail {
		return "", fmt.Errorf("storage down")
	}
	a.minutes++
	return "minutes/" + meetingID, nil
}

func newTestService(t *testing.T, repo *memoryJobRepo, archive Archiver) (Service, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"role":    "assistant",
					"content": `{"title":"Sync diario","summary":"resumen","keyPoints":[],"decisions":[],"actionItems":[],"nextSteps":[]}`,
				}},
			},
		})
	}))

	store := &fakeTranscriptStore{vtt: sampleVTT}
	poller := transcripts.NewPoller(store, 3, time.Millisecond, nil)
	client := pkgai.NewClient(&config.LLMConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	generator := minutes.NewGenerator(client, nil)

	svc := NewService(repo, nil, poller, generator, archive, &config.Config{}, nil)
	return svc, server.Close
}

func TestEnqueueCreatesPendingJob(t *testing.T) {
	repo := newMemoryJobRepo()
	svc, closeFn := newTestService(t, repo, nil)
	defer closeFn()

	assoc := entities.NewCallAssociation("call-1", "meeting-1", "user-1")
	if err := svc.Enqueue(context.Background(), assoc); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	jobs, _ := repo.ListByStatus(context.Background(), entities.MinutesJobStatusPending, 10)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 pending job, got %d", len(jobs))
	}
	if jobs[0].MeetingID != "meeting-1" || jobs[0].CallID != "call-1" {
		t.Errorf("unexpected job: %+v", jobs[0])
	}
}

func TestProcessByMeetingEndToEnd(t *testing.T) {
	repo := newMemoryJobRepo()
	archive := &stubArchiver{}
	svc, closeFn := newTestService(t, repo, archive)
	defer closeFn()

	doc, err := svc.ProcessByMeeting(context.Background(), "user-1", "meeting-1", minutes.Options{})
	if err != nil {
		t.Fatalf("ProcessByMeeting failed: %v", err)
	}

	if doc.Title != "Sync diario" {
		t.Errorf("unexpected title: %q", doc.Title)
	}
	// Speaker labels lifted from VTT voice tags feed the participant list.
	if len(doc.Participants) != 2 {
		t.Errorf("expected 2 participants, got %v", doc.Participants)
	}
	if archive.transcripts != 1 || archive.minutes != 1 {
		t.Errorf("expected both artifacts archived, got %d/%d", archive.transcripts, archive.minutes)
	}
}

func TestProcessByMeetingArchiveFailureIsNonFatal(t *testing.T) {
	repo := newMemoryJobRepo()
	svc, closeFn := newTestService(t, repo, &stubArchiver{fail: true})
	defer closeFn()

	if _, err := svc.ProcessByMeeting(context.Background(), "user-1", "meeting-1", minutes.Options{}); err != nil {
		t.Fatalf("archive failure must not fail the pipeline: %v", err)
	}
}

func TestRenderTranscript(t *testing.T) {
	plain := RenderTranscript(sampleVTT, false)
	if !strings.Contains(plain, "Ana García: buenos días a todos") {
		t.Errorf("expected speaker-prefixed line, got %q", plain)
	}
	if strings.Contains(plain, "[00:00:01]") {
		t.Error("timestamps must be absent by default")
	}

	stamped := RenderTranscript(sampleVTT, true)
	if !strings.Contains(stamped, "[00:00:01]") {
		t.Errorf("expected timestamp prefix, got %q", stamped)
	}

	raw := "Ana: hola\nLuis: adiós"
	if got := RenderTranscript(raw, false); got != raw {
		t.Errorf("non-VTT content must pass through, got %q", got)
	}

	broken := "WEBVTT\n\nnot a valid cue block without timing"
	if got := RenderTranscript(broken, false); got != broken {
		t.Errorf("unparsable VTT must pass through raw, got %q", got)
	}
}

func TestWorkerTimingFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pipeline.JobTick = 2 * time.Second
	cfg.Pipeline.CleanupTick = 5 * time.Minute
	cfg.Pipeline.ZombieCutoff = 15 * time.Minute

	svc := NewService(newMemoryJobRepo(), nil, nil, nil, nil, cfg, nil).(*pipelineService)
	if svc.jobTick() != 2*time.Second || svc.cleanupTick() != 5*time.Minute || svc.zombieCutoff() != 15*time.Minute {
		t.Errorf("configured intervals not honored: %v/%v/%v", svc.jobTick(), svc.cleanupTick(), svc.zombieCutoff())
	}

	bare := NewService(newMemoryJobRepo(), nil, nil, nil, nil, nil, nil).(*pipelineService)
	if bare.jobTick() != 10*time.Second || bare.cleanupTick() != 10*time.Minute || bare.zombieCutoff() != 30*time.Minute {
		t.Errorf("unexpected fallback intervals: %v/%v/%v", bare.jobTick(), bare.cleanupTick(), bare.zombieCutoff())
	}
}

func TestWorkerPoolLifecycle(t *testing.T) {
	repo := newMemoryJobRepo()
	svc, closeFn := newTestService(t, repo, nil)
	defer closeFn()

	if err := svc.StartWorkerPool(context.Background(), 1); err != nil {
		t.Fatalf("StartWorkerPool failed: %v", err)
	}
	if err := svc.StartWorkerPool(context.Background(), 1); err == nil {
		t.Error("second start must fail while running")
	}
	if err := svc.StopWorkerPool(); err != nil {
		t.Fatalf("StopWorkerPool failed: %v", err)
	}
	if err := svc.StopWorkerPool(); err == nil {
		t.Error("second stop must fail when not running")
	}
}
