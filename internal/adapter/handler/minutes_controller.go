package handler

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetnotes-team/meetnotes/errors"
	minutesdto "github.com/meetnotes-team/meetnotes/internal/adapter/dto/minutes"
	"github.com/meetnotes-team/meetnotes/internal/domain/repositories"
	"github.com/meetnotes-team/meetnotes/internal/usecase/minutes"
	"github.com/meetnotes-team/meetnotes/internal/usecase/pipeline"
	"github.com/meetnotes-team/meetnotes/pkg/vtt"
)

// ArtifactStore lists archived pipeline artifacts and issues download links.
type ArtifactStore interface {
	ListArchived(ctx context.Context, prefix string) ([]string, error)
	GetObjectURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// artifactURLExpiry bounds how long a returned download link stays valid.
const artifactURLExpiry = time.Hour

// MinutesController exposes the manual API surface: joining meetings,
// triggering the pipeline, inspecting jobs, and processing uploaded
// transcripts directly.
type MinutesController struct {
	callInfo       repositories.CallInfo
	pipeline       pipeline.Service
	generator      *minutes.Generator
	jobRepo        repositories.MinutesJobRepository
	archive        ArtifactStore
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewMinutesController creates the controller. archive may be nil when object
// storage is not configured.
func NewMinutesController(
	callInfo repositories.CallInfo,
	pipelineSvc pipeline.Service,
	generator *minutes.Generator,
	jobRepo repositories.MinutesJobRepository,
	archive ArtifactStore,
	maxUploadBytes int64,
	logger *zap.Logger,
) *MinutesController {
	return &MinutesController{
		callInfo:       callInfo,
		pipeline:       pipelineSvc,
		generator:      generator,
		jobRepo:        jobRepo,
		archive:        archive,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// JoinMeeting creates a call for a meeting join URL.
// @Summary Join a meeting by invite URL
// @Tags meetings
// @Accept json
// @Produce json
// @Param request body minutesdto.JoinMeetingRequest true "join request"
// @Success 200 {object} entities.CallRecord
// @Router /v1/meetings/join [post]
func (h *MinutesController) JoinMeeting(c echo.Context) error {
	var req minutesdto.JoinMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	record, err := h.callInfo.JoinMeeting(c.Request().Context(), req.JoinURL)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, record)
}

// Process runs the pipeline synchronously for a tracked call or a meeting
// addressed directly.
// @Summary Generate minutes for a call or meeting
// @Tags minutes
// @Accept json
// @Produce json
// @Param request body minutesdto.ProcessRequest true "process request"
// @Success 200 {object} entities.MinutesDocument
// @Router /v1/minutes/process [post]
func (h *MinutesController) Process(c echo.Context) error {
	var req minutesdto.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if req.CallID != "" {
		doc, err := h.pipeline.ProcessByCall(c.Request().Context(), req.CallID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		return HandleSuccess(h.logger, c, doc)
	}

	opts := minutes.Options{
		IncludeTimestamps: req.IncludeTimestamps,
		Language:          req.Language,
		Style:             req.Style,
		MaxTokens:         req.MaxTokens,
		Temperature:       req.Temperature,
	}

	doc, err := h.pipeline.ProcessByMeeting(c.Request().Context(), req.UserID, req.MeetingID, opts)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, doc)
}

// ListJobs returns the pipeline runs recorded for a meeting, with download
// links to any archived transcripts and minutes.
// @Summary List minutes jobs for a meeting
// @Tags minutes
// @Produce json
// @Param meetingID path string true "meeting identifier"
// @Success 200 {object} minutesdto.JobListResponse
// @Router /v1/minutes/jobs/{meetingID} [get]
func (h *MinutesController) ListJobs(c echo.Context) error {
	meetingID := c.Param("meetingID")
	if meetingID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meetingID is required"))
	}

	ctx := c.Request().Context()
	jobs, err := h.jobRepo.ListByMeetingID(ctx, meetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	out := minutesdto.JobListResponse{Jobs: make([]minutesdto.JobResponse, 0, len(jobs))}
	for i := range jobs {
		out.Jobs = append(out.Jobs, minutesdto.NewJobResponse(&jobs[i]))
	}
	out.Artifacts = h.archivedArtifacts(ctx, meetingID)
	return HandleSuccess(h.logger, c, out)
}

// archivedArtifacts collects download links for a meeting's archived objects.
// Archive trouble degrades to an empty list; the job history still answers.
func (h *MinutesController) archivedArtifacts(ctx context.Context, meetingID string) []minutesdto.ArtifactLink {
	if h.archive == nil {
		return nil
	}

	var links []minutesdto.ArtifactLink
	for _, prefix := range []string{"transcripts/" + meetingID + "/", "minutes/" + meetingID + "/"} {
		names, err := h.archive.ListArchived(ctx, prefix)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("archived artifact listing failed",
					zap.String("meeting_id", meetingID),
					zap.String("prefix", prefix),
					zap.Error(err),
				)
			}
			continue
		}
		for _, name := range names {
			url, err := h.archive.GetObjectURL(ctx, name, artifactURLExpiry)
			if err != nil {
				if h.logger != nil {
					h.logger.Warn("artifact link generation failed",
						zap.String("object", name),
						zap.Error(err),
					)
				}
				continue
			}
			links = append(links, minutesdto.ArtifactLink{Object: name, URL: url})
		}
	}
	return links
}

// ParseTranscript parses an uploaded WebVTT file without invoking generation.
// @Summary Parse an uploaded WebVTT transcript
// @Tags transcripts
// @Accept mpfd
// @Produce json
// @Param file formData file true "transcript file"
// @Param format query string false "text rendering, plain or timestamped" default(plain)
// @Success 200 {object} minutesdto.ParseResponse
// @Router /v1/transcripts/parse [post]
func (h *MinutesController) ParseTranscript(c echo.Context) error {
	content, err := h.readUpload(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	transcript, err := vtt.Parse(content)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	text := transcript.Text
	switch format := c.QueryParam("format"); format {
	case "", "plain":
	case "timestamped":
		if formatted, ferr := vtt.FormatWithTimestamps(content); ferr == nil {
			text = formatted
		}
	default:
		return HandleError(h.logger, c, errors.ErrInvalidArgument("format must be plain or timestamped"))
	}

	return HandleSuccess(h.logger, c, minutesdto.ParseResponse{
		Cues:     len(transcript.Cues),
		Duration: transcript.Duration,
		Speakers: transcript.Speakers,
		Text:     text,
	})
}

// Summarize produces a short summary from an uploaded transcript file.
// @Summary Summarize an uploaded transcript
// @Tags summaries
// @Accept mpfd
// @Produce json
// @Param file formData file true "transcript file"
// @Param max_words query int false "word bound, default 100"
// @Success 200 {object} minutesdto.SummarizeResponse
// @Router /v1/summaries [post]
func (h *MinutesController) Summarize(c echo.Context) error {
	content, err := h.readUpload(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	maxWords := 100
	if raw := c.QueryParam("max_words"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("max_words must be a positive integer"))
		}
		maxWords = parsed
	}

	text := pipeline.RenderTranscript(content, false)
	summary, err := h.generator.GenerateSummary(c.Request().Context(), text, maxWords)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, minutesdto.SummarizeResponse{
		Summary: summary,
		Words:   maxWords,
	})
}

// readUpload reads the uploaded transcript file, enforcing the size bound
// before any downstream work happens.
func (h *MinutesController) readUpload(c echo.Context) (string, error) {
	if h.maxUploadBytes > 0 && c.Request().ContentLength > h.maxUploadBytes {
		return "", errors.ErrUploadTooLarge(c.Request().ContentLength, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", errors.ErrEmptyUpload()
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return "", errors.ErrUploadTooLarge(fileHeader.Size, h.maxUploadBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", errors.ErrInvalidPayload()
	}
	defer file.Close()

	reader := io.Reader(file)
	if h.maxUploadBytes > 0 {
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", errors.ErrInvalidPayload()
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		return "", errors.ErrUploadTooLarge(int64(len(data)), h.maxUploadBytes)
	}
	if len(data) == 0 {
		return "", errors.ErrEmptyUpload()
	}
	return string(data), nil
}
