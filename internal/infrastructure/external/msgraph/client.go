package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/pkg/config"
	apperrors "github.com/meetnotes-team/meetnotes/errors"
)

// Client talks to the meeting platform's communications and transcript APIs.
// It implements both the call info and transcript store collaborators.
type Client struct {
	baseURL       string
	meetingDomain string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient builds a Graph client authenticated with the application's
// client-credentials grant. The token source refreshes transparently.
func NewClient(cfg *config.GraphConfig, logger *zap.Logger) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	httpClient := creds.Client(context.Background())
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		meetingDomain: cfg.MeetingDomain,
		httpClient:    httpClient,
		logger:        logger,
	}
}

type callResource struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	ChatInfo *struct {
		ThreadID string `json:"threadId"`
	} `json:"chatInfo"`
	MeetingInfo *struct {
		Organizer *struct {
			User *struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"organizer"`
	} `json:"meetingInfo"`
	CallChainID string `json:"callChainId"`
	JoinURL     string `json:"joinWebUrl"`
}

// GetCall reads the call resource and resolves the meeting and organizer the
// call belongs to.
func (c *Client) GetCall(ctx context.Context, callID string) (*entities.CallRecord, error) {
	var resource callResource
	path := fmt.Sprintf("/communications/calls/%s", url.PathEscape(callID))
	if err := c.getJSON(ctx, path, &resource); err != nil {
		return nil, err
	}

	record := &entities.CallRecord{
		ID:      resource.ID,
		State:   entities.CallState(strings.ToLower(resource.State)),
		JoinURL: resource.JoinURL,
	}
	if resource.ChatInfo != nil {
		record.MeetingID = resource.ChatInfo.ThreadID
	}
	if resource.MeetingInfo != nil && resource.MeetingInfo.Organizer != nil && resource.MeetingInfo.Organizer.User != nil {
		record.UserID = resource.MeetingInfo.Organizer.User.ID
	}
	return record, nil
}

// JoinMeeting validates a meeting join URL, extracts the chat thread
// identifier, and creates a service-hosted call for that meeting.
func (c *Client) JoinMeeting(ctx context.Context, joinURL string) (*entities.CallRecord, error) {
	threadID, err := c.parseJoinURL(joinURL)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"chatInfo": map[string]string{
			"threadId": threadID,
		},
		"meetingInfo": map[string]interface{}{
			"@odata.type": "#microsoft.graph.organizerMeetingInfo",
		},
	}

	var resource callResource
	if err := c.postJSON(ctx, "/communications/calls", payload, &resource); err != nil {
		return nil, err
	}

	return &entities.CallRecord{
		ID:        resource.ID,
		State:     entities.CallState(strings.ToLower(resource.State)),
		MeetingID: threadID,
		JoinURL:   joinURL,
	}, nil
}

// parseJoinURL checks the URL points at the configured meeting domain and a
// meetup-join path, then extracts the "@thread" chat identifier from it.
func (c *Client) parseJoinURL(joinURL string) (string, error) {
	parsed, err := url.Parse(joinURL)
	if err != nil {
		return "", apperrors.ErrInvalidJoinURL(joinURL)
	}
	if !strings.EqualFold(parsed.Host, c.meetingDomain) {
		return "", apperrors.ErrInvalidJoinURL(joinURL)
	}
	if !strings.Contains(parsed.Path, "l/meetup-join") {
		return "", apperrors.ErrInvalidJoinURL(joinURL)
	}

	decodedPath, err := url.PathUnescape(parsed.Path)
	if err != nil {
		decodedPath = parsed.Path
	}
	for _, segment := range strings.Split(decodedPath, "/") {
		if strings.Contains(segment, "@thread") {
			return segment, nil
		}
	}
	return "", apperrors.ErrInvalidJoinURL(joinURL)
}

type transcriptListResponse struct {
	Value []struct {
		ID              string    `json:"id"`
		MeetingID       string    `json:"meetingId"`
		CreatedDateTime time.Time `json:"createdDateTime"`
		ContentURL      string    `json:"transcriptContentUrl"`
	} `json:"value"`
}

// ListTranscripts returns the transcript descriptors available for an online
// meeting, newest and oldest alike.
func (c *Client) ListTranscripts(ctx context.Context, userID, meetingID string) ([]entities.TranscriptDescriptor, error) {
	path := fmt.Sprintf("/users/%s/onlineMeetings/%s/transcripts",
		url.PathEscape(userID), url.PathEscape(meetingID))

	var resp transcriptListResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	descriptors := make([]entities.TranscriptDescriptor, 0, len(resp.Value))
	for _, item := range resp.Value {
		meeting := item.MeetingID
		if meeting == "" {
			meeting = meetingID
		}
		descriptors = append(descriptors, entities.TranscriptDescriptor{
			ID:         item.ID,
			MeetingID:  meeting,
			CreatedAt:  item.CreatedDateTime,
			ContentURL: item.ContentURL,
		})
	}
	return descriptors, nil
}

// ListTranscriptsByCall resolves the call to its meeting first, then lists
// that meeting's transcripts.
func (c *Client) ListTranscriptsByCall(ctx context.Context, callID string) ([]entities.TranscriptDescriptor, error) {
	record, err := c.GetCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if record.MeetingID == "" || record.UserID == "" {
		return nil, apperrors.ErrNotFound(fmt.Sprintf("meeting association for call %s", callID))
	}
	return c.ListTranscripts(ctx, record.UserID, record.MeetingID)
}

// DownloadContent fetches a transcript's raw body in WebVTT form.
func (c *Client) DownloadContent(ctx context.Context, userID, meetingID, transcriptID string) (string, error) {
	path := fmt.Sprintf("/users/%s/onlineMeetings/%s/transcripts/%s/content?$format=text/vtt",
		url.PathEscape(userID), url.PathEscape(meetingID), url.PathEscape(transcriptID))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "text/vtt")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.ErrExternalAPIFailed("graph", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.ErrInternal(fmt.Errorf("failed to marshal request: %w", err))
	}
	body, err := c.doRequest(ctx, http.MethodPost, path, data, "application/json")
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return apperrors.ErrExternalAPIFailed("graph", fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

// doRequest executes one API call with retries on throttling and server
// errors. 4xx responses other than 429 are returned immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte, accept string) ([]byte, error) {
	var body []byte

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", accept)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode < 300:
			body = data
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			if c.logger != nil {
				c.logger.Warn("transient graph API failure, retrying",
					zap.String("path", path),
					zap.Int("status", resp.StatusCode))
			}
			return fmt.Errorf("graph API returned status %d", resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(apperrors.ErrNotFound(path))
		default:
			return backoff.Permanent(apperrors.ErrExternalAPIFailed("graph",
				fmt.Errorf("status %d: %s", resp.StatusCode, string(data))))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if _, ok := err.(apperrors.AppError); ok {
			return nil, err
		}
		return nil, apperrors.ErrExternalAPIFailed("graph", err)
	}
	return body, nil
}
