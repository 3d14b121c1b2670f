package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetnotes-team/meetnotes/errors"
	"github.com/meetnotes-team/meetnotes/internal/adapter/dto/webhook"
	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/internal/usecase/tracker"
)

// WebhookHandler receives call lifecycle notifications from the meeting
// platform.
type WebhookHandler struct {
	tracker     *tracker.Tracker
	clientState string
	logger      *zap.Logger
}

// NewWebhookHandler creates a new handler. clientState, when set, must match
// the notification payload for the batch to be processed.
func NewWebhookHandler(t *tracker.Tracker, clientState string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{tracker: t, clientState: clientState, logger: logger}
}

// HandleCallNotifications processes a batch of call state notifications.
// Subscription validation requests are answered with the echoed token. Real
// batches are acked immediately with 202 and applied in the background in
// delivery order; a bad event never fails the ack, since the platform would
// otherwise retry the whole batch.
func (h *WebhookHandler) HandleCallNotifications(c echo.Context) error {
	// Subscription handshake: echo the token back as plain text.
	if token := c.QueryParam("validationToken"); token != "" {
		return c.String(http.StatusOK, token)
	}

	var batch webhook.NotificationBatch
	if err := c.Bind(&batch); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	go h.applyBatch(context.Background(), batch)

	return c.NoContent(http.StatusAccepted)
}

// applyBatch walks the notifications in order so state transitions for the
// same call are never reordered.
func (h *WebhookHandler) applyBatch(ctx context.Context, batch webhook.NotificationBatch) {
	for _, n := range batch.Value {
		if h.clientState != "" && n.ClientState != h.clientState {
			if h.logger != nil {
				h.logger.Warn("dropping notification with wrong client state",
					zap.String("subscription_id", n.SubscriptionID),
				)
			}
			continue
		}
		if n.ResourceData.ID == "" {
			if h.logger != nil {
				h.logger.Warn("dropping notification without call id",
					zap.String("resource", n.Resource),
				)
			}
			continue
		}

		state := entities.CallState(strings.ToLower(n.ResourceData.State))
		h.tracker.HandleStateChange(ctx, n.ResourceData.ID, state)
	}
}
