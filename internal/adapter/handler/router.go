package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/meetnotes-team/meetnotes/internal/infrastructure/http/middleware"
	"github.com/meetnotes-team/meetnotes/pkg/config"
	"github.com/meetnotes-team/meetnotes/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	webhookHandler    *WebhookHandler
	minutesController *MinutesController
	jwtManager        *jwt.Manager
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, webhookHandler *WebhookHandler, minutesController *MinutesController, jwtManager *jwt.Manager) *Router {
	return &Router{
		cfg:               cfg,
		webhookHandler:    webhookHandler,
		minutesController: minutesController,
		jwtManager:        jwtManager,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// The platform calls the webhook unauthenticated; validation happens via
	// the clientState check inside the handler.
	v1.POST("/webhooks/calls", rt.webhookHandler.HandleCallNotifications)

	// The manual surface requires a service token.
	auth := middleware.EchoAuth(rt.jwtManager)

	meetings := v1.Group("/meetings", auth)
	meetings.POST("/join", rt.minutesController.JoinMeeting)

	min := v1.Group("/minutes", auth)
	min.POST("/process", rt.minutesController.Process)
	min.GET("/jobs/:meetingID", rt.minutesController.ListJobs)

	transcripts := v1.Group("/transcripts", auth)
	transcripts.POST("/parse", rt.minutesController.ParseTranscript)

	summaries := v1.Group("/summaries", auth)
	summaries.POST("", rt.minutesController.Summarize)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
