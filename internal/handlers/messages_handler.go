package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/internal/domains/conversation"
	"github.com/xpanvictor/newscap/internal/tracelog"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/botframe"
)

// TurnMetrics receives per-turn outcomes. Optional.
type TurnMetrics interface {
	ObserveTurn(channel, outcome string, elapsed time.Duration)
}

// MessagesHandler receives Bot Framework activities on the messaging
// webhook and hands them to the conversation host.
type MessagesHandler struct {
	cfg       config.BotConfig
	host      conversation.HostService
	validator *botframe.TokenValidator
	traces    tracelog.Ring
	metrics   TurnMetrics
	logger    *Logger.Logger
}

// NewMessagesHandler creates the webhook handler. validator may be nil
// when the bot runs without channel credentials; metrics may be nil.
func NewMessagesHandler(
	cfg config.BotConfig,
	host conversation.HostService,
	validator *botframe.TokenValidator,
	traces tracelog.Ring,
	metrics TurnMetrics,
	logger *Logger.Logger,
) *MessagesHandler {
	return &MessagesHandler{
		cfg:       cfg,
		host:      host,
		validator: validator,
		traces:    traces,
		metrics:   metrics,
		logger:    logger,
	}
}

// Messages handles one incoming channel activity
// @Summary Bot messaging webhook
// @Description Receives a Bot Framework Activity and runs one conversation turn
// @Tags Bot
// @Accept json
// @Produce json
// @Param request body botframe.Activity true "Channel activity"
// @Success 201 "Activity processed"
// @Failure 400 {object} ErrorResponse "Invalid activity payload"
// @Failure 401 {object} ErrorResponse "Channel token rejected"
// @Failure 415 {object} ErrorResponse "Unsupported content type"
// @Failure 500 {object} ErrorResponse "Turn failed"
// @Router /api/messages [post]
func (h *MessagesHandler) Messages(c *gin.Context) {
	if c.ContentType() != "application/json" {
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Error: "Expected application/json content type"})
		return
	}

	if h.validator != nil && !h.cfg.AllowAnonymous {
		if err := h.validator.Validate(c.Request.Context(), c.GetHeader("Authorization")); err != nil {
			h.logger.Debugf("channel token rejected: %v", err)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid channel token"})
			return
		}
	}

	var activity botframe.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid activity payload",
			Details: err.Error(),
		})
		return
	}

	h.recordInbound(activity)

	start := time.Now()
	err := h.host.OnActivity(c.Request.Context(), activity)
	if h.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		h.metrics.ObserveTurn(activity.ChannelID, outcome, time.Since(start))
	}
	if err != nil {
		// the host already answered the user over the connector
		h.logger.Errorf("turn failed for conversation %s: %v", activity.Conversation.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "The bot encountered an error or bug."})
		return
	}

	c.Status(http.StatusCreated)
}

func (h *MessagesHandler) recordInbound(activity botframe.Activity) {
	if h.traces == nil {
		return
	}

	when := time.Now()
	if activity.Timestamp != nil {
		when = *activity.Timestamp
	}

	err := h.traces.Record(tracelog.TurnTrace{
		When:           when,
		ConversationID: activity.Conversation.ID,
		ActivityID:     activity.ID,
		Channel:        activity.ChannelID,
		Stage:          "inbound",
		Detail:         activity.Text,
	})
	if err != nil {
		h.logger.Debugf("inbound trace dropped: %v", err)
	}
}

// RegisterMessageRoutes mounts the webhook on the engine root.
func (h *MessagesHandler) RegisterMessageRoutes(r gin.IRouter, limit gin.HandlerFunc) {
	if limit != nil {
		r.POST("/api/messages", limit, h.Messages)
		return
	}
	r.POST("/api/messages", h.Messages)
}
