package chatws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xpanvictor/newscap/internal/domains/conversation"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/botframe"
)

const (
	// ChannelID marks activities originating from the dev web-chat.
	ChannelID = "webchat"

	serviceURL = "ws://webchat"
	botID      = "newscap-bot"
)

// Handler upgrades web-chat connections and feeds their activities to
// the conversation host. Dev aid only, no channel auth.
type Handler struct {
	host     conversation.HostService
	manager  *Manager
	upgrader websocket.Upgrader
	logger   *Logger.Logger
}

// NewHandler creates a new web-chat handler
func NewHandler(host conversation.HostService, manager *Manager, logger *Logger.Logger) *Handler {
	return &Handler{
		host:    host,
		manager: manager,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the web-chat endpoint.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/chat", h.HandleChat)
}

// HandleChat runs one web-chat connection: a fresh conversation per
// socket, activities in both directions as JSON frames.
func (h *Handler) HandleChat(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("web-chat upgrade failed: %v", err)
		return
	}

	conversationID := uuid.NewString()
	clientID := uuid.NewString()

	session := NewSession(conversationID, conn)
	h.manager.Register(session)
	defer h.manager.Unregister(conversationID)

	ctx := c.Request.Context()

	// a joining member gets the greeting, same as a channel would
	joined := h.newActivity(conversationID, clientID)
	joined.Type = botframe.ActivityConversationUpdate
	joined.MembersAdded = []botframe.ChannelAccount{{ID: clientID}}
	if err := h.host.OnActivity(ctx, joined); err != nil {
		h.logger.Errorf("web-chat greeting failed for %s: %v", conversationID, err)
	}

	for {
		var incoming botframe.Activity
		if err := conn.ReadJSON(&incoming); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugf("web-chat read for %s: %v", conversationID, err)
			}
			return
		}

		activity := h.newActivity(conversationID, clientID)
		activity.Type = incoming.Type
		if activity.Type == "" {
			activity.Type = botframe.ActivityMessage
		}
		activity.Text = incoming.Text
		if incoming.From.Name != "" {
			activity.From.Name = incoming.From.Name
		}

		// the turn's failure path already answered over the relay
		if err := h.host.OnActivity(ctx, activity); err != nil {
			h.logger.Errorf("web-chat turn failed for %s: %v", conversationID, err)
		}
	}
}

func (h *Handler) newActivity(conversationID, clientID string) botframe.Activity {
	now := time.Now().UTC()
	return botframe.Activity{
		Type:         botframe.ActivityMessage,
		ID:           uuid.NewString(),
		Timestamp:    &now,
		ChannelID:    ChannelID,
		ServiceURL:   serviceURL,
		From:         botframe.ChannelAccount{ID: clientID},
		Recipient:    botframe.ChannelAccount{ID: botID, Name: "newscap"},
		Conversation: botframe.ConversationAccount{ID: conversationID},
	}
}
