package chatws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/botframe"
)

type recordingConnector struct {
	replies []botframe.Activity
}

func (r *recordingConnector) ReplyTo(ctx context.Context, incoming botframe.Activity, reply botframe.Activity) (string, error) {
	r.replies = append(r.replies, reply)
	return "resp-1", nil
}

func (r *recordingConnector) SendToConversation(ctx context.Context, serviceURL, conversationID string, activity botframe.Activity) (string, error) {
	r.replies = append(r.replies, activity)
	return "resp-1", nil
}

func TestRelayFallsBackWithoutSession(t *testing.T) {
	fallback := &recordingConnector{}
	relay := NewRelay(NewManager(Logger.New(true), nil), fallback)

	incoming := botframe.Activity{
		Type:         botframe.ActivityMessage,
		Conversation: botframe.ConversationAccount{ID: "conv-http"},
		ServiceURL:   "http://localhost:0",
	}

	_, err := relay.ReplyTo(context.Background(), incoming, incoming.CreateReply("over http"))
	if err != nil {
		t.Fatalf("ReplyTo failed: %v", err)
	}

	if len(fallback.replies) != 1 {
		t.Fatalf("Expected fallback delivery, got %d replies", len(fallback.replies))
	}
	if fallback.replies[0].Text != "over http" {
		t.Errorf("Unexpected fallback reply %q", fallback.replies[0].Text)
	}
}

func TestRelayDeliversToSession(t *testing.T) {
	manager := NewManager(Logger.New(true), nil)
	registered := make(chan struct{})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		manager.Register(NewSession("conv-ws", conn))
		close(registered)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("Session never registered")
	}

	relay := NewRelay(manager, &recordingConnector{})
	incoming := botframe.Activity{
		Type:         botframe.ActivityMessage,
		Conversation: botframe.ConversationAccount{ID: "conv-ws"},
	}
	if _, err := relay.ReplyTo(context.Background(), incoming, incoming.CreateReply("over ws")); err != nil {
		t.Fatalf("ReplyTo failed: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	var got botframe.Activity
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("Failed to read delivered frame: %v", err)
	}
	if got.Text != "over ws" {
		t.Errorf("Expected websocket delivery, got %q", got.Text)
	}

	if manager.Count() != 1 {
		t.Errorf("Expected 1 tracked session, got %d", manager.Count())
	}
}

// echoHost stands in for the turn engine: greet on join, echo messages
// back through the connector.
type echoHost struct {
	connector botframe.Connector
}

func (e *echoHost) OnActivity(ctx context.Context, activity botframe.Activity) error {
	switch activity.Type {
	case botframe.ActivityConversationUpdate:
		_, err := e.connector.ReplyTo(ctx, activity, activity.CreateReply("welcome"))
		return err
	case botframe.ActivityMessage:
		_, err := e.connector.ReplyTo(ctx, activity, activity.CreateReply("echo: "+activity.Text))
		return err
	}
	return nil
}

func TestChatRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := Logger.New(true)

	manager := NewManager(logger, nil)
	relay := NewRelay(manager, &recordingConnector{})
	handler := NewHandler(&echoHost{connector: relay}, manager, logger)

	engine := gin.New()
	handler.RegisterRoutes(engine)

	srv := httptest.NewServer(engine)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	var greeting botframe.Activity
	if err := client.ReadJSON(&greeting); err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}
	if greeting.Text != "welcome" {
		t.Errorf("Expected greeting, got %q", greeting.Text)
	}
	if greeting.ChannelID != ChannelID {
		t.Errorf("Expected webchat channel, got %q", greeting.ChannelID)
	}

	err = client.WriteJSON(botframe.Activity{Type: botframe.ActivityMessage, Text: "hi there"})
	if err != nil {
		t.Fatalf("Failed to send activity: %v", err)
	}

	var reply botframe.Activity
	if err := client.ReadJSON(&reply); err != nil {
		t.Fatalf("Failed to read reply: %v", err)
	}
	if reply.Text != "echo: hi there" {
		t.Errorf("Expected echoed reply, got %q", reply.Text)
	}
	if reply.Conversation.ID != greeting.Conversation.ID {
		t.Errorf("Expected a stable conversation id, got %q then %q", greeting.Conversation.ID, reply.Conversation.ID)
	}
}
