// Package chatws serves the dev web-chat channel: a websocket that
// speaks Bot Framework Activity frames against the same turn engine as
// the webhook.
package chatws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xpanvictor/newscap/pkg/Logger"
	"github.com/xpanvictor/newscap/pkg/botframe"
)

// Session is one connected web-chat client.
type Session struct {
	ConversationID string
	ConnectedAt    time.Time

	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewSession wraps an upgraded connection.
func NewSession(conversationID string, conn *websocket.Conn) *Session {
	return &Session{
		ConversationID: conversationID,
		ConnectedAt:    time.Now(),
		conn:           conn,
	}
}

// SendActivity writes one activity frame. Gorilla connections allow a
// single writer, the mutex serializes turn replies and greetings.
func (s *Session) SendActivity(activity botframe.Activity) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(activity)
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// SessionGauge tracks the open session count. Optional.
type SessionGauge interface {
	SetWebchatSessions(n int)
}

// Manager tracks web-chat sessions by conversation id.
type Manager struct {
	logger   *Logger.Logger
	gauge    SessionGauge
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a new session manager. gauge may be nil.
func NewManager(logger *Logger.Logger, gauge SessionGauge) *Manager {
	return &Manager{
		logger:   logger,
		gauge:    gauge,
		sessions: make(map[string]*Session),
	}
}

// Register adds a session
func (m *Manager) Register(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ConversationID] = session
	m.setGauge()
	m.logger.Infof("web-chat session opened for conversation %s", session.ConversationID)
}

// Unregister removes and closes a session
func (m *Manager) Unregister(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[conversationID]; ok {
		if err := session.Close(); err != nil {
			m.logger.Debugf("session close for %s: %v", conversationID, err)
		}
		delete(m.sessions, conversationID)
		m.setGauge()
		m.logger.Infof("web-chat session closed for conversation %s", conversationID)
	}
}

// setGauge is called with mu held.
func (m *Manager) setGauge() {
	if m.gauge != nil {
		m.gauge.SetWebchatSessions(len(m.sessions))
	}
}

// Get retrieves a session by conversation id
func (m *Manager) Get(conversationID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[conversationID]
	return session, ok
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Deliver pushes an activity to the session owning the conversation.
func (m *Manager) Deliver(conversationID string, activity botframe.Activity) error {
	session, ok := m.Get(conversationID)
	if !ok {
		return fmt.Errorf("no web-chat session for conversation %s", conversationID)
	}
	return session.SendActivity(activity)
}

// Close drops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if err := session.Close(); err != nil {
			m.logger.Debugf("session close for %s: %v", id, err)
		}
	}
	m.sessions = make(map[string]*Session)
	m.setGauge()
}

// Relay is a botframe.Connector that routes replies for web-chat
// conversations over their websocket and hands everything else to the
// wrapped channel connector.
type Relay struct {
	manager  *Manager
	fallback botframe.Connector
}

// NewRelay wraps a channel connector with web-chat delivery.
func NewRelay(manager *Manager, fallback botframe.Connector) *Relay {
	return &Relay{manager: manager, fallback: fallback}
}

// ReplyTo implements botframe.Connector
func (r *Relay) ReplyTo(ctx context.Context, incoming botframe.Activity, reply botframe.Activity) (string, error) {
	if _, ok := r.manager.Get(incoming.Conversation.ID); ok {
		if err := r.manager.Deliver(incoming.Conversation.ID, reply); err != nil {
			return "", err
		}
		return reply.ID, nil
	}
	return r.fallback.ReplyTo(ctx, incoming, reply)
}

// SendToConversation implements botframe.Connector
func (r *Relay) SendToConversation(ctx context.Context, serviceURL, conversationID string, activity botframe.Activity) (string, error) {
	if _, ok := r.manager.Get(conversationID); ok {
		if err := r.manager.Deliver(conversationID, activity); err != nil {
			return "", err
		}
		return activity.ID, nil
	}
	return r.fallback.SendToConversation(ctx, serviceURL, conversationID, activity)
}
