package types

import "time"

// UserProfile is what the bot remembers about a user across
// conversations.
type UserProfile struct {
	Name string `json:"name"`
}

func (p UserProfile) HasName() bool {
	return p.Name != ""
}

// ConversationData is per-conversation state: the agent thread bound
// to the conversation plus the last-activity details.
type ConversationData struct {
	ThreadID        string    `json:"thread_id"`
	PromptedForName bool      `json:"prompted_for_name"`
	Timestamp       time.Time `json:"timestamp"`
	ChannelID       string    `json:"channel_id"`
}

// TranscriptEntry is one visible line of a conversation, kept for the
// admin transcript endpoint.
type TranscriptEntry struct {
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
