// Package botframe carries the slice of the Bot Framework protocol this
// app speaks: the activity schema, channel token validation and the
// connector client used to post replies.
package botframe

import "time"

// Activity types handled by the webhook.
const (
	ActivityMessage            = "message"
	ActivityConversationUpdate = "conversationUpdate"
	ActivityTyping             = "typing"
	ActivityTrace              = "trace"
)

type ChannelAccount struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

type ConversationAccount struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	IsGroup  bool   `json:"isGroup,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

// Activity is one event on a conversation, inbound or outbound. Only
// the fields this app reads or writes are modeled.
type Activity struct {
	Type           string              `json:"type,omitempty"`
	ID             string              `json:"id,omitempty"`
	Timestamp      *time.Time          `json:"timestamp,omitempty"`
	LocalTimestamp *time.Time          `json:"localTimestamp,omitempty"`
	ServiceURL     string              `json:"serviceUrl,omitempty"`
	ChannelID      string              `json:"channelId,omitempty"`
	From           ChannelAccount      `json:"from,omitempty"`
	Conversation   ConversationAccount `json:"conversation,omitempty"`
	Recipient      ChannelAccount      `json:"recipient,omitempty"`
	Text           string              `json:"text,omitempty"`
	TextFormat     string              `json:"textFormat,omitempty"`
	Locale         string              `json:"locale,omitempty"`
	ReplyToID      string              `json:"replyToId,omitempty"`
	MembersAdded   []ChannelAccount    `json:"membersAdded,omitempty"`
	MembersRemoved []ChannelAccount    `json:"membersRemoved,omitempty"`

	// trace fields
	Name      string `json:"name,omitempty"`
	Label     string `json:"label,omitempty"`
	ValueType string `json:"valueType,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// ResourceResponse is the channel's acknowledgement of a posted activity.
type ResourceResponse struct {
	ID string `json:"id"`
}

// CreateReply builds a message activity addressed back to the sender.
func (a Activity) CreateReply(text string) Activity {
	now := time.Now().UTC()
	return Activity{
		Type:         ActivityMessage,
		Timestamp:    &now,
		ServiceURL:   a.ServiceURL,
		ChannelID:    a.ChannelID,
		From:         a.Recipient,
		Conversation: a.Conversation,
		Recipient:    a.From,
		ReplyToID:    a.ID,
		Text:         text,
	}
}

// CreateTrace builds a trace activity carrying a diagnostic value. The
// emulator renders these; production channels drop them.
func (a Activity) CreateTrace(name, label, valueType string, value any) Activity {
	reply := a.CreateReply("")
	reply.Type = ActivityTrace
	reply.Name = name
	reply.Label = label
	reply.ValueType = valueType
	reply.Value = value
	return reply
}
