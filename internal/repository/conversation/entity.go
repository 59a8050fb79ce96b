package conversation

import (
	"time"

	"github.com/xpanvictor/newscap/internal/types"
)

type UserProfileEntity struct {
	UserID    string    `gorm:"primaryKey;type:varchar(128);not null"`
	Name      string    `gorm:"type:varchar(255)"`
	UpdatedAt time.Time `gorm:"autoUpdateTime(3)"`
}

func (e *UserProfileEntity) FromDomain(userID string, p types.UserProfile) {
	e.UserID = userID
	e.Name = p.Name
}

func (e *UserProfileEntity) ToDomain() types.UserProfile {
	return types.UserProfile{Name: e.Name}
}

type ConversationDataEntity struct {
	ConversationID  string    `gorm:"primaryKey;type:varchar(128);not null"`
	ThreadID        string    `gorm:"column:thread_id;type:varchar(128)"`
	PromptedForName bool      `gorm:"column:prompted_for_name"`
	Timestamp       time.Time `gorm:"column:last_activity"`
	ChannelID       string    `gorm:"type:varchar(64)"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime(3)"`
}

func (e *ConversationDataEntity) FromDomain(conversationID string, d types.ConversationData) {
	e.ConversationID = conversationID
	e.ThreadID = d.ThreadID
	e.PromptedForName = d.PromptedForName
	e.Timestamp = d.Timestamp
	e.ChannelID = d.ChannelID
}

func (e *ConversationDataEntity) ToDomain() types.ConversationData {
	return types.ConversationData{
		ThreadID:        e.ThreadID,
		PromptedForName: e.PromptedForName,
		Timestamp:       e.Timestamp,
		ChannelID:       e.ChannelID,
	}
}

type TranscriptEntryEntity struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	ConversationID string    `gorm:"type:varchar(128);index;not null"`
	Role           string    `gorm:"type:varchar(16)"`
	Text           string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime(3)"`
}

func (e *TranscriptEntryEntity) FromDomain(entry types.TranscriptEntry) {
	e.ConversationID = entry.ConversationID
	e.Role = entry.Role
	e.Text = entry.Text
	e.CreatedAt = entry.CreatedAt
}

func (e *TranscriptEntryEntity) ToDomain() types.TranscriptEntry {
	return types.TranscriptEntry{
		ConversationID: e.ConversationID,
		Role:           e.Role,
		Text:           e.Text,
		CreatedAt:      e.CreatedAt,
	}
}
