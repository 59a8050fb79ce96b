// Package conversation persists the bot's turn state: user profiles,
// per-conversation data (the bound agent thread among it) and the
// visible transcript.
package conversation

import (
	"context"

	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/utils"
)

// Store is the state accessor the conversation host works against.
// Reads on unknown ids return the zero value, mirroring how bot state
// accessors hand out fresh defaults.
type Store interface {
	GetUserProfile(ctx context.Context, userID string) (types.UserProfile, error)
	SaveUserProfile(ctx context.Context, userID string, profile types.UserProfile) error

	GetConversationData(ctx context.Context, conversationID string) (types.ConversationData, error)
	SaveConversationData(ctx context.Context, conversationID string, data types.ConversationData) error

	AppendTranscript(ctx context.Context, entry types.TranscriptEntry) error
	Transcript(ctx context.Context, conversationID string, window utils.Range[int64]) ([]types.TranscriptEntry, error)

	// Conversations lists every conversation id with stored data.
	Conversations(ctx context.Context) ([]string, error)
}
