package conversation

import (
	"context"
	"errors"

	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormConversationStore struct {
	db *gorm.DB
}

// NewGormStore persists state in mysql. Migrate must have run first.
func NewGormStore(db *gorm.DB) Store {
	return &GormConversationStore{db: db}
}

// GetUserProfile implements Store.
func (g *GormConversationStore) GetUserProfile(ctx context.Context, userID string) (types.UserProfile, error) {
	var entity UserProfileEntity
	err := g.db.WithContext(ctx).First(&entity, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.UserProfile{}, nil
	}
	if err != nil {
		return types.UserProfile{}, err
	}
	return entity.ToDomain(), nil
}

// SaveUserProfile implements Store.
func (g *GormConversationStore) SaveUserProfile(ctx context.Context, userID string, profile types.UserProfile) error {
	var entity UserProfileEntity
	entity.FromDomain(userID, profile)
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entity).Error
}

// GetConversationData implements Store.
func (g *GormConversationStore) GetConversationData(ctx context.Context, conversationID string) (types.ConversationData, error) {
	var entity ConversationDataEntity
	err := g.db.WithContext(ctx).First(&entity, "conversation_id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ConversationData{}, nil
	}
	if err != nil {
		return types.ConversationData{}, err
	}
	return entity.ToDomain(), nil
}

// SaveConversationData implements Store.
func (g *GormConversationStore) SaveConversationData(ctx context.Context, conversationID string, data types.ConversationData) error {
	var entity ConversationDataEntity
	entity.FromDomain(conversationID, data)
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entity).Error
}

// AppendTranscript implements Store.
func (g *GormConversationStore) AppendTranscript(ctx context.Context, entry types.TranscriptEntry) error {
	var entity TranscriptEntryEntity
	entity.FromDomain(entry)
	return g.db.WithContext(ctx).Create(&entity).Error
}

// Transcript implements Store. The window is resolved against the row
// count first so negative bounds keep their count-from-the-end meaning.
func (g *GormConversationStore) Transcript(ctx context.Context, conversationID string, window utils.Range[int64]) ([]types.TranscriptEntry, error) {
	var total int64
	if err := g.db.WithContext(ctx).
		Model(&TranscriptEntryEntity{}).
		Where("conversation_id = ?", conversationID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	start, end := clampWindow(window, total)
	if start == end {
		return []types.TranscriptEntry{}, nil
	}

	var entities []TranscriptEntryEntity
	if err := g.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Offset(int(start)).
		Limit(int(end - start)).
		Find(&entities).Error; err != nil {
		return nil, err
	}
	entries := make([]types.TranscriptEntry, 0, len(entities))
	for i := range entities {
		entries = append(entries, entities[i].ToDomain())
	}
	return entries, nil
}

// Conversations implements Store.
func (g *GormConversationStore) Conversations(ctx context.Context) ([]string, error) {
	var ids []string
	err := g.db.WithContext(ctx).
		Model(&ConversationDataEntity{}).
		Order("conversation_id asc").
		Pluck("conversation_id", &ids).Error
	return ids, err
}
