package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/utils"
)

type redisStore struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisStore shares state across instances; entries fall out after
// the configured TTL.
func NewRedisStore(rc *redis.Client, ttl time.Duration) Store {
	return &redisStore{rc: rc, ttl: ttl}
}

func profileKey(userID string) string {
	return fmt.Sprintf("bot:user:%s:profile", userID)
}

func convDataKey(conversationID string) string {
	return fmt.Sprintf("bot:conv:%s:data", conversationID)
}

func transcriptKey(conversationID string) string {
	return fmt.Sprintf("bot:conv:%s:transcript", conversationID)
}

func (r *redisStore) GetUserProfile(_ context.Context, userID string) (types.UserProfile, error) {
	var profile types.UserProfile
	raw, err := r.rc.Get(profileKey(userID)).Result()
	if err == redis.Nil {
		return profile, nil
	}
	if err != nil {
		return profile, utils.XError{Reason: "fetching user profile", Meta: err}.ToError()
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return profile, err
	}
	return profile, nil
}

func (r *redisStore) SaveUserProfile(_ context.Context, userID string, profile types.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("can't marshal profile")
	}
	if err := r.rc.Set(profileKey(userID), data, r.ttl).Err(); err != nil {
		return utils.XError{Reason: "storing user profile", Meta: err}.ToError()
	}
	return nil
}

func (r *redisStore) GetConversationData(_ context.Context, conversationID string) (types.ConversationData, error) {
	var data types.ConversationData
	raw, err := r.rc.Get(convDataKey(conversationID)).Result()
	if err == redis.Nil {
		return data, nil
	}
	if err != nil {
		return data, utils.XError{Reason: "fetching conversation data", Meta: err}.ToError()
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return data, err
	}
	return data, nil
}

func (r *redisStore) SaveConversationData(_ context.Context, conversationID string, data types.ConversationData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("can't marshal conversation data")
	}
	if err := r.rc.Set(convDataKey(conversationID), raw, r.ttl).Err(); err != nil {
		return utils.XError{Reason: "storing conversation data", Meta: err}.ToError()
	}
	return nil
}

func (r *redisStore) AppendTranscript(_ context.Context, entry types.TranscriptEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("can't marshal transcript entry")
	}
	key := transcriptKey(entry.ConversationID)
	if err := r.rc.ZAdd(key, redis.Z{
		Member: string(raw),
		Score:  float64(entry.CreatedAt.UnixNano()),
	}).Err(); err != nil {
		return utils.XError{Reason: "appending transcript", Meta: err}.ToError()
	}
	r.rc.Expire(key, r.ttl)
	return nil
}

func (r *redisStore) Transcript(_ context.Context, conversationID string, window utils.Range[int64]) ([]types.TranscriptEntry, error) {
	start := int64(0)
	stop := int64(-1)
	if window.Min != nil {
		start = *window.Min
	}
	if window.Max != nil {
		stop = *window.Max
	}
	rawEntries, err := r.rc.ZRange(transcriptKey(conversationID), start, stop).Result()
	if err != nil {
		return nil, utils.XError{Reason: "fetching transcript", Meta: err}.ToError()
	}
	entries := make([]types.TranscriptEntry, 0, len(rawEntries))
	for _, raw := range rawEntries {
		var entry types.TranscriptEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *redisStore) Conversations(_ context.Context) ([]string, error) {
	keys, err := r.rc.Keys("bot:conv:*:data").Result()
	if err != nil {
		return nil, utils.XError{Reason: "listing conversations", Meta: err}.ToError()
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimSuffix(strings.TrimPrefix(key, "bot:conv:"), ":data")
		ids = append(ids, id)
	}
	return ids, nil
}
