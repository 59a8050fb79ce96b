package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/utils"
)

func runStoreSuite(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// fresh ids read back as zero values
	profile, err := store.GetUserProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if profile.HasName() {
		t.Errorf("Expected empty profile, got %+v", profile)
	}

	if err := store.SaveUserProfile(ctx, "user-1", types.UserProfile{Name: "Ada"}); err != nil {
		t.Fatalf("SaveUserProfile failed: %v", err)
	}
	profile, err = store.GetUserProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if profile.Name != "Ada" {
		t.Errorf("Expected saved name, got %q", profile.Name)
	}

	data := types.ConversationData{
		ThreadID:        "thread_001",
		PromptedForName: true,
		Timestamp:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ChannelID:       "emulator",
	}
	if err := store.SaveConversationData(ctx, "conv-1", data); err != nil {
		t.Fatalf("SaveConversationData failed: %v", err)
	}
	got, err := store.GetConversationData(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetConversationData failed: %v", err)
	}
	if got.ThreadID != "thread_001" || !got.PromptedForName || got.ChannelID != "emulator" {
		t.Errorf("Conversation data mangled: %+v", got)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, line := range []string{"hello", "hi there", "latest news?"} {
		entry := types.TranscriptEntry{
			ConversationID: "conv-1",
			Role:           "user",
			Text:           line,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendTranscript(ctx, entry); err != nil {
			t.Fatalf("AppendTranscript failed: %v", err)
		}
	}

	entries, err := store.Transcript(ctx, "conv-1", utils.Range[int64]{})
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Text != "hello" || entries[2].Text != "latest news?" {
		t.Errorf("Transcript out of order: %+v", entries)
	}

	min := int64(1)
	entries, err = store.Transcript(ctx, "conv-1", utils.Range[int64]{Min: &min})
	if err != nil {
		t.Fatalf("Transcript window failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "hi there" {
		t.Errorf("Windowed transcript wrong: %+v", entries)
	}

	tail := int64(-2)
	entries, err = store.Transcript(ctx, "conv-1", utils.Range[int64]{Min: &tail})
	if err != nil {
		t.Fatalf("Transcript tail window failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Text != "latest news?" {
		t.Errorf("Tail window wrong: %+v", entries)
	}

	ids, err := store.Conversations(ctx)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "conv-1" {
		t.Errorf("Expected [conv-1], got %v", ids)
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	runStoreSuite(t, NewRedisStore(rc, time.Hour))
}

func TestRedisStoreEntriesExpire(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	store := NewRedisStore(rc, time.Minute)
	ctx := context.Background()
	if err := store.SaveConversationData(ctx, "conv-ttl", types.ConversationData{ThreadID: "t"}); err != nil {
		t.Fatalf("SaveConversationData failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := store.GetConversationData(ctx, "conv-ttl")
	if err != nil {
		t.Fatalf("GetConversationData failed: %v", err)
	}
	if got.ThreadID != "" {
		t.Errorf("Expected entry to expire, got %+v", got)
	}
}
