package conversation

import (
	"context"
	"sort"
	"sync"

	"github.com/xpanvictor/newscap/internal/types"
	"github.com/xpanvictor/newscap/pkg/utils"
)

type memoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]types.UserProfile
	convs       map[string]types.ConversationData
	transcripts map[string][]types.TranscriptEntry
}

// NewMemoryStore keeps all state in process, the default for dev and
// single-instance deployments.
func NewMemoryStore() Store {
	return &memoryStore{
		profiles:    make(map[string]types.UserProfile),
		convs:       make(map[string]types.ConversationData),
		transcripts: make(map[string][]types.TranscriptEntry),
	}
}

func (m *memoryStore) GetUserProfile(_ context.Context, userID string) (types.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[userID], nil
}

func (m *memoryStore) SaveUserProfile(_ context.Context, userID string, profile types.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = profile
	return nil
}

func (m *memoryStore) GetConversationData(_ context.Context, conversationID string) (types.ConversationData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.convs[conversationID], nil
}

func (m *memoryStore) SaveConversationData(_ context.Context, conversationID string, data types.ConversationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[conversationID] = data
	return nil
}

func (m *memoryStore) AppendTranscript(_ context.Context, entry types.TranscriptEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts[entry.ConversationID] = append(m.transcripts[entry.ConversationID], entry)
	return nil
}

func (m *memoryStore) Transcript(_ context.Context, conversationID string, window utils.Range[int64]) ([]types.TranscriptEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.transcripts[conversationID]
	start, end := clampWindow(window, int64(len(entries)))
	out := make([]types.TranscriptEntry, end-start)
	copy(out, entries[start:end])
	return out, nil
}

func (m *memoryStore) Conversations(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.convs))
	for id := range m.convs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// clampWindow resolves an open-ended range against a transcript of n
// entries. Negative offsets count from the end, redis style.
func clampWindow(window utils.Range[int64], n int64) (int64, int64) {
	start := int64(0)
	end := n
	if window.Min != nil {
		start = *window.Min
		if start < 0 {
			start = n + start
		}
	}
	if window.Max != nil {
		max := *window.Max
		if max < 0 {
			max = n + max
		}
		end = max + 1
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > end {
		return 0, 0
	}
	return start, end
}
