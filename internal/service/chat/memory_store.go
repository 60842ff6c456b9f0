package chat

import (
	"context"
	"sync"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// MemoryStore keeps history in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]chat.Turn
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{turns: make(map[string][]chat.Turn)}
}

func (s *MemoryStore) Load(_ context.Context, conversationID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[conversationID]
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

func (s *MemoryStore) Append(_ context.Context, conversationID string, limit int, turns ...chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := append(s.turns[conversationID], turns...)
	if limit > 0 && len(current) > limit {
		current = append([]chat.Turn(nil), current[len(current)-limit:]...)
	}
	s.turns[conversationID] = current
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.turns, conversationID)
	s.mu.Unlock()
	return nil
}
