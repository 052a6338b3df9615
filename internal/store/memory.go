package store

import (
	"context"
	"sync"
	"time"

	"shopbot-backend/internal/assistant"
)

type memoryEntry struct {
	conv      assistant.Conversation
	updatedAt time.Time
}

// MemoryStore keeps conversations in process, expiring them after ttl of inactivity.
// Expired entries are hidden from Get immediately and swept from memory at most
// once per ttl.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastPrune time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session's conversation if it is within TTL.
func (m *MemoryStore) Get(ctx context.Context, sessionID string) (assistant.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return assistant.Conversation{}, nil
	}
	if m.ttl > 0 && m.now().Sub(e.updatedAt) > m.ttl {
		delete(m.sessions, sessionID)
		return assistant.Conversation{}, nil
	}
	return assistant.Conversation{LastProducts: append([]string(nil), e.conv.LastProducts...)}, nil
}

func (m *MemoryStore) Put(ctx context.Context, sessionID string, conv assistant.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = memoryEntry{
		conv:      assistant.Conversation{LastProducts: append([]string(nil), conv.LastProducts...)},
		updatedAt: m.now(),
	}
	m.pruneLocked()
	return nil
}

// pruneLocked drops expired sessions so abandoned ones do not pile up.
func (m *MemoryStore) pruneLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastPrune) < m.ttl {
		return
	}
	m.lastPrune = now
	for id, e := range m.sessions {
		if now.Sub(e.updatedAt) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

// Len is the number of sessions currently held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) Close() error {
	return nil
}
