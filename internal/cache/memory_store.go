package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"path2prevention/internal/chat"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemorySessionStore is the in-process stand-in for SessionCache when Redis
// is disabled. Sessions are stored serialized so callers never share state.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemorySessionStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*chat.Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var session chat.Session
	if err := json.Unmarshal(entry.payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal stored session failed: %w", err)
	}
	return &session, nil
}

func (m *MemorySessionStore) Save(_ context.Context, session *chat.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	m.entries[session.ID] = memoryEntry{payload: payload, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	delete(m.entries, id)
	return ok && !m.now().After(entry.expiresAt), nil
}

// sweep drops expired sessions. Callers hold mu.
func (m *MemorySessionStore) sweep(now time.Time) {
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
}

func (m *MemorySessionStore) Ping(context.Context) error {
	return nil
}
