package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		m.Delete(ctx, sessionID)
		return nil, ErrExpired
	}
	return sess, nil
}

func (m *MemoryStore) Set(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[sess.ID]; ok && old != sess {
		old.close()
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	sess.close()
	return nil
}

func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	m.mu.Lock()
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.IsExpired() {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	return len(expired), nil
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
