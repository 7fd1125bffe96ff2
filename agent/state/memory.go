package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store with an optimistic version check. It
// backs tests and local runs without a Redis endpoint.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	vers map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
		vers: make(map[string]int64),
	}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	m.mu.Lock()
	raw, ok := m.docs[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrStateNotFound
	}

	var st SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	st.EnsureMaps()
	return &st, nil
}

// Save commits st only if no other writer committed since st was loaded:
// the stored version must equal st.Version. On success st.Version is bumped.
func (m *MemoryStore) Save(ctx context.Context, st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return ErrInvalidSession
	}
	st.EnsureMaps()

	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.vers[st.SessionID]; ok && stored != st.Version {
		return fmt.Errorf("%w: session=%s stored=%d loaded=%d", ErrVersionConflict, st.SessionID, stored, st.Version)
	}

	st.Version++
	raw, err := json.Marshal(st)
	if err != nil {
		st.Version--
		return fmt.Errorf("marshal session state: %w", err)
	}
	m.docs[st.SessionID] = raw
	m.vers[st.SessionID] = st.Version
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, sessionID)
	delete(m.vers, sessionID)
	return nil
}
