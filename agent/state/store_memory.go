package state

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MemoryStore keeps sessions in-process. It is the default for the CLI and
// the test double for the durable stores; sessions are fully independent of
// each other, so a plain map behind a lock is enough.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionState),
	}
}

func (s *MemoryStore) Load(ctx context.Context, userID, sessionID string) (*SessionState, error) {
	key, err := memoryKey(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	st, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}
	return cloneState(st)
}

func (s *MemoryStore) Save(ctx context.Context, st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	key, err := memoryKey(st.UserID, st.SessionID)
	if err != nil {
		return err
	}

	clone, err := cloneState(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[key] = clone
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, sessionID string) error {
	key, err := memoryKey(userID, sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	return nil
}

func memoryKey(userID, sessionID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrInvalidUser
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return userID + ":" + sessionID, nil
}

// cloneState round-trips through JSON so callers never share pointers with
// the store.
func cloneState(in *SessionState) (*SessionState, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out SessionState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
