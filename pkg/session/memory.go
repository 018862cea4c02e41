package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps sessions and users in process memory.
// It is meant for tests and single-process development servers.
type MemoryStore struct {
	sessions map[string]Record
	users    map[string]User
	mu       sync.RWMutex
}

var (
	_ Store     = (*MemoryStore)(nil)
	_ Rotator   = (*MemoryStore)(nil)
	_ UserStore = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Record),
		users:    make(map[string]User),
	}
}

func (m *MemoryStore) Load(_ context.Context, token string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	u, ok := m.users[rec.UserID]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Login = u.Login
	rec.Name = u.Name
	rec.Permissions = slices.Clone(u.Permissions)
	rec.Data = slices.Clone(rec.Data)
	return &rec, nil
}

func (m *MemoryStore) Insert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(rec)
}

func (m *MemoryStore) insert(rec *Record) error {
	if rec.Token == "" || rec.UserID == "" {
		return ErrInvalidSession
	}
	if _, ok := m.users[rec.UserID]; !ok {
		return ErrUserNotFound
	}
	now := time.Now()
	m.sessions[rec.Token] = Record{
		Token:        rec.Token,
		UserID:       rec.UserID,
		AuthStatus:   rec.AuthStatus,
		IP:           rec.IP,
		Data:         slices.Clone(rec.Data),
		LoginTime:    now,
		LastActiveAt: now,
	}
	return nil
}

func (m *MemoryStore) Update(_ context.Context, token, userID string, status AuthStatus, data []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[token]
	if !ok || rec.UserID != userID {
		return 0, nil
	}
	rec.AuthStatus = status
	rec.Data = slices.Clone(data)
	rec.LastActiveAt = time.Now()
	m.sessions[token] = rec
	return 1, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Rotate(_ context.Context, oldToken string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, had := m.sessions[oldToken]
	delete(m.sessions, oldToken)
	if err := m.insert(rec); err != nil {
		if had {
			m.sessions[oldToken] = prev
		}
		return err
	}
	return nil
}

// PutUser creates or replaces a user.
func (m *MemoryStore) PutUser(_ context.Context, u User) error {
	if u.ID == "" {
		return ErrInvalidSession
	}
	u.Permissions = slices.Clone(u.Permissions)

	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) UserByLogin(_ context.Context, login string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Login == login {
			u.Permissions = slices.Clone(u.Permissions)
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
