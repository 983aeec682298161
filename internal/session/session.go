package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

var ErrNotFound = errors.New("session not found or expired")

// Session ties a browser cookie to a staff account.
type Session struct {
	ID        string       `json:"-"`
	UserID    string       `json:"userId"`
	Role      records.Role `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Store issues, resolves and revokes login sessions. Sessions expire after
// the store's TTL.
type Store interface {
	Create(ctx context.Context, userID string, role records.Role) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func newSession(userID string, role records.Role, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: now.UTC(),
	}
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// MemoryStore keeps sessions in process. Expired entries are dropped lazily
// on lookup.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Create(_ context.Context, userID string, role records.Role) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := newSession(userID, role, now)
	m.sessions[s.ID] = memoryEntry{session: *s, expires: now.Add(m.ttl)}
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	s := e.session
	s.ID = id
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
