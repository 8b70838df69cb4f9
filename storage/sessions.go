package storage

import (
	"context"
	"sync"
	"time"

	"ventrilinks/models"
)

// SessionStore ist der austauschbare Key-Value-Store für Bearer-Sessions.
// Der In-Memory-Store ist der Default; kanonischer Zustand lebt ohnehin im
// externen Record-Store, ein Prozess-Neustart invalidiert nur Sessions.
type SessionStore interface {
	Put(ctx context.Context, s models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// MemorySessionStore hält Sessions in einer prozess-lokalen Map.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewMemorySessionStore erstellt einen leeren In-Memory-Store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]models.Session{}}
}

func (m *MemorySessionStore) Put(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, token string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Delete ist idempotent; ein unbekannter Token ist kein Fehler.
func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// WaitlistStore sammelt Einträge des öffentlichen Waitlist-Formulars.
type WaitlistStore interface {
	Add(ctx context.Context, e models.WaitlistEntry) error
	List(ctx context.Context) ([]models.WaitlistEntry, error)
}

// MemoryWaitlist ist die prozess-lokale Default-Implementierung.
type MemoryWaitlist struct {
	mu      sync.Mutex
	entries []models.WaitlistEntry
}

// NewMemoryWaitlist erstellt eine leere Waitlist.
func NewMemoryWaitlist() *MemoryWaitlist {
	return &MemoryWaitlist{}
}

func (w *MemoryWaitlist) Add(_ context.Context, e models.WaitlistEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
	return nil
}

func (w *MemoryWaitlist) List(_ context.Context) ([]models.WaitlistEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.WaitlistEntry, len(w.entries))
	copy(out, w.entries)
	return out, nil
}
