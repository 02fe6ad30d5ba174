package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists monitor records. CountByUserID doubles as the production
// counter function for quota enforcement.
type Store interface {
	// Create inserts a new monitor, assigning ID when it is zero.
	Create(ctx context.Context, m *Monitor) error

	// CountByUserID returns how many monitors the user owns.
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// ListByUserID returns the user's monitors, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Monitor, error)
}

// MemoryStore is an in-memory Store for tests and single-process use.
type MemoryStore struct {
	mu       sync.RWMutex
	monitors []Monitor
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Create inserts a new monitor.
func (s *MemoryStore) Create(_ context.Context, m *Monitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	s.monitors = append(s.monitors, *m)
	return nil
}

// CountByUserID returns how many monitors the user owns.
func (s *MemoryStore) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, m := range s.monitors {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ListByUserID returns the user's monitors, newest first.
func (s *MemoryStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Monitor
	for i := len(s.monitors) - 1; i >= 0; i-- {
		if s.monitors[i].UserID == userID {
			out = append(out, s.monitors[i])
		}
	}
	return out, nil
}
