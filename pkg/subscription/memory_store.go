package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-process
// deployments. Every method takes the mutex for its whole duration, which
// gives each call the read-modify-write atomicity the Store contract
// requires.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription // keyed by subscription id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs: make(map[uuid.UUID]*Subscription),
	}
}

// GetByUserID retrieves the subscription owned by userID.
func (s *MemoryStore) GetByUserID(_ context.Context, userID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if sub.UserID == userID {
			return copySub(sub), nil
		}
	}
	return nil, ErrSubscriptionNotFound
}

// GetByStripeCustomerID retrieves a subscription by provider customer id.
func (s *MemoryStore) GetByStripeCustomerID(_ context.Context, customerID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if customerID == "" {
		return nil, ErrSubscriptionNotFound
	}
	for _, sub := range s.subs {
		if sub.StripeCustomerID == customerID {
			return copySub(sub), nil
		}
	}
	return nil, ErrSubscriptionNotFound
}

// GetByStripeSubscriptionID retrieves a subscription by provider
// subscription id.
func (s *MemoryStore) GetByStripeSubscriptionID(_ context.Context, subID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if subID == "" {
		return nil, ErrSubscriptionNotFound
	}
	for _, sub := range s.subs {
		if sub.StripeSubscriptionID == subID {
			return copySub(sub), nil
		}
	}
	return nil, ErrSubscriptionNotFound
}

// Create inserts a new subscription, assigning ID when zero. The uniqueness
// of UserID is enforced here the way the unique index does in Postgres.
func (s *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subs {
		if existing.UserID == sub.UserID {
			return ErrSubscriptionAlreadyExists
		}
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}

	s.subs[sub.ID] = copySub(sub)
	return nil
}

// Patch applies a partial update atomically and returns the updated row.
func (s *MemoryStore) Patch(_ context.Context, id uuid.UUID, patch Patch) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}

	patch.apply(sub, time.Now().UTC())
	return copySub(sub), nil
}

// copySub returns a defensive copy so callers never alias store-owned state.
func copySub(sub *Subscription) *Subscription {
	c := *sub
	if sub.TrialEnd != nil {
		t := *sub.TrialEnd
		c.TrialEnd = &t
	}
	return &c
}
