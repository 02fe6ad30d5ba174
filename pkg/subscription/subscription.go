package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/misty-step/heartbeat-sub001/pkg/tier"
)

// Status represents the current state of a subscription.
// Transitions are driven exclusively by billing provider events; nothing in
// this engine moves a subscription between statuses on its own schedule.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	// StatusExpired is terminal. Expired rows are kept for audit history and
	// never transition out or get hard-deleted.
	StatusExpired Status = "expired"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTrialing, StatusActive, StatusPastDue, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// Subscription is the canonical local record reconciled from the billing
// provider's event stream. Each user has at most one subscription;
// UserID carries a unique index in the store.
type Subscription struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	Tier                 tier.ID
	Status               Status
	CurrentPeriodEnd     time.Time  // instant through which access is paid for
	TrialEnd             *time.Time // set only while on trial
	StripeCustomerID     string
	StripeSubscriptionID string // empty until the provider confirms a subscription object
	CancelAtPeriodEnd    bool
	// LastEventAt is the provider timestamp of the most recently applied
	// event. The reconciler uses it to drop delayed out-of-order deliveries.
	LastEventAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTrialing returns true if the subscription is in trial status.
func (s *Subscription) IsTrialing() bool {
	return s != nil && s.Status == StatusTrialing
}

// IsExpired returns true if the subscription reached its terminal status.
func (s *Subscription) IsExpired() bool {
	return s != nil && s.Status == StatusExpired
}

// TrialDaysRemainingAt returns the number of days remaining in the trial at
// a given instant, rounding partial days up. Returns 0 when not trialing.
// Taking the instant as a parameter keeps this testable with fixed times.
func (s *Subscription) TrialDaysRemainingAt(now time.Time) int {
	if !s.IsTrialing() || s.TrialEnd == nil {
		return 0
	}

	remaining := s.TrialEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}

	days := remaining.Hours() / 24
	return int(days + 0.5)
}

// TrialDaysRemaining returns the number of days remaining in the trial.
func (s *Subscription) TrialDaysRemaining() int {
	return s.TrialDaysRemainingAt(time.Now().UTC())
}
