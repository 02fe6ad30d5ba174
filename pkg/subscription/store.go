package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines subscription persistence. UserID is unique; the two Stripe
// identifiers carry secondary indexes so webhook processing can look rows up
// by external id.
//
// Each method is a single atomic operation. The store provides
// read-modify-write atomicity per call; cross-call coordination is the
// store's isolation level, not this interface's contract.
type Store interface {
	// GetByUserID retrieves the subscription owned by userID.
	// Returns ErrSubscriptionNotFound if none exists.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// GetByStripeCustomerID retrieves a subscription by the provider's
	// customer reference. Returns ErrSubscriptionNotFound if none exists.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*Subscription, error)

	// GetByStripeSubscriptionID retrieves a subscription by the provider's
	// subscription reference. Returns ErrSubscriptionNotFound if none exists.
	GetByStripeSubscriptionID(ctx context.Context, subID string) (*Subscription, error)

	// Create inserts a new subscription, assigning ID when it is zero.
	// Returns ErrSubscriptionAlreadyExists when the user already has a row.
	Create(ctx context.Context, sub *Subscription) error

	// Patch applies a partial update to the subscription with the given id
	// as one atomic mutation and returns the updated row.
	// Returns ErrSubscriptionNotFound if the row is gone.
	Patch(ctx context.Context, id uuid.UUID, patch Patch) (*Subscription, error)
}
