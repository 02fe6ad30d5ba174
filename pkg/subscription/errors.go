package subscription

import "errors"

var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrInvalidStatus             = errors.New("invalid subscription status")
	ErrMissingUserID             = errors.New("user ID is required")
	ErrMissingStripeSubID        = errors.New("stripe subscription ID is required")

	// ErrUnauthorized marks mutations attempted without an authenticated
	// identity. Queries never return it; they degrade to empty results.
	ErrUnauthorized = errors.New("unauthorized")

	ErrFailedToSaveSubscription = errors.New("failed to save subscription")
)
