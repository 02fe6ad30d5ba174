package subscription

import "time"

// HasActiveAccessAt reports whether the subscription grants paid access at
// the given instant:
//
//   - trialing or active: always true
//   - past_due or canceled: true only while CurrentPeriodEnd is still in the
//     future (the grace window — a cancellation or failed payment does not
//     revoke access the user already paid for)
//   - expired, or anything else: false
//
// A nil subscription grants nothing, so entitlement queries for users
// without a subscription row stay safe without extra checks.
//
// Grace expiry is evaluated lazily at the moment of the check; there is no
// background sweep. An elapsed grace period becomes visible the next time
// anyone asks.
func (s *Subscription) HasActiveAccessAt(now time.Time) bool {
	if s == nil {
		return false
	}

	switch s.Status {
	case StatusTrialing, StatusActive:
		return true
	case StatusPastDue, StatusCanceled:
		return s.CurrentPeriodEnd.After(now)
	default:
		return false
	}
}

// HasActiveAccess evaluates HasActiveAccessAt against the wall clock.
func (s *Subscription) HasActiveAccess() bool {
	return s.HasActiveAccessAt(time.Now().UTC())
}

// IsActiveOrTrialing is the strict access check: trialing or active status
// only, with no grace window for past_due or canceled subscriptions.
//
// This is intentionally NOT the same policy as HasActiveAccess. Pick the one
// matching the call site: billing-sensitive surfaces (plan changes, renewal
// prompts) usually want the strict check, while feature gating should honor
// the paid-through grace window.
func (s *Subscription) IsActiveOrTrialing() bool {
	return s != nil && (s.Status == StatusTrialing || s.Status == StatusActive)
}
