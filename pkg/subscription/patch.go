package subscription

import (
	"time"

	"github.com/misty-step/heartbeat-sub001/pkg/tier"
)

// Patch is a partial update to a subscription. Absent fields are untouched;
// present fields are applied, so "omitted" and "set to the zero value" stay
// distinct (TrialEnd in particular can be cleared with Set[*time.Time](nil)).
type Patch struct {
	Tier                 Field[tier.ID]
	Status               Field[Status]
	CurrentPeriodEnd     Field[time.Time]
	TrialEnd             Field[*time.Time]
	StripeCustomerID     Field[string]
	StripeSubscriptionID Field[string]
	CancelAtPeriodEnd    Field[bool]
	// OccurredAt is the provider's event timestamp. When set, the reconciler
	// refuses to apply the patch over a newer already-applied event. Zero
	// means the event carries no ordering information and applies as-is.
	OccurredAt time.Time
}

// IsZero reports whether the patch carries no fields.
func (p Patch) IsZero() bool {
	return !p.Tier.IsSet() &&
		!p.Status.IsSet() &&
		!p.CurrentPeriodEnd.IsSet() &&
		!p.TrialEnd.IsSet() &&
		!p.StripeCustomerID.IsSet() &&
		!p.StripeSubscriptionID.IsSet() &&
		!p.CancelAtPeriodEnd.IsSet()
}

// apply mutates sub in place with the present fields and stamps UpdatedAt.
// Store implementations call this under their own write lock or translate
// the patch into a single UPDATE statement; either way the whole patch lands
// atomically.
func (p Patch) apply(sub *Subscription, now time.Time) {
	if v, ok := p.Tier.Get(); ok {
		sub.Tier = v
	}
	if v, ok := p.Status.Get(); ok {
		sub.Status = v
	}
	if v, ok := p.CurrentPeriodEnd.Get(); ok {
		sub.CurrentPeriodEnd = v
	}
	if v, ok := p.TrialEnd.Get(); ok {
		sub.TrialEnd = v
	}
	if v, ok := p.StripeCustomerID.Get(); ok {
		sub.StripeCustomerID = v
	}
	if v, ok := p.StripeSubscriptionID.Get(); ok {
		sub.StripeSubscriptionID = v
	}
	if v, ok := p.CancelAtPeriodEnd.Get(); ok {
		sub.CancelAtPeriodEnd = v
	}
	if !p.OccurredAt.IsZero() {
		sub.LastEventAt = p.OccurredAt
	}
	sub.UpdatedAt = now
}
