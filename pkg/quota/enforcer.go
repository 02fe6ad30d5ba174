package quota

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/misty-step/heartbeat-sub001/pkg/logger"
	"github.com/misty-step/heartbeat-sub001/pkg/subscription"
	"github.com/misty-step/heartbeat-sub001/pkg/tier"
)

// Decision is the outcome of a quota check. Reason is user-facing copy and
// is set only when the action is denied.
type Decision struct {
	Allowed bool
	Reason  string
}

// MonitorCounterFunc returns the number of monitors a user currently has.
// It runs on every creation attempt, so keep it fast; wrap slow counts with
// CachedCounter.
type MonitorCounterFunc func(ctx context.Context, userID uuid.UUID) (int64, error)

// Enforcer gates monitor creation against the user's subscription and tier.
//
// The check is count-then-compare without cross-request isolation: N
// simultaneous creation attempts from one user can overshoot the limit by up
// to N-1. That soft-limit behavior is accepted; the next check sees the real
// count and denies.
type Enforcer struct {
	store   subscription.Store
	catalog *tier.Catalog
	counter MonitorCounterFunc
	log     *slog.Logger
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithLogger sets the logger used when lookups degrade to safe defaults.
func WithLogger(log *slog.Logger) Option {
	return func(e *Enforcer) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEnforcer creates an Enforcer.
// Panics if any dependency is nil to fail fast during initialization.
func NewEnforcer(store subscription.Store, catalog *tier.Catalog, counter MonitorCounterFunc, opts ...Option) *Enforcer {
	if store == nil {
		panic("quota: subscription.Store is required")
	}
	if catalog == nil {
		panic("quota: tier.Catalog is required")
	}
	if counter == nil {
		panic("quota: MonitorCounterFunc is required")
	}

	e := &Enforcer{
		store:   store,
		catalog: catalog,
		counter: counter,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// CanCreateMonitor decides whether the user may create another monitor.
// Unauthenticated or unsubscribed users are denied, never errored; an error
// is returned only for infrastructure failures (store, counter).
func (e *Enforcer) CanCreateMonitor(ctx context.Context, userID uuid.UUID) (Decision, error) {
	sub, err := e.getSubscription(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if sub == nil {
		return Decision{Allowed: false, Reason: "No active subscription"}, nil
	}

	if !sub.HasActiveAccess() {
		return Decision{
			Allowed: false,
			Reason:  "Your subscription is not active. Please update your billing details.",
		}, nil
	}

	t, err := e.catalog.Get(sub.Tier)
	if err != nil {
		return Decision{}, errors.Join(ErrUnknownTier, fmt.Errorf("tier %q", sub.Tier))
	}

	count, err := e.counter(ctx, userID)
	if err != nil {
		return Decision{}, errors.Join(ErrFailedToCountMonitors, err)
	}

	if count >= t.Monitors {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("You've reached your limit of %d monitors. Upgrade your plan to add more.", t.Monitors),
		}, nil
	}

	return Decision{Allowed: true}, nil
}

// GetTierLimits returns the entitlement limits for the user's tier. It never
// fails: without an active subscription (or on any lookup problem) it
// returns tier.RestrictiveLimits so UI code degrades instead of crashing.
func (e *Enforcer) GetTierLimits(ctx context.Context, userID uuid.UUID) tier.Limits {
	sub, err := e.getSubscription(ctx, userID)
	if err != nil {
		e.log.WarnContext(ctx, "tier limits lookup failed, using restrictive defaults",
			logger.UserID(userID),
			logger.Error(err),
			slog.String("component", "quota"),
		)
		return tier.RestrictiveLimits()
	}
	if sub == nil || !sub.HasActiveAccess() {
		return tier.RestrictiveLimits()
	}

	t, err := e.catalog.Get(sub.Tier)
	if err != nil {
		e.log.WarnContext(ctx, "subscription references unknown tier, using restrictive defaults",
			logger.UserID(userID),
			slog.String("tier", string(sub.Tier)),
			slog.String("component", "quota"),
		)
		return tier.RestrictiveLimits()
	}

	return t.Limits()
}

// getSubscription maps "no row" and "no identity" to a nil subscription so
// callers treat both as the safe-empty case.
func (e *Enforcer) getSubscription(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	if userID == uuid.Nil {
		return nil, nil
	}

	sub, err := e.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
