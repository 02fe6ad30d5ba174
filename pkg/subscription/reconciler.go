package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/misty-step/heartbeat-sub001/pkg/logger"
	"github.com/misty-step/heartbeat-sub001/pkg/tier"
)

// CreateParams is the typed payload of a provider "subscription created"
// event. Signature verification and payload decoding happen upstream; by the
// time a value reaches the reconciler it is trusted and well-formed.
type CreateParams struct {
	UserID               uuid.UUID
	Tier                 tier.ID
	Status               Status
	CurrentPeriodEnd     time.Time
	TrialEnd             *time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
	CancelAtPeriodEnd    bool
	// OccurredAt is the provider's event timestamp; zero means unknown.
	OccurredAt time.Time
}

// Reconciler folds billing provider events into the canonical subscription
// record. All three operations are idempotent: redelivered events settle
// into the same state, and delayed older events are dropped instead of
// overwriting newer state.
//
// The reconciler performs no retries and holds no locks; each operation is
// one atomic store mutation, and redelivery is the webhook system's job.
type Reconciler struct {
	store Store
	log   *slog.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger used for expected-miss and skipped-event logs.
func WithLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReconciler creates a Reconciler over the given store.
// Panics if store is nil to fail fast during initialization.
func NewReconciler(store Store, opts ...ReconcilerOption) *Reconciler {
	if store == nil {
		panic("subscription: Store is required")
	}

	r := &Reconciler{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// CreateSubscription applies a "subscription created" event. If the user
// already has a subscription the incoming fields are patched onto it instead
// of inserting a duplicate, which makes redelivered or racing "created"
// events converge on one row. Returns the subscription id either way.
func (r *Reconciler) CreateSubscription(ctx context.Context, params CreateParams) (uuid.UUID, error) {
	if params.UserID == uuid.Nil {
		return uuid.Nil, ErrMissingUserID
	}
	if !params.Status.Valid() {
		return uuid.Nil, ErrInvalidStatus
	}

	existing, err := r.store.GetByUserID(ctx, params.UserID)
	switch {
	case err == nil:
		return r.patchExisting(ctx, existing, params)
	case errors.Is(err, ErrSubscriptionNotFound):
		// fall through to insert
	default:
		return uuid.Nil, err
	}

	now := time.Now().UTC()
	sub := &Subscription{
		UserID:               params.UserID,
		Tier:                 params.Tier,
		Status:               params.Status,
		CurrentPeriodEnd:     params.CurrentPeriodEnd,
		TrialEnd:             params.TrialEnd,
		StripeCustomerID:     params.StripeCustomerID,
		StripeSubscriptionID: params.StripeSubscriptionID,
		CancelAtPeriodEnd:    params.CancelAtPeriodEnd,
		LastEventAt:          params.OccurredAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := r.store.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrSubscriptionAlreadyExists) {
			// Lost a race with another creation path; converge by patching
			// the row that won.
			if winner, getErr := r.store.GetByUserID(ctx, params.UserID); getErr == nil {
				return r.patchExisting(ctx, winner, params)
			}
		}
		return uuid.Nil, errors.Join(ErrFailedToSaveSubscription, err)
	}

	return sub.ID, nil
}

// patchExisting folds a redelivered "created" payload onto an existing row.
func (r *Reconciler) patchExisting(ctx context.Context, existing *Subscription, params CreateParams) (uuid.UUID, error) {
	if r.skip(ctx, existing, params.OccurredAt, "subscription created") {
		return existing.ID, nil
	}

	patch := Patch{
		Tier:                 Set(params.Tier),
		Status:               Set(params.Status),
		CurrentPeriodEnd:     Set(params.CurrentPeriodEnd),
		TrialEnd:             Set(params.TrialEnd),
		StripeCustomerID:     Set(params.StripeCustomerID),
		StripeSubscriptionID: Set(params.StripeSubscriptionID),
		CancelAtPeriodEnd:    Set(params.CancelAtPeriodEnd),
		OccurredAt:           params.OccurredAt,
	}

	if _, err := r.store.Patch(ctx, existing.ID, patch); err != nil {
		return uuid.Nil, errors.Join(ErrFailedToSaveSubscription, err)
	}
	return existing.ID, nil
}

// UpdateSubscription applies a provider "subscription updated" event, looked
// up by the provider's subscription id. Only fields present in the patch are
// touched.
//
// An unknown external id is an expected condition (the provider does not
// guarantee delivery order; the update may precede the create): it is
// logged and (nil, nil) is returned, never an error.
func (r *Reconciler) UpdateSubscription(ctx context.Context, stripeSubID string, patch Patch) (*Subscription, error) {
	if stripeSubID == "" {
		return nil, ErrMissingStripeSubID
	}

	existing, err := r.store.GetByStripeSubscriptionID(ctx, stripeSubID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			r.log.InfoContext(ctx, "subscription update for unknown provider id, skipping",
				slog.String("stripe_subscription_id", stripeSubID),
				slog.String("component", "subscription.reconciler"),
			)
			return nil, nil
		}
		return nil, err
	}

	if r.skip(ctx, existing, patch.OccurredAt, "subscription updated") {
		return existing, nil
	}

	patch = withTrialCleared(existing, patch)

	updated, err := r.store.Patch(ctx, existing.ID, patch)
	if err != nil {
		return nil, errors.Join(ErrFailedToSaveSubscription, err)
	}
	return updated, nil
}

// ExpireSubscription moves the subscription with the given provider id to
// its terminal expired status. Missing rows are logged and skipped; an
// already-expired row is returned unchanged, so redelivery is a no-op.
// occurredAt is the provider's event timestamp (zero if unknown).
func (r *Reconciler) ExpireSubscription(ctx context.Context, stripeSubID string, occurredAt time.Time) (*Subscription, error) {
	if stripeSubID == "" {
		return nil, ErrMissingStripeSubID
	}

	existing, err := r.store.GetByStripeSubscriptionID(ctx, stripeSubID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			r.log.InfoContext(ctx, "subscription expiry for unknown provider id, skipping",
				slog.String("stripe_subscription_id", stripeSubID),
				slog.String("component", "subscription.reconciler"),
			)
			return nil, nil
		}
		return nil, err
	}

	if existing.Status == StatusExpired {
		return existing, nil
	}

	if r.stale(ctx, existing, occurredAt, "subscription expired") {
		return existing, nil
	}

	updated, err := r.store.Patch(ctx, existing.ID, Patch{
		Status:     Set(StatusExpired),
		OccurredAt: occurredAt,
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToSaveSubscription, err)
	}
	return updated, nil
}

// skip reports whether the event must not be applied to existing: either the
// row is terminally expired or the event is older than the last applied one.
func (r *Reconciler) skip(ctx context.Context, existing *Subscription, occurredAt time.Time, event string) bool {
	if existing.Status == StatusExpired {
		r.log.InfoContext(ctx, "event for expired subscription, skipping",
			slog.String("event", event),
			logger.UserID(existing.UserID),
			slog.String("component", "subscription.reconciler"),
		)
		return true
	}
	return r.stale(ctx, existing, occurredAt, event)
}

// stale drops delayed out-of-order deliveries: an event timestamped before
// the last applied event must not overwrite newer state. Events without a
// timestamp carry no ordering information and always apply.
func (r *Reconciler) stale(ctx context.Context, existing *Subscription, occurredAt time.Time, event string) bool {
	if occurredAt.IsZero() || existing.LastEventAt.IsZero() {
		return false
	}
	if occurredAt.Before(existing.LastEventAt) {
		r.log.WarnContext(ctx, "stale provider event, skipping",
			slog.String("event", event),
			slog.Time("occurred_at", occurredAt),
			slog.Time("last_event_at", existing.LastEventAt),
			logger.UserID(existing.UserID),
			slog.String("component", "subscription.reconciler"),
		)
		return true
	}
	return false
}

// withTrialCleared enforces the zombie-trial rule: when a trialing
// subscription turns active, TrialEnd is cleared in the same patch even if
// the payload did not ask for it. A stale trial end left behind a real paid
// period could read as ongoing trial-level access later.
func withTrialCleared(existing *Subscription, patch Patch) Patch {
	if status, ok := patch.Status.Get(); ok &&
		status == StatusActive &&
		existing.Status == StatusTrialing &&
		!patch.TrialEnd.IsSet() {
		patch.TrialEnd = Set[*time.Time](nil)
	}
	return patch
}
