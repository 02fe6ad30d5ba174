// Package subscription turns billing provider events into a canonical local
// subscription record and answers the one question the rest of the product
// keeps asking: does this user currently have paid access?
//
// # Model
//
// Each user owns at most one Subscription (unique on UserID). Status moves
// only in response to provider events; "expired" is terminal and expired
// rows are kept for audit history instead of being deleted.
//
// # Reconciliation
//
// The Reconciler applies "created", "updated" and "expired" events
// idempotently:
//
//   - a redelivered "created" event patches the existing row instead of
//     inserting a duplicate
//   - updates are partial: only fields present in the Patch are touched,
//     with Field[T] keeping "omitted" distinct from "set to empty"
//   - a delayed event older than the last applied one (by the provider's
//     OccurredAt timestamp) is logged and dropped, never applied over newer
//     state
//   - an update that moves a trialing subscription to active clears
//     TrialEnd in the same patch even when the payload omits it, so a stale
//     trial end can never masquerade as trial access after a paid period
//     starts
//
// Unknown provider ids on update/expire are expected (webhooks arrive out of
// order); they are logged and skipped, not raised as errors. The engine
// performs no retries: redelivery is owned by the webhook delivery system
// and is safe because every operation is idempotent.
//
// # Access policy
//
// HasActiveAccessAt is the grace-aware access check: trialing and active
// always grant access, past_due and canceled grant it until
// CurrentPeriodEnd. IsActiveOrTrialing is the strict variant with no grace
// window. They are deliberately separate policies; choose per call site.
//
// Grace expiry is evaluated lazily at check time against the wall clock.
// There is no sweep job, so an elapsed period is simply visible on the next
// check.
//
// # Stores
//
// Store has two implementations: MemoryStore for tests and PostgresStore
// (pgx) for production, where every Patch compiles to one UPDATE statement
// and the user_id unique index backs the one-subscription-per-user
// invariant.
//
//	store := subscription.NewPostgresStore(pool)
//	rec := subscription.NewReconciler(store, subscription.WithLogger(log))
//
//	id, err := rec.CreateSubscription(ctx, subscription.CreateParams{
//	    UserID:           userID,
//	    Tier:             tier.Pulse,
//	    Status:           subscription.StatusTrialing,
//	    CurrentPeriodEnd: periodEnd,
//	    TrialEnd:         &trialEnd,
//	    StripeCustomerID: "cus_123",
//	    OccurredAt:       eventTime,
//	})
package subscription
