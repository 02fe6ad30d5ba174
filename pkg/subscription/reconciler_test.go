package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misty-step/heartbeat-sub001/pkg/subscription"
	"github.com/misty-step/heartbeat-sub001/pkg/tier"
)

func newReconciler(t *testing.T) (*subscription.Reconciler, *subscription.MemoryStore) {
	t.Helper()
	store := subscription.NewMemoryStore()
	return subscription.NewReconciler(store), store
}

func trialingParams(userID uuid.UUID) subscription.CreateParams {
	now := time.Now().UTC()
	trialEnd := now.AddDate(0, 0, 14)
	return subscription.CreateParams{
		UserID:               userID,
		Tier:                 tier.Pulse,
		Status:               subscription.StatusTrialing,
		CurrentPeriodEnd:     trialEnd,
		TrialEnd:             &trialEnd,
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_123",
		OccurredAt:           now,
	}
}

func TestReconciler_CreateSubscription(t *testing.T) {
	t.Parallel()

	t.Run("inserts a new subscription and returns its id", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, store := newReconciler(t)
		userID := uuid.New()

		id, err := rec.CreateSubscription(ctx, trialingParams(userID))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		sub, err := store.GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, id, sub.ID)
		assert.Equal(t, tier.Pulse, sub.Tier)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, "cus_123", sub.StripeCustomerID)
		assert.NotNil(t, sub.TrialEnd)
		assert.Equal(t, sub.CreatedAt, sub.UpdatedAt)
	})

	t.Run("redelivered created event patches instead of duplicating", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, store := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		first, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		// Redelivery with a newer timestamp and a changed period end.
		params.OccurredAt = params.OccurredAt.Add(time.Minute)
		params.CurrentPeriodEnd = params.CurrentPeriodEnd.AddDate(0, 1, 0)
		second, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		sub, err := store.GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, params.CurrentPeriodEnd.Unix(), sub.CurrentPeriodEnd.Unix())
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		t.Parallel()
		rec, _ := newReconciler(t)

		_, err := rec.CreateSubscription(context.Background(), subscription.CreateParams{
			Status: subscription.StatusActive,
		})
		assert.ErrorIs(t, err, subscription.ErrMissingUserID)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()
		rec, _ := newReconciler(t)

		_, err := rec.CreateSubscription(context.Background(), subscription.CreateParams{
			UserID: uuid.New(),
			Status: subscription.Status("bogus"),
		})
		assert.ErrorIs(t, err, subscription.ErrInvalidStatus)
	})
}

func TestReconciler_UpdateSubscription(t *testing.T) {
	t.Parallel()

	t.Run("unknown provider id is logged and skipped, not an error", func(t *testing.T) {
		t.Parallel()
		rec, _ := newReconciler(t)

		sub, err := rec.UpdateSubscription(context.Background(), "sub_unknown", subscription.Patch{
			Status: subscription.Set(subscription.StatusActive),
		})
		require.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("applies only the fields present in the patch", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, _ := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		periodEnd := time.Now().UTC().AddDate(0, 1, 0)
		updated, err := rec.UpdateSubscription(ctx, "sub_123", subscription.Patch{
			CancelAtPeriodEnd: subscription.Set(true),
			CurrentPeriodEnd:  subscription.Set(periodEnd),
			OccurredAt:        params.OccurredAt.Add(time.Minute),
		})
		require.NoError(t, err)
		require.NotNil(t, updated)

		// Untouched fields survive.
		assert.Equal(t, subscription.StatusTrialing, updated.Status)
		assert.Equal(t, tier.Pulse, updated.Tier)
		assert.NotNil(t, updated.TrialEnd)
		// Patched fields land.
		assert.True(t, updated.CancelAtPeriodEnd)
		assert.Equal(t, periodEnd.Unix(), updated.CurrentPeriodEnd.Unix())
	})

	t.Run("trialing to active clears trial end even when omitted", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, _ := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		updated, err := rec.UpdateSubscription(ctx, "sub_123", subscription.Patch{
			Status:     subscription.Set(subscription.StatusActive),
			OccurredAt: params.OccurredAt.Add(time.Minute),
		})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, subscription.StatusActive, updated.Status)
		assert.Nil(t, updated.TrialEnd, "zombie trial end must be cleared in the same patch")
	})

	t.Run("explicit trial end in the payload wins over the implicit clear", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, _ := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		explicit := time.Now().UTC().AddDate(0, 0, 30)
		updated, err := rec.UpdateSubscription(ctx, "sub_123", subscription.Patch{
			Status:     subscription.Set(subscription.StatusActive),
			TrialEnd:   subscription.Set(&explicit),
			OccurredAt: params.OccurredAt.Add(time.Minute),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.TrialEnd)
		assert.Equal(t, explicit.Unix(), updated.TrialEnd.Unix())
	})

	t.Run("stale event does not overwrite newer state", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, store := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		// A delayed event from before the create must be dropped.
		result, err := rec.UpdateSubscription(ctx, "sub_123", subscription.Patch{
			Status:     subscription.Set(subscription.StatusCanceled),
			OccurredAt: params.OccurredAt.Add(-time.Hour),
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, subscription.StatusTrialing, result.Status)

		sub, err := store.GetByStripeSubscriptionID(ctx, "sub_123")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
	})

	t.Run("expired is terminal, updates are skipped", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, _ := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		_, err = rec.ExpireSubscription(ctx, "sub_123", params.OccurredAt.Add(time.Minute))
		require.NoError(t, err)

		result, err := rec.UpdateSubscription(ctx, "sub_123", subscription.Patch{
			Status:     subscription.Set(subscription.StatusActive),
			OccurredAt: params.OccurredAt.Add(2 * time.Minute),
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, subscription.StatusExpired, result.Status)
	})

	t.Run("rejects empty provider id", func(t *testing.T) {
		t.Parallel()
		rec, _ := newReconciler(t)

		_, err := rec.UpdateSubscription(context.Background(), "", subscription.Patch{})
		assert.ErrorIs(t, err, subscription.ErrMissingStripeSubID)
	})
}

func TestReconciler_ExpireSubscription(t *testing.T) {
	t.Parallel()

	t.Run("moves the subscription to expired", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, _ := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		expired, err := rec.ExpireSubscription(ctx, "sub_123", params.OccurredAt.Add(time.Minute))
		require.NoError(t, err)
		require.NotNil(t, expired)
		assert.Equal(t, subscription.StatusExpired, expired.Status)
	})

	t.Run("second expiry is a no-op returning the same id", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		rec, _ := newReconciler(t)
		userID := uuid.New()

		params := trialingParams(userID)
		_, err := rec.CreateSubscription(ctx, params)
		require.NoError(t, err)

		first, err := rec.ExpireSubscription(ctx, "sub_123", params.OccurredAt.Add(time.Minute))
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := rec.ExpireSubscription(ctx, "sub_123", params.OccurredAt.Add(2*time.Minute))
		require.NoError(t, err)
		require.NotNil(t, second)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "second expiry must not write")
	})

	t.Run("unknown provider id is logged and skipped", func(t *testing.T) {
		t.Parallel()
		rec, _ := newReconciler(t)

		sub, err := rec.ExpireSubscription(context.Background(), "sub_unknown", time.Now().UTC())
		require.NoError(t, err)
		assert.Nil(t, sub)
	})
}

func TestReconciler_NoAccessGapOnRecovery(t *testing.T) {
	t.Parallel()

	// A past_due subscription flips back to active while the paid period is
	// still running: access must hold before, during and after.
	ctx := context.Background()
	rec, store := newReconciler(t)
	userID := uuid.New()

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)

	_, err := rec.CreateSubscription(ctx, subscription.CreateParams{
		UserID:               userID,
		Tier:                 tier.Vital,
		Status:               subscription.StatusPastDue,
		CurrentPeriodEnd:     periodEnd,
		StripeCustomerID:     "cus_gap",
		StripeSubscriptionID: "sub_gap",
		OccurredAt:           now,
	})
	require.NoError(t, err)

	before, err := store.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, before.HasActiveAccess(), "past_due within paid period grants access")

	after, err := rec.UpdateSubscription(ctx, "sub_gap", subscription.Patch{
		Status:     subscription.Set(subscription.StatusActive),
		OccurredAt: now.Add(time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.True(t, after.HasActiveAccess(), "active grants access")

	stored, err := store.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stored.HasActiveAccess())
}
