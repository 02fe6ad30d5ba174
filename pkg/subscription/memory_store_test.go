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

func seedSubscription(t *testing.T, store *subscription.MemoryStore, userID uuid.UUID) *subscription.Subscription {
	t.Helper()
	trialEnd := time.Now().UTC().AddDate(0, 0, 14)
	sub := &subscription.Subscription{
		UserID:               userID,
		Tier:                 tier.Pulse,
		Status:               subscription.StatusTrialing,
		CurrentPeriodEnd:     trialEnd,
		TrialEnd:             &trialEnd,
		StripeCustomerID:     "cus_mem",
		StripeSubscriptionID: "sub_mem",
	}
	require.NoError(t, store.Create(context.Background(), sub))
	return sub
}

func TestMemoryStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("assigns an id and timestamps", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()

		sub := seedSubscription(t, store, uuid.New())
		assert.NotEqual(t, uuid.Nil, sub.ID)
		assert.False(t, sub.CreatedAt.IsZero())
		assert.False(t, sub.UpdatedAt.IsZero())
	})

	t.Run("enforces one subscription per user", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		userID := uuid.New()

		seedSubscription(t, store, userID)
		err := store.Create(context.Background(), &subscription.Subscription{
			UserID: userID,
			Status: subscription.StatusActive,
		})
		assert.ErrorIs(t, err, subscription.ErrSubscriptionAlreadyExists)
	})
}

func TestMemoryStore_Lookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	userID := uuid.New()
	created := seedSubscription(t, store, userID)

	t.Run("by user id", func(t *testing.T) {
		t.Parallel()
		sub, err := store.GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, sub.ID)
	})

	t.Run("by provider customer id", func(t *testing.T) {
		t.Parallel()
		sub, err := store.GetByStripeCustomerID(ctx, "cus_mem")
		require.NoError(t, err)
		assert.Equal(t, created.ID, sub.ID)
	})

	t.Run("by provider subscription id", func(t *testing.T) {
		t.Parallel()
		sub, err := store.GetByStripeSubscriptionID(ctx, "sub_mem")
		require.NoError(t, err)
		assert.Equal(t, created.ID, sub.ID)
	})

	t.Run("misses return not found", func(t *testing.T) {
		t.Parallel()
		_, err := store.GetByUserID(ctx, uuid.New())
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

		_, err = store.GetByStripeCustomerID(ctx, "cus_other")
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

		_, err = store.GetByStripeSubscriptionID(ctx, "")
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("returned rows are copies", func(t *testing.T) {
		t.Parallel()
		sub, err := store.GetByUserID(ctx, userID)
		require.NoError(t, err)

		sub.Status = subscription.StatusCanceled
		*sub.TrialEnd = time.Time{}

		again, err := store.GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusTrialing, again.Status)
		require.NotNil(t, again.TrialEnd)
		assert.False(t, again.TrialEnd.IsZero())
	})
}

func TestMemoryStore_Patch(t *testing.T) {
	t.Parallel()

	t.Run("applies present fields and leaves the rest", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := subscription.NewMemoryStore()
		created := seedSubscription(t, store, uuid.New())

		updated, err := store.Patch(ctx, created.ID, subscription.Patch{
			Status:            subscription.Set(subscription.StatusActive),
			CancelAtPeriodEnd: subscription.Set(true),
		})
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, updated.Status)
		assert.True(t, updated.CancelAtPeriodEnd)
		assert.Equal(t, created.Tier, updated.Tier)
		assert.NotNil(t, updated.TrialEnd, "absent field stays untouched")
	})

	t.Run("clears trial end when explicitly set to nil", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := subscription.NewMemoryStore()
		created := seedSubscription(t, store, uuid.New())

		updated, err := store.Patch(ctx, created.ID, subscription.Patch{
			TrialEnd: subscription.Set[*time.Time](nil),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.TrialEnd)
	})

	t.Run("records the event timestamp", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := subscription.NewMemoryStore()
		created := seedSubscription(t, store, uuid.New())

		occurred := time.Now().UTC().Add(time.Minute)
		updated, err := store.Patch(ctx, created.ID, subscription.Patch{
			Status:     subscription.Set(subscription.StatusActive),
			OccurredAt: occurred,
		})
		require.NoError(t, err)
		assert.Equal(t, occurred, updated.LastEventAt)
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		_, err := store.Patch(context.Background(), uuid.New(), subscription.Patch{})
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}

func TestPatch_IsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, subscription.Patch{}.IsZero())
	assert.True(t, subscription.Patch{OccurredAt: time.Now().UTC()}.IsZero(),
		"a timestamp alone carries no fields")
	assert.False(t, subscription.Patch{Status: subscription.Set(subscription.StatusActive)}.IsZero())
	assert.False(t, subscription.Patch{TrialEnd: subscription.Set[*time.Time](nil)}.IsZero(),
		"clearing a field is still a field")
}

func TestField(t *testing.T) {
	t.Parallel()

	t.Run("zero value is absent", func(t *testing.T) {
		t.Parallel()
		var f subscription.Field[string]
		assert.False(t, f.IsSet())
		v, ok := f.Get()
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set to zero value is still present", func(t *testing.T) {
		t.Parallel()
		f := subscription.Set("")
		assert.True(t, f.IsSet())
		v, ok := f.Get()
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set to nil pointer is present", func(t *testing.T) {
		t.Parallel()
		f := subscription.Set[*time.Time](nil)
		assert.True(t, f.IsSet())
		v, ok := f.Get()
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}
