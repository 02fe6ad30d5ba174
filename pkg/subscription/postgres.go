package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/misty-step/heartbeat-sub001/pkg/pg"
	"github.com/misty-step/heartbeat-sub001/pkg/tier"
)

// DB is the slice of pgx used by PostgresStore. *pgxpool.Pool satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is the production Store, backed by the subscriptions table
// (unique index on user_id, secondary indexes on the Stripe ids; see
// internal/db/migrations). Patch compiles to a single UPDATE statement, so
// every mutation is one atomic database operation.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a Store over the given database handle.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("subscription: DB is required")
	}
	return &PostgresStore{db: db}
}

const subscriptionColumns = `id, user_id, tier, status, current_period_end, trial_end,
	stripe_customer_id, stripe_subscription_id, cancel_at_period_end,
	last_event_at, created_at, updated_at`

// GetByUserID retrieves the subscription owned by userID.
func (s *PostgresStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	return s.getOne(ctx, query, userID)
}

// GetByStripeCustomerID retrieves a subscription by provider customer id.
func (s *PostgresStore) GetByStripeCustomerID(ctx context.Context, customerID string) (*Subscription, error) {
	if customerID == "" {
		return nil, ErrSubscriptionNotFound
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_customer_id = $1`
	return s.getOne(ctx, query, customerID)
}

// GetByStripeSubscriptionID retrieves a subscription by provider
// subscription id.
func (s *PostgresStore) GetByStripeSubscriptionID(ctx context.Context, subID string) (*Subscription, error) {
	if subID == "" {
		return nil, ErrSubscriptionNotFound
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_subscription_id = $1`
	return s.getOne(ctx, query, subID)
}

// Create inserts a new subscription, assigning ID when zero. The unique
// index on user_id turns duplicate inserts into ErrSubscriptionAlreadyExists.
func (s *PostgresStore) Create(ctx context.Context, sub *Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}

	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.Exec(ctx, query,
		sub.ID, sub.UserID, string(sub.Tier), string(sub.Status),
		sub.CurrentPeriodEnd, sub.TrialEnd,
		sub.StripeCustomerID, sub.StripeSubscriptionID, sub.CancelAtPeriodEnd,
		nullableTime(sub.LastEventAt), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrSubscriptionAlreadyExists
		}
		return err
	}
	return nil
}

// Patch applies the present fields in one UPDATE and returns the new row.
func (s *PostgresStore) Patch(ctx context.Context, id uuid.UUID, patch Patch) (*Subscription, error) {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if v, ok := patch.Tier.Get(); ok {
		add("tier", string(v))
	}
	if v, ok := patch.Status.Get(); ok {
		add("status", string(v))
	}
	if v, ok := patch.CurrentPeriodEnd.Get(); ok {
		add("current_period_end", v)
	}
	if v, ok := patch.TrialEnd.Get(); ok {
		add("trial_end", v) // nil writes NULL, clearing the trial
	}
	if v, ok := patch.StripeCustomerID.Get(); ok {
		add("stripe_customer_id", v)
	}
	if v, ok := patch.StripeSubscriptionID.Get(); ok {
		add("stripe_subscription_id", v)
	}
	if v, ok := patch.CancelAtPeriodEnd.Get(); ok {
		add("cancel_at_period_end", v)
	}
	if !patch.OccurredAt.IsZero() {
		add("last_event_at", patch.OccurredAt)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE subscriptions SET %s WHERE id = $%d RETURNING `+subscriptionColumns,
		strings.Join(sets, ", "), len(args))

	return s.scanOne(s.db.QueryRow(ctx, query, args...))
}

func (s *PostgresStore) getOne(ctx context.Context, query string, arg any) (*Subscription, error) {
	return s.scanOne(s.db.QueryRow(ctx, query, arg))
}

func (s *PostgresStore) scanOne(row pgx.Row) (*Subscription, error) {
	var (
		sub         Subscription
		tierID      string
		status      string
		lastEventAt *time.Time
	)

	err := row.Scan(
		&sub.ID, &sub.UserID, &tierID, &status, &sub.CurrentPeriodEnd, &sub.TrialEnd,
		&sub.StripeCustomerID, &sub.StripeSubscriptionID, &sub.CancelAtPeriodEnd,
		&lastEventAt, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	sub.Tier = tier.ID(tierID)
	sub.Status = Status(status)
	if lastEventAt != nil {
		sub.LastEventAt = *lastEventAt
	}
	return &sub, nil
}

// nullableTime maps the zero time to NULL so "no event timestamp" stays
// distinct from a real instant in the database.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
