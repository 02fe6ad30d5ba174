package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgx used by PostgresStore. *pgxpool.Pool satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is the production monitor Store, backed by the monitors
// table (indexed on user_id; see internal/db/migrations).
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a Store over the given database handle.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("monitor: DB is required")
	}
	return &PostgresStore{db: db}
}

// Create inserts a new monitor, assigning ID when zero.
func (s *PostgresStore) Create(ctx context.Context, m *Monitor) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO monitors (id, user_id, name, url, interval_seconds, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.UserID, m.Name, m.URL, m.Interval, m.CreatedAt,
	)
	return err
}

// CountByUserID returns how many monitors the user owns. This is the
// production quota.MonitorCounterFunc; wrap it with quota.CachedCounter when
// the table grows.
func (s *PostgresStore) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM monitors WHERE user_id = $1`, userID,
	).Scan(&n)
	return n, err
}

// ListByUserID returns the user's monitors, newest first.
func (s *PostgresStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Monitor, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, name, url, interval_seconds, created_at
		 FROM monitors WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Monitor
	for rows.Next() {
		var m Monitor
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.URL, &m.Interval, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
