package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/misty-step/heartbeat-sub001/pkg/quota"
	"github.com/misty-step/heartbeat-sub001/pkg/subscription"
)

// CreateParams are the caller-supplied fields for a new monitor.
type CreateParams struct {
	Name     string
	URL      string
	Interval int // seconds; 0 means "use the tier's floor"
}

// Service creates monitors behind the quota gate. The acting user is always
// an explicit parameter; there is no ambient current-user lookup.
type Service struct {
	store    Store
	enforcer *quota.Enforcer
	log      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a monitor Service.
// Panics if store or enforcer is nil to fail fast during initialization.
func NewService(store Store, enforcer *quota.Enforcer, opts ...ServiceOption) *Service {
	if store == nil {
		panic("monitor: Store is required")
	}
	if enforcer == nil {
		panic("monitor: quota.Enforcer is required")
	}

	s := &Service{
		store:    store,
		enforcer: enforcer,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates and creates a monitor for userID.
//
// Mutations require an authenticated identity: a zero userID fails with
// ErrUnauthorized. Quota denials come back as ErrQuotaExceeded joined with
// the user-facing reason, and intervals below the tier's floor fail with
// ErrIntervalTooShort.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Monitor, error) {
	if userID == uuid.Nil {
		return nil, subscription.ErrUnauthorized
	}

	if params.Name == "" {
		return nil, ErrMissingName
	}
	if _, err := url.ParseRequestURI(params.URL); err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	decision, err := s.enforcer.CanCreateMonitor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, errors.Join(ErrQuotaExceeded, errors.New(decision.Reason))
	}

	limits := s.enforcer.GetTierLimits(ctx, userID)
	interval := params.Interval
	if interval == 0 {
		interval = limits.MinCheckInterval
	}
	if interval < limits.MinCheckInterval {
		return nil, errors.Join(ErrIntervalTooShort,
			fmt.Errorf("minimum check interval for your plan is %d seconds", limits.MinCheckInterval))
	}

	m := &Monitor{
		UserID:   userID,
		Name:     params.Name,
		URL:      params.URL,
		Interval: interval,
	}

	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "monitor created",
		slog.String("monitor_id", m.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("interval_seconds", interval),
		slog.String("component", "monitor"),
	)
	return m, nil
}

// List returns the user's monitors. Queries are safe without identity: a
// zero userID yields an empty list, not an error.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Monitor, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.store.ListByUserID(ctx, userID)
}
