// Package sweep expires memberships whose term has ended.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	membershipmetrics "github.com/dr-roshyara/public-digit-sub005/internal/membership/metrics"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/service"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/requestcontext"
)

const (
	defaultInterval  = time.Hour
	defaultBatchSize = 100
)

// Lifecycle is the part of the lifecycle service the sweep drives.
type Lifecycle interface {
	DueForExpiry(ctx context.Context, tenantID id.TenantID, before time.Time, limit int) ([]id.MemberID, error)
	ExpireMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, trigger service.ExpiryTrigger) (*models.Member, error)
}

// TenantLister names the tenants to sweep.
type TenantLister interface {
	Tenants() []id.TenantID
}

// Result summarizes one pass.
type Result struct {
	Tenants int
	Expired int
	Skipped int
}

// Sweeper periodically expires due members in every listed tenant.
type Sweeper struct {
	lifecycle Lifecycle
	tenants   TenantLister
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *membershipmetrics.Metrics
	clock     func() time.Time
}

type Option func(*Sweeper)

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *membershipmetrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// WithClock overrides the time a pass treats as now.
func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		s.clock = clock
	}
}

func New(lifecycle Lifecycle, tenants TenantLister, opts ...Option) *Sweeper {
	s := &Sweeper{
		lifecycle: lifecycle,
		tenants:   tenants,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled. A failing pass is logged
// and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "expiry sweep started", "interval", s.interval, "batch_size", s.batchSize)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "expiry sweep stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.ErrorContext(ctx, "expiry sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce runs a single pass over all tenants. A tenant whose store fails is
// abandoned for this pass; the others still run.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	now := s.clock()
	ctx = requestcontext.WithTime(ctx, now)

	var (
		result Result
		errs   []error
	)
	for _, tenantID := range s.tenants.Tenants() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		expired, skipped, err := s.sweepTenant(ctx, tenantID, now)
		result.Tenants++
		result.Expired += expired
		result.Skipped += skipped
		if err != nil {
			errs = append(errs, fmt.Errorf("sweep tenant %s: %w", tenantID, err))
		}
	}

	if s.metrics != nil {
		s.metrics.AddExpired(result.Expired)
		s.metrics.ObserveExpirySweep(start)
	}
	if result.Expired > 0 || result.Skipped > 0 {
		s.logger.InfoContext(ctx, "expiry sweep finished",
			"tenants", result.Tenants,
			"expired", result.Expired,
			"skipped", result.Skipped,
		)
	}
	return result, errors.Join(errs...)
}

// sweepTenant expires due members batch by batch. It stops after a batch in
// which anything was skipped, since skipped members would be listed again.
func (s *Sweeper) sweepTenant(ctx context.Context, tenantID id.TenantID, now time.Time) (expired, skipped int, err error) {
	for {
		due, err := s.lifecycle.DueForExpiry(ctx, tenantID, now, s.batchSize)
		if err != nil {
			return expired, skipped, err
		}
		batchExpired := 0
		for _, memberID := range due {
			_, err := s.lifecycle.ExpireMember(ctx, tenantID, memberID, service.TriggerSystem)
			switch {
			case err == nil:
				batchExpired++
			case skippable(err):
				skipped++
				s.logger.WarnContext(ctx, "expiry skipped",
					"tenant_id", tenantID.String(),
					"member_id", memberID.String(),
					"reason", err.Error(),
				)
			default:
				return expired + batchExpired, skipped, err
			}
		}
		expired += batchExpired
		if len(due) < s.batchSize || batchExpired < len(due) {
			return expired, skipped, nil
		}
	}
}

// skippable errors concern a single member that changed under the sweep.
func skippable(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidTransition, dErrors.CodeConcurrentModification,
		dErrors.CodeInvalidArgument, dErrors.CodeNotFound:
		return true
	default:
		return false
	}
}
