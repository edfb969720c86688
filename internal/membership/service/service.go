// Package service orchestrates member registration and lifecycle transitions.
// It owns no business rules of its own: the aggregate decides what is legal,
// stores report facts, and this layer translates both into API error codes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	"github.com/dr-roshyara/public-digit-sub005/internal/identity"
	membershipmetrics "github.com/dr-roshyara/public-digit-sub005/internal/membership/metrics"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/policy"
	"github.com/dr-roshyara/public-digit-sub005/internal/outbox"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

// MemberStore persists members. Every method takes the tenant explicitly.
type MemberStore interface {
	Save(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error)
	ExistsByIdentity(ctx context.Context, tenantID id.TenantID, ref id.IdentityRef) (bool, error)
	ExistsByMembershipCode(ctx context.Context, tenantID id.TenantID, code models.MembershipCode) (bool, error)
	MaxMembershipSequence(ctx context.Context, tenantID id.TenantID, prefix string, year int) (int64, error)
	ListDueForExpiry(ctx context.Context, tenantID id.TenantID, before time.Time, limit int) ([]*models.Member, error)
	ListByStatus(ctx context.Context, tenantID id.TenantID, status models.MemberStatus, limit, offset int) ([]*models.Member, error)
}

// EventOutbox receives domain events inside the write transaction.
type EventOutbox interface {
	Append(ctx context.Context, msgs ...outbox.Message) error
}

// CodeAllocator hands out membership number sequences per tenant and year.
// Advance guarantees the next number is above floor.
type CodeAllocator interface {
	Next(ctx context.Context, tenantID id.TenantID, year int) (int64, error)
	Advance(ctx context.Context, tenantID id.TenantID, year int, floor int64) error
}

type PolicyProvider interface {
	ForTenant(ctx context.Context, tenantID id.TenantID) (policy.Policy, error)
}

type GeographyResolver interface {
	Resolve(ctx context.Context, tenantID id.TenantID, raw string) (geography.Reference, error)
}

type IdentityProvisioner interface {
	EnsureIdentity(ctx context.Context, req identity.Request) (id.IdentityRef, error)
}

type serviceConfig struct {
	logger   *slog.Logger
	metrics  *membershipmetrics.Metrics
	tx       StoreTx
	outbox   EventOutbox
	codes    CodeAllocator
	policies PolicyProvider
	tracer   trace.Tracer
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *membershipmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTx sets the transaction boundary. Defaults to an in-memory sharded lock.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithOutbox routes emitted events to an outbox. Without one, events are only
// returned to the caller and logged.
func WithOutbox(o EventOutbox) Option {
	return func(c *serviceConfig) {
		c.outbox = o
	}
}

func WithCodeAllocator(a CodeAllocator) Option {
	return func(c *serviceConfig) {
		c.codes = a
	}
}

// WithPolicies sets the tenant policy source. Defaults to policy.Default for every tenant.
func WithPolicies(p PolicyProvider) Option {
	return func(c *serviceConfig) {
		c.policies = p
	}
}

func newConfig(opts []Option) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	if cfg.policies == nil {
		cfg.policies = policy.NewStatic(policy.Default())
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer("membership/service")
	}
	return cfg
}

func (c *serviceConfig) policyFor(ctx context.Context, tenantID id.TenantID) (policy.Policy, error) {
	pol, err := c.policies.ForTenant(ctx, tenantID)
	if err != nil {
		return policy.Policy{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant policy")
	}
	return pol, nil
}

func (c *serviceConfig) recordFailure(operation string, err error) {
	if c.metrics != nil && err != nil {
		c.metrics.IncrementFailures(operation, string(dErrors.CodeOf(err)))
	}
}

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "tenant id is required")
	}
	return nil
}

func requireActor(actor id.ActorID) error {
	if actor.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "acting administrator is required")
	}
	return nil
}

// wrapMemberErr translates store facts and model errors into API codes.
// Errors that already carry a code pass through unchanged.
func wrapMemberErr(err error) error {
	var transitionErr *models.StatusTransitionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &transitionErr):
		return err
	case errors.Is(err, sentinel.ErrMissingTenant):
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, "tenant id is required")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "member not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeDuplicate, "membership already exists")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConcurrentModification, "member was modified concurrently; retry")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, dErrors.Message(err))
	case errors.As(err, new(*dErrors.Error)):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "membership store failure")
	}
}
