// Package geography is the anti-corruption layer in front of the external
// geography subsystem. It turns raw location strings into opaque validated
// References and keeps the subsystem's node ids, levels and tree shape on its
// side of the boundary.
package geography

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/circuit"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

const defaultLookupTimeout = 2 * time.Second

// Resolver validates raw references against the directory.
type Resolver struct {
	directory Directory
	cache     Cache
	breaker   *circuit.Breaker
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
	group     singleflight.Group
}

type Option func(*Resolver)

func WithCache(cache Cache) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Resolver) {
		r.breaker = b
	}
}

// WithLookupTimeout bounds each directory call.
func WithLookupTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func New(directory Directory, opts ...Option) *Resolver {
	r := &Resolver{
		directory: directory,
		breaker:   circuit.New("geography"),
		timeout:   defaultLookupTimeout,
		logger:    slog.Default(),
		tracer:    otel.Tracer("membership/geography"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve validates raw for tenantID and returns its canonical Reference.
//
// Errors:
//   - *InvalidReferenceError (CodeInvalidGeography): malformed, unknown or not selectable
//   - CodeUnavailable: directory failed, timed out or the breaker is open
//   - CodeTimeout: ctx ended before the lookup finished
func (r *Resolver) Resolve(ctx context.Context, tenantID id.TenantID, raw string) (Reference, error) {
	if tenantID.IsZero() {
		return Reference{}, dErrors.Wrap(sentinel.ErrMissingTenant, dErrors.CodeInvalidArgument, "tenant id is required")
	}
	path, err := canonicalize(raw)
	if err != nil {
		return Reference{}, err
	}

	ctx, span := r.tracer.Start(ctx, "geography.Resolve",
		trace.WithAttributes(attribute.String("tenant_id", tenantID.String())))
	defer span.End()

	if r.cache != nil {
		hit, err := r.cache.Contains(ctx, tenantID, path)
		if err != nil {
			r.logger.WarnContext(ctx, "geography cache read failed", "error", err)
		} else if hit {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return Reference{value: path}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Reference{}, abandoned(err)
	}

	// The shared lookup outlives any single caller so one departure cannot
	// fail the others; r.timeout still bounds it.
	lookupCtx := context.WithoutCancel(ctx)
	results := r.group.DoChan(tenantID.String()+"|"+path, func() (any, error) {
		return r.lookup(lookupCtx, tenantID, path)
	})
	select {
	case <-ctx.Done():
		return Reference{}, abandoned(ctx.Err())
	case res := <-results:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "resolve failed")
			return Reference{}, res.Err
		}
		return res.Val.(Reference), nil
	}
}

func (r *Resolver) lookup(ctx context.Context, tenantID id.TenantID, path string) (Reference, error) {
	if !r.breaker.Allow() {
		return Reference{}, unavailable(errors.New("circuit open"))
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	entry, err := r.directory.Lookup(lookupCtx, tenantID, path)
	if errors.Is(err, sentinel.ErrNotFound) {
		r.breaker.RecordSuccess()
		return Reference{}, &InvalidReferenceError{Raw: path, Reason: "reference does not exist"}
	}
	if errors.Is(err, context.Canceled) {
		return Reference{}, unavailable(err)
	}
	if err != nil {
		if _, change := r.breaker.RecordFailure(); change.Opened {
			r.logger.WarnContext(ctx, "geography circuit opened", "error", err)
		}
		return Reference{}, unavailable(err)
	}
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.InfoContext(ctx, "geography circuit closed")
	}
	if !entry.Selectable {
		return Reference{}, &InvalidReferenceError{Raw: path, Reason: "reference is not assignable"}
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, tenantID, entry.Path); err != nil {
			r.logger.WarnContext(ctx, "geography cache write failed", "error", err)
		}
	}
	return Reference{value: entry.Path}, nil
}
