// Package identity confirms or creates the external account a member is linked
// to. Membership never writes to the account store directly; it only holds the
// IdentityRef this package returns.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/circuit"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

// Account is the slice of an external account membership cares about.
type Account struct {
	Ref      id.IdentityRef
	TenantID id.TenantID
	Email    string
}

// NewAccount carries the data needed to create an account.
type NewAccount struct {
	FullName string
	Email    string
	Phone    string
}

// Directory is the account store. Lookups return sentinel.ErrNotFound when the
// account is absent or belongs to another tenant.
type Directory interface {
	GetUser(ctx context.Context, tenantID id.TenantID, ref id.IdentityRef) (Account, error)
	FindByEmail(ctx context.Context, tenantID id.TenantID, email string) (Account, error)
	CreateUser(ctx context.Context, tenantID id.TenantID, account NewAccount) (Account, error)
}

// Request is what a registration channel asks of the provisioner.
//
// With Hint set, the account must exist in the tenant. Without Hint and with
// Create set, an account is found by email or created. Without either, the
// member stays identity-less and the zero IdentityRef is returned.
type Request struct {
	TenantID id.TenantID
	Hint     id.IdentityRef
	Create   bool
	Account  NewAccount
}

// Provisioner implements the identity port over a Directory.
type Provisioner struct {
	directory Directory
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

type Option func(*Provisioner)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Provisioner) {
		p.breaker = b
	}
}

func NewProvisioner(directory Directory, opts ...Option) *Provisioner {
	p := &Provisioner{
		directory: directory,
		breaker:   circuit.New("identity"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnsureIdentity verifies or provisions the account for req.
func (p *Provisioner) EnsureIdentity(ctx context.Context, req Request) (id.IdentityRef, error) {
	if req.TenantID.IsZero() {
		return "", dErrors.Wrap(sentinel.ErrMissingTenant, dErrors.CodeInvalidArgument, "tenant id is required")
	}
	if req.Hint.IsNil() && !req.Create {
		return "", nil
	}
	if !p.breaker.Allow() {
		return "", dErrors.New(dErrors.CodeUnavailable, "identity provider unavailable")
	}

	if !req.Hint.IsNil() {
		account, err := p.directory.GetUser(ctx, req.TenantID, req.Hint)
		if err != nil {
			return "", p.translate(ctx, err, "identity reference not found in tenant")
		}
		p.breaker.RecordSuccess()
		return account.Ref, nil
	}

	email := strings.TrimSpace(req.Account.Email)
	existing, err := p.directory.FindByEmail(ctx, req.TenantID, email)
	switch {
	case err == nil:
		p.breaker.RecordSuccess()
		return existing.Ref, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return "", p.translate(ctx, err, "")
	}

	created, err := p.directory.CreateUser(ctx, req.TenantID, req.Account)
	if err != nil {
		return "", p.translate(ctx, err, "")
	}
	p.breaker.RecordSuccess()
	p.logger.InfoContext(ctx, "identity provisioned",
		"tenant_id", req.TenantID.String(),
		"identity_ref", created.Ref.String(),
	)
	return created.Ref, nil
}

func (p *Provisioner) translate(ctx context.Context, err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) && notFoundMsg != "" {
		p.breaker.RecordSuccess()
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, notFoundMsg)
	}
	if errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "identity lookup abandoned")
	}
	if _, change := p.breaker.RecordFailure(); change.Opened {
		p.logger.WarnContext(ctx, "identity circuit opened", "error", err)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "identity provider unavailable")
}
