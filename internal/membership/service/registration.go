package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	"github.com/dr-roshyara/public-digit-sub005/internal/identity"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/policy"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/requestcontext"
)

// RegistrationResult is the stored member plus the events its registration recorded.
type RegistrationResult struct {
	Member *models.Member
	Events []models.Event
}

// RegistrationService registers members through one channel. The channel is
// fixed at construction and decides the initial status and identity rules.
type RegistrationService struct {
	channel    models.RegistrationChannel
	members    MemberStore
	geography  GeographyResolver
	identities IdentityProvisioner
	cfg        *serviceConfig
	events     *eventEmitter
}

// NewSelfServiceRegistration serves citizens registering themselves. The
// applicant's own identity account is required and verified.
func NewSelfServiceRegistration(members MemberStore, geo GeographyResolver, identities IdentityProvisioner, opts ...Option) *RegistrationService {
	return newRegistrationService(models.ChannelSelfService, members, geo, identities, opts)
}

// NewAdminAssistedRegistration serves administrators entering members on
// someone's behalf. An identity account is optional and may be provisioned.
func NewAdminAssistedRegistration(members MemberStore, geo GeographyResolver, identities IdentityProvisioner, opts ...Option) *RegistrationService {
	return newRegistrationService(models.ChannelAdminAssisted, members, geo, identities, opts)
}

func newRegistrationService(channel models.RegistrationChannel, members MemberStore, geo GeographyResolver, identities IdentityProvisioner, opts []Option) *RegistrationService {
	cfg := newConfig(opts)
	return &RegistrationService{
		channel:    channel,
		members:    members,
		geography:  geo,
		identities: identities,
		cfg:        cfg,
		events:     newEventEmitter(cfg.logger, cfg.outbox),
	}
}

func (s *RegistrationService) Channel() models.RegistrationChannel {
	return s.channel
}

// Register resolves geography, verifies or provisions identity, rejects
// duplicates and stores the new member. Nothing is persisted unless every
// step succeeds.
func (s *RegistrationService) Register(ctx context.Context, req *models.RegisterRequest) (_ *RegistrationResult, err error) {
	start := time.Now()
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "registration request is required")
	}
	req.Normalize()

	ctx, span := s.cfg.tracer.Start(ctx, "membership.Register", trace.WithAttributes(
		attribute.String("tenant_id", req.TenantID.String()),
		attribute.String("channel", s.channel.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			s.cfg.recordFailure("register", err)
		}
		span.End()
	}()

	if err := requireTenantID(req.TenantID); err != nil {
		return nil, err
	}
	info, err := req.PersonalInfo()
	if err != nil {
		return nil, err
	}
	pol, err := s.cfg.policyFor(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	geo, err := s.resolveGeography(ctx, req, pol)
	if err != nil {
		return nil, err
	}
	identityRef, err := s.ensureIdentity(ctx, req, info, pol)
	if err != nil {
		return nil, err
	}

	var (
		member *models.Member
		events []models.Event
	)
	err = s.cfg.tx.RunInTx(withShardKey(ctx, req.TenantID.String()), func(txCtx context.Context) error {
		if !identityRef.IsNil() {
			exists, err := s.members.ExistsByIdentity(txCtx, req.TenantID, identityRef)
			if err != nil {
				return wrapMemberErr(err)
			}
			if exists {
				return dErrors.New(dErrors.CodeDuplicate, "a membership already exists for this identity")
			}
		}

		m, err := models.RegisterMember(models.RegisterParams{
			TenantID:     req.TenantID,
			Identity:     identityRef,
			PersonalInfo: info,
			Geography:    geo,
			Channel:      s.channel,
			Now:          requestcontext.Now(txCtx),
		})
		if err != nil {
			return wrapMemberErr(err)
		}
		if err := s.members.Save(txCtx, m); err != nil {
			return wrapMemberErr(err)
		}
		evs := m.PullEvents()
		if err := s.events.record(txCtx, evs); err != nil {
			return err
		}
		member, events = m, evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.audit(ctx, events)
	if s.cfg.metrics != nil {
		s.cfg.metrics.IncrementRegistrations(s.channel.String())
		s.cfg.metrics.ObserveRegister(start)
	}
	return &RegistrationResult{Member: member, Events: events}, nil
}

// resolveGeography treats an invalid reference as advisory unless the tenant
// requires geography. Directory outages always fail the registration.
func (s *RegistrationService) resolveGeography(ctx context.Context, req *models.RegisterRequest, pol policy.Policy) (geography.Reference, error) {
	if req.Geography == "" {
		if pol.RequireGeography {
			return geography.Reference{}, dErrors.New(dErrors.CodeInvalidArgument, "geography reference is required")
		}
		return geography.Reference{}, nil
	}

	ref, err := s.geography.Resolve(ctx, req.TenantID, req.Geography)
	if err == nil {
		return ref, nil
	}
	if dErrors.HasCode(err, dErrors.CodeInvalidGeography) && !pol.RequireGeography {
		s.cfg.logger.WarnContext(ctx, "registering without unresolvable geography",
			"tenant_id", req.TenantID.String(),
			"reason", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.cfg.metrics != nil {
			s.cfg.metrics.IncrementGeographyDropped()
		}
		return geography.Reference{}, nil
	}
	return geography.Reference{}, err
}

func (s *RegistrationService) ensureIdentity(ctx context.Context, req *models.RegisterRequest, info models.PersonalInfo, pol policy.Policy) (id.IdentityRef, error) {
	if s.channel == models.ChannelSelfService {
		if req.IdentityHint.IsNil() {
			return "", dErrors.New(dErrors.CodeInvalidArgument, "self-service registration requires the applicant's identity")
		}
		return s.identities.EnsureIdentity(ctx, identity.Request{
			TenantID: req.TenantID,
			Hint:     req.IdentityHint,
		})
	}

	ref, err := s.identities.EnsureIdentity(ctx, identity.Request{
		TenantID: req.TenantID,
		Hint:     req.IdentityHint,
		Create:   req.IdentityHint.IsNil() && pol.ProvisionAccounts,
		Account: identity.NewAccount{
			FullName: info.FullName(),
			Email:    info.Email(),
			Phone:    info.Phone(),
		},
	})
	if err != nil {
		return "", err
	}
	if ref.IsNil() && pol.RequireIdentity {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "an identity account is required for members of this tenant")
	}
	return ref, nil
}
