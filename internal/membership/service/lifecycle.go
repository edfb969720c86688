package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/requestcontext"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// maxCodeAttempts bounds how many sequence numbers activation burns when
	// a number is already taken. The sequence is caught up to the store after
	// the first collision, so later attempts only race concurrent activations.
	maxCodeAttempts = 3
)

// ExpiryTrigger says who asked for an expiry.
type ExpiryTrigger string

const (
	// TriggerSystem is the expiry sweep acting on an ended term.
	TriggerSystem ExpiryTrigger = "system"
	// TriggerAdmin is an administrator expiring a membership by hand.
	TriggerAdmin ExpiryTrigger = "admin"
)

// VotingEligibility is the outcome of an eligibility check.
type VotingEligibility struct {
	MemberID id.MemberID
	Eligible bool
	Reason   string
}

// LifecycleService runs named transitions on stored members: load, transition,
// save under the optimistic version and record events, all in one transaction.
type LifecycleService struct {
	members MemberStore
	cfg     *serviceConfig
	events  *eventEmitter
}

func NewLifecycleService(members MemberStore, opts ...Option) *LifecycleService {
	cfg := newConfig(opts)
	return &LifecycleService{
		members: members,
		cfg:     cfg,
		events:  newEventEmitter(cfg.logger, cfg.outbox),
	}
}

type mutation func(txCtx context.Context, m *models.Member, now time.Time) error

func (s *LifecycleService) transition(ctx context.Context, op string, tenantID id.TenantID, memberID id.MemberID, mutate mutation) (_ *models.Member, err error) {
	start := time.Now()
	ctx, span := s.cfg.tracer.Start(ctx, "membership."+op, trace.WithAttributes(
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("member_id", memberID.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			s.cfg.recordFailure(op, err)
		}
		span.End()
	}()

	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if memberID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "member id is required")
	}

	var (
		updated *models.Member
		events  []models.Event
	)
	err = s.cfg.tx.RunInTx(withShardKey(ctx, tenantID.String()), func(txCtx context.Context) error {
		m, err := s.members.FindByID(txCtx, tenantID, memberID)
		if err != nil {
			return wrapMemberErr(err)
		}
		if err := mutate(txCtx, m, requestcontext.Now(txCtx)); err != nil {
			return wrapMemberErr(err)
		}
		if err := s.members.Save(txCtx, m); err != nil {
			return wrapMemberErr(err)
		}
		evs := m.PullEvents()
		if err := s.events.record(txCtx, evs); err != nil {
			return err
		}
		updated, events = m, evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.audit(ctx, events)
	if actor := requestcontext.Actor(ctx); !actor.IsZero() {
		s.cfg.logger.InfoContext(ctx, "member transition applied",
			"operation", op,
			"actor_id", string(actor),
			"tenant_id", tenantID.String(),
			"member_id", memberID.String(),
			"status", updated.Status().String(),
		)
	}
	if s.cfg.metrics != nil {
		s.cfg.metrics.IncrementTransitions(updated.Status().String())
		s.cfg.metrics.ObserveTransition(start)
	}
	return updated, nil
}

// SubmitForReview moves a draft into the review queue.
func (s *LifecycleService) SubmitForReview(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
	return s.transition(ctx, "submit", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.SubmitForReview(now)
	})
}

func (s *LifecycleService) ApproveMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, approvedBy id.ActorID) (*models.Member, error) {
	if err := requireActor(approvedBy); err != nil {
		return nil, err
	}
	return s.transition(ctx, "approve", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.Approve(approvedBy, now)
	})
}

// RejectMember requires a non-blank reason. A blank reason fails with
// CodeInvalidArgument before the member is loaded.
func (s *LifecycleService) RejectMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, rejectedBy id.ActorID, reason string) (*models.Member, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "rejection reason is required")
	}
	if err := requireActor(rejectedBy); err != nil {
		return nil, err
	}
	return s.transition(ctx, "reject", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.Reject(rejectedBy, reason, now)
	})
}

// ActivateMember admits an approved member. Depending on tenant policy it
// assigns a membership code and schedules the end of the term.
func (s *LifecycleService) ActivateMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, activatedBy id.ActorID) (*models.Member, error) {
	if err := requireActor(activatedBy); err != nil {
		return nil, err
	}
	return s.transition(ctx, "activate", tenantID, memberID, func(txCtx context.Context, m *models.Member, now time.Time) error {
		if err := m.CanActivate(); err != nil {
			return err
		}
		pol, err := s.cfg.policyFor(txCtx, tenantID)
		if err != nil {
			return err
		}
		if pol.MembershipCodes.Enabled && m.MembershipCode().IsZero() && s.cfg.codes != nil {
			code, err := s.allocateCode(txCtx, tenantID, pol.MembershipCodes.Prefix, now.Year())
			if err != nil {
				return err
			}
			if err := m.AssignMembershipCode(code, now); err != nil {
				return err
			}
		}
		if err := m.Activate(activatedBy, now); err != nil {
			return err
		}
		if pol.MembershipTerm > 0 {
			return m.ScheduleExpiry(now.Add(pol.MembershipTerm), now)
		}
		return nil
	})
}

func (s *LifecycleService) allocateCode(ctx context.Context, tenantID id.TenantID, prefix string, year int) (models.MembershipCode, error) {
	caughtUp := false
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		seq, err := s.cfg.codes.Next(ctx, tenantID, year)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "membership number sequence unavailable")
		}
		code, err := models.FormatMembershipCode(prefix, year, seq)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to format membership code")
		}
		taken, err := s.members.ExistsByMembershipCode(ctx, tenantID, code)
		if err != nil {
			return "", wrapMemberErr(err)
		}
		if !taken {
			return code, nil
		}
		s.cfg.logger.WarnContext(ctx, "membership code already taken, skipping",
			"tenant_id", tenantID.String(),
			"membership_code", code.String(),
		)
		if !caughtUp {
			if err := s.catchUpCodes(ctx, tenantID, prefix, year); err != nil {
				return "", err
			}
			caughtUp = true
		}
	}
	return "", dErrors.New(dErrors.CodeConcurrentModification, "could not allocate a free membership code; retry")
}

// catchUpCodes moves the sequence past the highest number already stored.
// A counter that restarted or lost its state hands out taken numbers until then.
func (s *LifecycleService) catchUpCodes(ctx context.Context, tenantID id.TenantID, prefix string, year int) error {
	highest, err := s.members.MaxMembershipSequence(ctx, tenantID, prefix, year)
	if err != nil {
		return wrapMemberErr(err)
	}
	if err := s.cfg.codes.Advance(ctx, tenantID, year, highest); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "membership number sequence unavailable")
	}
	s.cfg.logger.InfoContext(ctx, "membership sequence caught up with stored codes",
		"tenant_id", tenantID.String(),
		"year", year,
		"highest", highest,
	)
	return nil
}

func (s *LifecycleService) SuspendMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, reason string) (*models.Member, error) {
	return s.transition(ctx, "suspend", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.Suspend(reason, now)
	})
}

func (s *LifecycleService) ReactivateMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
	return s.transition(ctx, "reactivate", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.Reactivate(now)
	})
}

// ExpireMember ends a membership. The system may expire only members whose
// term has ended; administrators may expire early when the tenant allows it.
func (s *LifecycleService) ExpireMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, trigger ExpiryTrigger) (*models.Member, error) {
	if trigger != TriggerSystem && trigger != TriggerAdmin {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "unknown expiry trigger")
	}
	return s.transition(ctx, "expire", tenantID, memberID, func(txCtx context.Context, m *models.Member, now time.Time) error {
		if err := m.CanExpire(); err != nil {
			return err
		}
		switch trigger {
		case TriggerAdmin:
			pol, err := s.cfg.policyFor(txCtx, tenantID)
			if err != nil {
				return err
			}
			if !pol.AllowManualExpiry {
				return dErrors.New(dErrors.CodeForbidden, "manual expiry is disabled for this tenant")
			}
		case TriggerSystem:
			at, ok := m.ExpiresAt()
			if !ok || at.After(now) {
				return dErrors.New(dErrors.CodeInvalidArgument, "membership term has not ended")
			}
		}
		return m.Expire(now)
	})
}

// TerminateMember is irreversible.
func (s *LifecycleService) TerminateMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, reason string) (*models.Member, error) {
	return s.transition(ctx, "terminate", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.Terminate(reason, now)
	})
}

// UpdatePersonalInfo replaces the member's contact record as a whole.
func (s *LifecycleService) UpdatePersonalInfo(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, fullName, email, phone string) (*models.Member, error) {
	info, err := models.NewPersonalInfo(fullName, email, phone)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, "update_personal_info", tenantID, memberID, func(_ context.Context, m *models.Member, now time.Time) error {
		return m.ReplacePersonalInfo(info, now)
	})
}

func (s *LifecycleService) GetMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	m, err := s.members.FindByID(ctx, tenantID, memberID)
	if err != nil {
		return nil, wrapMemberErr(err)
	}
	return m, nil
}

// ListMembers pages through a tenant's members. An empty status lists all.
func (s *LifecycleService) ListMembers(ctx context.Context, tenantID id.TenantID, status string, limit, offset int) ([]*models.Member, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	var filter models.MemberStatus
	if status != "" {
		parsed, err := models.ParseMemberStatus(status)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "unknown member status")
		}
		filter = parsed
	}
	if offset < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "offset must not be negative")
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	members, err := s.members.ListByStatus(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return nil, wrapMemberErr(err)
	}
	return members, nil
}

// DueForExpiry lists members whose term ended at or before the given time.
func (s *LifecycleService) DueForExpiry(ctx context.Context, tenantID id.TenantID, before time.Time, limit int) ([]id.MemberID, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	members, err := s.members.ListDueForExpiry(ctx, tenantID, before, limit)
	if err != nil {
		return nil, wrapMemberErr(err)
	}
	ids := make([]id.MemberID, len(members))
	for i, m := range members {
		ids[i] = m.ID()
	}
	return ids, nil
}

// CheckVotingEligibility reports whether the member may vote in internal
// party elections. Only active members are eligible; tenants may also demand
// a verified identity.
func (s *LifecycleService) CheckVotingEligibility(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*VotingEligibility, error) {
	m, err := s.GetMember(ctx, tenantID, memberID)
	if err != nil {
		return nil, err
	}
	result := &VotingEligibility{MemberID: m.ID()}
	if !m.IsActive() {
		result.Reason = "member is " + m.Status().String()
		return result, nil
	}
	pol, err := s.cfg.policyFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if pol.VotingRequiresIdentity && !m.HasIdentity() {
		result.Reason = "member has no verified identity"
		return result, nil
	}
	result.Eligible = true
	return result, nil
}
