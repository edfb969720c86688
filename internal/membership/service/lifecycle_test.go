package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	"github.com/dr-roshyara/public-digit-sub005/internal/identity"
	membershipmetrics "github.com/dr-roshyara/public-digit-sub005/internal/membership/metrics"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/policy"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/service/mocks"
	memberstore "github.com/dr-roshyara/public-digit-sub005/internal/membership/store/member"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/store/sequence"
	"github.com/dr-roshyara/public-digit-sub005/internal/outbox"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
	"github.com/dr-roshyara/public-digit-sub005/pkg/requestcontext"
)

const admin id.ActorID = "admin-1"

// =============================================================================
// Lifecycle Service Test Suite
// =============================================================================
// Justification for unit tests: every named transition goes through the same
// load-mutate-save path. These tests check that the aggregate's verdict
// reaches the caller with the right code, that policy-driven side effects
// (membership codes, terms, manual expiry) apply, and that nothing is saved
// when a transition is refused.

type LifecycleSuite struct {
	suite.Suite
	ctx       context.Context
	members   *memberstore.InMemory
	events    *outbox.InMemory
	codes     *sequence.InMemory
	metrics   *membershipmetrics.Metrics
	logger    *slog.Logger
	pol       policy.Policy
	lifecycle *LifecycleService
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
	s.members = memberstore.NewInMemory()
	s.events = outbox.NewInMemory()
	s.codes = sequence.NewInMemory()
	s.metrics = membershipmetrics.NewWithRegistry(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.pol = policy.Default()
	s.lifecycle = s.newLifecycle(s.pol)
}

func (s *LifecycleSuite) newLifecycle(pol policy.Policy, extra ...Option) *LifecycleService {
	opts := append([]Option{
		WithLogger(s.logger),
		WithMetrics(s.metrics),
		WithOutbox(s.events),
		WithCodeAllocator(s.codes),
		WithPolicies(policy.NewStatic(pol)),
	}, extra...)
	return NewLifecycleService(s.members, opts...)
}

// pendingMember registers an identity-less member through the admin channel.
func (s *LifecycleSuite) pendingMember(email string) *models.Member {
	s.T().Helper()
	accounts := identity.NewInMemoryDirectory()
	reg := NewAdminAssistedRegistration(s.members,
		geography.New(geography.NewStaticDirectory()),
		identity.NewProvisioner(accounts),
		WithLogger(s.logger), WithOutbox(s.events))
	res, err := reg.Register(s.ctx, &models.RegisterRequest{
		TenantID: tenantT1,
		FullName: "Jane Doe",
		Email:    email,
	})
	s.Require().NoError(err)
	return res.Member
}

func (s *LifecycleSuite) activeMember(email string) *models.Member {
	s.T().Helper()
	m := s.pendingMember(email)
	_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
	s.Require().NoError(err)
	active, err := s.lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
	s.Require().NoError(err)
	return active
}

func (s *LifecycleSuite) stored(memberID id.MemberID) *models.Member {
	s.T().Helper()
	m, err := s.members.FindByID(s.ctx, tenantT1, memberID)
	s.Require().NoError(err)
	return m
}

// =============================================================================
// Review
// =============================================================================

func (s *LifecycleSuite) TestApprove() {
	m := s.pendingMember("jane@example.com")

	s.Run("pending member is approved by the acting administrator", func() {
		approved, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, approved.Status())
		s.Equal(2, approved.Version())

		all := s.events.All()
		last := all[len(all)-1]
		s.Equal(models.EventMemberApproved, last.EventType)
		s.Contains(string(last.Payload), `"approved_by":"admin-1"`)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Transitions.WithLabelValues("approved")))
	})

	s.Run("approving twice is an invalid transition", func() {
		_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal(models.StatusApproved, s.stored(m.ID()).Status())
	})

	s.Run("actor is required", func() {
		_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("unknown member", func() {
		_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, id.NewMemberID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("member from another tenant is not found", func() {
		_, err := s.lifecycle.SuspendMember(s.ctx, tenantT2, m.ID(), "misconduct")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LifecycleSuite) TestReject() {
	m := s.pendingMember("jane@example.com")
	eventsBefore := len(s.events.All())

	s.Run("blank reason is refused and the member stays pending", func() {
		_, err := s.lifecycle.RejectMember(s.ctx, tenantT1, m.ID(), admin, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))

		_, err = s.lifecycle.RejectMember(s.ctx, tenantT1, m.ID(), admin, "  \t ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))

		s.Equal(models.StatusPending, s.stored(m.ID()).Status())
		s.Len(s.events.All(), eventsBefore)
	})

	s.Run("rejection with a reason", func() {
		rejected, err := s.lifecycle.RejectMember(s.ctx, tenantT1, m.ID(), admin, "incomplete documents")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status())
	})

	s.Run("rejected is final", func() {
		_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *LifecycleSuite) TestSubmitForReview() {
	accounts := identity.NewInMemoryDirectory()
	accounts.Seed(tenantT1, "U1", "jane@example.com")
	reg := NewSelfServiceRegistration(s.members,
		geography.New(geography.NewStaticDirectory()),
		identity.NewProvisioner(accounts),
		WithLogger(s.logger))
	res, err := reg.Register(s.ctx, janeRequest())
	s.Require().NoError(err)

	s.Run("approving a draft is refused", func() {
		_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, res.Member.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("draft moves to pending", func() {
		m, err := s.lifecycle.SubmitForReview(s.ctx, tenantT1, res.Member.ID())
		s.Require().NoError(err)
		s.Equal(models.StatusPending, m.Status())
	})
}

// =============================================================================
// Activation
// =============================================================================

func (s *LifecycleSuite) TestActivate() {
	s.Run("assigns a membership code from the tenant sequence", func() {
		m := s.activeMember("jane@example.com")
		s.Equal(models.StatusActive, m.Status())
		s.Equal(models.MembershipCode("MEM-2025-000001"), m.MembershipCode())
		_, hasTerm := m.ExpiresAt()
		s.False(hasTerm)
	})

	s.Run("codes increase per activation", func() {
		m := s.activeMember("john@example.com")
		s.Equal(models.MembershipCode("MEM-2025-000002"), m.MembershipCode())
	})

	s.Run("skips numbers that are already taken", func() {
		other := sequence.NewInMemory()
		lifecycle := s.newLifecycle(s.pol, WithCodeAllocator(other))
		m := s.pendingMember("hari@example.com")
		_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)

		activated, err := lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)
		s.Equal(models.MembershipCode("MEM-2025-000003"), activated.MembershipCode())
	})

	s.Run("no code when the tenant disables codes", func() {
		pol := s.pol
		pol.MembershipCodes.Enabled = false
		lifecycle := s.newLifecycle(pol)
		m := s.pendingMember("sita@example.com")
		_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)

		activated, err := lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)
		s.True(activated.MembershipCode().IsZero())
	})

	s.Run("schedules the end of the term", func() {
		pol := s.pol
		pol.MembershipTerm = 365 * 24 * time.Hour
		lifecycle := s.newLifecycle(pol)
		m := s.pendingMember("gita@example.com")
		_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)

		activated, err := lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)
		at, ok := activated.ExpiresAt()
		s.Require().True(ok)
		s.Equal(fixedNow.Add(pol.MembershipTerm), at)
	})

	s.Run("pending member cannot be activated and burns no number", func() {
		fresh := sequence.NewInMemory()
		lifecycle := s.newLifecycle(s.pol, WithCodeAllocator(fresh))
		m := s.pendingMember("ram@example.com")

		_, err := lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		next, err := fresh.Next(s.ctx, tenantT1, 2025)
		s.Require().NoError(err)
		s.Equal(int64(1), next)
	})

	s.Run("sequence outage is retryable", func() {
		ctrl := gomock.NewController(s.T())
		allocator := mocks.NewMockCodeAllocator(ctrl)
		allocator.EXPECT().Next(gomock.Any(), tenantT1, 2025).Return(int64(0), sentinel.ErrUnavailable)
		lifecycle := s.newLifecycle(s.pol, WithCodeAllocator(allocator))
		m := s.pendingMember("shyam@example.com")
		_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)

		_, err = lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Equal(models.StatusApproved, s.stored(m.ID()).Status())
	})
}

func (s *LifecycleSuite) TestActivateAfterSequenceReset() {
	for i := range 10 {
		s.activeMember(fmt.Sprintf("member%d@example.com", i))
	}

	s.Run("a fresh counter catches up with stored codes", func() {
		restarted := sequence.NewInMemory()
		lifecycle := s.newLifecycle(s.pol, WithCodeAllocator(restarted))
		for _, want := range []models.MembershipCode{"MEM-2025-000011", "MEM-2025-000012"} {
			m := s.pendingMember(fmt.Sprintf("new-%s@example.com", want))
			_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
			s.Require().NoError(err)

			activated, err := lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
			s.Require().NoError(err)
			s.Equal(want, activated.MembershipCode())
		}
	})

	s.Run("numbers lost to concurrent activations are retryable", func() {
		ctrl := gomock.NewController(s.T())
		allocator := mocks.NewMockCodeAllocator(ctrl)
		gomock.InOrder(
			allocator.EXPECT().Next(gomock.Any(), tenantT1, 2025).Return(int64(1), nil),
			allocator.EXPECT().Advance(gomock.Any(), tenantT1, 2025, int64(12)).Return(nil),
			allocator.EXPECT().Next(gomock.Any(), tenantT1, 2025).Return(int64(2), nil),
			allocator.EXPECT().Next(gomock.Any(), tenantT1, 2025).Return(int64(3), nil),
		)
		lifecycle := s.newLifecycle(s.pol, WithCodeAllocator(allocator))
		m := s.pendingMember("late@example.com")
		_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)

		_, err = lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeConcurrentModification))
		s.Equal(models.StatusApproved, s.stored(m.ID()).Status())
	})

	s.Run("catch-up failure on the sequence is retryable", func() {
		ctrl := gomock.NewController(s.T())
		allocator := mocks.NewMockCodeAllocator(ctrl)
		allocator.EXPECT().Next(gomock.Any(), tenantT1, 2025).Return(int64(1), nil)
		allocator.EXPECT().Advance(gomock.Any(), tenantT1, 2025, int64(12)).Return(sentinel.ErrUnavailable)
		lifecycle := s.newLifecycle(s.pol, WithCodeAllocator(allocator))
		m := s.pendingMember("later@example.com")
		_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.Require().NoError(err)

		_, err = lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Suspension, Reactivation, Termination
// =============================================================================

func (s *LifecycleSuite) TestSuspendReactivateTerminate() {
	m := s.activeMember("jane@example.com")

	s.Run("suspend requires a reason", func() {
		_, err := s.lifecycle.SuspendMember(s.ctx, tenantT1, m.ID(), " ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("suspend and reactivate keep the membership code", func() {
		suspended, err := s.lifecycle.SuspendMember(s.ctx, tenantT1, m.ID(), "unpaid dues")
		s.Require().NoError(err)
		s.Equal(models.StatusSuspended, suspended.Status())

		active, err := s.lifecycle.ReactivateMember(s.ctx, tenantT1, m.ID())
		s.Require().NoError(err)
		s.Equal(models.StatusActive, active.Status())
		s.Equal(m.MembershipCode(), active.MembershipCode())
	})

	s.Run("reactivating an active member is refused", func() {
		_, err := s.lifecycle.ReactivateMember(s.ctx, tenantT1, m.ID())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("terminate is irreversible", func() {
		terminated, err := s.lifecycle.TerminateMember(s.ctx, tenantT1, m.ID(), "resigned")
		s.Require().NoError(err)
		s.Equal(models.StatusTerminated, terminated.Status())

		_, err = s.lifecycle.TerminateMember(s.ctx, tenantT1, m.ID(), "resigned")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		_, err = s.lifecycle.ReactivateMember(s.ctx, tenantT1, m.ID())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

// =============================================================================
// Expiry
// =============================================================================

func (s *LifecycleSuite) TestExpire() {
	pol := s.pol
	pol.MembershipTerm = 24 * time.Hour
	lifecycle := s.newLifecycle(pol)

	m := s.pendingMember("jane@example.com")
	_, err := lifecycle.ApproveMember(s.ctx, tenantT1, m.ID(), admin)
	s.Require().NoError(err)
	_, err = lifecycle.ActivateMember(s.ctx, tenantT1, m.ID(), admin)
	s.Require().NoError(err)

	s.Run("unknown trigger", func() {
		_, err := lifecycle.ExpireMember(s.ctx, tenantT1, m.ID(), "cron")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("system expiry before the term ends is refused", func() {
		_, err := lifecycle.ExpireMember(s.ctx, tenantT1, m.ID(), TriggerSystem)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		s.Equal(models.StatusActive, s.stored(m.ID()).Status())
	})

	s.Run("manual expiry is forbidden unless the tenant allows it", func() {
		_, err := lifecycle.ExpireMember(s.ctx, tenantT1, m.ID(), TriggerAdmin)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("member shows up as due once the term has ended", func() {
		later := fixedNow.Add(48 * time.Hour)
		due, err := lifecycle.DueForExpiry(s.ctx, tenantT1, later, 10)
		s.Require().NoError(err)
		s.Equal([]id.MemberID{m.ID()}, due)

		due, err = lifecycle.DueForExpiry(s.ctx, tenantT1, fixedNow, 10)
		s.Require().NoError(err)
		s.Empty(due)
	})

	s.Run("system expiry after the term ends", func() {
		later := requestcontext.WithTime(s.ctx, fixedNow.Add(48*time.Hour))
		expired, err := lifecycle.ExpireMember(later, tenantT1, m.ID(), TriggerSystem)
		s.Require().NoError(err)
		s.Equal(models.StatusExpired, expired.Status())
	})

	s.Run("manual expiry when allowed", func() {
		manual := s.pol
		manual.AllowManualExpiry = true
		lifecycle := s.newLifecycle(manual)
		other := s.activeMember("john@example.com")

		expired, err := lifecycle.ExpireMember(s.ctx, tenantT1, other.ID(), TriggerAdmin)
		s.Require().NoError(err)
		s.Equal(models.StatusExpired, expired.Status())
	})

	s.Run("expiring a pending member is an invalid transition", func() {
		pending := s.pendingMember("hari@example.com")
		_, err := lifecycle.ExpireMember(s.ctx, tenantT1, pending.ID(), TriggerAdmin)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

// =============================================================================
// Personal Info, Reads and Eligibility
// =============================================================================

func (s *LifecycleSuite) TestUpdatePersonalInfo() {
	m := s.pendingMember("jane@example.com")

	s.Run("replaces the contact record", func() {
		updated, err := s.lifecycle.UpdatePersonalInfo(s.ctx, tenantT1, m.ID(), "Jane Q. Doe", "Jane.Doe@Example.com", "+977 9800000000")
		s.Require().NoError(err)
		s.Equal("Jane Q. Doe", updated.PersonalInfo().FullName())
		s.Equal(models.StatusPending, updated.Status())
	})

	s.Run("invalid record is refused", func() {
		_, err := s.lifecycle.UpdatePersonalInfo(s.ctx, tenantT1, m.ID(), "", "jane@example.com", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})
}

func (s *LifecycleSuite) TestListAndGet() {
	first := s.pendingMember("a@example.com")
	s.pendingMember("b@example.com")
	_, err := s.lifecycle.ApproveMember(s.ctx, tenantT1, first.ID(), admin)
	s.Require().NoError(err)

	s.Run("get", func() {
		m, err := s.lifecycle.GetMember(s.ctx, tenantT1, first.ID())
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, m.Status())
	})

	s.Run("list all", func() {
		members, err := s.lifecycle.ListMembers(s.ctx, tenantT1, "", 0, 0)
		s.Require().NoError(err)
		s.Len(members, 2)
	})

	s.Run("list by status", func() {
		members, err := s.lifecycle.ListMembers(s.ctx, tenantT1, "pending", 10, 0)
		s.Require().NoError(err)
		s.Require().Len(members, 1)
		s.Equal("b@example.com", members[0].PersonalInfo().Email())
	})

	s.Run("unknown status", func() {
		_, err := s.lifecycle.ListMembers(s.ctx, tenantT1, "dormant", 10, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("negative offset", func() {
		_, err := s.lifecycle.ListMembers(s.ctx, tenantT1, "", 10, -1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("other tenant sees nothing", func() {
		members, err := s.lifecycle.ListMembers(s.ctx, tenantT2, "", 10, 0)
		s.Require().NoError(err)
		s.Empty(members)
	})

	s.Run("missing tenant", func() {
		_, err := s.lifecycle.GetMember(s.ctx, "", first.ID())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})
}

func (s *LifecycleSuite) TestVotingEligibility() {
	pending := s.pendingMember("a@example.com")
	active := s.activeMember("b@example.com")

	s.Run("pending member is not eligible", func() {
		res, err := s.lifecycle.CheckVotingEligibility(s.ctx, tenantT1, pending.ID())
		s.Require().NoError(err)
		s.False(res.Eligible)
		s.Equal("member is pending", res.Reason)
	})

	s.Run("active member is eligible", func() {
		res, err := s.lifecycle.CheckVotingEligibility(s.ctx, tenantT1, active.ID())
		s.Require().NoError(err)
		s.True(res.Eligible)
	})

	s.Run("identity-less member is blocked when the tenant demands identity", func() {
		pol := s.pol
		pol.VotingRequiresIdentity = true
		res, err := s.newLifecycle(pol).CheckVotingEligibility(s.ctx, tenantT1, active.ID())
		s.Require().NoError(err)
		s.False(res.Eligible)
		s.Equal("member has no verified identity", res.Reason)
	})
}

// =============================================================================
// Store Failures
// =============================================================================

func (s *LifecycleSuite) TestStoreFailures() {
	info, err := models.NewPersonalInfo("Jane Doe", "jane@example.com", "")
	s.Require().NoError(err)
	newPending := func() *models.Member {
		m, err := models.RegisterMember(models.RegisterParams{
			TenantID:     tenantT1,
			PersonalInfo: info,
			Channel:      models.ChannelAdminAssisted,
			Now:          fixedNow,
		})
		s.Require().NoError(err)
		m.PullEvents()
		m.MarkPersisted(1)
		return m
	}

	s.Run("lost version race is a concurrent modification", func() {
		ctrl := gomock.NewController(s.T())
		store := mocks.NewMockMemberStore(ctrl)
		m := newPending()
		store.EXPECT().FindByID(gomock.Any(), tenantT1, m.ID()).Return(m, nil)
		store.EXPECT().Save(gomock.Any(), m).Return(sentinel.ErrConflict)

		_, err := NewLifecycleService(store, WithLogger(s.logger)).ApproveMember(s.ctx, tenantT1, m.ID(), admin)
		s.True(dErrors.HasCode(err, dErrors.CodeConcurrentModification))
		s.True(dErrors.IsRetryable(err))
	})

	s.Run("refused transition never reaches save", func() {
		ctrl := gomock.NewController(s.T())
		store := mocks.NewMockMemberStore(ctrl)
		m := newPending()
		store.EXPECT().FindByID(gomock.Any(), tenantT1, m.ID()).Return(m, nil)

		_, err := NewLifecycleService(store, WithLogger(s.logger)).ReactivateMember(s.ctx, tenantT1, m.ID())
		var transitionErr *models.StatusTransitionError
		s.Require().ErrorAs(err, &transitionErr)
		s.Equal(models.StatusPending, transitionErr.From)
		s.Equal(models.StatusActive, transitionErr.To)
	})

	s.Run("driver failure is internal", func() {
		ctrl := gomock.NewController(s.T())
		store := mocks.NewMockMemberStore(ctrl)
		store.EXPECT().ListByStatus(gomock.Any(), tenantT1, models.MemberStatus(""), defaultListLimit, 0).
			Return(nil, context.Canceled)

		_, err := NewLifecycleService(store, WithLogger(s.logger)).ListMembers(s.ctx, tenantT1, "", 0, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("list limit is capped", func() {
		ctrl := gomock.NewController(s.T())
		store := mocks.NewMockMemberStore(ctrl)
		store.EXPECT().ListByStatus(gomock.Any(), tenantT1, models.StatusActive, maxListLimit, 20).Return(nil, nil)

		_, err := NewLifecycleService(store, WithLogger(s.logger)).ListMembers(s.ctx, tenantT1, "active", 1000, 20)
		s.NoError(err)
	})
}
