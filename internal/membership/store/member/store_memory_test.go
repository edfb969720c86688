package member

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

type MemberStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestMemberStoreSuite(t *testing.T) {
	suite.Run(t, new(MemberStoreSuite))
}

func (s *MemberStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
}

func (s *MemberStoreSuite) newMember(tenantID id.TenantID, identity id.IdentityRef) *models.Member {
	info, err := models.NewPersonalInfo("Jane Doe", "jane@example.com", "")
	s.Require().NoError(err)
	m, err := models.RegisterMember(models.RegisterParams{
		TenantID:     tenantID,
		Identity:     identity,
		PersonalInfo: info,
		Channel:      models.ChannelAdminAssisted,
		Now:          s.now,
	})
	s.Require().NoError(err)
	return m
}

func (s *MemberStoreSuite) TestSaveAndFind() {
	m := s.newMember("T1", "U1")
	s.Require().NoError(s.store.Save(s.ctx, m))
	s.Equal(1, m.Version())

	found, err := s.store.FindByID(s.ctx, "T1", m.ID())
	s.Require().NoError(err)
	s.Equal(m.Snapshot(), found.Snapshot())

	s.Run("returned members are copies", func() {
		s.Require().NoError(found.Approve("admin", s.now))
		again, err := s.store.FindByID(s.ctx, "T1", m.ID())
		s.Require().NoError(err)
		s.Equal(models.StatusPending, again.Status())
	})
}

func (s *MemberStoreSuite) TestTenantIsolation() {
	m := s.newMember("T1", "U1")
	s.Require().NoError(s.store.Save(s.ctx, m))

	s.Run("other tenant cannot see the member", func() {
		_, err := s.store.FindByID(s.ctx, "T2", m.ID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("same identity may exist once per tenant", func() {
		s.Require().NoError(s.store.Save(s.ctx, s.newMember("T2", "U1")))
		exists, err := s.store.ExistsByIdentity(s.ctx, "T2", "U1")
		s.Require().NoError(err)
		s.True(exists)
		exists, err = s.store.ExistsByIdentity(s.ctx, "T3", "U1")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("zero tenant is rejected", func() {
		_, err := s.store.FindByID(s.ctx, "", m.ID())
		s.ErrorIs(err, sentinel.ErrMissingTenant)
		_, err = s.store.ExistsByIdentity(s.ctx, "", "U1")
		s.ErrorIs(err, sentinel.ErrMissingTenant)
		_, err = s.store.ListByStatus(s.ctx, "", "", 10, 0)
		s.ErrorIs(err, sentinel.ErrMissingTenant)
	})
}

func (s *MemberStoreSuite) TestUniqueness() {
	s.Require().NoError(s.store.Save(s.ctx, s.newMember("T1", "U1")))

	s.Run("duplicate identity", func() {
		err := s.store.Save(s.ctx, s.newMember("T1", "U1"))
		var uniqueErr *UniqueViolationError
		s.Require().ErrorAs(err, &uniqueErr)
		s.Equal(FieldIdentity, uniqueErr.Field)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("identity-less members never collide", func() {
		s.Require().NoError(s.store.Save(s.ctx, s.newMember("T1", "")))
		s.Require().NoError(s.store.Save(s.ctx, s.newMember("T1", "")))
	})

	s.Run("duplicate membership code", func() {
		a := s.newMember("T1", "U2")
		s.Require().NoError(a.Approve("admin", s.now))
		s.Require().NoError(a.AssignMembershipCode("GP-2026-000001", s.now))
		s.Require().NoError(s.store.Save(s.ctx, a))

		b := s.newMember("T1", "U3")
		s.Require().NoError(b.Approve("admin", s.now))
		s.Require().NoError(b.AssignMembershipCode("GP-2026-000001", s.now))
		err := s.store.Save(s.ctx, b)
		var uniqueErr *UniqueViolationError
		s.Require().ErrorAs(err, &uniqueErr)
		s.Equal(FieldMembershipCode, uniqueErr.Field)

		exists, err := s.store.ExistsByMembershipCode(s.ctx, "T1", "GP-2026-000001")
		s.Require().NoError(err)
		s.True(exists)
	})
}

func (s *MemberStoreSuite) TestMaxMembershipSequence() {
	for i, code := range []models.MembershipCode{"GP-2026-000007", "GP-2026-000012", "GP-2025-000099", "GPX-2026-000500"} {
		m := s.newMember("T1", id.IdentityRef(fmt.Sprintf("U%d", i)))
		s.Require().NoError(m.Approve("admin", s.now))
		s.Require().NoError(m.AssignMembershipCode(code, s.now))
		s.Require().NoError(s.store.Save(s.ctx, m))
	}

	highest, err := s.store.MaxMembershipSequence(s.ctx, "T1", "GP", 2026)
	s.Require().NoError(err)
	s.Equal(int64(12), highest)

	highest, err = s.store.MaxMembershipSequence(s.ctx, "T2", "GP", 2026)
	s.Require().NoError(err)
	s.Zero(highest, "other tenants' codes are not visible")

	_, err = s.store.MaxMembershipSequence(s.ctx, "", "GP", 2026)
	s.ErrorIs(err, sentinel.ErrMissingTenant)
}

func (s *MemberStoreSuite) TestOptimisticVersion() {
	m := s.newMember("T1", "U1")
	s.Require().NoError(s.store.Save(s.ctx, m))

	first, err := s.store.FindByID(s.ctx, "T1", m.ID())
	s.Require().NoError(err)
	second, err := s.store.FindByID(s.ctx, "T1", m.ID())
	s.Require().NoError(err)

	s.Require().NoError(first.Approve("admin-a", s.now))
	s.Require().NoError(s.store.Save(s.ctx, first))
	s.Equal(2, first.Version())

	s.Require().NoError(second.Reject("admin-b", "incomplete", s.now))
	err = s.store.Save(s.ctx, second)
	s.ErrorIs(err, sentinel.ErrConflict)

	stored, err := s.store.FindByID(s.ctx, "T1", m.ID())
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, stored.Status())
}

func (s *MemberStoreSuite) TestConcurrentRegistrationSameIdentity() {
	const goroutines = 50
	var wg sync.WaitGroup
	var saved, duplicates atomic.Int32

	for i := 0; i < goroutines; i++ {
		m := s.newMember("T1", "U-race")
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Save(s.ctx, m)
			switch {
			case err == nil:
				saved.Add(1)
			case s.ErrorIs(err, sentinel.ErrAlreadyUsed):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), saved.Load())
	s.Equal(int32(goroutines-1), duplicates.Load())
}

func (s *MemberStoreSuite) TestListDueForExpiry() {
	due := s.newMember("T1", "U1")
	s.Require().NoError(due.Approve("admin", s.now))
	s.Require().NoError(due.Activate("admin", s.now))
	s.Require().NoError(due.ScheduleExpiry(s.now.Add(time.Hour), s.now))
	s.Require().NoError(s.store.Save(s.ctx, due))

	later := s.newMember("T1", "U2")
	s.Require().NoError(later.Approve("admin", s.now))
	s.Require().NoError(later.ScheduleExpiry(s.now.Add(48*time.Hour), s.now))
	s.Require().NoError(s.store.Save(s.ctx, later))

	s.Require().NoError(s.store.Save(s.ctx, s.newMember("T1", "U3")))

	found, err := s.store.ListDueForExpiry(s.ctx, "T1", s.now.Add(2*time.Hour), 10)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(due.ID(), found[0].ID())

	found, err = s.store.ListDueForExpiry(s.ctx, "T2", s.now.Add(72*time.Hour), 10)
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *MemberStoreSuite) TestListByStatus() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Save(s.ctx, s.newMember("T1", "")))
	}
	approved := s.newMember("T1", "U1")
	s.Require().NoError(approved.Approve("admin", s.now))
	s.Require().NoError(s.store.Save(s.ctx, approved))

	pending, err := s.store.ListByStatus(s.ctx, "T1", models.StatusPending, 10, 0)
	s.Require().NoError(err)
	s.Len(pending, 3)

	all, err := s.store.ListByStatus(s.ctx, "T1", "", 0, 0)
	s.Require().NoError(err)
	s.Len(all, 4)

	paged, err := s.store.ListByStatus(s.ctx, "T1", "", 2, 3)
	s.Require().NoError(err)
	s.Len(paged, 1)
}
