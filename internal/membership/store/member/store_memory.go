package member

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

// Error Contract:
// - Return ErrMissingTenant for a zero tenant ID before touching state
// - Return ErrNotFound when the member does not exist in the given tenant
// - Return ErrConflict when the stored version differs from the caller's
// - Return *UniqueViolationError (wrapping ErrAlreadyUsed) for duplicate identity or code

// InMemory stores members as snapshots partitioned by tenant. Callers never
// share pointers with the store.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]map[id.MemberID]models.Snapshot
}

// NewInMemory constructs an empty in-memory member store.
func NewInMemory() *InMemory {
	return &InMemory{
		tenants: make(map[id.TenantID]map[id.MemberID]models.Snapshot),
	}
}

// Save inserts a member at version 0 and otherwise updates it if the stored
// version still matches. Uniqueness is checked under the same lock as the write.
func (s *InMemory) Save(_ context.Context, m *models.Member) error {
	if m.TenantID().IsZero() {
		return sentinel.ErrMissingTenant
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.tenants[m.TenantID()]
	if members == nil {
		members = make(map[id.MemberID]models.Snapshot)
		s.tenants[m.TenantID()] = members
	}

	existing, found := members[m.ID()]
	switch {
	case m.Version() == 0 && found:
		return fmt.Errorf("member %s already stored: %w", m.ID(), sentinel.ErrConflict)
	case m.Version() != 0 && !found:
		return fmt.Errorf("member %s: %w", m.ID(), sentinel.ErrNotFound)
	case found && existing.Version != m.Version():
		return fmt.Errorf("member %s at version %d, expected %d: %w", m.ID(), existing.Version, m.Version(), sentinel.ErrConflict)
	}

	for otherID, other := range members {
		if otherID == m.ID() {
			continue
		}
		if !m.Identity().IsNil() && other.Identity == m.Identity() {
			return &UniqueViolationError{Field: FieldIdentity}
		}
		if !m.MembershipCode().IsZero() && other.MembershipCode == m.MembershipCode() {
			return &UniqueViolationError{Field: FieldMembershipCode}
		}
	}

	next := m.Version() + 1
	snap := m.Snapshot()
	snap.Version = next
	members[m.ID()] = snap
	m.MarkPersisted(next)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
	if tenantID.IsZero() {
		return nil, sentinel.ErrMissingTenant
	}
	s.mu.RLock()
	snap, ok := s.tenants[tenantID][memberID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("member %s: %w", memberID, sentinel.ErrNotFound)
	}
	return models.Rehydrate(snap)
}

func (s *InMemory) ExistsByIdentity(_ context.Context, tenantID id.TenantID, identity id.IdentityRef) (bool, error) {
	if tenantID.IsZero() {
		return false, sentinel.ErrMissingTenant
	}
	if identity.IsNil() {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snap := range s.tenants[tenantID] {
		if snap.Identity == identity {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) ExistsByMembershipCode(_ context.Context, tenantID id.TenantID, code models.MembershipCode) (bool, error) {
	if tenantID.IsZero() {
		return false, sentinel.ErrMissingTenant
	}
	if code.IsZero() {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snap := range s.tenants[tenantID] {
		if snap.MembershipCode == code {
			return true, nil
		}
	}
	return false, nil
}

// ListDueForExpiry returns approved or active members whose term ended at or
// before the given time, earliest first.
// MaxMembershipSequence returns the highest number issued in the tenant's
// prefix and year series, or 0 when none has been.
func (s *InMemory) MaxMembershipSequence(_ context.Context, tenantID id.TenantID, prefix string, year int) (int64, error) {
	if tenantID.IsZero() {
		return 0, sentinel.ErrMissingTenant
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest int64
	for _, snap := range s.tenants[tenantID] {
		if seq, ok := snap.MembershipCode.Sequence(prefix, year); ok && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

func (s *InMemory) ListDueForExpiry(_ context.Context, tenantID id.TenantID, before time.Time, limit int) ([]*models.Member, error) {
	if tenantID.IsZero() {
		return nil, sentinel.ErrMissingTenant
	}
	s.mu.RLock()
	var due []models.Snapshot
	for _, snap := range s.tenants[tenantID] {
		if snap.Status != models.StatusApproved && snap.Status != models.StatusActive {
			continue
		}
		if snap.ExpiresAt != nil && !snap.ExpiresAt.After(before) {
			due = append(due, snap)
		}
	}
	s.mu.RUnlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].ExpiresAt.Equal(*due[j].ExpiresAt) {
			return due[i].ExpiresAt.Before(*due[j].ExpiresAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})
	return page(due, limit, 0)
}

// ListByStatus pages through a tenant's members, oldest first. An empty status
// lists every member.
func (s *InMemory) ListByStatus(_ context.Context, tenantID id.TenantID, status models.MemberStatus, limit, offset int) ([]*models.Member, error) {
	if tenantID.IsZero() {
		return nil, sentinel.ErrMissingTenant
	}
	s.mu.RLock()
	var matched []models.Snapshot
	for _, snap := range s.tenants[tenantID] {
		if status == "" || snap.Status == status {
			matched = append(matched, snap)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return page(matched, limit, offset)
}

func page(snaps []models.Snapshot, limit, offset int) ([]*models.Member, error) {
	if offset >= len(snaps) {
		return []*models.Member{}, nil
	}
	snaps = snaps[offset:]
	if limit > 0 && limit < len(snaps) {
		snaps = snaps[:limit]
	}
	out := make([]*models.Member, 0, len(snaps))
	for _, snap := range snaps {
		m, err := models.Rehydrate(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
