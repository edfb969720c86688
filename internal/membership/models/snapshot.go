package models

import (
	"fmt"
	"time"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// Snapshot is the flat, persistable form of a Member. Repositories write it and
// rebuild members from it with Rehydrate; adapters render it.
type Snapshot struct {
	ID              id.MemberID         `json:"id"`
	TenantID        id.TenantID         `json:"tenant_id"`
	Identity        id.IdentityRef      `json:"identity_ref,omitempty"`
	FullName        string              `json:"full_name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone,omitempty"`
	Status          MemberStatus        `json:"status"`
	Geography       string              `json:"geography,omitempty"`
	MembershipCode  MembershipCode      `json:"membership_code,omitempty"`
	Channel         RegistrationChannel `json:"channel"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	StatusChangedAt time.Time           `json:"status_changed_at"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	Version         int                 `json:"version"`
}

// Snapshot copies the member's state. Pending events are not included.
func (m *Member) Snapshot() Snapshot {
	s := Snapshot{
		ID:              m.id,
		TenantID:        m.tenantID,
		Identity:        m.identity,
		FullName:        m.personalInfo.fullName,
		Email:           m.personalInfo.email,
		Phone:           m.personalInfo.phone,
		Status:          m.status,
		Geography:       m.geography.String(),
		MembershipCode:  m.code,
		Channel:         m.channel,
		CreatedAt:       m.createdAt,
		UpdatedAt:       m.updatedAt,
		StatusChangedAt: m.statusChangedAt,
		Version:         m.version,
	}
	if m.expiresAt != nil {
		at := *m.expiresAt
		s.ExpiresAt = &at
	}
	return s
}

// Rehydrate rebuilds a persisted member. It re-validates stored values and
// returns CodeInvariantViolation for rows no registration could have produced.
func Rehydrate(s Snapshot) (*Member, error) {
	if s.ID.IsNil() || s.TenantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "stored member lacks id or tenant")
	}
	if !s.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("stored member has unknown status %q", s.Status))
	}
	if !s.Channel.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("stored member has unknown channel %q", s.Channel))
	}
	info, err := NewPersonalInfo(s.FullName, s.Email, s.Phone)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "stored personal info is invalid")
	}
	geo, err := geography.Rehydrate(s.Geography)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "stored geography is invalid")
	}

	m := &Member{
		id:              s.ID,
		tenantID:        s.TenantID,
		identity:        s.Identity,
		personalInfo:    info,
		status:          s.Status,
		geography:       geo,
		code:            s.MembershipCode,
		channel:         s.Channel,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		statusChangedAt: s.StatusChangedAt,
		version:         s.Version,
	}
	if s.ExpiresAt != nil {
		at := *s.ExpiresAt
		m.expiresAt = &at
	}
	return m, nil
}
