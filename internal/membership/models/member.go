package models

import (
	"strings"
	"time"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

const maxReasonLength = 1000

// Member is the aggregate root of a party membership.
//
// Invariants:
//   - TenantID is set at registration and never changes
//   - Status only moves along the edges in transitions
//   - the initial status comes from the registration channel, never the caller
//   - MembershipCode, once assigned, never changes
//   - every successful transition records exactly one event
//
// Members are never deleted; rejected, expired and terminated records stay
// for audit. Fields are unexported so state changes go through named methods.
type Member struct {
	id              id.MemberID
	tenantID        id.TenantID
	identity        id.IdentityRef
	personalInfo    PersonalInfo
	status          MemberStatus
	geography       geography.Reference
	code            MembershipCode
	channel         RegistrationChannel
	createdAt       time.Time
	updatedAt       time.Time
	statusChangedAt time.Time
	expiresAt       *time.Time
	version         int
	events          []Event
}

// RegisterParams are the inputs of the registration factory.
type RegisterParams struct {
	TenantID     id.TenantID
	Identity     id.IdentityRef
	PersonalInfo PersonalInfo
	Geography    geography.Reference
	Channel      RegistrationChannel
	Now          time.Time
}

// RegisterMember creates a member in the channel's initial status and records
// MemberRegistered. Geography, if any, must already be resolved.
func RegisterMember(p RegisterParams) (*Member, error) {
	if p.TenantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "tenant id is required")
	}
	if p.PersonalInfo.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "personal info is required")
	}
	status, ok := p.Channel.InitialStatus()
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "unknown registration channel")
	}

	m := &Member{
		id:              id.NewMemberID(),
		tenantID:        p.TenantID,
		identity:        p.Identity,
		personalInfo:    p.PersonalInfo,
		status:          status,
		geography:       p.Geography,
		channel:         p.Channel,
		createdAt:       p.Now,
		updatedAt:       p.Now,
		statusChangedAt: p.Now,
	}
	m.record(MemberRegistered{
		EventMeta: m.meta(p.Now),
		Channel:   p.Channel,
		Status:    status,
		Identity:  p.Identity,
		Geography: p.Geography,
	})
	return m, nil
}

func (m *Member) ID() id.MemberID { return m.id }
func (m *Member) TenantID() id.TenantID { return m.tenantID }
func (m *Member) Identity() id.IdentityRef { return m.identity }
func (m *Member) PersonalInfo() PersonalInfo { return m.personalInfo }
func (m *Member) Status() MemberStatus { return m.status }
func (m *Member) Geography() geography.Reference { return m.geography }
func (m *Member) MembershipCode() MembershipCode { return m.code }
func (m *Member) Channel() RegistrationChannel { return m.channel }
func (m *Member) CreatedAt() time.Time { return m.createdAt }
func (m *Member) UpdatedAt() time.Time { return m.updatedAt }
func (m *Member) StatusChangedAt() time.Time { return m.statusChangedAt }
func (m *Member) Version() int { return m.version }
func (m *Member) HasIdentity() bool { return !m.identity.IsNil() }
func (m *Member) IsActive() bool { return m.status == StatusActive }

// ExpiresAt returns the end of the membership term, if one is scheduled.
func (m *Member) ExpiresAt() (time.Time, bool) {
	if m.expiresAt == nil {
		return time.Time{}, false
	}
	return *m.expiresAt, true
}

// Events returns pending events without clearing them.
func (m *Member) Events() []Event {
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// PullEvents returns pending events and clears them.
func (m *Member) PullEvents() []Event {
	out := m.events
	m.events = nil
	return out
}

// MarkPersisted records the version a repository stored. Repositories call it
// after a successful write.
func (m *Member) MarkPersisted(version int) {
	m.version = version
}

// -----------------------------------------------------------------------------
// Guards
// -----------------------------------------------------------------------------

func (m *Member) canMoveTo(to MemberStatus) error {
	if !m.status.CanTransitionTo(to) {
		return &StatusTransitionError{From: m.status, To: to}
	}
	return nil
}

func (m *Member) CanSubmitForReview() error { return m.canMoveTo(StatusPending) }
func (m *Member) CanApprove() error { return m.canMoveTo(StatusApproved) }
func (m *Member) CanReject() error { return m.canMoveTo(StatusRejected) }
func (m *Member) CanSuspend() error { return m.canMoveTo(StatusSuspended) }
func (m *Member) CanExpire() error { return m.canMoveTo(StatusExpired) }
func (m *Member) CanTerminate() error { return m.canMoveTo(StatusTerminated) }

// CanActivate admits approved members only; suspended members come back
// through Reactivate.
func (m *Member) CanActivate() error {
	if m.status != StatusApproved {
		return &StatusTransitionError{From: m.status, To: StatusActive}
	}
	return nil
}

func (m *Member) CanReactivate() error {
	if m.status != StatusSuspended {
		return &StatusTransitionError{From: m.status, To: StatusActive}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Transitions
// -----------------------------------------------------------------------------

// SubmitForReview moves a self-registered draft into the review queue.
func (m *Member) SubmitForReview(now time.Time) error {
	if err := m.CanSubmitForReview(); err != nil {
		return err
	}
	m.apply(StatusPending, now)
	m.record(MemberSubmitted{EventMeta: m.meta(now)})
	return nil
}

func (m *Member) Approve(approvedBy id.ActorID, now time.Time) error {
	if approvedBy.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "approving actor is required")
	}
	if err := m.CanApprove(); err != nil {
		return err
	}
	m.apply(StatusApproved, now)
	m.record(MemberApproved{EventMeta: m.meta(now), ApprovedBy: approvedBy})
	return nil
}

// Reject requires a non-blank reason; it is checked before the status so a
// blank reason is always an argument error.
func (m *Member) Reject(rejectedBy id.ActorID, reason string, now time.Time) error {
	reason, err := requireReason(reason, "rejection")
	if err != nil {
		return err
	}
	if rejectedBy.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "rejecting actor is required")
	}
	if err := m.CanReject(); err != nil {
		return err
	}
	m.apply(StatusRejected, now)
	m.record(MemberRejected{EventMeta: m.meta(now), RejectedBy: rejectedBy, Reason: reason})
	return nil
}

func (m *Member) Activate(activatedBy id.ActorID, now time.Time) error {
	if activatedBy.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "activating actor is required")
	}
	if err := m.CanActivate(); err != nil {
		return err
	}
	m.apply(StatusActive, now)
	m.record(MemberActivated{EventMeta: m.meta(now), ActivatedBy: activatedBy, MembershipCode: m.code})
	return nil
}

func (m *Member) Suspend(reason string, now time.Time) error {
	reason, err := requireReason(reason, "suspension")
	if err != nil {
		return err
	}
	if err := m.CanSuspend(); err != nil {
		return err
	}
	m.apply(StatusSuspended, now)
	m.record(MemberSuspended{EventMeta: m.meta(now), Reason: reason})
	return nil
}

func (m *Member) Reactivate(now time.Time) error {
	if err := m.CanReactivate(); err != nil {
		return err
	}
	m.apply(StatusActive, now)
	m.record(MemberReactivated{EventMeta: m.meta(now)})
	return nil
}

// Expire ends an approved or active membership. Who may trigger it is decided
// by the calling service.
func (m *Member) Expire(now time.Time) error {
	if err := m.CanExpire(); err != nil {
		return err
	}
	m.apply(StatusExpired, now)
	m.record(MemberExpired{EventMeta: m.meta(now)})
	return nil
}

// Terminate is irrevocable and legal from every non-terminal status.
func (m *Member) Terminate(reason string, now time.Time) error {
	reason, err := requireReason(reason, "termination")
	if err != nil {
		return err
	}
	if err := m.CanTerminate(); err != nil {
		return err
	}
	from := m.status
	m.apply(StatusTerminated, now)
	m.record(MemberTerminated{EventMeta: m.meta(now), From: from, Reason: reason})
	return nil
}

// -----------------------------------------------------------------------------
// Non-status changes
// -----------------------------------------------------------------------------

// AssignMembershipCode sets the member number. It can be set once.
func (m *Member) AssignMembershipCode(code MembershipCode, now time.Time) error {
	if code.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "membership code is required")
	}
	if !m.code.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "membership code is already assigned")
	}
	if m.status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot assign a code to a terminated member")
	}
	m.code = code
	m.updatedAt = now
	return nil
}

// ScheduleExpiry sets the end of the membership term for approved or active members.
func (m *Member) ScheduleExpiry(at, now time.Time) error {
	if m.status != StatusApproved && m.status != StatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "only approved or active members have a term")
	}
	if !at.After(now) {
		return dErrors.New(dErrors.CodeInvalidArgument, "membership term must end in the future")
	}
	m.expiresAt = &at
	m.updatedAt = now
	return nil
}

// ReplacePersonalInfo swaps the contact record as a whole.
func (m *Member) ReplacePersonalInfo(info PersonalInfo, now time.Time) error {
	if info.IsZero() {
		return dErrors.New(dErrors.CodeInvalidArgument, "personal info is required")
	}
	if m.status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "terminated members are read-only")
	}
	if m.personalInfo.Equal(info) {
		return nil
	}
	m.personalInfo = info
	m.updatedAt = now
	m.record(MemberPersonalInfoReplaced{EventMeta: m.meta(now)})
	return nil
}

func (m *Member) apply(to MemberStatus, now time.Time) {
	m.status = to
	m.updatedAt = now
	m.statusChangedAt = now
}

func (m *Member) record(e Event) {
	m.events = append(m.events, e)
}

func (m *Member) meta(now time.Time) EventMeta {
	return EventMeta{MemberID: m.id, TenantID: m.tenantID, OccurredAt: now}
}

func requireReason(reason, what string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, what+" reason is required")
	}
	if len(reason) > maxReasonLength {
		return "", dErrors.New(dErrors.CodeInvalidArgument, what+" reason is too long")
	}
	return reason, nil
}
