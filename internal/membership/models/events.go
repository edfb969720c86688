package models

import (
	"time"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
)

// Event type names as published to consumers.
const (
	EventMemberRegistered   = "member.registered"
	EventMemberSubmitted    = "member.submitted"
	EventMemberApproved     = "member.approved"
	EventMemberRejected     = "member.rejected"
	EventMemberActivated    = "member.activated"
	EventMemberSuspended    = "member.suspended"
	EventMemberReactivated  = "member.reactivated"
	EventMemberExpired      = "member.expired"
	EventMemberTerminated   = "member.terminated"
	EventMemberInfoReplaced = "member.personal_info_replaced"
)

// Event is a fact recorded by the aggregate and not yet published.
type Event interface {
	EventType() string
	Metadata() EventMeta
}

// EventMeta is common to every member event.
type EventMeta struct {
	MemberID   id.MemberID `json:"member_id"`
	TenantID   id.TenantID `json:"tenant_id"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func (m EventMeta) Metadata() EventMeta { return m }

type MemberRegistered struct {
	EventMeta
	Channel   RegistrationChannel `json:"channel"`
	Status    MemberStatus        `json:"status"`
	Identity  id.IdentityRef      `json:"identity_ref,omitempty"`
	Geography geography.Reference `json:"geography,omitzero"`
}

func (MemberRegistered) EventType() string { return EventMemberRegistered }

type MemberSubmitted struct {
	EventMeta
}

func (MemberSubmitted) EventType() string { return EventMemberSubmitted }

type MemberApproved struct {
	EventMeta
	ApprovedBy id.ActorID `json:"approved_by"`
}

func (MemberApproved) EventType() string { return EventMemberApproved }

type MemberRejected struct {
	EventMeta
	RejectedBy id.ActorID `json:"rejected_by"`
	Reason     string     `json:"reason"`
}

func (MemberRejected) EventType() string { return EventMemberRejected }

type MemberActivated struct {
	EventMeta
	ActivatedBy    id.ActorID     `json:"activated_by"`
	MembershipCode MembershipCode `json:"membership_code,omitempty"`
}

func (MemberActivated) EventType() string { return EventMemberActivated }

type MemberSuspended struct {
	EventMeta
	Reason string `json:"reason"`
}

func (MemberSuspended) EventType() string { return EventMemberSuspended }

type MemberReactivated struct {
	EventMeta
}

func (MemberReactivated) EventType() string { return EventMemberReactivated }

type MemberExpired struct {
	EventMeta
}

func (MemberExpired) EventType() string { return EventMemberExpired }

type MemberTerminated struct {
	EventMeta
	From   MemberStatus `json:"from"`
	Reason string       `json:"reason"`
}

func (MemberTerminated) EventType() string { return EventMemberTerminated }

type MemberPersonalInfoReplaced struct {
	EventMeta
}

func (MemberPersonalInfoReplaced) EventType() string { return EventMemberInfoReplaced }
