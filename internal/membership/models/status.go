package models

import (
	"fmt"
)

// MemberStatus is a position in the membership lifecycle.
type MemberStatus string

const (
	StatusDraft      MemberStatus = "draft"
	StatusPending    MemberStatus = "pending"
	StatusApproved   MemberStatus = "approved"
	StatusRejected   MemberStatus = "rejected"
	StatusActive     MemberStatus = "active"
	StatusSuspended  MemberStatus = "suspended"
	StatusExpired    MemberStatus = "expired"
	StatusTerminated MemberStatus = "terminated"
)

// transitions is the complete set of legal edges. Anything absent is illegal.
var transitions = map[MemberStatus][]MemberStatus{
	StatusDraft:      {StatusPending, StatusTerminated},
	StatusPending:    {StatusApproved, StatusRejected, StatusTerminated},
	StatusApproved:   {StatusActive, StatusExpired, StatusTerminated},
	StatusActive:     {StatusSuspended, StatusExpired, StatusTerminated},
	StatusSuspended:  {StatusActive, StatusTerminated},
	StatusRejected:   {StatusTerminated},
	StatusExpired:    {StatusTerminated},
	StatusTerminated: {},
}

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []MemberStatus{
	StatusDraft, StatusPending, StatusApproved, StatusRejected,
	StatusActive, StatusSuspended, StatusExpired, StatusTerminated,
}

// ParseMemberStatus is for rehydration and query filters only. New members get
// their status from the registration channel.
func ParseMemberStatus(s string) (MemberStatus, error) {
	st := MemberStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown member status %q", s)
	}
	return st, nil
}

func (s MemberStatus) String() string { return string(s) }

func (s MemberStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether s -> target is a legal edge.
func (s MemberStatus) CanTransitionTo(target MemberStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s MemberStatus) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}
