package models

import (
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// RegistrationChannel is the intake path a member came through.
type RegistrationChannel string

const (
	ChannelSelfService   RegistrationChannel = "self_service"
	ChannelAdminAssisted RegistrationChannel = "admin_assisted"
)

// initialStatus is the channel policy: self-service applicants still need to
// verify themselves, administrators vouch for the people they enter.
var initialStatus = map[RegistrationChannel]MemberStatus{
	ChannelSelfService:   StatusDraft,
	ChannelAdminAssisted: StatusPending,
}

func ParseRegistrationChannel(s string) (RegistrationChannel, error) {
	c := RegistrationChannel(s)
	if _, ok := initialStatus[c]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "unknown registration channel")
	}
	return c, nil
}

func (c RegistrationChannel) String() string { return string(c) }

func (c RegistrationChannel) IsValid() bool {
	_, ok := initialStatus[c]
	return ok
}

// InitialStatus is the status a member registered through c starts in.
func (c RegistrationChannel) InitialStatus() (MemberStatus, bool) {
	s, ok := initialStatus[c]
	return s, ok
}
