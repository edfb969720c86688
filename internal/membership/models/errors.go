package models

import (
	"fmt"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// StatusTransitionError reports an attempt to leave From along an edge the
// lifecycle does not have. The member is left untouched.
type StatusTransitionError struct {
	From MemberStatus
	To   MemberStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("cannot transition member from %s to %s", e.From, e.To)
}

// Unwrap exposes the coded form so dErrors.HasCode matches CodeInvalidTransition.
func (e *StatusTransitionError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidTransition, e.Error())
}
