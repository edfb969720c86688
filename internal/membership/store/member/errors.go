package member

import (
	"fmt"

	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

// Unique fields a save can collide on.
const (
	FieldIdentity       = "identity"
	FieldMembershipCode = "membership_code"
)

// UniqueViolationError reports which per-tenant unique field a save collided on.
type UniqueViolationError struct {
	Field string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("member %s already in use", e.Field)
}

func (e *UniqueViolationError) Unwrap() error {
	return sentinel.ErrAlreadyUsed
}
