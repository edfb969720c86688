package geography

import (
	"fmt"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// InvalidReferenceError reports a reference that is malformed or unknown to the
// tenant's hierarchy. Callers decide whether it is fatal.
type InvalidReferenceError struct {
	Raw    string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid geography reference %q: %s", e.Raw, e.Reason)
}

// Unwrap exposes the coded form so dErrors.HasCode matches CodeInvalidGeography.
func (e *InvalidReferenceError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidGeography, "invalid geography reference: "+e.Reason)
}

func unavailable(err error) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "geography service unavailable")
}

// abandoned reports a caller that gave up. It says nothing about the directory.
func abandoned(err error) error {
	return dErrors.Wrap(err, dErrors.CodeTimeout, "geography lookup abandoned")
}
