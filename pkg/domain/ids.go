package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// TenantID identifies an isolated party. It is opaque: issued by tenant
// provisioning, never defaulted, never derived from ambient state.
type TenantID string

// MemberID identifies a Member within its tenant.
type MemberID uuid.UUID

// IdentityRef points at an external account. The empty value marks an
// identity-less ("offline") member.
type IdentityRef string

// ActorID names whoever performed a lifecycle action (administrator or system job).
type ActorID string

const (
	maxTenantIDLength    = 64
	maxIdentityRefLength = 128
	maxActorIDLength     = 128
)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ParseTenantID validates a tenant identifier at a trust boundary.
func ParseTenantID(s string) (TenantID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "tenant id is required")
	}
	if len(s) > maxTenantIDLength {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "tenant id is too long")
	}
	if !tenantIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "tenant id has invalid characters")
	}
	return TenantID(s), nil
}

func (t TenantID) String() string { return string(t) }

func (t TenantID) IsZero() bool { return t == "" }

// NewMemberID returns a fresh random member id.
func NewMemberID() MemberID {
	return MemberID(uuid.New())
}

// ParseMemberID rejects empty, malformed and nil UUIDs.
func ParseMemberID(s string) (MemberID, error) {
	if s == "" {
		return MemberID{}, dErrors.New(dErrors.CodeInvalidArgument, "member id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, dErrors.New(dErrors.CodeInvalidArgument, "invalid member id")
	}
	if parsed == uuid.Nil {
		return MemberID{}, dErrors.New(dErrors.CodeInvalidArgument, "member id cannot be nil")
	}
	return MemberID(parsed), nil
}

func (m MemberID) String() string { return uuid.UUID(m).String() }

func (m MemberID) IsNil() bool { return uuid.UUID(m) == uuid.Nil }

func (m MemberID) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MemberID) UnmarshalText(b []byte) error {
	parsed, err := ParseMemberID(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseIdentityRef trims the input; an empty result is an error because callers
// that allow identity-less members should not call it at all.
func ParseIdentityRef(s string) (IdentityRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "identity reference is required")
	}
	if len(s) > maxIdentityRefLength {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "identity reference is too long")
	}
	if !printableNoSpace(s) {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "identity reference has invalid characters")
	}
	return IdentityRef(s), nil
}

func (i IdentityRef) String() string { return string(i) }

func (i IdentityRef) IsNil() bool { return i == "" }

// ParseActorID validates the acting principal recorded on lifecycle events.
func ParseActorID(s string) (ActorID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "actor id is required")
	}
	if len(s) > maxActorIDLength {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "actor id is too long")
	}
	if !printableNoSpace(s) {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "actor id has invalid characters")
	}
	return ActorID(s), nil
}

func (a ActorID) String() string { return string(a) }

func (a ActorID) IsZero() bool { return a == "" }

// SystemActor is recorded for transitions driven by background jobs.
const SystemActor ActorID = "system"

func printableNoSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
