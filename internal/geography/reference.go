package geography

import (
	"regexp"
	"strings"
)

const maxReferenceLength = 255

// referencePattern is the coarse shape shared by every tenant hierarchy:
// dot-separated lower-case segments. Depth is unconstrained.
var referencePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(\.[a-z0-9][a-z0-9_-]*)*$`)

// Reference is an opaque, validated location in a tenant's administrative
// hierarchy, e.g. "np.bagmati.kathmandu.ward-7". Holders store and compare it
// as a string and never split it into levels.
//
// The zero value means "no geography".
type Reference struct {
	value string
}

func (r Reference) String() string { return r.value }

func (r Reference) IsZero() bool { return r.value == "" }

func (r Reference) Equal(other Reference) bool { return r.value == other.value }

func (r Reference) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// Rehydrate rebuilds a Reference previously produced by a Resolver, e.g. when
// a store loads a persisted member. It re-checks the format but not existence.
// An empty string yields the zero Reference.
func Rehydrate(stored string) (Reference, error) {
	if stored == "" {
		return Reference{}, nil
	}
	canonical, err := canonicalize(stored)
	if err != nil {
		return Reference{}, err
	}
	return Reference{value: canonical}, nil
}

func canonicalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", &InvalidReferenceError{Raw: raw, Reason: "reference is empty"}
	}
	if len(s) > maxReferenceLength {
		return "", &InvalidReferenceError{Raw: raw, Reason: "reference is too long"}
	}
	if !referencePattern.MatchString(s) {
		return "", &InvalidReferenceError{Raw: raw, Reason: "reference is malformed"}
	}
	return s, nil
}
