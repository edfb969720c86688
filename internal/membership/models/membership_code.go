package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// MembershipCode is the human-readable, tenant-unique member number,
// formatted {PREFIX}-{YEAR}-{SEQUENCE}.
type MembershipCode string

var membershipCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,12}-[0-9]{4}-[0-9]{6,}$`)

// FormatMembershipCode builds a code from its parts. seq must be positive.
func FormatMembershipCode(prefix string, year int, seq int64) (MembershipCode, error) {
	if seq <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "membership sequence must be positive")
	}
	return ParseMembershipCode(fmt.Sprintf("%s%06d", MembershipCodeSeries(prefix, year), seq))
}

// MembershipCodeSeries is the part of a code shared by every number issued
// under prefix in year, e.g. "MEM-2026-".
func MembershipCodeSeries(prefix string, year int) string {
	return fmt.Sprintf("%s-%04d-", strings.ToUpper(prefix), year)
}

func ParseMembershipCode(s string) (MembershipCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !membershipCodePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "membership code is malformed")
	}
	return MembershipCode(s), nil
}

func (c MembershipCode) String() string { return string(c) }

func (c MembershipCode) IsZero() bool { return c == "" }

// Sequence returns the number of a code issued under prefix in year. It
// reports false for codes from another series.
func (c MembershipCode) Sequence(prefix string, year int) (int64, bool) {
	rest, ok := strings.CutPrefix(string(c), MembershipCodeSeries(prefix, year))
	if !ok {
		return 0, false
	}
	seq, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}
