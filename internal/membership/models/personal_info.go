package models

import (
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/email"
)

const (
	maxFullNameLength = 200
	minPhoneLength    = 7
	maxPhoneLength    = 20
)

// PersonalInfo is an immutable contact record. A Member swaps the whole value;
// there are no field setters.
type PersonalInfo struct {
	fullName string
	email    string
	phone    string
}

// NewPersonalInfo validates and normalizes contact data. Phone is optional.
func NewPersonalInfo(fullName, emailAddr, phone string) (PersonalInfo, error) {
	fullName = strings.Join(strings.Fields(fullName), " ")
	if fullName == "" {
		return PersonalInfo{}, dErrors.New(dErrors.CodeInvalidArgument, "full name is required")
	}
	if utf8.RuneCountInString(fullName) > maxFullNameLength {
		return PersonalInfo{}, dErrors.New(dErrors.CodeInvalidArgument, "full name must be 200 characters or less")
	}

	normalized, ok := email.Normalize(emailAddr)
	if !ok {
		return PersonalInfo{}, dErrors.New(dErrors.CodeInvalidArgument, "email is not a valid address")
	}

	phone = strings.TrimSpace(phone)
	if phone != "" && !validPhone(phone) {
		return PersonalInfo{}, dErrors.New(dErrors.CodeInvalidArgument, "phone number is malformed")
	}

	return PersonalInfo{fullName: fullName, email: normalized, phone: phone}, nil
}

func validPhone(p string) bool {
	if len(p) < minPhoneLength || len(p) > maxPhoneLength {
		return false
	}
	digits := 0
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneLength
}

func (p PersonalInfo) FullName() string { return p.fullName }
func (p PersonalInfo) Email() string { return p.email }
func (p PersonalInfo) Phone() string { return p.phone }

func (p PersonalInfo) IsZero() bool { return p == PersonalInfo{} }

func (p PersonalInfo) Equal(other PersonalInfo) bool { return p == other }
