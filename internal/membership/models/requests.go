package models

import (
	"strings"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
)

// RegisterRequest is channel-neutral registration input. The channel is bound
// by the registration service that receives it.
type RegisterRequest struct {
	TenantID     id.TenantID
	FullName     string
	Email        string
	Phone        string
	Geography    string
	IdentityHint id.IdentityRef
}

// Normalize trims free-text fields in place.
func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Geography = strings.TrimSpace(r.Geography)
	r.IdentityHint = id.IdentityRef(strings.TrimSpace(string(r.IdentityHint)))
}

// PersonalInfo validates the contact fields.
func (r *RegisterRequest) PersonalInfo() (PersonalInfo, error) {
	return NewPersonalInfo(r.FullName, r.Email, r.Phone)
}
