package handler

import (
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Geography   string `json:"geography,omitempty"`
	IdentityRef string `json:"identity_ref,omitempty"`
}

func (r registerRequest) toModel(tenantID id.TenantID) (*models.RegisterRequest, error) {
	var hint id.IdentityRef
	if r.IdentityRef != "" {
		parsed, err := id.ParseIdentityRef(r.IdentityRef)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid identity_ref")
		}
		hint = parsed
	}
	req := &models.RegisterRequest{
		TenantID:     tenantID,
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		Geography:    r.Geography,
		IdentityHint: hint,
	}
	return req, nil
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type personalInfoRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type memberResponse struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	IdentityRef     string `json:"identity_ref,omitempty"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Status          string `json:"status"`
	Geography       string `json:"geography,omitempty"`
	MembershipCode  string `json:"membership_code,omitempty"`
	Channel         string `json:"channel"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	StatusChangedAt string `json:"status_changed_at"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	Version         int    `json:"version"`
}

func toMemberResponse(m *models.Member) memberResponse {
	s := m.Snapshot()
	resp := memberResponse{
		ID:              s.ID.String(),
		TenantID:        s.TenantID.String(),
		IdentityRef:     s.Identity.String(),
		FullName:        s.FullName,
		Email:           s.Email,
		Phone:           s.Phone,
		Status:          s.Status.String(),
		Geography:       s.Geography,
		MembershipCode:  s.MembershipCode.String(),
		Channel:         s.Channel.String(),
		CreatedAt:       formatTime(s.CreatedAt),
		UpdatedAt:       formatTime(s.UpdatedAt),
		StatusChangedAt: formatTime(s.StatusChangedAt),
		Version:         s.Version,
	}
	if s.ExpiresAt != nil {
		resp.ExpiresAt = formatTime(*s.ExpiresAt)
	}
	return resp
}

type listResponse struct {
	Members []memberResponse `json:"members"`
	Offset  int              `json:"offset"`
}

type eligibilityResponse struct {
	MemberID string `json:"member_id"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}
