// Package handler exposes membership registration and lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/service"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/httputil"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/admin"
	request "github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/request"
	"github.com/dr-roshyara/public-digit-sub005/pkg/requestcontext"
)

// Registrar registers members through one channel.
type Registrar interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*service.RegistrationResult, error)
}

// Lifecycle defines the member operations behind the admin routes.
type Lifecycle interface {
	SubmitForReview(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error)
	ApproveMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, approvedBy id.ActorID) (*models.Member, error)
	RejectMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, rejectedBy id.ActorID, reason string) (*models.Member, error)
	ActivateMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, activatedBy id.ActorID) (*models.Member, error)
	SuspendMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, reason string) (*models.Member, error)
	ReactivateMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error)
	ExpireMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, trigger service.ExpiryTrigger) (*models.Member, error)
	TerminateMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, reason string) (*models.Member, error)
	UpdatePersonalInfo(ctx context.Context, tenantID id.TenantID, memberID id.MemberID, fullName, email, phone string) (*models.Member, error)
	GetMember(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error)
	ListMembers(ctx context.Context, tenantID id.TenantID, status string, limit, offset int) ([]*models.Member, error)
	CheckVotingEligibility(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*service.VotingEligibility, error)
}

// Handler handles membership endpoints.
type Handler struct {
	logger        *slog.Logger
	selfService   Registrar
	adminAssisted Registrar
	lifecycle     Lifecycle
	adminToken    string
}

// New creates a membership Handler. Admin routes accept requests carrying
// adminToken in X-Admin-Token.
func New(selfService, adminAssisted Registrar, lifecycle Lifecycle, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:        logger,
		selfService:   selfService,
		adminAssisted: adminAssisted,
		lifecycle:     lifecycle,
		adminToken:    adminToken,
	}
}

// Register registers the membership routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tenants/{tenantID}/members", func(r chi.Router) {
		r.Post("/self-service", h.handleSelfServiceRegister)
		r.Post("/{memberID}/submit", h.handleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
			r.Use(request.RequireActor(h.logger))

			r.Post("/", h.handleAdminRegister)
			r.Get("/", h.handleList)
			r.Get("/{memberID}", h.handleGet)
			r.Put("/{memberID}/personal-info", h.handleUpdatePersonalInfo)
			r.Post("/{memberID}/approve", h.handleApprove)
			r.Post("/{memberID}/reject", h.handleReject)
			r.Post("/{memberID}/activate", h.handleActivate)
			r.Post("/{memberID}/suspend", h.handleSuspend)
			r.Post("/{memberID}/reactivate", h.handleReactivate)
			r.Post("/{memberID}/expire", h.handleExpire)
			r.Post("/{memberID}/terminate", h.handleTerminate)
			r.Get("/{memberID}/eligibility/voting", h.handleVotingEligibility)
		})
	})
}

func (h *Handler) handleSelfServiceRegister(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.selfService)
}

func (h *Handler) handleAdminRegister(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.adminAssisted)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, registrar Registrar) {
	ctx := r.Context()
	tenantID, err := tenantParam(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	var body registerRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	req, err := body.toModel(tenantID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	res, err := registrar.Register(ctx, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMemberResponse(res.Member))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, memberID, err := memberParams(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	m, err := h.lifecycle.GetMember(ctx, tenantID, memberID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMemberResponse(m))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := tenantParam(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	q := r.URL.Query()
	limit, err := intQuery(q.Get("limit"), "limit")
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	offset, err := intQuery(q.Get("offset"), "offset")
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	members, err := h.lifecycle.ListMembers(ctx, tenantID, q.Get("status"), limit, offset)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	resp := listResponse{Members: make([]memberResponse, 0, len(members)), Offset: offset}
	for _, m := range members {
		resp.Members = append(resp.Members, toMemberResponse(m))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.SubmitForReview(ctx, tenantID, memberID)
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.ApproveMember(ctx, tenantID, memberID, requestcontext.Actor(ctx))
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var body reasonRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.RejectMember(ctx, tenantID, memberID, requestcontext.Actor(ctx), body.Reason)
	})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.ActivateMember(ctx, tenantID, memberID, requestcontext.Actor(ctx))
	})
}

func (h *Handler) handleSuspend(w http.ResponseWriter, r *http.Request) {
	var body reasonRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.SuspendMember(ctx, tenantID, memberID, body.Reason)
	})
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.ReactivateMember(ctx, tenantID, memberID)
	})
}

// handleExpire is the administrator path; the sweep expires ended terms on its own.
func (h *Handler) handleExpire(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.ExpireMember(ctx, tenantID, memberID, service.TriggerAdmin)
	})
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	var body reasonRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.TerminateMember(ctx, tenantID, memberID, body.Reason)
	})
}

func (h *Handler) handleUpdatePersonalInfo(w http.ResponseWriter, r *http.Request) {
	var body personalInfoRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error) {
		return h.lifecycle.UpdatePersonalInfo(ctx, tenantID, memberID, body.FullName, body.Email, body.Phone)
	})
}

func (h *Handler) handleVotingEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, memberID, err := memberParams(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	res, err := h.lifecycle.CheckVotingEligibility(ctx, tenantID, memberID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eligibilityResponse{
		MemberID: res.MemberID.String(),
		Eligible: res.Eligible,
		Reason:   res.Reason,
	})
}

type transitionFunc func(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*models.Member, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	ctx := r.Context()
	tenantID, memberID, err := memberParams(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	m, err := fn(ctx, tenantID, memberID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMemberResponse(m))
}

// writeError logs server-side failures at error level and client mistakes at
// warn, then renders the coded error.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"code", string(code),
		"error", err.Error(),
	}
	if dErrors.ToHTTPStatus(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "membership request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "membership request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

func tenantParam(r *http.Request) (id.TenantID, error) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid tenant id")
	}
	return tenantID, nil
}

func memberParams(r *http.Request) (id.TenantID, id.MemberID, error) {
	tenantID, err := tenantParam(r)
	if err != nil {
		return "", id.MemberID{}, err
	}
	memberID, err := id.ParseMemberID(chi.URLParam(r, "memberID"))
	if err != nil {
		return "", id.MemberID{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid member id")
	}
	return tenantID, memberID, nil
}

func intQuery(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeBadRequest, name+" must be an integer")
	}
	return n, nil
}

// formatTime renders response timestamps as UTC RFC 3339.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
