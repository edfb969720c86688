package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	"github.com/dr-roshyara/public-digit-sub005/internal/identity"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/policy"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/service"
	memberstore "github.com/dr-roshyara/public-digit-sub005/internal/membership/store/member"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/store/sequence"
	"github.com/dr-roshyara/public-digit-sub005/internal/outbox"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/admin"
	request "github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/request"
	"github.com/dr-roshyara/public-digit-sub005/pkg/testutil"
)

const adminToken = "secret-token"

const policyYAML = `
defaults:
  membership_codes:
    enabled: true
    prefix: NCP
tenants:
  strict:
    require_geography: true
`

// HandlerSuite wires the handler to real services over in-memory stores.
// Handler tests cover HTTP concerns: routing, auth headers, body parsing and
// the mapping of error codes onto statuses.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policies, err := policy.Parse([]byte(policyYAML))
	s.Require().NoError(err)

	members := memberstore.NewInMemory()
	geoDir := geography.NewStaticDirectory()
	geoDir.Add("T1", "np.bagmati.kathmandu")
	geoDir.Add("strict", "np.bagmati.kathmandu")
	accounts := identity.NewInMemoryDirectory()
	accounts.Seed("T1", "U1", "jane@example.com")

	geo := geography.New(geoDir, geography.WithLogger(logger))
	identities := identity.NewProvisioner(accounts, identity.WithLogger(logger))
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithPolicies(policies),
		service.WithOutbox(outbox.NewInMemory()),
		service.WithCodeAllocator(sequence.NewInMemory()),
	}

	h := New(
		service.NewSelfServiceRegistration(members, geo, identities, opts...),
		service.NewAdminAssistedRegistration(members, geo, identities, opts...),
		service.NewLifecycleService(members, opts...),
		adminToken,
		logger,
	)
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Time)
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path, body string, asAdmin bool) *httptest.ResponseRecorder {
	req := testutil.NewRequest(s.T(), method, path, body)
	if asAdmin {
		testutil.AsAdmin(req, adminToken, "admin-1")
	}
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	return testutil.ErrorCode(s.T(), rec)
}

func (s *HandlerSuite) registerPending(tenant, email string) memberResponse {
	rec := s.do(http.MethodPost, "/tenants/"+tenant+"/members",
		`{"full_name":"Ram Bahadur","email":"`+email+`"}`, true)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	m := testutil.DecodeResponse[memberResponse](s.T(), rec)
	return m
}

func (s *HandlerSuite) TestSelfServiceRegistration() {
	s.Run("creates a draft member", func() {
		rec := s.do(http.MethodPost, "/tenants/T1/members/self-service",
			`{"full_name":"Jane Doe","email":"jane@example.com","identity_ref":"U1","geography":"np.bagmati.kathmandu"}`, false)
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		m := testutil.DecodeResponse[memberResponse](s.T(), rec)
		s.Equal("draft", m.Status)
		s.Equal("self_service", m.Channel)
		s.Equal("U1", m.IdentityRef)
		s.Equal("np.bagmati.kathmandu", m.Geography)
	})

	s.Run("second registration for the identity conflicts", func() {
		rec := s.do(http.MethodPost, "/tenants/T1/members/self-service",
			`{"full_name":"Jane Doe","email":"jane@example.com","identity_ref":"U1"}`, false)
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("duplicate_membership", s.errorCode(rec))
	})

	s.Run("unknown fields are rejected", func() {
		rec := s.do(http.MethodPost, "/tenants/T1/members/self-service",
			`{"full_name":"Jane Doe","email":"jane@example.com","status":"active"}`, false)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("bad_request", s.errorCode(rec))
	})

	s.Run("invalid tenant id", func() {
		rec := s.do(http.MethodPost, "/tenants/bad%20tenant/members/self-service",
			`{"full_name":"Jane Doe","email":"jane@example.com","identity_ref":"U1"}`, false)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("required geography that does not resolve is unprocessable", func() {
		rec := s.do(http.MethodPost, "/tenants/strict/members",
			`{"full_name":"Jane Doe","email":"jane@example.com","geography":"np.nowhere"}`, true)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("invalid_geography_reference", s.errorCode(rec))
	})
}

func (s *HandlerSuite) TestAdminAuth() {
	s.Run("missing admin token", func() {
		rec := s.do(http.MethodPost, "/tenants/T1/members", `{"full_name":"Ram","email":"ram@example.com"}`, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("missing actor", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/tenants/T1/members", "")
		req.Header.Set(admin.HeaderAdminToken, adminToken)
		rec := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("submit needs no admin token", func() {
		rec := s.do(http.MethodPost, "/tenants/T1/members/"+id.NewMemberID().String()+"/submit", "", false)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestLifecycle() {
	m := s.registerPending("T1", "ram@example.com")
	s.Equal("pending", m.Status)
	base := "/tenants/T1/members/" + m.ID

	s.Run("blank rejection reason is invalid", func() {
		rec := s.do(http.MethodPost, base+"/reject", `{"reason":""}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("invalid_argument", s.errorCode(rec))
	})

	s.Run("activating before approval conflicts", func() {
		rec := s.do(http.MethodPost, base+"/activate", "", true)
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("invalid_status_transition", s.errorCode(rec))
	})

	s.Run("approve then activate assigns a code", func() {
		rec := s.do(http.MethodPost, base+"/approve", "", true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, base+"/activate", "", true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		active := testutil.DecodeResponse[memberResponse](s.T(), rec)
		s.Equal("active", active.Status)
		s.True(strings.HasPrefix(active.MembershipCode, "NCP-"), active.MembershipCode)
		s.Equal(3, active.Version)
	})

	s.Run("voting eligibility", func() {
		rec := s.do(http.MethodGet, base+"/eligibility/voting", "", true)
		s.Require().Equal(http.StatusOK, rec.Code)
		res := testutil.DecodeResponse[eligibilityResponse](s.T(), rec)
		s.True(res.Eligible)
	})

	s.Run("manual expiry is forbidden by default", func() {
		rec := s.do(http.MethodPost, base+"/expire", "", true)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("suspend and reactivate", func() {
		rec := s.do(http.MethodPost, base+"/suspend", `{"reason":"unpaid dues"}`, true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		rec = s.do(http.MethodPost, base+"/reactivate", "", true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("update personal info", func() {
		rec := s.do(http.MethodPut, base+"/personal-info",
			`{"full_name":"Ram B. Thapa","email":"ram.thapa@example.com"}`, true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		updated := testutil.DecodeResponse[memberResponse](s.T(), rec)
		s.Equal("Ram B. Thapa", updated.FullName)
	})

	s.Run("terminate", func() {
		rec := s.do(http.MethodPost, base+"/terminate", `{"reason":"resigned"}`, true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		terminated := testutil.DecodeResponse[memberResponse](s.T(), rec)
		s.Equal("terminated", terminated.Status)
	})

	s.Run("get from another tenant is not found", func() {
		rec := s.do(http.MethodGet, "/tenants/T2/members/"+m.ID, "", true)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed member id", func() {
		rec := s.do(http.MethodGet, "/tenants/T1/members/not-a-uuid", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestList() {
	first := s.registerPending("T1", "a@example.com")
	s.registerPending("T1", "b@example.com")
	rec := s.do(http.MethodPost, "/tenants/T1/members/"+first.ID+"/approve", "", true)
	s.Require().Equal(http.StatusOK, rec.Code)

	s.Run("all members", func() {
		rec := s.do(http.MethodGet, "/tenants/T1/members", "", true)
		s.Require().Equal(http.StatusOK, rec.Code)
		resp := testutil.DecodeResponse[listResponse](s.T(), rec)
		s.Len(resp.Members, 2)
	})

	s.Run("filtered by status", func() {
		rec := s.do(http.MethodGet, "/tenants/T1/members?status=approved&limit=10", "", true)
		s.Require().Equal(http.StatusOK, rec.Code)
		resp := testutil.DecodeResponse[listResponse](s.T(), rec)
		s.Require().Len(resp.Members, 1)
		s.Equal(first.ID, resp.Members[0].ID)
	})

	s.Run("bad paging parameters", func() {
		rec := s.do(http.MethodGet, "/tenants/T1/members?limit=ten", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
		rec = s.do(http.MethodGet, "/tenants/T1/members?offset=-5", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown status", func() {
		rec := s.do(http.MethodGet, "/tenants/T1/members?status=dormant", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
